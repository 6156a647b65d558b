package testutil

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mestre-da-redacao/backend/internal/domain/chat"
	"github.com/mestre-da-redacao/backend/internal/domain/essay"
	"github.com/mestre-da-redacao/backend/internal/domain/lesson"
	"github.com/mestre-da-redacao/backend/internal/domain/material"
	"github.com/mestre-da-redacao/backend/internal/domain/passwordreset"
	"github.com/mestre-da-redacao/backend/internal/domain/subscription"
	"github.com/mestre-da-redacao/backend/internal/domain/user"
)

// MockUserRepository is a mock implementation of user.Repository
type MockUserRepository struct {
	Users       map[int64]*user.User
	EmailIndex  map[string]*user.User
	NextID      int64
	CreateError error
	GetError    error
	UpdateError error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:      make(map[int64]*user.User),
		EmailIndex: make(map[string]*user.User),
		NextID:     1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	if _, exists := m.EmailIndex[u.Email]; exists {
		return fmt.Errorf("email already registered")
	}
	u.ID = m.NextID
	m.NextID++
	m.Users[u.ID] = u
	m.EmailIndex[u.Email] = u
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return u, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.EmailIndex[email]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return u, nil
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if _, ok := m.Users[u.ID]; !ok {
		return fmt.Errorf("user not found")
	}
	m.Users[u.ID] = u
	m.EmailIndex[u.Email] = u
	return nil
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	u, ok := m.Users[id]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*user.User, int64, error) {
	var result []*user.User
	for _, u := range m.Users {
		result = append(result, u)
	}
	return result, int64(len(result)), nil
}

func (m *MockUserRepository) ListEmailsByRole(ctx context.Context, role string) ([]string, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	var emails []string
	for _, u := range m.Users {
		if u.Role == role {
			emails = append(emails, u.Email)
		}
	}
	sort.Strings(emails)
	return emails, nil
}

// MockSubscriptionRepository is a mock implementation of subscription.Repository
type MockSubscriptionRepository struct {
	Subs        map[int64]*subscription.Subscription
	UserIndex   map[int64]*subscription.Subscription
	Changes     []*subscription.PlanChangeLog
	NextID      int64
	CreateError error
	GetError    error
	UpdateError error
}

func NewMockSubscriptionRepository() *MockSubscriptionRepository {
	return &MockSubscriptionRepository{
		Subs:      make(map[int64]*subscription.Subscription),
		UserIndex: make(map[int64]*subscription.Subscription),
		NextID:    1,
	}
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	s.ID = m.NextID
	m.NextID++
	m.Subs[s.ID] = s
	m.UserIndex[s.UserID] = s
	return nil
}

func (m *MockSubscriptionRepository) GetByID(ctx context.Context, id int64) (*subscription.Subscription, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	s, ok := m.Subs[id]
	if !ok {
		return nil, fmt.Errorf("subscription not found")
	}
	return s, nil
}

func (m *MockSubscriptionRepository) GetByUserID(ctx context.Context, userID int64) (*subscription.Subscription, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	s, ok := m.UserIndex[userID]
	if !ok {
		return nil, fmt.Errorf("subscription not found")
	}
	return s, nil
}

func (m *MockSubscriptionRepository) Update(ctx context.Context, s *subscription.Subscription) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if _, ok := m.Subs[s.ID]; !ok {
		return fmt.Errorf("subscription not found")
	}
	m.Subs[s.ID] = s
	m.UserIndex[s.UserID] = s
	return nil
}

func (m *MockSubscriptionRepository) ConsumeToken(ctx context.Context, id int64) (bool, error) {
	if m.UpdateError != nil {
		return false, m.UpdateError
	}
	s, ok := m.Subs[id]
	if !ok {
		return false, fmt.Errorf("subscription not found")
	}
	if s.TokensAvailable <= 0 {
		return false, nil
	}
	s.TokensAvailable--
	return true, nil
}

func (m *MockSubscriptionRepository) AddTokens(ctx context.Context, id int64, n int) error {
	s, ok := m.Subs[id]
	if !ok {
		return fmt.Errorf("subscription not found")
	}
	s.TokensAvailable += n
	return nil
}

func (m *MockSubscriptionRepository) ApplyMonthlyReset(ctx context.Context, id int64, quota int, now time.Time) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	s, ok := m.Subs[id]
	if !ok {
		return fmt.Errorf("subscription not found")
	}
	s.TokensAvailable = quota
	reset := now
	s.LastTokenReset = &reset
	return nil
}

func (m *MockSubscriptionRepository) ClearLegacyUnlimited(ctx context.Context, id int64, quota int) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	s, ok := m.Subs[id]
	if !ok {
		return fmt.Errorf("subscription not found")
	}
	if !s.LegacyUnlimited {
		return nil
	}
	s.LegacyUnlimited = false
	s.TokensAvailable = quota
	return nil
}

func (m *MockSubscriptionRepository) ListForMaintenance(ctx context.Context) ([]*subscription.Subscription, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	var result []*subscription.Subscription
	for _, s := range m.Subs {
		if s.Status != subscription.StatusActive {
			continue
		}
		if s.Type == subscription.PlanMestre || s.LegacyUnlimited {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockSubscriptionRepository) AppendPlanChange(ctx context.Context, log *subscription.PlanChangeLog) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	log.ID = int64(len(m.Changes) + 1)
	m.Changes = append(m.Changes, log)
	return nil
}

func (m *MockSubscriptionRepository) ListPlanChanges(ctx context.Context, studentID int64) ([]*subscription.PlanChangeLog, error) {
	var result []*subscription.PlanChangeLog
	for i := len(m.Changes) - 1; i >= 0; i-- {
		if m.Changes[i].StudentID == studentID {
			result = append(result, m.Changes[i])
		}
	}
	return result, nil
}

// MockResetTokenRepository is a mock implementation of passwordreset.Repository
type MockResetTokenRepository struct {
	Tokens      map[string]*passwordreset.Token
	order       []string
	CreateError error
	GetError    error
	UpdateError error
}

func NewMockResetTokenRepository() *MockResetTokenRepository {
	return &MockResetTokenRepository{
		Tokens: make(map[string]*passwordreset.Token),
	}
}

func (m *MockResetTokenRepository) Create(ctx context.Context, t *passwordreset.Token) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Tokens[t.Token] = t
	m.order = append(m.order, t.Token)
	return nil
}

func (m *MockResetTokenRepository) Get(ctx context.Context, token string) (*passwordreset.Token, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	t, ok := m.Tokens[token]
	if !ok {
		return nil, fmt.Errorf("token not found")
	}
	return t, nil
}

func (m *MockResetTokenRepository) Update(ctx context.Context, t *passwordreset.Token) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if _, ok := m.Tokens[t.Token]; !ok {
		return fmt.Errorf("token not found")
	}
	m.Tokens[t.Token] = t
	return nil
}

func (m *MockResetTokenRepository) GetLatestByEmail(ctx context.Context, email, step string) (*passwordreset.Token, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	for i := len(m.order) - 1; i >= 0; i-- {
		t := m.Tokens[m.order[i]]
		if t.Email == email && t.Step == step {
			return t, nil
		}
	}
	return nil, fmt.Errorf("token not found")
}

// MockEssayRepository is a mock implementation of essay.Repository
type MockEssayRepository struct {
	Essays      map[int64]*essay.Essay
	Themes      map[int64]*essay.Theme
	essayOrder  []int64
	NextEssayID int64
	NextThemeID int64
	CreateError error
	GetError    error
}

func NewMockEssayRepository() *MockEssayRepository {
	return &MockEssayRepository{
		Essays:      make(map[int64]*essay.Essay),
		Themes:      make(map[int64]*essay.Theme),
		NextEssayID: 1,
		NextThemeID: 1,
	}
}

func (m *MockEssayRepository) CreateEssay(ctx context.Context, e *essay.Essay) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	e.ID = m.NextEssayID
	m.NextEssayID++
	m.Essays[e.ID] = e
	m.essayOrder = append(m.essayOrder, e.ID)
	return nil
}

func (m *MockEssayRepository) GetEssay(ctx context.Context, id int64) (*essay.Essay, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	e, ok := m.Essays[id]
	if !ok {
		return nil, fmt.Errorf("essay not found")
	}
	return e, nil
}

func (m *MockEssayRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*essay.Essay, int64, error) {
	var result []*essay.Essay
	for i := len(m.essayOrder) - 1; i >= 0; i-- {
		e := m.Essays[m.essayOrder[i]]
		if e.UserID == userID {
			result = append(result, e)
		}
	}
	return result, int64(len(result)), nil
}

func (m *MockEssayRepository) ListPending(ctx context.Context, limit, offset int) ([]*essay.Essay, int64, error) {
	var result []*essay.Essay
	for _, id := range m.essayOrder {
		e := m.Essays[id]
		if e.Correction.Status == essay.CorrectionPending {
			result = append(result, e)
		}
	}
	return result, int64(len(result)), nil
}

func (m *MockEssayRepository) UpdateCorrection(ctx context.Context, id int64, c essay.Correction) error {
	e, ok := m.Essays[id]
	if !ok {
		return fmt.Errorf("essay not found")
	}
	e.Correction = c
	return nil
}

func (m *MockEssayRepository) CreateTheme(ctx context.Context, t *essay.Theme) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	t.ID = m.NextThemeID
	m.NextThemeID++
	m.Themes[t.ID] = t
	return nil
}

func (m *MockEssayRepository) GetTheme(ctx context.Context, id int64) (*essay.Theme, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	t, ok := m.Themes[id]
	if !ok {
		return nil, fmt.Errorf("theme not found")
	}
	return t, nil
}

func (m *MockEssayRepository) ListThemes(ctx context.Context, activeOnly bool) ([]*essay.Theme, error) {
	var result []*essay.Theme
	for _, t := range m.Themes {
		if activeOnly && !t.Active {
			continue
		}
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockEssayRepository) UpdateTheme(ctx context.Context, t *essay.Theme) error {
	if _, ok := m.Themes[t.ID]; !ok {
		return fmt.Errorf("theme not found")
	}
	m.Themes[t.ID] = t
	return nil
}

// MockLessonRepository is a mock implementation of lesson.Repository
type MockLessonRepository struct {
	Lessons  map[int64]*lesson.Lesson
	Progress map[string]*lesson.Progress
	NextID   int64
}

func NewMockLessonRepository() *MockLessonRepository {
	return &MockLessonRepository{
		Lessons:  make(map[int64]*lesson.Lesson),
		Progress: make(map[string]*lesson.Progress),
		NextID:   1,
	}
}

func (m *MockLessonRepository) Create(ctx context.Context, l *lesson.Lesson) error {
	l.ID = m.NextID
	m.NextID++
	m.Lessons[l.ID] = l
	return nil
}

func (m *MockLessonRepository) GetByID(ctx context.Context, id int64) (*lesson.Lesson, error) {
	l, ok := m.Lessons[id]
	if !ok {
		return nil, fmt.Errorf("lesson not found")
	}
	return l, nil
}

func (m *MockLessonRepository) List(ctx context.Context) ([]*lesson.Lesson, error) {
	var result []*lesson.Lesson
	for _, l := range m.Lessons {
		result = append(result, l)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result, nil
}

func (m *MockLessonRepository) Update(ctx context.Context, l *lesson.Lesson) error {
	if _, ok := m.Lessons[l.ID]; !ok {
		return fmt.Errorf("lesson not found")
	}
	m.Lessons[l.ID] = l
	return nil
}

func (m *MockLessonRepository) Delete(ctx context.Context, id int64) error {
	delete(m.Lessons, id)
	return nil
}

func (m *MockLessonRepository) UpsertProgress(ctx context.Context, p *lesson.Progress) error {
	key := fmt.Sprintf("%d/%d", p.UserID, p.LessonID)
	m.Progress[key] = p
	return nil
}

func (m *MockLessonRepository) ListProgress(ctx context.Context, userID int64) ([]*lesson.Progress, error) {
	var result []*lesson.Progress
	for _, p := range m.Progress {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	return result, nil
}

// MockMaterialRepository is a mock implementation of material.Repository
type MockMaterialRepository struct {
	Materials map[int64]*material.Material
	NextID    int64
}

func NewMockMaterialRepository() *MockMaterialRepository {
	return &MockMaterialRepository{
		Materials: make(map[int64]*material.Material),
		NextID:    1,
	}
}

func (m *MockMaterialRepository) Create(ctx context.Context, mat *material.Material) error {
	mat.ID = m.NextID
	m.NextID++
	m.Materials[mat.ID] = mat
	return nil
}

func (m *MockMaterialRepository) GetByID(ctx context.Context, id int64) (*material.Material, error) {
	mat, ok := m.Materials[id]
	if !ok {
		return nil, fmt.Errorf("material not found")
	}
	return mat, nil
}

func (m *MockMaterialRepository) List(ctx context.Context) ([]*material.Material, error) {
	var result []*material.Material
	for _, mat := range m.Materials {
		result = append(result, mat)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockMaterialRepository) Update(ctx context.Context, mat *material.Material) error {
	if _, ok := m.Materials[mat.ID]; !ok {
		return fmt.Errorf("material not found")
	}
	m.Materials[mat.ID] = mat
	return nil
}

func (m *MockMaterialRepository) Delete(ctx context.Context, id int64) error {
	delete(m.Materials, id)
	return nil
}

// MockChatRepository is a mock implementation of chat.Repository
type MockChatRepository struct {
	Tickets       map[int64]*chat.Ticket
	Messages      map[int64][]*chat.Message
	NextTicketID  int64
	NextMessageID int64
}

func NewMockChatRepository() *MockChatRepository {
	return &MockChatRepository{
		Tickets:       make(map[int64]*chat.Ticket),
		Messages:      make(map[int64][]*chat.Message),
		NextTicketID:  1,
		NextMessageID: 1,
	}
}

func (m *MockChatRepository) CreateTicket(ctx context.Context, t *chat.Ticket) error {
	t.ID = m.NextTicketID
	m.NextTicketID++
	m.Tickets[t.ID] = t
	return nil
}

func (m *MockChatRepository) GetTicket(ctx context.Context, id int64) (*chat.Ticket, error) {
	t, ok := m.Tickets[id]
	if !ok {
		return nil, fmt.Errorf("ticket not found")
	}
	return t, nil
}

func (m *MockChatRepository) ListByUser(ctx context.Context, userID int64) ([]*chat.Ticket, error) {
	var result []*chat.Ticket
	for _, t := range m.Tickets {
		if t.UserID == userID {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockChatRepository) ListOpen(ctx context.Context) ([]*chat.Ticket, error) {
	var result []*chat.Ticket
	for _, t := range m.Tickets {
		if t.Status == chat.StatusOpen {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockChatRepository) UpdateTicket(ctx context.Context, t *chat.Ticket) error {
	if _, ok := m.Tickets[t.ID]; !ok {
		return fmt.Errorf("ticket not found")
	}
	m.Tickets[t.ID] = t
	return nil
}

func (m *MockChatRepository) AddMessage(ctx context.Context, msg *chat.Message) error {
	if _, ok := m.Tickets[msg.TicketID]; !ok {
		return fmt.Errorf("ticket not found")
	}
	msg.ID = m.NextMessageID
	m.NextMessageID++
	m.Messages[msg.TicketID] = append(m.Messages[msg.TicketID], msg)
	m.Tickets[msg.TicketID].UpdatedAt = msg.SentAt
	return nil
}

func (m *MockChatRepository) ListMessages(ctx context.Context, ticketID int64) ([]*chat.Message, error) {
	return m.Messages[ticketID], nil
}

// MockMailer records sent mail instead of delivering it
type MockMailer struct {
	ResetEmails []string
	EssayAlerts [][]string
	SendError   error
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) SendPasswordReset(ctx context.Context, to, resetLink string) error {
	if m.SendError != nil {
		return m.SendError
	}
	m.ResetEmails = append(m.ResetEmails, to)
	return nil
}

func (m *MockMailer) SendEssayNotification(ctx context.Context, professorEmails []string, studentName, themeTitle string) error {
	if m.SendError != nil {
		return m.SendError
	}
	m.EssayAlerts = append(m.EssayAlerts, professorEmails)
	return nil
}
