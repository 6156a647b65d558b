package services

import (
	"context"
	"time"

	"github.com/mestre-da-redacao/backend/internal/domain/chat"
	"github.com/mestre-da-redacao/backend/internal/pkg/errors"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
)

// ChatService implements chat.Service
type ChatService struct {
	repo   chat.Repository
	logger *logger.Logger
	now    func() time.Time
}

// NewChatService creates a new chat service
func NewChatService(repo chat.Repository, log *logger.Logger) *ChatService {
	return &ChatService{repo: repo, logger: log, now: time.Now}
}

// Open creates a ticket with its first message
func (s *ChatService) Open(ctx context.Context, userID int64, subject, body string) (*chat.Ticket, error) {
	t := &chat.Ticket{
		UserID:  userID,
		Subject: subject,
		Status:  chat.StatusOpen,
	}
	if err := s.repo.CreateTicket(ctx, t); err != nil {
		return nil, err
	}

	msg := &chat.Message{
		TicketID: t.ID,
		SenderID: userID,
		Body:     body,
		SentAt:   s.now(),
	}
	if err := s.repo.AddMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"ticket_id": t.ID,
		"user_id":   userID,
	}).Info("Chat ticket opened")

	return t, nil
}

// Get retrieves a ticket and its messages, restricted to the owner or staff
func (s *ChatService) Get(ctx context.Context, requesterID int64, requesterStaff bool, ticketID int64) (*chat.Ticket, []*chat.Message, error) {
	t, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if !requesterStaff && t.UserID != requesterID {
		return nil, nil, errors.Forbidden("Ticket belongs to another student")
	}
	msgs, err := s.repo.ListMessages(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	return t, msgs, nil
}

// ListMine lists the requesting student's tickets
func (s *ChatService) ListMine(ctx context.Context, userID int64) ([]*chat.Ticket, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ListOpen lists open tickets for professors
func (s *ChatService) ListOpen(ctx context.Context) ([]*chat.Ticket, error) {
	return s.repo.ListOpen(ctx)
}

// Reply appends a message to an open ticket
func (s *ChatService) Reply(ctx context.Context, senderID int64, senderStaff bool, ticketID int64, body string) (*chat.Message, error) {
	t, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !senderStaff && t.UserID != senderID {
		return nil, errors.Forbidden("Ticket belongs to another student")
	}
	if t.Status != chat.StatusOpen {
		return nil, errors.Conflict("Ticket is closed")
	}

	msg := &chat.Message{
		TicketID: ticketID,
		SenderID: senderID,
		Body:     body,
		SentAt:   s.now(),
	}
	if err := s.repo.AddMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Close marks a ticket closed
func (s *ChatService) Close(ctx context.Context, requesterID int64, requesterStaff bool, ticketID int64) error {
	t, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if !requesterStaff && t.UserID != requesterID {
		return errors.Forbidden("Ticket belongs to another student")
	}
	if t.Status == chat.StatusClosed {
		return nil
	}
	t.Status = chat.StatusClosed
	return s.repo.UpdateTicket(ctx, t)
}
