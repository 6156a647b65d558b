package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/mestre-da-redacao/backend/internal/domain/chat"
	"github.com/mestre-da-redacao/backend/internal/pkg/errors"
)

// ChatRepository implements chat.Repository
type ChatRepository struct {
	db *sql.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *sql.DB) chat.Repository {
	return &ChatRepository{db: db}
}

// CreateTicket creates a new ticket
func (r *ChatRepository) CreateTicket(ctx context.Context, t *chat.Ticket) error {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	query := `
		INSERT INTO chat_tickets (user_id, subject, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		t.UserID, t.Subject, t.Status, now.Unix(), now.Unix(),
	)
	if err != nil {
		return errors.DatabaseError("Failed to create ticket", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.DatabaseError("Failed to get ticket ID", err)
	}

	t.ID = id
	return nil
}

// GetTicket retrieves a ticket by ID
func (r *ChatRepository) GetTicket(ctx context.Context, id int64) (*chat.Ticket, error) {
	query := `
		SELECT id, user_id, subject, status, created_at, updated_at
		FROM chat_tickets WHERE id = ?
	`

	var t chat.Ticket
	var createdAt, updatedAt int64

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.UserID, &t.Subject, &t.Status, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Ticket")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get ticket", err)
	}

	t.CreatedAt = time.Unix(createdAt, 0)
	t.UpdatedAt = time.Unix(updatedAt, 0)
	return &t, nil
}

// ListByUser lists a student's tickets, most recently updated first
func (r *ChatRepository) ListByUser(ctx context.Context, userID int64) ([]*chat.Ticket, error) {
	query := `
		SELECT id, user_id, subject, status, created_at, updated_at
		FROM chat_tickets
		WHERE user_id = ?
		ORDER BY updated_at DESC, id DESC
	`
	return r.listTickets(ctx, query, userID)
}

// ListOpen lists open tickets, oldest update first so stale tickets surface
func (r *ChatRepository) ListOpen(ctx context.Context) ([]*chat.Ticket, error) {
	query := `
		SELECT id, user_id, subject, status, created_at, updated_at
		FROM chat_tickets
		WHERE status = ?
		ORDER BY updated_at ASC, id ASC
	`
	return r.listTickets(ctx, query, chat.StatusOpen)
}

func (r *ChatRepository) listTickets(ctx context.Context, query string, args ...interface{}) ([]*chat.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list tickets", err)
	}
	defer rows.Close()

	var tickets []*chat.Ticket
	for rows.Next() {
		var t chat.Ticket
		var createdAt, updatedAt int64

		err := rows.Scan(&t.ID, &t.UserID, &t.Subject, &t.Status, &createdAt, &updatedAt)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan ticket", err)
		}

		t.CreatedAt = time.Unix(createdAt, 0)
		t.UpdatedAt = time.Unix(updatedAt, 0)
		tickets = append(tickets, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate tickets", err)
	}

	return tickets, nil
}

// UpdateTicket updates a ticket's subject and status
func (r *ChatRepository) UpdateTicket(ctx context.Context, t *chat.Ticket) error {
	t.UpdatedAt = time.Now()

	query := `
		UPDATE chat_tickets
		SET subject = ?, status = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, t.Subject, t.Status, t.UpdatedAt.Unix(), t.ID)
	if err != nil {
		return errors.DatabaseError("Failed to update ticket", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Ticket")
	}
	return nil
}

// AddMessage appends a message and bumps the ticket's updated_at
func (r *ChatRepository) AddMessage(ctx context.Context, m *chat.Message) error {
	if m.SentAt.IsZero() {
		m.SentAt = time.Now()
	}

	query := `
		INSERT INTO chat_messages (ticket_id, sender_id, body, sent_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, m.TicketID, m.SenderID, m.Body, m.SentAt.Unix())
	if err != nil {
		return errors.DatabaseError("Failed to add message", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.DatabaseError("Failed to get message ID", err)
	}
	m.ID = id

	_, err = r.db.ExecContext(ctx,
		`UPDATE chat_tickets SET updated_at = ? WHERE id = ?`,
		m.SentAt.Unix(), m.TicketID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to touch ticket", err)
	}

	return nil
}

// ListMessages lists a ticket's messages in order
func (r *ChatRepository) ListMessages(ctx context.Context, ticketID int64) ([]*chat.Message, error) {
	query := `
		SELECT id, ticket_id, sender_id, body, sent_at
		FROM chat_messages
		WHERE ticket_id = ?
		ORDER BY sent_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list messages", err)
	}
	defer rows.Close()

	var messages []*chat.Message
	for rows.Next() {
		var m chat.Message
		var sentAt int64

		err := rows.Scan(&m.ID, &m.TicketID, &m.SenderID, &m.Body, &sentAt)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan message", err)
		}

		m.SentAt = time.Unix(sentAt, 0)
		messages = append(messages, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate messages", err)
	}

	return messages, nil
}
