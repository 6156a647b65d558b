package chat

import (
	"context"
	"time"
)

// Ticket represents a support conversation between a student and professors
type Ticket struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Subject   string    `json:"subject"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ticket status
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Message is a single entry in a ticket
type Message struct {
	ID       int64     `json:"id"`
	TicketID int64     `json:"ticket_id"`
	SenderID int64     `json:"sender_id"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"`
}

// Repository defines the interface for chat data access
type Repository interface {
	CreateTicket(ctx context.Context, t *Ticket) error
	GetTicket(ctx context.Context, id int64) (*Ticket, error)
	ListByUser(ctx context.Context, userID int64) ([]*Ticket, error)
	ListOpen(ctx context.Context) ([]*Ticket, error)
	UpdateTicket(ctx context.Context, t *Ticket) error
	AddMessage(ctx context.Context, m *Message) error
	ListMessages(ctx context.Context, ticketID int64) ([]*Message, error)
}

// Service defines chat business operations
type Service interface {
	Open(ctx context.Context, userID int64, subject, body string) (*Ticket, error)
	Get(ctx context.Context, requesterID int64, requesterStaff bool, ticketID int64) (*Ticket, []*Message, error)
	ListMine(ctx context.Context, userID int64) ([]*Ticket, error)
	ListOpen(ctx context.Context) ([]*Ticket, error)
	Reply(ctx context.Context, senderID int64, senderStaff bool, ticketID int64, body string) (*Message, error)
	Close(ctx context.Context, requesterID int64, requesterStaff bool, ticketID int64) error
}
