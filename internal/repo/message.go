package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/w12190/message.ly/internal/models"
)

// ==========================
// MessageRepo
// ==========================
type MessageRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{DB: db}
}

// ==========================
// Create Message
// ==========================

// Create inserts a message with sent_at = now and read_at unset. A missing
// recipient surfaces as ErrUserNotFound via the foreign key; the table CHECK
// backstops the sender != recipient rule.
func (r *MessageRepo) Create(ctx context.Context, from, to, body string) (*models.Message, error) {
	query := `
		INSERT INTO messages (from_username, to_username, body)
		VALUES ($1, $2, $3)
		RETURNING id, from_username, to_username, body, sent_at, read_at
	`

	msg := &models.Message{}

	err := r.DB.QueryRowContext(ctx, query, from, to, body).
		Scan(&msg.ID, &msg.FromUsername, &msg.ToUsername, &msg.Body, &msg.SentAt, &msg.ReadAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23503":
				return nil, ErrUserNotFound
			case "23514":
				return nil, ErrSelfMessage
			}
		}
		return nil, err
	}

	return msg, nil
}

// ==========================
// Get Detail By ID
// ==========================

// GetDetail loads a message with both parties joined in, projected into the
// from_user/to_user shape the API exposes.
func (r *MessageRepo) GetDetail(ctx context.Context, id int) (*models.MessageDetail, error) {
	query := `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       f.username, f.first_name, f.last_name, f.phone,
		       t.username, t.first_name, t.last_name, t.phone
		FROM messages AS m
		JOIN users AS f ON m.from_username = f.username
		JOIN users AS t ON m.to_username = t.username
		WHERE m.id = $1
	`

	msg := &models.MessageDetail{}

	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&msg.ID, &msg.Body, &msg.SentAt, &msg.ReadAt,
		&msg.FromUser.Username, &msg.FromUser.FirstName, &msg.FromUser.LastName, &msg.FromUser.Phone,
		&msg.ToUser.Username, &msg.ToUser.FirstName, &msg.ToUser.LastName, &msg.ToUser.Phone,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}

	return msg, nil
}

// ==========================
// Mark Read
// ==========================

// MarkRead transitions read_at from NULL to now. Once set, read_at never
// changes: a second call re-reads the row and returns the original receipt,
// so callers see the same success either way.
func (r *MessageRepo) MarkRead(ctx context.Context, id int) (*models.ReadReceipt, error) {
	receipt := &models.ReadReceipt{}

	err := r.DB.QueryRowContext(ctx, `
		UPDATE messages
		SET read_at = current_timestamp
		WHERE id = $1 AND read_at IS NULL
		RETURNING id, read_at
	`, id).Scan(&receipt.ID, &receipt.ReadAt)

	if err == nil {
		return receipt, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// Already read, or no such message.
	err = r.DB.QueryRowContext(ctx, `SELECT id, read_at FROM messages WHERE id = $1`, id).
		Scan(&receipt.ID, &receipt.ReadAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}

	return receipt, nil
}

// ==========================
// List To (inbox)
// ==========================

// ListTo returns all messages sent to username, each with the sender embedded,
// ordered by id.
func (r *MessageRepo) ListTo(ctx context.Context, username string) ([]models.InboxMessage, error) {
	query := `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       u.username, u.first_name, u.last_name, u.phone
		FROM messages AS m
		JOIN users AS u ON m.from_username = u.username
		WHERE m.to_username = $1
		ORDER BY m.id
	`

	rows, err := r.DB.QueryContext(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.InboxMessage
	for rows.Next() {
		var m models.InboxMessage
		if err := rows.Scan(
			&m.ID, &m.Body, &m.SentAt, &m.ReadAt,
			&m.FromUser.Username, &m.FromUser.FirstName, &m.FromUser.LastName, &m.FromUser.Phone,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

// ==========================
// List From (outbox)
// ==========================

// ListFrom returns all messages sent by username, each with the recipient
// embedded, ordered by id.
func (r *MessageRepo) ListFrom(ctx context.Context, username string) ([]models.OutboxMessage, error) {
	query := `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       u.username, u.first_name, u.last_name, u.phone
		FROM messages AS m
		JOIN users AS u ON m.to_username = u.username
		WHERE m.from_username = $1
		ORDER BY m.id
	`

	rows, err := r.DB.QueryContext(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.OutboxMessage
	for rows.Next() {
		var m models.OutboxMessage
		if err := rows.Scan(
			&m.ID, &m.Body, &m.SentAt, &m.ReadAt,
			&m.ToUser.Username, &m.ToUser.FirstName, &m.ToUser.LastName, &m.ToUser.Phone,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}
