package models

import "time"

// Message is a single-recipient text record between two accounts.
// ReadAt is nil until the recipient marks the message read; once set it is
// never cleared.
type Message struct {
	ID           int        `json:"id"`
	FromUsername string     `json:"from_username"`
	ToUsername   string     `json:"to_username"`
	Body         string     `json:"body"`
	SentAt       time.Time  `json:"sent_at"`
	ReadAt       *time.Time `json:"read_at"`
}

// MessageDetail is the fetch-by-id projection with both parties embedded.
type MessageDetail struct {
	ID       int         `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
	FromUser UserContact `json:"from_user"`
	ToUser   UserContact `json:"to_user"`
}

// InboxMessage is one row of a recipient's thread listing.
type InboxMessage struct {
	ID       int         `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
	FromUser UserContact `json:"from_user"`
}

// OutboxMessage is one row of a sender's thread listing.
type OutboxMessage struct {
	ID     int         `json:"id"`
	Body   string      `json:"body"`
	SentAt time.Time   `json:"sent_at"`
	ReadAt *time.Time  `json:"read_at"`
	ToUser UserContact `json:"to_user"`
}

// ReadReceipt is the mark-read response shape.
type ReadReceipt struct {
	ID     int        `json:"id"`
	ReadAt *time.Time `json:"read_at"`
}
