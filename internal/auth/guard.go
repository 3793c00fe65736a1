package auth

import (
	"context"

	"github.com/w12190/message.ly/internal/models"
	"github.com/w12190/message.ly/internal/repo"
)

// ==========================
// Guard
// ==========================

// Guard resolves session tokens to identities and enforces per-message
// ownership before any read or state change.
type Guard struct {
	Users    *repo.UserRepo
	Messages *repo.MessageRepo
	Secret   []byte
}

func NewGuard(users *repo.UserRepo, messages *repo.MessageRepo, secret []byte) *Guard {
	return &Guard{Users: users, Messages: messages, Secret: secret}
}

// ==========================
// Resolve Identity
// ==========================

// ResolveIdentity verifies the token and confirms its subject still resolves
// to an account. A valid signature over a vanished user is still ErrInvalidToken.
func (g *Guard) ResolveIdentity(ctx context.Context, tokenString string) (string, error) {
	username, err := ParseSubject(tokenString, g.Secret)
	if err != nil {
		return "", err
	}

	if _, err := g.Users.GetByUsername(ctx, username); err != nil {
		return "", ErrInvalidToken
	}

	return username, nil
}

// ==========================
// Authorize Message Read
// ==========================

// AuthorizeMessageRead returns the message only when username is its sender
// or its recipient. Don't read your neighbor's mail.
func (g *Guard) AuthorizeMessageRead(ctx context.Context, username string, messageID int) (*models.MessageDetail, error) {
	msg, err := g.Messages.GetDetail(ctx, messageID)
	if err != nil {
		return nil, err
	}

	if username != msg.FromUser.Username && username != msg.ToUser.Username {
		return nil, ErrForbidden
	}

	return msg, nil
}

// ==========================
// Authorize Mark Read
// ==========================

// AuthorizeMarkRead performs the Unread -> Read transition. Only the recipient
// may trigger it; the sender is denied like any other non-recipient. Read is
// terminal: marking an already-read message returns the original receipt.
func (g *Guard) AuthorizeMarkRead(ctx context.Context, username string, messageID int) (*models.ReadReceipt, error) {
	msg, err := g.Messages.GetDetail(ctx, messageID)
	if err != nil {
		return nil, err
	}

	if username != msg.ToUser.Username {
		return nil, ErrForbidden
	}

	return g.Messages.MarkRead(ctx, messageID)
}

// ==========================
// Create Message
// ==========================

// CreateMessage records a message from the resolved identity. Self-sends are
// rejected before touching the store; a missing recipient surfaces as
// repo.ErrUserNotFound.
func (g *Guard) CreateMessage(ctx context.Context, sender, recipient, body string) (*models.Message, error) {
	if sender == recipient {
		return nil, repo.ErrSelfMessage
	}

	return g.Messages.Create(ctx, sender, recipient, body)
}

// ==========================
// Authorize Thread Access
// ==========================

// AuthorizeThreadAccess gates the per-user inbox/outbox listings: only the
// user themself may view them.
func (g *Guard) AuthorizeThreadAccess(requester, owner string) error {
	if requester != owner {
		return ErrForbidden
	}
	return nil
}
