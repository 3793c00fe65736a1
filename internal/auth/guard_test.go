package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/w12190/message.ly/internal/repo"
)

func newTestGuard(t *testing.T) (*Guard, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewGuard(repo.NewUserRepo(db, bcrypt.MinCost), repo.NewMessageRepo(db), []byte("test-secret")), mock
}

func detailRows(readAt interface{}) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "body", "sent_at", "read_at",
		"f_username", "f_first_name", "f_last_name", "f_phone",
		"t_username", "t_first_name", "t_last_name", "t_phone",
	}).AddRow(
		1, "hi", time.Now(), readAt,
		"bob", "Bob", "Builder", "555-0101",
		"alice", "Alice", "Liddell", "555-0100",
	)
}

func TestGuard_ResolveIdentity(t *testing.T) {
	g, mock := newTestGuard(t)

	token, err := GenerateToken("alice", []byte("test-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	mock.ExpectQuery(`SELECT username, password_hash`).
		WithArgs("alice").
		WillReturnRows(userRow("alice", "hash"))

	username, err := g.ResolveIdentity(context.Background(), token)
	if err != nil {
		t.Fatalf("ResolveIdentity: %v", err)
	}
	if username != "alice" {
		t.Errorf("identity: got %q, want %q", username, "alice")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestGuard_ResolveIdentity_VanishedUser(t *testing.T) {
	g, mock := newTestGuard(t)

	token, err := GenerateToken("ghost", []byte("test-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	mock.ExpectQuery(`SELECT username, password_hash`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"username"}))

	_, err = g.ResolveIdentity(context.Background(), token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for vanished subject, got: %v", err)
	}
}

func TestGuard_ResolveIdentity_BadToken(t *testing.T) {
	g, _ := newTestGuard(t)

	_, err := g.ResolveIdentity(context.Background(), "not-a-token")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got: %v", err)
	}
}

func TestGuard_AuthorizeMessageRead_Ownership(t *testing.T) {
	// Message 1 is bob -> alice. Access is granted iff the requester is one
	// of the two parties.
	cases := []struct {
		requester string
		allowed   bool
	}{
		{"bob", true},
		{"alice", true},
		{"eve", false},
		{"mallory", false},
		{"", false},
	}

	for _, tc := range cases {
		t.Run(tc.requester, func(t *testing.T) {
			g, mock := newTestGuard(t)
			mock.ExpectQuery(`SELECT m.id, m.body`).
				WithArgs(1).
				WillReturnRows(detailRows(nil))

			msg, err := g.AuthorizeMessageRead(context.Background(), tc.requester, 1)
			if tc.allowed {
				if err != nil {
					t.Fatalf("expected access for %q: %v", tc.requester, err)
				}
				if msg.ID != 1 {
					t.Errorf("unexpected message: %+v", msg)
				}
			} else {
				if !errors.Is(err, ErrForbidden) {
					t.Fatalf("expected ErrForbidden for %q, got: %v", tc.requester, err)
				}
			}
		})
	}
}

func TestGuard_AuthorizeMessageRead_NotFound(t *testing.T) {
	g, mock := newTestGuard(t)

	mock.ExpectQuery(`SELECT m.id, m.body`).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := g.AuthorizeMessageRead(context.Background(), "alice", 42)
	if !errors.Is(err, repo.ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got: %v", err)
	}
}

func TestGuard_AuthorizeMarkRead_RecipientOnly(t *testing.T) {
	// Only the recipient may mark read; the sender is denied like any
	// other non-recipient.
	for _, requester := range []string{"bob", "eve"} {
		t.Run(requester, func(t *testing.T) {
			g, mock := newTestGuard(t)
			mock.ExpectQuery(`SELECT m.id, m.body`).
				WithArgs(1).
				WillReturnRows(detailRows(nil))

			_, err := g.AuthorizeMarkRead(context.Background(), requester, 1)
			if !errors.Is(err, ErrForbidden) {
				t.Fatalf("expected ErrForbidden for %q, got: %v", requester, err)
			}
		})
	}
}

func TestGuard_AuthorizeMarkRead_Recipient(t *testing.T) {
	g, mock := newTestGuard(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT m.id, m.body`).
		WithArgs(1).
		WillReturnRows(detailRows(nil))
	mock.ExpectQuery(`UPDATE messages\s+SET read_at = current_timestamp`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "read_at"}).AddRow(1, now))

	receipt, err := g.AuthorizeMarkRead(context.Background(), "alice", 1)
	if err != nil {
		t.Fatalf("AuthorizeMarkRead: %v", err)
	}
	if receipt.ID != 1 || receipt.ReadAt == nil {
		t.Errorf("unexpected receipt: %+v", receipt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestGuard_CreateMessage_SelfSend(t *testing.T) {
	g, mock := newTestGuard(t)

	// Rejected before any SQL runs.
	_, err := g.CreateMessage(context.Background(), "alice", "alice", "hi me")
	if !errors.Is(err, repo.ErrSelfMessage) {
		t.Fatalf("expected ErrSelfMessage, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestGuard_CreateMessage(t *testing.T) {
	g, mock := newTestGuard(t)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO messages`).
		WithArgs("bob", "alice", "hi").
		WillReturnRows(sqlmock.NewRows([]string{"id", "from_username", "to_username", "body", "sent_at", "read_at"}).
			AddRow(1, "bob", "alice", "hi", now, nil))

	msg, err := g.CreateMessage(context.Background(), "bob", "alice", "hi")
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if msg.ID != 1 || msg.ReadAt != nil {
		t.Errorf("unexpected message: %+v", msg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestGuard_AuthorizeThreadAccess(t *testing.T) {
	g, _ := newTestGuard(t)

	if err := g.AuthorizeThreadAccess("alice", "alice"); err != nil {
		t.Errorf("owner denied: %v", err)
	}
	if err := g.AuthorizeThreadAccess("eve", "alice"); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got: %v", err)
	}
}
