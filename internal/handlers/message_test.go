package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/w12190/message.ly/internal/auth"
	"github.com/w12190/message.ly/internal/repo"
)

func newMessageHandler(db *sqlmockDB) *MessageHandler {
	users := repo.NewUserRepo(db.DB, bcrypt.MinCost)
	messages := repo.NewMessageRepo(db.DB)
	return &MessageHandler{Guard: auth.NewGuard(users, messages, []byte("test-secret"))}
}

// bobToAliceRows is the joined detail row for message 1, bob -> alice.
func bobToAliceRows(readAt interface{}) *sqlmock.Rows {
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

func TestMessageHandler_GetMessage(t *testing.T) {
	db := newSqlmockDB(t)

	db.Mock.ExpectQuery(`SELECT m.id, m.body`).
		WithArgs(1).
		WillReturnRows(bobToAliceRows(nil))

	h := newMessageHandler(db)

	req := requestWithChiURLParams("GET", "/messages/1", nil, map[string]string{"id": "1"})
	req = withIdentity(req, "alice")
	rr := httptest.NewRecorder()
	h.GetMessage(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("GetMessage status: got %d, want 200, body: %s", rr.Code, rr.Body.String())
	}
	var out struct {
		Message struct {
			ID       int     `json:"id"`
			Body     string  `json:"body"`
			ReadAt   *string `json:"read_at"`
			FromUser struct {
				Username string `json:"username"`
			} `json:"from_user"`
			ToUser struct {
				Username string `json:"username"`
			} `json:"to_user"`
		} `json:"message"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Message.ID != 1 || out.Message.FromUser.Username != "bob" || out.Message.ToUser.Username != "alice" {
		t.Errorf("unexpected message: %+v", out.Message)
	}
	if out.Message.ReadAt != nil {
		t.Errorf("read_at should still be null, got %v", *out.Message.ReadAt)
	}
	if err := db.Mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestMessageHandler_GetMessage_Forbidden(t *testing.T) {
	db := newSqlmockDB(t)

	db.Mock.ExpectQuery(`SELECT m.id, m.body`).
		WithArgs(1).
		WillReturnRows(bobToAliceRows(nil))

	h := newMessageHandler(db)

	req := requestWithChiURLParams("GET", "/messages/1", nil, map[string]string{"id": "1"})
	req = withIdentity(req, "eve")
	rr := httptest.NewRecorder()
	h.GetMessage(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("GetMessage status: got %d, want 403", rr.Code)
	}
}

func TestMessageHandler_GetMessage_NotFound(t *testing.T) {
	db := newSqlmockDB(t)

	db.Mock.ExpectQuery(`SELECT m.id, m.body`).
		WithArgs(999).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	h := newMessageHandler(db)

	req := requestWithChiURLParams("GET", "/messages/999", nil, map[string]string{"id": "999"})
	req = withIdentity(req, "alice")
	rr := httptest.NewRecorder()
	h.GetMessage(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("GetMessage status: got %d, want 404", rr.Code)
	}
}

func TestMessageHandler_GetMessage_BadID(t *testing.T) {
	db := newSqlmockDB(t)
	h := newMessageHandler(db)

	req := requestWithChiURLParams("GET", "/messages/abc", nil, map[string]string{"id": "abc"})
	req = withIdentity(req, "alice")
	rr := httptest.NewRecorder()
	h.GetMessage(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("GetMessage status: got %d, want 404", rr.Code)
	}
}

func TestMessageHandler_CreateMessage(t *testing.T) {
	db := newSqlmockDB(t)

	now := time.Now()
	db.Mock.ExpectQuery(`INSERT INTO messages`).
		WithArgs("bob", "alice", "hi").
		WillReturnRows(sqlmock.NewRows([]string{"id", "from_username", "to_username", "body", "sent_at", "read_at"}).
			AddRow(1, "bob", "alice", "hi", now, nil))

	h := newMessageHandler(db)

	body, _ := json.Marshal(map[string]string{"to_username": "alice", "body": "hi"})
	req := httptest.NewRequest("POST", "/messages", bytes.NewReader(body))
	req = withIdentity(req, "bob")
	rr := httptest.NewRecorder()
	h.CreateMessage(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("CreateMessage status: got %d, want 201, body: %s", rr.Code, rr.Body.String())
	}
	var out struct {
		Message struct {
			ID           int     `json:"id"`
			FromUsername string  `json:"from_username"`
			ToUsername   string  `json:"to_username"`
			ReadAt       *string `json:"read_at"`
		} `json:"message"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Message.ID != 1 || out.Message.FromUsername != "bob" || out.Message.ToUsername != "alice" {
		t.Errorf("unexpected message: %+v", out.Message)
	}
	if err := db.Mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestMessageHandler_CreateMessage_SelfSend(t *testing.T) {
	db := newSqlmockDB(t)
	h := newMessageHandler(db)

	body, _ := json.Marshal(map[string]string{"to_username": "bob", "body": "hi me"})
	req := httptest.NewRequest("POST", "/messages", bytes.NewReader(body))
	req = withIdentity(req, "bob")
	rr := httptest.NewRecorder()
	h.CreateMessage(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("CreateMessage status: got %d, want 400", rr.Code)
	}
	if err := db.Mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestMessageHandler_CreateMessage_MissingRecipient(t *testing.T) {
	db := newSqlmockDB(t)

	db.Mock.ExpectQuery(`INSERT INTO messages`).
		WithArgs("bob", "ghost", "hi").
		WillReturnError(&pq.Error{Code: "23503"})

	h := newMessageHandler(db)

	body, _ := json.Marshal(map[string]string{"to_username": "ghost", "body": "hi"})
	req := httptest.NewRequest("POST", "/messages", bytes.NewReader(body))
	req = withIdentity(req, "bob")
	rr := httptest.NewRecorder()
	h.CreateMessage(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("CreateMessage status: got %d, want 404", rr.Code)
	}
}

func TestMessageHandler_MarkRead(t *testing.T) {
	db := newSqlmockDB(t)

	now := time.Now()
	db.Mock.ExpectQuery(`SELECT m.id, m.body`).
		WithArgs(1).
		WillReturnRows(bobToAliceRows(nil))
	db.Mock.ExpectQuery(`UPDATE messages\s+SET read_at = current_timestamp`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "read_at"}).AddRow(1, now))

	h := newMessageHandler(db)

	req := requestWithChiURLParams("POST", "/messages/1/read", nil, map[string]string{"id": "1"})
	req = withIdentity(req, "alice")
	rr := httptest.NewRecorder()
	h.MarkRead(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("MarkRead status: got %d, want 200, body: %s", rr.Code, rr.Body.String())
	}
	var out struct {
		Message struct {
			ID     int     `json:"id"`
			ReadAt *string `json:"read_at"`
		} `json:"message"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Message.ID != 1 || out.Message.ReadAt == nil {
		t.Errorf("unexpected receipt: %+v", out.Message)
	}
	if err := db.Mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestMessageHandler_MarkRead_SenderDenied(t *testing.T) {
	db := newSqlmockDB(t)

	db.Mock.ExpectQuery(`SELECT m.id, m.body`).
		WithArgs(1).
		WillReturnRows(bobToAliceRows(nil))

	h := newMessageHandler(db)

	req := requestWithChiURLParams("POST", "/messages/1/read", nil, map[string]string{"id": "1"})
	req = withIdentity(req, "bob")
	rr := httptest.NewRecorder()
	h.MarkRead(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("MarkRead status: got %d, want 403", rr.Code)
	}
}
