package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/w12190/message.ly/internal/models"
)

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB

	// BcryptCost is the work factor used when hashing new passwords.
	BcryptCost int
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(db *sql.DB, bcryptCost int) *UserRepo {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserRepo{DB: db, BcryptCost: bcryptCost}
}

// ==========================
// Create User
// ==========================

// Create hashes the raw password and inserts the account. The raw password is
// never stored; a hashing failure aborts before any row is written.
// A taken username surfaces as ErrDuplicateUsername.
func (r *UserRepo) Create(ctx context.Context, username, password, firstName, lastName, phone string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.BcryptCost)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO users (username, password_hash, first_name, last_name, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING username, password_hash, first_name, last_name, phone, created_at, last_login_at
	`

	user := &models.User{}

	err = r.DB.QueryRowContext(ctx, query, username, string(hash), firstName, lastName, phone).
		Scan(&user.Username, &user.PasswordHash, &user.FirstName, &user.LastName, &user.Phone, &user.CreatedAt, &user.LastLoginAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}

	return user, nil
}

// ==========================
// Get By Username
// ==========================
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT username, password_hash, first_name, last_name, phone, created_at, last_login_at
		FROM users
		WHERE username = $1
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, username).
		Scan(&user.Username, &user.PasswordHash, &user.FirstName, &user.LastName, &user.Phone, &user.CreatedAt, &user.LastLoginAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// ==========================
// Touch Login
// ==========================

// TouchLogin sets last_login_at to the current time and returns the updated row.
func (r *UserRepo) TouchLogin(ctx context.Context, username string) (*models.User, error) {
	query := `
		UPDATE users
		SET last_login_at = current_timestamp
		WHERE username = $1
		RETURNING username, password_hash, first_name, last_name, phone, created_at, last_login_at
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, username).
		Scan(&user.Username, &user.PasswordHash, &user.FirstName, &user.LastName, &user.Phone, &user.CreatedAt, &user.LastLoginAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// ==========================
// List Users
// ==========================

// List returns all accounts as summaries, ordered by username for stable output.
func (r *UserRepo) List(ctx context.Context) ([]models.UserSummary, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT username, first_name, last_name FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.UserSummary
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.Username, &u.FirstName, &u.LastName); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}
