package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Jamshid777/exwebfullstack/backend/internal/models"
)

// CreateUser inserts a new operator account.
func CreateUser(ctx context.Context, username string, passwordHash string) (*models.User, error) {
	user := &models.User{
		Username: username,
		Password: passwordHash, // This is the hash
	}

	query := `INSERT INTO users (username, password_hash) VALUES ($1, $2)
			  RETURNING id, created_at`

	err := DB.QueryRow(ctx, query, username, passwordHash).
		Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByUsername retrieves an operator by username.
func GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`

	err := DB.QueryRow(ctx, query, username).
		Scan(&user.ID, &user.Username, &user.Password, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // User not found, return nil without error
		}
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves an operator by ID.
func GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, username, password_hash, created_at FROM users WHERE id = $1`

	err := DB.QueryRow(ctx, query, userID).
		Scan(&user.ID, &user.Username, &user.Password, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}
	return user, nil
}
