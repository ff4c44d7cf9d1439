package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"lightbnb/internal/models"
)

const userColumns = "id, name, email, password"

func (db *DB) GetUserWithEmail(ctx context.Context, email string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = $1"
	return db.getUser(ctx, "GetUserWithEmail", query, strings.ToLower(email))
}

func (db *DB) GetUserWithID(ctx context.Context, id int64) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = $1"
	return db.getUser(ctx, "GetUserWithID", query, id)
}

func (db *DB) getUser(ctx context.Context, op, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Name, &user.Email, &user.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, db.fail(op, err)
	}
	return user, nil
}

// AddUser inserts user and returns the stored row. The password must already
// be hashed. The email is stored lower-cased so it matches GetUserWithEmail.
func (db *DB) AddUser(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
	INSERT INTO users (name, password, email)
	VALUES ($1, $2, $3)
	RETURNING ` + userColumns

	created := &models.User{}
	err := db.QueryRowContext(ctx, query, user.Name, user.Password, strings.ToLower(user.Email)).
		Scan(&created.ID, &created.Name, &created.Email, &created.Password)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, db.fail("AddUser", err)
	}
	return created, nil
}
