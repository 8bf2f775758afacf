package store

import (
	"context"
	"time"

	"github.com/chateshreyas231/dineasy-sub000/internal/db"
)

type User struct {
	ID             string
	Username       string
	PasswordBcrypt string
	PushToken      string
	CreatedAt      time.Time
}

// Users is the postgres repository for accounts.
type Users struct{ db *db.DB }

func NewUsers(d *db.DB) *Users { return &Users{db: d} }

func (r *Users) CreateUser(ctx context.Context, u User) error {
	return r.db.Exec(ctx, `
INSERT INTO users(id,username,password_bcrypt,push_token)
VALUES ($1,$2,$3,$4)`, u.ID, u.Username, u.PasswordBcrypt, u.PushToken)
}

func (r *Users) GetUser(ctx context.Context, id string) (User, error) {
	var u User
	err := r.db.QueryRow(ctx, `
SELECT id,username,password_bcrypt,push_token,created_at FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Username, &u.PasswordBcrypt, &u.PushToken, &u.CreatedAt)
	if err != nil {
		return User{}, db.WrapNotFound(err)
	}
	return u, nil
}

func (r *Users) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := r.db.QueryRow(ctx, `
SELECT id,username,password_bcrypt,push_token,created_at FROM users WHERE username=$1`, username).
		Scan(&u.ID, &u.Username, &u.PasswordBcrypt, &u.PushToken, &u.CreatedAt)
	if err != nil {
		return User{}, db.WrapNotFound(err)
	}
	return u, nil
}

func (r *Users) SetPushToken(ctx context.Context, userID, token string) error {
	return r.db.Exec(ctx, `UPDATE users SET push_token=$2 WHERE id=$1`, userID, token)
}

// PushToken implements the scheduler's TokenSource.
func (r *Users) PushToken(ctx context.Context, userID string) (string, error) {
	var token string
	err := r.db.QueryRow(ctx, `SELECT push_token FROM users WHERE id=$1`, userID).Scan(&token)
	if err != nil {
		return "", db.WrapNotFound(err)
	}
	return token, nil
}
