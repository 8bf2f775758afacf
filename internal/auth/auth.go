package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"

	"github.com/chateshreyas231/dineasy-sub000/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Store struct {
	sc    *securecookie.SecureCookie
	users *store.Users
}

type ctxKey string

const userIDKey ctxKey = "userID"

const cookieName = "dineasy_session"

func NewStore(users *store.Users, hashKey, blockKey []byte) *Store {
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int((14 * 24 * time.Hour).Seconds()))
	return &Store{sc: sc, users: users}
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

func (s *Store) CreateUser(ctx context.Context, username, password, pushToken string) (string, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return "", err
	}
	u := store.User{
		ID:             uuid.NewString(),
		Username:       username,
		PasswordBcrypt: hash,
		PushToken:      pushToken,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return "", err
	}
	return u.ID, nil
}

func (s *Store) Authenticate(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if !CheckPassword(u.PasswordBcrypt, password) {
		return "", ErrInvalidCredentials
	}
	return u.ID, nil
}

type Session struct {
	UserID string
}

func (s *Store) SetSession(w http.ResponseWriter, r *http.Request, userID string) error {
	val := map[string]any{"uid": userID, "v": 1}
	encoded, err := s.sc.Encode(cookieName, val)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		MaxAge:   int((14 * 24 * time.Hour).Seconds()),
	})
	return nil
}

func (s *Store) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (s *Store) GetSession(r *http.Request) (Session, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return Session{}, false
	}
	val := map[string]any{}
	if err := s.sc.Decode(cookieName, c.Value, &val); err != nil {
		return Session{}, false
	}
	uid, ok := val["uid"].(string)
	if !ok || uid == "" {
		return Session{}, false
	}
	return Session{UserID: uid}, true
}

// RequireAuth guards API routes; callers without a valid session cookie get a
// 401 rather than a redirect since the surface is JSON.
func (s *Store) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.GetSession(r)
		if !ok {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, sess.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userIDKey).(string)
	return uid, ok
}
