package auth

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testStore() *Store {
	return NewStore(nil, bytes.Repeat([]byte{'h'}, 32), bytes.Repeat([]byte{'b'}, 32))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter2" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPassword(hash, "hunter2") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(hash, "hunter3") {
		t.Fatal("wrong password accepted")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s := testStore()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	if err := s.SetSession(rec, req, "u-1"); err != nil {
		t.Fatalf("set session: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies", len(cookies))
	}

	next := httptest.NewRequest(http.MethodGet, "/api/monitors", nil)
	next.AddCookie(cookies[0])
	sess, ok := s.GetSession(next)
	if !ok || sess.UserID != "u-1" {
		t.Fatalf("session = %+v, ok = %v", sess, ok)
	}
}

func TestGetSessionRejectsTamperedCookie(t *testing.T) {
	s := testStore()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "dineasy_session", Value: "forged"})
	if _, ok := s.GetSession(req); ok {
		t.Fatal("forged cookie accepted")
	}

	if _, ok := s.GetSession(httptest.NewRequest(http.MethodGet, "/", nil)); ok {
		t.Fatal("missing cookie accepted")
	}
}

func TestGetSessionRejectsOtherKeys(t *testing.T) {
	a := testStore()
	b := NewStore(nil, bytes.Repeat([]byte{'x'}, 32), bytes.Repeat([]byte{'y'}, 32))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	if err := a.SetSession(rec, req, "u-1"); err != nil {
		t.Fatalf("set session: %v", err)
	}
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(rec.Result().Cookies()[0])
	if _, ok := b.GetSession(next); ok {
		t.Fatal("cookie signed with different keys accepted")
	}
}

func TestRequireAuth(t *testing.T) {
	s := testStore()
	var gotUID string
	h := s.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/monitors", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", rec.Code)
	}

	login := httptest.NewRecorder()
	if err := s.SetSession(login, httptest.NewRequest(http.MethodPost, "/login", nil), "u-1"); err != nil {
		t.Fatalf("set session: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/monitors", nil)
	req.AddCookie(login.Result().Cookies()[0])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authed status = %d", rec.Code)
	}
	if gotUID != "u-1" {
		t.Fatalf("context uid = %q", gotUID)
	}
}
