package security

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "lightbnb_session"
	userIDKey   = "user_id"
	sessionTTL  = 7 * 24 * 60 * 60
)

// SessionStore keeps the logged in user id in a signed cookie.
type SessionStore struct {
	store *sessions.CookieStore
}

func NewSessionStore(secret []byte, secure bool) *SessionStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionTTL,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionStore{store: store}
}

// Login records userID in the session cookie.
func (s *SessionStore) Login(w http.ResponseWriter, r *http.Request, userID int64) error {
	// Get only fails on a cookie that does not decode; a fresh session is
	// returned in that case and overwrites it.
	session, _ := s.store.Get(r, sessionName)
	session.Values[userIDKey] = userID
	return session.Save(r, w)
}

// UserID returns the logged in user id, if any.
func (s *SessionStore) UserID(r *http.Request) (int64, bool) {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		return 0, false
	}
	id, ok := session.Values[userIDKey].(int64)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

func (s *SessionStore) Logout(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, sessionName)
	delete(session.Values, userIDKey)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
