package session

import (
	"net/http"
	"sync"
	"time"
)

const (
	TokenCookieName = "token"
	TokenTTL        = 7 * 24 * time.Hour
)

type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Session holds the bearer token with cookie semantics: the token is the sole
// signal for the authenticated state and reads as absent once expired.
type Session struct {
	mu    sync.Mutex
	token *Token
	now   func() time.Time
	store *Store
}

func NewSession() *Session {
	return &Session{
		now:   time.Now,
		store: NewStore(),
	}
}

// SetToken installs a fresh token with the 7-day expiry and notifies
// subscribers.
func (s *Session) SetToken(value string) {
	s.mu.Lock()
	s.token = &Token{
		Value:     value,
		ExpiresAt: s.now().Add(TokenTTL),
	}
	s.mu.Unlock()

	s.store.Notify()
}

// Token implements finance_api.TokenSource.
func (s *Session) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == nil {
		return "", false
	}
	if !s.now().Before(s.token.ExpiresAt) {
		s.token = nil
		return "", false
	}

	return s.token.Value, true
}

func (s *Session) Authenticated() bool {
	_, ok := s.Token()
	return ok
}

// Logout discards the token unconditionally and notifies subscribers.
func (s *Session) Logout() {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()

	s.store.Notify()
}

// Subscribe registers a callback fired on every auth-state change.
func (s *Session) Subscribe(fn func()) func() {
	return s.store.Subscribe(fn)
}

// Cookie renders the token as the browser cookie the web client sets. In
// production the cookie is domain-scoped with secure cross-site flags.
func (s *Session) Cookie(domain string, production bool) *http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()

	cookie := &http.Cookie{
		Name: TokenCookieName,
		Path: "/",
	}
	if s.token != nil {
		cookie.Value = s.token.Value
		cookie.Expires = s.token.ExpiresAt
	}
	if production {
		cookie.Domain = domain
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode
	}

	return cookie
}

// FromCookie seeds the session from a stored cookie, keeping the cookie's own
// expiry instead of restarting the 7-day window.
func (s *Session) FromCookie(cookie *http.Cookie) {
	if cookie == nil || cookie.Name != TokenCookieName || cookie.Value == "" {
		return
	}

	expires := cookie.Expires
	if expires.IsZero() {
		expires = s.now().Add(TokenTTL)
	}

	s.mu.Lock()
	s.token = &Token{
		Value:     cookie.Value,
		ExpiresAt: expires,
	}
	s.mu.Unlock()

	s.store.Notify()
}
