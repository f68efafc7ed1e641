// Package auth implements the HMAC-signed session cookie and the middleware
// that resolves it into a Session on the request context.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/smithpartners/lawdesk/httpx"
	"golang.org/x/crypto/bcrypt"
)

type ctxKey string

const (
	sessionCookieName = "session"
	sessionCtxKey     = ctxKey("session")

	// DefaultTTL is the lifetime of a fresh session cookie.
	DefaultTTL = 14 * 24 * time.Hour
)

// ErrInvalidCredentials is returned by CheckPassword on any mismatch.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Session identifies the signed-in user of a request.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// UserVerifier is an optional callback to validate that a session's user still exists.
type UserVerifier func(ctx context.Context, userID string) bool

// Sessions signs and verifies session cookies with a secret.
type Sessions struct {
	secret   []byte
	ttl      time.Duration
	verifier UserVerifier
	now      func() time.Time
}

// New returns a Sessions signer. secret must not be empty.
func New(secret string) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: DefaultTTL, now: time.Now}
}

// SetUserVerifier configures the verifier used by RequireSession.
func (s *Sessions) SetUserVerifier(v UserVerifier) { s.verifier = v }

func (s *Sessions) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Create sets a signed cookie carrying the session.
func (s *Sessions) Create(w http.ResponseWriter, sess Session) {
	expires := s.now().Add(s.ttl)
	raw := sess.UserID + "|" + sess.Email + "|" + strconv.FormatInt(expires.Unix(), 10)
	payload := base64.RawURLEncoding.EncodeToString([]byte(raw))
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    payload + "." + s.sign(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
}

// Clear deletes the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// Parse validates the cookie and returns its session.
func (s *Sessions) Parse(r *http.Request) (Session, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return Session{}, false
	}
	payload, sig, ok := strings.Cut(c.Value, ".")
	if !ok {
		return Session{}, false
	}
	if !hmac.Equal([]byte(sig), []byte(s.sign(payload))) {
		return Session{}, false
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return Session{}, false
	}
	parts := strings.Split(string(raw), "|")
	if len(parts) != 3 || parts[0] == "" {
		return Session{}, false
	}
	exp, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || s.now().Unix() > exp {
		return Session{}, false
	}
	return Session{UserID: parts[0], Email: parts[1]}, true
}

// WithSession stores the session in context.
func WithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey, sess)
}

// FromContext extracts the session.
func FromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(sessionCtxKey).(Session)
	return sess, ok
}

// Middleware attaches the session to the request context if present.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess, ok := s.Parse(r); ok {
			r = r.WithContext(WithSession(r.Context(), sess))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSession redirects to /login if not authenticated (HTML) or returns 401 JSON.
func (s *Sessions) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := FromContext(r.Context())
		if ok && s.verifier != nil && !s.verifier(r.Context(), sess.UserID) {
			// Session refers to a deleted user: clear and treat as unauthorized.
			s.Clear(w)
			ok = false
		}
		if !ok {
			if wantsJSON(r) {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword compares a bcrypt hash with a candidate password.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
