// session.go - HMAC-signed cookie sessions and the middleware gating
// authenticated and admin-only routes. Tokens are "payload.signature"
// where payload is base64url JSON and the signature is hex HMAC-SHA256.
package server

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

// RoleAdmin marks accounts allowed to upload and delete materials.
const RoleAdmin = "admin"

// Sessions signs and verifies session cookies. The zero value works for
// tests; Secret must be set in production.
type Sessions struct {
	Secret     string
	TTL        time.Duration
	CookieName string
}

// Session is the signed cookie payload. Sub is the user id.
type Session struct {
	Sub  string `json:"sub"`
	Name string `json:"name"`
	Role string `json:"role"`
	Exp  int64  `json:"exp"`
}

func (s Sessions) cookieName() string {
	if s.CookieName == "" {
		return "portal_session"
	}
	return s.CookieName
}

func (s Sessions) ttl() time.Duration {
	if s.TTL == 0 {
		return 12 * time.Hour
	}
	return s.TTL
}

func (s Sessions) sign(payload string) string {
	m := hmac.New(sha256.New, []byte(s.Secret))
	_, _ = m.Write([]byte(payload))
	return hex.EncodeToString(m.Sum(nil))
}

// makeToken returns "payload.signature" and the expiry baked into it.
func (s Sessions) makeToken(sub, name, role string) (string, time.Time, error) {
	exp := time.Now().Add(s.ttl())
	b, err := json.Marshal(Session{Sub: sub, Name: name, Role: role, Exp: exp.Unix()})
	if err != nil {
		return "", time.Time{}, err
	}
	payload := base64.RawURLEncoding.EncodeToString(b)
	return payload + "." + s.sign(payload), exp, nil
}

func (s Sessions) verifyToken(tok string) (Session, error) {
	var sess Session
	parts := strings.Split(tok, ".")
	if len(parts) != 2 {
		return sess, errors.New("invalid token format")
	}
	if !hmac.Equal([]byte(parts[1]), []byte(s.sign(parts[0]))) {
		return sess, errors.New("invalid signature")
	}
	b, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return sess, err
	}
	if err := json.Unmarshal(b, &sess); err != nil {
		return sess, err
	}
	if sess.Exp <= time.Now().Unix() {
		return sess, errors.New("expired")
	}
	return sess, nil
}

func (s Sessions) setCookie(w http.ResponseWriter, tok string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName(),
		Value:    tok,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s Sessions) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName(),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

type ctxKey int

const sessionKey ctxKey = 0

// SessionFromContext returns the session stored by RequireUser.
func SessionFromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(sessionKey).(Session)
	return sess, ok
}

// RequireUser redirects to the landing page unless the request carries a
// valid session cookie. On success the session is stored in the request
// context for downstream handlers.
func (s Sessions) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(s.cookieName())
		if err != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		sess, err := s.verifyToken(c.Value)
		if err != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

// RequireAdmin sends non-admin users back to their dashboard. It must run
// inside RequireUser, which puts the session in the context.
func (s Sessions) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok || sess.Role != RoleAdmin {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
