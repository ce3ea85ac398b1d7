// auth.go - Login, logout and registration handlers.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dreamingfree09/study-portal/internal/lib/sl"
	"github.com/dreamingfree09/study-portal/internal/store"
)

// RegisterRequest is the registration form, validated before any write.
type RegisterRequest struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	College  string `validate:"required"`
	Branch   string `validate:"required"`
	Year     string `validate:"required"`
}

var validate = validator.New()

// hashPassword generates a bcrypt hash of the password.
func hashPassword(password string) (string, error) {
	// bcrypt cost of 12 is a good balance of security and performance.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword compares a password with its hash.
func verifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// loginHandler authenticates against the user store and issues a signed
// session cookie carrying the user's id, name and role. Failure goes back
// to the landing page, success to the dashboard.
func (cfg Config) loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			redirectWithError(w, r, "/", "Invalid Email or Password")
			return
		}
		email := strings.TrimSpace(strings.ToLower(r.PostFormValue("email")))
		password := r.PostFormValue("password")

		u, err := cfg.Users.UserByEmail(r.Context(), email)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				cfg.Log.Error("login: user lookup failed", sl.Err(err))
				http.Error(w, "server error", http.StatusInternalServerError)
				return
			}
			redirectWithError(w, r, "/", "Invalid Email or Password")
			return
		}
		if !verifyPassword(password, u.PasswordHash) {
			redirectWithError(w, r, "/", "Invalid Email or Password")
			return
		}

		tok, exp, err := cfg.Sessions.makeToken(u.ID.String(), u.Name, u.Role)
		if err != nil {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		cfg.Sessions.setCookie(w, tok, exp)
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	}
}

// registerHandler creates a user record with role "user".
func (cfg Config) registerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			redirectWithError(w, r, "/register", "Invalid form submission")
			return
		}

		req := RegisterRequest{
			Name:     strings.TrimSpace(r.PostFormValue("name")),
			Email:    strings.TrimSpace(strings.ToLower(r.PostFormValue("email"))),
			Password: r.PostFormValue("password"),
			College:  strings.TrimSpace(r.PostFormValue("college")),
			Branch:   strings.TrimSpace(r.PostFormValue("branch")),
			Year:     strings.TrimSpace(r.PostFormValue("year")),
		}
		if err := validate.Struct(req); err != nil {
			redirectWithError(w, r, "/register", "All required fields must be filled")
			return
		}

		_, err := cfg.Users.UserByEmail(r.Context(), req.Email)
		if err == nil {
			redirectWithError(w, r, "/register", "Email already registered")
			return
		}
		if !errors.Is(err, store.ErrNotFound) {
			cfg.Log.Error("register: user lookup failed", sl.Err(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}

		hash, err := hashPassword(req.Password)
		if err != nil {
			cfg.Log.Error("register: hash failed", sl.Err(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}

		u := store.User{
			ID:           uuid.New(),
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hash,
			College:      req.College,
			Branch:       req.Branch,
			Year:         req.Year,
			Role:         "user",
		}
		if err := cfg.Users.CreateUser(r.Context(), u); err != nil {
			cfg.Log.Error("register: insert failed", sl.Err(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}

		cfg.Log.Info("user registered", slog.String("email", u.Email))
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// logoutHandler clears the session cookie.
func (cfg Config) logoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg.Sessions.clearCookie(w)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
