// pages.go - Form/landing endpoints. HTML rendering is out of scope, so
// these return a small JSON page descriptor; a failed form submission
// redirects back here with the reason in the "error" query parameter.
package server

import (
	"net/http"
	"net/url"

	"github.com/go-chi/render"
)

type pageResponse struct {
	Page  string `json:"page"`
	Error string `json:"error,omitempty"`
}

func servePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, pageResponse{
			Page:  name,
			Error: r.URL.Query().Get("error"),
		})
	}
}

// redirectWithError sends the browser back to a form with a user-visible
// message, the flash-message equivalent without templating.
func redirectWithError(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, path+"?error="+url.QueryEscape(msg), http.StatusSeeOther)
}

// indexHandler serves the landing/login page.
func (cfg Config) indexHandler() http.HandlerFunc {
	return servePage("login")
}

// registerFormHandler serves the registration form page.
func (cfg Config) registerFormHandler() http.HandlerFunc {
	return servePage("register")
}

// uploadFormHandler serves the admin upload form page.
func (cfg Config) uploadFormHandler() http.HandlerFunc {
	return servePage("admin_upload")
}

// videosHandler serves the static videos page.
func (cfg Config) videosHandler() http.HandlerFunc {
	return servePage("videos")
}
