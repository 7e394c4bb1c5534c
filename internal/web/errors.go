package web

// errors.go provides unified response handling for the web layer.
//
// Every error is logged server-side with the request id, mapped through
// core.MapError, and written back either as the JSON envelope the page
// script expects or as a small HTML page for plain form posts.

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/customers/internal/core"
	"github.com/JonMunkholm/customers/internal/logging"
	"github.com/JonMunkholm/customers/internal/web/templates"
)

// failure is the JSON body of every unsuccessful response. Errors is either a
// field map or a short hint string.
type failure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Errors  any    `json:"errors,omitempty"`
	Code    string `json:"code,omitempty"`
}

// created is the body of a successful single-record save.
type created struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	NewRecord core.Summary `json:"new_record"`
}

// imported is the body of a successful CSV import.
type imported struct {
	Success    bool           `json:"success"`
	Message    string         `json:"message"`
	NewRecords []core.Summary `json:"new_records"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are gone; nothing left to tell the client.
		return
	}
}

// respondError logs err and writes the mapped user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	if !wantsJSON(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = templates.ErrorPage(status, msg.Message, msg.Code).Render(r.Context(), w)
		return
	}

	body := failure{Message: msg.Message, Code: msg.Code}
	if msg.Action != "" {
		body.Errors = msg.Action
	}
	writeJSON(w, status, body)
}

// respondCreateError maps a failed save to the form's JSON contract:
// validation and uniqueness problems are field errors with 400, anything
// else is a 500 pointing at the logs.
func (s *Server) respondCreateError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, failure{
			Message: core.MapError(err).Message,
			Errors:  verr.Fields,
		})
		return
	}

	var cerr *core.ConflictError
	if errors.As(err, &cerr) {
		writeJSON(w, http.StatusBadRequest, failure{
			Message: core.MapError(err).Message,
			Errors:  cerr.FieldErrors(),
		})
		return
	}

	msg := core.MapError(err)
	logging.FromContext(r.Context()).Error("save record failed",
		"error", err,
		"code", msg.Code,
	)
	writeJSON(w, http.StatusInternalServerError, failure{
		Message: core.FormatUserError(err),
		Errors:  "Check server logs.",
		Code:    msg.Code,
	})
}

// isXHR reports whether the page script sent the request.
func isXHR(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if isXHR(r) {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	// API routes and the import endpoint always answer in JSON.
	return strings.HasPrefix(r.URL.Path, "/api/") || strings.HasPrefix(r.URL.Path, "/import_csv")
}
