package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/customers/internal/core"
	"github.com/JonMunkholm/customers/internal/logging"
	"github.com/JonMunkholm/customers/internal/web/templates"
)

// maxFormSize bounds the single-record form body.
const maxFormSize = 1 << 20

// handleIndex renders the form and the current record table.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.service.ListSummaries(r.Context(), core.SummaryQuery{})
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	// Render into a buffer so a template failure can still become a 500.
	var buf bytes.Buffer
	page := templates.Page(templates.PageData{Fields: core.FieldSpecs, Records: summaries})
	if err := page.Render(r.Context(), &buf); err != nil {
		s.respondError(w, r, fmt.Errorf("render page: %w", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// handleCreate saves one record submitted by the page script. Plain form
// posts without the XHR header just get the page back.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !isXHR(r) {
		s.renderPage(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, failure{Message: "Could not read the submitted form."})
		return
	}

	rec, err := s.service.CreateRecord(r.Context(), formValues(r))
	if err != nil {
		s.respondCreateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created{
		Success:   true,
		Message:   fmt.Sprintf("Customer \"%s\" saved successfully.", rec.Profile.Name),
		NewRecord: rec.Summary(),
	})
}

// formValues picks the known fields out of the posted form. Fields the
// client did not send stay absent so their defaults apply.
func formValues(r *http.Request) core.Values {
	v := make(core.Values, len(core.FieldSpecs))
	for _, f := range core.FieldSpecs {
		if vals, ok := r.PostForm[f.Name]; ok && len(vals) > 0 {
			v[f.Name] = vals[len(vals)-1]
		}
	}
	return v
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, core.ExportFileName))

	n, err := s.service.ExportCSV(r.Context(), w)
	if err != nil {
		// Rows may already be on the wire; the status can no longer change.
		logging.FromContext(r.Context()).Error("csv export failed", "rows", n, "error", err)
		return
	}
	logging.FromContext(r.Context()).Info("csv export", "rows", n)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	// The workbook is assembled in memory first so failures still get a 500.
	var buf bytes.Buffer
	n, err := s.service.ExportXLSX(r.Context(), &buf)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, core.ExportFileName))
	_, _ = buf.WriteTo(w)
	logging.FromContext(r.Context()).Info("xlsx export", "rows", n)
}

// handleImport loads every row of an uploaded CSV in one transaction.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusBadRequest, failure{
				Message: fmt.Sprintf("File too large. Maximum size is %d MB.", maxSize/(1024*1024)),
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, failure{Message: core.MapError(core.ErrNoFile).Message})
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("csv_file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failure{Message: core.MapError(core.ErrNoFile).Message})
		return
	}
	defer file.Close()

	if !strings.HasSuffix(header.Filename, ".csv") {
		writeJSON(w, http.StatusBadRequest, failure{Message: core.MapError(core.ErrNotCSV).Message})
		return
	}

	result, err := s.service.ImportCSV(r.Context(), header.Filename, file)
	if err != nil {
		if errors.Is(err, core.ErrTooManyImports) {
			w.Header().Set("Retry-After", "10")
			writeJSON(w, http.StatusServiceUnavailable, failure{Message: core.FormatUserError(err)})
			return
		}
		logging.FromContext(r.Context()).Error("csv import failed",
			"file", header.Filename,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, failure{Message: core.ImportFailureMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, imported{
		Success:    true,
		Message:    fmt.Sprintf("Successfully imported %d records.", result.Imported),
		NewRecords: result.Records,
	})
}

// handleListProfiles returns summaries as JSON, optionally filtered by ?q=.
func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	q := core.SummaryQuery{
		Search:     strings.TrimSpace(r.URL.Query().Get("q")),
		SortByName: true,
	}
	summaries, err := s.service.ListSummaries(r.Context(), q)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Ping(r.Context()); err != nil {
		logging.FromContext(r.Context()).Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
