package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"humanizer/internal/app"
	"humanizer/internal/extract"
	"humanizer/internal/httputil"
	"humanizer/internal/llm"
	"humanizer/internal/session"
	"humanizer/internal/textstats"
)

type humanizeRequest struct {
	Text string `json:"text" validate:"required"`
}

type setTextRequest struct {
	Text *string `json:"text" validate:"required"`
}

type extractResponse struct {
	Text     string `json:"text"`
	Filename string `json:"filename"`
	MIMEType string `json:"mime_type"`
	Words    int    `json:"words"`
}

type humanizeResponse struct {
	Humanized string          `json:"humanized"`
	Stats     textstats.Stats `json:"stats"`
}

// sessionErrorResponse reports a failed action together with the resulting state.
type sessionErrorResponse struct {
	Error   string          `json:"error"`
	Session session.Session `json:"session"`
}

// readUpload pulls the "file" part out of a multipart request and resolves its
// MIME type. Errors are written to w; ok is false when the handler should stop.
func readUpload(deps app.Deps, w http.ResponseWriter, r *http.Request) (doc extract.Document, ok bool) {
	maxFileSize := deps.Config.MaxUploadSize

	if r.ContentLength > maxFileSize {
		httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusRequestEntityTooLarge)
		return doc, false
	}
	// Multipart framing adds a little on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, maxFileSize+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), err, http.StatusRequestEntityTooLarge)
			return doc, false
		}
		httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
		return doc, false
	}
	defer file.Close()

	if header.Size > maxFileSize {
		httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusRequestEntityTooLarge)
		return doc, false
	}
	if !extract.AllowedExtension(header.Filename) {
		httputil.Fail(deps.Log, w, extract.UserMessage(extract.ErrUnsupportedType), nil, http.StatusBadRequest)
		return doc, false
	}

	content, err := io.ReadAll(file)
	if err != nil {
		httputil.Fail(deps.Log, w, extract.UserMessage(extract.ErrRead), err, http.StatusBadRequest)
		return doc, false
	}
	return extract.Document{
		Name:     header.Filename,
		MIMEType: extract.DetectMIME(header.Filename, header.Header.Get("Content-Type"), content),
		Content:  content,
	}, true
}

// extractStatus maps an extraction error to an HTTP status.
func extractStatus(err error) int {
	switch {
	case errors.Is(err, extract.ErrUnsupportedType):
		return http.StatusBadRequest
	case errors.Is(err, extract.ErrPDF), errors.Is(err, extract.ErrDOCX), errors.Is(err, extract.ErrEmpty):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func extractHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := readUpload(deps, w, r)
		if !ok {
			return
		}
		text, err := deps.Sessions.ExtractText(r.Context(), doc)
		if err != nil {
			httputil.Fail(deps.Log.With("filename", doc.Name, "mime", doc.MIMEType), w, extract.UserMessage(err), err, extractStatus(err))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, extractResponse{
			Text:     text,
			Filename: doc.Name,
			MIMEType: doc.MIMEType,
			Words:    textstats.WordCount(text),
		})
	}
}

// decodeBody decodes and validates a JSON request body.
func decodeBody(deps app.Deps, w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
		return false
	}
	if err := httputil.Validator.Struct(dst); err != nil {
		httputil.ValidationError(deps.Log, w, err)
		return false
	}
	return true
}

func humanizeHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req humanizeRequest
		if !decodeBody(deps, w, r, &req) {
			return
		}
		out, stats, err := deps.Sessions.Rewrite(r.Context(), req.Text)
		if err != nil {
			failAction(deps, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, humanizeResponse{Humanized: out, Stats: stats})
	}
}

// isRequestError reports errors caused by the request or session state rather
// than by extraction or the model.
func isRequestError(err error) bool {
	return errors.Is(err, session.ErrNotFound) ||
		errors.Is(err, session.ErrBusy) ||
		errors.Is(err, session.ErrEmptyInput) ||
		errors.Is(err, session.ErrTooLong)
}

// failAction maps service errors to responses. Rewrite failures always carry
// the fixed generic message.
func failAction(deps app.Deps, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		httputil.Fail(deps.Log, w, "session not found", err, http.StatusNotFound)
	case errors.Is(err, session.ErrBusy):
		httputil.Fail(deps.Log, w, "session is busy; wait for the current operation to finish", err, http.StatusConflict)
	case errors.Is(err, session.ErrEmptyInput):
		httputil.Fail(deps.Log, w, "text is required", err, http.StatusBadRequest)
	case errors.Is(err, session.ErrTooLong):
		httputil.Fail(deps.Log, w, err.Error(), err, http.StatusBadRequest)
	case errors.Is(err, llm.ErrRewriteFailed):
		httputil.Fail(deps.Log, w, llm.FailureMessage, err, http.StatusBadGateway)
	default:
		httputil.Fail(deps.Log, w, "internal error", err, http.StatusInternalServerError)
	}
}

func sessionID(deps app.Deps, w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(deps.Log, w, "invalid session id", err, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func createSessionHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := deps.Sessions.Create(r.Context())
		if err != nil {
			failAction(deps, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, s)
	}
}

func getSessionHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(deps, w, r)
		if !ok {
			return
		}
		s, err := deps.Sessions.Get(r.Context(), id)
		if err != nil {
			failAction(deps, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, s)
	}
}

func deleteSessionHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(deps, w, r)
		if !ok {
			return
		}
		if err := deps.Sessions.Delete(r.Context(), id); err != nil {
			failAction(deps, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func uploadFileHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(deps, w, r)
		if !ok {
			return
		}
		doc, ok := readUpload(deps, w, r)
		if !ok {
			return
		}
		s, err := deps.Sessions.LoadFile(r.Context(), id, doc)
		if err != nil {
			if !isRequestError(err) && s.Status == session.StatusError && s.Error != nil {
				httputil.WriteJSON(w, extractStatus(err), sessionErrorResponse{Error: *s.Error, Session: s})
				return
			}
			failAction(deps, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, s)
	}
}

func removeFileHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(deps, w, r)
		if !ok {
			return
		}
		s, err := deps.Sessions.RemoveFile(r.Context(), id)
		if err != nil {
			failAction(deps, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, s)
	}
}

func setTextHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(deps, w, r)
		if !ok {
			return
		}
		var req setTextRequest
		if !decodeBody(deps, w, r, &req) {
			return
		}
		s, err := deps.Sessions.SetText(r.Context(), id, *req.Text)
		if err != nil {
			failAction(deps, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, s)
	}
}

func sessionHumanizeHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(deps, w, r)
		if !ok {
			return
		}
		s, err := deps.Sessions.Humanize(r.Context(), id)
		if err != nil {
			if !isRequestError(err) && s.Status == session.StatusError {
				httputil.WriteJSON(w, http.StatusBadGateway, sessionErrorResponse{Error: llm.FailureMessage, Session: s})
				return
			}
			failAction(deps, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, humanizeSessionResponse{
			Session: s,
			Stats:   textstats.Analyze(s.InputText, s.HumanizedText),
		})
	}
}

type humanizeSessionResponse struct {
	Session session.Session `json:"session"`
	Stats   textstats.Stats `json:"stats"`
}

func clearHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(deps, w, r)
		if !ok {
			return
		}
		s, err := deps.Sessions.Clear(r.Context(), id)
		if err != nil {
			failAction(deps, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, s)
	}
}

func rewritesHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(deps, w, r)
		if !ok {
			return
		}
		list, err := deps.Sessions.Rewrites(r.Context(), id)
		if err != nil {
			failAction(deps, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"session_id": id,
			"rewrites":   list,
		})
	}
}
