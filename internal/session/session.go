// Package session holds the per-user interaction state: the input text, the
// loaded file name, the rewrite result and a five-value status flag.
package session

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status drives which actions are currently allowed.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusReadingFile Status = "reading_file"
	StatusProcessing  Status = "processing"
	StatusCompleted   Status = "completed"
	StatusError       Status = "error"
)

var (
	ErrNotFound   = errors.New("session not found")
	ErrBusy       = errors.New("session is busy")
	ErrEmptyInput = errors.New("input text is empty")
	ErrTooLong    = errors.New("input text is too long")
)

type Session struct {
	ID            uuid.UUID `json:"id"`
	InputText     string    `json:"input_text"`
	FileName      *string   `json:"file_name"`
	HumanizedText string    `json:"humanized_text"`
	Status        Status    `json:"status"`
	Error         *string   `json:"error"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// New returns a session in its initial empty state.
func New() Session {
	return Session{ID: uuid.New(), Status: StatusIdle, UpdatedAt: time.Now().UTC()}
}

// Busy reports whether a file read or rewrite is in flight.
func (s *Session) Busy() bool {
	return s.Status == StatusReadingFile || s.Status == StatusProcessing
}

// HasInput reports whether the input text has any non-whitespace content.
func (s *Session) HasInput() bool {
	return strings.TrimSpace(s.InputText) != ""
}

func (s *Session) BeginFileRead(name string) {
	s.Status = StatusReadingFile
	s.Error = nil
	s.FileName = &name
	s.HumanizedText = ""
}

func (s *Session) FinishFileRead(text string) {
	s.InputText = text
	s.Status = StatusIdle
}

func (s *Session) FailFileRead(msg string) {
	s.Error = &msg
	s.Status = StatusError
	s.FileName = nil
}

func (s *Session) BeginProcessing() {
	s.Status = StatusProcessing
	s.Error = nil
}

func (s *Session) Complete(humanized string) {
	s.HumanizedText = humanized
	s.Status = StatusCompleted
}

func (s *Session) Fail(msg string) {
	s.Error = &msg
	s.Status = StatusError
}

func (s *Session) SetText(text string) {
	s.InputText = text
}

// RemoveFile forgets the file name but keeps the text it produced.
func (s *Session) RemoveFile() {
	s.FileName = nil
}

// Clear resets every field except the ID to its initial value.
func (s *Session) Clear() {
	s.InputText = ""
	s.HumanizedText = ""
	s.FileName = nil
	s.Status = StatusIdle
	s.Error = nil
}
