// Package extract turns uploaded documents into plain text.
//
// Dispatch is by MIME type: PDF pages are concatenated, DOCX bodies are reduced
// to raw paragraph text and plain text is decoded as UTF-8. Failures carry one of
// the sentinel errors below; UserMessage turns them into the text shown to users.
package extract

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf16"

	"github.com/gabriel-vasile/mimetype"
)

// Supported MIME types.
const (
	MIMEPDF   = "application/pdf"
	MIMEDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEWord  = "application/msword"
	MIMEPlain = "text/plain"
)

// MinTextLength is the number of characters below which extracted text is
// treated as an empty or unreadable document.
const MinTextLength = 10

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrPDF             = errors.New("failed to parse pdf")
	ErrDOCX            = errors.New("failed to parse word document")
	ErrEmpty           = errors.New("document is empty or unreadable")
	ErrRead            = errors.New("failed to read file")
)

// Document is an uploaded file.
type Document struct {
	Name     string
	MIMEType string
	Content  []byte
}

// Extractor converts a Document into plain text.
type Extractor interface {
	Extract(ctx context.Context, doc Document) (string, error)
}

// Func extracts text from raw file content.
type Func func(content []byte) (string, error)

// Dispatcher routes documents to a Func by MIME type.
type Dispatcher struct {
	byType map[string]Func
}

// NewDispatcher returns a Dispatcher wired with the PDF, DOCX and text readers.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{byType: map[string]Func{
		MIMEPDF:   ReadPDF,
		MIMEDOCX:  ReadDOCX,
		MIMEWord:  ReadDOCX,
		MIMEPlain: ReadText,
	}}
}

// Supports reports whether mimeType has a registered reader.
func (d *Dispatcher) Supports(mimeType string) bool {
	_, ok := d.byType[mediaType(mimeType)]
	return ok
}

// Extract returns the plain text of doc. No partial results are returned.
func (d *Dispatcher) Extract(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRead, err)
	}
	fn, ok := d.byType[mediaType(doc.MIMEType)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, doc.MIMEType)
	}
	return fn(doc.Content)
}

// CheckLength fails with ErrEmpty when text is shorter than MinTextLength.
// Length is measured in UTF-16 code units, so a character outside the Basic
// Multilingual Plane counts twice.
func CheckLength(text string) error {
	if utf16Len(text) < MinTextLength {
		return ErrEmpty
	}
	return nil
}

func utf16Len(text string) int {
	n := 0
	for _, r := range text {
		n += utf16.RuneLen(r)
	}
	return n
}

var extensionTypes = map[string]string{
	".pdf":  MIMEPDF,
	".docx": MIMEDOCX,
	".txt":  MIMEPlain,
}

// AllowedExtension reports whether filename has one of the accepted upload
// extensions (.pdf, .docx, .txt).
func AllowedExtension(filename string) bool {
	_, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// DetectMIME resolves the MIME type of an upload. A declared type wins unless it
// is empty or generic; then the extension decides, and content sniffing is the
// last resort.
func DetectMIME(filename, declared string, content []byte) string {
	if mt := mediaType(declared); mt != "" && mt != "application/octet-stream" {
		return mt
	}
	if mt, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return mt
	}
	return mediaType(mimetype.Detect(content).String())
}

// mediaType drops parameters such as charset and lowercases the type.
func mediaType(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.ToLower(v)
	}
	return mt
}

// UserMessage converts an extraction error into the text shown to the user.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedType):
		return "Unsupported file type. Please use PDF, DOCX, or TXT."
	case errors.Is(err, ErrPDF):
		return "Failed to parse PDF. Please try copying the text manually."
	case errors.Is(err, ErrDOCX):
		return "Failed to parse Word document."
	case errors.Is(err, ErrEmpty):
		return "The file appears to be empty or unreadable."
	default:
		return "Failed to read file."
	}
}
