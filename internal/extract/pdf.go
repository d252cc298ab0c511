package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ReadPDF concatenates the text of every page, each followed by a blank line.
func ReadPDF(content []byte) (text string, err error) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrPDF, rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPDF, err)
	}

	var b strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if !page.V.IsNull() && page.V.Key("Contents").Kind() != pdf.Null {
			pageText, err := page.GetPlainText(nil)
			if err != nil {
				return "", fmt.Errorf("%w: page %d: %w", ErrPDF, pageNum, err)
			}
			b.WriteString(pageText)
		}
		b.WriteString("\n\n")
	}
	return b.String(), nil
}
