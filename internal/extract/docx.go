package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBody = "word/document.xml"

// ReadDOCX returns the raw text of a Word document: runs are concatenated,
// tabs and breaks are kept and every paragraph ends with a blank line.
func ReadDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDOCX, err)
	}
	var body *zip.File
	for _, f := range zr.File {
		if f.Name == docxBody {
			body = f
			break
		}
	}
	if body == nil {
		return "", fmt.Errorf("%w: missing %s", ErrDOCX, docxBody)
	}
	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDOCX, err)
	}
	defer rc.Close()

	text, err := paragraphsText(rc)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDOCX, err)
	}
	return text, nil
}

// paragraphsText walks WordprocessingML and collects w:t text.
func paragraphsText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		b        strings.Builder
		inText   bool
		inTabDef bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tabs":
				inTabDef = true
			case "tab":
				if !inTabDef {
					b.WriteByte('\t')
				}
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "tabs":
				inTabDef = false
			case "p":
				b.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
}
