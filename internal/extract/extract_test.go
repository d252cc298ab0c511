package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF writes a minimal PDF with one Helvetica text line per page.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	for i, text := range pages {
		stream := fmt.Sprintf("BT /F1 24 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 3 0 R >> >> >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

// buildDOCX zips a word/document.xml with the given body XML.
func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractPlainText(t *testing.T) {
	d := NewDispatcher()
	tests := []struct {
		name    string
		content []byte
		want    string
	}{
		{"ascii", []byte("Hello, world.\nSecond line."), "Hello, world.\nSecond line."},
		{"utf8 unchanged", []byte("Café — naïve ✓"), "Café — naïve ✓"},
		{"bom stripped", append([]byte{0xEF, 0xBB, 0xBF}, "with bom"...), "with bom"},
		{"invalid bytes replaced", []byte{'a', 0xff, 'b'}, "a�b"},
		{"empty", []byte{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Extract(context.Background(), Document{Name: "f.txt", MIMEType: "text/plain; charset=utf-8", Content: tt.content})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractUnsupportedType(t *testing.T) {
	d := NewDispatcher()
	for _, mt := range []string{"", "image/png", "application/zip", "text/html", "application/octet-stream"} {
		t.Run(mt, func(t *testing.T) {
			_, err := d.Extract(context.Background(), Document{Name: "x", MIMEType: mt, Content: []byte("abcdefghijkl")})
			assert.ErrorIs(t, err, ErrUnsupportedType)
			assert.Equal(t, "Unsupported file type. Please use PDF, DOCX, or TXT.", UserMessage(err))
		})
	}
}

func TestExtractPDF(t *testing.T) {
	d := NewDispatcher()
	content := buildPDF(t, "Hello PDF", "Second page")

	got, err := d.Extract(context.Background(), Document{Name: "a.pdf", MIMEType: MIMEPDF, Content: content})
	require.NoError(t, err)

	first := strings.Index(got, "Hello PDF")
	second := strings.Index(got, "Second page")
	require.GreaterOrEqual(t, first, 0, "got %q", got)
	require.Greater(t, second, first, "got %q", got)
	assert.Contains(t, got[first:second], "\n\n")
	assert.True(t, strings.HasSuffix(got, "\n\n"))
}

func TestExtractPDFInvalid(t *testing.T) {
	_, err := ReadPDF([]byte("definitely not a pdf"))
	assert.ErrorIs(t, err, ErrPDF)
	assert.Equal(t, "Failed to parse PDF. Please try copying the text manually.", UserMessage(err))
}

func TestExtractDOCX(t *testing.T) {
	d := NewDispatcher()
	content := buildDOCX(t,
		`<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr>`+
			`<w:r><w:t>First </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Col A</w:t><w:tab/><w:t>Col B</w:t><w:br/><w:t>Next line</w:t></w:r></w:p>`)

	for _, mt := range []string{MIMEDOCX, MIMEWord} {
		t.Run(mt, func(t *testing.T) {
			got, err := d.Extract(context.Background(), Document{Name: "a.docx", MIMEType: mt, Content: content})
			require.NoError(t, err)
			assert.Equal(t, "First paragraph.\n\nCol A\tCol B\nNext line\n\n", got)
		})
	}
}

func TestExtractDOCXInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"not a zip", []byte("plain bytes")},
		{"zip without body", func() []byte {
			var buf bytes.Buffer
			zw := zip.NewWriter(&buf)
			_, _ = zw.Create("other.xml")
			_ = zw.Close()
			return buf.Bytes()
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDOCX(tt.content)
			assert.ErrorIs(t, err, ErrDOCX)
			assert.Equal(t, "Failed to parse Word document.", UserMessage(err))
		})
	}
}

func TestExtractCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDispatcher().Extract(ctx, Document{MIMEType: MIMEPlain, Content: []byte("hello")})
	assert.ErrorIs(t, err, ErrRead)
	assert.Equal(t, "Failed to read file.", UserMessage(err))
}

func TestCheckLength(t *testing.T) {
	assert.ErrorIs(t, CheckLength("short"), ErrEmpty)
	assert.ErrorIs(t, CheckLength("ééééééééé"), ErrEmpty) // 9 runes, 18 bytes
	assert.NoError(t, CheckLength("0123456789"))
	// Characters outside the BMP count as two UTF-16 units.
	assert.NoError(t, CheckLength("😀😀😀😀😀"))
	assert.ErrorIs(t, CheckLength("😀😀😀😀"), ErrEmpty)
	assert.Equal(t, "The file appears to be empty or unreadable.", UserMessage(ErrEmpty))
}

func TestDetectMIME(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		declared string
		content  []byte
		want     string
	}{
		{"declared wins", "a.bin", "application/pdf", nil, MIMEPDF},
		{"declared params stripped", "a.txt", "Text/Plain; charset=UTF-8", nil, MIMEPlain},
		{"extension when empty", "Report.PDF", "", nil, MIMEPDF},
		{"extension when octet-stream", "a.docx", "application/octet-stream", nil, MIMEDOCX},
		{"sniff pdf without extension", "upload", "", []byte("%PDF-1.4\n%âãÏÓ\n"), MIMEPDF},
		{"sniff text without extension", "notes", "", []byte("just some words"), MIMEPlain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMIME(tt.filename, tt.declared, tt.content))
		})
	}
}

func TestAllowedExtension(t *testing.T) {
	for name, want := range map[string]bool{
		"a.pdf": true, "B.DOCX": true, "c.txt": true,
		"d.doc": false, "e.png": false, "noext": false,
	} {
		assert.Equal(t, want, AllowedExtension(name), name)
	}
}

func TestSupports(t *testing.T) {
	d := NewDispatcher()
	assert.True(t, d.Supports("application/pdf"))
	assert.True(t, d.Supports("text/plain; charset=utf-8"))
	assert.False(t, d.Supports("image/png"))
}

func TestUserMessageDefault(t *testing.T) {
	assert.Equal(t, "Failed to read file.", UserMessage(errors.New("io")))
}
