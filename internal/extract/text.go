package extract

import (
	"golang.org/x/text/encoding/unicode"
)

// ReadText decodes content as UTF-8 the way a browser's File.text() does:
// a leading byte order mark is dropped and invalid sequences become U+FFFD.
func ReadText(content []byte) (string, error) {
	out, err := unicode.UTF8BOM.NewDecoder().Bytes(content)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
