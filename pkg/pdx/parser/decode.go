package parser

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names the character encoding of source files.
type Encoding string

const (
	// EncodingUTF8 is UTF-8 with an optional byte order mark.
	EncodingUTF8 Encoding = "utf-8"
	// EncodingWindows1252 is the legacy encoding of older Clausewitz titles.
	EncodingWindows1252 Encoding = "windows-1252"
)

// ParseEncoding parses an encoding name. The empty string means UTF-8.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	case "windows-1252", "cp1252", "latin1":
		return EncodingWindows1252, nil
	default:
		return "", fmt.Errorf("unknown source encoding: %s", name)
	}
}

// decode converts raw file bytes to a UTF-8 string, dropping a leading BOM.
func decode(data []byte, enc Encoding) (string, error) {
	var t transform.Transformer
	switch enc {
	case EncodingWindows1252:
		t = charmap.Windows1252.NewDecoder()
	default:
		t = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	}

	out, _, err := transform.Bytes(t, data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s source: %w", enc, err)
	}
	return string(out), nil
}
