// Package textio provides tolerant text decoding for compiler logs and
// source files. TeX engines regularly emit logs that are not valid UTF-8
// (raw bytes from the input file, locale-encoded package messages), so the
// readers here never fail on encoding problems: they detect BOMs, decode
// UTF-16 variants, and fall back to Latin-1 when the bytes are not UTF-8.
package textio

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"pandoc-debugger/internal/logger"
)

// Encoding names returned by Detect.
const (
	EncodingUTF8    = "UTF-8"
	EncodingUTF8BOM = "UTF-8-BOM"
	EncodingUTF16LE = "UTF-16LE"
	EncodingUTF16BE = "UTF-16BE"
	EncodingLatin1  = "LATIN-1"
)

// Detect inspects raw bytes and names the most plausible encoding.
func Detect(data []byte) string {
	if len(data) >= 3 && bytes.Equal(data[:3], []byte{0xEF, 0xBB, 0xBF}) {
		return EncodingUTF8BOM
	}
	if len(data) >= 2 && bytes.Equal(data[:2], []byte{0xFF, 0xFE}) {
		return EncodingUTF16LE
	}
	if len(data) >= 2 && bytes.Equal(data[:2], []byte{0xFE, 0xFF}) {
		return EncodingUTF16BE
	}
	if utf8.Valid(data) {
		return EncodingUTF8
	}
	return EncodingLatin1
}

// Decode converts raw bytes to a UTF-8 string according to the detected
// encoding. Decoding never fails: undecodable input degrades to a Latin-1
// reinterpretation, which maps every byte to some rune.
func Decode(data []byte) string {
	enc := Detect(data)

	switch enc {
	case EncodingUTF8:
		return string(data)
	case EncodingUTF8BOM:
		return string(data[3:])
	case EncodingUTF16LE:
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		if out, err := dec.Bytes(data); err == nil {
			return string(out)
		}
	case EncodingUTF16BE:
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		if out, err := dec.Bytes(data); err == nil {
			return string(out)
		}
	}

	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		// Latin-1 decoding cannot fail on arbitrary bytes; guard anyway.
		return string(data)
	}
	logger.Debug("decoded non-UTF-8 input as Latin-1", logger.Int("bytes", len(data)))
	return string(out)
}

// ReadFile reads a file and decodes it tolerantly. The error is the raw
// filesystem error; callers decide whether an unreadable file is fatal.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Decode(data), nil
}
