// Package isoparser converts the ISO 639-2 and ISO 639-3 reference files into JSON documents.
package isoparser

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrSourceNotFound is returned when a required input file does not exist.
var ErrSourceNotFound = errors.New("source file not found")

var lineBreak = regexp.MustCompile(`\r\n|\n|\r`)

// requireSource fails with ErrSourceNotFound when path does not exist.
func requireSource(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return nil
}

// readSource reads a whole source file as UTF-8 text.
func readSource(path string) (string, error) {
	if err := requireSource(path); err != nil {
		return "", err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	text, err := decodeSource(raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return text, nil
}

// decodeSource strips a byte-order mark (decoding UTF-16 input) and reads
// each line that is not valid UTF-8 as ISO-8859-1, as some mirrors of the
// code lists still ship Latin-1 rows. Valid UTF-8 lines are kept as is.
func decodeSource(raw []byte) (string, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), raw)
	if err != nil {
		return "", err
	}

	text := string(decoded)
	if utf8.ValidString(text) {
		return text, nil
	}

	latin1 := charmap.ISO8859_1.NewDecoder()
	var b strings.Builder
	b.Grow(len(text))

	start := 0
	for _, loc := range lineBreak.FindAllStringIndex(text, -1) {
		if err := appendLine(&b, latin1, text[start:loc[0]]); err != nil {
			return "", err
		}
		b.WriteString(text[loc[0]:loc[1]])
		start = loc[1]
	}
	if err := appendLine(&b, latin1, text[start:]); err != nil {
		return "", err
	}
	return b.String(), nil
}

func appendLine(b *strings.Builder, latin1 *encoding.Decoder, line string) error {
	if utf8.ValidString(line) {
		b.WriteString(line)
		return nil
	}

	converted, err := latin1.String(line)
	if err != nil {
		return err
	}
	b.WriteString(converted)
	return nil
}

// splitLines splits text on any line-ending style.
func splitLines(text string) []string {
	return lineBreak.Split(text, -1)
}

// isSkippable reports whether a line carries no data.
func isSkippable(line string) bool {
	return len(line) == 0 || strings.HasPrefix(line, "#")
}
