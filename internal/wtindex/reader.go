// Package wtindex reads the WHATWG "encoding" legacy index-*.txt format:
// a plain-text map from encoding pointer to Unicode scalar value, with
// blank lines and '#'-prefixed header comments.
package wtindex

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Line is a single parsed data line: a pointer/scalar pair.
type Line struct {
	Pointer uint32
	Scalar  uint32
}

// ParseError identifies the source and line number of a malformed input
// line, satisfying spec.md §7's "identify file and line" requirement.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return errors.Wrapf(e.Err, "%s:%d", e.File, e.Line).Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Read parses r, a WHATWG index-*.txt file, returning the ordered data
// lines and the collected header comments (each already stripped of its
// leading '#'). file is used only to annotate diagnostics.
//
// Numeric parsing accepts C-style prefixes (0x...); pointers must be
// unique within the file.
func Read(file string, r io.Reader) (lines []Line, comments []string, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	seen := make(map[uint32]bool)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "#") {
			comments = append(comments, text[1:])
			continue
		}

		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, nil, &ParseError{file, lineNo, errors.Errorf("expected at least 2 fields, got %d", len(fields))}
		}
		pointer, perr := parseInt(fields[0])
		if perr != nil {
			return nil, nil, &ParseError{file, lineNo, errors.Wrap(perr, "bad pointer")}
		}
		scalar, serr := parseInt(fields[1])
		if serr != nil {
			return nil, nil, &ParseError{file, lineNo, errors.Wrap(serr, "bad scalar")}
		}
		if scalar >= 0x110000 || scalar == 0xFFFF {
			return nil, nil, &ParseError{file, lineNo, errors.Errorf("scalar %#x out of range", scalar)}
		}
		if scalar >= 0x10000 && (scalar>>16) != 2 {
			return nil, nil, &ParseError{file, lineNo, errors.Errorf("scalar %#x above BMP must be in plane 2 (SIP)", scalar)}
		}
		if seen[pointer] {
			return nil, nil, &ParseError{file, lineNo, errors.Errorf("duplicate pointer %#x", pointer)}
		}
		seen[pointer] = true

		lines = append(lines, Line{Pointer: pointer, Scalar: scalar})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.Wrapf(err, "reading %s", file)
	}
	return lines, comments, nil
}

func parseInt(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
