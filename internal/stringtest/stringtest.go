// Package stringtest builds expected multi-line fixtures for table-driven
// tests across this module: schema documents, repair-loop transcripts, and
// watch-TUI frame snapshots are all naturally written as indented Go raw
// string literals, and need a common dedent/join convention instead of each
// test package inventing its own.
package stringtest

import "strings"

// Input dedents a raw string literal for use as test input or expected
// output. It strips exactly one leading newline and one trailing newline
// (if present, preserving any further ones), then removes the common
// leading whitespace shared by all non-blank lines.
//
// Example:
//
//	want := stringtest.Input(`
//	    {
//	      "name": "widget"
//	    }`) // -> "{\n  \"name\": \"widget\"\n}"
func Input(s string) string {
	s = strings.TrimPrefix(s, "\n")
	s = strings.TrimSuffix(s, "\n")

	lines := strings.Split(s, "\n")

	indent := -1

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		n := leadingWhitespace(line)
		if indent == -1 || n < indent {
			indent = n
		}
	}

	if indent < 0 {
		indent = 0
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}

		if len(line) >= indent {
			lines[i] = line[indent:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}

	return strings.Join(lines, "\n")
}

func leadingWhitespace(line string) int {
	n := 0
	for n < len(line) && (line[n] == ' ' || line[n] == '\t') {
		n++
	}

	return n
}

// JoinLF joins multiple strings with LF line endings.
// Use this to construct expected test output with explicit line endings.
//
// Example:
//
//	want := stringtest.JoinLF(
//		"line1",
//		"line2",
//		"line3",
//	) // -> "line1\nline2\nline3"
func JoinLF(ss ...string) string {
	var sb strings.Builder
	for i, s := range ss {
		if i > 0 {
			sb.WriteByte('\n')
		}

		sb.WriteString(s)
	}

	return sb.String()
}

// JoinCRLF joins multiple strings with CRLF line endings.
// Use this to construct expected test output with explicit line endings on
// Windows.
//
// Example:
//
//	want := stringtest.JoinCRLF(
//		"line1",
//		"line2",
//		"line3",
//	) // -> "line1\r\nline2\r\nline3"
func JoinCRLF(ss ...string) string {
	var sb strings.Builder
	for i, s := range ss {
		if i > 0 {
			sb.WriteByte('\r')
			sb.WriteByte('\n')
		}

		sb.WriteString(s)
	}

	return sb.String()
}
