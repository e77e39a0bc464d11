package chess

import (
	"bufio"
	"io"
	"strings"
)

const maxLineSize = 1 << 20

// Scanner splits a PGN stream holding several games into the text of each
// game. A new game starts at a tag line that follows movetext.
//
// Example:
//
//	scanner := NewScanner(file)
//	for scanner.Scan() {
//	    header, tree, err := ParsePGN(scanner.Text(), StandardRules{}, ParseOptions{})
//	    ...
//	}
//	if err := scanner.Err(); err != nil {
//	    ...
//	}
type Scanner struct {
	lines     *bufio.Scanner
	lookahead string
	pending   bool
	text      string
	err       error
}

// NewScanner returns a scanner reading games from r.
func NewScanner(r io.Reader) *Scanner {
	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Scanner{lines: lines}
}

// Scan advances to the next game and returns false at the end of input or on error.
func (s *Scanner) Scan() bool {
	var sb strings.Builder
	seenMoves := false
	inComment := false

	if s.pending {
		sb.WriteString(s.lookahead + "\n")
		s.pending = false
	}

	for s.lines.Scan() {
		line := s.lines.Text()
		trimmed := strings.TrimSpace(line)

		if !inComment && seenMoves && strings.HasPrefix(trimmed, "[") {
			s.lookahead = line
			s.pending = true
			s.text = sb.String()
			return true
		}
		sb.WriteString(line + "\n")

		if !inComment && trimmed != "" && !strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, "%") {
			seenMoves = true
		}
		inComment = commentStateAfter(line, inComment)
	}

	if err := s.lines.Err(); err != nil {
		s.err = err
		return false
	}
	s.text = sb.String()
	return strings.TrimSpace(s.text) != ""
}

// Text returns the game read by the last call to Scan.
func (s *Scanner) Text() string {
	return s.text
}

// Err returns the first read error.
func (s *Scanner) Err() error {
	return s.err
}

// commentStateAfter reports whether a brace comment is still open at the end of line.
func commentStateAfter(line string, inComment bool) bool {
	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case inComment && c == '}':
			inComment = false
		case !inComment && c == '{':
			inComment = true
		case !inComment && c == ';':
			return false
		}
	}
	return inComment
}
