package chess

import (
	"slices"
	"strconv"
	"strings"
)

var tagValueEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// EncodePGN renders a header and move tree as PGN text: one line per tag in
// insertion order, a blank line, then the movetext on a single line.
// Variations follow the move they replace, enclosed in parentheses.
//
// The result token is not appended to the movetext; it is only present
// as the Result tag when the header has one.
func EncodePGN(h *Header, t *Tree) string {
	var sb strings.Builder
	if h != nil && h.Len() > 0 {
		for _, tag := range h.Pairs() {
			sb.WriteString("[" + tag.Key + ` "` + tagValueEscaper.Replace(tag.Value) + "\"]\n")
		}
		sb.WriteString("\n")
	}
	if t != nil {
		sb.WriteString(encodeMoveText(t))
	}
	return sb.String()
}

// moveWriter collects the space separated parts of a movetext.
type moveWriter struct {
	tree  *Tree
	parts []string
}

func encodeMoveText(t *Tree) string {
	w := &moveWriter{tree: t}
	root := t.Root()
	if m, ok := t.Move(root); ok {
		w.writeNAGs(m)
		w.writeComment(m)
	}
	if first, ok := t.Next(root); ok {
		w.writeLine(root, first)
	}
	return strings.Join(w.parts, " ")
}

// writeLine writes the line starting with start, a child of parent, and
// follows it to its end. After each move that is the main continuation of
// its parent, the alternatives to that move are written as variations.
func (w *moveWriter) writeLine(parent, start NodeID) {
	forceNumber := true
	for cur, next := parent, start; ; {
		m, _ := w.tree.Move(next)
		w.writeMove(m, forceNumber)
		forceNumber = w.writeComment(m)

		if first, _ := w.tree.Next(cur); first == next {
			for _, v := range w.tree.Variations(cur) {
				w.writeVariation(cur, v)
				forceNumber = true
			}
		}

		following, ok := w.tree.Next(next)
		if !ok {
			return
		}
		cur, next = next, following
	}
}

func (w *moveWriter) writeVariation(parent, start NodeID) {
	open := len(w.parts)
	w.writeLine(parent, start)
	w.parts[open] = "(" + w.parts[open]
	w.parts[len(w.parts)-1] += ")"
}

// writeMove writes the move number when the move is White's or when
// forceNumber is set, then the SAN and NAGs.
func (w *moveWriter) writeMove(m Move, forceNumber bool) {
	number := strconv.Itoa(w.tree.MoveNumber(m.ID))
	if m.Color == Black {
		if forceNumber {
			w.parts = append(w.parts, number+"...")
		}
	} else {
		w.parts = append(w.parts, number+".")
	}
	w.parts = append(w.parts, m.SAN)
	w.writeNAGs(m)
}

func (w *moveWriter) writeNAGs(m Move) {
	for _, nag := range m.NAGs {
		w.parts = append(w.parts, "$"+strconv.Itoa(nag))
	}
}

// writeComment writes the comment and commands of m, if any, and reports
// whether something was written.
func (w *moveWriter) writeComment(m Move) bool {
	if m.Comment == "" && len(m.Commands) == 0 {
		return false
	}
	keys := make([]string, 0, len(m.Commands))
	for k := range m.Commands {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var body []string
	for _, k := range keys {
		if v := m.Commands[k]; v != "" {
			body = append(body, "[%"+k+" "+v+"]")
		} else {
			body = append(body, "[%"+k+"]")
		}
	}
	if m.Comment != "" {
		body = append(body, m.Comment)
	}
	w.parts = append(w.parts, "{"+strings.Join(body, " ")+"}")
	return true
}
