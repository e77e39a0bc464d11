package chess

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// stubRules accepts every SAN except those listed as illegal. Its FEN is
// "<path> <turn> <move number>", where path is the line of moves played
// from "root"; StartingFEN stands for "root w 1".
type stubRules struct {
	illegal map[string]bool
}

var _ Rules = stubRules{}

func stubFEN(path string, turn Color, number int) string {
	return fmt.Sprintf("%s %s %d", path, turn, number)
}

func parseStubFEN(fen string) (string, Color, int, error) {
	if fen == StartingFEN {
		return "root", White, 1, nil
	}
	fields := strings.Fields(fen)
	if len(fields) != 3 || !strings.HasPrefix(fields[0], "root") {
		return "", NoColor, 0, errors.New("not a stub position")
	}
	turn := White
	if fields[1] == "b" {
		turn = Black
	}
	number, err := strconv.Atoi(fields[2])
	if err != nil {
		return "", NoColor, 0, err
	}
	return fields[0], turn, number, nil
}

func (r stubRules) ValidateFEN(fen string) error {
	_, _, _, err := parseStubFEN(fen)
	return err
}

func (r stubRules) ApplyMove(fen string, spec MoveSpec) (MoveResult, error) {
	path, turn, number, err := parseStubFEN(fen)
	if err != nil {
		return MoveResult{}, err
	}
	san := spec.String()
	if r.illegal[san] {
		return MoveResult{}, fmt.Errorf("%w: %s", ErrIllegalMove, san)
	}
	var flags Flags
	switch {
	case strings.HasSuffix(san, "#"):
		flags = InCheck | InCheckmate
	case strings.HasSuffix(san, "+"):
		flags = InCheck
	}
	if turn == Black {
		number++
	}
	return MoveResult{
		SAN:   san,
		FEN:   stubFEN(path+"/"+san, turn.Other(), number),
		Color: turn,
		Flags: flags,
	}, nil
}

func (r stubRules) SideToMove(fen string) (Color, error) {
	_, turn, _, err := parseStubFEN(fen)
	return turn, err
}

func (r stubRules) MoveNumber(fen string) (int, error) {
	_, _, number, err := parseStubFEN(fen)
	return number, err
}

func (r stubRules) Status(fen string) (Flags, error) {
	_, _, _, err := parseStubFEN(fen)
	return 0, err
}

func (r stubRules) Pieces(fen string) ([]Piece, error) {
	return nil, nil
}

// sanLines returns the SAN of every line of the tree.
func sanLines(t *Tree) [][]string {
	var out [][]string
	for _, line := range t.Lines() {
		var sans []string
		for _, id := range line {
			m, _ := t.Move(id)
			sans = append(sans, m.SAN)
		}
		out = append(out, sans)
	}
	return out
}

// sanOf returns the SAN of the given nodes.
func sanOf(t *Tree, ids []NodeID) []string {
	sans := make([]string, 0, len(ids))
	for _, id := range ids {
		m, _ := t.Move(id)
		sans = append(sans, m.SAN)
	}
	return sans
}
