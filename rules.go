package chess

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	nchess "github.com/notnil/chess"
)

// StartingFEN is the FEN of the standard initial position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Color is the side that moves or owns a piece.
type Color int8

const (
	// NoColor represents no side.
	NoColor Color = iota
	// White represents the white side.
	White
	// Black represents the black side.
	Black
)

// Other returns the opposite side.
func (c Color) Other() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	}
	return NoColor
}

// String implements the fmt.Stringer interface and returns the FEN letter of the side.
func (c Color) String() string {
	switch c {
	case White:
		return "w"
	case Black:
		return "b"
	}
	return "-"
}

// PieceType is the lower case letter of a piece kind.
type PieceType byte

const (
	NoPieceType PieceType = 0
	King        PieceType = 'k'
	Queen       PieceType = 'q'
	Rook        PieceType = 'r'
	Bishop      PieceType = 'b'
	Knight      PieceType = 'n'
	Pawn        PieceType = 'p'
)

func (p PieceType) String() string {
	if p == NoPieceType {
		return ""
	}
	return string(rune(p))
}

// Piece is a piece standing on a square.
type Piece struct {
	Type   PieceType
	Color  Color
	Square string
}

// Flags are the position facts reported by the rules engine after a move.
type Flags uint8

const (
	// InCheck indicates that the side to move is in check.
	InCheck Flags = 1 << iota
	// InCheckmate indicates that the side to move is checkmated.
	InCheckmate
	// InStalemate indicates that the side to move has no legal move and is not in check.
	InStalemate
	// InDraw indicates that the position is drawn by rule (stalemate,
	// insufficient material or the fifty move rule).
	InDraw
)

// Has returns true if all the flags in f2 are set.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// MoveSpec describes a move either as SAN text or as a from/to square pair.
type MoveSpec struct {
	SAN       string
	From      string
	To        string
	Promotion PieceType
}

func (s MoveSpec) String() string {
	if s.SAN != "" {
		return s.SAN
	}
	return s.From + s.To + s.Promotion.String()
}

// MoveResult is what the rules engine reports for a played move.
type MoveResult struct {
	SAN   string
	FEN   string
	Color Color
	Flags Flags
}

// Rules is the rules engine consulted for every legality decision.
// Implementations must be free of side effects: the same inputs always
// produce the same answer.
type Rules interface {
	// ValidateFEN returns an error if fen does not describe a legal position.
	ValidateFEN(fen string) error
	// ApplyMove plays spec in the position fen. The error wraps
	// ErrIllegalMove when the move is not legal.
	ApplyMove(fen string, spec MoveSpec) (MoveResult, error)
	// SideToMove returns the side to move in fen.
	SideToMove(fen string) (Color, error)
	// MoveNumber returns the full move number of fen.
	MoveNumber(fen string) (int, error)
	// Status returns the flags of fen as if it had just been reached.
	Status(fen string) (Flags, error)
	// Pieces lists the pieces of fen ordered by square, a1 first.
	Pieces(fen string) ([]Piece, error)
}

// StandardRules implements Rules for orthodox chess.
type StandardRules struct{}

var _ Rules = StandardRules{}

func (StandardRules) game(fen string) (*nchess.Game, error) {
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, err
	}
	return nchess.NewGame(opt), nil
}

// ValidateFEN implements Rules.
func (r StandardRules) ValidateFEN(fen string) error {
	if len(strings.Fields(fen)) != 6 {
		return fmt.Errorf("expected 6 fields, got %d", len(strings.Fields(fen)))
	}
	g, err := r.game(fen)
	if err != nil {
		return err
	}
	kings := map[Color]int{}
	for _, p := range g.Position().Board().SquareMap() {
		if p.Type() == nchess.King {
			kings[fromColor(p.Color())]++
		}
	}
	if kings[White] != 1 || kings[Black] != 1 {
		return fmt.Errorf("expected one king per side, got %d white and %d black", kings[White], kings[Black])
	}
	return nil
}

// ApplyMove implements Rules.
func (r StandardRules) ApplyMove(fen string, spec MoveSpec) (MoveResult, error) {
	g, err := r.game(fen)
	if err != nil {
		return MoveResult{}, err
	}
	pos := g.Position()

	var m *nchess.Move
	if spec.SAN != "" {
		m, err = nchess.AlgebraicNotation{}.Decode(pos, spec.SAN)
	} else {
		m, err = nchess.UCINotation{}.Decode(pos, strings.ToLower(spec.String()))
	}
	if err == nil {
		m, err = legalMove(pos, m)
	}
	if err != nil {
		return MoveResult{}, fmt.Errorf("%w: %s: %v", ErrIllegalMove, spec, err)
	}

	san := nchess.AlgebraicNotation{}.Encode(pos, m)
	if err := g.Move(m); err != nil {
		return MoveResult{}, fmt.Errorf("%w: %s: %v", ErrIllegalMove, spec, err)
	}

	flags := gameFlags(g)
	if m.HasTag(nchess.Check) {
		flags |= InCheck
	}
	return MoveResult{
		SAN:   san,
		FEN:   g.Position().String(),
		Color: fromColor(pos.Turn()),
		Flags: flags,
	}, nil
}

// SideToMove implements Rules.
func (r StandardRules) SideToMove(fen string) (Color, error) {
	g, err := r.game(fen)
	if err != nil {
		return NoColor, err
	}
	return fromColor(g.Position().Turn()), nil
}

// MoveNumber implements Rules.
func (r StandardRules) MoveNumber(fen string) (int, error) {
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return 0, fmt.Errorf("expected 6 fields, got %d", len(fields))
	}
	n, err := strconv.Atoi(fields[5])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid full move number %q", fields[5])
	}
	return n, nil
}

// Status implements Rules.
func (r StandardRules) Status(fen string) (Flags, error) {
	g, err := r.game(fen)
	if err != nil {
		return 0, err
	}
	flags := gameFlags(g)
	switch {
	case flags.Has(InCheckmate):
		flags |= InCheck
	case flags.Has(InStalemate):
	case r.kingAttacked(g.Position()):
		flags |= InCheck
	}
	return flags, nil
}

// kingAttacked reports whether the side to move in pos is in check by
// looking for a capture of its king with the other side to move.
func (r StandardRules) kingAttacked(pos *nchess.Position) bool {
	fields := strings.Fields(pos.String())
	turn := pos.Turn()
	if turn == nchess.White {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}
	fields[2], fields[3] = "-", "-"

	g, err := r.game(strings.Join(fields, " "))
	if err != nil {
		return false
	}
	board := g.Position().Board()
	for _, m := range g.ValidMoves() {
		p := board.Piece(m.S2())
		if p.Type() == nchess.King && p.Color() == turn {
			return true
		}
	}
	return false
}

// Pieces implements Rules.
func (r StandardRules) Pieces(fen string) ([]Piece, error) {
	g, err := r.game(fen)
	if err != nil {
		return nil, err
	}
	squares := g.Position().Board().SquareMap()
	keys := make([]nchess.Square, 0, len(squares))
	for sq := range squares {
		keys = append(keys, sq)
	}
	slices.Sort(keys)

	pieces := make([]Piece, 0, len(keys))
	for _, sq := range keys {
		p := squares[sq]
		pieces = append(pieces, Piece{
			Type:   fromPieceType(p.Type()),
			Color:  fromColor(p.Color()),
			Square: sq.String(),
		})
	}
	return pieces, nil
}

// legalMove returns the generated counterpart of m, which carries the
// capture, castle and check tags the encoder needs.
func legalMove(pos *nchess.Position, m *nchess.Move) (*nchess.Move, error) {
	for _, v := range pos.ValidMoves() {
		if v.S1() == m.S1() && v.S2() == m.S2() && v.Promo() == m.Promo() {
			return v, nil
		}
	}
	return nil, fmt.Errorf("move %s is not valid for the current position", m)
}

func gameFlags(g *nchess.Game) Flags {
	var flags Flags
	switch g.Method() {
	case nchess.Checkmate:
		flags |= InCheckmate | InCheck
	case nchess.Stalemate:
		flags |= InStalemate
	}
	if g.Outcome() == nchess.Draw {
		flags |= InDraw
	}
	for _, m := range g.EligibleDraws() {
		if m == nchess.FiftyMoveRule {
			flags |= InDraw
		}
	}
	return flags
}

func fromColor(c nchess.Color) Color {
	switch c {
	case nchess.White:
		return White
	case nchess.Black:
		return Black
	}
	return NoColor
}

func fromPieceType(p nchess.PieceType) PieceType {
	switch p {
	case nchess.King:
		return King
	case nchess.Queen:
		return Queen
	case nchess.Rook:
		return Rook
	case nchess.Bishop:
		return Bishop
	case nchess.Knight:
		return Knight
	case nchess.Pawn:
		return Pawn
	}
	return NoPieceType
}
