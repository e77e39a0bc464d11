/*
Package chess provides a chess game model built around a PGN move tree: a
main line with nested variations, comments and annotation glyphs, a
multi-valued tag header, a recursive-descent PGN parser and a PGN writer.
Move legality is decided by a Rules implementation; StandardRules covers
orthodox chess.
Example usage:

	// Create new game
	game := NewGame()

	// Make moves
	game.Move("e4")
	game.Move("e5")

	// Check game status
	if game.GameOver() {
		fmt.Printf("Game ended: %s\n", game.Outcome())
	}
*/
package chess

import (
	"fmt"

	"go.uber.org/zap"
)

// A Outcome is the result of a game.
type Outcome string

const (
	// NoOutcome indicates that a game is in progress or ended without a result.
	NoOutcome Outcome = "*"
	// WhiteWon indicates that white won the game.
	WhiteWon Outcome = "1-0"
	// BlackWon indicates that black won the game.
	BlackWon Outcome = "0-1"
	// Draw indicates that game was a draw.
	Draw Outcome = "1/2-1/2"
)

// String implements the fmt.Stringer interface.
func (o Outcome) String() string {
	return string(o)
}

// A Game is a chess game: a tag header and a move tree whose main line ends
// at the current position. A Game is not safe for concurrent use.
type Game struct {
	rules  Rules
	logger *zap.Logger
	header *Header
	tree   *Tree
}

// WithRules returns a Game option that replaces the rules engine.
func WithRules(rules Rules) func(*Game) {
	return func(g *Game) {
		g.rules = rules
	}
}

// WithLogger returns a Game option that sets the logger used for rejected
// moves and positions.
func WithLogger(logger *zap.Logger) func(*Game) {
	return func(g *Game) {
		g.logger = logger
	}
}

// NewGame returns a new game in the standard starting position.
// Optional functions can be provided to configure the game.
//
// Example:
//
//	// Standard game
//	game := NewGame()
//
//	// Game with a custom rules engine
//	game := NewGame(WithRules(myRules))
func NewGame(options ...func(*Game)) *Game {
	g := &Game{
		rules:  StandardRules{},
		logger: zap.NewNop(),
		header: NewHeader(),
	}
	for _, f := range options {
		if f != nil {
			f(g)
		}
	}
	tree, err := newTreeAt(g.rules, StartingFEN)
	if err != nil {
		g.logger.Warn("rules rejected the starting position", zap.Error(err))
		tree = NewTree(StartingFEN, White, 1)
	}
	g.tree = tree
	return g
}

// NewGameFromFEN returns a new game starting at fen.
func NewGameFromFEN(fen string, options ...func(*Game)) (*Game, error) {
	g := NewGame(options...)
	if err := g.Load(fen); err != nil {
		return nil, err
	}
	return g, nil
}

// NewGameFromPGN returns a new game holding the parsed PGN text.
func NewGameFromPGN(text string, opts ParseOptions, options ...func(*Game)) (*Game, error) {
	g := NewGame(options...)
	if err := g.LoadPGN(text, opts); err != nil {
		return nil, err
	}
	return g, nil
}

// newTreeAt validates fen and returns a tree rooted at it.
func newTreeAt(rules Rules, fen string) (*Tree, error) {
	if err := rules.ValidateFEN(fen); err != nil {
		return nil, &InvalidFENError{FEN: fen, Err: err}
	}
	turn, err := rules.SideToMove(fen)
	if err != nil {
		return nil, &InvalidFENError{FEN: fen, Err: err}
	}
	number, err := rules.MoveNumber(fen)
	if err != nil {
		return nil, &InvalidFENError{FEN: fen, Err: err}
	}
	return NewTree(fen, turn, number), nil
}

// Load replaces the game with an empty one starting at fen. The header
// holds SetUp and FEN tags unless fen is the standard starting position.
// On error the game is left unchanged.
func (g *Game) Load(fen string) error {
	tree, err := newTreeAt(g.rules, fen)
	if err != nil {
		g.logger.Debug("rejected FEN", zap.String("fen", fen), zap.Error(err))
		return err
	}
	header := NewHeader()
	if fen != StartingFEN {
		header.Add(TagSetUp, "1")
		header.Add(TagFEN, fen)
	}
	g.header = header
	g.tree = tree
	return nil
}

// LoadPGN replaces the game with the parsed PGN text. On error the game is
// left unchanged.
func (g *Game) LoadPGN(text string, opts ParseOptions) error {
	if opts.Logger == nil {
		opts.Logger = g.logger
	}
	header, tree, err := ParsePGN(text, g.rules, opts)
	if err != nil {
		return fmt.Errorf("load pgn: %w", err)
	}
	g.header = header
	g.tree = tree
	return nil
}

// Move plays a move given in SAN at the end of the main line. It returns
// false, and leaves the game unchanged, if the move is not legal.
func (g *Game) Move(san string) (MoveResult, bool) {
	return g.MoveSpec(MoveSpec{SAN: san})
}

// MoveSpec is like Move for a move given either as SAN or as squares.
func (g *Game) MoveSpec(spec MoveSpec) (MoveResult, bool) {
	tip := g.tree.Tip()
	res, err := g.rules.ApplyMove(g.tree.FEN(tip), spec)
	if err != nil {
		g.logger.Debug("rejected move", zap.Stringer("move", spec), zap.Error(err))
		return MoveResult{}, false
	}
	if _, err := g.tree.AddChild(tip, moveFromResult(res)); err != nil {
		return MoveResult{}, false
	}
	return res, true
}

// AddVariation plays spec from the position after parent and stores it as
// a new child of parent: its continuation if parent has none, otherwise a
// variation.
func (g *Game) AddVariation(parent NodeID, spec MoveSpec) (NodeID, error) {
	if !g.tree.Contains(parent) {
		return NodeID{}, ErrNodeNotFound
	}
	res, err := g.rules.ApplyMove(g.tree.FEN(parent), spec)
	if err != nil {
		return NodeID{}, err
	}
	return g.tree.AddChild(parent, moveFromResult(res))
}

func moveFromResult(res MoveResult) Move {
	return Move{
		SAN:   res.SAN,
		FEN:   res.FEN,
		Color: res.Color,
		Flags: res.Flags,
	}
}

// Undo removes the last move of the main line. It returns false if no
// move has been played.
func (g *Game) Undo() bool {
	tip := g.tree.Tip()
	if tip == g.tree.Root() {
		return false
	}
	return g.tree.Remove(tip) == nil
}

// UndoNode removes id and every move after it. When id is on the main line
// the game continues from its parent.
func (g *Game) UndoNode(id NodeID) error {
	if err := g.tree.Remove(id); err != nil {
		return fmt.Errorf("undo: %w", err)
	}
	return nil
}

// History returns the moves of the main line from the first to the last.
func (g *Game) History() []Move {
	line := g.tree.MainLine()
	moves := make([]Move, 0, len(line))
	for _, id := range line {
		m, _ := g.tree.Move(id)
		moves = append(moves, m)
	}
	return moves
}

// LastMove returns the last move of the main line.
func (g *Game) LastMove() (Move, bool) {
	tip := g.tree.Tip()
	if tip == g.tree.Root() {
		return Move{}, false
	}
	return g.tree.Move(tip)
}

// Positions returns the FEN of the starting position followed by the FEN
// after each move of the main line.
func (g *Game) Positions() []string {
	positions := []string{g.tree.FEN(g.tree.Root())}
	for _, id := range g.tree.MainLine() {
		positions = append(positions, g.tree.FEN(id))
	}
	return positions
}

// Turn returns the side to move at the end of the main line.
func (g *Game) Turn() Color {
	if m, ok := g.LastMove(); ok {
		return m.Color.Other()
	}
	return g.tree.StartTurn()
}

// Pieces returns the pieces of the current position, optionally limited to
// the given piece types. Types match both colors and are case-insensitive.
func (g *Game) Pieces(filter ...PieceType) []Piece {
	pieces, err := g.rules.Pieces(g.FEN())
	if err != nil {
		g.logger.Warn("listing pieces failed", zap.Error(err))
		return nil
	}
	if len(filter) == 0 {
		return pieces
	}
	wanted := make(map[PieceType]bool, len(filter))
	for _, t := range filter {
		if t >= 'A' && t <= 'Z' {
			t += 'a' - 'A'
		}
		wanted[t] = true
	}
	var out []Piece
	for _, p := range pieces {
		if wanted[p.Type] {
			out = append(out, p)
		}
	}
	return out
}

// flags returns the flags of the current position: those recorded with the
// last move, or those of the starting position when no move was played.
func (g *Game) flags() Flags {
	if m, ok := g.LastMove(); ok {
		return m.Flags
	}
	flags, err := g.rules.Status(g.FEN())
	if err != nil {
		g.logger.Warn("position status failed", zap.Error(err))
		return 0
	}
	return flags
}

// GameOver returns true if the side to move is checkmated or the position is drawn.
func (g *Game) GameOver() bool {
	f := g.flags()
	return f.Has(InCheckmate) || f.Has(InStalemate) || f.Has(InDraw)
}

// InCheck returns true if the side to move is in check.
func (g *Game) InCheck() bool {
	return g.flags().Has(InCheck)
}

// InCheckmate returns true if the side to move is checkmated.
func (g *Game) InCheckmate() bool {
	return g.flags().Has(InCheckmate)
}

// InStalemate returns true if the side to move is stalemated.
func (g *Game) InStalemate() bool {
	return g.flags().Has(InStalemate)
}

// InDraw returns true if the current position is drawn by rule.
func (g *Game) InDraw() bool {
	f := g.flags()
	return f.Has(InDraw) || f.Has(InStalemate)
}

// Outcome returns the result decided on the board, or else the result
// recorded in the Result tag.
func (g *Game) Outcome() Outcome {
	f := g.flags()
	switch {
	case f.Has(InCheckmate):
		if g.Turn() == White {
			return BlackWon
		}
		return WhiteWon
	case f.Has(InDraw) || f.Has(InStalemate):
		return Draw
	}
	switch o := Outcome(g.header.Get(TagResult)); o {
	case WhiteWon, BlackWon, Draw:
		return o
	}
	return NoOutcome
}

// FEN returns the FEN of the current position.
func (g *Game) FEN() string {
	return g.tree.FEN(g.tree.Tip())
}

// PGN returns the game as PGN text.
func (g *Game) PGN() string {
	return EncodePGN(g.header, g.tree)
}

// String implements the fmt.Stringer interface and returns the game's PGN.
func (g *Game) String() string {
	return g.PGN()
}

// Header returns the tag header of the game.
func (g *Game) Header() *Header {
	return g.header
}

// Tree returns the move tree of the game.
func (g *Game) Tree() *Tree {
	return g.tree
}

// MarshalText implements the encoding.TextMarshaler interface and
// encodes the game's PGN.
func (g *Game) MarshalText() ([]byte, error) {
	return []byte(g.PGN()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface and
// assumes the data is in the PGN format. Illegal moves are skipped.
func (g *Game) UnmarshalText(text []byte) error {
	if g.rules == nil {
		*g = *NewGame()
	}
	return g.LoadPGN(string(text), ParseOptions{})
}
