package chess

import (
	"errors"
	"fmt"
)

var (
	// ErrNodeNotFound is returned when a NodeID does not address a live node of the tree.
	ErrNodeNotFound = errors.New("chess: node not found in tree")
	// ErrRootNode is returned when an operation would remove the root of a tree.
	ErrRootNode = errors.New("chess: root node cannot be removed")
	// ErrNoGameFound is returned when the input holds neither tags nor movetext.
	ErrNoGameFound = errors.New("chess: no game found in input")
	// ErrIllegalMove is returned by a Rules implementation when a move cannot
	// be played in the given position.
	ErrIllegalMove = errors.New("chess: illegal move")
)

// ParserError is returned for malformed PGN: bad tag pairs, unbalanced
// variations, unterminated comments or unexpected characters.
type ParserError struct {
	Message    string
	TokenValue string
	TokenType  TokenType
	Position   int
}

func (e *ParserError) Error() string {
	if e.TokenValue == "" {
		return fmt.Sprintf("chess: parse error at token %d: %s", e.Position, e.Message)
	}
	return fmt.Sprintf("chess: parse error at token %d (%s %q): %s",
		e.Position, e.TokenType, e.TokenValue, e.Message)
}

// InvalidFENError is returned when the rules engine rejects a FEN.
type InvalidFENError struct {
	FEN string
	Err error
}

func (e *InvalidFENError) Error() string {
	return fmt.Sprintf("chess: invalid FEN %q: %v", e.FEN, e.Err)
}

func (e *InvalidFENError) Unwrap() error {
	return e.Err
}

// IllegalMoveError is returned by strict parsing when a SAN token has no
// legal counterpart in the current position. Ply counts from the root of the
// tree, starting at 1.
type IllegalMoveError struct {
	SAN string
	Ply int
	Err error
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("chess: illegal move %q at ply %d: %v", e.SAN, e.Ply, e.Err)
}

func (e *IllegalMoveError) Unwrap() error {
	return e.Err
}
