package chess

import (
	"slices"

	"github.com/google/uuid"
	"golang.org/x/exp/maps"
)

// NodeID is a stable handle to a node of one Tree. Handles of removed
// nodes, and handles of other trees, are never reused.
type NodeID struct {
	tree  uuid.UUID
	index int
}

// IsZero returns true for the zero NodeID, which addresses no node.
func (id NodeID) IsZero() bool {
	return id.tree == uuid.Nil
}

// A Move is one ply of a game as stored in a Tree. The root of a tree is
// also represented as a Move with an empty SAN.
type Move struct {
	ID       NodeID
	SAN      string
	FEN      string // position after the move
	Color    Color  // side that moved
	Flags    Flags
	Comment  string
	NAGs     []int
	Commands map[string]string
}

// InCheck returns true if the move gave check.
func (m Move) InCheck() bool { return m.Flags.Has(InCheck) }

// InCheckmate returns true if the move gave checkmate.
func (m Move) InCheckmate() bool { return m.Flags.Has(InCheckmate) }

// InStalemate returns true if the move left the opponent without a legal move.
func (m Move) InStalemate() bool { return m.Flags.Has(InStalemate) }

// InDraw returns true if the position after the move is drawn by rule.
func (m Move) InDraw() bool { return m.Flags.Has(InDraw) }

func (m Move) clone() Move {
	m.NAGs = slices.Clone(m.NAGs)
	if m.Commands != nil {
		m.Commands = maps.Clone(m.Commands)
	}
	return m
}

type node struct {
	move     Move
	parent   int
	children []int
	removed  bool
}

// Tree is the move tree of one game. Nodes live in an arena and are
// addressed by NodeID; the first child of a node continues its line and any
// further children are variations branching from the same position.
type Tree struct {
	id          uuid.UUID
	nodes       []node
	startTurn   Color
	startNumber int
}

// NewTree returns a tree holding only a root at fen, where turn is the side
// to move and moveNumber the full move number of fen.
func NewTree(fen string, turn Color, moveNumber int) *Tree {
	if moveNumber < 1 {
		moveNumber = 1
	}
	t := &Tree{
		id:          uuid.New(),
		startTurn:   turn,
		startNumber: moveNumber,
	}
	t.nodes = append(t.nodes, node{
		move:   Move{ID: NodeID{tree: t.id}, FEN: fen},
		parent: -1,
	})
	return t
}

// ID returns the identity of the tree.
func (t *Tree) ID() uuid.UUID {
	return t.id
}

// Root returns the synthetic node holding the starting position.
func (t *Tree) Root() NodeID {
	return NodeID{tree: t.id}
}

// StartTurn returns the side to move at the root.
func (t *Tree) StartTurn() Color {
	return t.startTurn
}

// StartNumber returns the full move number at the root.
func (t *Tree) StartNumber() int {
	return t.startNumber
}

// Contains returns true if id addresses a live node of t.
func (t *Tree) Contains(id NodeID) bool {
	return id.tree == t.id && id.index >= 0 && id.index < len(t.nodes) && !t.nodes[id.index].removed
}

func (t *Tree) handle(index int) NodeID {
	return NodeID{tree: t.id, index: index}
}

// Move returns a copy of the move stored at id.
func (t *Tree) Move(id NodeID) (Move, bool) {
	if !t.Contains(id) {
		return Move{}, false
	}
	return t.nodes[id.index].move.clone(), true
}

// FEN returns the position after the move at id.
func (t *Tree) FEN(id NodeID) string {
	if !t.Contains(id) {
		return ""
	}
	return t.nodes[id.index].move.FEN
}

// Parent returns the node that id follows. The root has no parent.
func (t *Tree) Parent(id NodeID) (NodeID, bool) {
	if !t.Contains(id) || t.nodes[id.index].parent < 0 {
		return NodeID{}, false
	}
	return t.handle(t.nodes[id.index].parent), true
}

// Next returns the continuation of the line id belongs to.
func (t *Tree) Next(id NodeID) (NodeID, bool) {
	if !t.Contains(id) || len(t.nodes[id.index].children) == 0 {
		return NodeID{}, false
	}
	return t.handle(t.nodes[id.index].children[0]), true
}

// Variations returns the alternatives to Next, in insertion order.
func (t *Tree) Variations(id NodeID) []NodeID {
	if !t.Contains(id) || len(t.nodes[id.index].children) <= 1 {
		return nil
	}
	children := t.nodes[id.index].children[1:]
	ids := make([]NodeID, 0, len(children))
	for _, c := range children {
		ids = append(ids, t.handle(c))
	}
	return ids
}

// Children returns Next followed by the variations of id.
func (t *Tree) Children(id NodeID) []NodeID {
	if !t.Contains(id) {
		return nil
	}
	ids := make([]NodeID, 0, len(t.nodes[id.index].children))
	for _, c := range t.nodes[id.index].children {
		ids = append(ids, t.handle(c))
	}
	return ids
}

// AddChild appends m below parent: as its Next if parent has no child yet,
// otherwise as a new variation.
func (t *Tree) AddChild(parent NodeID, m Move) (NodeID, error) {
	if !t.Contains(parent) {
		return NodeID{}, ErrNodeNotFound
	}
	index := len(t.nodes)
	m = m.clone()
	m.ID = t.handle(index)
	t.nodes = append(t.nodes, node{move: m, parent: parent.index})
	t.nodes[parent.index].children = append(t.nodes[parent.index].children, index)
	return m.ID, nil
}

// Remove deletes id and its whole subtree. When id is the Next of its parent,
// the variations of that move are deleted with it, so the parent ends its line.
func (t *Tree) Remove(id NodeID) error {
	if !t.Contains(id) {
		return ErrNodeNotFound
	}
	if id.index == 0 {
		return ErrRootNode
	}
	parent := &t.nodes[t.nodes[id.index].parent]
	stack := []int{id.index}
	if parent.children[0] == id.index {
		stack = slices.Clone(parent.children)
		parent.children = nil
	} else {
		parent.children = slices.DeleteFunc(parent.children, func(c int) bool { return c == id.index })
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t.nodes[i].removed = true
		stack = append(stack, t.nodes[i].children...)
		t.nodes[i].children = nil
	}
	return nil
}

// MainLine returns the moves reached by following Next from the root, root excluded.
func (t *Tree) MainLine() []NodeID {
	var line []NodeID
	for cur, ok := t.Next(t.Root()); ok; cur, ok = t.Next(cur) {
		line = append(line, cur)
	}
	return line
}

// Tip returns the last node of the main line, or the root if no move was played.
func (t *Tree) Tip() NodeID {
	tip := t.Root()
	for next, ok := t.Next(tip); ok; next, ok = t.Next(next) {
		tip = next
	}
	return tip
}

// Depth returns the number of plies between the root and id.
func (t *Tree) Depth(id NodeID) int {
	if !t.Contains(id) {
		return -1
	}
	depth := 0
	for i := id.index; t.nodes[i].parent >= 0; i = t.nodes[i].parent {
		depth++
	}
	return depth
}

// MoveNumber returns the full move number of the move at id.
func (t *Tree) MoveNumber(id NodeID) int {
	depth := t.Depth(id)
	if depth <= 0 {
		return t.startNumber
	}
	offset := 0
	if t.startTurn == Black {
		offset = 1
	}
	return t.startNumber + (depth-1+offset)/2
}

// Len returns the number of moves in the tree, variations included.
func (t *Tree) Len() int {
	n := 0
	for _, nd := range t.nodes[1:] {
		if !nd.removed {
			n++
		}
	}
	return n
}

// Lines returns every path from the first move to a leaf, main line first.
func (t *Tree) Lines() [][]NodeID {
	var lines [][]NodeID
	for _, c := range t.Children(t.Root()) {
		lines = append(lines, t.collectPaths(c)...)
	}
	return lines
}

// collectPaths returns all paths from id to each leaf below it.
func (t *Tree) collectPaths(id NodeID) [][]NodeID {
	children := t.Children(id)
	if len(children) == 0 {
		return [][]NodeID{{id}}
	}
	var paths [][]NodeID
	for _, c := range children {
		for _, p := range t.collectPaths(c) {
			paths = append(paths, append([]NodeID{id}, p...))
		}
	}
	return paths
}

// SetComment replaces the comment of the move at id.
func (t *Tree) SetComment(id NodeID, comment string) error {
	if !t.Contains(id) {
		return ErrNodeNotFound
	}
	t.nodes[id.index].move.Comment = comment
	return nil
}

// AddNAG appends a numeric annotation glyph to the move at id.
func (t *Tree) AddNAG(id NodeID, nag int) error {
	if !t.Contains(id) {
		return ErrNodeNotFound
	}
	t.nodes[id.index].move.NAGs = append(t.nodes[id.index].move.NAGs, nag)
	return nil
}

// annotate appends comment text and merges commands into the move at id.
func (t *Tree) annotate(id NodeID, comment string, commands map[string]string) {
	if !t.Contains(id) {
		return
	}
	m := &t.nodes[id.index].move
	if comment != "" {
		if m.Comment != "" {
			m.Comment += " " + comment
		} else {
			m.Comment = comment
		}
	}
	if len(commands) > 0 {
		if m.Commands == nil {
			m.Commands = make(map[string]string, len(commands))
		}
		maps.Copy(m.Commands, commands)
	}
}
