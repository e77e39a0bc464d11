package chess

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func parseStub(t *testing.T, text string, rules stubRules, strict bool) (*Header, *Tree) {
	t.Helper()
	h, tree, err := ParsePGN(text, rules, ParseOptions{Strict: strict})
	require.NoError(t, err)
	return h, tree
}

func TestParseVariationStructure(t *testing.T) {
	h, tree := parseStub(t, "1. e4 (1. d4 d5 (1... Nf6)) 1... e5 2. Nf3 *", stubRules{}, true)

	assert.Equal(t, "*", h.Get(TagResult))
	assert.Equal(t, []string{"e4", "e5", "Nf3"}, sanOf(tree, tree.MainLine()))

	variations := tree.Variations(tree.Root())
	require.Len(t, variations, 1)
	d4 := variations[0]
	d5, ok := tree.Next(d4)
	require.True(t, ok)
	m, _ := tree.Move(d5)
	assert.Equal(t, "d5", m.SAN)
	assert.Equal(t, []string{"Nf6"}, sanOf(tree, tree.Variations(d4)))

	assert.Equal(t, [][]string{
		{"e4", "e5", "Nf3"},
		{"d4", "d5"},
		{"d4", "Nf6"},
	}, sanLines(tree))
}

func TestParseVariationPositions(t *testing.T) {
	_, tree := parseStub(t, "1. e4 e5 (1... c5 2. Nf3) 2. Nc3", stubRules{}, true)

	c5 := tree.Variations(tree.MainLine()[0])
	require.Len(t, c5, 1)
	assert.Equal(t, "root/e4/c5 w 2", tree.FEN(c5[0]))
	assert.Equal(t, "root/e4/e5/Nc3 b 2", tree.FEN(tree.Tip()))
}

func TestParseHeader(t *testing.T) {
	text := `[Event "Casual"]
[Annotator "S3"]
[Annotator "app 037-1"]
[White "Schaak opheffen"]

1. e4`
	h, tree := parseStub(t, text, stubRules{}, true)

	assert.Equal(t, 4, h.Len())
	assert.Equal(t, "app 037-1", h.Get(TagAnnotator))
	assert.Equal(t, []string{"S3", "app 037-1"}, h.Values(TagAnnotator))
	assert.Equal(t, "Schaak opheffen", h.Get(TagWhite))
	assert.Equal(t, 1, tree.Len())
}

func TestParseHeaderOnly(t *testing.T) {
	h, tree := parseStub(t, `[Event "x"]`, stubRules{}, true)
	assert.Equal(t, "x", h.Get(TagEvent))
	assert.Zero(t, tree.Len())
}

func TestParseSetUpFEN(t *testing.T) {
	tests := []struct {
		name   string
		tags   string
		expect string
	}{
		{"setup 1", "[SetUp \"1\"]\n[FEN \"root b 7\"]\n", "root b 7"},
		{"no setup", "[FEN \"root b 7\"]\n", "root b 7"},
		{"setup 0", "[SetUp \"0\"]\n[FEN \"root b 7\"]\n", StartingFEN},
		{"no fen", "[SetUp \"1\"]\n", StartingFEN},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, tree := parseStub(t, tt.tags+"\n", stubRules{}, true)
			assert.Equal(t, tt.expect, tree.FEN(tree.Root()))
		})
	}
}

func TestParseBlackStart(t *testing.T) {
	_, tree := parseStub(t, "[FEN \"root b 1\"]\n\n1... Bf8 2. exd4 Qxd4+", stubRules{}, true)

	assert.Equal(t, Black, tree.StartTurn())
	line := tree.MainLine()
	require.Len(t, line, 3)
	m, _ := tree.Move(line[2])
	assert.Equal(t, Black, m.Color)
	assert.True(t, m.InCheck())
	assert.Equal(t, 2, tree.MoveNumber(line[2]))
}

func TestParseInvalidFEN(t *testing.T) {
	_, _, err := ParsePGN("[SetUp \"1\"]\n[FEN \"garbage\"]\n\n1. e4", stubRules{}, ParseOptions{})

	var fenErr *InvalidFENError
	require.ErrorAs(t, err, &fenErr)
	assert.Equal(t, "garbage", fenErr.FEN)
}

func TestParseComments(t *testing.T) {
	_, tree := parseStub(t, "{before} 1. e4 {first} {second} ; third\n e5 {[%clk 0:01:00] [%eval 0.2] note}", stubRules{}, true)

	root, _ := tree.Move(tree.Root())
	assert.Equal(t, "before", root.Comment)

	line := tree.MainLine()
	e4, _ := tree.Move(line[0])
	assert.Equal(t, "first second third", e4.Comment)

	e5, _ := tree.Move(line[1])
	assert.Equal(t, "note", e5.Comment)
	assert.Equal(t, map[string]string{"clk": "0:01:00", "eval": "0.2"}, e5.Commands)
}

func TestParseCommentAfterVariation(t *testing.T) {
	_, tree := parseStub(t, "1. e4 (1. d4 d5) {after} $1 1... e5", stubRules{}, true)

	e4, _ := tree.Move(tree.MainLine()[0])
	assert.Equal(t, "after", e4.Comment)
	assert.Equal(t, []int{1}, e4.NAGs)

	d5, _ := tree.Move(tree.Lines()[1][1])
	assert.Empty(t, d5.Comment)
}

func TestParseCommandWithoutClosingBracket(t *testing.T) {
	_, tree := parseStub(t, "1. e4 {[%clk 0:01:00}", stubRules{}, true)

	m, _ := tree.Move(tree.Tip())
	assert.Equal(t, map[string]string{"clk": "0:01:00"}, m.Commands)
}

func TestParseNAGs(t *testing.T) {
	_, tree := parseStub(t, "1. e4! $14 e5?!", stubRules{}, true)

	line := tree.MainLine()
	e4, _ := tree.Move(line[0])
	e5, _ := tree.Move(line[1])
	assert.Equal(t, []int{1, 14}, e4.NAGs)
	assert.Equal(t, []int{6}, e5.NAGs)
}

func TestParseResult(t *testing.T) {
	t.Run("ends the movetext", func(t *testing.T) {
		h, tree := parseStub(t, "[Result \"*\"]\n\n1. e4 0-1 2. d4", stubRules{}, true)
		assert.Equal(t, "0-1", h.Get(TagResult))
		assert.Equal(t, 1, h.Len())
		assert.Equal(t, 1, tree.Len())
	})

	t.Run("ignored inside a variation", func(t *testing.T) {
		h, tree := parseStub(t, "1. e4 (1. d4 1-0) e5", stubRules{}, true)
		assert.False(t, h.Has(TagResult))
		assert.Equal(t, []string{"e4", "e5"}, sanOf(tree, tree.MainLine()))
		assert.Equal(t, 3, tree.Len())
	})
}

func TestParseLenientSkipsIllegalMoves(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rules := stubRules{illegal: map[string]bool{"Bb5": true}}

	_, tree, err := ParsePGN("1. e4 e5 2. Bb5 Nc6", rules, ParseOptions{Logger: zap.New(core)})
	require.NoError(t, err)

	assert.Equal(t, []string{"e4", "e5", "Nc6"}, sanOf(tree, tree.MainLine()))

	skipped := logs.FilterMessage("skipping illegal move").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, "Bb5", skipped[0].ContextMap()["san"])
	assert.Equal(t, int64(3), skipped[0].ContextMap()["ply"])
}

func TestParseStrictRejectsIllegalMoves(t *testing.T) {
	rules := stubRules{illegal: map[string]bool{"Bb5": true}}

	_, _, err := ParsePGN("1. e4 e5 (1... c5 2. Bb5) 2. Nf3", rules, ParseOptions{Strict: true})

	var moveErr *IllegalMoveError
	require.ErrorAs(t, err, &moveErr)
	assert.Equal(t, "Bb5", moveErr.SAN)
	assert.Equal(t, 3, moveErr.Ply)
	assert.ErrorIs(t, err, ErrIllegalMove)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"unterminated variation", "1. e4 (1. d4 d5", "unterminated variation"},
		{"unbalanced variation end", "1. e4 ) e5", "unbalanced variation end"},
		{"variation before any move", "(1. e4) 1. d4", "variation without a preceding move"},
		{"unterminated comment", "1. e4 {open", "unterminated comment"},
		{"illegal character", "1. e4 @", "malformed input"},
		{"tag in movetext", "1. e4 [White \"x\"]", "unexpected tag pair in movetext"},
		{"malformed tag", "[White x]\n1. e4", "malformed input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParsePGN(tt.input, stubRules{}, ParseOptions{})
			var parseErr *ParserError
			require.True(t, errors.As(err, &parseErr), "got %v", err)
			assert.Equal(t, tt.message, parseErr.Message)
		})
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, input := range []string{"", "  \n\t"} {
		_, _, err := ParsePGN(input, stubRules{}, ParseOptions{})
		assert.ErrorIs(t, err, ErrNoGameFound)
	}
}

func TestParseStandardRules(t *testing.T) {
	text := `[Event "Stappenmethode"]
[White "Schaak opheffen"]
[Annotator "S3"]
[Annotator "app 037-1"]
[SetUp "1"]
[FEN "r1b1Q1k1/1p2bpqp/8/8/p1Pr4/4PpN1/P6P/R4RK1 b - - 0 1"]

1... Bf8 (1... Qf8? 2. Qxf8+ Bxf8 3. exd4) 2. exd4 Qxd4+ {%Q} 3. Kh1 Bh3 0-1`

	h, tree, err := ParsePGN(text, StandardRules{}, ParseOptions{Strict: true})
	require.NoError(t, err)

	assert.Equal(t, "app 037-1", h.Get(TagAnnotator))
	assert.Equal(t, "Schaak opheffen", h.Get(TagWhite))
	assert.Equal(t, "0-1", h.Get(TagResult))
	assert.Equal(t, []string{"Bf8", "exd4", "Qxd4+", "Kh1", "Bh3"}, sanOf(tree, tree.MainLine()))

	qf8 := tree.Variations(tree.Root())
	require.Len(t, qf8, 1)
	m, _ := tree.Move(qf8[0])
	assert.Equal(t, "Qf8", m.SAN)
	assert.Equal(t, []int{2}, m.NAGs)

	check, _ := tree.Move(tree.MainLine()[2])
	assert.Equal(t, "%Q", check.Comment)
	assert.True(t, check.InCheck())
}
