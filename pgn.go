/*
Package chess provides PGN (Portable Game Notation) parsing functionality,
supporting standard chess notation including moves, variations, comments,
annotations, and game metadata.
Example usage:

	// Parse a complete game with the standard rules
	header, tree, err := ParsePGN(text, StandardRules{}, ParseOptions{Strict: true})

	// Or drive the parser from tokens
	parser := NewParser(TokenizeGame(text), StandardRules{}, ParseOptions{})
	header, tree, err = parser.Parse()
*/
package chess

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"
)

// ParseOptions control how movetext is validated.
type ParseOptions struct {
	// Strict turns a SAN token without a legal counterpart into an
	// IllegalMoveError. Otherwise the token is skipped.
	Strict bool
	// Logger receives debug entries for skipped tokens. Nil disables logging.
	Logger *zap.Logger
}

// Parser holds the state needed during parsing.
type Parser struct {
	rules    Rules
	strict   bool
	logger   *zap.Logger
	header   *Header
	tree     *Tree
	current  NodeID
	tokens   []Token
	position int
}

// NewParser creates a parser over the given tokens. Every move is checked
// with rules.
//
// Example:
//
//	tokens := TokenizeGame(text)
//	parser := NewParser(tokens, StandardRules{}, ParseOptions{})
func NewParser(tokens []Token, rules Rules, opts ParseOptions) *Parser {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{
		rules:  rules,
		strict: opts.Strict,
		logger: logger,
		tokens: tokens,
		header: NewHeader(),
	}
}

// ParsePGN parses the text of a single game.
func ParsePGN(text string, rules Rules, opts ParseOptions) (*Header, *Tree, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, ErrNoGameFound
	}
	return NewParser(TokenizeGame(text), rules, opts).Parse()
}

// currentToken returns the current token being processed.
func (p *Parser) currentToken() Token {
	if p.position >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.position]
}

// advance moves to the next token.
func (p *Parser) advance() {
	p.position++
}

func (p *Parser) errorf(message string) *ParserError {
	tok := p.currentToken()
	return &ParserError{
		Message:    message,
		TokenType:  tok.Type,
		TokenValue: tok.Value,
		Position:   p.position,
	}
}

// Parse processes all tokens and returns the header and move tree.
// The root of the tree is the FEN tag's position when the header carries
// one (with SetUp "1" or without SetUp), otherwise the standard start.
//
// Comments and NAGs attach to the last move of the line being read. A
// comment after a closing ) therefore belongs to the move the variation
// branches after, not to the last move inside the variation. Before the
// first move they attach to the root.
//
// Returns a *ParserError if the PGN is malformed, an *InvalidFENError if
// the FEN tag is rejected, and in strict mode an *IllegalMoveError for the
// first move that cannot be played.
func (p *Parser) Parse() (*Header, *Tree, error) {
	if err := p.parseHeader(); err != nil {
		return nil, nil, err
	}

	fen := StartingFEN
	if value, ok := p.header.Lookup(TagFEN); ok {
		if setup, ok := p.header.Lookup(TagSetUp); !ok || setup == "1" {
			fen = value
		}
	}
	tree, err := newTreeAt(p.rules, fen)
	if err != nil {
		return nil, nil, err
	}
	p.tree = tree
	p.current = tree.Root()

	if err := p.parseMoveText(0); err != nil {
		return nil, nil, err
	}
	return p.header, p.tree, nil
}

func (p *Parser) parseHeader() error {
	for p.currentToken().Type == TagStart {
		if err := p.parseTagPair(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseTagPair() error {
	p.advance() // [

	if p.currentToken().Type != TagKey {
		return p.errorf("expected tag key")
	}
	key := p.currentToken().Value
	p.advance()

	if p.currentToken().Type != TagValue {
		return p.errorf("expected tag value")
	}
	value := p.currentToken().Value
	p.advance()

	if p.currentToken().Type != TagEnd {
		return p.errorf("expected tag end")
	}
	p.advance()

	p.header.Add(key, value)
	return nil
}

// parseMoveText consumes movetext until the end of input, a result, or the
// ) closing the variation at the given depth.
func (p *Parser) parseMoveText(depth int) error {
	for {
		tok := p.currentToken()

		switch tok.Type {
		case EOF:
			if depth > 0 {
				return p.errorf("unterminated variation")
			}
			return nil

		case MoveNumber, DOT, ELLIPSIS:
			p.advance()

		case SAN:
			if err := p.parseMove(); err != nil {
				return err
			}

		case NAG:
			nag, err := strconv.Atoi(tok.Value)
			if err != nil {
				return p.errorf("invalid NAG")
			}
			_ = p.tree.AddNAG(p.current, nag)
			p.advance()

		case CommentStart:
			comment, commands, err := p.parseComment()
			if err != nil {
				return err
			}
			p.tree.annotate(p.current, comment, commands)

		case VariationStart:
			if err := p.parseVariation(depth); err != nil {
				return err
			}

		case VariationEnd:
			if depth == 0 {
				return p.errorf("unbalanced variation end")
			}
			p.advance()
			return nil

		case RESULT:
			if depth > 0 {
				p.logger.Debug("ignoring result inside variation", zap.String("result", tok.Value))
				p.advance()
				continue
			}
			p.parseResult()
			return nil

		case TagStart:
			return p.errorf("unexpected tag pair in movetext")

		case ILLEGAL:
			return p.errorf("malformed input")

		default:
			return p.errorf("unexpected token in movetext")
		}
	}
}

// parseMove plays the current SAN token from the cursor and advances the
// cursor to the new node.
func (p *Parser) parseMove() error {
	san := p.currentToken().Value
	ply := p.tree.Depth(p.current) + 1

	res, err := p.rules.ApplyMove(p.tree.FEN(p.current), MoveSpec{SAN: san})
	if err != nil {
		if p.strict {
			return &IllegalMoveError{SAN: san, Ply: ply, Err: err}
		}
		p.logger.Debug("skipping illegal move",
			zap.String("san", san),
			zap.Int("ply", ply),
			zap.Error(err),
		)
		p.advance()
		return nil
	}

	id, err := p.tree.AddChild(p.current, Move{
		SAN:   res.SAN,
		FEN:   res.FEN,
		Color: res.Color,
		Flags: res.Flags,
	})
	if err != nil {
		return err
	}
	p.current = id
	p.advance()
	return nil
}

// parseVariation branches from the parent of the cursor, parses the
// variation and restores the cursor.
func (p *Parser) parseVariation(depth int) error {
	parent, ok := p.tree.Parent(p.current)
	if !ok {
		return p.errorf("variation without a preceding move")
	}
	p.advance() // consume (

	saved := p.current
	p.current = parent
	if err := p.parseMoveText(depth + 1); err != nil {
		return err
	}
	p.current = saved
	return nil
}

func (p *Parser) parseComment() (string, map[string]string, error) {
	p.advance() // Consume "{"

	var parts []string
	var commandMap map[string]string

	for p.currentToken().Type != CommentEnd {
		switch p.currentToken().Type {
		case EOF:
			return "", nil, p.errorf("unterminated comment")

		case CommandStart:
			commands, err := p.parseCommand()
			if err != nil {
				return "", nil, err
			}
			if commandMap == nil {
				commandMap = make(map[string]string)
			}
			maps.Copy(commandMap, commands)
			continue

		case COMMENT:
			parts = append(parts, p.currentToken().Value)

		default:
			return "", nil, p.errorf("unexpected token in comment")
		}
		p.advance()
	}

	p.advance() // Consume "}"
	return strings.Join(parts, " "), commandMap, nil
}

// parseCommand reads one [%name params] command. A command missing its
// closing bracket ends at the end of the comment.
func (p *Parser) parseCommand() (map[string]string, error) {
	command := make(map[string]string)
	var key string

	p.advance() // Consume "[%"

	for {
		switch p.currentToken().Type {
		case CommandName:
			key = p.currentToken().Value
			command[key] = ""
		case CommandParam:
			if key != "" {
				if command[key] != "" {
					command[key] += " "
				}
				command[key] += p.currentToken().Value
			}
		case CommandEnd:
			p.advance()
			return command, nil
		case CommentEnd:
			return command, nil
		case EOF:
			return nil, p.errorf("unterminated command")
		default:
			return nil, p.errorf("unexpected token in command")
		}
		p.advance()
	}
}

func (p *Parser) parseResult() {
	p.header.Set(TagResult, p.currentToken().Value)
	p.advance()
}
