package lexer

import (
	"testing"

	"github.com/kong-shade/kongc/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestBasicTokens(t *testing.T) {
	tokens, err := New("test.kong", "fn main() -> float { return 1.0; }").Tokenize()
	require.NoError(t, err)

	assert.Equal(t, []token.Kind{
		token.KwFn, token.Identifier, token.LeftParen, token.RightParen,
		token.Arrow, token.Identifier, token.LeftBrace,
		token.Identifier, token.Number, token.Semicolon,
		token.RightBrace, token.EOF,
	}, kinds(tokens))
}

func TestMaximalMunchOperators(t *testing.T) {
	tokens, err := New("test.kong", "== != <= >= || && -> += -= *= /= = + - * / % < > !").Tokenize()
	require.NoError(t, err)

	assert.Equal(t, []token.Kind{
		token.EqualEqual, token.BangEqual, token.LessEqual, token.GreaterEqual,
		token.PipePipe, token.AmpAmp, token.Arrow,
		token.PlusEqual, token.MinusEqual, token.StarEqual, token.SlashEqual,
		token.Equal, token.Plus, token.Minus, token.Star, token.Slash,
		token.Percent, token.Less, token.Greater, token.Bang, token.EOF,
	}, kinds(tokens))
}

func TestKeywordsAndBooleans(t *testing.T) {
	tokens, err := New("test.kong", "if else while in void struct fn let mut const true false").Tokenize()
	require.NoError(t, err)

	assert.Equal(t, []token.Kind{
		token.KwIf, token.KwElse, token.KwWhile, token.KwIn, token.KwVoid,
		token.KwStruct, token.KwFn, token.KwLet, token.KwMut, token.KwConst,
		token.Boolean, token.Boolean, token.EOF,
	}, kinds(tokens))
	assert.Equal(t, "true", tokens[10].Lexeme)
	assert.Equal(t, "false", tokens[11].Lexeme)
}

func TestNumbers(t *testing.T) {
	tokens, err := New("test.kong", "1 2.5 0.125").Tokenize()
	require.NoError(t, err)

	require.Len(t, tokens, 4)
	assert.Equal(t, 1.0, tokens[0].Number)
	assert.Equal(t, 2.5, tokens[1].Number)
	assert.Equal(t, 0.125, tokens[2].Number)
}

func TestNumberDotMember(t *testing.T) {
	// "v.x" style access right after a digit must not swallow the dot.
	tokens, err := New("test.kong", "1.x").Tokenize()
	require.NoError(t, err)

	assert.Equal(t, []token.Kind{
		token.Number, token.Dot, token.Identifier, token.EOF,
	}, kinds(tokens))
}

func TestAttributeCapture(t *testing.T) {
	tokens, err := New("test.kong", "#[vertex]\nfn vs() {}").Tokenize()
	require.NoError(t, err)

	require.Equal(t, token.Attribute, tokens[0].Kind)
	assert.Equal(t, "vertex", tokens[0].Lexeme)
}

func TestAttributeWithArgs(t *testing.T) {
	tokens, err := New("test.kong", "#[threads(64, 1, 1)]").Tokenize()
	require.NoError(t, err)

	require.Equal(t, token.Attribute, tokens[0].Kind)
	assert.Equal(t, "threads(64, 1, 1)", tokens[0].Lexeme)
}

func TestStringLiteral(t *testing.T) {
	tokens, err := New("test.kong", `"hello"`).Tokenize()
	require.NoError(t, err)

	require.Equal(t, token.String, tokens[0].Kind)
	assert.Equal(t, "hello", tokens[0].Lexeme)
}

func TestComments(t *testing.T) {
	tokens, err := New("test.kong", "let // comment\n/* block /* nested */ */ x").Tokenize()
	require.NoError(t, err)

	assert.Equal(t, []token.Kind{token.KwLet, token.Identifier, token.EOF}, kinds(tokens))
}

func TestUnterminatedString(t *testing.T) {
	_, err := New("test.kong", `"oops`).Tokenize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated string")
}

func TestUnterminatedBlockComment(t *testing.T) {
	_, err := New("test.kong", "/* oops").Tokenize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated block comment")
}

func TestUnexpectedCharacter(t *testing.T) {
	_, err := New("test.kong", "let x = $;").Tokenize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test.kong:1:9")
}

func TestPositions(t *testing.T) {
	tokens, err := New("test.kong", "let\n  x").Tokenize()
	require.NoError(t, err)

	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 1, tokens[0].Column)
	assert.Equal(t, 2, tokens[1].Line)
	assert.Equal(t, 3, tokens[1].Column)
}
