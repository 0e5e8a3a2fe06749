package lexer

import (
	"testing"

	"github.com/ruchy-lang/ruchy/internal/compiler/token"
)

func lexAll(t *testing.T, input string) []token.Token {
	t.Helper()
	l := New(input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

func assertTypes(t *testing.T, input string, want []token.TokenType) {
	t.Helper()
	toks := lexAll(t, input)
	if len(toks) != len(want) {
		t.Fatalf("input %q: got %d tokens, want %d: %+v", input, len(toks), len(want), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("input %q: token %d = %v, want %v", input, i, toks[i].Type, tt)
		}
	}
}

func TestDelimitersAndBrackets(t *testing.T) {
	assertTypes(t, "(){}[],;:", []token.TokenType{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.LBRACKET, token.RBRACKET, token.COMMA, token.SEMICOLON, token.COLON, token.EOF,
	})
}

func TestMultiCharOperators(t *testing.T) {
	tests := []struct {
		input string
		want  token.TokenType
	}{
		{"==", token.EQ}, {"!=", token.NOT_EQ}, {"<=", token.LT_EQ}, {">=", token.GT_EQ},
		{"&&", token.AND}, {"||", token.OR}, {"??", token.QUESTION_QUESTION},
		{"..", token.DOTDOT}, {"..=", token.DOTDOTEQ}, {"|>", token.PIPE_ARROW},
		{"->", token.ARROW}, {"=>", token.FAT_ARROW}, {"::", token.COLONCOLON},
		{"++", token.INCR}, {"--", token.DECR}, {"**", token.POW},
		{"<<", token.SHL}, {">>", token.SHR},
		{"+=", token.PLUS_ASSIGN}, {"-=", token.MINUS_ASSIGN}, {"*=", token.STAR_ASSIGN},
		{"/=", token.SLASH_ASSIGN}, {"%=", token.PERCENT_ASSIGN},
	}
	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != tt.want {
			t.Errorf("NextToken(%q) = %v, want %v", tt.input, tok.Type, tt.want)
		}
		if tok.Literal != tt.input {
			t.Errorf("NextToken(%q).Literal = %q, want %q", tt.input, tok.Literal, tt.input)
		}
	}
}

func TestSingleCharOperatorsDontGreedilyMatch(t *testing.T) {
	assertTypes(t, "+ - * / % < > = ! & | ^ ~ ?", []token.TokenType{
		token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.PERCENT,
		token.LT, token.GT, token.ASSIGN, token.BANG, token.AMP, token.PIPE,
		token.CARET, token.TILDE, token.QUESTION, token.EOF,
	})
}

func TestKeywords(t *testing.T) {
	assertTypes(t, "let mut const fun fn true false nil if else match for in while loop break continue return import from as struct enum trait impl type async await actor spawn try catch finally throw", []token.TokenType{
		token.LET, token.MUT, token.CONST, token.FUN, token.FN, token.TRUE, token.FALSE,
		token.NIL, token.IF, token.ELSE, token.MATCH, token.FOR, token.IN, token.WHILE,
		token.LOOP, token.BREAK, token.CONTINUE, token.RETURN, token.IMPORT, token.FROM,
		token.AS, token.STRUCT, token.ENUM, token.TRAIT, token.IMPL, token.TYPE,
		token.ASYNC, token.AWAIT, token.ACTOR, token.SPAWN, token.TRY, token.CATCH,
		token.FINALLY, token.THROW, token.EOF,
	})
}

func TestIdentifiersAllowUnderscoresAndDigits(t *testing.T) {
	toks := lexAll(t, "user_id total2 _private")
	want := []string{"user_id", "total2", "_private"}
	for i, w := range want {
		if toks[i].Type != token.IDENT || toks[i].Literal != w {
			t.Errorf("token %d = %+v, want IDENT %q", i, toks[i], w)
		}
	}
}

func TestIntegerLiteralPlain(t *testing.T) {
	tok := New("42").NextToken()
	if tok.Type != token.INT || tok.Literal != "42" || tok.Suffix != "" {
		t.Errorf("got %+v, want INT 42 with no suffix", tok)
	}
}

func TestIntegerLiteralWithSuffix(t *testing.T) {
	tok := New("5i32").NextToken()
	if tok.Type != token.INT || tok.Literal != "5" || tok.Suffix != "i32" {
		t.Errorf("got %+v, want INT 5 suffix i32", tok)
	}
}

func TestIntegerLiteralWithDigitSeparators(t *testing.T) {
	tok := New("1_000_000").NextToken()
	if tok.Type != token.INT || tok.Literal != "1000000" {
		t.Errorf("got %+v, want INT 1000000 with separators stripped", tok)
	}
}

func TestInvalidIntegerSuffixRecordsLexError(t *testing.T) {
	l := New("5bogus")
	l.NextToken()
	if len(l.Errors) != 1 || l.Errors[0].Kind != "invalid numeric literal" {
		t.Errorf("expected 1 'invalid numeric literal' error, got %+v", l.Errors)
	}
}

func TestFloatLiteral(t *testing.T) {
	tok := New("3.14").NextToken()
	if tok.Type != token.FLOAT || tok.Literal != "3.14" {
		t.Errorf("got %+v, want FLOAT 3.14", tok)
	}
}

func TestFloatLiteralWithExponent(t *testing.T) {
	tests := []string{"1e10", "1E10", "1.5e+3", "1.5e-3"}
	for _, in := range tests {
		tok := New(in).NextToken()
		if tok.Type != token.FLOAT || tok.Literal != in {
			t.Errorf("NextToken(%q) = %+v, want FLOAT %q", in, tok, in)
		}
	}
}

func TestDotDotIsNotMisreadAsFloat(t *testing.T) {
	// "1..10" must lex as INT(1) DOTDOT INT(10), not a malformed float.
	assertTypes(t, "1..10", []token.TokenType{token.INT, token.DOTDOT, token.INT, token.EOF})
}

func TestInclusiveRangeOperator(t *testing.T) {
	assertTypes(t, "0..=5", []token.TokenType{token.INT, token.DOTDOTEQ, token.INT, token.EOF})
}

func TestStringLiteralDecodesNothingAtLexTime(t *testing.T) {
	tok := New(`"hello\nworld"`).NextToken()
	if tok.Type != token.STRING || tok.Literal != `hello\nworld` {
		t.Errorf("got %+v, want STRING with escapes preserved verbatim", tok)
	}
}

func TestUnterminatedStringRecordsLexError(t *testing.T) {
	l := New(`"unterminated`)
	l.NextToken()
	if len(l.Errors) != 1 || l.Errors[0].Kind != "unterminated string" {
		t.Errorf("expected 1 'unterminated string' error, got %+v", l.Errors)
	}
}

func TestFStringLiteral(t *testing.T) {
	tok := New(`f"hi {name}"`).NextToken()
	if tok.Type != token.FSTRING || tok.Literal != `hi {name}` {
		t.Errorf("got %+v, want FSTRING with braces preserved for the parser", tok)
	}
}

func TestCharLiteral(t *testing.T) {
	tok := New(`'a'`).NextToken()
	if tok.Type != token.CHAR || tok.Literal != "a" {
		t.Errorf("got %+v, want CHAR 'a'", tok)
	}
}

func TestByteLiteral(t *testing.T) {
	tok := New(`b'x'`).NextToken()
	if tok.Type != token.BYTE || tok.Literal != "x" {
		t.Errorf("got %+v, want BYTE 'x'", tok)
	}
}

func TestLineCommentIsSkipped(t *testing.T) {
	assertTypes(t, "1 // a comment\n2", []token.TokenType{token.INT, token.INT, token.EOF})
}

func TestBlockCommentIsSkipped(t *testing.T) {
	assertTypes(t, "1 /* multi\nline */ 2", []token.TokenType{token.INT, token.INT, token.EOF})
}

func TestIllegalCharacterRecordsLexError(t *testing.T) {
	l := New("#")
	tok := l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Errorf("got %v, want ILLEGAL", tok.Type)
	}
	if len(l.Errors) != 1 || l.Errors[0].Kind != "invalid character" {
		t.Errorf("expected 1 'invalid character' error, got %+v", l.Errors)
	}
}

func TestEOFIsStickyAfterEndOfInput(t *testing.T) {
	l := New("")
	first := l.NextToken()
	second := l.NextToken()
	if first.Type != token.EOF || second.Type != token.EOF {
		t.Errorf("expected repeated EOF, got %v then %v", first.Type, second.Type)
	}
}

func TestPositionTracksLineAndColumn(t *testing.T) {
	l := New("a\nb")
	first := l.NextToken()
	if first.Pos.Line != 1 {
		t.Errorf("first token line = %d, want 1", first.Pos.Line)
	}
	second := l.NextToken()
	if second.Pos.Line != 2 {
		t.Errorf("second token line = %d, want 2", second.Pos.Line)
	}
}

func TestFunctionSignatureTokenizesEndToEnd(t *testing.T) {
	assertTypes(t, "fun add(a: int, b: int) -> int {", []token.TokenType{
		token.FUN, token.IDENT, token.LPAREN, token.IDENT, token.COLON, token.IDENT,
		token.COMMA, token.IDENT, token.COLON, token.IDENT, token.RPAREN, token.ARROW,
		token.IDENT, token.LBRACE, token.EOF,
	})
}
