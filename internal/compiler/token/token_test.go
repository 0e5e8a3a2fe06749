package token

import "testing"

func TestLookupIdentKeywords(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		{"let", LET},
		{"mut", MUT},
		{"const", CONST},
		{"fun", FUN},
		{"fn", FN},
		{"true", TRUE},
		{"false", FALSE},
		{"nil", NIL},
		{"if", IF},
		{"else", ELSE},
		{"match", MATCH},
		{"for", FOR},
		{"in", IN},
		{"while", WHILE},
		{"loop", LOOP},
		{"break", BREAK},
		{"continue", CONTINUE},
		{"return", RETURN},
		{"import", IMPORT},
		{"from", FROM},
		{"as", AS},
		{"struct", STRUCT},
		{"enum", ENUM},
		{"trait", TRAIT},
		{"impl", IMPL},
		{"type", TYPE},
		{"async", ASYNC},
		{"await", AWAIT},
		{"actor", ACTOR},
		{"spawn", SPAWN},
		{"try", TRY},
		{"catch", CATCH},
		{"finally", FINALLY},
		{"throw", THROW},
	}

	for _, tt := range tests {
		if got := LookupIdent(tt.input); got != tt.expected {
			t.Errorf("LookupIdent(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestLookupIdentNonKeywordsFallBackToIdent(t *testing.T) {
	tests := []string{"variable", "Task", "userId", "foo_bar", "", "unknown"}
	for _, input := range tests {
		if got := LookupIdent(input); got != IDENT {
			t.Errorf("LookupIdent(%q) = %v, want IDENT", input, got)
		}
	}
}

func TestIsKeywordTrueForEveryKeywordToken(t *testing.T) {
	keywordTokens := []TokenType{
		LET, MUT, CONST, FUN, FN, TRUE, FALSE, NIL, IF, ELSE, MATCH, FOR, IN,
		WHILE, LOOP, BREAK, CONTINUE, RETURN, IMPORT, FROM, AS, STRUCT, ENUM,
		TRAIT, IMPL, TYPE, ASYNC, AWAIT, ACTOR, SPAWN, TRY, CATCH, FINALLY, THROW,
	}
	for _, tt := range keywordTokens {
		if !IsKeyword(tt) {
			t.Errorf("IsKeyword(%v) = false, want true", tt)
		}
	}
}

func TestIsKeywordFalseForOperatorsAndIdent(t *testing.T) {
	nonKeywords := []TokenType{IDENT, INT, STRING, PLUS, MINUS, ARROW, FAT_ARROW, EOF, ILLEGAL}
	for _, tt := range nonKeywords {
		if IsKeyword(tt) {
			t.Errorf("IsKeyword(%v) = true, want false", tt)
		}
	}
}

func TestIntSuffixesCoversSignedUnsignedAndSize(t *testing.T) {
	want := []string{"i8", "i16", "i32", "i64", "i128", "u8", "u16", "u32", "u64", "u128", "isize", "usize"}
	for _, s := range want {
		if !IntSuffixes[s] {
			t.Errorf("IntSuffixes[%q] = false, want true", s)
		}
	}
	if IntSuffixes["f32"] {
		t.Error("IntSuffixes[\"f32\"] should be false: float suffixes are not integer suffixes")
	}
}

func TestPositionStringFormatsLineColon(t *testing.T) {
	p := Position{Line: 3, Column: 10, Offset: 42}
	if got, want := p.String(), "3:10"; got != want {
		t.Errorf("Position.String() = %q, want %q", got, want)
	}
}

func TestTokenCarriesSuffixSeparatelyFromLiteral(t *testing.T) {
	tok := Token{Type: INT, Literal: "5i32", Suffix: "i32", Pos: Position{Line: 1, Column: 1}}
	if tok.Literal != "5i32" {
		t.Errorf("Literal = %q, want %q", tok.Literal, "5i32")
	}
	if tok.Suffix != "i32" {
		t.Errorf("Suffix = %q, want %q", tok.Suffix, "i32")
	}
}

func TestOperatorTokenTypesMatchTheirLexeme(t *testing.T) {
	tests := map[TokenType]string{
		PLUS:              "+",
		POW:               "**",
		SHL:                "<<",
		QUESTION_QUESTION: "??",
		DOTDOTEQ:          "..=",
		PIPE_ARROW:        "|>",
		FAT_ARROW:         "=>",
	}
	for tt, lexeme := range tests {
		if string(tt) != lexeme {
			t.Errorf("TokenType %v = %q, want %q", tt, string(tt), lexeme)
		}
	}
}
