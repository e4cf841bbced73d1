// Package lexer implements the lexical analyzer for the C-like scripting
// language compiled by this module.
//
// The lexer is responsible for breaking down the source code into tokens,
// which are the smallest units of meaning in the language. It reads the
// input character by character and produces a stream of tokens that can be
// processed by the parser.
//
// Key features:
//   - Tokenization of all language elements (keywords, identifiers, literals, operators, etc.)
//   - Handling of whitespace and line/block comments
//   - Error detection for illegal characters and unterminated strings
//   - Maximal-munch handling of multi-character operators (===, >>>, <<=, etc.)
//
// The main entry point is the New function, which creates a new Lexer
// instance, and the NextToken method, which returns the next token from the
// input.
package lexer

import (
	"strings"

	"github.com/clscript/clscript/token"
)

// Lexer converts source text for the C-like scripting language into a
// stream of tokens.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
}

// New creates a new Lexer for the given input string.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character from the input and advances position.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

// peekChar returns the next character without advancing the position.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// peekChar2 returns the character two positions ahead without advancing.
func (l *Lexer) peekChar2() byte {
	if l.readPosition+1 >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition+1]
}

// NextToken reads and returns the next token from the input.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	var tok token.Token

	switch l.ch {
	case '=':
		tok = l.lexEquals()
	case '+':
		tok = l.lexOneOrTwo('+', token.Inc, token.PlusAssign, token.Plus)
	case '-':
		tok = l.lexOneOrTwo('-', token.Dec, token.MinusAssign, token.Minus)
	case '*':
		if l.peekChar() == '*' {
			l.readChar()
			l.readChar()
			tok = token.Token{Type: token.Pow, Literal: "**"}
		} else {
			tok = l.lexMaybeAssign(token.StarAssign, token.Star)
		}
	case '/':
		tok = l.lexMaybeAssign(token.SlashAssign, token.Slash)
	case '%':
		tok = l.lexMaybeAssign(token.PercentAssign, token.Percent)
	case '!':
		tok = l.lexBang()
	case '<':
		tok = l.lexShift('<', token.Shl, token.ShlAssign, token.Lte, token.Lt)
	case '>':
		tok = l.lexGreater()
	case '&':
		tok = l.lexOneOrTwo('&', token.And, token.AndAssign, token.BitAnd)
	case '|':
		tok = l.lexOneOrTwo('|', token.Or, token.OrAssign, token.BitOr)
	case '^':
		tok = l.lexMaybeAssign(token.XorAssign, token.Caret)
	case '~':
		l.readChar()
		tok = token.Token{Type: token.Tilde, Literal: "~"}
	case ';':
		l.readChar()
		tok = token.Token{Type: token.Semicolon, Literal: ";"}
	case ':':
		l.readChar()
		tok = token.Token{Type: token.Colon, Literal: ":"}
	case ',':
		l.readChar()
		tok = token.Token{Type: token.Comma, Literal: ","}
	case '.':
		l.readChar()
		tok = token.Token{Type: token.Dot, Literal: "."}
	case '?':
		l.readChar()
		tok = token.Token{Type: token.Question, Literal: "?"}
	case '(':
		l.readChar()
		tok = token.Token{Type: token.Lparen, Literal: "("}
	case ')':
		l.readChar()
		tok = token.Token{Type: token.Rparen, Literal: ")"}
	case '{':
		l.readChar()
		tok = token.Token{Type: token.Lbrace, Literal: "{"}
	case '}':
		l.readChar()
		tok = token.Token{Type: token.Rbrace, Literal: "}"}
	case '[':
		l.readChar()
		tok = token.Token{Type: token.Lbracket, Literal: "["}
	case ']':
		l.readChar()
		tok = token.Token{Type: token.Rbracket, Literal: "]"}
	case '"':
		lit, ok := l.readString()
		if !ok {
			return token.Token{Type: token.Illegal, Literal: "unterminated string"}
		}
		tok = token.Token{Type: token.String, Literal: lit}
		l.readChar()
	case 0:
		tok = token.Token{Type: token.EOF, Literal: ""}
	default:
		if isLetter(l.ch) {
			literal := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(literal), Literal: literal}
		}
		if isDigit(l.ch) {
			return token.Token{Type: token.Number, Literal: l.readNumber()}
		}
		tok = token.Token{Type: token.Illegal, Literal: string(l.ch)}
		l.readChar()
	}

	return tok
}

// lexEquals disambiguates '=', '==' and '==='.
func (l *Lexer) lexEquals() token.Token {
	if l.peekChar() == '=' {
		if l.peekChar2() == '=' {
			l.readChar()
			l.readChar()
			l.readChar()
			return token.Token{Type: token.StrictEq, Literal: "==="}
		}
		l.readChar()
		l.readChar()
		return token.Token{Type: token.Eq, Literal: "=="}
	}
	l.readChar()
	return token.Token{Type: token.Assign, Literal: "="}
}

// lexBang disambiguates '!', '!=' and '!=='.
func (l *Lexer) lexBang() token.Token {
	if l.peekChar() == '=' {
		if l.peekChar2() == '=' {
			l.readChar()
			l.readChar()
			l.readChar()
			return token.Token{Type: token.StrictNotEq, Literal: "!=="}
		}
		l.readChar()
		l.readChar()
		return token.Token{Type: token.NotEq, Literal: "!="}
	}
	l.readChar()
	return token.Token{Type: token.Bang, Literal: "!"}
}

// lexOneOrTwo disambiguates a single character, its doubled form, and its
// doubled-form's compound-assignment form, e.g. '+', '++', '+='.
func (l *Lexer) lexOneOrTwo(doubled byte, doubledType, assignType, singleType token.Type) token.Token {
	ch := l.ch
	if l.peekChar() == doubled {
		l.readChar()
		l.readChar()
		return token.Token{Type: doubledType, Literal: string(ch) + string(ch)}
	}
	return l.lexMaybeAssign(assignType, singleType)
}

// lexMaybeAssign disambiguates a single-character operator from its
// compound-assignment form, e.g. '*' vs '*='.
func (l *Lexer) lexMaybeAssign(assignType, plainType token.Type) token.Token {
	ch := l.ch
	if l.peekChar() == '=' {
		l.readChar()
		l.readChar()
		return token.Token{Type: assignType, Literal: string(ch) + "="}
	}
	l.readChar()
	return token.Token{Type: plainType, Literal: string(ch)}
}

// lexShift handles '<', '<=', '<<' and '<<=' (parameterized so '>' can reuse
// the same shape for its own right-shift family).
func (l *Lexer) lexShift(ch byte, doubledType, doubledAssignType, eqType, plainType token.Type) token.Token {
	if l.peekChar() == ch {
		if l.peekChar2() == '=' {
			l.readChar()
			l.readChar()
			l.readChar()
			return token.Token{Type: doubledAssignType, Literal: string(ch) + string(ch) + "="}
		}
		l.readChar()
		l.readChar()
		return token.Token{Type: doubledType, Literal: string(ch) + string(ch)}
	}
	return l.lexMaybeAssign(eqType, plainType)
}

// lexGreater handles '>', '>=', '>>', '>>=', '>>>' and '>>>='.
func (l *Lexer) lexGreater() token.Token {
	if l.peekChar() == '>' {
		if l.peekChar2() == '>' {
			l.readChar()
			l.readChar()
			l.readChar()
			if l.ch == '=' {
				l.readChar()
				return token.Token{Type: token.UShrAssign, Literal: ">>>="}
			}
			return token.Token{Type: token.UShr, Literal: ">>>"}
		}
		l.readChar()
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return token.Token{Type: token.ShrAssign, Literal: ">>="}
		}
		return token.Token{Type: token.Shr, Literal: ">>"}
	}
	return l.lexMaybeAssign(token.Gte, token.Gt)
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch == '$'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// readNumber reads an integer or floating-point literal.
func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		save := l.position
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		if isDigit(l.ch) {
			for isDigit(l.ch) {
				l.readChar()
			}
		} else {
			// not a valid exponent after all; rewind is unnecessary since
			// the lexer only moves forward, so just stop consuming here.
			_ = save
		}
	}
	return l.input[position:l.position]
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// skipWhitespace skips whitespace, line comments ("//") and block comments ("/* */").
func (l *Lexer) skipWhitespace() {
	for {
		if l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
			continue
		}
		if l.ch == '/' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		if l.ch == '/' && l.peekChar() == '*' {
			l.readChar()
			l.readChar()
			for !(l.ch == '*' && l.peekChar() == '/') && l.ch != 0 {
				l.readChar()
			}
			if l.ch != 0 {
				l.readChar()
				l.readChar()
			}
			continue
		}
		break
	}
}

// readString reads a double-quoted string literal and returns its unescaped
// content plus whether it was properly terminated.
func (l *Lexer) readString() (string, bool) {
	var b strings.Builder

	l.readChar()

	for {
		if l.ch == '"' {
			return b.String(), true
		}
		if l.ch == 0 {
			return b.String(), false
		}
		if l.ch == '\\' {
			l.readChar()
			if l.ch == 0 {
				return b.String(), false
			}
			switch l.ch {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte('\\')
				b.WriteByte(l.ch)
			}
		} else {
			b.WriteByte(l.ch)
		}
		l.readChar()
	}
}
