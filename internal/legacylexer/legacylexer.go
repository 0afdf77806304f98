// Package legacylexer is the compatibility front end for the lexer module:
// it wraps github.com/shapestone/shape-core/pkg/tokenizer the way the
// teacher's internal/tokenizer + internal/parser once did, but stops short
// of building an AST — it emits the legacy triple token stream
// (internal/token.Legacy), which All converts with token.FromLegacy into
// the unified token.Field stream that internal/assembler consumes and that
// the primary internal/lexer emits directly.
//
// It is limited to a single-character quotation mark, because shape-core's
// tokenizer has a built-in DQuote terminal rather than a configurable
// quotation pattern. internal/lexer has no such limitation; this front end
// exists for callers who want the teacher's original token-stream shape and
// character-level tokenizer rather than the byte-oriented DFA.
package legacylexer

import (
	"fmt"
	"io"
	"strings"

	shapetokenizer "github.com/shapestone/shape-core/pkg/tokenizer"

	"github.com/shapestone/csv-engine/internal/csverr"
	"github.com/shapestone/csv-engine/internal/token"
	shapecsvtokenizer "github.com/shapestone/csv-engine/internal/tokenizer"
)

// Options configures a Lexer. Comma is the only configurable delimiter;
// quotation is always a single '"', matching shape-core's DQuote terminal.
type Options struct {
	Delimiter     rune
	TrackLocation bool
	Source        string
}

// DefaultOptions returns the legacy front end's default configuration.
func DefaultOptions() Options {
	return Options{Delimiter: ','}
}

// Validate rejects delimiters the underlying tokenizer cannot express.
func (o Options) Validate() error {
	if o.Delimiter == '"' {
		return csverr.New(csverr.InvalidOption, "delimiter must not be the quotation character")
	}
	if o.Delimiter == '\r' || o.Delimiter == '\n' {
		return csverr.New(csverr.InvalidOption, "delimiter must not be CR or LF")
	}
	return nil
}

// Lexer pulls legacy triple tokens from a shape-core character stream. Unlike
// internal/lexer's push-based Feed/Flush, this front end is pull-based,
// mirroring the teacher's own Parser.advance/peek loop over a
// shapetokenizer.Tokenizer, since shape-core's Stream is itself pull-based
// over the whole input.
type Lexer struct {
	tok       shapetokenizer.Tokenizer
	current   *shapetokenizer.Token
	hasToken  bool
	opts      Options
	rowNumber int

	// needField is true when the next call to Next must produce a Field
	// token (possibly empty) rather than a separator: true at the start of
	// input and immediately after every separator, matching the teacher's
	// parseRecord grammar (Record = Field { "," Field } LineTerminator).
	needField bool

	// pendingEmpty mirrors internal/lexer's field of the same name: true
	// immediately after a FieldDelimiter, since that guarantees a (possibly
	// empty) field follows even at EOF; a RecordDelimiter or the start of
	// input clears it, so a bare trailing newline does not invent an empty
	// final record.
	pendingEmpty bool
}

// New creates a Lexer over the entire contents of r, read eagerly into a
// shape-core stream the way the teacher's NewParserFromStream does for
// io.Reader input (shape-core's Stream interface has no incremental feed of
// its own, so true chunk-at-a-time streaming is internal/lexer's job).
func New(r io.Reader, opts Options) (*Lexer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, csverr.Wrap(csverr.DecodeError, "reading input for legacy lexer", err).WithSource(opts.Source)
	}
	return NewFromString(string(data), opts), nil
}

// NewFromString creates a Lexer over an in-memory string.
func NewFromString(s string, opts Options) *Lexer {
	stream := shapetokenizer.NewStream(s)
	tokOpts := shapecsvtokenizer.Options{Comma: opts.Delimiter}
	tok := shapecsvtokenizer.NewTokenizerWithStreamAndOptions(stream, tokOpts)
	l := &Lexer{tok: tok, opts: opts, rowNumber: 1, needField: true}
	l.advance()
	return l
}

func (l *Lexer) advance() {
	tok, ok := l.tok.NextToken()
	l.current = tok
	l.hasToken = ok
}

func (l *Lexer) peekKind() string {
	if !l.hasToken || l.current == nil {
		return shapecsvtokenizer.TokenEOF
	}
	return l.current.Kind()
}

func (l *Lexer) position() (line, column, offset int) {
	if l.hasToken && l.current != nil {
		return l.current.Row(), l.current.Column(), l.current.Offset()
	}
	return 0, 0, 0
}

// Next returns the next legacy token, or io.EOF once the stream is exhausted.
// It always emits exactly one Field token (possibly empty) before the
// FieldDelimiter or RecordDelimiter that follows it, and stops without a
// trailing separator when the input ends mid-field.
func (l *Lexer) Next() (token.Legacy, error) {
	if l.needField {
		return l.readField()
	}
	switch l.peekKind() {
	case shapecsvtokenizer.TokenEOF:
		return token.Legacy{}, io.EOF
	case shapecsvtokenizer.TokenNewline:
		value := l.current.ValueString()
		loc := l.closeLocation()
		l.advance()
		l.rowNumber++
		l.needField = true
		l.pendingEmpty = false
		return token.Legacy{Kind: token.KindRecordDelimiter, Value: value, Location: loc}, nil
	case shapecsvtokenizer.TokenComma:
		loc := l.closeLocation()
		l.advance()
		l.needField = true
		l.pendingEmpty = true
		return token.Legacy{Kind: token.KindFieldDelimiter, Value: string(l.opts.Delimiter), Location: loc}, nil
	default:
		return token.Legacy{}, csverr.New(csverr.InvalidOption, fmt.Sprintf("unexpected token kind %q after field", l.peekKind())).WithSource(l.opts.Source)
	}
}

// readField reads one field (quoted or unquoted, possibly empty) without
// consuming the separator that follows it, mirroring the teacher's
// parseField/parseUnquotedField.
func (l *Lexer) readField() (token.Legacy, error) {
	l.needField = false
	switch l.peekKind() {
	case shapecsvtokenizer.TokenDQuote:
		return l.readQuotedField()
	case shapecsvtokenizer.TokenField:
		value := l.current.ValueString()
		loc := l.closeLocation()
		l.advance()
		return token.Legacy{Kind: token.KindField, Value: value, Location: loc}, nil
	case shapecsvtokenizer.TokenEOF:
		if !l.pendingEmpty {
			// Genuinely nothing left: no trailing empty field to invent.
			return token.Legacy{}, io.EOF
		}
		return token.Legacy{Kind: token.KindField, Value: ""}, nil
	case shapecsvtokenizer.TokenComma, shapecsvtokenizer.TokenNewline:
		// Empty field between two delimiters, or a delimiter immediately
		// followed by a record terminator.
		loc := l.closeLocation()
		return token.Legacy{Kind: token.KindField, Value: "", Location: loc}, nil
	default:
		return token.Legacy{}, csverr.New(csverr.InvalidOption, fmt.Sprintf("unexpected token kind %q", l.peekKind())).WithSource(l.opts.Source)
	}
}

// readQuotedField mirrors the teacher's Parser.parseQuotedField, but
// produces a single Field legacy token instead of an ast.LiteralNode.
func (l *Lexer) readQuotedField() (token.Legacy, error) {
	startLine, startColumn, startOffset := l.position()
	l.advance() // consume opening quote

	var value strings.Builder
	for {
		switch l.peekKind() {
		case shapecsvtokenizer.TokenEOF:
			return token.Legacy{}, csverr.New(csverr.UnexpectedEOF, "unclosed quoted field").
				WithSource(l.opts.Source).WithPosition(l.rowNumber, startLine, startColumn, startOffset)
		case shapecsvtokenizer.TokenDQuote:
			l.advance()
			if l.peekKind() == shapecsvtokenizer.TokenDQuote {
				value.WriteByte('"')
				l.advance()
				continue
			}
			endLine, endColumn, endOffset := l.position()
			var loc *token.Location
			if l.opts.TrackLocation {
				loc = &token.Location{
					Start:     token.Position{Line: startLine, Column: startColumn, Offset: startOffset},
					End:       token.Position{Line: endLine, Column: endColumn, Offset: endOffset},
					RowNumber: l.rowNumber,
				}
			}
			return token.Legacy{Kind: token.KindField, Value: value.String(), Location: loc}, nil
		case shapecsvtokenizer.TokenField:
			value.WriteString(l.current.ValueString())
			l.advance()
		case shapecsvtokenizer.TokenComma:
			value.WriteRune(l.opts.Delimiter)
			l.advance()
		case shapecsvtokenizer.TokenNewline:
			value.WriteString(l.current.ValueString())
			l.advance()
		default:
			return token.Legacy{}, csverr.New(csverr.InvalidOption, fmt.Sprintf("unexpected token kind %q in quoted field", l.peekKind())).
				WithSource(l.opts.Source)
		}
	}
}

func (l *Lexer) closeLocation() *token.Location {
	if !l.opts.TrackLocation || !l.hasToken || l.current == nil {
		return nil
	}
	line, column, offset := l.position()
	end := token.Position{Line: line, Column: column, Offset: offset + len(l.current.ValueString())}
	return &token.Location{
		Start:     token.Position{Line: line, Column: column, Offset: offset},
		End:       end,
		RowNumber: l.rowNumber,
	}
}

// All drains the Lexer into a unified token.Field slice via token.FromLegacy,
// the bridge into internal/assembler.
func All(l *Lexer) ([]token.Field, error) {
	var legacy []token.Legacy
	for {
		t, err := l.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		legacy = append(legacy, t)
	}
	return token.FromLegacy(legacy), nil
}
