// Package lexer implements the incremental, streaming CSV tokenizer of
// spec §4.1: a state machine that carries a bounded unconsumed-tail buffer
// across Feed calls so a quoted field, a CRLF, or a multi-byte delimiter may
// straddle chunk boundaries.
//
// The design is grounded on the teacher's internal/fastparser/dfa.go state
// table (the four state names and their transitions come straight from it)
// and internal/fastparser/chunked.go's cross-chunk inQuotes carry, but the
// transition table itself is expressed as control flow rather than a
// charClassTable: the teacher's table is keyed on a fixed single byte, while
// this lexer's delimiter and quotation are runtime-configured and may be
// more than one byte wide, which a 256-entry lookup table cannot express.
package lexer

import (
	"unicode/utf8"

	"github.com/shapestone/csv-engine/internal/csverr"
	"github.com/shapestone/csv-engine/internal/token"
)

// Lexer is single-shot: feed zero or more chunks, then Flush. Not safe for
// concurrent feeding.
type Lexer struct {
	opts Options

	buf   []byte // unconsumed tail carried across Feed calls
	field []byte // content accumulated for the field in progress

	state   state
	flushed bool

	// pendingEmpty is true immediately after emitting a field-separator
	// token: it guarantees a (possibly empty) field follows even if EOF
	// arrives before any further byte is scanned. A record-separator token
	// clears it, since nothing follows a trailing newline without more input.
	pendingEmpty bool

	// position bookkeeping, independent of buf (which is periodically
	// truncated as bytes are consumed)
	offset      int
	line        int
	column      int
	rowNumber   int
	fieldStart  token.Position
	haveStart   bool
}

// New creates a Lexer. Panics are never raised; invalid options are reported
// by Validate, which callers should invoke before New (mirroring the
// teacher's ReaderOptions.Validate pattern).
func New(opts Options) *Lexer {
	return &Lexer{
		opts:      opts,
		state:     stateFieldStart,
		line:      1,
		column:    1,
		rowNumber: 1,
	}
}

// Feed appends chunk to the lexer's buffer and returns every token that can
// be unambiguously emitted. When stream is true, a suffix whose
// interpretation is ambiguous (a lone trailing CR, a partial multi-byte
// delimiter/quotation match, an unclosed quoted region) is withheld until a
// later Feed or Flush call. When stream is false, Feed behaves like Flush
// after consuming chunk.
func (l *Lexer) Feed(chunk []byte, stream bool) ([]token.Field, error) {
	if err := l.checkCancelled(); err != nil {
		return nil, err
	}
	if l.flushed {
		return nil, csverr.New(csverr.InvalidOption, "lexer already flushed")
	}
	if len(chunk) > 0 {
		if l.opts.MaxBufferSize != Unbounded && len(l.buf)+len(chunk) > l.opts.MaxBufferSize {
			return nil, csverr.New(csverr.BufferExceeded, "lexer buffer would exceed maxBufferSize").WithSource(l.opts.Source)
		}
		l.buf = append(l.buf, chunk...)
	}
	tokens, err := l.scan(stream)
	if err != nil {
		return tokens, err
	}
	if !stream {
		final, err := l.finish()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, final...)
	}
	return tokens, nil
}

// Flush signals end of input with no further chunk, equivalent to
// Feed(nil, false).
func (l *Lexer) Flush() ([]token.Field, error) {
	return l.Feed(nil, false)
}

func (l *Lexer) checkCancelled() error {
	if l.opts.Signal == nil {
		return nil
	}
	select {
	case <-l.opts.Signal.Done():
		return csverr.Wrap(csverr.Cancelled, "lexer cancelled", l.opts.Signal.Err()).WithSource(l.opts.Source)
	default:
		return nil
	}
}

// finish resolves what is left at end of input: an in-progress (or
// structurally required empty) field becomes the final token, and an
// unclosed quoted region is fatal. A lone trailing CR has already been
// taken as a record separator by the non-streaming scan that runs first.
func (l *Lexer) finish() ([]token.Field, error) {
	l.flushed = true
	if l.state == stateInQuoted {
		return nil, csverr.New(csverr.UnexpectedEOF, "flush while inside a quoted region").
			WithSource(l.opts.Source).WithPosition(l.rowNumber, l.line, l.column, l.offset)
	}
	// Nothing pending at all: no trailing empty field to emit.
	if len(l.buf) == 0 && len(l.field) == 0 && l.state == stateFieldStart && !l.haveStart && !l.pendingEmpty {
		return nil, nil
	}
	l.markFieldStart()
	tok := token.Field{
		Value:    string(l.field),
		Follows:  token.FollowsRecordSep,
		SepLen:   0,
		Location: l.closeLocation(),
	}
	l.field = nil
	return []token.Field{tok}, nil
}

// scan advances through l.buf as far as it unambiguously can, returning
// emitted tokens and leaving any undecided suffix in l.buf for the next call.
func (l *Lexer) scan(stream bool) ([]token.Field, error) {
	var out []token.Field
	cursor := 0
	delim := []byte(l.opts.Delimiter)
	quote := []byte(l.opts.Quotation)

	for cursor < len(l.buf) {
		l.markFieldStart()

		switch l.state {
		case stateFieldStart, stateInField:
			if full, wait := matchPrefix(l.buf, cursor, delim, stream); wait {
				goto needMore
			} else if full {
				tok, err := l.emit(token.FollowsFieldSep, len(delim))
				if err != nil {
					return out, err
				}
				out = append(out, tok)
				cursor += len(delim)
				l.advancePos(delim)
				continue
			}
			if n, ok, wait := l.matchRecordSep(cursor, stream); wait {
				goto needMore
			} else if ok {
				tok, err := l.emit(token.FollowsRecordSep, n)
				if err != nil {
					return out, err
				}
				out = append(out, tok)
				cursor += n
				l.advanceNewline(n)
				continue
			}
			if l.state == stateFieldStart && len(l.field) == 0 {
				if full, wait := matchPrefix(l.buf, cursor, quote, stream); wait {
					goto needMore
				} else if full {
					cursor += len(quote)
					l.advancePos(quote)
					l.state = stateInQuoted
					continue
				}
			}
			size, wait := runeSizeAt(l.buf, cursor, stream)
			if wait {
				goto needMore
			}
			if err := l.appendRune(l.buf[cursor : cursor+size]); err != nil {
				return out, err
			}
			l.advanceContent(l.buf[cursor : cursor+size])
			cursor += size
			l.state = stateInField

		case stateInQuoted:
			if full, wait := matchPrefix(l.buf, cursor, quote, stream); wait {
				goto needMore
			} else if full {
				cursor += len(quote)
				l.advancePos(quote)
				l.state = stateQuoteAfterQuoted
				continue
			}
			size, wait := runeSizeAt(l.buf, cursor, stream)
			if wait {
				goto needMore
			}
			if err := l.appendRune(l.buf[cursor : cursor+size]); err != nil {
				return out, err
			}
			l.advanceContent(l.buf[cursor : cursor+size])
			cursor += size

		case stateQuoteAfterQuoted:
			if full, wait := matchPrefix(l.buf, cursor, quote, stream); wait {
				goto needMore
			} else if full {
				if err := l.appendRune(quote); err != nil {
					return out, err
				}
				cursor += len(quote)
				l.advancePos(quote)
				l.state = stateInQuoted
				continue
			}
			if full, wait := matchPrefix(l.buf, cursor, delim, stream); wait {
				goto needMore
			} else if full {
				tok, err := l.emit(token.FollowsFieldSep, len(delim))
				if err != nil {
					return out, err
				}
				out = append(out, tok)
				cursor += len(delim)
				l.advancePos(delim)
				continue
			}
			if n, ok, wait := l.matchRecordSep(cursor, stream); wait {
				goto needMore
			} else if ok {
				tok, err := l.emit(token.FollowsRecordSep, n)
				if err != nil {
					return out, err
				}
				out = append(out, tok)
				cursor += n
				l.advanceNewline(n)
				continue
			}
			return out, csverr.New(csverr.StrayQuote, "invalid character after closing quote").
				WithSource(l.opts.Source).WithPosition(l.rowNumber, l.line, l.column, l.offset)
		}
	}
	l.buf = l.buf[:0]
	return out, nil

needMore:
	// Drop the consumed prefix, keep the undecided tail for next Feed.
	l.buf = append([]byte(nil), l.buf[cursor:]...)
	return out, nil
}

// matchRecordSep recognizes CR, LF, and CRLF at cursor. When stream is true
// and the buffer ends exactly on a bare CR, the caller must wait for more
// input to know whether it is CR-only or the first half of CRLF.
func (l *Lexer) matchRecordSep(cursor int, stream bool) (sepLen int, ok bool, wait bool) {
	if cursor >= len(l.buf) {
		return 0, false, false
	}
	c := l.buf[cursor]
	if c == '\n' {
		return 1, true, false
	}
	if c != '\r' {
		return 0, false, false
	}
	if cursor+1 < len(l.buf) {
		if l.buf[cursor+1] == '\n' {
			return 2, true, false
		}
		return 1, true, false
	}
	if stream {
		return 0, false, true
	}
	return 1, true, false
}

// matchPrefix reports whether buf[pos:] starts with pat (full), or is a
// genuine non-empty proper prefix of pat that stream mode must wait to
// disambiguate (wait). On a final (non-streaming) pass a proper prefix is
// never a match and never waited on.
func matchPrefix(buf []byte, pos int, pat []byte, stream bool) (full bool, wait bool) {
	avail := len(buf) - pos
	n := len(pat)
	if avail >= n {
		for i := 0; i < n; i++ {
			if buf[pos+i] != pat[i] {
				return false, false
			}
		}
		return true, false
	}
	if !stream || avail == 0 {
		return false, false
	}
	for i := 0; i < avail; i++ {
		if buf[pos+i] != pat[i] {
			return false, false
		}
	}
	return false, true
}

// runeSizeAt returns the byte length of the rune starting at pos. In stream
// mode, a rune that appears truncated at the end of the buffer (rather than
// genuinely invalid) is reported via wait so the caller retains the bytes
// until more input arrives.
func runeSizeAt(buf []byte, pos int, stream bool) (int, bool) {
	tail := buf[pos:]
	if !utf8.FullRune(tail) && stream {
		return 0, true
	}
	_, size := utf8.DecodeRune(tail)
	return size, false
}

func (l *Lexer) appendRune(b []byte) error {
	l.field = append(l.field, b...)
	if l.opts.MaxFieldSize != Unbounded && len(l.field) > l.opts.MaxFieldSize {
		return csverr.New(csverr.FieldTooLarge, "field exceeds maxFieldSize").
			WithSource(l.opts.Source).WithPosition(l.rowNumber, l.line, l.column, l.offset)
	}
	return nil
}

func (l *Lexer) emit(follows token.Follows, sepLen int) (token.Field, error) {
	tok := token.Field{
		Value:    string(l.field),
		Follows:  follows,
		SepLen:   sepLen,
		Location: l.closeLocation(),
	}
	l.field = l.field[:0]
	l.state = stateFieldStart
	l.haveStart = false
	l.pendingEmpty = follows == token.FollowsFieldSep
	return tok, nil
}

func (l *Lexer) markFieldStart() {
	if !l.haveStart {
		l.fieldStart = token.Position{Line: l.line, Column: l.column, Offset: l.offset}
		l.haveStart = true
	}
}

func (l *Lexer) closeLocation() *token.Location {
	if !l.opts.TrackLocation {
		return nil
	}
	return &token.Location{
		Start:     l.fieldStart,
		End:       token.Position{Line: l.line, Column: l.column, Offset: l.offset},
		RowNumber: l.rowNumber,
	}
}

// advancePos moves the cursor forward over non-newline content (delimiter,
// quote, or a single decoded rune), advancing column by one per rune and
// offset by the byte length.
func (l *Lexer) advancePos(b []byte) {
	l.offset += len(b)
	n := utf8.RuneCount(b)
	l.column += n
}

// advanceNewline moves the cursor forward over an n-byte record separator
// and advances the physical line counter and logical row counter.
func (l *Lexer) advanceNewline(n int) {
	l.offset += n
	l.line++
	l.column = 1
	l.rowNumber++
}

// advanceContent moves the cursor forward over a single rune of field
// content. A literal '\n' inside a quoted field still counts as a physical
// line per spec §3, but it is not a record separator, so rowNumber is left
// untouched.
func (l *Lexer) advanceContent(r []byte) {
	l.offset += len(r)
	if len(r) == 1 && r[0] == '\n' {
		l.line++
		l.column = 1
		return
	}
	l.column++
}
