// Package token defines the two CSV token representations the lexer stage
// may emit — the legacy triple (Field / FieldDelimiter / RecordDelimiter)
// and the unified field token — plus conversion between them. A unified
// stream survives ToLegacy then FromLegacy unchanged (value, follows,
// sepLen); the separator terminals ToLegacy builds carry placeholder text of
// the right length, not the original separator characters.
package token

import "strings"

// Kind distinguishes the legacy triple-token terminals.
type Kind int

const (
	// KindField is a field's content.
	KindField Kind = iota
	// KindFieldDelimiter is a field separator between two fields of the same record.
	KindFieldDelimiter
	// KindRecordDelimiter is a record separator (CR, LF, or CRLF).
	KindRecordDelimiter
)

func (k Kind) String() string {
	switch k {
	case KindField:
		return "Field"
	case KindFieldDelimiter:
		return "FieldDelimiter"
	case KindRecordDelimiter:
		return "RecordDelimiter"
	default:
		return "Unknown"
	}
}

// Follows identifies what terminates a unified field token.
type Follows int

const (
	// FollowsFieldSep means the field is immediately followed by the delimiter.
	FollowsFieldSep Follows = iota
	// FollowsRecordSep means the field is the last one in its record.
	FollowsRecordSep
)

// Position is a single point in the input: 1-based line/column, 0-based byte offset.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Location brackets a token's span and names the logical CSV row it belongs to.
// rowNumber counts logical rows; a newline quoted inside a field does not
// advance it, unlike Line which counts physical '\n' bytes.
type Location struct {
	Start     Position
	End       Position
	RowNumber int
}

// Legacy is a single terminal in the three-kind legacy token stream.
type Legacy struct {
	Kind     Kind
	Value    string
	Location *Location // nil unless location tracking is enabled
}

// Field is the unified token: only field tokens are emitted, with the
// trailing separator encoded inline. SepLen is 0 at end of input without a
// trailing separator, 1 for a lone CR or LF, 2 for CRLF.
type Field struct {
	Value    string
	Follows  Follows
	SepLen   int
	Location *Location
}

// ToLegacy expands a unified token stream into the equivalent legacy triple
// stream: each Field becomes a Field terminal followed by a FieldDelimiter or
// RecordDelimiter terminal (omitted only for the final field of the stream
// when SepLen is 0, i.e. EOF with no trailing separator).
func ToLegacy(fields []Field) []Legacy {
	out := make([]Legacy, 0, len(fields)*2)
	for _, f := range fields {
		out = append(out, Legacy{Kind: KindField, Value: f.Value, Location: f.Location})
		switch {
		case f.SepLen == 0:
			// final field, no trailing separator
		case f.Follows == FollowsFieldSep:
			out = append(out, Legacy{Kind: KindFieldDelimiter, Value: strings.Repeat(" ", f.SepLen), Location: f.Location})
		default:
			out = append(out, Legacy{Kind: KindRecordDelimiter, Value: strings.Repeat(" ", f.SepLen), Location: f.Location})
		}
	}
	return out
}

// FromLegacy collapses a legacy triple stream into unified field tokens.
// A Field terminal not followed by a delimiter terminal (end of stream) is
// emitted with SepLen 0.
func FromLegacy(legacy []Legacy) []Field {
	out := make([]Field, 0, (len(legacy)+1)/2)
	for i := 0; i < len(legacy); i++ {
		t := legacy[i]
		if t.Kind != KindField {
			continue
		}
		f := Field{Value: t.Value, Location: t.Location}
		if i+1 < len(legacy) {
			switch legacy[i+1].Kind {
			case KindFieldDelimiter:
				f.Follows = FollowsFieldSep
				f.SepLen = len(legacy[i+1].Value)
				i++
			case KindRecordDelimiter:
				f.Follows = FollowsRecordSep
				f.SepLen = len(legacy[i+1].Value)
				i++
			}
		}
		out = append(out, f)
	}
	return out
}
