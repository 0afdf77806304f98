package csvengine

import "strings"

// needsEscaping reports whether field must be wrapped in quotation to
// round-trip through the engine's default lexer configuration.
func needsEscaping(field string, delimiter, quotation byte) bool {
	return strings.IndexByte(field, delimiter) >= 0 ||
		strings.IndexByte(field, quotation) >= 0 ||
		strings.ContainsAny(field, "\r\n")
}

// EscapeField quotes field if it contains the delimiter, the quotation
// character, or a line ending, doubling any embedded quotation characters.
// Fields that need no escaping are returned unchanged.
//
// This is a minimal write-side helper sufficient to drive the engine's
// parse(serialize(matrix)) == matrix round-trip property; it is not a
// general CSV writer (no dialect options, no line-ending configuration).
func EscapeField(field string, delimiter, quotation byte) string {
	if !needsEscaping(field, delimiter, quotation) {
		return field
	}
	q := string(quotation)
	escaped := strings.ReplaceAll(field, q, q+q)
	return q + escaped + q
}

// SerializeRow joins fields with delimiter, escaping as needed, following
// spec's "standard double-quote escaping" (spec §8.1).
func SerializeRow(fields []string, delimiter, quotation byte) string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = EscapeField(f, delimiter, quotation)
	}
	return strings.Join(out, string(delimiter))
}

// SerializeMatrix renders header and rows as a complete CSV document with
// LF line endings, suitable as round-trip test input for Parse.
func SerializeMatrix(header []string, rows [][]string, delimiter, quotation byte) string {
	var b strings.Builder
	b.WriteString(SerializeRow(header, delimiter, quotation))
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(SerializeRow(row, delimiter, quotation))
		b.WriteByte('\n')
	}
	return b.String()
}
