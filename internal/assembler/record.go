package assembler

// Field is one cell of an assembled record. Present is false only under
// columnCountStrategy=sparse, where a short row pads with absent cells
// distinguished from an empty string.
type Field struct {
	Value   string
	Present bool
}

// Record is one assembled row, in object or array form depending on the
// Assembler's OutputFormat. Modeled on the teacher's pkg/csv/dom.go Record,
// generalized with the Present flag sparse output needs.
type Record struct {
	header []string
	fields []Field
	format OutputFormat
}

// Len returns the number of fields in the record.
func (r Record) Len() int { return len(r.fields) }

// Format reports whether the record was assembled as "object" or "array".
func (r Record) Format() OutputFormat { return r.format }

// Header returns the header this record was assembled against, or nil in
// headerless mode.
func (r Record) Header() []string { return r.header }

// Get returns the field at index i and whether i was in range.
func (r Record) Get(i int) (Field, bool) {
	if i < 0 || i >= len(r.fields) {
		return Field{}, false
	}
	return r.fields[i], true
}

// GetByName returns the field for the given header name, and whether that
// name exists in the header.
func (r Record) GetByName(name string) (Field, bool) {
	for i, h := range r.header {
		if h == name {
			return r.Get(i)
		}
	}
	return Field{}, false
}

// Array returns the record's fields in header/row order.
func (r Record) Array() []Field {
	return r.fields
}

// Map renders the record as header-name -> value, omitting absent sparse
// cells. Only meaningful for OutputObject records, but safe to call on any
// record that carries a header.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.header))
	for i, h := range r.header {
		if i < len(r.fields) && r.fields[i].Present {
			m[h] = r.fields[i].Value
		}
	}
	return m
}
