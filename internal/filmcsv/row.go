package filmcsv

// Row is an ordered mapping of field name to Value.
type Row struct {
	fields []string
	values map[string]Value
}

// NewRow returns an empty row.
func NewRow() Row {
	return Row{values: make(map[string]Value)}
}

// Fields returns the field names in order.
func (r Row) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of fields.
func (r Row) Len() int { return len(r.fields) }

// Get returns the value for a field and whether the field exists.
func (r Row) Get(name string) (Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Set overwrites an existing field in place or appends a new one.
func (r *Row) Set(name string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[name]; !ok {
		r.fields = append(r.fields, name)
	}
	r.values[name] = v
}

// Clone returns a deep copy that can be mutated independently.
func (r Row) Clone() Row {
	c := Row{
		fields: make([]string, len(r.fields)),
		values: make(map[string]Value, len(r.values)),
	}
	copy(c.fields, r.fields)
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// Text returns the string form of a field, or "" when absent or null.
func (r Row) Text(name string) string {
	v, ok := r.values[name]
	if !ok {
		return ""
	}
	return v.String()
}
