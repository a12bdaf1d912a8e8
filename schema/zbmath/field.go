package zbmath

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/segmentio/encoding/json"
)

// Sentinel is used by the upstream data source to denote a missing value.
const Sentinel = "None"

var ErrUnsupportedValue = errors.New("unsupported field value")

// Kind tells whether a field carries no value, one value or several values.
type Kind int

const (
	Absent Kind = iota
	Single
	Multiple
)

func (k Kind) String() string {
	switch k {
	case Single:
		return "single"
	case Multiple:
		return "multiple"
	default:
		return "absent"
	}
}

// Field is a metadata value as found in harvested records. Upstream stores
// every scalar as a list of one, sometimes as a plain string. Values are
// trimmed and empty strings or the sentinel turn into absent positions, but
// positions are kept, so parallel lists like author and author_id can still
// be zipped by index.
type Field struct {
	items []string // "" marks an absent position
}

// NewField returns a field from raw values, applying the same cleanup as
// JSON decoding.
func NewField(vs ...string) Field {
	var f Field
	for _, v := range vs {
		f.items = append(f.items, clean(v))
	}
	return f
}

func clean(v string) string {
	v = strings.TrimSpace(v)
	if v == Sentinel {
		return ""
	}
	return v
}

// Len returns the positional length, including absent positions.
func (f Field) Len() int { return len(f.items) }

// At returns the value at position i and whether it is present.
func (f Field) At(i int) (string, bool) {
	if i < 0 || i >= len(f.items) || f.items[i] == "" {
		return "", false
	}
	return f.items[i], true
}

// First returns the first present value.
func (f Field) First() (string, bool) {
	for _, v := range f.items {
		if v != "" {
			return v, true
		}
	}
	return "", false
}

// Values returns all present values, in order.
func (f Field) Values() []string {
	var result []string
	for _, v := range f.items {
		if v != "" {
			result = append(result, v)
		}
	}
	return result
}

// Kind reports absent, single or multiple, counting present values only.
func (f Field) Kind() Kind {
	var n int
	for _, v := range f.items {
		if v != "" {
			n++
		}
	}
	switch n {
	case 0:
		return Absent
	case 1:
		return Single
	default:
		return Multiple
	}
}

// IsAbsent is true, if the field has no present value.
func (f Field) IsAbsent() bool { return f.Kind() == Absent }

// UnmarshalJSON accepts null, a string, a number or a list of those.
func (f *Field) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	if b[0] != '[' {
		v, err := decodeScalar(b)
		if err != nil {
			return err
		}
		f.items = []string{v}
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	f.items = make([]string, 0, len(raw))
	for _, r := range raw {
		v, err := decodeScalar(bytes.TrimSpace(r))
		if err != nil {
			return err
		}
		f.items = append(f.items, v)
	}
	return nil
}

// MarshalJSON writes the list form, absent positions as null.
func (f Field) MarshalJSON() ([]byte, error) {
	vs := make([]*string, len(f.items))
	for i := range f.items {
		if f.items[i] != "" {
			vs[i] = &f.items[i]
		}
	}
	return json.Marshal(vs)
}

func decodeScalar(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	switch b[0] {
	case 'n':
		return "", nil
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", err
		}
		return clean(s), nil
	case '{', '[':
		return "", fmt.Errorf("%w: %s", ErrUnsupportedValue, truncate(string(b), 32))
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(b, &v); err != nil {
			return "", err
		}
		return fmt.Sprintf("%v", v), nil
	default:
		// numbers, e.g. an unquoted publication year
		if !json.Valid(b) {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedValue, truncate(string(b), 32))
		}
		return string(b), nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
