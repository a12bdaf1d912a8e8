// Package normal turns human readable strings into stable identifier parts:
// slugs, escaped IRIs, classification codes and split name lists.
package normal

import (
	"crypto/sha1"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"
)

type Pipeline struct {
	Normalizer []Normalizer
}

func (p *Pipeline) Normalize(s string) string {
	for _, n := range p.Normalizer {
		s = n.Normalize(s)
	}
	return s
}

type Normalizer interface {
	Normalize(string) string
}

// NormalizerFunc adapts a plain function.
type NormalizerFunc func(string) string

func (f NormalizerFunc) Normalize(s string) string { return f(s) }

type TrimNormalizer struct{}

func (s *TrimNormalizer) Normalize(v string) string {
	return strings.TrimSpace(v)
}

type RemoveWSNormalizer struct{}

func (s *RemoveWSNormalizer) Normalize(v string) string {
	var b strings.Builder
	for _, c := range v {
		if unicode.IsSpace(c) {
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// SlugNormalizer replaces spaces with underscores and drops everything
// outside [A-Za-z0-9_].
type SlugNormalizer struct{}

func (s *SlugNormalizer) Normalize(v string) string {
	var b strings.Builder
	for _, c := range v {
		switch {
		case c == ' ' || c == '_':
			b.WriteRune('_')
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteRune(c)
		}
	}
	return b.String()
}

var (
	slugPipeline = &Pipeline{Normalizer: []Normalizer{
		&TrimNormalizer{},
		&SlugNormalizer{},
	}}
	codePipeline = &Pipeline{Normalizer: []Normalizer{
		&RemoveWSNormalizer{},
	}}
	nameSplit = regexp.MustCompile(`\s*;\s*`)
	scheme    = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*:`)
)

// Slug returns a URI safe token for a name, title or keyword. Strings
// without any ASCII letter or digit would all collapse into the same empty
// slug; those get the hex SHA1 of the trimmed input instead, so the result
// is still a pure function of the input.
func Slug(s string) string {
	slug := slugPipeline.Normalize(s)
	if strings.Trim(slug, "_") == "" {
		if t := strings.TrimSpace(s); t != "" {
			return hashString(t)
		}
		return ""
	}
	return slug
}

// CleanCode strips all whitespace from a classification code.
func CleanCode(s string) string {
	return codePipeline.Normalize(s)
}

// SplitNames splits one or more semicolon separated name lists. Commas are
// kept, since "Surname, Given" is a single name.
func SplitNames(raw ...string) []string {
	var parts []string
	for _, r := range raw {
		if r != "" {
			parts = append(parts, r)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	var result []string
	for _, name := range nameSplit.Split(strings.Join(parts, "; "), -1) {
		if name = strings.TrimSpace(name); name != "" {
			result = append(result, name)
		}
	}
	return result
}

// HasScheme reports whether s starts with a URI scheme, like "https:".
func HasScheme(s string) bool {
	return scheme.MatchString(s)
}

// Link decides whether a value is a link. Values with a scheme are returned
// escaped, with ok set. Anything else, like a bare DOI, is not a link.
func Link(s string) (iri string, ok bool) {
	s = strings.TrimSpace(s)
	if !HasScheme(s) {
		return "", false
	}
	return EscapeIRI(s), true
}

// EscapeIRI percent-encodes unsafe bytes, leaving unreserved characters and
// the delimiters :/?&=%# alone. Existing escapes are not touched.
func EscapeIRI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) || strings.IndexByte(":/?&=%#", c) >= 0 {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '.' || c == '_' || c == '~':
		return true
	}
	return false
}

// hashString returns a hex-encoded hash of a string.
func hashString(s string) string {
	h := sha1.New()
	_, _ = io.WriteString(h, s)
	return fmt.Sprintf("%x", h.Sum(nil))
}
