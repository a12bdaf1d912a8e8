package convert

import (
	"regexp"
	"strings"
)

var (
	// doiPattern wants a directory indicator, a registrant code and a
	// suffix of printable ASCII without spaces.
	doiPattern = regexp.MustCompile(`^10\.[0-9]{4,9}(\.[0-9]+)*/[\x21-\x7e]+$`)
	// doiPrefixes are the resolver and scheme forms seen in the zbMATH doi
	// field, most specific first.
	doiPrefixes = []string{
		"https://dx.doi.org/",
		"http://dx.doi.org/",
		"https://doi.org/",
		"http://doi.org/",
		"dx.doi.org/",
		"doi.org/",
		"doi:",
	}
)

// cleanDOI returns the bare DOI in lower case, or the empty string if raw is
// not a DOI. DOIs are case insensitive, so the lower case form is the one
// used in resolver links.
func cleanDOI(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, prefix := range doiPrefixes {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(s[len(prefix):])
			break
		}
	}
	if !doiPattern.MatchString(s) {
		return ""
	}
	return s
}
