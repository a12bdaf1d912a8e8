package convert

import (
	"fmt"

	"github.com/knakk/rdf"
	"github.com/miku/zbkg/normal"
	"github.com/miku/zbkg/vocab"
)

// Entity IRIs are pure functions of the input value, so the same id or name
// converges on the same node across records and runs.

func documentIRI(id string) (rdf.IRI, error) {
	return newIRI(vocab.ZBMath, normal.EscapeIRI(id))
}

func personByID(id string) (rdf.IRI, error) {
	return newIRI(vocab.AuthorsByID, normal.EscapeIRI(id))
}

func personByName(name string) (rdf.IRI, error) {
	return newIRI(vocab.AuthorByName, normal.Slug(name))
}

func publisherIRI(name string) (rdf.IRI, error) {
	return newIRI(vocab.Publisher, normal.Slug(name))
}

func journalIRI(title string) (rdf.IRI, error) {
	return newIRI(vocab.Journal, normal.Slug(title))
}

func classificationIRI(code string) (rdf.IRI, error) {
	return newIRI(vocab.MSC, normal.EscapeIRI(code))
}

func keywordIRI(kw string) (rdf.IRI, error) {
	return newIRI(vocab.Keyword, normal.Slug(kw))
}

func softwareIRI(id string) (rdf.IRI, error) {
	return newIRI(vocab.Software, normal.EscapeIRI(id))
}

func newIRI(base, local string) (rdf.IRI, error) {
	if local == "" {
		return rdf.IRI{}, fmt.Errorf("empty local name below %s", base)
	}
	return rdf.NewIRI(base + local)
}

// linkTerm applies the dual path policy: values with a scheme become IRIs,
// everything else, including values still invalid after escaping, stays a
// literal.
func linkTerm(s string) (rdf.Object, error) {
	if iri, ok := normal.Link(s); ok {
		if v, err := rdf.NewIRI(iri); err == nil {
			return v, nil
		}
	}
	return rdf.NewLiteral(s)
}

func literal(s string) (rdf.Literal, error) {
	return rdf.NewLiteral(s)
}
