// Package graph is an in-memory, append-only set of RDF triples with
// Turtle and N-Triples writers.
package graph

import (
	"github.com/knakk/rdf"
)

// Graph is a set of triples that remembers insertion order. Adding a triple
// that is already present is a no-op. A graph is not safe for concurrent
// writers; concurrent readers are fine once writing is done.
type Graph struct {
	index   map[string]struct{}
	triples []rdf.Triple
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{index: make(map[string]struct{})}
}

func key(t rdf.Triple) string {
	return t.Serialize(rdf.NTriples)
}

// Add inserts triples and returns the number of triples that were new.
func (g *Graph) Add(ts ...rdf.Triple) int {
	var n int
	for _, t := range ts {
		k := key(t)
		if _, ok := g.index[k]; ok {
			continue
		}
		g.index[k] = struct{}{}
		g.triples = append(g.triples, t)
		n++
	}
	return n
}

// Has reports whether a triple is in the graph.
func (g *Graph) Has(t rdf.Triple) bool {
	_, ok := g.index[key(t)]
	return ok
}

// Len returns the number of distinct triples.
func (g *Graph) Len() int {
	return len(g.triples)
}

// Triples returns all triples in insertion order. The slice must not be
// modified.
func (g *Graph) Triples() []rdf.Triple {
	return g.triples
}

// Match returns triples matching a pattern, nil terms match anything.
func (g *Graph) Match(s rdf.Subject, p rdf.Predicate, o rdf.Object) []rdf.Triple {
	var result []rdf.Triple
	for _, t := range g.triples {
		if s != nil && !rdf.TermsEqual(s, t.Subj) {
			continue
		}
		if p != nil && !rdf.TermsEqual(p, t.Pred) {
			continue
		}
		if o != nil && !rdf.TermsEqual(o, t.Obj) {
			continue
		}
		result = append(result, t)
	}
	return result
}

// bySubject groups triples by subject, subjects in first seen order.
func (g *Graph) bySubject() (subjects []rdf.Subject, groups map[string][]rdf.Triple) {
	groups = make(map[string][]rdf.Triple)
	for _, t := range g.triples {
		k := t.Subj.Serialize(rdf.NTriples)
		if _, ok := groups[k]; !ok {
			subjects = append(subjects, t.Subj)
		}
		groups[k] = append(groups[k], t)
	}
	return subjects, groups
}
