package graph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/knakk/rdf"
	"github.com/miku/zbkg/vocab"
	"golang.org/x/sync/errgroup"
)

// localName is the conservative subset of Turtle local names we emit in
// prefixed form. Anything else is written as a full IRI.
var localName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// WriteNTriples writes one triple per line, in insertion order.
func (g *Graph) WriteNTriples(w io.Writer) error {
	enc := rdf.NewTripleEncoder(w, rdf.NTriples)
	if err := enc.EncodeAll(g.triples); err != nil {
		return err
	}
	return enc.Close()
}

// WriteTurtle writes the graph as Turtle, declaring all given prefixes and
// grouping statements by subject.
func (g *Graph) WriteTurtle(w io.Writer, prefixes []vocab.Prefix) error {
	bw := bufio.NewWriter(w)
	for _, p := range prefixes {
		if _, err := fmt.Fprintf(bw, "@prefix %s: <%s> .\n", p.Name, p.IRI); err != nil {
			return err
		}
	}
	tw := turtleWriter{prefixes: prefixes}
	subjects, groups := g.bySubject()
	for _, s := range subjects {
		if _, err := io.WriteString(bw, "\n"); err != nil {
			return err
		}
		ts := groups[s.Serialize(rdf.NTriples)]
		if _, err := io.WriteString(bw, tw.term(s)); err != nil {
			return err
		}
		for i, t := range ts {
			sep := " ;\n    "
			if i == 0 {
				sep = " "
			}
			line := sep + tw.predicate(t.Pred) + " " + tw.term(t.Obj)
			if _, err := io.WriteString(bw, line); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(bw, " .\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

type turtleWriter struct {
	prefixes []vocab.Prefix
}

func (tw turtleWriter) predicate(p rdf.Predicate) string {
	if rdf.TermsEqual(p, vocab.Type) {
		return "a"
	}
	return tw.term(p)
}

func (tw turtleWriter) term(t rdf.Term) string {
	switch v := t.(type) {
	case rdf.IRI:
		return tw.iri(v.String())
	case rdf.Literal:
		s := quote(v.String())
		dt := v.DataType.String()
		if dt == "" || dt == vocab.String.String() {
			return s
		}
		return s + "^^" + tw.iri(dt)
	default:
		return t.Serialize(rdf.NTriples)
	}
}

// iri compacts an IRI with the longest matching prefix, if the remainder is
// a plain local name.
func (tw turtleWriter) iri(s string) string {
	var best vocab.Prefix
	for _, p := range tw.prefixes {
		if strings.HasPrefix(s, p.IRI) && len(p.IRI) > len(best.IRI) {
			if localName.MatchString(s[len(p.IRI):]) {
				best = p
			}
		}
	}
	if best.IRI == "" {
		return "<" + s + ">"
	}
	return best.Name + ":" + s[len(best.IRI):]
}

var quoter = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func quote(s string) string {
	return `"` + quoter.Replace(s) + `"`
}

// WriteFiles writes Turtle and N-Triples serializations concurrently. Each
// file is written under a temporary name first and renamed when complete,
// so a failed run does not leave a truncated file behind.
func (g *Graph) WriteFiles(turtleFile, ntriplesFile string) error {
	var eg errgroup.Group
	eg.Go(func() error {
		return writeFile(turtleFile, func(w io.Writer) error {
			return g.WriteTurtle(w, vocab.Prefixes)
		})
	})
	eg.Go(func() error {
		return writeFile(ntriplesFile, g.WriteNTriples)
	})
	return eg.Wait()
}

func writeFile(filename string, write func(io.Writer) error) error {
	tmp := filename + ".wip"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", filename, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, filename)
}
