package convert

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/knakk/rdf"
	"github.com/miku/zbkg/graph"
	"github.com/miku/zbkg/msc"
	"github.com/miku/zbkg/normal"
	"github.com/miku/zbkg/schema/zbmath"
	"github.com/miku/zbkg/vocab"
	log "github.com/sirupsen/logrus"
)

// Context is what a rule sees of the current record.
type Context struct {
	Doc    rdf.IRI
	Record zbmath.Record
	Lookup msc.Table
	Blanks graph.BlankMinter
	Logger log.FieldLogger
}

// Field returns a record field by name.
func (c *Context) Field(name string) zbmath.Field {
	return c.Record.Get(name)
}

// Strategy computes the triples for a rule. Absent fields yield no triples
// and no error.
type Strategy func(ctx *Context, rule Rule) ([]rdf.Triple, error)

// Rule binds a field to a predicate and a strategy.
type Rule struct {
	Field     string
	Predicate rdf.IRI
	Apply     Strategy
}

// DefaultRules returns the rule table for zbMATH records.
func DefaultRules() []Rule {
	return []Rule{
		{zbmath.DocumentTitle, vocab.Title, Literal},
		{zbmath.DocumentType, vocab.DocType, Literal},
		{zbmath.Language, vocab.Language, Literal},
		{zbmath.Pagination, vocab.Pagination, Literal},
		{zbmath.PublicationYear, vocab.Issued, Year},
		{zbmath.Author, vocab.Creator, Authors},
		{zbmath.Classification, vocab.Subject, Classifications},
		{zbmath.Keyword, vocab.Keywords, Keywords},
		{zbmath.ZblID, vocab.Identifier, Identifier("zbl")},
		{zbmath.DOI, vocab.Identifier, DOI},
		{zbmath.ReviewText, vocab.HasReview, Review},
		{zbmath.SwmathID, vocab.UsesSoftware, Software},
		{zbmath.SerialTitle, vocab.IsPartOf, Serial},
		{zbmath.SerialPublisher, vocab.PublishedBy, Publishers},
		{zbmath.Link, vocab.URL, Links},
		{zbmath.RefID, vocab.Cites, Citations},
	}
}

// emitter collects triples and keeps the first error.
type emitter struct {
	ts  []rdf.Triple
	err error
}

func (e *emitter) add(s rdf.Subject, p rdf.Predicate, o rdf.Object) {
	e.ts = append(e.ts, rdf.Triple{Subj: s, Pred: p, Obj: o})
}

func (e *emitter) literal(s rdf.Subject, p rdf.Predicate, v string) {
	if e.err != nil {
		return
	}
	lit, err := literal(v)
	if err != nil {
		e.err = err
		return
	}
	e.add(s, p, lit)
}

// fail records err, if it is the first one, and reports whether anything
// failed so far.
func (e *emitter) fail(err error) bool {
	if e.err == nil {
		e.err = err
	}
	return e.err != nil
}

func (e *emitter) result() ([]rdf.Triple, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.ts, nil
}

// Literal copies the first value of the field as a plain literal.
func Literal(ctx *Context, rule Rule) ([]rdf.Triple, error) {
	v, ok := ctx.Field(rule.Field).First()
	if !ok {
		return nil, nil
	}
	var e emitter
	e.literal(ctx.Doc, rule.Predicate, v)
	return e.result()
}

var yearPattern = regexp.MustCompile(`^[0-9]{1,4}$`)

// Year types the value as xsd:gYear, if it is a plain year; other values,
// like "circa 1995", stay plain literals.
func Year(ctx *Context, rule Rule) ([]rdf.Triple, error) {
	v, ok := ctx.Field(rule.Field).First()
	if !ok {
		return nil, nil
	}
	if yearPattern.MatchString(v) {
		// There is no year zero in xsd:gYear.
		year, err := strconv.Atoi(v)
		if err == nil && year > 0 {
			lit := rdf.NewTypedLiteral(fmt.Sprintf("%04d", year), vocab.GYear)
			return []rdf.Triple{{Subj: ctx.Doc, Pred: rule.Predicate, Obj: lit}}, nil
		}
	}
	return Literal(ctx, rule)
}

// person emits the type and name of a person.
func (e *emitter) person(p rdf.IRI, name string) {
	e.add(p, vocab.Type, vocab.Person)
	e.literal(p, vocab.Name, name)
}

// Authors links persons. Without author ids, every name in the author field
// becomes a person identified by slug. With ids, names and ids are paired by
// position, over the length of the id list.
func Authors(ctx *Context, rule Rule) ([]rdf.Triple, error) {
	var (
		e       emitter
		authors = ctx.Field(zbmath.Author)
		ids     = ctx.Field(zbmath.AuthorID)
	)
	if ids.IsAbsent() {
		for _, name := range normal.SplitNames(authors.Values()...) {
			p, err := personByName(name)
			if e.fail(err) {
				break
			}
			e.add(ctx.Doc, rule.Predicate, p)
			e.person(p, name)
		}
		return e.result()
	}
	// The id list drives the pairing; names past its end are dropped.
	if authors.Len() != ids.Len() {
		ctx.Logger.WithFields(log.Fields{
			"authors": authors.Len(),
			"ids":     ids.Len(),
		}).Warn("author and author_id lengths differ")
	}
	for i := 0; i < ids.Len(); i++ {
		var (
			id, hasID = ids.At(i)
			name      string
		)
		if raw, ok := authors.At(i); ok {
			if names := normal.SplitNames(raw); len(names) > 0 {
				name = names[0]
			}
		}
		var (
			p   rdf.IRI
			err error
		)
		switch {
		case hasID:
			p, err = personByID(id)
			if name == "" {
				name = id
			}
		case name != "":
			p, err = personByName(name)
		default:
			continue
		}
		if e.fail(err) {
			break
		}
		e.add(ctx.Doc, rule.Predicate, p)
		e.person(p, name)
	}
	return e.result()
}

// Classifications links MSC concepts and describes them with the lookup
// table. A code missing from the table is labeled with the code itself.
func Classifications(ctx *Context, rule Rule) ([]rdf.Triple, error) {
	var e emitter
	for _, v := range ctx.Field(rule.Field).Values() {
		code := normal.CleanCode(v)
		if code == "" {
			continue
		}
		c, err := classificationIRI(code)
		if e.fail(err) {
			break
		}
		e.add(ctx.Doc, rule.Predicate, c)
		e.add(c, vocab.Type, vocab.Concept)
		e.literal(c, vocab.Notation, code)
		entry, ok := ctx.Lookup.Lookup(code)
		label := code
		if ok && entry.ShortTitle != "" {
			label = entry.ShortTitle
		}
		e.literal(c, vocab.PrefLabel, label)
		if !ok {
			continue
		}
		if entry.ZbmathURL != "" {
			o, err := linkTerm(entry.ZbmathURL)
			if e.fail(err) {
				break
			}
			e.add(c, vocab.SeeAlso, o)
		}
		if entry.LongTitle != "" {
			e.literal(c, vocab.Definition, entry.LongTitle)
		}
		if parent := normal.CleanCode(entry.Parent); parent != "" && parent != code {
			p, err := classificationIRI(parent)
			if e.fail(err) {
				break
			}
			e.add(c, vocab.Broader, p)
		}
	}
	return e.result()
}

// Keywords links keyword concepts, identified by slug.
func Keywords(ctx *Context, rule Rule) ([]rdf.Triple, error) {
	var e emitter
	for _, kw := range ctx.Field(rule.Field).Values() {
		k, err := keywordIRI(kw)
		if e.fail(err) {
			break
		}
		e.add(ctx.Doc, rule.Predicate, k)
		e.add(k, vocab.Type, vocab.Concept)
		e.literal(k, vocab.PrefLabel, kw)
	}
	return e.result()
}

// Identifier returns a strategy that attaches the first value as a fresh
// schema:PropertyValue node.
func Identifier(propertyID string) Strategy {
	return func(ctx *Context, rule Rule) ([]rdf.Triple, error) {
		v, ok := ctx.Field(rule.Field).First()
		if !ok {
			return nil, nil
		}
		var e emitter
		e.propertyValue(ctx, rule.Predicate, propertyID, v)
		return e.result()
	}
}

func (e *emitter) propertyValue(ctx *Context, p rdf.Predicate, propertyID, v string) rdf.Blank {
	b := ctx.Blanks.Blank()
	e.add(ctx.Doc, p, b)
	e.add(b, vocab.Type, vocab.PropertyValue)
	e.literal(b, vocab.PropertyID, propertyID)
	e.literal(b, vocab.Value, v)
	return b
}

// DOI is an identifier, which also links the resolver URL when the value
// is a valid DOI.
func DOI(ctx *Context, rule Rule) ([]rdf.Triple, error) {
	v, ok := ctx.Field(rule.Field).First()
	if !ok {
		return nil, nil
	}
	var e emitter
	b := e.propertyValue(ctx, rule.Predicate, "doi", v)
	if doi := cleanDOI(v); doi != "" {
		u, err := newIRI(vocab.DOIResolver, normal.EscapeIRI(doi))
		if !e.fail(err) {
			e.add(b, vocab.URL, u)
		}
	}
	return e.result()
}

// Review attaches a fresh schema:Review node, if there is a review text, a
// signature or a reviewer id.
func Review(ctx *Context, rule Rule) ([]rdf.Triple, error) {
	var (
		text, hasText           = ctx.Field(zbmath.ReviewText).First()
		sign, hasSign           = ctx.Field(zbmath.ReviewSign).First()
		reviewerID, hasReviewer = ctx.Field(zbmath.ReviewerID).First()
	)
	if !hasText && !hasSign && !hasReviewer {
		return nil, nil
	}
	var (
		e emitter
		b = ctx.Blanks.Blank()
	)
	e.add(ctx.Doc, rule.Predicate, b)
	e.add(b, vocab.Type, vocab.Review)
	if hasText {
		e.literal(b, vocab.ReviewBody, text)
	}
	if hasSign || hasReviewer {
		var (
			p    rdf.IRI
			err  error
			name = sign
		)
		if hasReviewer {
			p, err = personByID(reviewerID)
			if !hasSign {
				name = reviewerID
			}
		} else {
			p, err = personByName(sign)
		}
		if !e.fail(err) {
			e.add(b, vocab.Author, p)
			e.person(p, name)
		}
	}
	if v, ok := ctx.Field(zbmath.ReviewType).First(); ok {
		e.literal(b, vocab.DocType, v)
	}
	if v, ok := ctx.Field(zbmath.ReviewLanguage).First(); ok {
		e.literal(b, vocab.InLanguage, v)
	}
	return e.result()
}

// Software links software entities, pairing names and swMATH ids by
// position. Entries without id are dropped.
func Software(ctx *Context, rule Rule) ([]rdf.Triple, error) {
	var (
		e     emitter
		names = ctx.Field(zbmath.SoftwareName)
		ids   = ctx.Field(zbmath.SwmathID)
	)
	for i := 0; i < ids.Len(); i++ {
		id, ok := ids.At(i)
		if !ok {
			continue
		}
		s, err := softwareIRI(id)
		if e.fail(err) {
			break
		}
		e.add(ctx.Doc, rule.Predicate, s)
		e.add(s, vocab.Type, vocab.SoftwareApplication)
		e.literal(s, vocab.Identifier, id)
		if name, ok := names.At(i); ok {
			e.literal(s, vocab.SchemaName, name)
		}
	}
	return e.result()
}

// publishers returns the organizations named in serial_publisher, with their
// descriptions.
func (e *emitter) publishers(ctx *Context) []rdf.IRI {
	var result []rdf.IRI
	for _, name := range normal.SplitNames(ctx.Field(zbmath.SerialPublisher).Values()...) {
		p, err := publisherIRI(name)
		if e.fail(err) {
			return nil
		}
		e.add(p, vocab.Type, vocab.Organization)
		e.literal(p, vocab.Name, name)
		result = append(result, p)
	}
	return result
}

// Serial links the journal the document appeared in. The journal points to
// its publishers.
func Serial(ctx *Context, rule Rule) ([]rdf.Triple, error) {
	title, ok := ctx.Field(rule.Field).First()
	if !ok {
		return nil, nil
	}
	var e emitter
	j, err := journalIRI(title)
	if e.fail(err) {
		return e.result()
	}
	e.add(ctx.Doc, rule.Predicate, j)
	e.add(j, vocab.Type, vocab.Periodical)
	e.literal(j, vocab.SchemaName, title)
	for _, p := range e.publishers(ctx) {
		e.add(j, vocab.SchemaPublisher, p)
	}
	return e.result()
}

// Publishers links the document to its publishers.
func Publishers(ctx *Context, rule Rule) ([]rdf.Triple, error) {
	var e emitter
	for _, p := range e.publishers(ctx) {
		e.add(ctx.Doc, rule.Predicate, p)
	}
	return e.result()
}

// Links adds every link, as IRI if it has a scheme, otherwise as literal.
func Links(ctx *Context, rule Rule) ([]rdf.Triple, error) {
	var e emitter
	for _, v := range ctx.Field(rule.Field).Values() {
		o, err := linkTerm(v)
		if e.fail(err) {
			break
		}
		e.add(ctx.Doc, rule.Predicate, o)
	}
	return e.result()
}

// Citations adds one edge per cited document. Targets need not exist.
func Citations(ctx *Context, rule Rule) ([]rdf.Triple, error) {
	var e emitter
	for _, id := range ctx.Field(rule.Field).Values() {
		c, err := documentIRI(id)
		if e.fail(err) {
			break
		}
		e.add(ctx.Doc, rule.Predicate, c)
	}
	return e.result()
}
