package convert

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/knakk/rdf"
	"github.com/miku/zbkg/graph"
	"github.com/miku/zbkg/msc"
	"github.com/miku/zbkg/vocab"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

var testLookup = msc.Table{
	"03E10": {Code: "03E10", ShortTitle: "Set Theory"},
	"55T05": {
		Code:       "55T05",
		ShortTitle: "Spectral sequences",
		LongTitle:  "Spectral sequences in algebraic topology",
		Parent:     "55Txx",
		ZbmathURL:  "https://zbmath.org/classification/?q=55T05",
	},
}

func newTestMapper(t *testing.T) (*Mapper, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	m := NewMapper(testLookup, &graph.Sequence{})
	m.Logger = logger
	return m, hook
}

func mapString(t *testing.T, m *Mapper, s string) []rdf.Triple {
	t.Helper()
	ts, err := m.MapLine([]byte(s))
	if err != nil {
		t.Fatalf("map %s: %v", s, err)
	}
	return ts
}

func mustIRI(t *testing.T, s string) rdf.IRI {
	t.Helper()
	v, err := rdf.NewIRI(s)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func lit(t *testing.T, s string) rdf.Literal {
	t.Helper()
	v, err := rdf.NewLiteral(s)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

// match returns triples matching a pattern, nil matches anything.
func match(ts []rdf.Triple, s rdf.Subject, p rdf.Predicate, o rdf.Object) []rdf.Triple {
	g := graph.New()
	g.Add(ts...)
	return g.Match(s, p, o)
}

func has(ts []rdf.Triple, s rdf.Subject, p rdf.Predicate, o rdf.Object) bool {
	return len(match(ts, s, p, o)) > 0
}

func TestEndToEnd(t *testing.T) {
	m, _ := newTestMapper(t)
	ts := mapString(t, m, `{"document_id":["123"],"document_title":["Foo"],"author":["Doe, John"],"classification":["03E10"],"publication_year":["1999"]}`)
	var (
		doc    = mustIRI(t, "https://zbmath.org/123")
		author = mustIRI(t, "https://zbmath.org/author/Doe_John")
		class  = mustIRI(t, vocab.MSC+"03E10")
	)
	var cases = []struct {
		help string
		s    rdf.Subject
		p    rdf.Predicate
		o    rdf.Object
	}{
		{"document type", doc, vocab.Type, vocab.ScholarlyArticle},
		{"title", doc, vocab.Title, lit(t, "Foo")},
		{"creator", doc, vocab.Creator, author},
		{"author type", author, vocab.Type, vocab.Person},
		{"author name", author, vocab.Name, lit(t, "Doe, John")},
		{"subject", doc, vocab.Subject, class},
		{"subject label", class, vocab.PrefLabel, lit(t, "Set Theory")},
		{"subject notation", class, vocab.Notation, lit(t, "03E10")},
		{"subject type", class, vocab.Type, vocab.Concept},
		{"year", doc, vocab.Issued, rdf.NewTypedLiteral("1999", vocab.GYear)},
	}
	for _, c := range cases {
		if !has(ts, c.s, c.p, c.o) {
			t.Errorf("%s: missing triple %v %v %v", c.help, c.s, c.p, c.o)
		}
	}
}

func TestDeterminism(t *testing.T) {
	const record = `{"document_id":["1"],"author":["Doe, John; Smith, Jane"],"zbl_id":["0912.55001"],"keyword":["spectral sequences"],"review_text":["Nice."]}`
	m1, _ := newTestMapper(t)
	m2, _ := newTestMapper(t)
	a, b := mapString(t, m1, record), mapString(t, m2, record)
	if diff := cmp.Diff(serialize(a), serialize(b)); diff != "" {
		t.Fatalf("mapping not deterministic (-first +second):\n%s", diff)
	}
	// Named entities are idempotent in a set based graph.
	g := graph.New()
	const named = `{"document_id":["1"],"author":["Doe, John"],"keyword":["spectral sequences"],"ref_id":["2"]}`
	m, _ := newTestMapper(t)
	g.Add(mapString(t, m, named)...)
	if n := g.Add(mapString(t, m, named)...); n != 0 {
		t.Fatalf("got %d new triples on second pass, want 0", n)
	}
}

func serialize(ts []rdf.Triple) []string {
	var result []string
	for _, t := range ts {
		result = append(result, t.Serialize(rdf.NTriples))
	}
	return result
}

func TestIdentityConvergence(t *testing.T) {
	m, _ := newTestMapper(t)
	var cases = []struct {
		help string
		a, b string
	}{
		{
			"author id",
			`{"document_id":["1"],"author":["Doe, J."],"author_id":["doe.john"]}`,
			`{"document_id":["2"],"author":["Doe, John"],"author_id":["doe.john"]}`,
		},
		{
			"author name after trimming",
			`{"document_id":["1"],"author":["Doe, John"]}`,
			`{"document_id":["2"],"author":["  Doe, John "]}`,
		},
	}
	for _, c := range cases {
		t.Run(c.help, func(t *testing.T) {
			a := match(mapString(t, m, c.a), nil, vocab.Creator, nil)
			b := match(mapString(t, m, c.b), nil, vocab.Creator, nil)
			if len(a) != 1 || len(b) != 1 {
				t.Fatalf("got %d and %d creators, want 1 each", len(a), len(b))
			}
			if !rdf.TermsEqual(a[0].Obj, b[0].Obj) {
				t.Fatalf("authors did not converge: %v, %v", a[0].Obj, b[0].Obj)
			}
		})
	}
}

func TestMissingClassification(t *testing.T) {
	m, _ := newTestMapper(t)
	ts := mapString(t, m, `{"document_id":["1"],"document_title":["Foo"]}`)
	if got := match(ts, nil, vocab.Subject, nil); len(got) != 0 {
		t.Fatalf("got %d subject triples, want 0", len(got))
	}
}

func TestClassificationLookupMiss(t *testing.T) {
	m, _ := newTestMapper(t)
	ts := mapString(t, m, `{"document_id":["1"],"classification":[" 11 A41 "]}`)
	class := mustIRI(t, vocab.MSC+"11A41")
	if !has(ts, class, vocab.PrefLabel, lit(t, "11A41")) {
		t.Fatalf("expected code as label, got %v", serialize(ts))
	}
	if has(ts, class, vocab.SeeAlso, nil) {
		t.Fatalf("unexpected seeAlso for unknown code")
	}
}

func TestClassificationLookupHit(t *testing.T) {
	m, _ := newTestMapper(t)
	ts := mapString(t, m, `{"document_id":["1"],"classification":["55T05"]}`)
	class := mustIRI(t, vocab.MSC+"55T05")
	var cases = []struct {
		p rdf.Predicate
		o rdf.Object
	}{
		{vocab.PrefLabel, lit(t, "Spectral sequences")},
		{vocab.Definition, lit(t, "Spectral sequences in algebraic topology")},
		{vocab.SeeAlso, mustIRI(t, "https://zbmath.org/classification/?q=55T05")},
		{vocab.Broader, mustIRI(t, vocab.MSC+"55Txx")},
	}
	for _, c := range cases {
		if !has(ts, class, c.p, c.o) {
			t.Errorf("missing %v %v", c.p, c.o)
		}
	}
}

func TestYear(t *testing.T) {
	var cases = []struct {
		record string
		want   rdf.Object
	}{
		{`{"document_id":["1"],"publication_year":["1995"]}`, rdf.NewTypedLiteral("1995", vocab.GYear)},
		{`{"document_id":["1"],"publication_year":[1995]}`, rdf.NewTypedLiteral("1995", vocab.GYear)},
		{`{"document_id":["1"],"publication_year":"1995"}`, rdf.NewTypedLiteral("1995", vocab.GYear)},
		{`{"document_id":["1"],"publication_year":["95"]}`, rdf.NewTypedLiteral("0095", vocab.GYear)},
		{`{"document_id":["1"],"publication_year":["0"]}`, lit(t, "0")},
		{`{"document_id":["1"],"publication_year":["0000"]}`, lit(t, "0000")},
		{`{"document_id":["1"],"publication_year":["circa 1995"]}`, lit(t, "circa 1995")},
		{`{"document_id":["1"],"publication_year":["1995-1996"]}`, lit(t, "1995-1996")},
	}
	m, _ := newTestMapper(t)
	for _, c := range cases {
		ts := match(mapString(t, m, c.record), nil, vocab.Issued, nil)
		if len(ts) != 1 {
			t.Fatalf("%s: got %d issued triples, want 1", c.record, len(ts))
		}
		if !rdf.TermsEqual(ts[0].Obj, c.want) {
			t.Errorf("%s: got %v, want %v", c.record, ts[0].Obj.Serialize(rdf.NTriples), c.want.Serialize(rdf.NTriples))
		}
	}
}

func TestSentinel(t *testing.T) {
	m, _ := newTestMapper(t)
	ts := mapString(t, m, `{
		"document_id": ["1"],
		"zbl_id": ["None"],
		"doi": ["None"],
		"review_text": ["None"],
		"review_sign": ["None"],
		"reviewer": ["None"],
		"review_type": ["None"],
		"serial_title": ["None"],
		"serial_publisher": ["None"],
		"software_name": ["None"],
		"swmath_id": ["None"]
	}`)
	if len(ts) != 1 {
		t.Fatalf("got %v, want only the document type", serialize(ts))
	}
}

func TestDanglingCitation(t *testing.T) {
	m, hook := newTestMapper(t)
	g := graph.New()
	stats, err := m.Run(strings.NewReader(`{"document_id":["1"],"ref_id":["999999"]}`+"\n"), g)
	if err != nil {
		t.Fatal(err)
	}
	cites := g.Match(nil, vocab.Cites, nil)
	if len(cites) != 1 {
		t.Fatalf("got %d citation edges, want 1", len(cites))
	}
	if !rdf.TermsEqual(cites[0].Obj, mustIRI(t, "https://zbmath.org/999999")) {
		t.Fatalf("unexpected target %v", cites[0].Obj)
	}
	if stats.Failed != 0 || len(hook.AllEntries()) != 0 {
		t.Fatalf("unexpected failure: %v, %v", stats, hook.AllEntries())
	}
}

func TestAuthors(t *testing.T) {
	var cases = []struct {
		help    string
		record  string
		persons []string // IRI and name, pairwise
		warn    bool
	}{
		{
			help:    "names only",
			record:  `{"document_id":["1"],"author":["Doe, John; Smith, Jane"]}`,
			persons: []string{vocab.AuthorByName + "Doe_John", "Doe, John", vocab.AuthorByName + "Smith_Jane", "Smith, Jane"},
		},
		{
			help:    "list of name lists",
			record:  `{"document_id":["1"],"author":["Doe, John", "Smith, Jane"],"author_id":[null, "None"]}`,
			persons: []string{vocab.AuthorByName + "Doe_John", "Doe, John", vocab.AuthorByName + "Smith_Jane", "Smith, Jane"},
		},
		{
			help:    "zipped with ids",
			record:  `{"document_id":["1"],"author":["Doe, John", "Smith, Jane"],"author_id":["doe.john", "smith.jane"]}`,
			persons: []string{vocab.AuthorsByID + "doe.john", "Doe, John", vocab.AuthorsByID + "smith.jane", "Smith, Jane"},
		},
		{
			help:    "gap in ids falls back to slug",
			record:  `{"document_id":["1"],"author":["Doe, John", "Smith, Jane"],"author_id":["doe.john", null]}`,
			persons: []string{vocab.AuthorsByID + "doe.john", "Doe, John", vocab.AuthorByName + "Smith_Jane", "Smith, Jane"},
		},
		{
			help:    "more ids than names",
			record:  `{"document_id":["1"],"author":["Doe, John"],"author_id":["doe.john", "smith.jane"]}`,
			persons: []string{vocab.AuthorsByID + "doe.john", "Doe, John", vocab.AuthorsByID + "smith.jane", "smith.jane"},
			warn:    true,
		},
		{
			help:    "more names than ids",
			record:  `{"document_id":["1"],"author":["Doe, John", "Smith, Jane", "Roe, Rick"],"author_id":["doe.john"]}`,
			persons: []string{vocab.AuthorsByID + "doe.john", "Doe, John"},
			warn:    true,
		},
	}
	for _, c := range cases {
		t.Run(c.help, func(t *testing.T) {
			m, hook := newTestMapper(t)
			ts := mapString(t, m, c.record)
			creators := match(ts, nil, vocab.Creator, nil)
			if len(creators) != len(c.persons)/2 {
				t.Fatalf("got %d creators, want %d: %v", len(creators), len(c.persons)/2, serialize(ts))
			}
			for i := 0; i < len(c.persons); i += 2 {
				p := mustIRI(t, c.persons[i])
				if !has(ts, nil, vocab.Creator, p) {
					t.Errorf("missing creator %v", p)
				}
				if !has(ts, p, vocab.Name, lit(t, c.persons[i+1])) {
					t.Errorf("missing name %q for %v", c.persons[i+1], p)
				}
			}
			var warned bool
			for _, e := range hook.AllEntries() {
				if e.Level == log.WarnLevel {
					warned = true
				}
			}
			if warned != c.warn {
				t.Fatalf("got warning %v, want %v", warned, c.warn)
			}
		})
	}
}

func TestReview(t *testing.T) {
	m, _ := newTestMapper(t)
	ts := mapString(t, m, `{"document_id":["1"],"review_text":["A fine paper."],"review_sign":["Roe, R."],"reviewer":["roe.r"],"review_type":["review"],"review_language":["English"]}`)
	reviews := match(ts, nil, vocab.HasReview, nil)
	if len(reviews) != 1 {
		t.Fatalf("got %d reviews, want 1", len(reviews))
	}
	b, ok := reviews[0].Obj.(rdf.Blank)
	if !ok {
		t.Fatalf("review should be a blank node, got %v", reviews[0].Obj)
	}
	reviewer := mustIRI(t, vocab.AuthorsByID+"roe.r")
	var cases = []struct {
		s rdf.Subject
		p rdf.Predicate
		o rdf.Object
	}{
		{b, vocab.Type, vocab.Review},
		{b, vocab.ReviewBody, lit(t, "A fine paper.")},
		{b, vocab.Author, reviewer},
		{b, vocab.DocType, lit(t, "review")},
		{b, vocab.InLanguage, lit(t, "English")},
		{reviewer, vocab.Name, lit(t, "Roe, R.")},
		{reviewer, vocab.Type, vocab.Person},
	}
	for _, c := range cases {
		if !has(ts, c.s, c.p, c.o) {
			t.Errorf("missing %v %v %v", c.s, c.p, c.o)
		}
	}
}

func TestReviewSignOnly(t *testing.T) {
	m, _ := newTestMapper(t)
	ts := mapString(t, m, `{"document_id":["1"],"review_sign":["Roe, R."]}`)
	if !has(ts, nil, vocab.Author, mustIRI(t, vocab.AuthorByName+"Roe_R")) {
		t.Fatalf("expected reviewer by name: %v", serialize(ts))
	}
	ts = mapString(t, m, `{"document_id":["1"],"review_type":["review"],"review_language":["English"]}`)
	if has(ts, nil, vocab.HasReview, nil) {
		t.Fatalf("review without text, sign or reviewer should not be created")
	}
}

func TestFreshBlankNodes(t *testing.T) {
	m, _ := newTestMapper(t)
	ts := mapString(t, m, `{"document_id":["1"],"zbl_id":["0912.55001"],"doi":["10.1007/BF01389165"],"review_text":["x"]}`)
	var blanks []string
	for _, tr := range match(ts, mustIRI(t, vocab.ZBMath+"1"), nil, nil) {
		if b, ok := tr.Obj.(rdf.Blank); ok {
			blanks = append(blanks, b.Serialize(rdf.NTriples))
		}
	}
	if len(blanks) != 3 {
		t.Fatalf("got %d blank nodes, want 3", len(blanks))
	}
	if blanks[0] == blanks[1] || blanks[1] == blanks[2] || blanks[0] == blanks[2] {
		t.Fatalf("blank nodes reused: %v", blanks)
	}
}

func TestDOI(t *testing.T) {
	m, _ := newTestMapper(t)
	ts := mapString(t, m, `{"document_id":["1"],"doi":["10.1007/BF01389165"]}`)
	ids := match(ts, nil, vocab.Identifier, nil)
	if len(ids) != 1 {
		t.Fatalf("got %d identifiers, want 1", len(ids))
	}
	b := ids[0].Obj.(rdf.Blank)
	if !has(ts, b, vocab.PropertyID, lit(t, "doi")) {
		t.Errorf("missing propertyID")
	}
	if !has(ts, b, vocab.Value, lit(t, "10.1007/BF01389165")) {
		t.Errorf("value should keep the original spelling")
	}
	if !has(ts, b, vocab.URL, mustIRI(t, "https://doi.org/10.1007/bf01389165")) {
		t.Errorf("missing resolver url: %v", serialize(ts))
	}
	ts = mapString(t, m, `{"document_id":["1"],"doi":["not a doi"]}`)
	if has(ts, nil, vocab.URL, nil) {
		t.Errorf("invalid doi should not get a resolver url")
	}
}

func TestLinks(t *testing.T) {
	m, _ := newTestMapper(t)
	ts := mapString(t, m, `{"document_id":["1"],"link":["https://example.com/a b", "10.1000/182", "None"]}`)
	urls := match(ts, nil, vocab.URL, nil)
	if len(urls) != 2 {
		t.Fatalf("got %d links, want 2", len(urls))
	}
	if !has(ts, nil, vocab.URL, mustIRI(t, "https://example.com/a%20b")) {
		t.Errorf("expected escaped IRI")
	}
	if !has(ts, nil, vocab.URL, lit(t, "10.1000/182")) {
		t.Errorf("value without scheme should stay a literal")
	}
}

func TestSerialAndPublishers(t *testing.T) {
	m, _ := newTestMapper(t)
	ts := mapString(t, m, `{"document_id":["1"],"serial_title":["Fundam. Math."],"serial_publisher":["Polish Academy of Sciences; Springer"]}`)
	var (
		journal = mustIRI(t, vocab.Journal+"Fundam_Math")
		pas     = mustIRI(t, vocab.Publisher+"Polish_Academy_of_Sciences")
		spr     = mustIRI(t, vocab.Publisher+"Springer")
	)
	var cases = []struct {
		s rdf.Subject
		p rdf.Predicate
		o rdf.Object
	}{
		{mustIRI(t, vocab.ZBMath+"1"), vocab.IsPartOf, journal},
		{journal, vocab.Type, vocab.Periodical},
		{journal, vocab.SchemaName, lit(t, "Fundam. Math.")},
		{journal, vocab.SchemaPublisher, pas},
		{journal, vocab.SchemaPublisher, spr},
		{mustIRI(t, vocab.ZBMath+"1"), vocab.PublishedBy, pas},
		{mustIRI(t, vocab.ZBMath+"1"), vocab.PublishedBy, spr},
		{pas, vocab.Type, vocab.Organization},
		{spr, vocab.Name, lit(t, "Springer")},
	}
	for _, c := range cases {
		if !has(ts, c.s, c.p, c.o) {
			t.Errorf("missing %v %v %v", c.s, c.p, c.o)
		}
	}
}

func TestSoftware(t *testing.T) {
	m, _ := newTestMapper(t)
	ts := mapString(t, m, `{"document_id":["1"],"software_name":["Macaulay2", "Unknown", "GAP"],"swmath_id":["537", null, "None"]}`)
	sw := match(ts, nil, vocab.UsesSoftware, nil)
	if len(sw) != 1 {
		t.Fatalf("got %d software links, want 1", len(sw))
	}
	s := mustIRI(t, vocab.Software+"537")
	if !has(ts, s, vocab.Type, vocab.SoftwareApplication) {
		t.Errorf("missing type")
	}
	if !has(ts, s, vocab.SchemaName, lit(t, "Macaulay2")) || !has(ts, s, vocab.Identifier, lit(t, "537")) {
		t.Errorf("missing software description: %v", serialize(ts))
	}
}

func TestMapSkip(t *testing.T) {
	m, _ := newTestMapper(t)
	for _, s := range []string{`{}`, `{"document_id":["None"]}`, `{"document_id":[]}`, `{"document_title":["x"]}`} {
		_, err := m.MapLine([]byte(s))
		var skip Skip
		if !errors.As(err, &skip) {
			t.Errorf("%s: got %v, want skip", s, err)
		}
	}
	if _, err := m.MapLine([]byte(`{"document_id":{"a":1}}`)); err == nil {
		t.Errorf("expected error for object valued field")
	}
}

func TestRun(t *testing.T) {
	input := strings.Join([]string{
		`{"document_id":["1"],"document_title":["One"]}`,
		`{"document_id":["1"`,
		``,
		`{"document_title":["no id"]}`,
		`{"document_id":["2"],"document_title":[{"nested": true}]}`,
		`{"document_id":["2"],"document_title":["Two"]}`,
	}, "\n")
	m, hook := newTestMapper(t)
	g := graph.New()
	stats, err := m.Run(strings.NewReader(input), g)
	if err != nil {
		t.Fatal(err)
	}
	want := Stats{Lines: 6, Records: 2, Skipped: 2, Failed: 2, Triples: 4}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
	var warnings []int64
	for _, e := range hook.AllEntries() {
		if e.Level == log.WarnLevel {
			warnings = append(warnings, e.Data["line"].(int64))
		}
	}
	if diff := cmp.Diff([]int64{2, 5}, warnings); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
}

// TestGolden converts testdata/records.jsonl and compares the N-Triples
// output to a golden file, which is created on first run.
func TestRunLongLine(t *testing.T) {
	input := strings.Join([]string{
		`{"document_id":["1"],"document_title":["One"]}`,
		`{"document_id":["2"],"review_text":["` + strings.Repeat("x", 1024) + `"]}`,
		`{"document_id":["3"],"document_title":["Three"]}`,
	}, "\n")
	m, hook := newTestMapper(t)
	m.MaxLineSize = 256
	g := graph.New()
	stats, err := m.Run(strings.NewReader(input), g)
	if err != nil {
		t.Fatal(err)
	}
	want := Stats{Lines: 3, Records: 2, Failed: 1, Triples: 4}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != log.WarnLevel || entry.Data["line"] != int64(2) {
		t.Fatalf("want a warning for line 2, got %v", entry)
	}
}

func TestGolden(t *testing.T) {
	for _, name := range []string{"records"} {
		t.Run(name, func(t *testing.T) {
			f, err := os.Open(filepath.Join("testdata", name+".jsonl"))
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			var (
				table, _, lerr = msc.LoadFile(filepath.Join("testdata", "msc_codes.jsonl"))
				m              = NewMapper(table, &graph.Sequence{})
				g              = graph.New()
				buf            bytes.Buffer
			)
			if lerr != nil {
				t.Fatal(lerr)
			}
			m.Logger, _ = test.NewNullLogger()
			if _, err := m.Run(f, g); err != nil {
				t.Fatal(err)
			}
			if err := g.WriteNTriples(&buf); err != nil {
				t.Fatal(err)
			}
			got := buf.Bytes()
			goldenfile := filepath.Join("testdata", name+".nt.golden")
			want, err := os.ReadFile(goldenfile)
			if err != nil {
				if os.IsNotExist(err) {
					if err := os.WriteFile(goldenfile, got, 0644); err != nil {
						t.Fatal(err)
					}
					t.Logf("created golden file: %s", goldenfile)
					return
				}
				t.Fatal(err)
			}
			if diff := cmp.Diff(strings.Split(string(want), "\n"), strings.Split(string(got), "\n")); diff != "" {
				t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
			}
		})
	}
}
