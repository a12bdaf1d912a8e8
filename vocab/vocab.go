// Package vocab holds the namespaces, classes and predicates used in the
// zbMATH knowledge graph. Queries against the graph rely on these names.
package vocab

import "github.com/knakk/rdf"

// Namespace IRIs.
const (
	RDF     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS    = "http://www.w3.org/2000/01/rdf-schema#"
	XSD     = "http://www.w3.org/2001/XMLSchema#"
	DCTerms = "http://purl.org/dc/terms/"
	FOAF    = "http://xmlns.com/foaf/0.1/"
	SKOS    = "http://www.w3.org/2004/02/skos/core#"
	Schema  = "https://schema.org/"
	CiTO    = "http://purl.org/spar/cito/"
	MSC     = "http://msc2010.org/resources/MSC/2010/"
	ZBMath  = "https://zbmath.org/"
)

// Entity namespaces below zbMATH.
const (
	AuthorsByID  = ZBMath + "authors/"
	AuthorByName = ZBMath + "author/"
	Publisher    = ZBMath + "publisher/"
	Journal      = ZBMath + "journal/"
	Keyword      = ZBMath + "keyword/"
	Software     = ZBMath + "software/"
	DOIResolver  = "https://doi.org/"
)

// Prefix binds a short name to a namespace IRI.
type Prefix struct {
	Name string
	IRI  string
}

// Prefixes is the fixed prefix table for compact serializations.
var Prefixes = []Prefix{
	{"rdf", RDF},
	{"rdfs", RDFS},
	{"xsd", XSD},
	{"dcterms", DCTerms},
	{"foaf", FOAF},
	{"skos", SKOS},
	{"schema", Schema},
	{"cito", CiTO},
	{"msc", MSC},
	{"zbmath", ZBMath},
}

// Classes.
var (
	ScholarlyArticle    = mustIRI(Schema + "ScholarlyArticle")
	Periodical          = mustIRI(Schema + "Periodical")
	SoftwareApplication = mustIRI(Schema + "SoftwareApplication")
	PropertyValue       = mustIRI(Schema + "PropertyValue")
	Review              = mustIRI(Schema + "Review")
	Person              = mustIRI(FOAF + "Person")
	Organization        = mustIRI(FOAF + "Organization")
	Concept             = mustIRI(SKOS + "Concept")
)

// Predicates.
var (
	Type = mustIRI(RDF + "type")

	SeeAlso = mustIRI(RDFS + "seeAlso")

	Title       = mustIRI(DCTerms + "title")
	Creator     = mustIRI(DCTerms + "creator")
	Subject     = mustIRI(DCTerms + "subject")
	DocType     = mustIRI(DCTerms + "type")
	Language    = mustIRI(DCTerms + "language")
	Issued      = mustIRI(DCTerms + "issued")
	IsPartOf    = mustIRI(DCTerms + "isPartOf")
	PublishedBy = mustIRI(DCTerms + "publisher")

	Name = mustIRI(FOAF + "name")

	PrefLabel  = mustIRI(SKOS + "prefLabel")
	Notation   = mustIRI(SKOS + "notation")
	Definition = mustIRI(SKOS + "definition")
	Broader    = mustIRI(SKOS + "broader")

	Keywords        = mustIRI(Schema + "keywords")
	Pagination      = mustIRI(Schema + "pagination")
	Identifier      = mustIRI(Schema + "identifier")
	PropertyID      = mustIRI(Schema + "propertyID")
	Value           = mustIRI(Schema + "value")
	URL             = mustIRI(Schema + "url")
	HasReview       = mustIRI(Schema + "review")
	ReviewBody      = mustIRI(Schema + "reviewBody")
	Author          = mustIRI(Schema + "author")
	InLanguage      = mustIRI(Schema + "inLanguage")
	SchemaName      = mustIRI(Schema + "name")
	SchemaPublisher = mustIRI(Schema + "publisher")
	UsesSoftware    = mustIRI(Schema + "software")

	Cites = mustIRI(CiTO + "cites")
)

// Datatypes.
var (
	GYear  = mustIRI(XSD + "gYear")
	String = mustIRI(XSD + "string")
)

func mustIRI(s string) rdf.IRI {
	iri, err := rdf.NewIRI(s)
	if err != nil {
		panic(err)
	}
	return iri
}
