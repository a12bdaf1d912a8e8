// Package zbmath contains the record shapes of zbMATH Open metadata: the raw
// OAI-PMH XML (oai_zb_preview), the flat JSON lines derived from it and the
// decoded form the converter works on.
package zbmath

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/segmentio/encoding/json"
)

// Field names of a flat record.
const (
	DocumentID      = "document_id"
	DocumentTitle   = "document_title"
	Author          = "author"
	AuthorID        = "author_id"
	DocumentType    = "document_type"
	Classification  = "classification"
	Keyword         = "keyword"
	Language        = "language"
	PublicationYear = "publication_year"
	Pagination      = "pagination"
	ZblID           = "zbl_id"
	DOI             = "doi"
	ReviewText      = "review_text"
	ReviewSign      = "review_sign"
	ReviewerID      = "reviewer_id"
	ReviewType      = "review_type"
	ReviewLanguage  = "review_language"
	SoftwareName    = "software_name"
	SwmathID        = "swmath_id"
	SerialTitle     = "serial_title"
	SerialPublisher = "serial_publisher"
	Link            = "link"
	RefID           = "ref_id"
)

// Fields lists all known field names.
var Fields = []string{
	DocumentID, DocumentTitle, Author, AuthorID, DocumentType, Classification,
	Keyword, Language, PublicationYear, Pagination, ZblID, DOI, ReviewText,
	ReviewSign, ReviewerID, ReviewType, ReviewLanguage, SoftwareName,
	SwmathID, SerialTitle, SerialPublisher, Link, RefID,
}

// aliases maps key spellings found in older dumps to field names.
var aliases = map[string]string{
	"reviewer": ReviewerID,
}

var known = func() map[string]bool {
	m := make(map[string]bool, len(Fields))
	for _, f := range Fields {
		m[f] = true
	}
	return m
}()

// Record is a decoded flat record. Missing keys read as absent fields.
type Record map[string]Field

// Get returns a field by name, absent if not set.
func (r Record) Get(name string) Field {
	return r[name]
}

// DocumentID returns the zbMATH document id, if any.
func (r Record) DocumentID() (string, bool) {
	return r.Get(DocumentID).First()
}

// UnmarshalJSON decodes known fields and ignores anything else.
func (r *Record) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	result := make(Record)
	for k, v := range raw {
		name := k
		if alias, ok := aliases[k]; ok {
			name = alias
		}
		if !known[name] {
			continue
		}
		if _, ok := raw[name]; ok && name != k {
			continue // canonical key wins over alias
		}
		var f Field
		if err := f.UnmarshalJSON(v); err != nil {
			return fmt.Errorf("field %s: %w", k, err)
		}
		result[name] = f
	}
	*r = result
	return nil
}

// FlatRecord is the list valued JSON shape written by the flattener, one
// object per line. Every scalar is a list of one, for uniformity.
type FlatRecord struct {
	DocumentID      []string `json:"document_id,omitempty"`
	DocumentTitle   []string `json:"document_title,omitempty"`
	Author          []string `json:"author,omitempty"`
	AuthorID        []string `json:"author_id,omitempty"`
	DocumentType    []string `json:"document_type,omitempty"`
	Classification  []string `json:"classification,omitempty"`
	Keyword         []string `json:"keyword,omitempty"`
	Language        []string `json:"language,omitempty"`
	PublicationYear []string `json:"publication_year,omitempty"`
	Pagination      []string `json:"pagination,omitempty"`
	ZblID           []string `json:"zbl_id,omitempty"`
	DOI             []string `json:"doi,omitempty"`
	ReviewText      []string `json:"review_text,omitempty"`
	ReviewSign      []string `json:"review_sign,omitempty"`
	ReviewerID      []string `json:"reviewer_id,omitempty"`
	ReviewType      []string `json:"review_type,omitempty"`
	ReviewLanguage  []string `json:"review_language,omitempty"`
	SoftwareName    []string `json:"software_name,omitempty"`
	SwmathID        []string `json:"swmath_id,omitempty"`
	SerialTitle     []string `json:"serial_title,omitempty"`
	SerialPublisher []string `json:"serial_publisher,omitempty"`
	Link            []string `json:"link,omitempty"`
	RefID           []string `json:"ref_id,omitempty"`
}

// OAIRecord is a single OAI-PMH record with oai_zb_preview metadata. Element
// names are matched by local name, namespace prefixes are ignored.
type OAIRecord struct {
	XMLName xml.Name `xml:"record"`
	Header  struct {
		Status     string   `xml:"status,attr"`
		Identifier string   `xml:"identifier"` // oai:zbmath.org:6383667
		Datestamp  string   `xml:"datestamp"`
		SetSpec    []string `xml:"setSpec"`
	} `xml:"header"`
	Metadata struct {
		Zbmath Document `xml:"zbmath"`
	} `xml:"metadata"`
}

// Document is the zbmath element of the oai_zb_preview format.
type Document struct {
	DocumentID      string   `xml:"document_id"`
	DocumentTitle   string   `xml:"document_title"`
	Author          string   `xml:"author"` // Doe, John; Smith, Jane
	AuthorIDs       []string `xml:"author_ids>author_id"`
	DocumentType    string   `xml:"document_type"`
	Classifications []string `xml:"classifications>classification"`
	Keywords        []string `xml:"keywords>keyword"`
	Language        string   `xml:"language"`
	PublicationYear string   `xml:"publication_year"`
	Pagination      string   `xml:"pagination"`
	ZblID           string   `xml:"zbl_id"`
	DOI             string   `xml:"doi"`
	Review          struct {
		Text     string `xml:"review_text"`
		Language string `xml:"review_language"`
		Sign     string `xml:"review_sign"`
		Type     string `xml:"review_type"`
		Reviewer string `xml:"reviewer"`
	} `xml:"review"`
	Serial struct {
		Title     string `xml:"serial_title"`
		Publisher string `xml:"serial_publisher"`
	} `xml:"serial"`
	Links    []string `xml:"links>link"`
	Software []struct {
		Name     string `xml:"software_name"`
		SwmathID string `xml:"swmath_id"`
	} `xml:"software"`
	References []struct {
		RefID string `xml:"ref_id"`
	} `xml:"references>reference"`
}

// IsDeleted is true for tombstone records.
func (r *OAIRecord) IsDeleted() bool {
	return r.Header.Status == "deleted"
}

// ID returns the local part of the OAI identifier, "6383667" for
// "oai:zbmath.org:6383667". Falls back to the document_id element.
func (r *OAIRecord) ID() string {
	if id := strings.TrimSpace(r.Header.Identifier); id != "" {
		parts := strings.Split(id, ":")
		return parts[len(parts)-1]
	}
	return strings.TrimSpace(r.Metadata.Zbmath.DocumentID)
}
