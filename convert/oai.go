package convert

import (
	"strings"

	"github.com/miku/zbkg/normal"
	"github.com/miku/zbkg/schema/zbmath"
)

// OAIToFlat turns an oai_zb_preview record into the flat, list valued shape
// the mapper reads. Deleted records and records without id are skipped.
func OAIToFlat(r *zbmath.OAIRecord) (*zbmath.FlatRecord, error) {
	if r.IsDeleted() {
		return nil, ErrSkipDeleted
	}
	id := r.ID()
	if id == "" {
		return nil, ErrSkipNoDocumentID
	}
	doc := r.Metadata.Zbmath
	flat := &zbmath.FlatRecord{
		DocumentID:      []string{id},
		DocumentTitle:   list(doc.DocumentTitle),
		Author:          normal.SplitNames(doc.Author),
		AuthorID:        trimAll(doc.AuthorIDs),
		DocumentType:    list(doc.DocumentType),
		Classification:  trimAll(doc.Classifications),
		Keyword:         trimAll(doc.Keywords),
		Language:        list(doc.Language),
		PublicationYear: list(doc.PublicationYear),
		Pagination:      list(doc.Pagination),
		ZblID:           list(doc.ZblID),
		DOI:             list(doc.DOI),
		ReviewText:      list(doc.Review.Text),
		ReviewSign:      list(doc.Review.Sign),
		ReviewerID:      list(doc.Review.Reviewer),
		ReviewType:      list(doc.Review.Type),
		ReviewLanguage:  list(doc.Review.Language),
		SerialTitle:     list(doc.Serial.Title),
		SerialPublisher: list(doc.Serial.Publisher),
		Link:            trimAll(doc.Links),
	}
	// Software names and ids stay parallel, with empty strings as gaps.
	for _, sw := range doc.Software {
		flat.SoftwareName = append(flat.SoftwareName, strings.TrimSpace(sw.Name))
		flat.SwmathID = append(flat.SwmathID, strings.TrimSpace(sw.SwmathID))
	}
	for _, ref := range doc.References {
		if v := strings.TrimSpace(ref.RefID); v != "" {
			flat.RefID = append(flat.RefID, v)
		}
	}
	return flat, nil
}

func list(s string) []string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return []string{s}
}

// trimAll trims values, keeping positions.
func trimAll(vs []string) []string {
	if len(vs) == 0 {
		return nil
	}
	result := make([]string, len(vs))
	for i, v := range vs {
		result[i] = strings.TrimSpace(v)
	}
	return result
}
