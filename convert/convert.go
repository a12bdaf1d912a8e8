// Package convert maps flat zbMATH records to RDF triples.
//
// A Mapper applies a fixed table of rules to each record. Every rule reads
// one or more fields and returns the triples for them; the mapper folds the
// results of all rules into a graph, one record at a time.
package convert

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/knakk/rdf"
	"github.com/miku/zbkg/graph"
	"github.com/miku/zbkg/jsonl"
	"github.com/miku/zbkg/msc"
	"github.com/miku/zbkg/schema/zbmath"
	"github.com/miku/zbkg/vocab"
	"github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"
)

type Skip struct {
	err error
}

func (s Skip) Error() string {
	return s.err.Error()
}

var (
	ErrSkipNoDocumentID = Skip{err: errors.New("no document id")}
	ErrSkipEmptyLine    = Skip{err: errors.New("empty line")}
	ErrSkipDeleted      = Skip{err: errors.New("deleted record")}
)

// Stats summarizes a run.
type Stats struct {
	Lines   int64 // lines read
	Records int64 // records mapped
	Skipped int64 // records without document id, empty lines
	Failed  int64 // malformed or oversized lines, records with a failing rule
	Triples int64 // distinct triples added to the graph
}

func (s Stats) String() string {
	return fmt.Sprintf("lines=%d records=%d skipped=%d failed=%d triples=%d",
		s.Lines, s.Records, s.Skipped, s.Failed, s.Triples)
}

// Mapper turns records into triples.
type Mapper struct {
	Rules  []Rule
	Lookup msc.Table
	Blanks graph.BlankMinter
	Logger log.FieldLogger

	// MaxLineSize bounds a single input line, jsonl.MaxLineSize if zero.
	MaxLineSize int
}

// NewMapper returns a mapper with the default rule table. A nil minter
// means sequential blank node labels.
func NewMapper(lookup msc.Table, blanks graph.BlankMinter) *Mapper {
	if blanks == nil {
		blanks = &graph.Sequence{}
	}
	return &Mapper{
		Rules:  DefaultRules(),
		Lookup: lookup,
		Blanks: blanks,
		Logger: log.StandardLogger(),
	}
}

// Map returns all triples for a record. If any rule fails, no triples are
// returned. Records without document id yield ErrSkipNoDocumentID.
func (m *Mapper) Map(rec zbmath.Record) ([]rdf.Triple, error) {
	id, ok := rec.DocumentID()
	if !ok {
		return nil, ErrSkipNoDocumentID
	}
	doc, err := documentIRI(id)
	if err != nil {
		return nil, err
	}
	ctx := &Context{
		Doc:    doc,
		Record: rec,
		Lookup: m.Lookup,
		Blanks: m.Blanks,
		Logger: m.logger().WithField("document", id),
	}
	result := []rdf.Triple{{Subj: doc, Pred: vocab.Type, Obj: vocab.ScholarlyArticle}}
	for _, rule := range m.Rules {
		ts, err := rule.Apply(ctx, rule)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rule.Field, err)
		}
		result = append(result, ts...)
	}
	return result, nil
}

// MapLine decodes a single JSON line and maps it.
func (m *Mapper) MapLine(line []byte) ([]rdf.Triple, error) {
	if len(bytes.TrimSpace(line)) == 0 {
		return nil, ErrSkipEmptyLine
	}
	var rec zbmath.Record
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil, fmt.Errorf("malformed record: %w", err)
	}
	return m.Map(rec)
}

// Run maps every line of r into g. Per line failures are logged and counted,
// only read errors are returned.
func (m *Mapper) Run(r io.Reader, g *graph.Graph) (Stats, error) {
	var (
		stats  Stats
		logger = m.logger()
	)
	scanner := jsonl.Scanner{
		MaxLineSize: m.MaxLineSize,
		TooLong: func(lineNum int64, size int) {
			stats.Lines++
			stats.Failed++
			logger.WithFields(log.Fields{
				"line": lineNum,
				"size": size,
			}).Warn("line too long, skipped")
		},
	}
	err := scanner.Scan(r, func(line []byte, lineNum int64) error {
		stats.Lines++
		ts, err := m.MapLine(line)
		if err != nil {
			var skip Skip
			if errors.As(err, &skip) {
				stats.Skipped++
				logger.WithFields(log.Fields{"line": lineNum, "reason": skip}).Debug("skipped")
				return nil
			}
			stats.Failed++
			logger.WithFields(log.Fields{
				"line":   lineNum,
				"err":    err,
				"record": truncate(string(line), 256),
			}).Warn("failed to map record")
			return nil
		}
		stats.Records++
		stats.Triples += int64(g.Add(ts...))
		return nil
	})
	return stats, err
}

func (m *Mapper) logger() log.FieldLogger {
	if m.Logger == nil {
		return log.StandardLogger()
	}
	return m.Logger
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
