// Package msc loads the Mathematics Subject Classification lookup table,
// which provides labels and links for classification codes.
package msc

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/miku/zbkg/jsonl"
	"github.com/miku/zbkg/normal"
	"github.com/segmentio/encoding/json"
)

// Entry is a single classification, as returned by the zbMATH API.
type Entry struct {
	Code       string `json:"code"`
	ShortTitle string `json:"short_title,omitempty"`
	LongTitle  string `json:"long_title,omitempty"`
	Parent     string `json:"parent,omitempty"`
	Level      int    `json:"level,omitempty"`
	ZbmathURL  string `json:"zbmath_url,omitempty"`
}

// Table maps normalized codes to entries. A nil table is empty and safe to
// use.
type Table map[string]Entry

// Lookup returns the entry for a code, normalizing the code first.
func (t Table) Lookup(code string) (Entry, bool) {
	e, ok := t[normal.CleanCode(code)]
	return e, ok
}

// LoadStats reports what happened while loading a table.
type LoadStats struct {
	Entries int
	Skipped int
}

// Load reads a table from JSON lines, or a JSON array of entries. Malformed
// entries and entries without code are skipped and counted; later entries
// with the same code replace earlier ones.
func Load(r io.Reader) (Table, LoadStats, error) {
	var (
		br    = bufio.NewReader(r)
		table = make(Table)
		stats LoadStats
	)
	add := func(b []byte) {
		var e Entry
		if err := json.Unmarshal(b, &e); err != nil {
			stats.Skipped++
			return
		}
		e.Code = normal.CleanCode(e.Code)
		if e.Code == "" {
			stats.Skipped++
			return
		}
		table[e.Code] = e
	}
	isArray, err := startsWith(br, '[')
	if err != nil {
		return nil, stats, err
	}
	if isArray {
		var raw []json.RawMessage
		if err := json.NewDecoder(br).Decode(&raw); err != nil {
			return nil, stats, fmt.Errorf("lookup array: %w", err)
		}
		for _, b := range raw {
			add(b)
		}
	} else {
		s := jsonl.Scanner{TooLong: func(int64, int) { stats.Skipped++ }}
		err := s.Scan(br, func(line []byte, _ int64) error {
			if len(bytes.TrimSpace(line)) > 0 {
				add(line)
			}
			return nil
		})
		if err != nil {
			return nil, stats, err
		}
	}
	stats.Entries = len(table)
	return table, stats, nil
}

// LoadFile loads a table from a possibly compressed file.
func LoadFile(filename string) (Table, LoadStats, error) {
	f, err := jsonl.Open(filename)
	if err != nil {
		return nil, LoadStats{}, err
	}
	defer f.Close()
	return Load(f)
}

// startsWith reports whether the first non-space byte equals c.
func startsWith(br *bufio.Reader, c byte) (bool, error) {
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b == c, br.UnreadByte()
	}
}
