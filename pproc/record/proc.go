// Package record runs a function over the records of a stream in parallel,
// e.g. the elements of an OAI-PMH harvest. Output keeps input order.
package record

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const (
	defaultBatchSize    = 1000
	defaultMaxTokenSize = 1 << 26 // 64MB, a single record
)

// ProcessFunc transforms a single record. A nil result writes nothing.
type ProcessFunc func([]byte) ([]byte, error)

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithWorkers sets the number of worker goroutines.
func WithWorkers(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.numWorkers = n
		}
	}
}

// WithBatchSize sets the number of records handed to a worker at once.
func WithBatchSize(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithMaxTokenSize limits the size of a single record.
func WithMaxTokenSize(size int) ProcessorOption {
	return func(p *Processor) {
		if size > 0 {
			p.maxTokenSize = size
		}
	}
}

// WithSplitFunc sets the function that delimits records, lines by default.
func WithSplitFunc(f bufio.SplitFunc) ProcessorOption {
	return func(p *Processor) {
		if f != nil {
			p.splitFunc = f
		}
	}
}

// Processor handles parallel processing of records, delineated by a
// bufio.SplitFunc.
type Processor struct {
	splitFunc    bufio.SplitFunc
	processFunc  ProcessFunc
	numWorkers   int
	batchSize    int
	maxTokenSize int
}

// NewProcessor creates a new Processor that by default splits on lines.
func NewProcessor(processFunc ProcessFunc, opts ...ProcessorOption) *Processor {
	p := &Processor{
		splitFunc:    bufio.ScanLines,
		processFunc:  processFunc,
		numWorkers:   runtime.NumCPU(),
		batchSize:    defaultBatchSize,
		maxTokenSize: defaultMaxTokenSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// batch is a numbered slice of records, or after processing, their
// concatenated results.
type batch struct {
	seq     int
	records [][]byte
	result  []byte
}

// Process reads records from r, processes batches in parallel and writes the
// results to w in the order the records were read. The first error stops
// everything.
func (p *Processor) Process(ctx context.Context, r io.Reader, w io.Writer) error {
	var (
		bw      = bufio.NewWriter(w)
		work    = make(chan batch, p.numWorkers)
		done    = make(chan batch, p.numWorkers)
		g, gctx = errgroup.WithContext(ctx)
	)
	g.Go(func() error {
		defer close(work)
		return p.scan(gctx, r, work)
	})
	workers, wctx := errgroup.WithContext(gctx)
	for i := 0; i < p.numWorkers; i++ {
		workers.Go(func() error {
			for b := range work {
				if err := p.run(&b); err != nil {
					return err
				}
				select {
				case done <- b:
				case <-wctx.Done():
					return wctx.Err()
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(done)
		return workers.Wait()
	})
	g.Go(func() error {
		// Batches finish out of order; hold them back until their turn.
		var (
			next    int
			pending = make(map[int][]byte)
		)
		for b := range done {
			pending[b.seq] = b.result
			for {
				result, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				if _, err := bw.Write(result); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return bw.Flush()
}

// scan cuts the input into batches.
func (p *Processor) scan(ctx context.Context, r io.Reader, work chan<- batch) error {
	scanner := bufio.NewScanner(r)
	scanner.Split(p.splitFunc)
	scanner.Buffer(make([]byte, 0, 64*1024), p.maxTokenSize)
	var (
		seq     int
		records [][]byte
	)
	send := func() error {
		if len(records) == 0 {
			return nil
		}
		select {
		case work <- batch{seq: seq, records: records}:
		case <-ctx.Done():
			return ctx.Err()
		}
		seq++
		records = nil
		return nil
	}
	for scanner.Scan() {
		records = append(records, bytes.Clone(scanner.Bytes()))
		if len(records) < p.batchSize {
			continue
		}
		if err := send(); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return send()
}

func (p *Processor) run(b *batch) error {
	var buf bytes.Buffer
	for _, rec := range b.records {
		result, err := p.processFunc(rec)
		if err != nil {
			return err
		}
		buf.Write(result)
	}
	b.result = buf.Bytes()
	b.records = nil
	return nil
}
