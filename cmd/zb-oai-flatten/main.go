// zb-oai-flatten turns an OAI-PMH harvest of zbMATH records into JSON lines
// suitable for zb-rdf. Deleted records are skipped.
//
// $ zstdcat oai.xml.zst | zb-oai-flatten > records.jsonl
package main

import (
	"context"
	"encoding/xml"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/miku/zbkg"
	"github.com/miku/zbkg/convert"
	"github.com/miku/zbkg/pproc/record"
	"github.com/miku/zbkg/schema/zbmath"
	"github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"
)

var (
	numWorkers  = flag.Int("w", runtime.NumCPU(), "number of workers")
	batchSize   = flag.Int("b", 1000, "records per batch")
	verbose     = flag.Bool("verbose", false, "log skipped records")
	showVersion = flag.Bool("version", false, "show version")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(zbkg.Version)
		os.Exit(0)
	}
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	var (
		written int64
		skipped int64
		failed  int64
	)
	flatten := func(p []byte) ([]byte, error) {
		var r zbmath.OAIRecord
		if err := xml.Unmarshal(p, &r); err != nil {
			atomic.AddInt64(&failed, 1)
			log.WithField("err", err).Warn("unparsable record")
			return nil, nil
		}
		flat, err := convert.OAIToFlat(&r)
		var skip convert.Skip
		switch {
		case errors.As(err, &skip):
			atomic.AddInt64(&skipped, 1)
			log.WithFields(log.Fields{"id": r.ID(), "reason": skip}).Debug("skipped")
			return nil, nil
		case err != nil:
			return nil, err
		}
		b, err := json.Marshal(flat)
		if err != nil {
			return nil, err
		}
		atomic.AddInt64(&written, 1)
		return append(b, '\n'), nil
	}
	proc := record.NewProcessor(flatten,
		record.WithSplitFunc(record.TagSplitter("record")),
		record.WithWorkers(*numWorkers),
		record.WithBatchSize(*batchSize))
	if err := proc.Process(context.Background(), os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
	log.WithFields(log.Fields{
		"written": written,
		"skipped": skipped,
		"failed":  failed,
	}).Info("flattened")
}
