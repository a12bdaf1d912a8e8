// zb-msc-fetch downloads the MSC classification from the zbMATH Open API and
// writes the lookup table used by zb-rdf.
//
// $ zb-msc-fetch -o msc_codes.jsonl
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/miku/zbkg"
	"github.com/miku/zbkg/config"
	"github.com/miku/zbkg/feeds"
	"github.com/miku/zbkg/jsonl"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	outputFile  = flag.String("o", config.LookupFilename, "output file, .gz and .zst are compressed")
	endpoint    = flag.String("u", feeds.DefaultEndpoint, "API endpoint")
	level       = flag.Int("l", feeds.DefaultLevel, "classification level")
	pageSize    = flag.Int("s", feeds.DefaultPageSize, "results per page")
	wait        = flag.Duration("w", feeds.DefaultWait, "pause between requests")
	verbose     = flag.Bool("verbose", false, "log every request")
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
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	h := feeds.NewMSCHarvester()
	h.Endpoint = *endpoint
	h.Level = *level
	h.PageSize = *pageSize
	h.Limiter = rate.NewLimiter(rate.Every(*wait), 1)
	// An interrupted fetch keeps the old table; the prefix keeps the
	// compression extension intact.
	tmp := filepath.Join(filepath.Dir(*outputFile), "wip-"+filepath.Base(*outputFile))
	w, err := jsonl.Create(tmp)
	if err != nil {
		log.Fatal(err)
	}
	started := time.Now()
	n, err := h.WriteEntries(ctx, w)
	if err != nil {
		w.Close()
		os.Remove(tmp)
		log.Fatal(err)
	}
	if err := w.Close(); err != nil {
		log.Fatal(err)
	}
	if err := os.Rename(tmp, *outputFile); err != nil {
		log.Fatal(err)
	}
	log.WithFields(log.Fields{
		"file":    *outputFile,
		"entries": n,
		"elapsed": time.Since(started).Round(time.Millisecond),
	}).Info("wrote lookup table")
}
