// zb-rdf converts zbMATH JSON lines records into an RDF graph, written as
// Turtle and N-Triples.
//
// $ zb-rdf records.jsonl.zst out/zbmath
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/miku/zbkg"
	"github.com/miku/zbkg/config"
	"github.com/miku/zbkg/convert"
	"github.com/miku/zbkg/graph"
	"github.com/miku/zbkg/jsonl"
	"github.com/miku/zbkg/msc"
	log "github.com/sirupsen/logrus"
)

var (
	lookupFile  = flag.String("m", config.DefaultLookupFile(), "MSC lookup table, JSON lines")
	blankNodes  = flag.String("B", "seq", "blank node labels, seq or uuid")
	verbose     = flag.Bool("verbose", false, "log skipped lines and more")
	showVersion = flag.Bool("version", false, "show version")
)

var help = `zb-rdf turns zbMATH records into a knowledge graph

Writes OUTPUT.ttl and OUTPUT.nt; input may be gzip or zstd compressed.

Examples:

    $ zb-rdf records.jsonl out/zbmath
    $ zb-rdf -m msc_codes.jsonl -B uuid records.jsonl.gz out/batch-01

Usage: zb-rdf [OPTIONS] INPUT OUTPUT

`

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, help)
		flag.PrintDefaults()
	}
	flag.Parse()
	if *showVersion {
		fmt.Println(zbkg.Version)
		os.Exit(0)
	}
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}
	cfg := config.Config{
		InputFile:  flag.Arg(0),
		OutputBase: flag.Arg(1),
		LookupFile: *lookupFile,
		BlankNodes: *blankNodes,
		Verbose:    *verbose,
	}
	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	started := time.Now()
	table, lstats, err := msc.LoadFile(cfg.LookupFile)
	if err != nil {
		log.Fatal(err)
	}
	log.WithFields(log.Fields{
		"file":    cfg.LookupFile,
		"entries": lstats.Entries,
		"skipped": lstats.Skipped,
	}).Info("loaded classification lookup")
	blanks, err := graph.NewBlankMinter(cfg.BlankNodes)
	if err != nil {
		log.Fatal(err)
	}
	f, err := jsonl.Open(cfg.InputFile)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	var (
		g      = graph.New()
		mapper = convert.NewMapper(table, blanks)
	)
	stats, err := mapper.Run(f, g)
	if err != nil {
		log.Fatal(err)
	}
	log.Info(stats)
	if err := g.WriteFiles(cfg.TurtleFile(), cfg.NTriplesFile()); err != nil {
		log.Fatal(err)
	}
	log.WithFields(log.Fields{
		"ttl":     cfg.TurtleFile(),
		"nt":      cfg.NTriplesFile(),
		"triples": g.Len(),
		"elapsed": time.Since(started).Round(time.Millisecond),
	}).Info("wrote graph")
}
