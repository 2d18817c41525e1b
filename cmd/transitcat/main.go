// Command transitcat is the CLI harness: it reads the input document
// from standard input, builds the routing engine once, answers every
// stat_requests entry, and writes the output document to standard
// output.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/passbi/transitcat/internal/apperr"
	"github.com/passbi/transitcat/internal/ingest"
	"github.com/passbi/transitcat/internal/query"
	"github.com/passbi/transitcat/internal/respond"
	"github.com/passbi/transitcat/internal/routing"
	"github.com/passbi/transitcat/internal/stats"
	"github.com/passbi/transitcat/internal/transitbuild"
)

func main() {
	if err := run(os.Stdin, os.Stdout); err != nil {
		log.Printf("transitcat: %v", err)
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer) error {
	corpus, err := ingest.DecodeDocument(in)
	if err != nil {
		return err
	}

	built, err := transitbuild.New(corpus.Stops, corpus.Buses, corpus.Distances, corpus.Settings).Build()
	if err != nil {
		return err
	}

	router := routing.New(built.Graph)
	queries := query.New(corpus.Stops, router, built.Actions)
	statistics := stats.New(corpus.Stops, corpus.Buses, corpus.Distances)

	responses := make([]interface{}, 0, len(corpus.StatRequests))
	for _, req := range corpus.StatRequests {
		resp, ok := respond.Answer(req, queries, statistics)
		if !ok {
			return fmt.Errorf("%w: stat_requests entry %d has unknown type %q", apperr.MalformedInput, req.ID, req.Type)
		}
		responses = append(responses, resp)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(responses)
}
