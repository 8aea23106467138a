package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bookseed/internal/book"
	"bookseed/internal/platform/config"
	"bookseed/internal/platform/otel"
	"bookseed/internal/seed"
	"bookseed/internal/store"
)

type appConfig struct {
	Store        store.Config
	OTelEndpoint string `env:"OTEL_EXPORTER_ENDPOINT"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.LoadEnvFiles()
	os.Exit(run(ctx, os.Args[1:], os.Stdout))
}

func run(ctx context.Context, args []string, stdout io.Writer) int {
	var cfg appConfig
	if err := config.ParseEnv(&cfg); err != nil {
		log.Printf("config error: %v", err)
		return 1
	}

	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.StringVar(&cfg.Store.Target, "target", cfg.Store.Target, "Seed target: mongo or postgres")
	fs.StringVar(&cfg.Store.Collection, "collection", cfg.Store.Collection, "MongoDB collection to seed")
	fs.BoolVar(&cfg.Store.Unordered, "unordered", cfg.Store.Unordered, "Keep inserting after a rejected record (MongoDB only)")
	check := fs.Bool("check", false, "Validate the embedded records and exit without touching the store")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	records, err := seed.Records()
	if err != nil {
		log.Printf("read seed records: %v", err)
		return 1
	}

	if *check {
		if err := seed.Validate(records); err != nil {
			fmt.Fprintf(stdout, "invalid seed records:\n%v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "%d seed records are valid\n", len(records))
		return 0
	}

	shutdown, err := otel.Setup(ctx, "bookseed-seed", cfg.OTelEndpoint)
	if err != nil {
		log.Printf("otel setup error: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("otel shutdown error: %v", err)
		}
	}()

	st, closeStore, err := store.Open(ctx, cfg.Store)
	if err != nil {
		log.Printf("open store: %v", err)
		return 1
	}
	defer closeStore()

	return load(ctx, seed.NewLoader(st), records, stdout)
}

func load(ctx context.Context, loader *seed.Loader, records []book.Book, stdout io.Writer) int {
	res, err := loader.Load(ctx, records)
	inserted, failed := seed.Summarize(err, len(records))
	fmt.Fprintf(stdout, "store=%s inserted=%d failed=%d\n", loader.Database(), inserted, failed)

	if err != nil {
		report(stdout, err)
	} else {
		fmt.Fprintf(stdout, "run=%s\n", res.RunID)
		for i, id := range res.InsertedIDs {
			fmt.Fprintf(stdout, "  %d %s %q\n", i, id, records[i].Title)
		}
	}

	n, countErr := loader.Count(ctx)
	if countErr != nil {
		log.Printf("count error: %v", countErr)
	} else {
		fmt.Fprintf(stdout, "total=%d\n", n)
	}

	if err != nil || countErr != nil {
		return 1
	}
	return 0
}

func report(w io.Writer, err error) {
	var (
		connErr *seed.ConnectionError
		partial *seed.PartialInsertError
	)
	switch {
	case errors.As(err, &connErr):
		fmt.Fprintf(w, "error: %v\n", connErr)
	case errors.As(err, &partial):
		fmt.Fprintf(w, "error: %v\n", partial)
		for _, f := range partial.Failed {
			fmt.Fprintf(w, "  record %d: %v\n", f.Index, f.Err)
		}
	default:
		fmt.Fprintf(w, "error: %v\n", err)
	}
}
