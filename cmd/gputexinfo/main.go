// Package main provides a command-line tool that decodes texture files and
// prints what the upload layer would receive.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/woozymasta/gputex"
)

var (
	dataDir   string
	workers   int
	chunkSize int
	verbose   bool
	noWrap    bool
)

func init() {
	flag.StringVar(&dataDir, "dir", ".", "Directory that texture names are resolved against")
	flag.IntVar(&workers, "workers", 0, "Decode workers (0 = number of CPUs)")
	flag.IntVar(&chunkSize, "chunk", 0, "Payload read chunk size in bytes (0 = default)")
	flag.BoolVar(&verbose, "v", false, "Log every request")
	flag.BoolVar(&noWrap, "no-transport", false, "Do not unwrap .zst/.lz4 names")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: gputexinfo [flags] name...\n")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	failed, err := run(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func run(names []string) (int, error) {
	if len(names) == 0 {
		flag.Usage()
		return 0, fmt.Errorf("no texture names given")
	}
	if st, err := os.Stat(dataDir); err != nil {
		return 0, fmt.Errorf("data directory: %w", err)
	} else if !st.IsDir() {
		return 0, fmt.Errorf("data directory: %s is not a directory", dataDir)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var (
		mu       sync.Mutex
		outcomes []gputex.Outcome
	)
	sink := gputex.Callbacks{
		Loaded: func(req gputex.Request, tex *gputex.Texture) {
			mu.Lock()
			outcomes = append(outcomes, gputex.Outcome{Request: req, Texture: tex})
			mu.Unlock()
		},
		Failed: func(req gputex.Request, reason string) {
			mu.Lock()
			outcomes = append(outcomes, gputex.Outcome{Request: req, Err: errors.New(reason)})
			mu.Unlock()
		},
	}

	dec := gputex.NewDecoder(&gputex.DecoderOptions{ChunkSize: chunkSize, DisableTransport: noWrap})
	loader := gputex.NewLoader(gputex.DirSource(dataDir), dec, sink, &gputex.LoaderOptions{
		Workers: workers,
		Logger:  logger,
	})

	ctx := context.Background()
	for _, name := range names {
		req := gputex.Request{Name: name, TrackingHandle: loader.NextTrackingHandle()}
		if err := loader.Submit(ctx, req); err != nil {
			loader.Close()
			return 0, fmt.Errorf("submit %s: %w", name, err)
		}
	}
	loader.Close()

	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].Request.TrackingHandle < outcomes[j].Request.TrackingHandle
	})

	failed := 0
	for _, o := range outcomes {
		if !o.OK() {
			failed++
			fmt.Printf("%-40s FAIL %s\n", o.Request.Name, o.Reason())
			continue
		}
		tex := o.Texture
		fmt.Printf("%-40s %5dx%-5d %-42s %9d bytes  [%s]\n",
			o.Request.Name, tex.Width(), tex.Height(), tex.Format(), tex.Len(), gputex.ContainerOf(o.Request.Name))
	}

	fmt.Printf("%d textures, %d failed\n", len(outcomes), failed)
	return failed, nil
}
