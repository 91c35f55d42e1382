// Command transcripts warms the transcript cache for one or more video ids.
//
//	transcripts [-config file] VIDEO_ID...
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/manakavoo/manakavoo-backend/internal/config"
	"github.com/manakavoo/manakavoo-backend/internal/logging"
	"github.com/manakavoo/manakavoo-backend/internal/repository/factory"
	"github.com/manakavoo/manakavoo-backend/internal/services"
	"github.com/manakavoo/manakavoo-backend/internal/youtube"
)

func main() {
	configFile := flag.String("config", "", "path to config file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-config file] VIDEO_ID...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// only storage and the video host are needed here, so no API key check
	cfg, err := config.Read(*configFile)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if err := cfg.Storage.Validate(); err != nil {
		log.Fatal("Invalid configuration:", err)
	}
	logr, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatal("Failed to configure logging:", err)
	}

	stores, err := factory.Open(cfg.Storage, logr)
	if err != nil {
		logr.WithError(err).Fatal("Failed to open storage")
	}
	defer stores.Close()

	client := youtube.NewClient(cfg.YouTube, logr)
	cache := services.NewTranscriptCache(stores.Transcripts, client, client, cfg.YouTube.Timeout, logr)

	ctx := context.Background()
	failed := 0
	for _, videoID := range flag.Args() {
		entry, err := cache.GetTranscript(ctx, videoID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", videoID, err)
			failed++
			continue
		}
		fmt.Printf("%s\t%s\t%d segments\t%d chars\n", videoID, entry.Title, entry.Length, len([]rune(entry.Transcript)))
	}

	if failed > 0 {
		stores.Close()
		os.Exit(1)
	}
}
