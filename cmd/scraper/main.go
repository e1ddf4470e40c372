package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"reviewpulse/internal/config"
	"reviewpulse/internal/pipeline"
)

// go run cmd/scraper/main.go -urls="https://www.amazon.in/dp/B0EXAMPLE" -out=./out
// go run cmd/scraper/main.go -urls="url1,url2" -seed=42
func main() {
	urlsArg := flag.String("urls", "", "comma-separated product URLs")
	out := flag.String("out", "", "output directory (defaults to OUTPUT_DIR)")
	seed := flag.Int64("seed", 0, "RNG seed for synthetic vote counts (0 = time-based)")
	timeout := flag.Int("timeout", 0, "fetch timeout in seconds (defaults to FETCH_TIMEOUT_SECONDS)")
	flag.Parse()

	urls := splitArg(*urlsArg)
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "usage: scraper -urls=<url>[,<url>...] [-out=dir] [-seed=n]")
		os.Exit(2)
	}

	cfg := config.Load()
	outDir := *out
	if outDir == "" {
		outDir = cfg.OutputDir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}
	fetchTimeout := cfg.FetchTimeout
	if *timeout > 0 {
		fetchTimeout = time.Duration(*timeout) * time.Second
	}

	p := pipeline.New(pipeline.Options{FetchTimeout: fetchTimeout, Seed: *seed})

	ok := 0
	for _, r := range p.RunMany(urls, outDir) {
		if r.Err != nil {
			fmt.Printf("FAIL  %s  (%s)\n", r.URL, pipeline.FailureKind(r.Err))
			continue
		}
		fmt.Printf("OK    %s  -> %s\n", r.URL, r.Path)
		ok++
	}
	fmt.Printf("done: %d/%d succeeded\n", ok, len(urls))
	if ok == 0 {
		os.Exit(1)
	}
}

func splitArg(raw string) []string {
	var urls []string
	for _, part := range strings.Split(raw, ",") {
		if u := strings.TrimSpace(part); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
