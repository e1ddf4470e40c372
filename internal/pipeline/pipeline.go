package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"reviewpulse/internal/features"
	"reviewpulse/internal/model"
	"reviewpulse/internal/observability"
	"reviewpulse/internal/scraper"
	"reviewpulse/internal/sentiment"
)

// Platform is stamped into every output row.
const Platform = "Amazon"

// Options tunes a Pipeline. Zero values mean defaults: the standard fetch
// timeout, a time-seeded RNG and the real clock.
type Options struct {
	FetchTimeout time.Duration
	// Seed fixes the RNG behind the synthetic vote counters so tests can
	// assert exact values. 0 means time-seeded.
	Seed int64
	Now  func() time.Time
}

// Pipeline runs fetch → extract → score → tag → row-build → serialize for
// one product URL at a time. A single pass, fail-fast, no retries.
type Pipeline struct {
	fetcher  *scraper.Fetcher
	analyzer *sentiment.Analyzer
	now      func() time.Time

	// rand.Rand is not safe for concurrent use and one Pipeline serves
	// every handler goroutine; vote draws take the mutex
	rngMu sync.Mutex
	rng   *rand.Rand
}

func New(opts Options) *Pipeline {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		fetcher:  scraper.NewFetcher(opts.FetchTimeout),
		analyzer: sentiment.NewAnalyzer(),
		rng:      rand.New(rand.NewSource(seed)),
		now:      now,
	}
}

// Result is the per-URL outcome of a batch run.
type Result struct {
	URL  string
	Path string
	Err  error
}

// Run executes the full pipeline for one product URL and returns the path
// of the CSV written into outputDir. Every failure is one of the typed
// errors reported by FailureKind; nothing panics across this boundary.
func (p *Pipeline) Run(url, outputDir string) (string, error) {
	slog.Info("fetching product page", "url", url)
	body, err := p.fetcher.Fetch(url)
	if err != nil {
		return p.fail(url, err)
	}

	record, err := scraper.Extract(body)
	if err != nil {
		return p.fail(url, err)
	}
	observability.ReviewsExtracted.Add(float64(len(record.Reviews)))
	slog.Info("extracted product",
		"name", record.Name, "price", record.Price, "reviews", len(record.Reviews))

	rows := p.buildRows(record)

	path, err := writeCSV(outputDir, rows)
	if err != nil {
		return p.fail(url, err)
	}
	observability.RunsTotal.WithLabelValues("success").Inc()
	slog.Info("csv written", "url", url, "path", path, "rows", len(rows))
	return path, nil
}

func (p *Pipeline) fail(url string, err error) (string, error) {
	observability.RunsTotal.WithLabelValues(FailureKind(err)).Inc()
	return "", fmt.Errorf("scrape %s: %w", url, err)
}

// RunMany processes each URL independently and in order; one URL's failure
// never aborts its siblings.
func (p *Pipeline) RunMany(urls []string, outputDir string) []Result {
	results := make([]Result, 0, len(urls))
	for _, u := range urls {
		path, err := p.Run(u, outputDir)
		r := Result{URL: u, Path: path, Err: err}
		if err != nil {
			slog.Warn("pipeline failed", "url", u, "err", err)
		}
		results = append(results, r)
	}
	return results
}

// buildRows turns extracted reviews into output rows, preserving input
// order so the sequential IDs are reproducible.
func (p *Pipeline) buildRows(rec *model.ProductRecord) []model.OutputRow {
	runDate := p.now().Format("2006-01-02")

	// The markup never exposes a real list price. original_price and the
	// discount derived from it are synthetic demo values built from a
	// fixed 20% markup, not scraped data.
	originalPrice := 0.0
	discountPct := 0
	if rec.Price > 0 {
		originalPrice = rec.Price * 1.2
		discountPct = int((originalPrice - rec.Price) / originalPrice * 100)
	}

	rows := make([]model.OutputRow, 0, len(rec.Reviews))
	for i, rev := range rec.Reviews {
		n := i + 1
		sent := p.analyzer.Score(rev.Text)
		flags := features.DetectAll(rev.Text)

		p.rngMu.Lock()
		helpful := p.rng.Intn(101)
		total := 50 + p.rng.Intn(101)
		p.rngMu.Unlock()

		rows = append(rows, model.OutputRow{
			ReviewID:         fmt.Sprintf("R%06d", n),
			ProductID:        fmt.Sprintf("B0%08d", n),
			ProductName:      rec.Name,
			ReviewText:       rev.Text,
			Rating:           int(rev.StarRating),
			ReviewDate:       runDate,
			ReviewerName:     fmt.Sprintf("Reviewer_%d", n),
			VerifiedPurchase: 1,
			// synthetic engagement noise, not measured data
			HelpfulVotes:      helpful,
			TotalVotes:        total,
			SentimentLabel:    sent.Label,
			CompoundScore:     round4(sent.Compound),
			PositiveScore:     round4(sent.Positive),
			NegativeScore:     round4(sent.Negative),
			NeutralScore:      round4(sent.Neutral),
			ProductPrice:      round2(rec.Price),
			OriginalPrice:     round2(originalPrice),
			DiscountPct:       discountPct,
			Platform:          Platform,
			DeliveryMentioned: flags.Delivery,
			QualityMentioned:  flags.Quality,
			ValueMentioned:    flags.Value,
		})
	}
	return rows
}

// FailureKind names the failure class of a pipeline error for metrics and
// API responses. nil maps to "success".
func FailureKind(err error) string {
	if err == nil {
		return "success"
	}
	var fetchErr *scraper.FetchError
	var blockedErr *scraper.BlockedError
	var noReviewsErr *scraper.NoReviewsError
	var serErr *SerializationError
	switch {
	case errors.As(err, &fetchErr):
		return "fetch_error"
	case errors.As(err, &blockedErr):
		return "blocked"
	case errors.As(err, &noReviewsErr):
		return "no_reviews"
	case errors.As(err, &serErr):
		return "serialization_error"
	default:
		return "error"
	}
}

func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }
func round2(v float64) float64 { return math.Round(v*1e2) / 1e2 }
