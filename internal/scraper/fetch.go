package scraper

import (
	"math/rand"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultTimeout = 20 * time.Second

var desktopAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
}

// Fetcher performs the single-attempt page fetch. No retries, no backoff;
// anything beyond one request is the caller's problem.
type Fetcher struct {
	client *resty.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{client: resty.New().SetTimeout(timeout)}
}

// Fetch returns the raw page body. Non-2xx responses become a *FetchError
// with the status preserved for diagnostics.
func (f *Fetcher) Fetch(url string) (string, error) {
	resp, err := f.client.R().
		SetHeader("User-Agent", desktopAgents[rand.Intn(len(desktopAgents))]).
		SetHeader("Accept", "text/html,application/xhtml+xml").
		Get(url)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	if !resp.IsSuccess() {
		return "", &FetchError{URL: url, Status: resp.StatusCode()}
	}
	return resp.String(), nil
}
