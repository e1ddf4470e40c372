package scraper

import "fmt"

// FetchError covers network failures, timeouts and non-2xx statuses on the
// single fetch attempt. Status is zero when the request never completed.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// BlockedError means the page looks like an anti-scraping challenge rather
// than a product page.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string { return "page blocked: " + e.Reason }

// NoReviewsError means extraction succeeded structurally but no review
// survived filtering.
type NoReviewsError struct{}

func (e *NoReviewsError) Error() string { return "no usable reviews on page" }
