package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"reviewpulse/internal/model"
	"reviewpulse/internal/scraper"
)

const productPage = `<html><head><title>Store Listing</title></head><body>
<span id="productTitle">Wireless Bluetooth Headphones</span>
<span class="a-price-whole">2,499</span>
<div data-hook="review">
  <span data-hook="review-body">Bad.</span>
</div>
<div data-hook="review">
  <span data-hook="review-body">Great quality and fast delivery</span>
  <i data-hook="review-star-rating">4.5 out of 5 stars</i>
</div>
<div data-hook="review">
  <span data-hook="review-body">Sound is excellent and well worth the money</span>
</div>
</body></html>`

const captchaPage = `<html><body><p>Enter the CAPTCHA to continue.</p>
<div data-hook="review"><span data-hook="review-body">Review-like content that must not matter</span></div>
</body></html>`

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/good":
			fmt.Fprint(w, productPage)
		case "/blocked":
			fmt.Fprint(w, captchaPage)
		case "/noreviews":
			fmt.Fprint(w, `<html><body><span id="productTitle">Lonely Product Page</span></body></html>`)
		default:
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func fixedNow() time.Time {
	return time.Date(2025, 8, 25, 10, 0, 0, 0, time.UTC)
}

func newTestPipeline(seed int64) *Pipeline {
	return New(Options{Seed: seed, Now: fixedNow})
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestRunEndToEnd(t *testing.T) {
	srv := testServer(t)
	dir := t.TempDir()

	p := newTestPipeline(42)
	path, err := p.Run(srv.URL+"/good", dir)
	require.NoError(t, err)

	records := readCSV(t, path)
	require.Equal(t, Columns, records[0])
	// 3 reviews on the page, the 4-character one is dropped
	require.Len(t, records, 3)

	// same seed, same draw order as buildRows
	rng := rand.New(rand.NewSource(42))
	for i, row := range records[1:] {
		n := i + 1
		require.Equal(t, fmt.Sprintf("R%06d", n), row[0])
		require.Equal(t, fmt.Sprintf("B0%08d", n), row[1])
		require.Equal(t, "Wireless Bluetooth Headphones", row[2])
		require.Equal(t, "2025-08-25", row[5])
		require.Equal(t, fmt.Sprintf("Reviewer_%d", n), row[6])
		require.Equal(t, "1", row[7])
		require.Equal(t, strconv.Itoa(rng.Intn(101)), row[8])
		require.Equal(t, strconv.Itoa(50+rng.Intn(101)), row[9])
		require.Equal(t, "2499.00", row[15])
		require.Equal(t, "2998.80", row[16])
		require.Equal(t, "16", row[17])
		require.Equal(t, "Amazon", row[18])

		compound, err := strconv.ParseFloat(row[11], 64)
		require.NoError(t, err)
		require.GreaterOrEqual(t, compound, -1.0)
		require.LessOrEqual(t, compound, 1.0)
	}

	require.Equal(t, "Great quality and fast delivery", records[1][3])
	// 4.5 stars on the page, rounded down to an integer in the table
	require.Equal(t, "4", records[1][4])
	require.Equal(t, "1", records[1][19]) // delivery
	require.Equal(t, "1", records[1][20]) // quality
	require.Equal(t, "0", records[1][21]) // value

	require.Equal(t, "Sound is excellent and well worth the money", records[2][3])
	require.Equal(t, "3", records[2][4]) // default star rating, truncated
	require.Equal(t, "0", records[2][19])
	require.Equal(t, "0", records[2][20])
	require.Equal(t, "1", records[2][21])

	// both reviews carry clearly positive wording
	require.Equal(t, "Positive", records[1][10])
	require.Equal(t, "Positive", records[2][10])
}

func TestRunSeededVotesReproducible(t *testing.T) {
	srv := testServer(t)

	first, err := newTestPipeline(7).Run(srv.URL+"/good", t.TempDir())
	require.NoError(t, err)
	second, err := newTestPipeline(7).Run(srv.URL+"/good", t.TempDir())
	require.NoError(t, err)

	a := readCSV(t, first)
	b := readCSV(t, second)
	require.Equal(t, a, b)
}

func TestRunBlockedPage(t *testing.T) {
	srv := testServer(t)

	_, err := newTestPipeline(1).Run(srv.URL+"/blocked", t.TempDir())
	var blocked *scraper.BlockedError
	require.ErrorAs(t, err, &blocked)
	require.Equal(t, "blocked", FailureKind(err))
}

func TestRunFetchStatusPreserved(t *testing.T) {
	srv := testServer(t)

	_, err := newTestPipeline(1).Run(srv.URL+"/missing", t.TempDir())
	var fetchErr *scraper.FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, http.StatusServiceUnavailable, fetchErr.Status)
	require.Equal(t, "fetch_error", FailureKind(err))
}

func TestRunNoReviews(t *testing.T) {
	srv := testServer(t)

	_, err := newTestPipeline(1).Run(srv.URL+"/noreviews", t.TempDir())
	require.Equal(t, "no_reviews", FailureKind(err))
}

func TestRunSerializationFailure(t *testing.T) {
	srv := testServer(t)

	_, err := newTestPipeline(1).Run(srv.URL+"/good", "/nonexistent/output/dir")
	var serErr *SerializationError
	require.ErrorAs(t, err, &serErr)
	require.Equal(t, "serialization_error", FailureKind(err))
}

func TestRunManyIsolatesFailures(t *testing.T) {
	srv := testServer(t)
	dir := t.TempDir()

	results := newTestPipeline(3).RunMany([]string{srv.URL + "/good", srv.URL + "/blocked"}, dir)
	require.Len(t, results, 2)

	require.NoError(t, results[0].Err)
	_, err := os.Stat(results[0].Path)
	require.NoError(t, err)

	require.Error(t, results[1].Err)
	require.Equal(t, "blocked", FailureKind(results[1].Err))
	require.Empty(t, results[1].Path)
}

func TestFailureKind(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil is success", nil, "success"},
		{"fetch", &scraper.FetchError{Status: 503}, "fetch_error"},
		{"blocked", &scraper.BlockedError{Reason: "captcha"}, "blocked"},
		{"no reviews", &scraper.NoReviewsError{}, "no_reviews"},
		{"serialization", &SerializationError{Path: "x"}, "serialization_error"},
		{"wrapped", fmt.Errorf("scrape: %w", &scraper.NoReviewsError{}), "no_reviews"},
		{"unclassified", errors.New("boom"), "error"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, FailureKind(c.err))
		})
	}
}

func TestBuildRowsConcurrentUse(t *testing.T) {
	p := newTestPipeline(9)
	rec := &model.ProductRecord{
		Name:  "Wireless Bluetooth Headphones",
		Price: 2499,
		Reviews: []model.ReviewRaw{
			{Text: "Great quality and fast delivery", StarRating: 4.5},
			{Text: "Sound is excellent and well worth the money", StarRating: 3},
		},
	}

	// one Pipeline is shared by every handler goroutine; concurrent row
	// builds must not corrupt the vote draws
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				rows := p.buildRows(rec)
				if len(rows) != len(rec.Reviews) {
					t.Errorf("got %d rows, want %d", len(rows), len(rec.Reviews))
					return
				}
				for _, r := range rows {
					if r.HelpfulVotes < 0 || r.HelpfulVotes > 100 {
						t.Errorf("helpful votes out of range: %d", r.HelpfulVotes)
					}
					if r.TotalVotes < 50 || r.TotalVotes > 150 {
						t.Errorf("total votes out of range: %d", r.TotalVotes)
					}
				}
			}
		}()
	}
	wg.Wait()
}

func TestOutputFilenamesUnique(t *testing.T) {
	srv := testServer(t)
	dir := t.TempDir()

	p := newTestPipeline(5)
	first, err := p.Run(srv.URL+"/good", dir)
	require.NoError(t, err)
	second, err := p.Run(srv.URL+"/good", dir)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}
