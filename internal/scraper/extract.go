package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"reviewpulse/internal/model"
	"reviewpulse/internal/observability"
)

const UnknownProduct = "Unknown Product"

const (
	// reviews shorter than this after whitespace normalization are noise
	minReviewLen = 20
	// product titles must be longer than this to count as a match
	minNameLen = 5

	defaultRating = 3.0
	maxRating     = 5.0

	// sanity bounds for price candidates, both exclusive; rejects star
	// counts and other small numbers that match the numeric pattern
	minPrice = 100.0
	maxPrice = 1_000_000.0

	// "robot" only counts as a block signal within this prefix of the
	// visible page text
	robotWindow = 500
)

// Selector fallback chains, tried in order, first match wins.
var (
	nameSelectors = []string{"#productTitle", "h1#title", "span#productTitle"}

	priceSelectors = []string{
		"span.a-price-whole",
		"span.a-price span.a-offscreen",
		"#priceblock_ourprice",
	}

	reviewContainerSelectors = []string{`[data-hook="review"]`, ".review", ".a-section.review"}
	reviewTextSelectors      = []string{`[data-hook="review-body"]`, ".review-text"}
	ratingSelector           = `[data-hook="review-star-rating"]`
)

var (
	currencyRe = regexp.MustCompile(`[₹$,\s]`)
	numberRe   = regexp.MustCompile(`\d+\.?\d*`)
)

// normalizeSpace collapses all runs of whitespace to single spaces and
// trims both ends.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Extract parses fetched markup into a ProductRecord. It returns a
// *BlockedError when the page looks like an anti-scraping challenge and a
// *NoReviewsError when no review survives filtering. Extraction itself is
// deterministic: identical markup yields an identical record.
func Extract(markup string) (*model.ProductRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	// must run before any field extraction
	if reason := blockReason(doc); reason != "" {
		return nil, &BlockedError{Reason: reason}
	}

	rec := &model.ProductRecord{
		Name:    extractName(doc),
		Price:   extractPrice(doc),
		Reviews: extractReviews(doc),
	}
	if len(rec.Reviews) == 0 {
		return nil, &NoReviewsError{}
	}
	return rec, nil
}

// blockReason checks the lower-cased visible text for challenge-page
// markers: "captcha" anywhere, "robot" within the leading window.
func blockReason(doc *goquery.Document) string {
	text := strings.ToLower(doc.Text())
	if strings.Contains(text, "captcha") {
		return "captcha"
	}
	head := text
	if len(head) > robotWindow {
		head = head[:robotWindow]
	}
	if strings.Contains(head, "robot") {
		return "robot"
	}
	return ""
}

func extractName(doc *goquery.Document) string {
	for _, sel := range nameSelectors {
		text := normalizeSpace(doc.Find(sel).First().Text())
		if utf8.RuneCountInString(text) > minNameLen {
			return text
		}
	}
	return UnknownProduct
}

// extractPrice walks the selector chain and returns the first numeric
// token inside the sanity bounds, 0 when nothing qualifies.
func extractPrice(doc *goquery.Document) float64 {
	for _, sel := range priceSelectors {
		price := 0.0
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			cleaned := currencyRe.ReplaceAllString(s.Text(), "")
			tok := numberRe.FindString(cleaned)
			if tok == "" {
				return true
			}
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return true
			}
			if v > minPrice && v < maxPrice {
				price = v
				return false
			}
			return true
		})
		if price > 0 {
			return price
		}
	}
	return 0
}

// extractReviews stops at the first container selector that yields at
// least one usable review. Broken individual reviews are skipped, never
// fatal to the batch.
func extractReviews(doc *goquery.Document) []model.ReviewRaw {
	for _, sel := range reviewContainerSelectors {
		var reviews []model.ReviewRaw
		doc.Find(sel).Each(func(_ int, container *goquery.Selection) {
			text := ""
			for _, ts := range reviewTextSelectors {
				if t := normalizeSpace(container.Find(ts).First().Text()); t != "" {
					text = t
					break
				}
			}
			if utf8.RuneCountInString(text) < minReviewLen {
				if text != "" {
					observability.ReviewsDiscarded.Inc()
				}
				return
			}
			reviews = append(reviews, model.ReviewRaw{
				Text:       text,
				StarRating: extractRating(container),
			})
		})
		if len(reviews) > 0 {
			return reviews
		}
	}
	return nil
}

func extractRating(container *goquery.Selection) float64 {
	tok := numberRe.FindString(container.Find(ratingSelector).First().Text())
	if tok == "" {
		return defaultRating
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || v < 0 || v > maxRating {
		return defaultRating
	}
	return v
}
