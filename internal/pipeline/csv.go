package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"reviewpulse/internal/model"
)

// SerializationError wraps any failure while writing the output table.
type SerializationError struct {
	Path string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// Columns is the fixed output schema. Order is part of the external
// contract; never reorder.
var Columns = []string{
	"review_id", "product_id", "product_name", "review_text", "rating",
	"review_date", "reviewer_name", "verified_purchase", "helpful_votes",
	"total_votes", "sentiment_label", "compound_score", "positive_score",
	"negative_score", "neutral_score", "product_price", "original_price",
	"discount_percentage", "platform", "delivery_mentioned",
	"quality_mentioned", "value_mentioned",
}

// writeCSV serializes rows into a new uniquely-named file under dir. The
// uuid token keeps concurrent runs from colliding on the same second.
func writeCSV(dir string, rows []model.OutputRow) (string, error) {
	name := fmt.Sprintf("amazon_reviews_%d_%s.csv", time.Now().Unix(), uuid.NewString()[:8])
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", &SerializationError{Path: path, Err: err}
	}

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		f.Close()
		return "", &SerializationError{Path: path, Err: err}
	}
	for i := range rows {
		if err := w.Write(rowRecord(&rows[i])); err != nil {
			f.Close()
			return "", &SerializationError{Path: path, Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return "", &SerializationError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return "", &SerializationError{Path: path, Err: err}
	}
	return path, nil
}

func rowRecord(r *model.OutputRow) []string {
	return []string{
		r.ReviewID,
		r.ProductID,
		r.ProductName,
		r.ReviewText,
		strconv.Itoa(r.Rating),
		r.ReviewDate,
		r.ReviewerName,
		strconv.Itoa(r.VerifiedPurchase),
		strconv.Itoa(r.HelpfulVotes),
		strconv.Itoa(r.TotalVotes),
		r.SentimentLabel,
		formatScore(r.CompoundScore),
		formatScore(r.PositiveScore),
		formatScore(r.NegativeScore),
		formatScore(r.NeutralScore),
		formatPrice(r.ProductPrice),
		formatPrice(r.OriginalPrice),
		strconv.Itoa(r.DiscountPct),
		r.Platform,
		strconv.Itoa(r.DeliveryMentioned),
		strconv.Itoa(r.QualityMentioned),
		strconv.Itoa(r.ValueMentioned),
	}
}

// scores are pre-rounded to 4 decimals; shortest representation keeps the
// cells readable
func formatScore(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func formatPrice(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
