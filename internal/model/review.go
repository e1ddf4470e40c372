package model

// ProductRecord is the transient result of one page extraction. It lives
// only for the duration of a pipeline invocation.
type ProductRecord struct {
	Name    string
	Price   float64
	Reviews []ReviewRaw
}

// ReviewRaw is a single customer review as pulled from the markup.
type ReviewRaw struct {
	Text       string
	StarRating float64
}

// SentimentResult holds the four polarity components and the derived label
// for one piece of text. The components are independent intensities and do
// not have to sum to 1.
type SentimentResult struct {
	Label    string
	Compound float64
	Positive float64
	Negative float64
	Neutral  float64
}

// FeatureFlags marks which topics of the keyword taxonomy a review
// mentions. Flags are independent, not mutually exclusive.
type FeatureFlags struct {
	Delivery int
	Quality  int
	Value    int
}

// OutputRow is one serialized line of the result table, one per review.
type OutputRow struct {
	ReviewID          string
	ProductID         string
	ProductName       string
	ReviewText        string
	Rating            int
	ReviewDate        string
	ReviewerName      string
	VerifiedPurchase  int
	HelpfulVotes      int
	TotalVotes        int
	SentimentLabel    string
	CompoundScore     float64
	PositiveScore     float64
	NegativeScore     float64
	NeutralScore      float64
	ProductPrice      float64
	OriginalPrice     float64
	DiscountPct       int
	Platform          string
	DeliveryMentioned int
	QualityMentioned  int
	ValueMentioned    int
}
