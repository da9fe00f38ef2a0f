package review

import "time"

// Review is a customer product review
type Review struct {
	ID         int64     `json:"id"`
	ProductID  int64     `json:"productId"`
	CustomerID int64     `json:"customerId"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CreateData is the review creation payload. Rating is 1-5.
type CreateData struct {
	ProductID  int64  `json:"productId"`
	CustomerID int64  `json:"customerId"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment,omitempty"`
}

// Summary aggregates review data for one product
type Summary struct {
	ProductID          int64       `json:"productId"`
	AverageRating      float64     `json:"averageRating"`
	TotalReviews       int64       `json:"totalReviews"`
	RatingDistribution map[int]int `json:"ratingDistribution"`
}

// Rating is the average rating for a single product
type Rating struct {
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int64   `json:"totalReviews"`
}

// Eligibility reports whether a customer may review a product
type Eligibility struct {
	CanReview bool   `json:"canReview"`
	Reason    string `json:"reason,omitempty"`
}

// Page is a page of reviews
type Page struct {
	Data  []Review `json:"data"`
	Total int64    `json:"total"`
	Page  int      `json:"page"`
	Limit int      `json:"limit"`
}
