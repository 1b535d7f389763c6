// Package review holds the rating aggregation rules for product reviews.
package review

import (
	"storefront/internal/model"

	"github.com/google/uuid"
)

// Summary is the derived rating state of a product.
type Summary struct {
	Rating     float64
	NumReviews int
}

// Summarize recomputes the mean rating and count from the full list of
// ratings. An empty list yields a zero rating.
func Summarize(ratings []int) Summary {
	if len(ratings) == 0 {
		return Summary{}
	}

	sum := 0
	for _, r := range ratings {
		sum += r
	}

	return Summary{
		Rating:     float64(sum) / float64(len(ratings)),
		NumReviews: len(ratings),
	}
}

// Ratings extracts the rating of every review.
func Ratings(reviews []model.Review) []int {
	ratings := make([]int, len(reviews))
	for i, r := range reviews {
		ratings[i] = r.Rating
	}
	return ratings
}

// FindByUser returns the review written by userID, if any.
func FindByUser(reviews []model.Review, userID uuid.UUID) (*model.Review, bool) {
	for i := range reviews {
		if reviews[i].UserID == userID {
			return &reviews[i], true
		}
	}
	return nil, false
}
