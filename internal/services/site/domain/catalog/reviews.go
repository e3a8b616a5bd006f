package catalog

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/louisbranch/agencysite/internal/services/site/domain/validate"
)

// Review is a customer testimonial. Only approved reviews are public.
type Review struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Company   string    `json:"company"`
	Rating    int       `json:"rating"`
	Body      string    `json:"body"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReviewInput is a public review submission.
type ReviewInput struct {
	Author  string
	Company string
	Rating  int
	Body    string
}

func validateReview(review Review) error {
	if err := validate.First(
		validate.Required("author", review.Author),
		validate.MaxLen("author", review.Author, 120),
		validate.Required("body", review.Body),
		validate.MaxLen("body", review.Body, 2000),
	); err != nil {
		return err
	}
	if review.Rating < 1 || review.Rating > 5 {
		return validate.Invalid("rating", "error.rating_range", "rating must be between 1 and 5")
	}
	return nil
}

// SubmitReview stores a pending review.
func (c *Catalog) SubmitReview(ctx context.Context, input ReviewInput) (Review, error) {
	reviewID, err := newReviewID(c.newID)
	if err != nil {
		return Review{}, err
	}
	review := Review{
		ID:        reviewID,
		Author:    strings.TrimSpace(input.Author),
		Company:   strings.TrimSpace(input.Company),
		Rating:    input.Rating,
		Body:      strings.TrimSpace(input.Body),
		CreatedAt: c.now(),
	}
	if err := c.Reviews.Insert(ctx, review); err != nil {
		return Review{}, err
	}
	return review, nil
}

// SetReviewApproved publishes or hides a review.
func (c *Catalog) SetReviewApproved(ctx context.Context, reviewID string, approved bool) (Review, error) {
	return c.Reviews.Update(ctx, reviewID, func(review *Review) error {
		review.Approved = approved
		return nil
	})
}

// ListReviews returns reviews newest first, optionally only approved ones.
func (c *Catalog) ListReviews(ctx context.Context, approvedOnly bool) ([]Review, error) {
	reviews, err := c.Reviews.List(ctx)
	if err != nil {
		return nil, err
	}
	out := reviews[:0]
	for _, review := range reviews {
		if approvedOnly && !review.Approved {
			continue
		}
		out = append(out, review)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// AverageRating returns the mean rating of approved reviews, or 0.
func AverageRating(reviews []Review) float64 {
	total, count := 0, 0
	for _, review := range reviews {
		if review.Approved {
			total += review.Rating
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

// DeleteReviews removes reviews and returns how many existed.
func (c *Catalog) DeleteReviews(ctx context.Context, ids ...string) (int, error) {
	return c.Reviews.Delete(ctx, ids...)
}
