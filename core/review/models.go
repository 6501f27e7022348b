package review

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tutormaven/backend/core"
)

// Review is immutable once posted except for deletion by its author.
// It can outlive the subscription that authorized it.
type Review struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	TutorID   string    `db:"tutor_id" json:"tutor_id"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"created_at"` // UTC
}

// NewReview contains information needed to post a Review.
type NewReview struct {
	TutorID string `json:"tutor_id" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

func (nr *NewReview) Validate(validate *validator.Validate) error {
	nr.Comment = core.CleanString(nr.Comment)
	return validate.Struct(nr)
}

// AvgRating is the arithmetic mean of the ratings; 0 when there are none.
// Callers must read 0 as "no data" alongside the review count.
func AvgRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum int
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
