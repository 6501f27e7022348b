package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tutormaven/backend/core/review"
)

const reviewTable = "review"

var reviewColumns = []string{"id", "student_id", "tutor_id", "rating", "comment", "created_at"}

type reviewRepository struct {
	db *sqlx.DB
}

var _ review.Repository = (*reviewRepository)(nil) // interface compliance check

func NewReviewRepository(db *sqlx.DB) review.Repository {
	return &reviewRepository{db: db}
}

func (repo *reviewRepository) CreateReview(r review.Review) (review.Review, error) {
	q, args, err := psql.Insert(reviewTable).
		Columns(reviewColumns...).
		Values(r.ID, r.StudentID, r.TutorID, r.Rating, r.Comment, r.CreatedAt).
		ToSql()
	if err != nil {
		return review.Review{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.Exec(q, args...); err != nil {
		return review.Review{}, errors.Wrap(err, "creating review")
	}
	return r, nil
}

func (repo *reviewRepository) GetReviewByID(id string) (review.Review, error) {
	q, args, err := psql.Select(reviewColumns...).From(reviewTable).Where("id = ?", id).ToSql()
	if err != nil {
		return review.Review{}, errors.Wrap(err, "building query")
	}
	var r review.Review
	if err = repo.db.Get(&r, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return review.Review{}, review.ErrNotFound
		}
		return review.Review{}, errors.Wrap(err, "getting review")
	}
	return r, nil
}

func (repo *reviewRepository) QueryReviewsByTutor(tutorID string) ([]review.Review, error) {
	q, args, err := psql.Select(reviewColumns...).From(reviewTable).
		Where("tutor_id = ?", tutorID).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	reviews := make([]review.Review, 0)
	if err = repo.db.Select(&reviews, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying reviews")
	}
	return reviews, nil
}

func (repo *reviewRepository) DeleteReview(id string) error {
	q, args, err := psql.Delete(reviewTable).Where("id = ?", id).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	res, err := repo.db.Exec(q, args...)
	if err != nil {
		return errors.Wrap(err, "deleting review")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return review.ErrNotFound
	}
	return nil
}
