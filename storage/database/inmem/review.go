package inmemdb

import (
	"sort"

	"github.com/tutormaven/backend/core/review"
)

type reviewRepository struct {
	db *DB
}

var _ review.Repository = (*reviewRepository)(nil) // interface compliance check

func NewReviewRepository(db *DB) review.Repository {
	return &reviewRepository{db: db}
}

func (repo *reviewRepository) CreateReview(r review.Review) (review.Review, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.reviews[r.ID] = &r
	return r, nil
}

func (repo *reviewRepository) GetReviewByID(id string) (review.Review, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if r, ok := repo.db.reviews[id]; ok {
		return *r, nil
	}
	return review.Review{}, review.ErrNotFound
}

func (repo *reviewRepository) QueryReviewsByTutor(tutorID string) ([]review.Review, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	reviews := make([]review.Review, 0)
	for _, r := range repo.db.reviews {
		if r.TutorID == tutorID {
			reviews = append(reviews, *r)
		}
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].CreatedAt.After(reviews[j].CreatedAt) })
	return reviews, nil
}

func (repo *reviewRepository) DeleteReview(id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.reviews[id]; !ok {
		return review.ErrNotFound
	}
	delete(repo.db.reviews, id)
	return nil
}
