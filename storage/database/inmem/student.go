package inmemdb

import (
	"github.com/tutormaven/backend/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateProfile(p student.Profile) (student.Profile, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.studentProfiles[p.UserID] = &p
	return p, nil
}

func (repo *studentRepository) GetProfileByUserID(userID string) (student.Profile, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if p, ok := repo.db.studentProfiles[userID]; ok {
		return *p, nil
	}
	return student.Profile{}, student.ErrNotFound
}

func (repo *studentRepository) GetProfileByParentCode(code string) (student.Profile, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, p := range repo.db.studentProfiles {
		if p.ParentCode == code {
			return *p, nil
		}
	}
	return student.Profile{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateProfileFields(userID string, up student.UpdateProfile) (student.Profile, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p, ok := repo.db.studentProfiles[userID]
	if !ok {
		return student.Profile{}, student.ErrNotFound
	}
	if up.SchoolName != nil {
		p.SchoolName = *up.SchoolName
	}
	if up.Board != nil {
		p.Board = *up.Board
	}
	if up.SubjectsInterested != nil {
		p.SubjectsInterested = *up.SubjectsInterested
	}
	return *p, nil
}
