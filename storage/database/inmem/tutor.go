package inmemdb

import (
	"github.com/tutormaven/backend/core/tutor"
)

type tutorRepository struct {
	db *DB
}

var _ tutor.Repository = (*tutorRepository)(nil) // interface compliance check

func NewTutorRepository(db *DB) tutor.Repository {
	return &tutorRepository{db: db}
}

func (repo *tutorRepository) CreateProfile(p tutor.Profile) (tutor.Profile, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.tutorProfiles[p.UserID] = &p
	return p, nil
}

func (repo *tutorRepository) GetProfileByUserID(userID string) (tutor.Profile, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if p, ok := repo.db.tutorProfiles[userID]; ok {
		return *p, nil
	}
	return tutor.Profile{}, tutor.ErrNotFound
}

func (repo *tutorRepository) QueryProfiles(subject string) ([]tutor.Profile, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	profiles := make([]tutor.Profile, 0, len(repo.db.tutorProfiles))
	for _, p := range repo.db.tutorProfiles {
		if subject != "" && !contains(p.Subjects, subject) {
			continue
		}
		profiles = append(profiles, *p)
	}
	return profiles, nil
}

func (repo *tutorRepository) QueryPendingVerifications() ([]tutor.Profile, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var profiles []tutor.Profile
	for _, p := range repo.db.tutorProfiles {
		if p.VerificationStatus == tutor.VerificationPending {
			profiles = append(profiles, *p)
		}
	}
	return profiles, nil
}

func (repo *tutorRepository) CountPendingVerifications() (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var n int
	for _, p := range repo.db.tutorProfiles {
		if p.VerificationStatus == tutor.VerificationPending {
			n++
		}
	}
	return n, nil
}

func (repo *tutorRepository) UpdateProfileFields(userID string, up tutor.UpdateProfile) (tutor.Profile, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p, ok := repo.db.tutorProfiles[userID]
	if !ok {
		return tutor.Profile{}, tutor.ErrNotFound
	}
	if up.Bio != nil {
		p.Bio = *up.Bio
	}
	if up.Subjects != nil {
		p.Subjects = *up.Subjects
	}
	if up.MonthlyFee != nil {
		p.MonthlyFee = *up.MonthlyFee
	}
	if up.Education != nil {
		p.Education = *up.Education
	}
	if up.CoachingAddress != nil {
		p.CoachingAddress = *up.CoachingAddress
	}
	if up.ContactNumber != nil {
		p.ContactNumber = *up.ContactNumber
	}
	if up.CoachingPhoto != nil {
		p.CoachingPhoto = *up.CoachingPhoto
	}
	if up.TeachingDays != nil {
		p.TeachingDays = *up.TeachingDays
	}
	if up.HoursPerDay != nil {
		p.HoursPerDay = *up.HoursPerDay
	}
	if up.Boards != nil {
		p.Boards = *up.Boards
	}
	return *p, nil
}

func (repo *tutorRepository) SetVerificationSubmission(userID, proof, phone string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p, ok := repo.db.tutorProfiles[userID]
	if !ok {
		return tutor.ErrNotFound
	}
	p.VerificationProof = proof
	p.VerificationPhone = phone
	p.VerificationStatus = tutor.VerificationPending
	return nil
}

func (repo *tutorRepository) ApproveVerification(userID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p, ok := repo.db.tutorProfiles[userID]
	if !ok {
		return tutor.ErrNotFound
	}
	p.IsVerified = true
	p.VerificationStatus = tutor.VerificationApproved
	return nil
}

func (repo *tutorRepository) SetVerificationStatus(userID, status string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p, ok := repo.db.tutorProfiles[userID]
	if !ok {
		return tutor.ErrNotFound
	}
	p.VerificationStatus = status
	return nil
}

func (repo *tutorRepository) SetBanner(userID, banner string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p, ok := repo.db.tutorProfiles[userID]
	if !ok {
		return tutor.ErrNotFound
	}
	p.VerificationBanner = banner
	return nil
}

func (repo *tutorRepository) QueryBanners() ([]tutor.Profile, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var profiles []tutor.Profile
	for _, p := range repo.db.tutorProfiles {
		if p.IsVerified && p.VerificationBanner != "" {
			profiles = append(profiles, *p)
		}
	}
	return profiles, nil
}

func (repo *tutorRepository) IncrementReachCount(userID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p, ok := repo.db.tutorProfiles[userID]
	if !ok {
		return tutor.ErrNotFound
	}
	p.ReachCount++
	return nil
}

func (repo *tutorRepository) IncrementSubscriberCount(userID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p, ok := repo.db.tutorProfiles[userID]
	if !ok {
		return tutor.ErrNotFound
	}
	p.SubscriberCount++
	return nil
}

func (repo *tutorRepository) CreateClass(c tutor.ClassTaught) (tutor.ClassTaught, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.classes[c.ID] = &c
	return c, nil
}

func (repo *tutorRepository) QueryClassesByTutor(tutorID string) ([]tutor.ClassTaught, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	classes := make([]tutor.ClassTaught, 0)
	for _, c := range repo.db.classes {
		if c.TutorID == tutorID {
			classes = append(classes, *c)
		}
	}
	return classes, nil
}

func (repo *tutorRepository) DeleteClass(id, tutorID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	c, ok := repo.db.classes[id]
	if !ok || c.TutorID != tutorID {
		return tutor.ErrClassNotFound
	}
	delete(repo.db.classes, id)
	return nil
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
