package sqlxrepos

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/tutormaven/backend/core/tutor"
)

const (
	tutorProfileTable = "tutor_profile"
	classTaughtTable  = "class_taught"
)

var (
	tutorProfileColumns = []string{
		"id", "user_id", "bio", "subjects", "monthly_fee", "education",
		"coaching_address", "contact_number", "coaching_photo", "teaching_days",
		"hours_per_day", "boards", "is_verified", "verification_proof",
		"verification_phone", "verification_status", "verification_banner",
		"reach_count", "subscriber_count",
	}
	classTaughtColumns = []string{"id", "tutor_id", "class_range", "subjects"}
)

// tutorProfileRow mirrors tutor.Profile with pq array wrappers for scanning.
type tutorProfileRow struct {
	ID                 string         `db:"id"`
	UserID             string         `db:"user_id"`
	Bio                string         `db:"bio"`
	Subjects           pq.StringArray `db:"subjects"`
	MonthlyFee         float64        `db:"monthly_fee"`
	Education          string         `db:"education"`
	CoachingAddress    string         `db:"coaching_address"`
	ContactNumber      string         `db:"contact_number"`
	CoachingPhoto      string         `db:"coaching_photo"`
	TeachingDays       pq.StringArray `db:"teaching_days"`
	HoursPerDay        int            `db:"hours_per_day"`
	Boards             pq.StringArray `db:"boards"`
	IsVerified         bool           `db:"is_verified"`
	VerificationProof  string         `db:"verification_proof"`
	VerificationPhone  string         `db:"verification_phone"`
	VerificationStatus string         `db:"verification_status"`
	VerificationBanner string         `db:"verification_banner"`
	ReachCount         int            `db:"reach_count"`
	SubscriberCount    int            `db:"subscriber_count"`
}

func (r tutorProfileRow) toDomain() tutor.Profile {
	return tutor.Profile{
		ID:                 r.ID,
		UserID:             r.UserID,
		Bio:                r.Bio,
		Subjects:           r.Subjects,
		MonthlyFee:         r.MonthlyFee,
		Education:          r.Education,
		CoachingAddress:    r.CoachingAddress,
		ContactNumber:      r.ContactNumber,
		CoachingPhoto:      r.CoachingPhoto,
		TeachingDays:       r.TeachingDays,
		HoursPerDay:        r.HoursPerDay,
		Boards:             r.Boards,
		IsVerified:         r.IsVerified,
		VerificationProof:  r.VerificationProof,
		VerificationPhone:  r.VerificationPhone,
		VerificationStatus: r.VerificationStatus,
		VerificationBanner: r.VerificationBanner,
		ReachCount:         r.ReachCount,
		SubscriberCount:    r.SubscriberCount,
	}
}

type classTaughtRow struct {
	ID         string         `db:"id"`
	TutorID    string         `db:"tutor_id"`
	ClassRange string         `db:"class_range"`
	Subjects   pq.StringArray `db:"subjects"`
}

func (r classTaughtRow) toDomain() tutor.ClassTaught {
	return tutor.ClassTaught{ID: r.ID, TutorID: r.TutorID, ClassRange: r.ClassRange, Subjects: r.Subjects}
}

type tutorRepository struct {
	db *sqlx.DB
}

var _ tutor.Repository = (*tutorRepository)(nil) // interface compliance check

func NewTutorRepository(db *sqlx.DB) tutor.Repository {
	return &tutorRepository{db: db}
}

func (repo *tutorRepository) CreateProfile(p tutor.Profile) (tutor.Profile, error) {
	q, args, err := psql.Insert(tutorProfileTable).
		Columns(tutorProfileColumns...).
		Values(
			p.ID, p.UserID, p.Bio, pq.Array(p.Subjects), p.MonthlyFee, p.Education,
			p.CoachingAddress, p.ContactNumber, p.CoachingPhoto, pq.Array(p.TeachingDays),
			p.HoursPerDay, pq.Array(p.Boards), p.IsVerified, p.VerificationProof,
			p.VerificationPhone, p.VerificationStatus, p.VerificationBanner,
			p.ReachCount, p.SubscriberCount,
		).
		ToSql()
	if err != nil {
		return tutor.Profile{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.Exec(q, args...); err != nil {
		return tutor.Profile{}, errors.Wrap(err, "creating tutor profile")
	}
	return p, nil
}

func (repo *tutorRepository) GetProfileByUserID(userID string) (tutor.Profile, error) {
	q, args, err := psql.Select(tutorProfileColumns...).From(tutorProfileTable).Where("user_id = ?", userID).ToSql()
	if err != nil {
		return tutor.Profile{}, errors.Wrap(err, "building query")
	}
	var row tutorProfileRow
	if err = repo.db.Get(&row, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return tutor.Profile{}, tutor.ErrNotFound
		}
		return tutor.Profile{}, errors.Wrap(err, "getting tutor profile")
	}
	return row.toDomain(), nil
}

func (repo *tutorRepository) selectProfiles(builder interface {
	ToSql() (string, []interface{}, error)
}) ([]tutor.Profile, error) {
	q, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	rows := make([]tutorProfileRow, 0)
	if err = repo.db.Select(&rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying tutor profiles")
	}
	profiles := make([]tutor.Profile, 0, len(rows))
	for _, r := range rows {
		profiles = append(profiles, r.toDomain())
	}
	return profiles, nil
}

func (repo *tutorRepository) QueryProfiles(subject string) ([]tutor.Profile, error) {
	builder := psql.Select(tutorProfileColumns...).From(tutorProfileTable)
	if subject != "" {
		builder = builder.Where("? = ANY(subjects)", subject)
	}
	return repo.selectProfiles(builder)
}

func (repo *tutorRepository) QueryPendingVerifications() ([]tutor.Profile, error) {
	return repo.selectProfiles(
		psql.Select(tutorProfileColumns...).From(tutorProfileTable).
			Where("verification_status = ?", tutor.VerificationPending),
	)
}

func (repo *tutorRepository) CountPendingVerifications() (int, error) {
	q, args, err := psql.Select("COUNT(*)").From(tutorProfileTable).
		Where("verification_status = ?", tutor.VerificationPending).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	var n int
	if err = repo.db.Get(&n, q, args...); err != nil {
		return 0, errors.Wrap(err, "counting pending verifications")
	}
	return n, nil
}

func (repo *tutorRepository) UpdateProfileFields(userID string, up tutor.UpdateProfile) (tutor.Profile, error) {
	builder := psql.Update(tutorProfileTable).Where("user_id = ?", userID)
	changed := false
	if up.Bio != nil {
		builder = builder.Set("bio", *up.Bio)
		changed = true
	}
	if up.Subjects != nil {
		builder = builder.Set("subjects", pq.Array(*up.Subjects))
		changed = true
	}
	if up.MonthlyFee != nil {
		builder = builder.Set("monthly_fee", *up.MonthlyFee)
		changed = true
	}
	if up.Education != nil {
		builder = builder.Set("education", *up.Education)
		changed = true
	}
	if up.CoachingAddress != nil {
		builder = builder.Set("coaching_address", *up.CoachingAddress)
		changed = true
	}
	if up.ContactNumber != nil {
		builder = builder.Set("contact_number", *up.ContactNumber)
		changed = true
	}
	if up.CoachingPhoto != nil {
		builder = builder.Set("coaching_photo", *up.CoachingPhoto)
		changed = true
	}
	if up.TeachingDays != nil {
		builder = builder.Set("teaching_days", pq.Array(*up.TeachingDays))
		changed = true
	}
	if up.HoursPerDay != nil {
		builder = builder.Set("hours_per_day", *up.HoursPerDay)
		changed = true
	}
	if up.Boards != nil {
		builder = builder.Set("boards", pq.Array(*up.Boards))
		changed = true
	}
	if changed {
		q, args, err := builder.ToSql()
		if err != nil {
			return tutor.Profile{}, errors.Wrap(err, "building query")
		}
		if _, err = repo.db.Exec(q, args...); err != nil {
			return tutor.Profile{}, errors.Wrap(err, "updating tutor profile")
		}
	}
	return repo.GetProfileByUserID(userID)
}

func (repo *tutorRepository) setProfileFields(userID string, set func(sq.UpdateBuilder) sq.UpdateBuilder) error {
	q, args, err := set(psql.Update(tutorProfileTable)).Where("user_id = ?", userID).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	res, err := repo.db.Exec(q, args...)
	if err != nil {
		return errors.Wrap(err, "updating tutor profile")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tutor.ErrNotFound
	}
	return nil
}

func (repo *tutorRepository) SetVerificationSubmission(userID, proof, phone string) error {
	return repo.setProfileFields(userID, func(b sq.UpdateBuilder) sq.UpdateBuilder {
		return b.Set("verification_proof", proof).
			Set("verification_phone", phone).
			Set("verification_status", tutor.VerificationPending)
	})
}

func (repo *tutorRepository) ApproveVerification(userID string) error {
	return repo.setProfileFields(userID, func(b sq.UpdateBuilder) sq.UpdateBuilder {
		return b.Set("is_verified", true).Set("verification_status", tutor.VerificationApproved)
	})
}

func (repo *tutorRepository) SetVerificationStatus(userID, status string) error {
	return repo.setProfileFields(userID, func(b sq.UpdateBuilder) sq.UpdateBuilder {
		return b.Set("verification_status", status)
	})
}

func (repo *tutorRepository) SetBanner(userID, banner string) error {
	return repo.setProfileFields(userID, func(b sq.UpdateBuilder) sq.UpdateBuilder {
		return b.Set("verification_banner", banner)
	})
}

func (repo *tutorRepository) QueryBanners() ([]tutor.Profile, error) {
	return repo.selectProfiles(
		psql.Select(tutorProfileColumns...).From(tutorProfileTable).
			Where("is_verified AND verification_banner <> ''"),
	)
}

// Counter bumps run as a single UPDATE so concurrent bumps never lose writes.

func (repo *tutorRepository) IncrementReachCount(userID string) error {
	res, err := repo.db.Exec("UPDATE tutor_profile SET reach_count = reach_count + 1 WHERE user_id = $1", userID)
	if err != nil {
		return errors.Wrap(err, "incrementing reach count")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tutor.ErrNotFound
	}
	return nil
}

func (repo *tutorRepository) IncrementSubscriberCount(userID string) error {
	res, err := repo.db.Exec("UPDATE tutor_profile SET subscriber_count = subscriber_count + 1 WHERE user_id = $1", userID)
	if err != nil {
		return errors.Wrap(err, "incrementing subscriber count")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tutor.ErrNotFound
	}
	return nil
}

func (repo *tutorRepository) CreateClass(c tutor.ClassTaught) (tutor.ClassTaught, error) {
	q, args, err := psql.Insert(classTaughtTable).
		Columns(classTaughtColumns...).
		Values(c.ID, c.TutorID, c.ClassRange, pq.Array(c.Subjects)).
		ToSql()
	if err != nil {
		return tutor.ClassTaught{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.Exec(q, args...); err != nil {
		return tutor.ClassTaught{}, errors.Wrap(err, "creating class")
	}
	return c, nil
}

func (repo *tutorRepository) QueryClassesByTutor(tutorID string) ([]tutor.ClassTaught, error) {
	q, args, err := psql.Select(classTaughtColumns...).From(classTaughtTable).Where("tutor_id = ?", tutorID).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	rows := make([]classTaughtRow, 0)
	if err = repo.db.Select(&rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]tutor.ClassTaught, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, r.toDomain())
	}
	return classes, nil
}

func (repo *tutorRepository) DeleteClass(id, tutorID string) error {
	q, args, err := psql.Delete(classTaughtTable).Where("id = ? AND tutor_id = ?", id, tutorID).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	res, err := repo.db.Exec(q, args...)
	if err != nil {
		return errors.Wrap(err, "deleting class")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tutor.ErrClassNotFound
	}
	return nil
}
