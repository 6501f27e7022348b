package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/tutormaven/backend/core/student"
)

const studentProfileTable = "student_profile"

var studentProfileColumns = []string{"id", "user_id", "school_name", "board", "subjects_interested", "parent_code"}

type studentProfileRow struct {
	ID                 string         `db:"id"`
	UserID             string         `db:"user_id"`
	SchoolName         string         `db:"school_name"`
	Board              string         `db:"board"`
	SubjectsInterested pq.StringArray `db:"subjects_interested"`
	ParentCode         string         `db:"parent_code"`
}

func (r studentProfileRow) toDomain() student.Profile {
	return student.Profile{
		ID:                 r.ID,
		UserID:             r.UserID,
		SchoolName:         r.SchoolName,
		Board:              r.Board,
		SubjectsInterested: r.SubjectsInterested,
		ParentCode:         r.ParentCode,
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateProfile(p student.Profile) (student.Profile, error) {
	q, args, err := psql.Insert(studentProfileTable).
		Columns(studentProfileColumns...).
		Values(p.ID, p.UserID, p.SchoolName, p.Board, pq.Array(p.SubjectsInterested), p.ParentCode).
		ToSql()
	if err != nil {
		return student.Profile{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.Exec(q, args...); err != nil {
		return student.Profile{}, errors.Wrap(err, "creating student profile")
	}
	return p, nil
}

func (repo *studentRepository) getOne(pred interface{}, args ...interface{}) (student.Profile, error) {
	q, qargs, err := psql.Select(studentProfileColumns...).From(studentProfileTable).Where(pred, args...).ToSql()
	if err != nil {
		return student.Profile{}, errors.Wrap(err, "building query")
	}
	var row studentProfileRow
	if err = repo.db.Get(&row, q, qargs...); err != nil {
		if err == sql.ErrNoRows {
			return student.Profile{}, student.ErrNotFound
		}
		return student.Profile{}, errors.Wrap(err, "getting student profile")
	}
	return row.toDomain(), nil
}

func (repo *studentRepository) GetProfileByUserID(userID string) (student.Profile, error) {
	return repo.getOne("user_id = ?", userID)
}

func (repo *studentRepository) GetProfileByParentCode(code string) (student.Profile, error) {
	return repo.getOne("parent_code = ?", code)
}

func (repo *studentRepository) UpdateProfileFields(userID string, up student.UpdateProfile) (student.Profile, error) {
	builder := psql.Update(studentProfileTable).Where("user_id = ?", userID)
	changed := false
	if up.SchoolName != nil {
		builder = builder.Set("school_name", *up.SchoolName)
		changed = true
	}
	if up.Board != nil {
		builder = builder.Set("board", *up.Board)
		changed = true
	}
	if up.SubjectsInterested != nil {
		builder = builder.Set("subjects_interested", pq.Array(*up.SubjectsInterested))
		changed = true
	}
	if changed {
		q, args, err := builder.ToSql()
		if err != nil {
			return student.Profile{}, errors.Wrap(err, "building query")
		}
		if _, err = repo.db.Exec(q, args...); err != nil {
			return student.Profile{}, errors.Wrap(err, "updating student profile")
		}
	}
	return repo.GetProfileByUserID(userID)
}
