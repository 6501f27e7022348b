package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tutormaven/backend/core/user"
)

const userTable = `"user"`

var userColumns = []string{"id", "email", "name", "role", "profile_picture", "password_hash", "created_at"}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	q, args, err := psql.Insert(userTable).
		Columns(userColumns...).
		Values(usr.ID, usr.Email, usr.Name, usr.Role, usr.ProfilePicture, usr.PasswordHash, usr.CreatedAt).
		ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.Exec(q, args...); err != nil {
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (repo *userRepository) getOne(pred interface{}, args ...interface{}) (user.User, error) {
	q, qargs, err := psql.Select(userColumns...).From(userTable).Where(pred, args...).ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}
	var usr user.User
	if err = repo.db.Get(&usr, q, qargs...); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(id string) (user.User, error) {
	return repo.getOne("id = ?", id)
}

func (repo *userRepository) GetUserByEmail(email string) (user.User, error) {
	return repo.getOne("email = ?", email)
}

func (repo *userRepository) GetAdminUser() (user.User, error) {
	return repo.getOne("role = ?", user.RoleAdmin)
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	q, args, err := psql.Select(userColumns...).From(userTable).OrderBy("created_at DESC").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	users := make([]user.User, 0)
	if err = repo.db.Select(&users, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return users, nil
}

func (repo *userRepository) CountUsers(role string) (int, error) {
	builder := psql.Select("COUNT(*)").From(userTable)
	if role != "" {
		builder = builder.Where("role = ?", role)
	}
	q, args, err := builder.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	var n int
	if err = repo.db.Get(&n, q, args...); err != nil {
		return 0, errors.Wrap(err, "counting users")
	}
	return n, nil
}

func (repo *userRepository) SetNameAndPicture(id, name, picture string) error {
	q, args, err := psql.Update(userTable).
		Set("name", name).
		Set("profile_picture", picture).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	res, err := repo.db.Exec(q, args...)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}
	return nil
}

// DeleteUserCascade removes the user and its directly referencing rows in one
// transaction. Fee and attendance rows reference subscriptions, not users;
// they are left behind when their subscription goes.
func (repo *userRepository) DeleteUserCascade(id string) error {
	tx, err := repo.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	statements := []struct {
		table string
		pred  string
	}{
		{"subscription", "student_id = $1 OR tutor_id = $1"},
		{"review", "student_id = $1 OR tutor_id = $1"},
		{"notification", "user_id = $1"},
		// tutor_profile, student_profile and class_taught cascade off the
		// user row via their FKs.
		{userTable, "id = $1"},
	}
	for _, st := range statements {
		if _, err = tx.Exec("DELETE FROM "+st.table+" WHERE "+st.pred, id); err != nil {
			return errors.Wrapf(err, "deleting from %s", st.table)
		}
	}
	return errors.Wrap(tx.Commit(), "committing tx")
}
