package inmemdb

import (
	"github.com/tutormaven/backend/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(id string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(email string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Email == email {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetAdminUser() (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Role == user.RoleAdmin {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	users := make([]user.User, 0, len(repo.db.users))
	for _, usr := range repo.db.users {
		users = append(users, *usr)
	}
	return users, nil
}

func (repo *userRepository) CountUsers(role string) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if role == "" {
		return len(repo.db.users), nil
	}
	var n int
	for _, usr := range repo.db.users {
		if usr.Role == role {
			n++
		}
	}
	return n, nil
}

func (repo *userRepository) SetNameAndPicture(id, name, picture string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	usr, ok := repo.db.users[id]
	if !ok {
		return user.ErrNotFound
	}
	usr.Name = name
	usr.ProfilePicture = picture
	return nil
}

// DeleteUserCascade removes the user row and every row referencing it
// directly. Fee and attendance rows hang off subscriptions, not users, and
// are intentionally not chased here; they stay behind as orphans.
func (repo *userRepository) DeleteUserCascade(id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.users, id)
	delete(repo.db.tutorProfiles, id)
	delete(repo.db.studentProfiles, id)
	for cid, c := range repo.db.classes {
		if c.TutorID == id {
			delete(repo.db.classes, cid)
		}
	}
	for sid, s := range repo.db.subscriptions {
		if s.StudentID == id || s.TutorID == id {
			delete(repo.db.subscriptions, sid)
		}
	}
	for rid, r := range repo.db.reviews {
		if r.StudentID == id || r.TutorID == id {
			delete(repo.db.reviews, rid)
		}
	}
	for nid, n := range repo.db.notifications {
		if n.UserID == id {
			delete(repo.db.notifications, nid)
		}
	}
	return nil
}
