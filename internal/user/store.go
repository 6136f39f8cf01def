package user

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/usergraph/internal/model"
)

// Store owns the user collection and keeps friend links symmetric: B is
// in A's friends exactly when A is in B's. Every mutation runs on a copy
// of the collection which replaces the live one only after Storage.Save
// succeeds.
type Store struct {
	mu      sync.Mutex
	users   []*model.User
	storage Storage
	log     *zap.SugaredLogger
}

// NewStore loads the collection from storage and repairs anything that
// breaks the ordering or symmetry rules.
func NewStore(storage Storage, log *zap.SugaredLogger) (*Store, error) {
	users, err := storage.Load()
	if err != nil {
		return nil, err
	}

	users, repairs := normalize(users)
	for _, r := range repairs {
		log.Warnw("repaired stored user data", "repair", r)
	}

	return &Store{
		users:   users,
		storage: storage,
		log:     log,
	}, nil
}

// List returns the whole collection ordered by id.
func (s *Store) List() []*model.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	return model.CloneUsers(s.users)
}

func (s *Store) Get(id int) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.users, id)
	if i < 0 {
		return nil, ErrNotFound
	}

	return s.users[i].Clone(), nil
}

// Create inserts u with no friends. The id is chosen by the caller and
// must be unused.
func (s *Store) Create(u *model.User) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOf(s.users, u.ID) >= 0 {
		return nil, ErrDuplicateID
	}

	return s.mutate(func(users []*model.User) []*model.User {
		nu := u.Clone()
		nu.Friends = []int{}
		users = append(users, nu)
		model.SortUsers(users)

		return users
	})
}

// Update sets the status of user id and links it with every id in
// friendIDs that names another existing user. Unknown ids are ignored.
// Links are only ever added.
func (s *Store) Update(id int, status string, friendIDs []int) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOf(s.users, id) < 0 {
		return nil, ErrNotFound
	}

	return s.mutate(func(users []*model.User) []*model.User {
		target := users[indexOf(users, id)]
		target.Status = status

		for _, fid := range friendIDs {
			if fid == id {
				continue
			}
			fi := indexOf(users, fid)
			if fi < 0 {
				continue
			}
			friend := users[fi]
			target.AddFriend(fid)
			if friend.AddFriend(id) {
				friend.SortFriends()
			}
		}
		target.SortFriends()

		return users
	})
}

// Delete removes user id and every link pointing at it.
func (s *Store) Delete(id int) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOf(s.users, id) < 0 {
		return nil, ErrNotFound
	}

	return s.mutate(func(users []*model.User) []*model.User {
		i := indexOf(users, id)
		users = append(users[:i], users[i+1:]...)
		for _, u := range users {
			u.RemoveFriend(id)
		}

		return users
	})
}

// mutate applies fn to a copy of the collection, saves the result and
// only then makes it live. s.mu must be held.
func (s *Store) mutate(fn func(users []*model.User) []*model.User) ([]*model.User, error) {
	next := fn(model.CloneUsers(s.users))
	if err := s.storage.Save(next); err != nil {
		s.log.Errorw("failed to persist users", "error", err)

		return nil, err
	}
	s.users = next

	return model.CloneUsers(next), nil
}

// indexOf finds id in a collection sorted by id, or returns -1.
func indexOf(users []*model.User, id int) int {
	i := sort.Search(len(users), func(i int) bool { return users[i].ID >= id })
	if i < len(users) && users[i].ID == id {
		return i
	}

	return -1
}
