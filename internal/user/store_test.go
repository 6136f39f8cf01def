package user

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/usergraph/internal/model"
)

type memStorage struct {
	users   []*model.User
	saves   int
	saveErr error
}

func (m *memStorage) Load() ([]*model.User, error) {
	return model.CloneUsers(m.users), nil
}

func (m *memStorage) Save(users []*model.User) error {
	if m.saveErr != nil {
		return &StorageError{Op: "write", Path: "mem", Err: m.saveErr}
	}
	m.saves++
	m.users = model.CloneUsers(users)

	return nil
}

func newTestStore(t *testing.T, users ...*model.User) (*Store, *memStorage) {
	t.Helper()

	storage := &memStorage{users: users}
	store, err := NewStore(storage, zap.NewNop().Sugar())
	require.NoError(t, err)

	return store, storage
}

func newUser(id int, friends ...int) *model.User {
	if friends == nil {
		friends = []int{}
	}

	return &model.User{ID: id, FirstName: "first", LastName: "last", Status: "offline", Friends: friends}
}

func ids(users []*model.User) []int {
	out := make([]int, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}

	return out
}

func friendsOf(t *testing.T, s *Store, id int) []int {
	t.Helper()

	u, err := s.Get(id)
	require.NoError(t, err)

	return u.Friends
}

// assertGraph checks ordering, set and symmetry rules over the whole
// collection.
func assertGraph(t *testing.T, users []*model.User) {
	t.Helper()

	byID := map[int]*model.User{}
	for i, u := range users {
		if i > 0 {
			require.Less(t, users[i-1].ID, u.ID, "collection not sorted by id")
		}
		byID[u.ID] = u
	}

	for _, u := range users {
		require.True(t, sort.IntsAreSorted(u.Friends), "friends of %d not sorted: %v", u.ID, u.Friends)
		seen := map[int]bool{}
		for _, f := range u.Friends {
			require.NotEqual(t, u.ID, f, "user %d befriends itself", u.ID)
			require.False(t, seen[f], "user %d lists %d twice", u.ID, f)
			seen[f] = true

			friend, ok := byID[f]
			require.True(t, ok, "user %d links missing user %d", u.ID, f)
			require.True(t, friend.HasFriend(u.ID), "link %d -> %d has no reverse", u.ID, f)
		}
	}
}

func TestCreate(t *testing.T) {
	store, storage := newTestStore(t, newUser(1), newUser(5))

	users, err := store.Create(&model.User{ID: 3, FirstName: "Ann", LastName: "Lee", Status: "online", Friends: []int{1}})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 3, 5}, ids(users))
	assert.Equal(t, []int{}, users[1].Friends, "new users start without friends")
	assert.Equal(t, "Ann", users[1].FirstName)
	assert.Equal(t, 1, storage.saves)
	assert.Equal(t, []int{1, 3, 5}, ids(storage.users))
}

func TestCreateDuplicate(t *testing.T) {
	store, storage := newTestStore(t, newUser(1, 2), newUser(2, 1))
	before := store.List()

	_, err := store.Create(newUser(2))
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, before, store.List())
	assert.Zero(t, storage.saves)
}

func TestGet(t *testing.T) {
	store, _ := newTestStore(t, newUser(1), newUser(2))

	u, err := store.Get(2)
	require.NoError(t, err)
	assert.Equal(t, 2, u.ID)

	_, err = store.Get(3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReturnedUsersAreCopies(t *testing.T) {
	store, _ := newTestStore(t, newUser(1, 2), newUser(2, 1))

	u, err := store.Get(1)
	require.NoError(t, err)
	u.Friends[0] = 99
	u.Status = "hacked"

	list := store.List()
	list[1].Friends = nil

	assert.Equal(t, []int{2}, friendsOf(t, store, 1))
	assert.Equal(t, []int{1}, friendsOf(t, store, 2))
	assert.Equal(t, "offline", store.List()[0].Status)
}

func TestUpdateLinksBothSides(t *testing.T) {
	store, _ := newTestStore(t, newUser(1), newUser(2, 4), newUser(3), newUser(4, 2))

	users, err := store.Update(1, "online", []int{4, 3, 99, 1})
	require.NoError(t, err)
	assertGraph(t, users)

	assert.Equal(t, "online", users[0].Status)
	assert.Equal(t, []int{3, 4}, friendsOf(t, store, 1))
	assert.Equal(t, []int{1}, friendsOf(t, store, 3))
	assert.Equal(t, []int{1, 2}, friendsOf(t, store, 4))
	assert.Equal(t, []int{4}, friendsOf(t, store, 2))
}

func TestUpdateSortsEveryTouchedList(t *testing.T) {
	store, _ := newTestStore(t, newUser(1), newUser(2), newUser(3), newUser(9))

	_, err := store.Update(3, "a", []int{9, 1})
	require.NoError(t, err)
	_, err = store.Update(2, "b", []int{9, 3})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 9}, friendsOf(t, store, 3))
	assert.Equal(t, []int{2, 3}, friendsOf(t, store, 9))
	assert.Equal(t, []int{3, 9}, friendsOf(t, store, 2))
}

func TestUpdateIdempotent(t *testing.T) {
	once, _ := newTestStore(t, newUser(1), newUser(2))
	repeated, _ := newTestStore(t, newUser(1), newUser(2))

	_, err := once.Update(1, "s", []int{2})
	require.NoError(t, err)
	_, err = repeated.Update(1, "s", []int{2, 2, 2})
	require.NoError(t, err)
	_, err = repeated.Update(1, "s", []int{2})
	require.NoError(t, err)

	assert.Equal(t, once.List(), repeated.List())
}

func TestUpdateStatusOnly(t *testing.T) {
	store, storage := newTestStore(t, newUser(1))

	users, err := store.Update(1, "offline", nil)
	require.NoError(t, err)
	assert.Equal(t, "offline", users[0].Status)
	assert.Equal(t, 1, storage.saves, "update persists even when nothing changed")
}

func TestUpdateNotFound(t *testing.T) {
	store, storage := newTestStore(t, newUser(1))

	_, err := store.Update(2, "online", []int{1})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []int{}, friendsOf(t, store, 1))
	assert.Zero(t, storage.saves)
}

func TestDelete(t *testing.T) {
	store, _ := newTestStore(t, newUser(1, 2, 3), newUser(2, 1, 3), newUser(3, 1, 2))

	users, err := store.Delete(2)
	require.NoError(t, err)
	assertGraph(t, users)

	assert.Equal(t, []int{1, 3}, ids(users))
	assert.Equal(t, []int{3}, friendsOf(t, store, 1))
	assert.Equal(t, []int{1}, friendsOf(t, store, 3))

	_, err = store.Get(2)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Delete(2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEndToEndFriendship(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Create(newUser(1))
	require.NoError(t, err)
	_, err = store.Create(newUser(2))
	require.NoError(t, err)

	_, err = store.Update(1, "online", []int{2})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, friendsOf(t, store, 1))
	assert.Equal(t, []int{1}, friendsOf(t, store, 2))

	_, err = store.Delete(2)
	require.NoError(t, err)
	assert.Equal(t, []int{}, friendsOf(t, store, 1))
}

func TestStorageFailureKeepsState(t *testing.T) {
	store, storage := newTestStore(t, newUser(1, 2), newUser(2, 1), newUser(3))
	before := store.List()
	storage.saveErr = errors.New("read-only file system")

	var storageErr *StorageError

	_, err := store.Create(newUser(4))
	assert.ErrorAs(t, err, &storageErr)

	_, err = store.Update(3, "online", []int{1, 2})
	assert.ErrorAs(t, err, &storageErr)

	_, err = store.Delete(1)
	assert.ErrorAs(t, err, &storageErr)

	assert.Equal(t, before, store.List())
	assert.Equal(t, before, storage.users)
}

func TestRandomOperationsKeepSymmetry(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	store, storage := newTestStore(t)

	for i := 0; i < 2000; i++ {
		id := rnd.Intn(12)
		var err error

		switch rnd.Intn(3) {
		case 0:
			_, err = store.Create(newUser(id))
			if err != nil {
				require.ErrorIs(t, err, ErrDuplicateID)
			}
		case 1:
			friends := make([]int, rnd.Intn(5))
			for j := range friends {
				friends[j] = rnd.Intn(14) - 1
			}
			_, err = store.Update(id, "s", friends)
			if err != nil {
				require.ErrorIs(t, err, ErrNotFound)
			}
		case 2:
			_, err = store.Delete(id)
			if err != nil {
				require.ErrorIs(t, err, ErrNotFound)
			}
		}

		assertGraph(t, store.List())
	}

	assert.Equal(t, store.List(), storage.users)
}
