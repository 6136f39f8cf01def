package model

import "sort"

// User data model. Friends holds the ids of linked users, kept sorted
// ascending and free of duplicates and of the owner's own id.
type User struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Status    string `json:"status"`
	Friends   []int  `json:"friends"`
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	c := *u
	c.Friends = make([]int, len(u.Friends))
	copy(c.Friends, u.Friends)

	return &c
}

// HasFriend reports whether id is in u.Friends.
func (u *User) HasFriend(id int) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}

	return false
}

// AddFriend appends id unless it is already present or is u's own id.
// It reports whether Friends changed. Callers sort afterwards.
func (u *User) AddFriend(id int) bool {
	if id == u.ID || u.HasFriend(id) {
		return false
	}
	u.Friends = append(u.Friends, id)

	return true
}

// RemoveFriend drops id from u.Friends and reports whether it was there.
func (u *User) RemoveFriend(id int) bool {
	for i, f := range u.Friends {
		if f == id {
			u.Friends = append(u.Friends[:i], u.Friends[i+1:]...)

			return true
		}
	}

	return false
}

func (u *User) SortFriends() {
	sort.Ints(u.Friends)
}

// CloneUsers deep copies a collection.
func CloneUsers(users []*User) []*User {
	out := make([]*User, len(users))
	for i, u := range users {
		out[i] = u.Clone()
	}

	return out
}

// SortUsers orders users ascending by ID.
func SortUsers(users []*User) {
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
}
