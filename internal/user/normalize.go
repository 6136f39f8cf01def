package user

import (
	"fmt"

	"github.com/SergeyParamoshkin/usergraph/internal/model"
)

// normalize brings loaded data in line with the store's rules: users
// sorted by unique id, friend lists sorted, deduplicated, without self or
// dangling references, and every link present on both sides. Each change
// is described in repairs.
func normalize(in []*model.User) ([]*model.User, []string) {
	var repairs []string

	seen := make(map[int]bool, len(in))
	users := make([]*model.User, 0, len(in))
	for _, u := range in {
		if u == nil {
			repairs = append(repairs, "dropped null user entry")
			continue
		}
		if seen[u.ID] {
			repairs = append(repairs, fmt.Sprintf("dropped duplicate user %d", u.ID))
			continue
		}
		seen[u.ID] = true
		users = append(users, u.Clone())
	}
	model.SortUsers(users)

	for _, u := range users {
		friends := make([]int, 0, len(u.Friends))
		have := make(map[int]bool, len(u.Friends))
		for _, f := range u.Friends {
			switch {
			case f == u.ID:
				repairs = append(repairs, fmt.Sprintf("removed self link from user %d", u.ID))
			case !seen[f]:
				repairs = append(repairs, fmt.Sprintf("removed link from user %d to missing user %d", u.ID, f))
			case have[f]:
				repairs = append(repairs, fmt.Sprintf("removed duplicate link %d from user %d", f, u.ID))
			default:
				have[f] = true
				friends = append(friends, f)
			}
		}
		u.Friends = friends
	}

	for _, u := range users {
		for _, f := range u.Friends {
			friend := users[indexOf(users, f)]
			if friend.AddFriend(u.ID) {
				repairs = append(repairs, fmt.Sprintf("added missing link %d -> %d", f, u.ID))
			}
		}
	}

	for _, u := range users {
		u.SortFriends()
	}

	return users, repairs
}
