// Package userrequest parses the query-string payloads of the user
// endpoints.
package userrequest

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/SergeyParamoshkin/usergraph/internal/model"
)

var (
	ErrMissingParameter = errors.New("missing required parameter")
	ErrInvalidID        = errors.New("invalid user id")
)

// ParseID reads the mandatory integer "id" parameter.
func ParseID(q url.Values) (int, error) {
	raw := q.Get("id")
	if raw == "" {
		return 0, fmt.Errorf("%w: id", ErrMissingParameter)
	}
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}

	return id, nil
}

// ParseFriendIDs splits a comma-separated id list. Entries that are not
// integers are skipped.
func ParseFriendIDs(s string) []int {
	ids := []int{}
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids
}

// CreateUserRequest is the payload of /createuser.
type CreateUserRequest struct {
	*model.User
}

// Bind fills the request from the query string; id, firstname, lastname
// and status are all required.
func (c *CreateUserRequest) Bind(r *http.Request) error {
	q := r.URL.Query()

	id, err := ParseID(q)
	if err != nil {
		return err
	}

	var missing []string
	for _, key := range []string{"firstname", "lastname", "status"} {
		if q.Get(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingParameter, strings.Join(missing, ", "))
	}

	c.User = &model.User{
		ID:        id,
		FirstName: q.Get("firstname"),
		LastName:  q.Get("lastname"),
		Status:    q.Get("status"),
		Friends:   []int{},
	}

	return nil
}

// UpdateUserRequest is the payload of /updateuser. Friends may be absent;
// malformed entries in it are dropped.
type UpdateUserRequest struct {
	ID        int
	Status    string
	FriendIDs []int
}

func (u *UpdateUserRequest) Bind(r *http.Request) error {
	q := r.URL.Query()

	id, err := ParseID(q)
	if err != nil {
		return err
	}
	if _, ok := q["status"]; !ok {
		return fmt.Errorf("%w: status", ErrMissingParameter)
	}

	u.ID = id
	u.Status = q.Get("status")
	u.FriendIDs = ParseFriendIDs(q.Get("friends"))

	return nil
}
