package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/SergeyParamoshkin/usergraph/internal/model"
)

type Client struct {
	http.Client
	Addr string
}

// APIError is returned for any non-200 response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

func (c *Client) Ping() (string, error) {
	body, err := c.get("/ping", nil)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

func (c *Client) ListUsers() ([]*model.User, error) {
	return c.getUsers("/getuserlist", nil)
}

func (c *Client) GetUser(id int) (*model.User, error) {
	body, err := c.get("/getuserbyid", url.Values{"id": {strconv.Itoa(id)}})
	if err != nil {
		return nil, err
	}

	u := &model.User{}
	if err := json.Unmarshal(body, u); err != nil {
		return nil, err
	}

	return u, nil
}

// CreateUser creates u (its friends are ignored) and returns the collection.
func (c *Client) CreateUser(u *model.User) ([]*model.User, error) {
	return c.getUsers("/createuser", url.Values{
		"id":        {strconv.Itoa(u.ID)},
		"firstname": {u.FirstName},
		"lastname":  {u.LastName},
		"status":    {u.Status},
	})
}

func (c *Client) UpdateUser(id int, status string, friends []int) ([]*model.User, error) {
	ids := make([]string, len(friends))
	for i, f := range friends {
		ids[i] = strconv.Itoa(f)
	}

	return c.getUsers("/updateuser", url.Values{
		"id":      {strconv.Itoa(id)},
		"status":  {status},
		"friends": {strings.Join(ids, ",")},
	})
}

func (c *Client) DeleteUser(id int) ([]*model.User, error) {
	return c.getUsers("/deleteuser", url.Values{"id": {strconv.Itoa(id)}})
}

func (c *Client) getUsers(path string, q url.Values) ([]*model.User, error) {
	body, err := c.get(path, q)
	if err != nil {
		return nil, err
	}

	var users []*model.User
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, err
	}

	return users, nil
}

func (c *Client) get(path string, q url.Values) ([]byte, error) {
	target := c.Addr + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
