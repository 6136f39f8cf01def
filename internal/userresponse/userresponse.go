package userresponse

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/usergraph/internal/model"
)

// UserResponse is the response payload for the User data model.
type UserResponse struct {
	*model.User
}

func NewUserResponse(user *model.User) *UserResponse {
	return &UserResponse{User: user}
}

func NewUserListResponse(users []*model.User) []render.Renderer {
	list := []render.Renderer{}
	for _, user := range users {
		list = append(list, NewUserResponse(user))
	}

	return list
}

// Render makes sure friends goes out as [] rather than null.
func (rd *UserResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if rd.Friends == nil {
		rd.Friends = []int{}
	}

	return nil
}
