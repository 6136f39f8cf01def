package user

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/usergraph/internal/errresponse"
	"github.com/SergeyParamoshkin/usergraph/internal/logger"
	"github.com/SergeyParamoshkin/usergraph/internal/model"
	"github.com/SergeyParamoshkin/usergraph/internal/userrequest"
	"github.com/SergeyParamoshkin/usergraph/internal/userresponse"
)

// MutationObserver is told about every create, update and delete.
type MutationObserver interface {
	ObserveMutation(ctx context.Context, op string, err error)
}

// API serves the user endpoints over a Store.
type API struct {
	store    *Store
	observer MutationObserver
}

func NewAPI(store *Store, observer MutationObserver) *API {
	return &API{store: store, observer: observer}
}

// Routes mounts every user endpoint on r.
func (a *API) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/getuserlist", a.ListUsers)
		r.With(UserIDCtx).Get("/getuserbyid", a.GetUser)
		r.Get("/updateuser", a.UpdateUser)
		r.With(UserIDCtx).Get("/deleteuser", a.DeleteUser)
		r.Get("/createuser", a.CreateUser)
	})
}

func (a *API) ListUsers(w http.ResponseWriter, r *http.Request) {
	a.renderList(w, r, a.store.List())
}

// GetUser returns the user named by the id put on the context by UserIDCtx.
func (a *API) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := a.store.Get(userIDFromContext(r.Context()))
	if err != nil {
		a.renderError(w, r, err)

		return
	}

	if err := render.Render(w, r, userresponse.NewUserResponse(u)); err != nil {
		a.renderError(w, r, err)
	}
}

// CreateUser adds a user with no friends and returns the whole collection.
func (a *API) CreateUser(w http.ResponseWriter, r *http.Request) {
	data := &userrequest.CreateUserRequest{}
	if err := data.Bind(r); err != nil {
		a.renderError(w, r, err)

		return
	}

	users, err := a.store.Create(data.User)
	a.observe(r.Context(), "create", err)
	if err != nil {
		a.renderError(w, r, err)

		return
	}

	logger.FromContext(r.Context()).Infow("user created", "id", data.ID)
	a.renderList(w, r, users)
}

// UpdateUser sets the status of a user and links it with the listed
// friends.
func (a *API) UpdateUser(w http.ResponseWriter, r *http.Request) {
	data := &userrequest.UpdateUserRequest{}
	if err := data.Bind(r); err != nil {
		a.renderError(w, r, err)

		return
	}

	users, err := a.store.Update(data.ID, data.Status, data.FriendIDs)
	a.observe(r.Context(), "update", err)
	if err != nil {
		a.renderError(w, r, err)

		return
	}

	logger.FromContext(r.Context()).Infow("user updated", "id", data.ID, "friends", data.FriendIDs)
	a.renderList(w, r, users)
}

// DeleteUser removes a user and every link to it.
func (a *API) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := userIDFromContext(r.Context())

	users, err := a.store.Delete(id)
	a.observe(r.Context(), "delete", err)
	if err != nil {
		a.renderError(w, r, err)

		return
	}

	logger.FromContext(r.Context()).Infow("user deleted", "id", id)
	a.renderList(w, r, users)
}

func (a *API) observe(ctx context.Context, op string, err error) {
	if a.observer != nil {
		a.observer.ObserveMutation(ctx, op, err)
	}
}

func (a *API) renderList(w http.ResponseWriter, r *http.Request, users []*model.User) {
	if err := render.RenderList(w, r, userresponse.NewUserListResponse(users)); err != nil {
		a.renderError(w, r, err)
	}
}

// renderError maps store and request errors onto HTTP responses.
func (a *API) renderError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	var (
		resp       render.Renderer
		storageErr *StorageError
	)
	switch {
	case errors.Is(err, ErrNotFound):
		resp = errresponse.ErrNotFound(err)
	case errors.Is(err, ErrDuplicateID),
		errors.Is(err, userrequest.ErrMissingParameter),
		errors.Is(err, userrequest.ErrInvalidID):
		resp = errresponse.ErrInvalidRequest(err)
	case errors.As(err, &storageErr):
		log.Errorw("storage failure", "error", err)
		resp = errresponse.ErrInternal(err)
	default:
		log.Errorw("render failure", "error", err)
		resp = errresponse.ErrRender(err)
	}

	if err := render.Render(w, r, resp); err != nil {
		log.Errorw("render failed", "error", err)
	}
}
