package user

import (
	"context"
	"net/http"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/usergraph/internal/errresponse"
	"github.com/SergeyParamoshkin/usergraph/internal/logger"
	"github.com/SergeyParamoshkin/usergraph/internal/userrequest"
)

type ctxKey int8

const ctxKeyUserID ctxKey = iota

// UserIDCtx middleware parses the "id" query parameter and puts it on the
// request context. A missing or non-integer id stops the request with 400.
func UserIDCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := userrequest.ParseID(r.URL.Query())
		if err != nil {
			if err := render.Render(w, r, errresponse.ErrInvalidRequest(err)); err != nil {
				logger.FromContext(r.Context()).Errorw("render failed", "error", err)
			}

			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUserID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userIDFromContext must only be called behind UserIDCtx.
func userIDFromContext(ctx context.Context) int {
	return ctx.Value(ctxKeyUserID).(int)
}
