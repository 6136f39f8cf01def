package errresponse

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderStatusCodes(t *testing.T) {
	cause := errors.New("boom")

	testCases := []struct {
		Description    string
		Renderer       render.Renderer
		ExpectedStatus int
		ExpectedError  string
	}{
		{"invalid request", ErrInvalidRequest(cause), http.StatusBadRequest, "boom"},
		{"not found", ErrNotFound(cause), http.StatusNotFound, "boom"},
		{"internal hides cause", ErrInternal(cause), http.StatusInternalServerError, ""},
		{"render", ErrRender(cause), http.StatusUnprocessableEntity, "boom"},
	}

	for _, tc := range testCases {
		t.Run(tc.Description, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			require.NoError(t, render.Render(w, r, tc.Renderer))
			assert.Equal(t, tc.ExpectedStatus, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["status"])
			if tc.ExpectedError == "" {
				assert.NotContains(t, body, "error")
			} else {
				assert.Equal(t, tc.ExpectedError, body["error"])
			}
		})
	}
}
