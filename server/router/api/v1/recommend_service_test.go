package v1

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestUserUUIDValidation(t *testing.T) {
	svc := NewAPIV1Service(nil, nil, nil)

	tests := []struct {
		name string
		uuid string
	}{
		{"empty", ""},
		{"garbage", "not-a-uuid"},
		{"truncated", "0e3c3095-0ecb-454c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(t, http.MethodPost, "/api/v1/users/"+tt.uuid+"/candidates", "")
			c.SetParamNames("uuid")
			c.SetParamValues(tt.uuid)

			err := svc.GenerateCandidates(c)
			require.Error(t, err)
			httpErr, ok := err.(*echo.HTTPError)
			require.True(t, ok)
			require.Equal(t, http.StatusBadRequest, httpErr.Code)
		})
	}
}

func TestListCandidatesInvalidLimit(t *testing.T) {
	svc := NewAPIV1Service(nil, nil, nil)

	for _, limit := range []string{"abc", "-1", "1.5"} {
		c, _ := newTestContext(t, http.MethodGet, "/api/v1/users/x/candidates?limit="+limit, "")
		c.SetParamNames("uuid")
		c.SetParamValues("0e3c3095-0ecb-454c-9d59-0271c4c65a9d")

		err := svc.ListCandidates(c)
		require.Error(t, err, "limit=%s", limit)
		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		require.Equal(t, http.StatusBadRequest, httpErr.Code)
	}
}

func TestRecordSwipeValidation(t *testing.T) {
	svc := NewAPIV1Service(nil, nil, nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"bad uuid", `{"uuid": "nope", "item_id": "abc", "direction": "left"}`},
		{"missing item", `{"uuid": "0e3c3095-0ecb-454c-9d59-0271c4c65a9d", "direction": "left"}`},
		{"bad direction", `{"uuid": "0e3c3095-0ecb-454c-9d59-0271c4c65a9d", "item_id": "abc", "direction": "up"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(t, http.MethodPost, "/api/v1/swipes", tt.body)
			err := svc.RecordSwipe(c)
			require.Error(t, err)
			httpErr, ok := err.(*echo.HTTPError)
			require.True(t, ok)
			require.Equal(t, http.StatusBadRequest, httpErr.Code)
		})
	}
}
