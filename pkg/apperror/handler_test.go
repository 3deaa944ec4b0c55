package apperror

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	e.HTTPErrorHandler(err, c)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, "response must carry an error envelope")
	return rec, errObj
}

func TestHTTPErrorHandler_AppError(t *testing.T) {
	rec, errObj := doRequest(t, ErrSyncInProgress)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "sync_in_progress", errObj["code"])
}

func TestHTTPErrorHandler_EchoError(t *testing.T) {
	rec, errObj := doRequest(t, echo.NewHTTPError(http.StatusNotFound, "route missing"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errObj["code"])
	assert.Equal(t, "route missing", errObj["message"])
}

func TestHTTPErrorHandler_UnknownError(t *testing.T) {
	rec, errObj := doRequest(t, assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", errObj["code"])
}
