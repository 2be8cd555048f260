package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var (
	errMissing = errors.New("order not found")
	errShort   = errors.New("insufficient stock")
	errInvalid = errors.New("invalid input")
)

func respond(t *testing.T, r *Responder, err error) (*httptest.ResponseRecorder, ProblemDetail) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/orders/o1", nil)
	r.RespondError(c, err)
	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestResponder_MapsWrappedSentinels(t *testing.T) {
	r := NewResponder("",
		MapNotFound(errMissing, "Order"),
		MapConflict(errShort),
		MapInvalid(errInvalid, "Invalid Input"),
	)

	rec, body := respond(t, r, fmt.Errorf("get: %w", errMissing))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	require.Equal(t, "Order not found", body.Message)
	require.Equal(t, "/orders/o1", body.Instance)

	rec, body = respond(t, r, fmt.Errorf("reserve line 2: %w", errShort))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "insufficient stock", body.Message)
	require.Equal(t, "reserve line 2: insufficient stock", body.Detail)

	rec, body = respond(t, r, fmt.Errorf("%w: price must be positive", errInvalid))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "Invalid Input", body.Message)
}

func TestResponder_UnknownErrorIsOpaque(t *testing.T) {
	rec, body := respond(t, NewResponder("https://api.example.com"), errors.New("pq: connection reset"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Something went wrong", body.Message)
	require.Empty(t, body.Detail)
	require.Equal(t, "https://api.example.com"+TypeInternal, body.Type)
}

func TestResponder_ProblemErrorsPassThrough(t *testing.T) {
	rec, body := respond(t, NewResponder(""), fmt.Errorf("auth: %w", ErrUnauthorized))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Unauthorized", body.Message)
}
