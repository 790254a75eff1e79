package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var r Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	return r
}

func TestEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Success(c, gin.H{"n": 1})
	assert.Equal(t, http.StatusOK, w.Code)
	r := decode(t, w)
	assert.Equal(t, 0, r.Code)
	assert.Equal(t, "success", r.Message)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	ErrorWithDetail(c, http.StatusUnprocessableEntity, "malformed dataset", errors.New("missing Year"), gin.H{"missing": []string{"Year"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	r = decode(t, w)
	assert.Equal(t, http.StatusUnprocessableEntity, r.Code)
	assert.Equal(t, "missing Year", r.Error)
	assert.NotNil(t, r.Data)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	NotFound(c, "dataset not found")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, decode(t, w).Error)
}
