package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nepalstay/internal/domain"
	"nepalstay/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSearchHandler_Envelope(t *testing.T) {
	svc, db := newTestService(t)
	owner := testutil.User(t, db, domain.RolePropertyOwner)
	for i := 0; i < 3; i++ {
		testutil.Property(t, db, owner.ID)
	}

	r := gin.New()
	NewHandler(svc).RegisterPublicRoutes(r.Group("/api"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/properties?limit=2&page=2", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Success bool              `json:"success"`
		Count   int               `json:"count"`
		Total   int64             `json:"total"`
		Page    int               `json:"page"`
		Pages   int               `json:"pages"`
		Data    []domain.Property `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, int64(3), body.Total)
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 2, body.Pages)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/properties/9999", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/properties?type=villa", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
