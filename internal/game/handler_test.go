package game

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"romhub/pkg/models"
)

func TestHandlerRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo, db := seededRepo(t)

	r := gin.New()
	NewHandler(repo).RegisterRoutes(r.Group(""))

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	w := get(fmt.Sprintf("/games/%d", gameID(t, db, "Secret of Mana")))
	require.Equal(t, http.StatusOK, w.Code)
	var g models.GameWithReleases
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &g))
	require.Len(t, g.Releases, 1)
	assert.Equal(t, 1, g.Releases[0].Revision)

	w = get(fmt.Sprintf("/releases/%d/roms", g.Releases[0].ID))
	require.Equal(t, http.StatusOK, w.Code)
	var roms struct {
		Items []models.Rom `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &roms))
	require.Len(t, roms.Items, 1)
	assert.Equal(t, "Secret of Mana (Europe) (Rev 1).sfc", roms.Items[0].Title)

	assert.Equal(t, http.StatusNotFound, get("/games/9999").Code)
	assert.Equal(t, http.StatusBadRequest, get("/games/zero").Code)
	assert.Equal(t, http.StatusBadRequest, get("/releases/-1/roms").Code)
}
