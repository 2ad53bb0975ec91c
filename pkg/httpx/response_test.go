package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/tablepos/pkg/httpx"
)

type occupancyBody struct {
	Kind     string `json:"kind"`
	Occupied []int  `json:"occupied"`
}

func TestJSON_setsHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.JSON(w, http.StatusOK, occupancyBody{Kind: "dine-in", Occupied: []int{2, 5}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestJSON_encodesBody(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.JSON(w, http.StatusCreated, occupancyBody{Kind: "takeaway", Occupied: []int{}})

	require.Equal(t, http.StatusCreated, w.Code)
	var body occupancyBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "takeaway", body.Kind)
	assert.NotNil(t, body.Occupied, "an empty floor encodes as [] not null")
}

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.JSONError(w, http.StatusConflict, "slot is occupied: dine-in 3")

	require.Equal(t, http.StatusConflict, w.Code)
	var body httpx.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "slot is occupied: dine-in 3", body.Error)
}
