package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/PlateCut/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func validRequest() model.PackRequest {
	return model.PackRequest{
		Pieces: []model.PieceSpec{
			{PartCode: "KP800300SSS", Width: 800, Height: 300, Quantity: 5, Material: "SSS"},
			{PartCode: "KP600150SSS", Width: 600, Height: 150, Quantity: 2, Material: "SSS"},
		},
		StockWidth:  2440,
		StockHeight: 1220,
		Kerf:        3,
		Grain:       model.GrainNone,
	}
}

func TestHealthz(t *testing.T) {
	router := New()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestPack_ValidRequest(t *testing.T) {
	router := New()

	w := postJSON(t, router, "/api/pack", validRequest())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result model.PackResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	assert.Equal(t, 7, result.PlacedCount())
	assert.Empty(t, result.Skipped)
	assert.Greater(t, result.OverallEfficiency, 0.0)
	assert.LessOrEqual(t, result.OverallEfficiency, 1.0)
}

func TestPack_InvalidRequestIs400(t *testing.T) {
	router := New()

	req := validRequest()
	req.Kerf = -1
	w := postJSON(t, router, "/api/pack", req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "kerf")
}

func TestPack_MalformedBodyIs400(t *testing.T) {
	router := New()

	httpReq := httptest.NewRequest(http.MethodPost, "/api/pack", strings.NewReader("{nope"))
	httpReq.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httpReq)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPack_UnknownGrainIs400(t *testing.T) {
	router := New()

	body := `{"pieces":[],"stock_width_mm":2440,"stock_height_mm":1220,"kerf_mm":3,"grain":"diagonal"}`
	httpReq := httptest.NewRequest(http.MethodPost, "/api/pack", strings.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httpReq)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPack_OversizedPieceIsSkippedNot400(t *testing.T) {
	router := New()

	req := validRequest()
	req.Pieces = append(req.Pieces, model.PieceSpec{
		PartCode: "KP30003000SSS", Width: 3000, Height: 3000, Quantity: 1, Material: "SSS",
	})
	w := postJSON(t, router, "/api/pack", req)
	require.Equal(t, http.StatusOK, w.Code)

	var result model.PackResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "KP30003000SSS", result.Skipped[0].PartCode)
	assert.Contains(t, result.Skipped[0].Reason, "exceeds")
}

func TestVerifyEndpoint(t *testing.T) {
	router := New()

	w := postJSON(t, router, "/api/pack/verify", validRequest())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response struct {
		Sound      bool              `json:"sound"`
		Violations []json.RawMessage `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Sound)
	assert.Empty(t, response.Violations)
}

func TestPackPDF(t *testing.T) {
	router := New()

	w := postJSON(t, router, "/api/pack/pdf", validRequest())
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "cutting-diagrams.pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestPackPDF_NoSheetsIs422(t *testing.T) {
	router := New()

	req := validRequest()
	req.Pieces = nil
	w := postJSON(t, router, "/api/pack/pdf", req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPackLabels(t *testing.T) {
	router := New()

	w := postJSON(t, router, "/api/pack/labels", validRequest())
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestPackCutlist(t *testing.T) {
	router := New()

	w := postJSON(t, router, "/api/pack/cutlist", validRequest())
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	// Header plus seven placements
	assert.Len(t, lines, 8)
}

func TestPackReport(t *testing.T) {
	router := New()

	w := postJSON(t, router, "/api/pack/report", validRequest())
	require.Equal(t, http.StatusOK, w.Code)

	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Sheet Utilization")
}
