package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pacas-inventario/app/router"
	"pacas-inventario/config"
)

const bundleBody = `{
  "name": "Paca enero",
  "total_cost": 100,
  "total_pieces": 10,
  "additional_expenses": {"transport": 10, "cleaning": 0, "other": 0},
  "classification": {
    "by_type": {"hombre": 4, "mujer": 6},
    "by_quality": {"premium": 5, "regular": 5}
  }
}`

func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Env:           "test",
		DisplayLocale: "en",
		BackupDir:     filepath.Join(dir, "backup"),
		Database:      config.DatabaseConfig{SQLitePath: filepath.Join(dir, "app.db")},
	}

	a, err := Initialize(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func do(t *testing.T, a *App, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)
	return rec
}

func createBundle(t *testing.T, a *App) int64 {
	t.Helper()
	rec := do(t, a, http.MethodPost, "/admin/bundles", bundleBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(t, created.ID)
	return created.ID
}

func TestPing(t *testing.T) {
	a := newTestApp(t)
	rec := do(t, a, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(router.RequestIDHeader))

	rec = do(t, a, http.MethodPost, "/ping", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestIDIsKept(t *testing.T) {
	a := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(router.RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(router.RequestIDHeader))
}

func TestCreateAndGetBundle(t *testing.T) {
	a := newTestApp(t)
	id := createBundle(t, a)

	rec := do(t, a, http.MethodGet, fmt.Sprintf("/admin/bundles/%d", id), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var detail struct {
		Bundle struct {
			Name           string `json:"name"`
			Classification struct {
				ByQuality json.RawMessage `json:"by_quality"`
			} `json:"classification"`
		} `json:"bundle"`
		Metrics struct {
			CostPerPiece     string `json:"cost_per_piece"`
			IdealProfit      string `json:"ideal_profit"`
			QualityBreakdown []struct {
				Quality    string `json:"quality"`
				IdealPrice string `json:"ideal_price"`
			} `json:"quality_breakdown"`
		} `json:"metrics"`
		Display map[string]string `json:"display"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))

	assert.Equal(t, "Paca enero", detail.Bundle.Name)
	assert.Equal(t, `{"premium":5,"regular":5}`, string(detail.Bundle.Classification.ByQuality))
	assert.Equal(t, "11", detail.Metrics.CostPerPiece)
	assert.Equal(t, "71.5", detail.Metrics.IdealProfit)
	require.Len(t, detail.Metrics.QualityBreakdown, 2)
	assert.Equal(t, "premium", detail.Metrics.QualityBreakdown[0].Quality)
	assert.Equal(t, "19.8", detail.Metrics.QualityBreakdown[0].IdealPrice)
	assert.Equal(t, "16.5", detail.Metrics.QualityBreakdown[1].IdealPrice)
	assert.Equal(t, "65.0%", detail.Display["ideal_profit_margin"])
}

func TestCreateBundleValidation(t *testing.T) {
	a := newTestApp(t)
	body := `{"name": "", "total_cost": 0, "total_pieces": 3,
	  "classification": {"by_type": {"hombre": 1}, "by_quality": {"premium": 3}}}`

	rec := do(t, a, http.MethodPost, "/admin/bundles", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{
		"name is required",
		"total cost must be greater than 0",
		"sum of pieces by type (1) must equal total pieces (3)",
	}, resp.Errors)

	rec = do(t, a, http.MethodPost, "/admin/bundles", `{"name": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAndDeleteBundle(t *testing.T) {
	a := newTestApp(t)
	id := createBundle(t, a)
	path := fmt.Sprintf("/admin/bundles/%d", id)

	updated := strings.Replace(bundleBody, `"Paca enero"`, `"Paca febrero"`, 1)
	rec := do(t, a, http.MethodPut, path, updated)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Paca febrero")

	rec = do(t, a, http.MethodPut, "/admin/bundles/9999", updated)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, a, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, a, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, a, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBundleRoutesRejectBadPaths(t *testing.T) {
	a := newTestApp(t)

	assert.Equal(t, http.StatusBadRequest, do(t, a, http.MethodGet, "/admin/bundles/abc", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, a, http.MethodGet, "/admin/bundles/1/unknown", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, a, http.MethodPatch, "/admin/bundles/1", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, a, http.MethodDelete, "/admin/bundles", "").Code)
}

func TestListAndDashboard(t *testing.T) {
	a := newTestApp(t)

	rec := do(t, a, http.MethodGet, "/admin/bundles", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	createBundle(t, a)
	createBundle(t, a)

	rec = do(t, a, http.MethodGet, "/admin/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var dashboard struct {
		Bundles []json.RawMessage `json:"bundles"`
		Summary struct {
			TotalBundles          int    `json:"total_bundles"`
			TotalInvestment       string `json:"total_investment"`
			TotalEstimatedProfit  string `json:"total_estimated_profit"`
			EstimatedProfitMargin string `json:"estimated_profit_margin"`
		} `json:"summary"`
		Display map[string]string `json:"display"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dashboard))
	assert.Len(t, dashboard.Bundles, 2)
	assert.Equal(t, 2, dashboard.Summary.TotalBundles)
	assert.Equal(t, "200", dashboard.Summary.TotalInvestment)
	assert.Equal(t, "143", dashboard.Summary.TotalEstimatedProfit)
	assert.Equal(t, "71.5", dashboard.Summary.EstimatedProfitMargin)
	assert.Equal(t, "$200.00", dashboard.Display["total_investment"])
}

func TestBundleDefaults(t *testing.T) {
	a := newTestApp(t)
	rec := do(t, a, http.MethodGet, "/admin/bundles/defaults", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
	  "additional_expenses": {"transport": "0", "cleaning": "0", "other": "0"},
	  "classification": {
	    "by_type": {"hombre": 0, "mujer": 0, "ninos": 0, "hogar": 0},
	    "by_quality": {"premium": 0, "regular": 0, "economica": 0, "rechazo": 0}
	  }
	}`, rec.Body.String())
}

func TestConfigGetAndMerge(t *testing.T) {
	a := newTestApp(t)

	rec := do(t, a, http.MethodGet, "/admin/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"profit_percentages":{"premium":"80","regular":"50","economica":"30","rechazo":"0"}`)

	rec = do(t, a, http.MethodPut, "/admin/config", `{"profit_percentages": {"premium": 90}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"profit_percentages":{"premium":"90","regular":"50","economica":"30","rechazo":"0"}`)
	assert.Contains(t, rec.Body.String(), `"default_expenses":{"transport":"0","cleaning":"0","other":"0"}`)

	rec = do(t, a, http.MethodPut, "/admin/config", `{"default_expenses": {"transport": -5}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, a, http.MethodPost, "/admin/config", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPriceSheetHTML(t *testing.T) {
	a := newTestApp(t)
	id := createBundle(t, a)

	rec := do(t, a, http.MethodGet, fmt.Sprintf("/admin/bundles/%d/price-sheet", id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="precios_paca_enero.html"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "Paca enero")
	assert.Contains(t, rec.Body.String(), "$19.80")

	rec = do(t, a, http.MethodGet, fmt.Sprintf("/admin/bundles/%d/price-sheet?format=bmp", id), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, a, http.MethodGet, "/admin/bundles/9999/price-sheet", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
