package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"pacas-inventario/logging"
	"pacas-inventario/models"
	"pacas-inventario/service"
)

// BundleController handles HTTP requests for bundles and the dashboard
type BundleController struct {
	service service.BundleServiceInterface
}

// NewBundleController creates a new BundleController
func NewBundleController(svc service.BundleServiceInterface) *BundleController {
	return &BundleController{
		service: svc,
	}
}

// GetDashboard handles GET /admin/dashboard
// Example response:
// {
//   "bundles": [{"bundle": {"id": 1, "name": "Paca enero", ...}, "metrics": {"cost_per_piece": "11", ...}}],
//   "summary": {"total_bundles": 1, "total_investment": "100", "total_estimated_profit": "71.5", "estimated_profit_margin": "71.5"},
//   "display": {"total_investment": "$100.00", ...}
// }
func (c *BundleController) GetDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dashboard, err := c.service.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, "GetDashboard", err)
		return
	}

	logging.Sugar.Debugf("✅ GetDashboard: %d bundles", len(dashboard.Bundles))
	writeJSON(w, http.StatusOK, dashboard)
}

// ListBundles handles GET /admin/bundles
func (c *BundleController) ListBundles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	bundles, err := c.service.List(r.Context())
	if err != nil {
		writeServiceError(w, "ListBundles", err)
		return
	}
	writeJSON(w, http.StatusOK, bundles)
}

// CreateBundle handles POST /admin/bundles
// Example request:
// POST /admin/bundles
// {
//   "name": "Paca enero",
//   "total_cost": 100,
//   "total_pieces": 10,
//   "additional_expenses": {"transport": 10, "cleaning": 0, "other": 0},
//   "classification": {"by_type": {"hombre": 4, "mujer": 6}, "by_quality": {"premium": 5, "regular": 5}}
// }
// Responds 201 with the stored bundle, or 400 with {"errors": [...]}
func (c *BundleController) CreateBundle(w http.ResponseWriter, r *http.Request) {
	logging.Sugar.Infof("📥 CreateBundle: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.BundleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logging.Sugar.Warnf("❌ CreateBundle: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	bundle, err := c.service.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, "CreateBundle", err)
		return
	}

	logging.Sugar.Infof("✅ CreateBundle: Created bundle id=%d", bundle.ID)
	writeJSON(w, http.StatusCreated, bundle)
}

// GetDefaults handles GET /admin/bundles/defaults
func (c *BundleController) GetDefaults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	defaults, err := c.service.NewBundleDefaults(r.Context())
	if err != nil {
		writeServiceError(w, "GetDefaults", err)
		return
	}
	writeJSON(w, http.StatusOK, defaults)
}

// GetBundle handles GET /admin/bundles/{id}
// Responds with {"bundle": {...}, "metrics": {...}, "display": {...}}
func (c *BundleController) GetBundle(w http.ResponseWriter, r *http.Request) {
	id, err := bundleIDFromPath(r.URL.Path, "")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	detail, err := c.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, "GetBundle", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// UpdateBundle handles PUT /admin/bundles/{id}; the body is a full bundle as in CreateBundle
func (c *BundleController) UpdateBundle(w http.ResponseWriter, r *http.Request) {
	logging.Sugar.Infof("📥 UpdateBundle: Received %s request to %s", r.Method, r.URL.Path)

	id, err := bundleIDFromPath(r.URL.Path, "")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req models.BundleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logging.Sugar.Warnf("❌ UpdateBundle: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	bundle, err := c.service.Update(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, "UpdateBundle", err)
		return
	}

	logging.Sugar.Infof("✅ UpdateBundle: Updated bundle id=%d", bundle.ID)
	writeJSON(w, http.StatusOK, bundle)
}

// DeleteBundle handles DELETE /admin/bundles/{id}
func (c *BundleController) DeleteBundle(w http.ResponseWriter, r *http.Request) {
	id, err := bundleIDFromPath(r.URL.Path, "")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := c.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, "DeleteBundle", err)
		return
	}

	logging.Sugar.Infof("✅ DeleteBundle: Deleted bundle id=%d", id)
	w.WriteHeader(http.StatusNoContent)
}
