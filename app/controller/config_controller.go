package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"pacas-inventario/logging"
	"pacas-inventario/models"
	"pacas-inventario/service"
)

// ConfigController handles HTTP requests for the pricing config
type ConfigController struct {
	service service.ConfigServiceInterface
}

// NewConfigController creates a new ConfigController
func NewConfigController(svc service.ConfigServiceInterface) *ConfigController {
	return &ConfigController{
		service: svc,
	}
}

// GetConfig handles GET /admin/config
// Example response:
// {
//   "profit_percentages": {"premium": "80", "regular": "50", "economica": "30", "rechazo": "0"},
//   "default_expenses": {"transport": "0", "cleaning": "0", "other": "0"},
//   "updated_at": "2024-05-01T10:15:00Z"
// }
func (c *ConfigController) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := c.service.Get(r.Context())
	if err != nil {
		writeServiceError(w, "GetConfig", err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// UpdateConfig handles PUT /admin/config. Keys not present keep their value.
// Example request:
// PUT /admin/config
// {"profit_percentages": {"premium": 90}, "default_expenses": {"transport": 15}}
func (c *ConfigController) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	logging.Sugar.Infof("📥 UpdateConfig: Received %s request to %s", r.Method, r.URL.Path)

	var req models.PricingConfigUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logging.Sugar.Warnf("❌ UpdateConfig: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	cfg, err := c.service.Update(r.Context(), req)
	if err != nil {
		writeServiceError(w, "UpdateConfig", err)
		return
	}

	logging.Sugar.Infof("✅ UpdateConfig: Config updated")
	writeJSON(w, http.StatusOK, cfg)
}
