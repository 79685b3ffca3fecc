package router

import (
	"net/http"
	"strings"

	"pacas-inventario/app/controller"
)

type Controllers struct {
	Bundle     *controller.BundleController
	Config     *controller.ConfigController
	PriceSheet *controller.PriceSheetController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// SetupRoutes registers every route on a new mux and wraps it with request logging
func SetupRoutes(controllers *Controllers) http.Handler {
	mux := http.NewServeMux()

	// Ping endpoint
	mux.HandleFunc("/ping", pingHandler)

	// Dashboard: bundles with metrics and the portfolio summary
	mux.HandleFunc("/admin/dashboard", controllers.Bundle.GetDashboard)

	// List and create bundles
	mux.HandleFunc("/admin/bundles", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			controllers.Bundle.ListBundles(w, r)
		case http.MethodPost:
			controllers.Bundle.CreateBundle(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Pre-fill values for a new bundle (must be registered before the /:id route)
	mux.HandleFunc("/admin/bundles/defaults", controllers.Bundle.GetDefaults)

	// Bundle by id - GET (detail with metrics), PUT (full update), DELETE
	// and GET /admin/bundles/:id/price-sheet
	mux.HandleFunc("/admin/bundles/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/admin/bundles/"), "/")

		if strings.HasSuffix(path, "/price-sheet") {
			controllers.PriceSheet.GetPriceSheet(w, r)
			return
		}
		if strings.Contains(path, "/") {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}

		switch r.Method {
		case http.MethodGet:
			controllers.Bundle.GetBundle(w, r)
		case http.MethodPut:
			controllers.Bundle.UpdateBundle(w, r)
		case http.MethodDelete:
			controllers.Bundle.DeleteBundle(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Pricing config - GET (current) and PUT (merge update)
	mux.HandleFunc("/admin/config", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			controllers.Config.GetConfig(w, r)
		case http.MethodPut:
			controllers.Config.UpdateConfig(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	return RequestLogger(mux)
}
