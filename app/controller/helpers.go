package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"pacas-inventario/logging"
	"pacas-inventario/repository"
	"pacas-inventario/service"
)

// writeJSON writes v as a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Sugar.Errorf("❌ Error encoding response: %v", err)
	}
}

// writeServiceError maps service errors to HTTP responses:
// validation -> 400 with the list of errors, not found -> 404, everything else -> 500
func writeServiceError(w http.ResponseWriter, op string, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		logging.Sugar.Warnf("❌ %s: Validation failed: %v", op, ve)
		writeJSON(w, http.StatusBadRequest, ve)
	case errors.Is(err, repository.ErrBundleNotFound):
		logging.Sugar.Infof("❌ %s: %v", op, err)
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		logging.Sugar.Errorf("❌ %s: %v", op, err)
		http.Error(w, fmt.Sprintf("%s failed: %v", op, err), http.StatusInternalServerError)
	}
}

// bundleIDFromPath extracts the id from /admin/bundles/{id} or /admin/bundles/{id}/{suffix}
func bundleIDFromPath(path string, suffix string) (int64, error) {
	rest := strings.TrimPrefix(path, "/admin/bundles/")
	if suffix != "" {
		rest = strings.TrimSuffix(rest, "/"+suffix)
	}
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return 0, fmt.Errorf("bundle id parameter is required")
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid bundle id parameter")
	}
	return id, nil
}
