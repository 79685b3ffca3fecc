package controller

import (
	"fmt"
	"net/http"

	"pacas-inventario/logging"
	"pacas-inventario/models"
	"pacas-inventario/service"
)

// PriceSheetController handles price sheet downloads
type PriceSheetController struct {
	service service.PriceSheetServiceInterface
}

// NewPriceSheetController creates a new PriceSheetController
func NewPriceSheetController(svc service.PriceSheetServiceInterface) *PriceSheetController {
	return &PriceSheetController{
		service: svc,
	}
}

// GetPriceSheet handles GET /admin/bundles/{id}/price-sheet?format=html|pdf|png
// format defaults to html
func (c *PriceSheetController) GetPriceSheet(w http.ResponseWriter, r *http.Request) {
	logging.Sugar.Infof("📥 GetPriceSheet: Received %s request to %s", r.Method, r.URL.String())

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := bundleIDFromPath(r.URL.Path, "price-sheet")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "html"
	}

	var (
		sheet       *models.PriceSheet
		contentType string
		disposition = "inline"
	)
	switch format {
	case "html":
		sheet, err = c.service.RenderHTML(r.Context(), id)
		contentType = "text/html; charset=utf-8"
	case "pdf":
		sheet, err = c.service.GeneratePDF(r.Context(), id)
		contentType = "application/pdf"
		disposition = "attachment"
	case "png":
		sheet, err = c.service.GeneratePNG(r.Context(), id)
		contentType = "image/png"
	default:
		http.Error(w, "format must be html, pdf or png", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeServiceError(w, "GetPriceSheet", err)
		return
	}

	logging.Sugar.Infof("✅ GetPriceSheet: Rendered %s (%d bytes)", sheet.FileName, len(sheet.Content))
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`%s; filename="%s"`, disposition, sheet.FileName))
	w.WriteHeader(http.StatusOK)
	w.Write(sheet.Content)
}
