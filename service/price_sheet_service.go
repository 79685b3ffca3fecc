package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"pacas-inventario/logging"
	"pacas-inventario/models"
	"pacas-inventario/pricing"
	"pacas-inventario/repository"
	"pacas-inventario/utils"
)

//go:embed templates/price_sheet.html
var templateFiles embed.FS

var priceSheetTemplate = template.Must(template.ParseFS(templateFiles, "templates/price_sheet.html"))

// Chrome work for a single sheet is bounded by this timeout
const renderTimeout = 30 * time.Second

// PriceSheetServiceInterface defines the contract for price sheet rendering
type PriceSheetServiceInterface interface {
	RenderHTML(ctx context.Context, bundleID int64) (*models.PriceSheet, error)
	GeneratePDF(ctx context.Context, bundleID int64) (*models.PriceSheet, error)
	GeneratePNG(ctx context.Context, bundleID int64) (*models.PriceSheet, error)
}

// PriceSheetService renders printable price sheets for bundles
type PriceSheetService struct {
	bundles    repository.BundleRepositoryInterface
	config     repository.ConfigRepositoryInterface
	formatter  *utils.Formatter
	chromePath string
}

// NewPriceSheetService creates a new PriceSheetService.
// chromePath may be empty, in which case common install locations are tried.
func NewPriceSheetService(
	bundles repository.BundleRepositoryInterface,
	config repository.ConfigRepositoryInterface,
	formatter *utils.Formatter,
	chromePath string,
) *PriceSheetService {
	if formatter == nil {
		formatter = utils.DefaultFormatter()
	}
	return &PriceSheetService{
		bundles:    bundles,
		config:     config,
		formatter:  formatter,
		chromePath: chromePath,
	}
}

// Ensure PriceSheetService implements PriceSheetServiceInterface
var _ PriceSheetServiceInterface = (*PriceSheetService)(nil)

// DetectChromePath returns the configured Chrome/Chromium executable if it exists,
// otherwise the first one found in common installation paths, or ""
func DetectChromePath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

type priceSheetRow struct {
	Label            string
	Pieces           string
	ProfitPercentage string
	MinimumPrice     string
	IdealPrice       string
}

type priceSheetData struct {
	Name                  string
	Pieces                string
	CreatedAt             string
	TotalCostWithExpenses string
	CostPerPiece          string
	IdealProfit           string
	IdealProfitMargin     string
	Expenses              string
	IdealRevenue          string
	Rows                  []priceSheetRow
}

// RenderHTML renders the price sheet of a bundle as a standalone HTML document
func (s *PriceSheetService) RenderHTML(ctx context.Context, bundleID int64) (*models.PriceSheet, error) {
	bundle, html, err := s.render(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	return &models.PriceSheet{FileName: PriceSheetFileName(bundle, "html"), Content: []byte(html)}, nil
}

// render loads the bundle and executes the sheet template
func (s *PriceSheetService) render(ctx context.Context, bundleID int64) (*models.Bundle, string, error) {
	bundle, err := s.bundles.GetByID(ctx, bundleID)
	if err != nil {
		return nil, "", err
	}
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load pricing config: %w", err)
	}

	metrics := pricing.ComputeMetrics(*bundle, *cfg)
	f := s.formatter

	data := priceSheetData{
		Name:                  bundle.Name,
		Pieces:                f.FormatCount(bundle.TotalPieces),
		CreatedAt:             bundle.CreatedAt.Format("02/01/2006"),
		TotalCostWithExpenses: f.FormatCurrency(metrics.TotalCostWithExpenses),
		CostPerPiece:          f.FormatCurrency(metrics.CostPerPiece),
		IdealProfit:           f.FormatCurrency(metrics.IdealProfit),
		IdealProfitMargin:     f.FormatPercentage(metrics.IdealProfitMargin),
		Expenses:              f.FormatCurrency(metrics.TotalAdditionalExpenses),
		IdealRevenue:          f.FormatCurrency(metrics.TotalIdealRevenue),
	}
	for _, q := range metrics.QualityBreakdown {
		data.Rows = append(data.Rows, priceSheetRow{
			Label:            utils.GradeLabel(q.Quality),
			Pieces:           f.FormatCount(q.Pieces),
			ProfitPercentage: f.FormatPercentage(q.ProfitPercentage),
			MinimumPrice:     f.FormatCurrency(q.MinimumPrice),
			IdealPrice:       f.FormatCurrency(q.IdealPrice),
		})
	}

	var buf bytes.Buffer
	if err := priceSheetTemplate.Execute(&buf, data); err != nil {
		return nil, "", fmt.Errorf("failed to execute template: %w", err)
	}
	return bundle, buf.String(), nil
}

// GeneratePDF renders the price sheet and prints it to an A4 PDF with headless Chrome
func (s *PriceSheetService) GeneratePDF(ctx context.Context, bundleID int64) (*models.PriceSheet, error) {
	bundle, html, err := s.render(ctx, bundleID)
	if err != nil {
		return nil, err
	}

	logging.Sugar.Infof("📄 GeneratePDF: bundle=%d", bundleID)

	var pdfBuf []byte
	err = s.runChrome(ctx, html, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		// A4 is 8.27" x 11.69"
		pdfBuf, _, err = page.PrintToPDF().
			WithPrintBackground(true).
			WithPaperWidth(8.27).
			WithPaperHeight(11.69).
			WithMarginTop(0).
			WithMarginBottom(0).
			WithMarginLeft(0).
			WithMarginRight(0).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return &models.PriceSheet{FileName: PriceSheetFileName(bundle, "pdf"), Content: pdfBuf}, nil
}

// GeneratePNG renders the price sheet to a full-page PNG preview
func (s *PriceSheetService) GeneratePNG(ctx context.Context, bundleID int64) (*models.PriceSheet, error) {
	bundle, html, err := s.render(ctx, bundleID)
	if err != nil {
		return nil, err
	}

	logging.Sugar.Infof("📸 GeneratePNG: bundle=%d", bundleID)

	var buf []byte
	if err := s.runChrome(ctx, html, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("failed to capture screenshot: empty image")
	}
	optimized, err := OptimizePreview(buf, maxPreviewWidth)
	if err != nil {
		return nil, err
	}
	return &models.PriceSheet{FileName: PriceSheetFileName(bundle, "png"), Content: optimized}, nil
}

// runChrome starts a headless browser, loads html into a blank page and runs action
func (s *PriceSheetService) runChrome(ctx context.Context, html string, action chromedp.Action) error {
	ctx, cancel := context.WithTimeout(ctx, renderTimeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
	)
	if chromePath := DetectChromePath(s.chromePath); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	return chromedp.Run(chromedpCtx,
		chromedp.EmulateViewport(794, 1123), // 210mm x 297mm at 96 DPI
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(`document.fonts.ready.then(() => true)`, nil, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
		action,
	)
}

// PriceSheetFileName returns a download file name for a bundle's sheet, keeping
// only letters, digits, '_' and '-' of the normalized bundle name
func PriceSheetFileName(bundle *models.Bundle, ext string) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			return r
		}
		return -1
	}, utils.NormalizeKey(bundle.Name))
	name = strings.Trim(name, "_")
	if name == "" {
		name = fmt.Sprintf("paca_%d", bundle.ID)
	}
	return fmt.Sprintf("precios_%s.%s", name, ext)
}
