package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pacas-inventario/db"
	"pacas-inventario/models"
	"pacas-inventario/repository"
	"pacas-inventario/utils"
)

type testRepos struct {
	bundles *repository.BundleRepository
	config  *repository.ConfigRepository
}

func newTestRepos(t *testing.T) testRepos {
	t.Helper()
	ctx := context.Background()
	database, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	_, err = database.Migrate(ctx)
	require.NoError(t, err)

	return testRepos{
		bundles: repository.NewBundleRepository(database),
		config:  repository.NewConfigRepository(database, models.DefaultPricingConfig()),
	}
}

// exampleRequest is 100 + 10 transport over 10 pieces, 5 premium and 5 regular
func exampleRequest(name string) models.BundleRequest {
	var expenses models.Amounts
	expenses.Set(models.ExpenseTransport, decimal.NewFromInt(10))
	expenses.Set(models.ExpenseCleaning, decimal.Zero)
	expenses.Set(models.ExpenseOther, decimal.Zero)

	var byType models.Counts
	byType.Set(models.TypeHombre, 4)
	byType.Set(models.TypeMujer, 6)

	var byQuality models.Counts
	byQuality.Set(models.GradePremium, 5)
	byQuality.Set(models.GradeRegular, 5)

	return models.BundleRequest{
		Name:               name,
		TotalCost:          decimal.NewFromInt(100),
		TotalPieces:        10,
		AdditionalExpenses: expenses,
		Classification:     models.Classification{ByType: byType, ByQuality: byQuality},
	}
}

type fakeDrive struct {
	folderID string
	name     string
	content  []byte
	err      error
}

func (f *fakeDrive) UploadBackup(_ context.Context, folderID string, name string, content io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	f.folderID, f.name, f.content = folderID, name, data
	return "drive-file-1", nil
}

func (f *fakeDrive) ListBackups(context.Context, string) ([]models.BackupFile, error) {
	return []models.BackupFile{{ID: "drive-file-1", Name: f.name, Source: models.BackupSourceDrive}}, nil
}

func TestValidateBundleAcceptsValidInput(t *testing.T) {
	assert.NoError(t, ValidateBundle(exampleRequest("Paca enero")))
}

func TestValidateBundleReportsEveryViolation(t *testing.T) {
	input := exampleRequest("   ")
	input.TotalCost = decimal.Zero
	input.TotalPieces = 12
	input.AdditionalExpenses.Set(models.ExpenseOther, decimal.NewFromInt(-1))

	err := ValidateBundle(input)
	require.Error(t, err)
	require.True(t, IsValidationError(err))

	ve := err.(*ValidationError)
	assert.Equal(t, []string{
		"name is required",
		"total cost must be greater than 0",
		"expense other must not be negative",
		"sum of pieces by type (10) must equal total pieces (12)",
		"sum of pieces by quality (10) must equal total pieces (12)",
	}, ve.Errors)
}

func TestValidateBundleRejectsNegativeCounts(t *testing.T) {
	input := exampleRequest("Paca")
	input.Classification.ByQuality.Set(models.GradeRechazo, -2)
	input.Classification.ByQuality.Set(models.GradeRegular, 7)

	err := ValidateBundle(input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pieces of quality rechazo must not be negative")
}

func TestBundleServiceCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	svc := NewBundleService(repos.bundles, repos.config, utils.NewFormatter("en"))

	created, err := svc.Create(ctx, exampleRequest("  Paca enero  "))
	require.NoError(t, err)
	assert.Equal(t, "Paca enero", created.Name)

	detail, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(11).Equal(detail.Metrics.CostPerPiece))
	assert.True(t, decimal.RequireFromString("71.5").Equal(detail.Metrics.IdealProfit))
	assert.Equal(t, "$11.00", detail.Display["cost_per_piece"])
	assert.Equal(t, "65.0%", detail.Display["ideal_profit_margin"])
	assert.Equal(t, "$19.80", detail.Display["premium.ideal_price"])
	assert.Equal(t, "$16.50", detail.Display["regular.ideal_price"])
}

func TestBundleServiceCreateRejectsInvalid(t *testing.T) {
	repos := newTestRepos(t)
	svc := NewBundleService(repos.bundles, repos.config, nil)

	input := exampleRequest("")
	_, err := svc.Create(context.Background(), input)
	assert.True(t, IsValidationError(err))

	bundles, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, bundles)
}

func TestBundleServiceUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	svc := NewBundleService(repos.bundles, repos.config, nil)

	created, err := svc.Create(ctx, exampleRequest("Paca"))
	require.NoError(t, err)

	edit := exampleRequest("Paca editada")
	edit.TotalCost = decimal.NewFromInt(150)
	updated, err := svc.Update(ctx, created.ID, edit)
	require.NoError(t, err)
	assert.Equal(t, "Paca editada", updated.Name)
	assert.True(t, decimal.NewFromInt(150).Equal(updated.TotalCost))

	_, err = svc.Update(ctx, created.ID+100, edit)
	assert.ErrorIs(t, err, repository.ErrBundleNotFound)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrBundleNotFound)
}

func TestBundleServiceDashboard(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	svc := NewBundleService(repos.bundles, repos.config, nil)

	empty, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Summary.TotalBundles)
	assert.True(t, empty.Summary.EstimatedProfitMargin.IsZero())
	assert.Equal(t, "$0.00", empty.Display["total_investment"])

	_, err = svc.Create(ctx, exampleRequest("uno"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, exampleRequest("dos"))
	require.NoError(t, err)

	dashboard, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Len(t, dashboard.Bundles, 2)
	assert.Equal(t, 2, dashboard.Summary.TotalBundles)
	assert.True(t, decimal.NewFromInt(200).Equal(dashboard.Summary.TotalInvestment))
	assert.True(t, decimal.NewFromInt(143).Equal(dashboard.Summary.TotalEstimatedProfit))
	assert.Equal(t, "71.5%", dashboard.Display["estimated_profit_margin"])
}

func TestBundleServiceNewBundleDefaults(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	configSvc := NewConfigService(repos.config)
	svc := NewBundleService(repos.bundles, repos.config, nil)

	var pct models.Amounts
	pct.Set("vintage", decimal.NewFromInt(100))
	var expenses models.Amounts
	expenses.Set(models.ExpenseTransport, decimal.NewFromInt(15))
	_, err := configSvc.Update(ctx, models.PricingConfigUpdate{ProfitPercentages: &pct, DefaultExpenses: &expenses})
	require.NoError(t, err)

	defaults, err := svc.NewBundleDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"hombre", "mujer", "ninos", "hogar"}, defaults.Classification.ByType.Keys())
	assert.Equal(t, []string{"premium", "regular", "economica", "rechazo", "vintage"}, defaults.Classification.ByQuality.Keys())
	transport, _ := defaults.AdditionalExpenses.Get(models.ExpenseTransport)
	assert.True(t, decimal.NewFromInt(15).Equal(transport))
}

func TestConfigServiceRejectsNegativeValues(t *testing.T) {
	repos := newTestRepos(t)
	svc := NewConfigService(repos.config)

	var pct models.Amounts
	pct.Set(models.GradePremium, decimal.NewFromInt(-10))
	_, err := svc.Update(context.Background(), models.PricingConfigUpdate{ProfitPercentages: &pct})
	require.True(t, IsValidationError(err))

	cfg, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(80).Equal(cfg.ProfitPercentage(models.GradePremium)))
}

func TestValidateConfigUpdateListsEveryViolation(t *testing.T) {
	var pct, expenses models.Amounts
	pct.Set(models.GradePremium, decimal.NewFromInt(-10))
	pct.Set(models.GradeRegular, decimal.NewFromInt(40))
	expenses.Set(models.ExpenseTransport, decimal.RequireFromString("-0.5"))

	err := ValidateConfigUpdate(models.PricingConfigUpdate{ProfitPercentages: &pct, DefaultExpenses: &expenses})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{
		"profit percentage premium must not be negative",
		"default expense transport must not be negative",
	}, ve.Errors)

	assert.NoError(t, ValidateConfigUpdate(models.PricingConfigUpdate{}))
}

func TestPriceSheetRenderHTML(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	bundleSvc := NewBundleService(repos.bundles, repos.config, nil)
	sheets := NewPriceSheetService(repos.bundles, repos.config, nil, "")

	created, err := bundleSvc.Create(ctx, exampleRequest("Paca <especial>"))
	require.NoError(t, err)

	sheet, err := sheets.RenderHTML(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "precios_paca_especial.html", sheet.FileName)
	html := string(sheet.Content)
	assert.Contains(t, html, "Paca &lt;especial&gt;")
	assert.Contains(t, html, "Premium")
	assert.Contains(t, html, "$19.80")
	assert.Contains(t, html, "$16.50")
	assert.Contains(t, html, "80.0%")
	assert.Less(t, strings.Index(html, "Premium"), strings.Index(html, "Regular"))

	_, err = sheets.RenderHTML(ctx, 424242)
	assert.ErrorIs(t, err, repository.ErrBundleNotFound)
}

func TestPriceSheetGeneratePDF(t *testing.T) {
	if DetectChromePath(os.Getenv("CHROME_PATH")) == "" {
		t.Skip("Chrome/Chromium not available")
	}
	ctx := context.Background()
	repos := newTestRepos(t)
	created, err := NewBundleService(repos.bundles, repos.config, nil).Create(ctx, exampleRequest("Paca PDF"))
	require.NoError(t, err)

	pdf, err := NewPriceSheetService(repos.bundles, repos.config, nil, os.Getenv("CHROME_PATH")).GeneratePDF(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "precios_paca_pdf.pdf", pdf.FileName)
	assert.True(t, bytes.HasPrefix(pdf.Content, []byte("%PDF")))
}

func TestPriceSheetFileName(t *testing.T) {
	assert.Equal(t, "precios_paca_enero.pdf", PriceSheetFileName(&models.Bundle{ID: 1, Name: "Paca Enero"}, "pdf"))
	assert.Equal(t, "precios_paca_7.png", PriceSheetFileName(&models.Bundle{ID: 7, Name: "  "}, "png"))
	assert.Equal(t, "precios_paca_8.html", PriceSheetFileName(&models.Bundle{ID: 8, Name: "<\"/>"}, "html"))
	assert.Equal(t, "precios_lote_ninos2.pdf", PriceSheetFileName(&models.Bundle{ID: 2, Name: "Lote Niños/2"}, "pdf"))
}

func TestOptimizePreviewDownscales(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1588, 800))
	for x := 0; x < 1588; x++ {
		src.Set(x, 10, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	out, err := OptimizePreview(buf.Bytes(), 794)
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 794, decoded.Bounds().Dx())
	assert.Equal(t, 400, decoded.Bounds().Dy())

	small := image.NewNRGBA(image.Rect(0, 0, 100, 50))
	buf.Reset()
	require.NoError(t, png.Encode(&buf, small))
	out, err = OptimizePreview(buf.Bytes(), 794)
	require.NoError(t, err)
	decoded, err = png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, decoded.Bounds().Dx())

	_, err = OptimizePreview([]byte("not an image"), 794)
	assert.Error(t, err)
}

func TestParseLegacyTime(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-15T10:30:00.123456", time.Date(2024, 1, 15, 10, 30, 0, 123456000, time.UTC)},
		{"2024-01-15T10:30:00Z", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-01-15T10:30:00+00:00", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-01-15 10:30:00", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, ok := ParseLegacyTime(tc.in)
		require.True(t, ok, tc.in)
		assert.True(t, tc.want.Equal(got), tc.in)
	}

	_, ok := ParseLegacyTime("yesterday")
	assert.False(t, ok)
	_, ok = ParseLegacyTime("")
	assert.False(t, ok)
}

const legacyBundles = `[
  {
    "id": 1,
    "name": "Paca vieja",
    "total_cost": 100,
    "total_pieces": 10,
    "additional_expenses": {"Transporte": 10, "Limpieza": 0},
    "classification": {
      "by_type": {"Mujeres": 6, "Hombres": 4},
      "by_quality": {"Premium": 5, "Regular": 5}
    },
    "created_at": "2023-06-15T09:30:00.000000"
  },
  {
    "id": 2,
    "name": "Paca sin fecha",
    "total_cost": "80.50",
    "total_pieces": 4,
    "additional_expenses": {},
    "classification": {"by_type": {"hogar": 4}, "by_quality": {"Económica": 4}},
    "created_at": "not a date"
  },
  {
    "id": 3,
    "name": "Existente",
    "total_cost": 50,
    "total_pieces": 2,
    "additional_expenses": {},
    "classification": {"by_type": {"hogar": 2}, "by_quality": {"regular": 2}}
  }
]`

const legacyConfig = `{
  "profit_percentages": {"premium": 90, "Económica": 35},
  "default_expenses": {"transport": 12}
}`

func TestImportFile(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backup")

	bundlesPath := filepath.Join(dir, "bundles.json")
	configPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(bundlesPath, []byte(legacyBundles), 0644))
	require.NoError(t, os.WriteFile(configPath, []byte(legacyConfig), 0644))

	existing := exampleRequest("Existente").ToBundle()
	_, err := repos.bundles.Save(ctx, &existing)
	require.NoError(t, err)

	importer := NewImportService(repos.bundles, repos.config, backupDir)
	now := time.Date(2024, 5, 1, 10, 15, 0, 0, time.UTC)
	importer.now = func() time.Time { return now }

	result, err := importer.ImportFile(ctx, bundlesPath, configPath)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 3, result.Total)
	require.Len(t, result.Backups, 2)
	assert.FileExists(t, filepath.Join(backupDir, utils.BackupFileName("bundles.json", now)))
	assert.FileExists(t, filepath.Join(backupDir, utils.BackupFileName("config.json", now)))

	cfg, err := repos.config.Get(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(90).Equal(cfg.ProfitPercentage(models.GradePremium)))
	assert.True(t, decimal.NewFromInt(35).Equal(cfg.ProfitPercentage(models.GradeEconomica)))
	assert.True(t, decimal.NewFromInt(50).Equal(cfg.ProfitPercentage(models.GradeRegular)))

	bundles, err := repos.bundles.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, bundles, 3)

	byName := map[string]models.Bundle{}
	for _, b := range bundles {
		byName[b.Name] = b
	}

	old := byName["Paca vieja"]
	assert.True(t, time.Date(2023, 6, 15, 9, 30, 0, 0, time.UTC).Equal(old.CreatedAt))
	assert.Equal(t, []string{"transport", "cleaning"}, old.AdditionalExpenses.Keys())
	assert.Equal(t, []string{"mujer", "hombre"}, old.Classification.ByType.Keys())
	assert.Equal(t, []string{"premium", "regular"}, old.Classification.ByQuality.Keys())

	undated := byName["Paca sin fecha"]
	assert.True(t, now.Equal(undated.CreatedAt))
	assert.True(t, decimal.RequireFromString("80.5").Equal(undated.TotalCost))
	assert.Equal(t, []string{"economica"}, undated.Classification.ByQuality.Keys())

	again, err := importer.ImportFile(ctx, bundlesPath, configPath)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Inserted)
	assert.Equal(t, 3, again.Skipped)
}

func TestImportFileMissingFiles(t *testing.T) {
	repos := newTestRepos(t)
	dir := t.TempDir()
	importer := NewImportService(repos.bundles, repos.config, filepath.Join(dir, "backup"))

	result, err := importer.ImportFile(context.Background(), filepath.Join(dir, "nope.json"), filepath.Join(dir, "nada.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	assert.Empty(t, result.Backups)
}

func TestImportFileTrimsNamesBeforeDuplicateCheck(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	dir := t.TempDir()

	bundlesPath := filepath.Join(dir, "bundles.json")
	padded := `[{"name": " Paca A ", "total_cost": 50, "total_pieces": 2,
	  "classification": {"by_type": {"hogar": 2}, "by_quality": {"premium": 2}},
	  "created_at": "2024-01-10"}]`
	require.NoError(t, os.WriteFile(bundlesPath, []byte(padded), 0644))

	importer := NewImportService(repos.bundles, repos.config, filepath.Join(dir, "backup"))

	first, err := importer.ImportFile(ctx, bundlesPath, "")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Inserted)

	second, err := importer.ImportFile(ctx, bundlesPath, "")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 1, second.Skipped)

	stored, err := repos.bundles.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Paca A", stored[0].Name)
}

func TestImportFileRejectsMalformedJSON(t *testing.T) {
	repos := newTestRepos(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "bundles.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"bundles": `), 0644))

	_, err := NewImportService(repos.bundles, repos.config, filepath.Join(dir, "backup")).ImportFile(context.Background(), path, "")
	assert.Error(t, err)
}

func TestBackupExportAndReimport(t *testing.T) {
	ctx := context.Background()
	source := newTestRepos(t)
	backupDir := t.TempDir()

	svc := NewBundleService(source.bundles, source.config, nil)
	_, err := svc.Create(ctx, exampleRequest("uno"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, exampleRequest("dos"))
	require.NoError(t, err)

	var pct models.Amounts
	pct.Set(models.GradePremium, decimal.NewFromInt(99))
	_, err = source.config.Set(ctx, models.PricingConfigUpdate{ProfitPercentages: &pct})
	require.NoError(t, err)

	drive := &fakeDrive{}
	backups := NewBackupService(source.bundles, source.config, drive, "folder-123", backupDir)
	backups.now = func() time.Time { return time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC) }

	result, err := backups.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(backupDir, "pacas_backup_20240203_040506.json"), result.Path)
	assert.Equal(t, 2, result.Bundles)
	assert.Equal(t, "drive-file-1", result.DriveFileID)
	assert.False(t, result.DriveSkipped)
	assert.Equal(t, "folder-123", drive.folderID)
	assert.Equal(t, "pacas_backup_20240203_040506.json", drive.name)

	written, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Equal(t, written, drive.content)

	target := newTestRepos(t)
	imported, err := NewImportService(target.bundles, target.config, t.TempDir()).ImportFile(ctx, result.Path, "")
	require.NoError(t, err)
	assert.Equal(t, 2, imported.Inserted)

	cfg, err := target.config.Get(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(99).Equal(cfg.ProfitPercentage(models.GradePremium)))
}

func TestBackupExportWithoutDrive(t *testing.T) {
	repos := newTestRepos(t)
	result, err := NewBackupService(repos.bundles, repos.config, nil, "", t.TempDir()).Export(context.Background())
	require.NoError(t, err)
	assert.True(t, result.DriveSkipped)
	assert.Equal(t, 0, result.Bundles)
	assert.FileExists(t, result.Path)
}

func TestBackupList(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	backupDir := filepath.Join(t.TempDir(), "backup")

	backups := NewBackupService(repos.bundles, repos.config, nil, "", backupDir)
	listed, err := backups.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)

	backups.now = func() time.Time { return time.Date(2024, 2, 3, 4, 5, 6, 0, time.Local) }
	_, err = backups.Export(ctx)
	require.NoError(t, err)

	older := time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local)
	require.NoError(t, os.WriteFile(filepath.Join(backupDir, utils.BackupFileName("bundles.json", older)), []byte("[]"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(backupDir, "notes.txt"), []byte("x"), 0644))

	listed, err = backups.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "pacas_backup_20240203_040506.json", listed[0].Name)
	assert.Equal(t, models.BackupSourceLocal, listed[0].Source)
	assert.NotZero(t, listed[0].Size)
	assert.Equal(t, "bundles.json.backup_20240101_080000", listed[1].Name)

	drive := &fakeDrive{name: "pacas_backup_20231231_000000.json"}
	withDrive := NewBackupService(repos.bundles, repos.config, drive, "folder-123", backupDir)
	listed, err = withDrive.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, models.BackupSourceDrive, listed[2].Source)
	assert.Equal(t, "drive-file-1", listed[2].ID)
}
