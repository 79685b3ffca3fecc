package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"pacas-inventario/models"
)

// NormalizeKey lowercases a category or grade name, trims it, removes accents
// and joins inner whitespace with underscores.
// Example: " Económica " -> "economica", "Niños" -> "ninos"
func NormalizeKey(key string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, key)
	if err != nil {
		stripped = key
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), "_")
}

// MapGradeToCode maps quality grade names to their canonical key
// Input is normalized before mapping; unknown grades are returned normalized
func MapGradeToCode(grade string) string {
	gradeKey := NormalizeKey(grade)

	gradeMap := map[string]string{
		"premium":    models.GradePremium,
		"primera":    models.GradePremium,
		"regular":    models.GradeRegular,
		"segunda":    models.GradeRegular,
		"economica":  models.GradeEconomica,
		"economico":  models.GradeEconomica,
		"tercera":    models.GradeEconomica,
		"rechazo":    models.GradeRechazo,
		"rechazada":  models.GradeRechazo,
		"rechazadas": models.GradeRechazo,
	}

	if code, exists := gradeMap[gradeKey]; exists {
		return code
	}
	return gradeKey
}

// MapTypeToCode maps piece type names to their canonical key
func MapTypeToCode(pieceType string) string {
	typeKey := NormalizeKey(pieceType)

	typeMap := map[string]string{
		"hombre":  models.TypeHombre,
		"hombres": models.TypeHombre,
		"mujer":   models.TypeMujer,
		"mujeres": models.TypeMujer,
		"ninos":   models.TypeNinos,
		"nino":    models.TypeNinos,
		"ninas":   models.TypeNinos,
		"hogar":   models.TypeHogar,
		"casa":    models.TypeHogar,
	}

	if code, exists := typeMap[typeKey]; exists {
		return code
	}
	return typeKey
}

// MapExpenseToCode maps expense category names (Spanish or English) to their canonical key
func MapExpenseToCode(category string) string {
	categoryKey := NormalizeKey(category)

	expenseMap := map[string]string{
		"transport":  models.ExpenseTransport,
		"transporte": models.ExpenseTransport,
		"flete":      models.ExpenseTransport,
		"cleaning":   models.ExpenseCleaning,
		"limpieza":   models.ExpenseCleaning,
		"lavado":     models.ExpenseCleaning,
		"other":      models.ExpenseOther,
		"otro":       models.ExpenseOther,
		"otros":      models.ExpenseOther,
	}

	if code, exists := expenseMap[categoryKey]; exists {
		return code
	}
	return categoryKey
}

// MapKeys rebuilds an ordered map with every key passed through mapKey.
// Values of keys that map to the same code are combined with merge.
func MapKeys[V any](m models.OrderedMap[V], mapKey func(string) string, merge func(a, b V) V) models.OrderedMap[V] {
	var out models.OrderedMap[V]
	for _, e := range m.Entries() {
		code := mapKey(e.Key)
		if existing, ok := out.Get(code); ok {
			out.Set(code, merge(existing, e.Value))
			continue
		}
		out.Set(code, e.Value)
	}
	return out
}

// GradeLabel returns the display label of a grade key, e.g. "economica" -> "Económica".
// Unknown keys are returned with their first letter upper-cased.
func GradeLabel(code string) string {
	labels := map[string]string{
		models.GradePremium:   "Premium",
		models.GradeRegular:   "Regular",
		models.GradeEconomica: "Económica",
		models.GradeRechazo:   "Rechazo",
	}
	if label, ok := labels[code]; ok {
		return label
	}
	if code == "" {
		return code
	}
	r := []rune(strings.ReplaceAll(code, "_", " "))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
