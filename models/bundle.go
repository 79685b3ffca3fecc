package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quality grades known out of the box. Bundles may carry other grades.
const (
	GradePremium   = "premium"
	GradeRegular   = "regular"
	GradeEconomica = "economica"
	GradeRechazo   = "rechazo"
)

// Expense categories known out of the box
const (
	ExpenseTransport = "transport"
	ExpenseCleaning  = "cleaning"
	ExpenseOther     = "other"
)

// Piece types known out of the box
const (
	TypeHombre = "hombre"
	TypeMujer  = "mujer"
	TypeNinos  = "ninos"
	TypeHogar  = "hogar"
)

// DefaultGrades lists the quality grades in display order
var DefaultGrades = []string{GradePremium, GradeRegular, GradeEconomica, GradeRechazo}

// DefaultExpenseCategories lists the expense categories in display order
var DefaultExpenseCategories = []string{ExpenseTransport, ExpenseCleaning, ExpenseOther}

// DefaultTypes lists the piece types in display order
var DefaultTypes = []string{TypeHombre, TypeMujer, TypeNinos, TypeHogar}

// Classification splits the pieces of a bundle by type and by quality grade
type Classification struct {
	ByType    Counts `json:"by_type"`
	ByQuality Counts `json:"by_quality"`
}

// Bundle represents a purchased lot of merchandise (paca) in the database
type Bundle struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	TotalPieces        int             `json:"total_pieces"`
	AdditionalExpenses Amounts         `json:"additional_expenses"`
	Classification     Classification  `json:"classification"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// BundleRequest represents the request body for creating or fully updating a bundle
// Example: {
//   "name": "Paca enero",
//   "total_cost": 100,
//   "total_pieces": 10,
//   "additional_expenses": {"transport": 10, "cleaning": 0, "other": 0},
//   "classification": {
//     "by_type": {"hombre": 4, "mujer": 6},
//     "by_quality": {"premium": 5, "regular": 5}
//   }
// }
type BundleRequest struct {
	Name               string          `json:"name"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	TotalPieces        int             `json:"total_pieces"`
	AdditionalExpenses Amounts         `json:"additional_expenses"`
	Classification     Classification  `json:"classification"`
}

// ToBundle copies the request fields into a Bundle without id or timestamps
func (r BundleRequest) ToBundle() Bundle {
	return Bundle{
		Name:               r.Name,
		TotalCost:          r.TotalCost,
		TotalPieces:        r.TotalPieces,
		AdditionalExpenses: r.AdditionalExpenses,
		Classification:     r.Classification,
	}
}

// BundleDefaults holds the pre-filled values for a new bundle form
type BundleDefaults struct {
	AdditionalExpenses Amounts        `json:"additional_expenses"`
	Classification     Classification `json:"classification"`
}
