// Package grading holds the pure rules shared by the quality ledgers,
// the transfer ledger and the reports.
package grading

import "wetmill-backend/internal/models"

// NoCategory is the category of an unscored or sub-20 sample.
const NoCategory = "-"

// Category classifies a pp-score.
func Category(score float64) string {
	switch {
	case score < 20:
		return NoCategory
	case score < 84:
		return "C2"
	case score < 86:
		return "C1"
	case score < 87:
		return "S86"
	case score < 88:
		return "S87"
	default:
		return "S88"
	}
}

// CategoryOf classifies a reading. A blank or non-numeric score has no
// category yet.
func CategoryOf(score models.Reading) (string, bool) {
	if score.Empty() || !score.Numeric() {
		return "", false
	}
	return Category(score.Float()), true
}
