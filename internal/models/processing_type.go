package models

import (
	"strings"

	"wetmill-backend/internal/batch"
)

type ProcessingType string

const (
	ProcessingNatural     ProcessingType = "NATURAL"
	ProcessingHoney       ProcessingType = "HONEY"
	ProcessingFullyWashed ProcessingType = "FULLY_WASHED"
)

// ParseProcessingType normalises the spellings clients send ("FULLY WASHED",
// lower case) and reports whether the type is known.
func ParseProcessingType(s string) (ProcessingType, bool) {
	p := ProcessingType(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), " ", "_"))
	switch p {
	case ProcessingNatural, ProcessingHoney, ProcessingFullyWashed:
		return p, true
	}
	return "", false
}

// OutputKeys returns the grade keys a bagging-off of this type records.
// Fully washed secondary splits use the B keys.
func (p ProcessingType) OutputKeys(batchNo string) []string {
	switch p {
	case ProcessingNatural:
		return []string{"N1", "N2"}
	case ProcessingHoney:
		return []string{"H1"}
	case ProcessingFullyWashed:
		if batch.IsSecondary(batchNo) {
			return []string{"B1", "B2"}
		}
		return []string{"A0", "A1", "A2", "A3"}
	}
	return nil
}

// SampleKeys returns the grade keys a quality sample is tested on.
func (p ProcessingType) SampleKeys() []string {
	switch p {
	case ProcessingNatural:
		return []string{"N1"}
	case ProcessingHoney:
		return []string{"H1"}
	default:
		return []string{"A0", "A1"}
	}
}

// Grade key sets shared by the ledgers and reports.
var (
	// QualityTriggerKeys start a quality sample when bagged with a non-zero weight.
	QualityTriggerKeys = []string{"A0", "A1", "N1", "H1"}
	// TransferHighKeys supply the summary bag count and cup profile of a transfer.
	TransferHighKeys = []string{"A0", "A1", "N1", "H2"}
	// TransferLowKeys add their bag counts to a transfer summary.
	TransferLowKeys = []string{"A2", "A3", "B1", "B2", "N2"}
	// DeliveryLowKeys are counted as transported when a LOW transfer shares the batch.
	DeliveryLowKeys = []string{"A2", "A3", "B1", "B2", "N2", "H2"}
	// CategoryKgsKeys is the fixed bucket set of a new delivery record.
	CategoryKgsKeys = []string{"c2", "c1", "s86", "s87", "s88", "A2", "A3", "B1", "B2", "N2"}
	// DeliveredKgsKeys are summed as delivered weight.
	DeliveredKgsKeys = []string{"c2", "c1", "s86", "s87", "s88", "A2", "A3", "B1", "B2", "N2", "lg"}
)

// ScreenSizes is the default screen breakdown of a sample.
var ScreenSizes = []string{"16+", "15", "14", "13", "B/12"}
