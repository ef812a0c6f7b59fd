package models

import "time"

const BaggingOffCompleted = "COMPLETED"

// Sample progress of a bagging-off.
const (
	QualityStatusPending = "PENDING"
	QualityStatusTesting = "TESTING"
	QualityStatusTested  = "TESTED"
)

type BaggingOff struct {
	ID             int                `json:"id"`
	BatchNo        string             `json:"batchNo"`
	BatchFamily    string             `json:"-"`
	ProcessingID   int                `json:"processingId"`
	StationID      int                `json:"cwsId"`
	Date           time.Time          `json:"date"`
	OutputKgs      map[string]float64 `json:"outputKgs"`
	TotalOutputKgs float64            `json:"totalOutputKgs"`
	ProcessingType ProcessingType     `json:"processingType"`
	Status         string             `json:"status"`
	QualityStatus  string             `json:"qualityStatus"`
	Notes          *string            `json:"notes"`
	HGTransported  []string           `json:"hgtransported"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`

	// Joined from the owning processing for the grade-A worklists.
	ProcessingGrade string `json:"processingGrade,omitempty"`
}

type BaggingOffRequest struct {
	BatchNo        string             `json:"batchNo" validate:"required"`
	Date           string             `json:"date" validate:"required"`
	ProcessingType string             `json:"processingType" validate:"required"`
	OutputKgs      map[string]Reading `json:"outputKgs" validate:"required"`
	Status         string             `json:"status" validate:"required"`
	Notes          *string            `json:"notes"`
}

type UpdateBaggingOffRequest struct {
	Date      *string            `json:"date"`
	OutputKgs map[string]Reading `json:"outputKgs"`
	Status    *string            `json:"status"`
	Notes     *string            `json:"notes"`
}
