package models

import "time"

const (
	ProcessingInProgress     = "IN_PROGRESS"
	ProcessingBaggingStarted = "BAGGING_STARTED"
	ProcessingCompleted      = "COMPLETED"
	ProcessingTransferred    = "TRANSFERRED"
)

type Processing struct {
	ID             int            `json:"id"`
	BatchNo        string         `json:"batchNo"`
	BatchFamily    string         `json:"-"`
	ProcessingType ProcessingType `json:"processingType"`
	StationID      int            `json:"cwsId"`
	TotalKgs       float64        `json:"totalKgs"`
	Grade          string         `json:"grade"`
	Status         string         `json:"status"`
	StartDate      time.Time      `json:"startDate"`
	EndDate        *time.Time     `json:"endDate"`
	Notes          *string        `json:"notes"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

type StartProcessingRequest struct {
	BatchNo        string  `json:"batchNo" validate:"required"`
	ProcessingType string  `json:"processingType" validate:"required"`
	StationID      int     `json:"cwsId" validate:"required"`
	TotalKgs       float64 `json:"totalKgs" validate:"gt=0"`
	Grade          string  `json:"grade" validate:"required"`
	Notes          *string `json:"notes"`
}
