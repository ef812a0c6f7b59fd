package models

import "time"

type QualityDelivery struct {
	ID              int                `json:"id"`
	TransferID      int                `json:"transferId"`
	QualityID       *int               `json:"qualityId"`
	BatchNo         string             `json:"batchNo"`
	BatchFamily     string             `json:"-"`
	StationID       int                `json:"cwsId"`
	ProcessingID    int                `json:"processingId"`
	BaggingOffID    int                `json:"baggingOffId"`
	GradeKey        string             `json:"gradeKey"`
	Status          string             `json:"status"`
	CwsMoisture     float64            `json:"cwsMoisture"`
	LabMoisture     float64            `json:"labMoisture"`
	Screen          Screen             `json:"screen"`
	Defect          float64            `json:"defect"`
	PPScore         float64            `json:"ppScore"`
	Notes           string             `json:"notes"`
	Category        string             `json:"category"`
	NewCategory     string             `json:"newCategory"`
	CategoryKgs     map[string]float64 `json:"categoryKgs"`
	SampleStorageID *int               `json:"sampleStorageId"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`

	// Joined from the transfer for truck grouping.
	TruckNumber      string     `json:"truckNumber,omitempty"`
	TransportGroupID string     `json:"transportGroupId,omitempty"`
	TransferDate     *time.Time `json:"transferDate,omitempty"`
}

// DeliveryRequest carries what a transfer hands to the delivery ledger for
// one grade key.
type DeliveryRequest struct {
	TransferID   int
	BatchNo      string
	StationID    int
	BaggingOffID int
	ProcessingID int
	CwsMoisture  float64
	Category     string
	GradeKey     string
}

type DeliveryTestInput struct {
	ID              int     `json:"id" validate:"required"`
	TransferID      int     `json:"transferId" validate:"required"`
	LabMoisture     Reading `json:"labMoisture"`
	Screen          Screen  `json:"screen"`
	Defect          Reading `json:"defect"`
	PPScore         Reading `json:"ppScore"`
	Notes           string  `json:"notes"`
	SampleStorageID *int    `json:"sampleStorageId"`
}

type DeliveryTestRequest struct {
	Batches     []DeliveryTestInput `json:"batches" validate:"required,min=1,dive"`
	CategoryKgs map[string]float64  `json:"categoryKgs"`
}

// TruckLoad groups the delivery records that travelled together.
type TruckLoad struct {
	TransportGroupID string             `json:"transportGroupId"`
	TruckNumber      string             `json:"truckNumber"`
	TransferDate     time.Time          `json:"transferDate"`
	Records          []*QualityDelivery `json:"records"`
}
