package models

import "time"

const (
	WetTransferPending           = "PENDING"
	WetTransferReceived          = "RECEIVED"
	WetTransferRejected          = "REJECTED"
	WetTransferReceiverCompleted = "RECEIVER_COMPLETED"
)

// WetTransfer moves unprocessed wet parchment between stations.
type WetTransfer struct {
	ID                   int            `json:"id"`
	ProcessingID         int            `json:"processingId"`
	BatchNo              string         `json:"batchNo"`
	Date                 time.Time      `json:"date"`
	SourceStationID      int            `json:"sourceCwsId"`
	DestinationStationID int            `json:"destinationCwsId"`
	TotalKgs             float64        `json:"totalKgs"`
	OutputKgs            float64        `json:"outputKgs"`
	Grade                string         `json:"grade"`
	ProcessingType       ProcessingType `json:"processingType"`
	MoistureContent      float64        `json:"moistureContent"`
	Status               string         `json:"status"`
	Notes                *string        `json:"notes"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`
}

type CreateWetTransferRequest struct {
	ProcessingID         int      `json:"processingId" validate:"required"`
	BatchNo              string   `json:"batchNo"`
	Date                 string   `json:"date"`
	SourceStationID      int      `json:"sourceCwsId" validate:"required"`
	DestinationStationID int      `json:"destinationCwsId" validate:"required,nefield=SourceStationID"`
	TotalKgs             float64  `json:"totalKgs" validate:"gte=0"`
	OutputKgs            float64  `json:"outputKgs" validate:"gte=0"`
	Grade                string   `json:"grade" validate:"required"`
	ProcessingType       string   `json:"processingType" validate:"required"`
	MoistureContent      *float64 `json:"moistureContent"`
	Notes                *string  `json:"notes"`
}

type ReceiveWetTransferRequest struct {
	MoistureContent *float64 `json:"moistureContent"`
	Defects         *float64 `json:"defects"`
	CupScore        *float64 `json:"cupScore"`
	Notes           *string  `json:"notes"`
}

type RejectWetTransferRequest struct {
	Reason string `json:"reason"`
}

type WetTransferCounts struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Received int `json:"received"`
	Rejected int `json:"rejected"`
}

// WetTransferSummary counts a station's outgoing and incoming transfers.
type WetTransferSummary struct {
	Sent     WetTransferCounts `json:"sent"`
	Received WetTransferCounts `json:"received"`
}
