package models

import "time"

const (
	GradeGroupHigh = "HIGH"
	GradeGroupLow  = "LOW"

	TransferCompleted = "COMPLETED"
)

type GradeDetail struct {
	NumberOfBags    int     `json:"numberOfBags"`
	CupProfile      string  `json:"cupProfile"`
	MoistureContent float64 `json:"moistureContent"`
}

type Transfer struct {
	ID                   int                    `json:"id"`
	BatchNo              string                 `json:"batchNo"`
	BatchFamily          string                 `json:"-"`
	BaggingOffID         int                    `json:"baggingOffId"`
	StationID            int                    `json:"cwsId"`
	ProcessingID         int                    `json:"processingId"`
	GradeGroup           string                 `json:"gradeGroup"`
	OutputKgs            map[string]float64     `json:"outputKgs"`
	GradeDetails         map[string]GradeDetail `json:"gradeDetails"`
	TruckNumber          string                 `json:"truckNumber"`
	DriverName           string                 `json:"driverName"`
	DriverPhone          string                 `json:"driverPhone"`
	TransferMode         string                 `json:"transferMode"`
	TransferDate         time.Time              `json:"transferDate"`
	Notes                *string                `json:"notes"`
	Status               string                 `json:"status"`
	IsGrouped            bool                   `json:"isGrouped"`
	GroupBatchNo         *string                `json:"groupBatchNo"`
	TransportGroupID     string                 `json:"transportGroupId"`
	NumberOfBags         int                    `json:"numberOfBags"`
	CupProfile           *string                `json:"cupProfile"`
	CupProfilePercentage *float64               `json:"cupProfilePercentage"`
	CreatedAt            time.Time              `json:"createdAt"`
	UpdatedAt            time.Time              `json:"updatedAt"`
}

// GradeKeys returns the transferred keys in a stable order.
func (t *Transfer) GradeKeys() []string {
	return sortedKeys(t.OutputKgs)
}

// TransferRequest covers both the single and the grouped form. The grouped
// form sets IsGroupedTransfer and lists every bagging-off in BaggingOffIDs.
type TransferRequest struct {
	BaggingOffID      int                    `json:"baggingOffId"`
	BaggingOffIDs     []int                  `json:"baggingOffIds"`
	IsGroupedTransfer bool                   `json:"isGroupedTransfer"`
	BatchNo           string                 `json:"batchNo" validate:"required"`
	GradeGroup        string                 `json:"gradeGroup" validate:"required,oneof=HIGH LOW"`
	OutputKgs         map[string]float64     `json:"outputKgs" validate:"required,min=1"`
	GradeDetails      map[string]GradeDetail `json:"gradeDetails"`
	TruckNumber       string                 `json:"truckNumber"`
	DriverName        string                 `json:"driverName"`
	DriverPhone       string                 `json:"driverPhone"`
	TransferMode      string                 `json:"transferMode"`
	Date              string                 `json:"date"`
	Notes             *string                `json:"notes"`
	TransportGroupID  string                 `json:"transportGroupId"`
}

type TransferResult struct {
	Message          string      `json:"message"`
	TransportGroupID string      `json:"transportGroupId"`
	Transfers        []*Transfer `json:"transfers"`
}

// TransferredByBaggingOff sums the outputs of one bagging-off's transfers.
type TransferredByBaggingOff struct {
	BaggingOffID int                `json:"baggingOffId"`
	BatchNo      string             `json:"batchNo"`
	OutputKgs    map[string]float64 `json:"outputKgs"`
	Transfers    []*Transfer        `json:"transfers"`
}
