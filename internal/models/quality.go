package models

import "time"

// Quality and delivery record statuses, in the only order they may advance.
const (
	SamplePending   = "PENDING"
	SampleTested    = "TESTED"
	SampleCompleted = "COMPLETED"
)

type Quality struct {
	ID               int                `json:"id"`
	BatchNo          string             `json:"batchNo"`
	BatchFamily      string             `json:"-"`
	StationID        int                `json:"cwsId"`
	ProcessingID     int                `json:"processingId"`
	BaggingOffID     int                `json:"baggingOffId"`
	ProcessingType   ProcessingType     `json:"processingType"`
	Status           string             `json:"status"`
	CwsMoisture1     map[string]Reading `json:"cwsMoisture1"`
	LabMoisture      map[string]Reading `json:"labMoisture"`
	Screen           map[string]Screen  `json:"screen"`
	Defect           map[string]Reading `json:"defect"`
	PPScore          map[string]Reading `json:"ppScore"`
	Notes            map[string]string  `json:"notes"`
	Category         map[string]string  `json:"category"`
	SampleStorageID0 *int               `json:"sampleStorageId_0"`
	SampleStorageID1 *int               `json:"sampleStorageId_1"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

// Keys returns the grade keys this sample is tested on.
func (q *Quality) Keys() []string {
	return q.ProcessingType.SampleKeys()
}

// SampleRequest identifies the bagging-off a sample is created for.
type SampleRequest struct {
	BatchNo        string
	StationID      int
	BaggingOffID   int
	ProcessingID   int
	ProcessingType ProcessingType
	CwsMoisture1   map[string]Reading
	StorageID0     *int
	StorageID1     *int
}

type InitialTestInput struct {
	BatchNo          string             `json:"batchNo" validate:"required"`
	CwsMoisture1     map[string]Reading `json:"cwsMoisture1" validate:"required"`
	SampleStorageID0 *int               `json:"sampleStorageId_0"`
	SampleStorageID1 *int               `json:"sampleStorageId_1"`
}

type InitialTestRequest struct {
	Batches []InitialTestInput `json:"batches" validate:"required,min=1,dive"`
}

type TestResultInput struct {
	BatchNo          string             `json:"batchNo" validate:"required"`
	CwsMoisture1     map[string]Reading `json:"cwsMoisture1"`
	LabMoisture      map[string]Reading `json:"labMoisture"`
	Screen           map[string]Screen  `json:"screen"`
	Defect           map[string]Reading `json:"defect"`
	PPScore          map[string]Reading `json:"ppScore"`
	Notes            map[string]string  `json:"notes"`
	SampleStorageID0 *int               `json:"sampleStorageId_0"`
	SampleStorageID1 *int               `json:"sampleStorageId_1"`
}

type TestResultRequest struct {
	Batches []TestResultInput `json:"batches" validate:"required,min=1,dive"`
}

// SweepItem is one row created by a backfill sweep.
type SweepItem struct {
	ID           int    `json:"id"`
	BatchNo      string `json:"batchNo"`
	StationID    int    `json:"cwsId"`
	ProcessingID int    `json:"processingId"`
	GradeKey     string `json:"gradeKey,omitempty"`
}

type SweepError struct {
	BatchNo string `json:"batchNo"`
	Error   string `json:"error"`
}

// SweepResult reports a partial-success backfill.
type SweepResult struct {
	Created int          `json:"created"`
	Records []SweepItem  `json:"createdRecords"`
	Errors  []SweepError `json:"errors"`
	Message string       `json:"message"`
}
