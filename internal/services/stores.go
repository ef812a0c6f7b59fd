package services

import (
	"context"
	"time"

	"wetmill-backend/internal/models"
)

// Store contracts. Lookups that find nothing return an apperr NotFound
// error unless the method says it returns nil.

type UserStore interface {
	Get(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type StationStore interface {
	List(ctx context.Context) ([]*models.Station, error)
	Get(ctx context.Context, id int) (*models.Station, error)
	GetSiteCollection(ctx context.Context, id int) (*models.SiteCollection, error)
	ListSiteCollections(ctx context.Context, stationID int) ([]*models.SiteCollection, error)
}

// PurchaseWindow selects the purchase a station already recorded for a
// grade and channel on one day.
type PurchaseWindow struct {
	StationID        int
	Grade            string
	DeliveryType     string
	SiteCollectionID *int // set for site collections, which are unique per site
	From             time.Time
	To               time.Time
	ExcludeID        int
}

type PurchaseStore interface {
	Create(ctx context.Context, p *models.Purchase) error
	Get(ctx context.Context, id int) (*models.Purchase, error)
	Update(ctx context.Context, p *models.Purchase) error
	Delete(ctx context.Context, id int) error
	// FindSameDay returns nil when the window is free.
	FindSameDay(ctx context.Context, w PurchaseWindow) (*models.Purchase, error)
	ListByStation(ctx context.Context, stationID int, page models.Page) ([]*models.Purchase, int, error)
}

type ProcessingStore interface {
	Create(ctx context.Context, p *models.Processing) error
	Get(ctx context.Context, id int) (*models.Processing, error)
	GetByBatch(ctx context.Context, batchNo string) (*models.Processing, error)
	ExistsWithStatus(ctx context.Context, batchNo string, statuses ...string) (bool, error)
	ListByStation(ctx context.Context, stationID int, page models.Page) ([]*models.Processing, int, error)
}

type BaggingOffStore interface {
	// Create inserts b and, in the same transaction, completes the owning
	// processing when b is COMPLETED, moves it from IN_PROGRESS to
	// BAGGING_STARTED otherwise, and copies b's status onto the batch's
	// wet transfers that the receiver has not completed.
	Create(ctx context.Context, b *models.BaggingOff) error
	// Update saves b and completes the owning processing when b is COMPLETED.
	Update(ctx context.Context, b *models.BaggingOff) error
	Get(ctx context.Context, id int) (*models.BaggingOff, error)
	Delete(ctx context.Context, id int) error
	ListByBatch(ctx context.Context, batchNo string) ([]*models.BaggingOff, error)
	ListByStation(ctx context.Context, stationID int, page models.Page) ([]*models.BaggingOff, int, error)
	// LatestPerBatch returns the most recently created row of every batch.
	LatestPerBatch(ctx context.Context) ([]*models.BaggingOff, error)
	// ListWithoutQuality returns rows whose batch has no quality sample.
	ListWithoutQuality(ctx context.Context) ([]*models.BaggingOff, error)
	// FindGradeA returns the latest bagging-off of the batch whose
	// processing is grade A, or nil.
	FindGradeA(ctx context.Context, batchNo string, completedOnly bool) (*models.BaggingOff, error)
	SetQualityStatus(ctx context.Context, batchNo string, status string) error
	// ListPendingGradeA returns the station's completed grade-A rows still
	// waiting for a sample, one per batch.
	ListPendingGradeA(ctx context.Context, stationID int) ([]*models.BaggingOff, error)
}

type QualityStore interface {
	// CreateIfAbsent stores q unless a sample already exists for its batch,
	// station and processing. It returns the stored row and whether it was
	// created. A new row marks the batch's bagging-offs TESTING.
	CreateIfAbsent(ctx context.Context, q *models.Quality) (*models.Quality, bool, error)
	Get(ctx context.Context, id int) (*models.Quality, error)
	ExistsForBatch(ctx context.Context, batchNo string) (bool, error)
	FindByBatchStation(ctx context.Context, batchNo string, stationID int) (*models.Quality, error)
	// FindProvenance matches by bagging-off, then batch family, then exact
	// batch number. It returns nil when nothing matches.
	FindProvenance(ctx context.Context, baggingOffID int, batchNo string) (*models.Quality, error)
	// SaveResult updates q and marks its batch's bagging-offs TESTED in
	// one transaction.
	SaveResult(ctx context.Context, q *models.Quality) error
	// List puts incomplete samples first.
	List(ctx context.Context, stationID *int, page models.Page) ([]*models.Quality, int, error)
}

type TransferStore interface {
	// CreateLocked persists drafts in one serializable transaction. For each
	// draft it locks the bagging-off row, filters the draft against the
	// locked transferred set and the bagging-off's earlier transfers with
	// grading.FilterTransfer, inserts what is left and writes the grown set
	// back. It fails with a Conflict when no draft has a key left.
	CreateLocked(ctx context.Context, drafts []*models.Transfer) ([]*models.Transfer, error)
	Get(ctx context.Context, id int) (*models.Transfer, error)
	List(ctx context.Context, page models.Page) ([]*models.Transfer, int, error)
	ListByBatch(ctx context.Context, batchNo string) ([]*models.Transfer, error)
	ListByStation(ctx context.Context, stationID int, from, to *time.Time) ([]*models.Transfer, error)
	ListByBaggingOff(ctx context.Context, baggingOffID int) ([]*models.Transfer, error)
	ListByGradeGroup(ctx context.Context, gradeGroup string) ([]*models.Transfer, error)
	// ListHighWithoutDelivery returns HIGH transfers with no delivery record.
	ListHighWithoutDelivery(ctx context.Context) ([]*models.Transfer, error)
	ListCompletedHigh(ctx context.Context, stationID int) ([]*models.Transfer, error)
}

type DeliveryStore interface {
	// CreateIfAbsent stores d unless its transfer already has a record for
	// the grade key.
	CreateIfAbsent(ctx context.Context, d *models.QualityDelivery) (*models.QualityDelivery, bool, error)
	Get(ctx context.Context, id, transferID int) (*models.QualityDelivery, error)
	Update(ctx context.Context, d *models.QualityDelivery) error
	List(ctx context.Context, page models.Page) ([]*models.QualityDelivery, int, error)
	// ListWithTrucks returns every record joined with its truck and
	// transport group, newest transfer first.
	ListWithTrucks(ctx context.Context) ([]*models.QualityDelivery, error)
	ListByTransportGroup(ctx context.Context, transportGroupID string) ([]*models.QualityDelivery, error)
}

type WetTransferStore interface {
	// Create inserts w and marks its processing TRANSFERRED in one
	// transaction. A second transfer of the same processing, batch and
	// grade is a Conflict.
	Create(ctx context.Context, w *models.WetTransfer) error
	Get(ctx context.Context, id int) (*models.WetTransfer, error)
	Exists(ctx context.Context, processingID int, batchNo, grade string) (bool, error)
	SetStatus(ctx context.Context, id int, status string, notes *string) error
	// Delete removes the row and returns its processing to IN_PROGRESS.
	Delete(ctx context.Context, id int) error
	ListByBatch(ctx context.Context, batchNo string) ([]*models.WetTransfer, error)
	ListBySource(ctx context.Context, stationID int) ([]*models.WetTransfer, error)
	ListByDestination(ctx context.Context, stationID int) ([]*models.WetTransfer, error)
}

type SampleStorageStore interface {
	List(ctx context.Context) ([]*models.SampleStorage, error)
	Get(ctx context.Context, id int) (*models.SampleStorage, error)
	Create(ctx context.Context, s *models.SampleStorage) error
	Update(ctx context.Context, s *models.SampleStorage) error
	Delete(ctx context.Context, id int) error
}

// ReportStore serves the read-only aggregates behind the reports.
type ReportStore interface {
	ListProcessings(ctx context.Context) ([]*models.Processing, error)
	// ListCountedBaggingOffs returns bagging-offs in COMPLETED or
	// RECEIVER_COMPLETED status.
	ListCountedBaggingOffs(ctx context.Context) ([]*models.BaggingOff, error)
	PurchaseKgsByStation(ctx context.Context) (map[int]float64, error)
	OutputKgsByStation(ctx context.Context) (map[int]float64, error)
	ListCompletedTransfers(ctx context.Context) ([]*models.Transfer, error)
	ListLowTransfers(ctx context.Context) ([]*models.Transfer, error)
	DeliveryReportRows(ctx context.Context) ([]*models.DeliveryReportRow, error)
}

// TaskRunner runs side effects after the response is decided.
type TaskRunner interface {
	Go(kind, name string, fn func(ctx context.Context) error)
}

// ReportCache is invalidated whenever stock figures change.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte)
	InvalidateReports(ctx context.Context)
}

// SweepLocker keeps a backfill sweep single-flight across replicas.
type SweepLocker interface {
	Acquire(ctx context.Context, name string) (func(), error)
}
