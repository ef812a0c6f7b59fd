package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/batch"
	"wetmill-backend/internal/grading"
	"wetmill-backend/internal/models"
)

// memDB backs every fake store so that the cross-table side effects of the
// real repositories (processing status, quality status) stay visible.
type memDB struct {
	mu     sync.Mutex
	nextID int

	stations    map[int]*models.Station
	sites       map[int]*models.SiteCollection
	purchases   map[int]*models.Purchase
	processings map[int]*models.Processing
	baggingOffs map[int]*models.BaggingOff
	qualities   map[int]*models.Quality
	transfers   map[int]*models.Transfer
	deliveries  map[int]*models.QualityDelivery
	wet         map[int]*models.WetTransfer
	storages    map[int]*models.SampleStorage
}

func newMemDB() *memDB {
	return &memDB{
		stations:    make(map[int]*models.Station),
		sites:       make(map[int]*models.SiteCollection),
		purchases:   make(map[int]*models.Purchase),
		processings: make(map[int]*models.Processing),
		baggingOffs: make(map[int]*models.BaggingOff),
		qualities:   make(map[int]*models.Quality),
		transfers:   make(map[int]*models.Transfer),
		deliveries:  make(map[int]*models.QualityDelivery),
		wet:         make(map[int]*models.WetTransfer),
		storages:    make(map[int]*models.SampleStorage),
	}
}

func (db *memDB) id() int {
	db.nextID++
	return db.nextID
}

func sortedIDs[V any](m map[int]V) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func paged[T any](rows []T, page models.Page) ([]T, int) {
	total := len(rows)
	from := page.Offset()
	if from > total {
		from = total
	}
	to := from + page.Limit
	if to > total {
		to = total
	}
	return rows[from:to], total
}

// Stations

type fakeStations struct{ db *memDB }

func (f fakeStations) List(ctx context.Context) ([]*models.Station, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*models.Station
	for _, id := range sortedIDs(f.db.stations) {
		out = append(out, f.db.stations[id])
	}
	return out, nil
}

func (f fakeStations) Get(ctx context.Context, id int) (*models.Station, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	st, ok := f.db.stations[id]
	if !ok {
		return nil, apperr.NotFound("station not found")
	}
	return st, nil
}

func (f fakeStations) GetSiteCollection(ctx context.Context, id int) (*models.SiteCollection, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	site, ok := f.db.sites[id]
	if !ok {
		return nil, apperr.NotFound("site collection not found")
	}
	return site, nil
}

func (f fakeStations) ListSiteCollections(ctx context.Context, stationID int) ([]*models.SiteCollection, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*models.SiteCollection
	for _, id := range sortedIDs(f.db.sites) {
		if f.db.sites[id].StationID == stationID {
			out = append(out, f.db.sites[id])
		}
	}
	return out, nil
}

// Purchases

type fakePurchases struct{ db *memDB }

func (f fakePurchases) Create(ctx context.Context, p *models.Purchase) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p.ID = f.db.id()
	f.db.purchases[p.ID] = p
	return nil
}

func (f fakePurchases) Get(ctx context.Context, id int) (*models.Purchase, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.purchases[id]
	if !ok {
		return nil, apperr.NotFound("purchase not found")
	}
	cp := *p
	return &cp, nil
}

func (f fakePurchases) Update(ctx context.Context, p *models.Purchase) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.purchases[p.ID]; !ok {
		return apperr.NotFound("purchase not found")
	}
	cp := *p
	f.db.purchases[p.ID] = &cp
	return nil
}

func (f fakePurchases) Delete(ctx context.Context, id int) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.purchases[id]; !ok {
		return apperr.NotFound("purchase not found")
	}
	delete(f.db.purchases, id)
	return nil
}

func (f fakePurchases) FindSameDay(ctx context.Context, w PurchaseWindow) (*models.Purchase, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, id := range sortedIDs(f.db.purchases) {
		p := f.db.purchases[id]
		if p.ID == w.ExcludeID || p.StationID != w.StationID || p.Grade != w.Grade {
			continue
		}
		if p.PurchaseDate.Before(w.From) || p.PurchaseDate.After(w.To) {
			continue
		}
		if w.SiteCollectionID != nil {
			if p.SiteCollectionID == nil || *p.SiteCollectionID != *w.SiteCollectionID {
				continue
			}
		} else if p.DeliveryType != w.DeliveryType {
			continue
		}
		return p, nil
	}
	return nil, nil
}

func (f fakePurchases) ListByStation(ctx context.Context, stationID int, page models.Page) ([]*models.Purchase, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var rows []*models.Purchase
	for _, id := range sortedIDs(f.db.purchases) {
		if f.db.purchases[id].StationID == stationID {
			rows = append(rows, f.db.purchases[id])
		}
	}
	out, total := paged(rows, page)
	return out, total, nil
}

// Processings

type fakeProcessings struct{ db *memDB }

func (f fakeProcessings) Create(ctx context.Context, p *models.Processing) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p.ID = f.db.id()
	if p.BatchFamily == "" {
		p.BatchFamily = batch.Family(p.BatchNo)
	}
	f.db.processings[p.ID] = p
	return nil
}

func (f fakeProcessings) Get(ctx context.Context, id int) (*models.Processing, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.processings[id]
	if !ok {
		return nil, apperr.NotFound("processing not found")
	}
	return p, nil
}

func (f fakeProcessings) GetByBatch(ctx context.Context, batchNo string) (*models.Processing, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var latest *models.Processing
	for _, id := range sortedIDs(f.db.processings) {
		if f.db.processings[id].BatchNo == batchNo {
			latest = f.db.processings[id]
		}
	}
	if latest == nil {
		return nil, apperr.NotFound("processing not found")
	}
	return latest, nil
}

func (f fakeProcessings) ExistsWithStatus(ctx context.Context, batchNo string, statuses ...string) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, p := range f.db.processings {
		if p.BatchNo == batchNo && contains(statuses, p.Status) {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeProcessings) ListByStation(ctx context.Context, stationID int, page models.Page) ([]*models.Processing, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var rows []*models.Processing
	for _, id := range sortedIDs(f.db.processings) {
		if f.db.processings[id].StationID == stationID {
			rows = append(rows, f.db.processings[id])
		}
	}
	out, total := paged(rows, page)
	return out, total, nil
}

// Bagging-offs

type fakeBaggingOffs struct{ db *memDB }

func (f fakeBaggingOffs) syncProcessing(b *models.BaggingOff) {
	p, ok := f.db.processings[b.ProcessingID]
	if !ok {
		return
	}
	if b.Status == models.BaggingOffCompleted {
		now := time.Now()
		p.Status = models.ProcessingCompleted
		p.EndDate = &now
	} else if p.Status == models.ProcessingInProgress {
		p.Status = models.ProcessingBaggingStarted
	}
}

func (f fakeBaggingOffs) Create(ctx context.Context, b *models.BaggingOff) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b.ID = f.db.id()
	b.CreatedAt = time.Now()
	f.db.baggingOffs[b.ID] = b
	f.syncProcessing(b)
	for _, w := range f.db.wet {
		if w.BatchNo == b.BatchNo && w.Status != models.WetTransferReceiverCompleted {
			w.Status = b.Status
		}
	}
	return nil
}

func (f fakeBaggingOffs) Update(ctx context.Context, b *models.BaggingOff) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.baggingOffs[b.ID]; !ok {
		return apperr.NotFound("bagging-off not found")
	}
	f.db.baggingOffs[b.ID] = b
	if b.Status == models.BaggingOffCompleted {
		f.syncProcessing(b)
	}
	return nil
}

func (f fakeBaggingOffs) Get(ctx context.Context, id int) (*models.BaggingOff, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.baggingOffs[id]
	if !ok {
		return nil, apperr.NotFound("bagging-off not found")
	}
	return b, nil
}

func (f fakeBaggingOffs) Delete(ctx context.Context, id int) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.baggingOffs[id]; !ok {
		return apperr.NotFound("bagging-off not found")
	}
	delete(f.db.baggingOffs, id)
	return nil
}

func (f fakeBaggingOffs) where(keep func(*models.BaggingOff) bool) []*models.BaggingOff {
	var out []*models.BaggingOff
	for _, id := range sortedIDs(f.db.baggingOffs) {
		if keep(f.db.baggingOffs[id]) {
			out = append(out, f.db.baggingOffs[id])
		}
	}
	return out
}

func (f fakeBaggingOffs) ListByBatch(ctx context.Context, batchNo string) ([]*models.BaggingOff, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.where(func(b *models.BaggingOff) bool { return b.BatchNo == batchNo }), nil
}

func (f fakeBaggingOffs) ListByStation(ctx context.Context, stationID int, page models.Page) ([]*models.BaggingOff, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out, total := paged(f.where(func(b *models.BaggingOff) bool { return b.StationID == stationID }), page)
	return out, total, nil
}

func (f fakeBaggingOffs) latestPerBatch(keep func(*models.BaggingOff) bool) []*models.BaggingOff {
	latest := make(map[string]*models.BaggingOff)
	var order []string
	for _, b := range f.where(keep) {
		if _, ok := latest[b.BatchNo]; !ok {
			order = append(order, b.BatchNo)
		}
		latest[b.BatchNo] = b
	}
	out := make([]*models.BaggingOff, 0, len(order))
	for _, batchNo := range order {
		out = append(out, latest[batchNo])
	}
	return out
}

func (f fakeBaggingOffs) LatestPerBatch(ctx context.Context) ([]*models.BaggingOff, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.latestPerBatch(func(*models.BaggingOff) bool { return true }), nil
}

func (f fakeBaggingOffs) hasQuality(batchNo string) bool {
	for _, q := range f.db.qualities {
		if q.BatchNo == batchNo {
			return true
		}
	}
	return false
}

func (f fakeBaggingOffs) ListWithoutQuality(ctx context.Context) ([]*models.BaggingOff, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.where(func(b *models.BaggingOff) bool { return !f.hasQuality(b.BatchNo) }), nil
}

func (f fakeBaggingOffs) gradeA(b *models.BaggingOff) bool {
	p, ok := f.db.processings[b.ProcessingID]
	return ok && p.Grade == "A"
}

func (f fakeBaggingOffs) FindGradeA(ctx context.Context, batchNo string, completedOnly bool) (*models.BaggingOff, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	rows := f.where(func(b *models.BaggingOff) bool {
		return b.BatchNo == batchNo && f.gradeA(b) && (!completedOnly || b.Status == models.BaggingOffCompleted)
	})
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[len(rows)-1], nil
}

func (f fakeBaggingOffs) SetQualityStatus(ctx context.Context, batchNo string, status string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.setQualityStatus(batchNo, status)
	return nil
}

func (db *memDB) setQualityStatus(batchNo, status string) {
	for _, b := range db.baggingOffs {
		if b.BatchNo == batchNo {
			b.QualityStatus = status
		}
	}
}

func (f fakeBaggingOffs) ListPendingGradeA(ctx context.Context, stationID int) ([]*models.BaggingOff, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.latestPerBatch(func(b *models.BaggingOff) bool {
		return b.StationID == stationID && b.Status == models.BaggingOffCompleted &&
			b.QualityStatus == models.QualityStatusPending && f.gradeA(b)
	}), nil
}

// Quality samples

type fakeQualities struct{ db *memDB }

func (f fakeQualities) CreateIfAbsent(ctx context.Context, q *models.Quality) (*models.Quality, bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, existing := range f.db.qualities {
		if existing.BatchNo == q.BatchNo && existing.StationID == q.StationID && existing.ProcessingID == q.ProcessingID {
			return existing, false, nil
		}
	}
	q.ID = f.db.id()
	f.db.qualities[q.ID] = q
	f.db.setQualityStatus(q.BatchNo, models.QualityStatusTesting)
	return q, true, nil
}

func (f fakeQualities) Get(ctx context.Context, id int) (*models.Quality, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	q, ok := f.db.qualities[id]
	if !ok {
		return nil, apperr.NotFound("quality record not found")
	}
	return q, nil
}

func (f fakeQualities) ExistsForBatch(ctx context.Context, batchNo string) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, q := range f.db.qualities {
		if q.BatchNo == batchNo {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeQualities) FindByBatchStation(ctx context.Context, batchNo string, stationID int) (*models.Quality, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, id := range sortedIDs(f.db.qualities) {
		q := f.db.qualities[id]
		if q.BatchNo == batchNo && q.StationID == stationID {
			return q, nil
		}
	}
	return nil, apperr.NotFound("quality record not found")
}

func (f fakeQualities) FindProvenance(ctx context.Context, baggingOffID int, batchNo string) (*models.Quality, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	matchers := []func(*models.Quality) bool{
		func(q *models.Quality) bool { return q.BaggingOffID == baggingOffID },
		func(q *models.Quality) bool { return q.BatchFamily == batch.Family(batchNo) },
		func(q *models.Quality) bool { return q.BatchNo == batchNo },
	}
	for _, match := range matchers {
		for _, id := range sortedIDs(f.db.qualities) {
			if match(f.db.qualities[id]) {
				return f.db.qualities[id], nil
			}
		}
	}
	return nil, nil
}

func (f fakeQualities) SaveResult(ctx context.Context, q *models.Quality) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.qualities[q.ID] = q
	f.db.setQualityStatus(q.BatchNo, models.QualityStatusTested)
	return nil
}

func (f fakeQualities) List(ctx context.Context, stationID *int, page models.Page) ([]*models.Quality, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var rows []*models.Quality
	for _, id := range sortedIDs(f.db.qualities) {
		q := f.db.qualities[id]
		if stationID == nil || q.StationID == *stationID {
			rows = append(rows, q)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Status != models.SampleCompleted && rows[j].Status == models.SampleCompleted
	})
	out, total := paged(rows, page)
	return out, total, nil
}

// Transfers

type fakeTransfers struct{ db *memDB }

func (f fakeTransfers) CreateLocked(ctx context.Context, drafts []*models.Transfer) ([]*models.Transfer, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var created []*models.Transfer
	for _, draft := range drafts {
		t := *draft
		b, ok := f.db.baggingOffs[t.BaggingOffID]
		if !ok {
			return nil, apperr.NotFound("bagging-off not found")
		}
		var earlier []*models.Transfer
		for _, other := range f.db.transfers {
			if other.BaggingOffID == b.ID {
				earlier = append(earlier, other)
			}
		}
		if !grading.FilterTransfer(&t, grading.Transferred(b.HGTransported, earlier)) {
			continue
		}
		t.ID = f.db.id()
		t.CreatedAt = time.Now()
		f.db.transfers[t.ID] = &t
		b.HGTransported = grading.Union(b.HGTransported, t.GradeKeys())
		created = append(created, &t)
	}
	if len(created) == 0 {
		return nil, apperr.Conflict("all requested grade keys were already transferred")
	}
	return created, nil
}

func (f fakeTransfers) Get(ctx context.Context, id int) (*models.Transfer, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t, ok := f.db.transfers[id]
	if !ok {
		return nil, apperr.NotFound("transfer not found")
	}
	return t, nil
}

func (f fakeTransfers) where(keep func(*models.Transfer) bool) []*models.Transfer {
	var out []*models.Transfer
	for _, id := range sortedIDs(f.db.transfers) {
		if keep(f.db.transfers[id]) {
			out = append(out, f.db.transfers[id])
		}
	}
	return out
}

func (f fakeTransfers) List(ctx context.Context, page models.Page) ([]*models.Transfer, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out, total := paged(f.where(func(*models.Transfer) bool { return true }), page)
	return out, total, nil
}

func (f fakeTransfers) ListByBatch(ctx context.Context, batchNo string) ([]*models.Transfer, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.where(func(t *models.Transfer) bool {
		return t.BatchNo == batchNo || (t.GroupBatchNo != nil && *t.GroupBatchNo == batchNo)
	}), nil
}

func (f fakeTransfers) ListByStation(ctx context.Context, stationID int, from, to *time.Time) ([]*models.Transfer, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.where(func(t *models.Transfer) bool {
		if t.StationID != stationID {
			return false
		}
		if from != nil && t.TransferDate.Before(*from) {
			return false
		}
		return to == nil || !t.TransferDate.After(*to)
	}), nil
}

func (f fakeTransfers) ListByBaggingOff(ctx context.Context, baggingOffID int) ([]*models.Transfer, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.where(func(t *models.Transfer) bool { return t.BaggingOffID == baggingOffID }), nil
}

func (f fakeTransfers) ListByGradeGroup(ctx context.Context, gradeGroup string) ([]*models.Transfer, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.where(func(t *models.Transfer) bool { return t.GradeGroup == gradeGroup }), nil
}

func (f fakeTransfers) ListHighWithoutDelivery(ctx context.Context) ([]*models.Transfer, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.where(func(t *models.Transfer) bool {
		if t.GradeGroup != models.GradeGroupHigh {
			return false
		}
		for _, d := range f.db.deliveries {
			if d.TransferID == t.ID {
				return false
			}
		}
		return true
	}), nil
}

func (f fakeTransfers) ListCompletedHigh(ctx context.Context, stationID int) ([]*models.Transfer, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.where(func(t *models.Transfer) bool {
		return t.StationID == stationID && t.GradeGroup == models.GradeGroupHigh && t.Status == models.TransferCompleted
	}), nil
}

// Delivery records

type fakeDeliveries struct{ db *memDB }

func (f fakeDeliveries) CreateIfAbsent(ctx context.Context, d *models.QualityDelivery) (*models.QualityDelivery, bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, existing := range f.db.deliveries {
		if existing.TransferID == d.TransferID && existing.GradeKey == d.GradeKey {
			return existing, false, nil
		}
	}
	d.ID = f.db.id()
	f.db.deliveries[d.ID] = d
	return d, true, nil
}

func (f fakeDeliveries) Get(ctx context.Context, id, transferID int) (*models.QualityDelivery, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	d, ok := f.db.deliveries[id]
	if !ok || d.TransferID != transferID {
		return nil, apperr.NotFound("delivery record not found")
	}
	return d, nil
}

func (f fakeDeliveries) Update(ctx context.Context, d *models.QualityDelivery) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.deliveries[d.ID] = d
	return nil
}

func (f fakeDeliveries) withTrucks() []*models.QualityDelivery {
	var out []*models.QualityDelivery
	for _, id := range sortedIDs(f.db.deliveries) {
		d := *f.db.deliveries[id]
		if t, ok := f.db.transfers[d.TransferID]; ok {
			date := t.TransferDate
			d.TruckNumber = t.TruckNumber
			d.TransportGroupID = t.TransportGroupID
			d.TransferDate = &date
		}
		out = append(out, &d)
	}
	return out
}

func (f fakeDeliveries) List(ctx context.Context, page models.Page) ([]*models.QualityDelivery, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out, total := paged(f.withTrucks(), page)
	return out, total, nil
}

func (f fakeDeliveries) ListWithTrucks(ctx context.Context) ([]*models.QualityDelivery, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.withTrucks(), nil
}

func (f fakeDeliveries) ListByTransportGroup(ctx context.Context, transportGroupID string) ([]*models.QualityDelivery, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*models.QualityDelivery
	for _, d := range f.withTrucks() {
		if d.TransportGroupID == transportGroupID {
			out = append(out, d)
		}
	}
	return out, nil
}

// Wet transfers

type fakeWetTransfers struct{ db *memDB }

func (f fakeWetTransfers) Create(ctx context.Context, w *models.WetTransfer) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, existing := range f.db.wet {
		if existing.ProcessingID == w.ProcessingID && existing.BatchNo == w.BatchNo && existing.Grade == w.Grade {
			return apperr.Conflict("wet transfer already exists")
		}
	}
	w.ID = f.db.id()
	f.db.wet[w.ID] = w
	if p, ok := f.db.processings[w.ProcessingID]; ok {
		p.Status = models.ProcessingTransferred
	}
	return nil
}

func (f fakeWetTransfers) Get(ctx context.Context, id int) (*models.WetTransfer, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	w, ok := f.db.wet[id]
	if !ok {
		return nil, apperr.NotFound("wet transfer not found")
	}
	cp := *w
	return &cp, nil
}

func (f fakeWetTransfers) Exists(ctx context.Context, processingID int, batchNo, grade string) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, w := range f.db.wet {
		if w.ProcessingID == processingID && w.BatchNo == batchNo && w.Grade == grade {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeWetTransfers) SetStatus(ctx context.Context, id int, status string, notes *string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	w, ok := f.db.wet[id]
	if !ok {
		return apperr.NotFound("wet transfer not found")
	}
	w.Status = status
	if notes != nil {
		w.Notes = notes
	}
	return nil
}

func (f fakeWetTransfers) Delete(ctx context.Context, id int) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	w, ok := f.db.wet[id]
	if !ok {
		return apperr.NotFound("wet transfer not found")
	}
	delete(f.db.wet, id)
	if p, ok := f.db.processings[w.ProcessingID]; ok {
		p.Status = models.ProcessingInProgress
	}
	return nil
}

func (f fakeWetTransfers) where(keep func(*models.WetTransfer) bool) []*models.WetTransfer {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*models.WetTransfer
	for _, id := range sortedIDs(f.db.wet) {
		if keep(f.db.wet[id]) {
			out = append(out, f.db.wet[id])
		}
	}
	return out
}

func (f fakeWetTransfers) ListByBatch(ctx context.Context, batchNo string) ([]*models.WetTransfer, error) {
	return f.where(func(w *models.WetTransfer) bool { return w.BatchNo == batchNo }), nil
}

func (f fakeWetTransfers) ListBySource(ctx context.Context, stationID int) ([]*models.WetTransfer, error) {
	return f.where(func(w *models.WetTransfer) bool { return w.SourceStationID == stationID }), nil
}

func (f fakeWetTransfers) ListByDestination(ctx context.Context, stationID int) ([]*models.WetTransfer, error) {
	return f.where(func(w *models.WetTransfer) bool { return w.DestinationStationID == stationID }), nil
}

// Sample storage

type fakeStorages struct{ db *memDB }

func (f fakeStorages) List(ctx context.Context) ([]*models.SampleStorage, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*models.SampleStorage
	for _, id := range sortedIDs(f.db.storages) {
		out = append(out, f.db.storages[id])
	}
	return out, nil
}

func (f fakeStorages) Get(ctx context.Context, id int) (*models.SampleStorage, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	s, ok := f.db.storages[id]
	if !ok {
		return nil, apperr.NotFound("sample storage not found")
	}
	return s, nil
}

func (f fakeStorages) Create(ctx context.Context, s *models.SampleStorage) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, existing := range f.db.storages {
		if existing.Name == s.Name {
			return apperr.Conflict("sample storage already exists")
		}
	}
	s.ID = f.db.id()
	f.db.storages[s.ID] = s
	return nil
}

func (f fakeStorages) Update(ctx context.Context, s *models.SampleStorage) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.storages[s.ID] = s
	return nil
}

func (f fakeStorages) Delete(ctx context.Context, id int) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.storages[id]; !ok {
		return apperr.NotFound("sample storage not found")
	}
	delete(f.db.storages, id)
	return nil
}

// Reports

type fakeReports struct {
	processings []*models.Processing
	baggingOffs []*models.BaggingOff
	purchased   map[int]float64
	output      map[int]float64
	completed   []*models.Transfer
	low         []*models.Transfer
	rows        []*models.DeliveryReportRow
	calls       int
}

func (f *fakeReports) ListProcessings(ctx context.Context) ([]*models.Processing, error) {
	f.calls++
	return f.processings, nil
}

func (f *fakeReports) ListCountedBaggingOffs(ctx context.Context) ([]*models.BaggingOff, error) {
	return f.baggingOffs, nil
}

func (f *fakeReports) PurchaseKgsByStation(ctx context.Context) (map[int]float64, error) {
	return f.purchased, nil
}

func (f *fakeReports) OutputKgsByStation(ctx context.Context) (map[int]float64, error) {
	return f.output, nil
}

func (f *fakeReports) ListCompletedTransfers(ctx context.Context) ([]*models.Transfer, error) {
	return f.completed, nil
}

func (f *fakeReports) ListLowTransfers(ctx context.Context) ([]*models.Transfer, error) {
	return f.low, nil
}

func (f *fakeReports) DeliveryReportRows(ctx context.Context) ([]*models.DeliveryReportRow, error) {
	return f.rows, nil
}

// Side-effect plumbing

// syncTasks runs every task inline so tests see its effects immediately.
type syncTasks struct {
	mu     sync.Mutex
	names  []string
	errors []error
}

func (s *syncTasks) Go(kind, name string, fn func(ctx context.Context) error) {
	err := fn(context.Background())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = append(s.names, name)
	if err != nil {
		s.errors = append(s.errors, err)
	}
}

type memCache struct {
	mu          sync.Mutex
	data        map[string][]byte
	invalidated int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok
}

func (c *memCache) Set(ctx context.Context, key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

func (c *memCache) InvalidateReports(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.invalidated++
}

type busyLocker struct{}

func (busyLocker) Acquire(ctx context.Context, name string) (func(), error) {
	return nil, apperr.Conflict("the %s sweep is already running", name)
}

type memArchiver struct {
	puts map[string][]byte
}

func (a *memArchiver) Bucket() string { return "test-bucket" }

func (a *memArchiver) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if a.puts == nil {
		a.puts = make(map[string][]byte)
	}
	a.puts[key] = body
	return nil
}

// Fixture helpers

const (
	stationMUS = 1
	stationKAR = 2
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func admin() models.Caller { return models.Caller{UserID: 1, Role: models.RoleAdmin} }

func qualityStaff() models.Caller { return models.Caller{UserID: 2, Role: models.RoleQuality} }

func manager(stationID int) models.Caller {
	return models.Caller{UserID: 10 + stationID, Role: models.RoleCWSManager, StationID: intPtr(stationID)}
}

type world struct {
	db    *memDB
	tasks *syncTasks
	cache *memCache

	purchases   *PurchaseService
	processing  *ProcessingService
	quality     *QualityService
	baggingOffs *BaggingOffService
	deliveries  *DeliveryService
	transfers   *TransferService
	wet         *WetTransferService
	storages    *SampleStorageService
	batches     *BatchService
}

func newWorld() *world {
	db := newMemDB()
	db.stations[stationMUS] = &models.Station{ID: stationMUS, Name: "Musasa", Code: "MUS"}
	db.stations[stationKAR] = &models.Station{ID: stationKAR, Name: "Karongi", Code: "KAR"}
	db.sites[3] = &models.SiteCollection{ID: 3, Name: "Ruli", StationID: stationMUS}
	db.nextID = 100

	w := &world{db: db, tasks: &syncTasks{}, cache: newMemCache()}
	stations := fakeStations{db}
	processings := fakeProcessings{db}
	baggingOffs := fakeBaggingOffs{db}
	qualities := fakeQualities{db}
	transfers := fakeTransfers{db}

	w.purchases = NewPurchaseService(fakePurchases{db}, stations, processings, w.cache)
	w.processing = NewProcessingService(processings, stations)
	w.quality = NewQualityService(qualities, baggingOffs, nil, w.cache)
	w.baggingOffs = NewBaggingOffService(baggingOffs, processings, w.quality, w.tasks, w.cache)
	w.deliveries = NewDeliveryService(fakeDeliveries{db}, qualities, transfers, nil, w.cache)
	w.transfers = NewTransferService(transfers, baggingOffs, w.quality, w.deliveries, w.tasks, w.cache)
	w.wet = NewWetTransferService(fakeWetTransfers{db}, processings, w.cache)
	w.storages = NewSampleStorageService(fakeStorages{db})
	w.batches = NewBatchService(baggingOffs, transfers)
	return w
}

// startProcessing opens processing for a batch directly in the store.
func (w *world) startProcessing(batchNo string, stationID int, ptype models.ProcessingType, grade string, kgs float64) *models.Processing {
	p := &models.Processing{
		BatchNo:        batchNo,
		ProcessingType: ptype,
		StationID:      stationID,
		TotalKgs:       kgs,
		Grade:          grade,
		Status:         models.ProcessingInProgress,
		StartDate:      time.Now(),
	}
	_ = fakeProcessings{w.db}.Create(context.Background(), p)
	return p
}
