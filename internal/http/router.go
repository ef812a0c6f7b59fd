package http

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wetmill-backend/internal/handlers"
	"wetmill-backend/internal/middleware"
)

// Handlers bundles every resource handler the router mounts.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Health        *handlers.HealthHandler
	Station       *handlers.StationHandler
	Purchase      *handlers.PurchaseHandler
	Processing    *handlers.ProcessingHandler
	BaggingOff    *handlers.BaggingOffHandler
	Quality       *handlers.QualityHandler
	Delivery      *handlers.DeliveryHandler
	Transfer      *handlers.TransferHandler
	WetTransfer   *handlers.WetTransferHandler
	SampleStorage *handlers.SampleStorageHandler
	Batch         *handlers.BatchHandler
	Report        *handlers.ReportHandler
	Admin         *handlers.AdminHandler
}

func NewRouter(h Handlers, authMiddleware *middleware.AuthMiddleware) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.PanicRecovery)
	r.Use(middleware.MetricsMiddleware)

	// Health and metrics (no authentication)
	r.HandleFunc("/health", h.Health.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", h.Health.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", h.Health.DetailedHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	r.HandleFunc("/auth/login", h.Auth.Login).Methods("POST")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Authenticate)
	api.Use(middleware.RequestLogging)

	api.HandleFunc("/me", h.Auth.Me).Methods("GET")

	// Stations
	stations := api.PathPrefix("/stations").Subrouter()
	stations.HandleFunc("", h.Station.List).Methods("GET")
	stations.HandleFunc("/{id}", h.Station.Get).Methods("GET")
	stations.HandleFunc("/{id}/site-collections", h.Station.SiteCollections).Methods("GET")

	// Purchases
	purchases := api.PathPrefix("/purchases").Subrouter()
	purchases.HandleFunc("", h.Purchase.Create).Methods("POST")
	purchases.HandleFunc("/check", h.Purchase.Check).Methods("GET")
	purchases.HandleFunc("/station/{stationId}", h.Purchase.ListByStation).Methods("GET")
	purchases.HandleFunc("/{id}", h.Purchase.Get).Methods("GET")
	purchases.HandleFunc("/{id}", h.Purchase.Update).Methods("PUT")
	purchases.HandleFunc("/{id}", h.Purchase.Delete).Methods("DELETE")

	// Processing
	processing := api.PathPrefix("/processing").Subrouter()
	processing.HandleFunc("", h.Processing.Start).Methods("POST")
	processing.HandleFunc("/batch/{batchNo}", h.Processing.GetByBatch).Methods("GET")
	processing.HandleFunc("/station/{stationId}", h.Processing.ListByStation).Methods("GET")
	processing.HandleFunc("/{id}", h.Processing.Get).Methods("GET")

	// Bagging-off
	bagging := api.PathPrefix("/bagging-off").Subrouter()
	bagging.HandleFunc("", h.BaggingOff.Record).Methods("POST")
	bagging.HandleFunc("/batch/{batchNo}", h.BaggingOff.ListByBatch).Methods("GET")
	bagging.HandleFunc("/station/{stationId}", h.BaggingOff.ListByStation).Methods("GET")
	bagging.HandleFunc("/{id}", h.BaggingOff.Get).Methods("GET")
	bagging.HandleFunc("/{id}", h.BaggingOff.Update).Methods("PUT")
	bagging.HandleFunc("/{id}", h.BaggingOff.Delete).Methods("DELETE")

	// Quality samples
	quality := api.PathPrefix("/quality").Subrouter()
	quality.HandleFunc("", h.Quality.List).Methods("GET")
	quality.HandleFunc("/initial-test", h.Quality.InitialTest).Methods("POST")
	quality.HandleFunc("/test-result", h.Quality.TestResult).Methods("POST")
	quality.HandleFunc("/create-for-all", h.Quality.CreateForAll).Methods("POST")
	quality.HandleFunc("/create-missing", h.Quality.CreateMissing).Methods("POST")
	quality.HandleFunc("/station/{stationId}", h.Quality.ListByStation).Methods("GET")
	quality.HandleFunc("/{id}", h.Quality.Get).Methods("GET")

	// Delivery quality
	delivery := api.PathPrefix("/quality-delivery").Subrouter()
	delivery.HandleFunc("", h.Delivery.List).Methods("GET")
	delivery.HandleFunc("/test-result", h.Delivery.TestResult).Methods("POST")
	delivery.HandleFunc("/trucks", h.Delivery.TruckLoads).Methods("GET")
	delivery.HandleFunc("/transport-group/{groupId}", h.Delivery.ByTransportGroup).Methods("GET")
	delivery.HandleFunc("/create-for-high-grade", h.Delivery.CreateForHighGrade).Methods("POST")
	delivery.HandleFunc("/create-missing", h.Delivery.CreateMissing).Methods("POST")

	// Transfers
	transfers := api.PathPrefix("/transfers").Subrouter()
	transfers.HandleFunc("", h.Transfer.Create).Methods("POST")
	transfers.HandleFunc("", h.Transfer.List).Methods("GET")
	transfers.HandleFunc("/batch/{batchNo}", h.Transfer.ListByBatch).Methods("GET")
	transfers.HandleFunc("/station/{stationId}", h.Transfer.ListByStation).Methods("GET")
	transfers.HandleFunc("/bagging-off/{baggingOffId}", h.Transfer.ListByBaggingOff).Methods("GET")
	transfers.HandleFunc("/grade-group/{gradeGroup}", h.Transfer.ListByGradeGroup).Methods("GET")
	transfers.HandleFunc("/{id}/delivery-note", h.Transfer.DeliveryNote).Methods("GET")
	transfers.HandleFunc("/{id}", h.Transfer.Get).Methods("GET")

	// Wet parchment transfers between stations
	wet := api.PathPrefix("/wet-transfers").Subrouter()
	wet.HandleFunc("", h.WetTransfer.Create).Methods("POST")
	wet.HandleFunc("/batch/{batchNo}", h.WetTransfer.ListByBatch).Methods("GET")
	wet.HandleFunc("/source/{stationId}", h.WetTransfer.ListBySource).Methods("GET")
	wet.HandleFunc("/destination/{stationId}", h.WetTransfer.ListByDestination).Methods("GET")
	wet.HandleFunc("/summary/{stationId}", h.WetTransfer.Summary).Methods("GET")
	wet.HandleFunc("/{id}/receive", h.WetTransfer.Receive).Methods("PUT")
	wet.HandleFunc("/{id}/reject", h.WetTransfer.Reject).Methods("PUT")
	wet.HandleFunc("/{id}", h.WetTransfer.Get).Methods("GET")
	wet.HandleFunc("/{id}", h.WetTransfer.Delete).Methods("DELETE")

	// Sample storage
	storage := api.PathPrefix("/sample-storage").Subrouter()
	storage.HandleFunc("", h.SampleStorage.List).Methods("GET")
	storage.HandleFunc("", h.SampleStorage.Create).Methods("POST")
	storage.HandleFunc("/{id}", h.SampleStorage.Get).Methods("GET")
	storage.HandleFunc("/{id}", h.SampleStorage.Update).Methods("PUT")
	storage.HandleFunc("/{id}", h.SampleStorage.Delete).Methods("DELETE")

	// Station worklists
	batches := api.PathPrefix("/batches").Subrouter()
	batches.HandleFunc("/station/{stationId}/pending-grade-a", h.Batch.PendingGradeA).Methods("GET")
	batches.HandleFunc("/station/{stationId}/high-grade-transfers", h.Batch.HighGradeTransfers).Methods("GET")

	// Reports
	reports := api.PathPrefix("/reports").Subrouter()
	reports.HandleFunc("/yield", h.Report.Yield).Methods("GET")
	reports.HandleFunc("/yield/export", h.Report.YieldExport).Methods("GET")
	reports.HandleFunc("/stock", h.Report.Stock).Methods("GET")
	reports.HandleFunc("/delivery", h.Report.Delivery).Methods("GET")
	reports.HandleFunc("/{name}/archive", h.Report.Archive).Methods("POST")

	// Admin
	api.HandleFunc("/admin/task-failures", h.Admin.TaskFailures).Methods("GET")

	return r
}
