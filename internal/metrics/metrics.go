package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wetmill_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wetmill_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	BaggingOffsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wetmill_bagging_offs_recorded_total",
		Help: "Bagging-off rows created, by processing type.",
	}, []string{"processing_type"})

	BaggedKgs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wetmill_bagged_kgs_total",
		Help: "Parchment kilograms bagged, by grade key.",
	}, []string{"grade_key"})

	TransfersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wetmill_transfers_created_total",
		Help: "Transfer rows created, by grade group.",
	}, []string{"grade_group"})

	GradeKeysRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wetmill_transfer_grade_keys_rejected_total",
		Help: "Requested grade keys dropped because they were already transferred.",
	})

	QualitySamplesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wetmill_quality_samples_created_total",
		Help: "Quality sample rows created, by trigger.",
	}, []string{"source"})

	DeliveryRecordsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wetmill_delivery_records_created_total",
		Help: "Delivery quality rows created.",
	})

	TaskOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wetmill_task_outcomes_total",
		Help: "Side-effect task results by task kind and outcome.",
	}, []string{"task", "outcome"})

	TaskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wetmill_task_duration_seconds",
		Help:    "Side-effect task run time including retries.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	ReportCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wetmill_report_cache_lookups_total",
		Help: "Report cache lookups by report and result.",
	}, []string{"report", "result"})
)
