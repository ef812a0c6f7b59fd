package health

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// RedisPinger reports whether the cache answers. A nil pinger means the
// service runs without Redis.
type RedisPinger interface {
	Enabled() bool
	Healthy(ctx context.Context) bool
}

type HealthChecker struct {
	db    *pgxpool.Pool
	redis RedisPinger
}

type HealthStatus struct {
	Status   string           `json:"status"`
	Database ComponentHealth  `json:"database"`
	Redis    *ComponentHealth `json:"redis,omitempty"`
	Host     *HostStats       `json:"host,omitempty"`
}

type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

type HostStats struct {
	MemoryUsedPercent float64 `json:"memory_used_percent"`
	MemoryAvailableMB uint64  `json:"memory_available_mb"`
	DiskUsedPercent   float64 `json:"disk_used_percent"`
}

func NewHealthChecker(db *pgxpool.Pool, redis RedisPinger) *HealthChecker {
	return &HealthChecker{db: db, redis: redis}
}

func (h *HealthChecker) CheckBasic(ctx context.Context) HealthStatus {
	dbHealth := h.checkDatabase(ctx)

	status := "healthy"
	if dbHealth.Status != "healthy" {
		status = "unhealthy"
	}
	return HealthStatus{Status: status, Database: dbHealth}
}

// CheckDetailed adds the cache and host memory to the basic check. A
// failing cache degrades the status but does not make it unhealthy.
func (h *HealthChecker) CheckDetailed(ctx context.Context) HealthStatus {
	status := h.CheckBasic(ctx)

	if h.redis != nil && h.redis.Enabled() {
		start := time.Now()
		rh := ComponentHealth{Status: "healthy"}
		if !h.redis.Healthy(ctx) {
			rh.Status = "unhealthy"
			if status.Status == "healthy" {
				status.Status = "degraded"
			}
		}
		rh.ResponseTime = time.Since(start).Milliseconds()
		status.Redis = &rh
	}

	host := &HostStats{}
	if m, err := mem.VirtualMemory(); err == nil {
		host.MemoryUsedPercent = m.UsedPercent
		host.MemoryAvailableMB = m.Available / 1024 / 1024
	}
	if d, err := disk.Usage("/"); err == nil {
		host.DiskUsedPercent = d.UsedPercent
	}
	status.Host = host
	return status
}

func (h *HealthChecker) checkDatabase(ctx context.Context) ComponentHealth {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return ComponentHealth{Status: "unhealthy", ResponseTime: responseTime}
	}
	return ComponentHealth{Status: "healthy", ResponseTime: responseTime}
}
