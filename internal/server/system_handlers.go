package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/spyglass/internal/cache"
	"github.com/aristath/spyglass/internal/database"
)

// SystemHandlers serves health, cache and database monitoring endpoints.
type SystemHandlers struct {
	log        zerolog.Logger
	dataDir    string
	cacheDB    *database.DB
	historyDB  *database.DB
	cacheStore *cache.Store
	startedAt  time.Time
}

// NewSystemHandlers creates system handlers.
func NewSystemHandlers(log zerolog.Logger, dataDir string, cacheDB, historyDB *database.DB, cacheStore *cache.Store) *SystemHandlers {
	return &SystemHandlers{
		log:        log.With().Str("handler", "system").Logger(),
		dataDir:    dataDir,
		cacheDB:    cacheDB,
		historyDB:  historyDB,
		cacheStore: cacheStore,
		startedAt:  time.Now(),
	}
}

// RegisterRoutes registers all system routes
func (h *SystemHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/system", func(r chi.Router) {
		r.Get("/status", h.HandleSystemStatus)
		r.Get("/databases", h.HandleDatabaseStats)
		r.Get("/disk", h.HandleDiskUsage)
		r.Route("/cache", func(r chi.Router) {
			r.Get("/", h.HandleCacheStats)
			r.Delete("/stats", h.HandleResetCacheStats)
			r.Post("/cleanup", h.HandleCacheCleanup)
			r.Delete("/ticker/{ticker}", h.HandleInvalidateTicker)
		})
	})
}

// HandleHealth handles GET /health. Reports degraded when a database ping
// fails; the service keeps serving uncached results in that state.
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	databases := map[string]string{}
	for _, db := range []*database.DB{h.cacheDB, h.historyDB} {
		if db == nil {
			continue
		}
		if err := db.QuickCheck(r.Context()); err != nil {
			databases[db.Name()] = "unreachable"
			status = "degraded"
		} else {
			databases[db.Name()] = "ok"
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"databases": databases,
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"uptime":     time.Since(h.startedAt).Round(time.Second).String(),
		"goVersion":  runtime.Version(),
		"goroutines": runtime.NumGoroutine(),
		"cpuPercent": cpuPercent,
		"memPercent": memPercent,
		"cache":      h.cacheStore.Stats().Snapshot(),
	})
}

// HandleCacheStats handles GET /api/system/cache
func (h *SystemHandlers) HandleCacheStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": h.cacheStore.Stats().Snapshot(),
	})
}

// HandleResetCacheStats handles DELETE /api/system/cache/stats
func (h *SystemHandlers) HandleResetCacheStats(w http.ResponseWriter, r *http.Request) {
	h.cacheStore.Stats().Reset()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": h.cacheStore.Stats().Snapshot(),
	})
}

// HandleCacheCleanup handles POST /api/system/cache/cleanup. Deletes expired
// entries immediately instead of waiting for the scheduled job.
func (h *SystemHandlers) HandleCacheCleanup(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.cacheStore.DeleteExpired()
	if err != nil {
		h.log.Error().Err(err).Msg("Cache cleanup failed")
		http.Error(w, "Cache cleanup failed", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"deleted": deleted,
	})
}

// HandleInvalidateTicker handles DELETE /api/system/cache/ticker/{ticker}.
// Removes every cached entry referencing the ticker across all namespaces.
func (h *SystemHandlers) HandleInvalidateTicker(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))
	if ticker == "" {
		http.Error(w, "Ticker is required", http.StatusBadRequest)
		return
	}

	deleted := h.cacheStore.InvalidateTicker(ticker)
	h.log.Info().Str("ticker", ticker).Int("deleted", deleted).Msg("Ticker cache invalidated")

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":  ticker,
		"deleted": deleted,
	})
}

// HandleDatabaseStats handles GET /api/system/databases
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	type dbInfo struct {
		Name         string  `json:"name"`
		SizeMB       float64 `json:"sizeMB"`
		WALSizeMB    float64 `json:"walSizeMB"`
		PageCount    int64   `json:"pageCount"`
		PageSizeByte int64   `json:"pageSize"`
	}

	var infos []dbInfo
	totalMB := 0.0
	for _, db := range []*database.DB{h.cacheDB, h.historyDB} {
		if db == nil {
			continue
		}
		stats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("db", db.Name()).Msg("Failed to get database stats")
			continue
		}
		sizeMB := float64(stats.SizeBytes) / 1024 / 1024
		totalMB += sizeMB
		infos = append(infos, dbInfo{
			Name:         db.Name(),
			SizeMB:       sizeMB,
			WALSizeMB:    float64(stats.WALSizeBytes) / 1024 / 1024,
			PageCount:    stats.PageCount,
			PageSizeByte: stats.PageSize,
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"databases":   infos,
		"totalSizeMB": totalMB,
		"lastChecked": time.Now().Format(time.RFC3339),
	})
}

// HandleDiskUsage handles GET /api/system/disk
func (h *SystemHandlers) HandleDiskUsage(w http.ResponseWriter, r *http.Request) {
	dataMB := h.getDirSize(h.dataDir)
	backupsMB := h.getDirSize(filepath.Join(h.dataDir, "backups"))

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"dataDirMB": dataMB,
		"backupsMB": backupsMB,
	})
}

// getDirSize calculates total size of a directory in MB
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	var totalSize int64

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

// getSystemStats returns CPU and RAM usage percentages. The CPU sample uses
// a 100ms interval so the status endpoint stays fast.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
