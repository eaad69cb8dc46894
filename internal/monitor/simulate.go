package monitor

import (
	"math/rand"
	"time"

	"github.com/orivyx/orivyx-backend/internal/models"
)

// simulatedHours is one week of hourly points, enough for the dashboard's
// 1h/1w/1m downsampling windows.
const simulatedHours = 168

// SimulatedHistory produces a plausible hourly series ending at now. Used
// when the monitor API has no data; the result is always flagged as
// simulated so the dashboard can tell.
func SimulatedHistory(now time.Time) []models.HistoryPoint {
	points := make([]models.HistoryPoint, simulatedHours)
	for i := range points {
		ts := now.Add(-time.Duration(simulatedHours-1-i) * time.Hour)
		points[i] = models.HistoryPoint{
			Timestamp:     ts.UTC().Format(time.RFC3339),
			CPUPercent:    clampPct(30 + rand.Float64()*60),
			RAMPercent:    clampPct(40 + rand.Float64()*40),
			DiskPercent:   clampPct(15 + rand.Float64()*20),
			DiskReadMbps:  50 + rand.Float64()*150,
			DiskWriteMbps: 20 + rand.Float64()*100,
			NetInMbps:     (80 + rand.Float64()*160) / 1000,
			NetOutMbps:    (30 + rand.Float64()*80) / 1000,
		}
	}
	return points
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
