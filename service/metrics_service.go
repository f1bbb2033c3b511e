package service

import (
	"sync/atomic"
	"time"

	"github.com/tieubaoca/contract-analysis-be/types"
)

// MetricsService holds process-wide usage counters. Handlers increment
// them; the pipeline itself never touches them.
type MetricsService struct {
	startTime        time.Time
	totalIngestions  atomic.Int64
	totalExtractions atomic.Int64
	totalQuestions   atomic.Int64
	totalAudits      atomic.Int64
	totalStreams     atomic.Int64
}

func NewMetricsService() *MetricsService {
	return &MetricsService{
		startTime: time.Now(),
	}
}

func (m *MetricsService) IncIngestions(n int64) { m.totalIngestions.Add(n) }
func (m *MetricsService) IncExtractions()       { m.totalExtractions.Add(1) }
func (m *MetricsService) IncQuestions()         { m.totalQuestions.Add(1) }
func (m *MetricsService) IncAudits()            { m.totalAudits.Add(1) }
func (m *MetricsService) IncStreams()           { m.totalStreams.Add(1) }

func (m *MetricsService) UptimeSeconds() float64 {
	return time.Since(m.startTime).Seconds()
}

func (m *MetricsService) Snapshot(totalDocuments int64) types.MetricsResponse {
	return types.MetricsResponse{
		TotalDocuments:   totalDocuments,
		TotalIngestions:  m.totalIngestions.Load(),
		TotalExtractions: m.totalExtractions.Load(),
		TotalQuestions:   m.totalQuestions.Load(),
		TotalAudits:      m.totalAudits.Load(),
		TotalStreams:     m.totalStreams.Load(),
	}
}
