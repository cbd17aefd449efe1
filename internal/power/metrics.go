package power

import (
	"sync"
	"time"
)

// Metrics tracks calculations served by a running process.
type Metrics struct {
	mu           sync.RWMutex
	totalMonthly float64
	served       int
	log          []CalculationEntry
	maxLog       int
	startTime    time.Time
}

// CalculationEntry records a single calculation.
type CalculationEntry struct {
	Timestamp       time.Time
	Source          string
	Devices         int
	MonthlyTotalKWh float64
	MonthlyCost     float64
}

// NewMetrics creates a new metrics tracker keeping at most 100 entries.
func NewMetrics() *Metrics {
	return &Metrics{
		maxLog:    100,
		startTime: time.Now(),
	}
}

// Record logs a finished calculation.
func (m *Metrics) Record(source string, result Result, cost float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.served++
	m.totalMonthly += result.MonthlyTotalKWh
	m.log = append(m.log, CalculationEntry{
		Timestamp:       time.Now(),
		Source:          source,
		Devices:         len(result.Devices),
		MonthlyTotalKWh: result.MonthlyTotalKWh,
		MonthlyCost:     cost,
	})
	if len(m.log) > m.maxLog {
		m.log = m.log[len(m.log)-m.maxLog:]
	}
}

// TotalMonthlyKWh returns the sum of monthly totals of all recorded calculations.
func (m *Metrics) TotalMonthlyKWh() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalMonthly
}

// Served returns the number of calculations recorded since start.
func (m *Metrics) Served() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.served
}

// Uptime returns how long the tracker has been running.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// Recent returns the most recent n entries, oldest first.
func (m *Metrics) Recent(n int) []CalculationEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n > len(m.log) {
		n = len(m.log)
	}
	result := make([]CalculationEntry, n)
	copy(result, m.log[len(m.log)-n:])
	return result
}

// Count returns the number of entries currently retained.
func (m *Metrics) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.log)
}
