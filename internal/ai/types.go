package ai

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/iamgilwell/hemat/internal/power"
)

// ErrTopicRequired is returned by DraftArticle when no topic is given.
var ErrTopicRequired = errors.New("topic is required")

// ErrUnavailable is returned by Offline.
var ErrUnavailable = errors.New("no generative backend configured")

// AnalysisRequest carries a calculation result to the advisor.
type AnalysisRequest struct {
	Devices         []power.CalculatedDevice `json:"devices"`
	MonthlyTotalKWh float64                  `json:"monthlyConsumption"`
	Rate            float64                  `json:"electricityRate"`
}

// Analysis is the advisor's answer for one calculation.
type Analysis struct {
	MonthlyCost       float64   `json:"monthlyCost"`
	EnergySavingTips  []string  `json:"energySavingTips"`
	EnvironmentalTips []string  `json:"environmentalTips"`
	Fallback          bool      `json:"fallback"`
	FromCache         bool      `json:"fromCache"`
	Timestamp         time.Time `json:"timestamp"`
}

// DraftRequest asks for an educational article.
type DraftRequest struct {
	Topic    string `json:"topic"`
	Category string `json:"category"`
	Style    string `json:"style"`
}

// Draft is a generated article, not yet stored.
type Draft struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Content string `json:"content"`
	Tags    string `json:"tags"`
}

// TagList splits the comma-separated tags, dropping empty entries.
func (d *Draft) TagList() []string {
	var tags []string
	for _, t := range strings.Split(d.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Signature generates a cache key for an analysis request from its devices
// and totals.
func Signature(req AnalysisRequest) string {
	var sb strings.Builder
	for _, d := range req.Devices {
		// Round to avoid cache misses from float noise
		fmt.Fprintf(&sb, "%s|%g|%g|%d|%.2f;", d.Name, d.PowerWatts, d.DailyUsageHours, d.Quantity, d.MonthlyKWh)
	}
	fmt.Fprintf(&sb, "total=%.2f|rate=%g", round2(req.MonthlyTotalKWh), req.Rate)

	hash := sha256.Sum256([]byte(sb.String()))
	return fmt.Sprintf("%x", hash[:8])
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
