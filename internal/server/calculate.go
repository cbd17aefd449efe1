package server

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"go.uber.org/zap"

	"github.com/iamgilwell/hemat/internal/ai"
	"github.com/iamgilwell/hemat/internal/power"
	"github.com/iamgilwell/hemat/internal/publisher"
)

type calculateRequest struct {
	Devices []power.Device `json:"devices"`
	Rate    *float64       `json:"rate"`
}

type calculateResponse struct {
	power.Result
	Rate                 float64            `json:"rate"`
	MonthlyCost          float64            `json:"monthlyCost"`
	MonthlyCostFormatted string             `json:"monthlyCostFormatted"`
	Chart                []power.ChartSlice `json:"chart"`
	Excluded             []power.Warning    `json:"excluded"`
}

// handleCalculate handles POST /api/calculate
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if !s.decode(w, r, &req) {
		return
	}

	for i, d := range req.Devices {
		if err := power.ValidateInput(d); err != nil {
			s.writeError(w, "VALIDATION_ERROR", fmt.Sprintf("device %d: %v", i, err), http.StatusBadRequest)
			return
		}
	}

	report, err := s.deps.Calculator.Run(req.Devices)
	if err != nil {
		var invalid *power.InvalidDeviceError
		if errors.As(err, &invalid) {
			s.writeError(w, "INVALID_DEVICE", invalid.Error(), http.StatusUnprocessableEntity)
			return
		}
		s.writeError(w, "CALCULATION_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	rate := s.clampRate(req.Rate)
	cost := power.EstimateMonthlyCost(report.Result.MonthlyTotalKWh, rate)
	if math.IsInf(cost, 0) || math.IsNaN(cost) {
		s.writeError(w, "NON_FINITE_RESULT", "consumption is too large to represent", http.StatusUnprocessableEntity)
		return
	}

	s.deps.Metrics.Record("api", report.Result, cost)
	s.publish(publisher.Event{
		Type:        publisher.CalculationCompleted,
		Devices:     len(report.Result.Devices),
		MonthlyKWh:  report.Result.MonthlyTotalKWh,
		MonthlyCost: cost,
	})

	s.writeJSON(w, calculateResponse{
		Result:               report.Result,
		Rate:                 rate,
		MonthlyCost:          cost,
		MonthlyCostFormatted: power.FormatRupiah(cost),
		Chart:                report.Chart,
		Excluded:             report.Excluded,
	}, http.StatusOK)
}

type analysisRequest struct {
	Devices            []power.CalculatedDevice `json:"devices"`
	MonthlyConsumption float64                  `json:"monthlyConsumption"`
	ElectricityRate    *float64                 `json:"electricityRate"`
}

type analysisResponse struct {
	MonthlyCost       float64  `json:"monthlyCost"`
	EnergySavingTips  []string `json:"energySavingTips"`
	EnvironmentalTips []string `json:"environmentalTips"`
	Fallback          bool     `json:"fallback"`
}

// handleAnalysis handles POST /api/electricity-analysis
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.deps.Advisor == nil {
		s.writeError(w, "AI_UNAVAILABLE", "AI analysis is not configured", http.StatusServiceUnavailable)
		return
	}

	var req analysisRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Devices) == 0 {
		s.writeError(w, "VALIDATION_ERROR", "devices are required", http.StatusBadRequest)
		return
	}

	analysis, err := s.deps.Advisor.Analyze(r.Context(), ai.AnalysisRequest{
		Devices:         req.Devices,
		MonthlyTotalKWh: req.MonthlyConsumption,
		Rate:            s.clampRate(req.ElectricityRate),
	})
	if err != nil {
		s.log.Error("analysis failed", zap.Error(err))
		s.writeError(w, "ANALYSIS_ERROR", "Failed to generate analysis", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, analysisResponse{
		MonthlyCost:       analysis.MonthlyCost,
		EnergySavingTips:  analysis.EnergySavingTips,
		EnvironmentalTips: analysis.EnvironmentalTips,
		Fallback:          analysis.Fallback,
	}, http.StatusOK)
}
