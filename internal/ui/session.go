package ui

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/iamgilwell/hemat/internal/power"
)

// RateStep is how much +/- moves the tariff.
const RateStep = 100

// ErrLastDevice is returned when removing the only remaining device.
var ErrLastDevice = errors.New("at least one device must remain")

// Session is the calculator state behind the TUI.
type Session struct {
	mu      sync.RWMutex
	devices []power.Device
	nextID  int
	rate    float64
	minRate float64

	report *power.Report
	cost   float64
}

// NewSession starts with the given devices, or one blank row when empty.
func NewSession(devices []power.Device, rate, minRate float64) *Session {
	s := &Session{rate: rate, minRate: minRate}
	if s.rate < minRate {
		s.rate = minRate
	}
	for _, d := range devices {
		s.appendDevice(d)
	}
	if len(s.devices) == 0 {
		s.appendDevice(power.Device{Quantity: 1})
	}
	return s
}

// LoadSession is NewSession for devices read from a file. They must pass
// the same entry rules as devices added through the form.
func LoadSession(devices []power.Device, rate, minRate float64) (*Session, error) {
	if err := power.ValidateDevices(devices); err != nil {
		return nil, err
	}
	return NewSession(devices, rate, minRate), nil
}

func (s *Session) appendDevice(d power.Device) {
	s.nextID++
	if d.ID == "" {
		d.ID = strconv.Itoa(s.nextID)
	}
	s.devices = append(s.devices, d)
}

// Devices returns a copy of the device list.
func (s *Session) Devices() []power.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]power.Device(nil), s.devices...)
}

// Device returns the device at index i.
func (s *Session) Device(i int) (power.Device, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.devices) {
		return power.Device{}, false
	}
	return s.devices[i], true
}

// Add validates and appends a device.
func (s *Session) Add(d power.Device) error {
	if err := power.ValidateInput(d); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = ""
	s.appendDevice(d)
	return nil
}

// Update replaces the device at index i, keeping its id.
func (s *Session) Update(i int, d power.Device) error {
	if err := power.ValidateInput(d); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.devices) {
		return fmt.Errorf("no device at row %d", i+1)
	}
	d.ID = s.devices[i].ID
	s.devices[i] = d
	return nil
}

// Remove deletes the device at index i unless it is the last one.
func (s *Session) Remove(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.devices) <= 1 {
		return ErrLastDevice
	}
	if i < 0 || i >= len(s.devices) {
		return fmt.Errorf("no device at row %d", i+1)
	}
	s.devices = append(s.devices[:i], s.devices[i+1:]...)
	return nil
}

// Rate returns the current tariff.
func (s *Session) Rate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rate
}

// AdjustRate moves the tariff by delta, never below the minimum.
func (s *Session) AdjustRate(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate += delta
	if s.rate < s.minRate {
		s.rate = s.minRate
	}
	if s.report != nil {
		s.cost = power.EstimateMonthlyCost(s.report.Result.MonthlyTotalKWh, s.rate)
	}
	return s.rate
}

// Calculate runs the calculator over the current devices and keeps the report.
func (s *Session) Calculate(calc *power.Calculator) (*power.Report, float64, error) {
	devices := s.Devices()
	report, err := calc.Run(devices)
	if err != nil {
		return nil, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = report
	s.cost = power.EstimateMonthlyCost(report.Result.MonthlyTotalKWh, s.rate)
	return report, s.cost, nil
}

// Last returns the most recent report and its cost, if any.
func (s *Session) Last() (*power.Report, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report, s.cost
}
