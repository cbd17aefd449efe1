package power

import (
	"fmt"
	"math"
)

// MaxDailyHours is the upper bound enforced by strict validation.
const MaxDailyHours = 24

// Reasons a device is left out of a calculation.
const (
	ReasonMissingName = "missing_name"
	ReasonNoPower     = "no_power"
)

// Warning describes a device that was excluded from a calculation.
type Warning struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}

// Excluded lists the devices Calculate would skip, in input order.
func Excluded(devices []Device) []Warning {
	warnings := make([]Warning, 0)
	for i, d := range devices {
		switch {
		case d.Name == "":
			warnings = append(warnings, Warning{Index: i, ID: d.ID, Reason: ReasonMissingName})
		case !(d.PowerWatts > 0):
			warnings = append(warnings, Warning{Index: i, ID: d.ID, Name: d.Name, Reason: ReasonNoPower})
		}
	}
	return warnings
}

// InvalidDeviceError reports a device field outside its accepted range.
type InvalidDeviceError struct {
	Index  int
	ID     string
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidDeviceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("device %d (%s): %s %v: %s", e.Index, e.ID, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("device %d: %s %v: %s", e.Index, e.Field, e.Value, e.Reason)
}

// ValidateInput applies the entry rules of the calculator form: power and
// usage may not be negative and quantity must be at least one.
func ValidateInput(d Device) error {
	return validateAt(-1, d, false)
}

// ValidateDevices applies ValidateInput to every device, reporting the first
// failure with its index.
func ValidateDevices(devices []Device) error {
	for i, d := range devices {
		if err := validateAt(i, d, false); err != nil {
			return err
		}
	}
	return nil
}

func validateStrict(devices []Device) error {
	for i, d := range devices {
		if !d.Complete() {
			continue
		}
		if err := validateAt(i, d, true); err != nil {
			return err
		}
	}
	return nil
}

func validateAt(index int, d Device, strict bool) error {
	invalid := func(field string, value float64, reason string) error {
		return &InvalidDeviceError{Index: index, ID: d.ID, Field: field, Value: value, Reason: reason}
	}

	if math.IsNaN(d.PowerWatts) || d.PowerWatts < 0 {
		return invalid("power", d.PowerWatts, "must not be negative")
	}
	if math.IsNaN(d.DailyUsageHours) || d.DailyUsageHours < 0 {
		return invalid("dailyUsage", d.DailyUsageHours, "must not be negative")
	}
	if d.Quantity < 1 {
		return invalid("quantity", float64(d.Quantity), "must be at least 1")
	}
	if strict && d.DailyUsageHours > MaxDailyHours {
		return invalid("dailyUsage", d.DailyUsageHours, "must not exceed 24 hours")
	}
	return nil
}
