package power

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported device file formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// deviceFile is the document shape accepted by LoadDevices for YAML and JSON.
// A bare list of devices is accepted as well.
type deviceFile struct {
	Rate    float64     `json:"rate" yaml:"rate"`
	Devices []fileEntry `json:"devices" yaml:"devices"`
}

// fileEntry is a device as written in a file. A missing quantity means one
// unit; an explicit zero is kept so validation can reject it.
type fileEntry struct {
	ID              string  `json:"id" yaml:"id"`
	Name            string  `json:"name" yaml:"name"`
	PowerWatts      float64 `json:"power" yaml:"power"`
	DailyUsageHours float64 `json:"dailyUsage" yaml:"daily_usage"`
	Quantity        *int    `json:"quantity" yaml:"quantity"`
}

func toDevices(entries []fileEntry) []Device {
	devices := make([]Device, 0, len(entries))
	for _, e := range entries {
		d := Device{ID: e.ID, Name: e.Name, PowerWatts: e.PowerWatts, DailyUsageHours: e.DailyUsageHours, Quantity: 1}
		if e.Quantity != nil {
			d.Quantity = *e.Quantity
		}
		devices = append(devices, d)
	}
	return devices
}

// DeviceList is a set of devices read from a file, plus an optional rate.
type DeviceList struct {
	Rate    float64
	Devices []Device
}

// FormatFromPath guesses the device file format from its extension.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".csv":
		return FormatCSV
	default:
		return FormatYAML
	}
}

// LoadDevices reads a device list in the given format. Devices without an
// id are numbered from 1 in file order.
func LoadDevices(r io.Reader, format string) (*DeviceList, error) {
	var (
		list *DeviceList
		err  error
	)
	switch format {
	case FormatYAML, "yml", "":
		list, err = decodeYAML(r)
	case FormatJSON:
		list, err = decodeJSON(r)
	case FormatCSV:
		list, err = decodeCSV(r)
	default:
		return nil, fmt.Errorf("unsupported device format %q", format)
	}
	if err != nil {
		return nil, err
	}

	for i := range list.Devices {
		if list.Devices[i].ID == "" {
			list.Devices[i].ID = strconv.Itoa(i + 1)
		}
	}
	return list, nil
}

func decodeYAML(r io.Reader) (*DeviceList, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading devices: %w", err)
	}

	var doc deviceFile
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return &DeviceList{Rate: doc.Rate, Devices: toDevices(doc.Devices)}, nil
	}

	var entries []fileEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing yaml devices: %w", err)
	}
	return &DeviceList{Devices: toDevices(entries)}, nil
}

func decodeJSON(r io.Reader) (*DeviceList, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading devices: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var entries []fileEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parsing json devices: %w", err)
		}
		return &DeviceList{Devices: toDevices(entries)}, nil
	}

	var doc deviceFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing json devices: %w", err)
	}
	return &DeviceList{Rate: doc.Rate, Devices: toDevices(doc.Devices)}, nil
}

var requiredColumns = []string{"name", "power", "hours", "quantity"}

func decodeCSV(r io.Reader) (*DeviceList, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &DeviceList{}, nil
		}
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	columns := make(map[string]int, len(headers))
	for i, h := range headers {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := columns[c]; !ok {
			return nil, fmt.Errorf("csv header missing column %q", c)
		}
	}

	list := &DeviceList{}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		d, err := parseRecord(record, columns)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		list.Devices = append(list.Devices, d)
	}
	return list, nil
}

func parseRecord(record []string, columns map[string]int) (Device, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	number := func(name string) (float64, error) {
		raw := field(name)
		if raw == "" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q", name, raw)
		}
		return v, nil
	}

	d := Device{ID: field("id"), Name: field("name"), Quantity: 1}

	var err error
	if d.PowerWatts, err = number("power"); err != nil {
		return Device{}, err
	}
	if d.DailyUsageHours, err = number("hours"); err != nil {
		return Device{}, err
	}
	if raw := field("quantity"); raw != "" {
		q, err := strconv.Atoi(raw)
		if err != nil {
			return Device{}, fmt.Errorf("invalid quantity %q", raw)
		}
		d.Quantity = q
	}
	return d, nil
}
