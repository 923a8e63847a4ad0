package sensorthings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// SensorThings API response types.

type thingsPage struct {
	Count    int     `json:"@iot.count"`
	NextLink string  `json:"@iot.nextLink"`
	Value    []thing `json:"value"`
}

type thing struct {
	ID          json.RawMessage `json:"@iot.id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Properties  map[string]any  `json:"properties"`
	Locations   []location      `json:"Locations"`
}

type location struct {
	Description string `json:"description"`
	Location    struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"` // [lon, lat]
	} `json:"location"`
}

type datastreamsPage struct {
	Value []datastream `json:"value"`
}

type datastream struct {
	ID         json.RawMessage `json:"@iot.id"`
	Name       string          `json:"name"`
	Properties struct {
		LastRunID json.RawMessage `json:"lastRunId"`
	} `json:"properties"`
	Observations         []observation `json:"Observations"`
	ObservationsNextLink string        `json:"Observations@iot.nextLink"`
}

type observationsPage struct {
	NextLink string        `json:"@iot.nextLink"`
	Value    []observation `json:"value"`
}

type observation struct {
	ID             json.RawMessage `json:"@iot.id"`
	Result         json.RawMessage `json:"result"`
	PhenomenonTime string          `json:"phenomenonTime"`
	Parameters     struct {
		RunID json.RawMessage `json:"runId"`
	} `json:"parameters"`
}

// rawID renders a SensorThings identifier, which may be a JSON number or string.
func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// rawNumber decodes a result that may be a JSON number or a numeric string.
func rawNumber(raw json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("result %s is not numeric", raw)
	}
	return strconv.ParseFloat(s, 64)
}

// propNumber reads a numeric thing property, accepting numbers and numeric strings.
func propNumber(props map[string]any, key string) (float64, bool) {
	switch v := props[key].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
