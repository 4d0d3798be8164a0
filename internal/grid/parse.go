package grid

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrMalformedRecord marks an upstream record that cannot be stored.
var ErrMalformedRecord = errors.New("malformed upstream record")

var requiredFields = []string{"period", "type", "value", "value-units"}

// ParseResponse extracts readings from an EIA v2 payload shaped as
// {"response": {"data": [...]}}. A missing or malformed response/data path
// yields an empty result rather than an error. Records missing a required
// field are skipped; the reason for each skip is returned in problems.
func ParseResponse(body []byte) (result FetchResult, problems []error) {
	var envelope struct {
		Response struct {
			Data json.RawMessage `json:"data"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return FetchResult{}, []error{fmt.Errorf("decode envelope: %w", err)}
	}

	data := bytes.TrimSpace(envelope.Response.Data)
	if len(data) == 0 || data[0] != '[' {
		return FetchResult{}, nil
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return FetchResult{}, []error{fmt.Errorf("decode response.data: %w", err)}
	}

	result.Readings = make([]Reading, 0, len(items))
	for i, item := range items {
		r, err := parseRecord(item)
		if err != nil {
			result.Skipped++
			problems = append(problems, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		result.Readings = append(result.Readings, r)
	}
	return result, problems
}

func parseRecord(item map[string]json.RawMessage) (Reading, error) {
	for _, field := range requiredFields {
		raw, ok := item[field]
		if !ok || string(bytes.TrimSpace(raw)) == "null" {
			return Reading{}, fmt.Errorf("%w: missing %q", ErrMalformedRecord, field)
		}
	}

	var r Reading
	if err := json.Unmarshal(item["period"], &r.Period); err != nil {
		return Reading{}, fmt.Errorf("%w: period: %v", ErrMalformedRecord, err)
	}
	if err := json.Unmarshal(item["type"], &r.Type); err != nil {
		return Reading{}, fmt.Errorf("%w: type: %v", ErrMalformedRecord, err)
	}
	if err := json.Unmarshal(item["value-units"], &r.ValueUnits); err != nil {
		return Reading{}, fmt.Errorf("%w: value-units: %v", ErrMalformedRecord, err)
	}

	value, err := parseValue(item["value"])
	if err != nil {
		return Reading{}, fmt.Errorf("%w: value: %v", ErrMalformedRecord, err)
	}
	r.Value = value

	at, err := ParsePeriod(r.Period)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	r.PeriodAt = at

	if r.Type == "" {
		return Reading{}, fmt.Errorf("%w: empty type", ErrMalformedRecord)
	}
	return r, nil
}

// parseValue accepts both JSON numbers and numeric strings; EIA emits either
// depending on the route. Only finite values are accepted.
func parseValue(raw json.RawMessage) (float64, error) {
	var v float64
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if v, err = n.Float64(); err != nil {
			return 0, err
		}
	} else {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		if v, err = strconv.ParseFloat(s, 64); err != nil {
			return 0, err
		}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %v", v)
	}
	return v, nil
}
