package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var ErrInvalidTimestamp = errors.New("fecha inválida")

// epochMillisThreshold separates epoch seconds from epoch milliseconds.
// 1e11 seconds is year 5138, 1e11 milliseconds is March 1973.
const epochMillisThreshold = 1e11

// Timestamp accepts any representation clients send for a point in time
// (ISO string, plain date, epoch seconds or milliseconds, or a
// {seconds, nanoseconds} document timestamp) and keeps a single time.Time.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
	}

	parsed, err := NormalizeTime(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// NormalizeTime converts v to a UTC time.Time.
func NormalizeTime(v any) (time.Time, error) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return val.UTC(), nil
	case *time.Time:
		if val == nil {
			return time.Time{}, nil
		}
		return val.UTC(), nil
	case Timestamp:
		return val.UTC(), nil
	case string:
		return parseTimeString(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
		}
		return fromEpoch(f)
	case float64:
		return fromEpoch(val)
	case int64:
		return fromEpoch(float64(val))
	case int:
		return fromEpoch(float64(val))
	case map[string]any:
		return fromDocument(val)
	}
	return time.Time{}, fmt.Errorf("%w: tipo %T no soportado", ErrInvalidTimestamp, v)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimeString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

func fromEpoch(f float64) (time.Time, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, ErrInvalidTimestamp
	}
	if math.Abs(f) >= epochMillisThreshold {
		return time.UnixMilli(int64(f)).UTC(), nil
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
}

func fromDocument(m map[string]any) (time.Time, error) {
	sec, ok := numberField(m, "seconds", "_seconds")
	if !ok {
		return time.Time{}, fmt.Errorf("%w: falta seconds", ErrInvalidTimestamp)
	}
	nanos, _ := numberField(m, "nanoseconds", "_nanoseconds")
	return time.Unix(int64(sec), int64(nanos)).UTC(), nil
}

func numberField(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch n := m[k].(type) {
		case float64:
			return n, true
		case json.Number:
			f, err := n.Float64()
			if err == nil {
				return f, true
			}
		case int64:
			return float64(n), true
		case int:
			return float64(n), true
		}
	}
	return 0, false
}
