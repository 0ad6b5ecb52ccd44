package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

var ErrInvalidTimestamp = errors.New("timestamp must be an RFC 3339 string or epoch milliseconds")

// Alert is one historical triggered alert
type Alert struct {
	ID          int64     `json:"id"`
	ServiceName string    `json:"service_name"`
	Metric      string    `json:"metric"`
	Value       float64   `json:"value"`
	TriggeredAt Timestamp `json:"triggered_at"`
}

// AlertList keeps the order the backend returned; it is never re-sorted.
type AlertList []Alert

// Clone returns an independent copy. A nil list clones to an empty one.
func (l AlertList) Clone() AlertList {
	out := make(AlertList, len(l))
	copy(out, l)

	return out
}

// Timestamp accepts either an RFC 3339 string or a number of epoch milliseconds.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}

		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
		}

		t.Time = parsed

		return nil
	}

	ms, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsNaN(ms) || ms < math.MinInt64 || ms >= math.MaxInt64 {
		return fmt.Errorf("%w: %s", ErrInvalidTimestamp, b)
	}

	t.Time = time.UnixMilli(int64(ms)).UTC()

	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
