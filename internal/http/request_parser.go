package http

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"smallledger/internal/core"
)

// amountField accepts a money amount as either a JSON number or a decimal
// string ("123.45" or "123,45"). Either way it lands as whole cents.
type amountField struct {
	set   bool
	money core.Money
}

func (a *amountField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	// Exact zero passes through so fields where zero is legal (a goal's
	// saved amount) can carry it. Positivity is enforced by Validate where
	// it matters.
	var cents int64
	var err error
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		normalized := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
		if f, ferr := strconv.ParseFloat(normalized, 64); ferr == nil && f == 0 {
			cents = 0
		} else {
			cents, err = core.ParseDecimalToCents(s)
		}
	} else {
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		if f == 0 {
			cents = 0
		} else {
			cents, err = core.CentsFromFloat(f)
		}
	}
	if err != nil {
		return err
	}

	a.set = true
	a.money = core.Money{Cents: cents}
	return nil
}

// dateField accepts "2006-01-02" or full RFC 3339 timestamps.
type dateField struct {
	set  bool
	time time.Time
}

func (d *dateField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
	}
	if err != nil {
		return err
	}

	d.set = true
	d.time = t.UTC()
	return nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
