package jiraquery

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// jiraTimeLayout is how Jira renders timestamps: millisecond fraction and a
// zone offset without a colon, which time.RFC3339 rejects.
const jiraTimeLayout = "2006-01-02T15:04:05.000-0700"

// jiraDateLayout covers the date-only fields (duedate, releaseDate).
const jiraDateLayout = "2006-01-02"

// timeLayouts are the timestamp shapes observed across Jira deployments,
// most common first.
var timeLayouts = []string{
	jiraTimeLayout,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
}

// Time is a Jira timestamp such as "2022-05-24T10:07:02.000+0000". It embeds
// time.Time, so all of its methods apply. JSON null and "" decode to the zero
// value.
type Time struct {
	time.Time
}

// UnmarshalJSON accepts any of the known Jira timestamp layouts.
func (t *Time) UnmarshalJSON(data []byte) error {
	s, ok, err := jsonString(data)
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if !ok {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := parseTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON renders the timestamp the way Jira does.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(t.Format(jiraTimeLayout))), nil
}

// Date is a date-only Jira value such as "2022-05-24". JSON null and ""
// decode to the zero value.
type Date struct {
	time.Time
}

// UnmarshalJSON accepts YYYY-MM-DD.
func (d *Date) UnmarshalJSON(data []byte) error {
	s, ok, err := jsonString(data)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if !ok {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(jiraDateLayout, s)
	if err != nil {
		return fmt.Errorf("unrecognized date %q", s)
	}
	d.Time = parsed
	return nil
}

// MarshalJSON renders the date as YYYY-MM-DD.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(d.Format(jiraDateLayout))), nil
}

// parseTime tries the known layouts in order.
func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// jsonString unquotes a JSON string token; ok is false for null and "".
func jsonString(data []byte) (s string, ok bool, err error) {
	if string(data) == "null" {
		return "", false, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return "", false, err
	}
	return s, s != "", nil
}
