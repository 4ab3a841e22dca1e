package salesforce

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Salesforce renders datetimes as 2024-03-10T08:15:00.000+0000
const dateTimeLayout = "2006-01-02T15:04:05.000-0700"

// sfTime decodes Salesforce date and datetime values; null and empty decode
// to the zero time
type sfTime struct {
	time.Time
}

func (t *sfTime) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{dateTimeLayout, time.RFC3339, dateLayout} {
		if parsed, err := time.Parse(layout, *s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return &time.ParseError{Layout: dateTimeLayout, Value: *s}
}

// ptr returns nil for the zero time
func (t sfTime) ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

// sfInt decodes numeric fields that the org may expose as numbers or as
// picklist strings
type sfInt int

func (n *sfInt) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*n = 0
	case float64:
		*n = sfInt(x)
	case string:
		if x == "" {
			*n = 0
			return nil
		}
		parsed, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return err
		}
		*n = sfInt(parsed)
	default:
		return fmt.Errorf("unexpected numeric value %s", string(b))
	}
	return nil
}
