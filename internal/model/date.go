package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar date without time of day. It is stored as a SQL date and
// serialized as "YYYY-MM-DD".
type Date time.Time

func NewDate(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf takes the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

func Today() Date {
	return DateOf(time.Now())
}

func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) < len(DateLayout) {
		return Date{}, fmt.Errorf("invalid date %q", raw)
	}
	t, err := time.Parse(DateLayout, raw[:len(DateLayout)])
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", raw)
	}
	if len(raw) > len(DateLayout) && raw[len(DateLayout)] != 'T' && raw[len(DateLayout)] != ' ' {
		return Date{}, fmt.Errorf("invalid date %q", raw)
	}
	return DateOf(t), nil
}

func (d Date) Time() time.Time {
	return time.Time(d)
}

func (d Date) IsZero() bool {
	return d.Time().IsZero()
}

func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

func (d Date) Equal(other Date) bool {
	return d.Time().Equal(other.Time())
}

func (d Date) AddDays(days int) Date {
	return Date(d.Time().AddDate(0, 0, days))
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(DateLayout)
}

func (Date) GormDataType() string {
	return "date"
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time(), nil
}

func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
}

func (d *Date) scanString(raw string) error {
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
