package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTripTransitions(t *testing.T) {
	cases := []struct {
		from, to TripStatus
		admin    bool
		allowed  bool
	}{
		{TripStatusDraft, TripStatusConfirmed, false, true},
		{TripStatusDraft, TripStatusVoid, false, true},
		{TripStatusConfirmed, TripStatusVoid, false, true},
		{TripStatusConfirmed, TripStatusConfirmed, true, false},
		{TripStatusConfirmed, TripStatusLocked, true, false},
		{TripStatusLocked, TripStatusVoid, false, false},
		{TripStatusLocked, TripStatusVoid, true, true},
		{TripStatusVoid, TripStatusDraft, true, false},
		{TripStatusVoid, TripStatusVoid, true, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, TripTransitions.Allows(tc.from, tc.to, tc.admin), "%s -> %s admin=%v", tc.from, tc.to, tc.admin)
	}

	gate, ok := TripTransitions.Lookup(TripStatusConfirmed, TripStatusLocked)
	require.True(t, ok)
	assert.Equal(t, GateSystem, gate)
}

func TestPeriodTransitionsPaidIsTerminal(t *testing.T) {
	assert.True(t, PeriodTransitions.Allows(PeriodStatusOpen, PeriodStatusClosed, false))
	assert.True(t, PeriodTransitions.Allows(PeriodStatusClosed, PeriodStatusPaid, false))
	assert.False(t, PeriodTransitions.Allows(PeriodStatusOpen, PeriodStatusPaid, true))
	for _, to := range []PeriodStatus{PeriodStatusOpen, PeriodStatusClosed} {
		_, ok := PeriodTransitions.Lookup(PeriodStatusPaid, to)
		assert.False(t, ok)
	}
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2024-12")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, 12, 1), m.Start())
	assert.Equal(t, NewDate(2025, 1, 1), m.End())
	assert.Equal(t, "2024-12", m.String())
	assert.True(t, m.Contains(NewDate(2024, 12, 31)))
	assert.False(t, m.Contains(NewDate(2025, 1, 1)))

	for _, raw := range []string{"", "2024-1", "2024-13", "24-01", "2024/01", "2024-01-01"} {
		_, err := ParseMonth(raw)
		assert.Error(t, err, raw)
	}
}

func TestDateParseAndJSON(t *testing.T) {
	d, err := ParseDate("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, 3, 5), d)

	withTime, err := ParseDate("2024-03-05T10:00:00Z")
	require.NoError(t, err)
	assert.True(t, d.Equal(withTime))

	_, err = ParseDate("2024-03-05x")
	assert.Error(t, err)

	raw, err := json.Marshal(struct {
		D Date  `json:"d"`
		Z Date  `json:"z"`
		P *Date `json:"p"`
	}{D: d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-03-05","z":null,"p":null}`, string(raw))

	var decoded struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2024-02-29"}`), &decoded))
	assert.Equal(t, NewDate(2024, 2, 29), decoded.D)
	assert.Error(t, json.Unmarshal([]byte(`{"d":"29.02.2024"}`), &decoded))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2024-03-05 00:00:00+00:00"))
	assert.Equal(t, NewDate(2024, 3, 5), d)

	require.NoError(t, d.Scan(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, NewDate(2024, 4, 1), d)

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}

func TestPayHours(t *testing.T) {
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		end := start.Add(d)
		return &end
	}

	cases := []struct {
		name string
		end  *time.Time
		want string
	}{
		{"open session", nil, "0"},
		{"short session rounds up to one hour", at(20 * time.Minute), "1"},
		{"exact hour", at(time.Hour), "1"},
		{"ninety minutes", at(90 * time.Minute), "1.5"},
		{"two hours twenty", at(2*time.Hour + 20*time.Minute), "2.33"},
		{"eight hours", at(8 * time.Hour), "8"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PayHours(start, tc.end).String())
		})
	}
}

func TestSessionRate(t *testing.T) {
	fallback := decimal.NewFromInt(5000)

	own := MachinerySession{HourlyRate: decimal.NewNullDecimal(decimal.NewFromInt(7000))}
	assert.Equal(t, "7000", own.Rate(fallback).String())

	zero := MachinerySession{HourlyRate: decimal.NewNullDecimal(decimal.Zero)}
	assert.Equal(t, "5000", zero.Rate(fallback).String())

	assert.Equal(t, "5000", MachinerySession{}.Rate(fallback).String())
}

func TestLinePayable(t *testing.T) {
	line := PayrollLine{
		TotalAmount:      decimal.NewFromInt(30000),
		ManualCorrection: decimal.NewFromInt(-500),
	}
	assert.Equal(t, "24500", line.Payable(decimal.NewFromInt(5000)).String())
}

func TestPageRequestNormalize(t *testing.T) {
	p := PageRequest{}.Normalize()
	assert.Equal(t, PageRequest{Page: 1, Size: DefaultPageSize}, p)
	assert.Equal(t, 0, p.Offset())

	p = PageRequest{Page: 3, Size: 10000}.Normalize()
	assert.Equal(t, MaxPageSize, p.Size)
	assert.Equal(t, 2*MaxPageSize, p.Offset())
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := Snapshot{"status": "locked", "trips": float64(3)}
	value, err := s.Value()
	require.NoError(t, err)

	var back Snapshot
	require.NoError(t, back.Scan(value))
	assert.Equal(t, s, back)
}
