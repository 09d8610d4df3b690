package datex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/daystreak/api/internal/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)

	tests := []struct {
		name    string
		input   any
		want    string
		wantErr bool
	}{
		{name: "plain date", input: "2024-02-02", want: "2024-02-02"},
		{name: "surrounding spaces", input: "  2024-02-02 ", want: "2024-02-02"},
		{name: "rfc3339 utc", input: "2024-02-02T23:59:59Z", want: "2024-02-02"},
		{name: "rfc3339 offset keeps civil day", input: "2024-02-02T01:30:00+05:30", want: "2024-02-02"},
		{name: "rfc3339 nano", input: "2024-02-02T10:00:00.123456Z", want: "2024-02-02"},
		{name: "local datetime", input: "2024-02-02T10:00:00", want: "2024-02-02"},
		{name: "slashes", input: "2024/02/02", want: "2024-02-02"},
		{name: "bytes", input: []byte("2024-02-02"), want: "2024-02-02"},
		{name: "time value in zone", input: time.Date(2024, 2, 2, 1, 0, 0, 0, ist), want: "2024-02-02"},
		{name: "time pointer", input: ptr(time.Date(2024, 2, 2, 18, 0, 0, 0, time.UTC)), want: "2024-02-02"},
		{name: "date value", input: New(2024, 2, 2), want: "2024-02-02"},
		{name: "empty string", input: "", wantErr: true},
		{name: "garbage", input: "next tuesday", wantErr: true},
		{name: "impossible day", input: "2024-02-30", wantErr: true},
		{name: "zero time", input: time.Time{}, wantErr: true},
		{name: "nil pointer", input: (*time.Time)(nil), wantErr: true},
		{name: "number", input: 20240202, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				var ide *apperr.InvalidDateError
				assert.ErrorAs(t, err, &ide)
				assert.True(t, got.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParse_SameCivilDayNormalizesIdentically(t *testing.T) {
	a, err := Parse("2024-03-10")
	require.NoError(t, err)
	b, err := Parse("2024-03-10T22:15:00-07:00")
	require.NoError(t, err)
	c, err := Parse(time.Date(2024, 3, 10, 0, 0, 1, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
}

func TestDate_Arithmetic(t *testing.T) {
	d := MustParse("2024-02-28")

	assert.Equal(t, "2024-02-29", d.AddDays(1).String())
	assert.Equal(t, "2024-03-01", d.AddDays(2).String())
	assert.Equal(t, 2, MustParse("2024-03-01").DaysSince(d))
	assert.Equal(t, -2, d.DaysSince(MustParse("2024-03-01")))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AddDays(1).After(d))
	assert.Equal(t, time.Wednesday, d.Weekday())
}

func TestDate_DaysSinceAcrossDST(t *testing.T) {
	// civil days carry no zone, so DST transitions never produce fractional days
	assert.Equal(t, 1, MustParse("2024-03-11").DaysSince(MustParse("2024-03-10")))
	assert.Equal(t, 1, MustParse("2024-11-04").DaysSince(MustParse("2024-11-03")))
}

func TestRange(t *testing.T) {
	got := Range(MustParse("2024-03-01"), MustParse("2024-03-03"))
	require.Len(t, got, 3)
	assert.Equal(t, "2024-03-01", got[0].String())
	assert.Equal(t, "2024-03-03", got[2].String())

	assert.Len(t, Range(MustParse("2024-03-01"), MustParse("2024-03-01")), 1)
	assert.Empty(t, Range(MustParse("2024-03-02"), MustParse("2024-03-01")))
}

func TestDate_ScanValue(t *testing.T) {
	d := MustParse("2024-01-05")

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", v)

	v, err = Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	var s Date
	require.NoError(t, s.Scan("2024-01-05"))
	assert.Equal(t, d, s)
	require.NoError(t, s.Scan([]byte("2024-01-05")))
	assert.Equal(t, d, s)
	require.NoError(t, s.Scan(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, d, s)
	require.NoError(t, s.Scan(nil))
	assert.True(t, s.IsZero())
	assert.Error(t, s.Scan(42))
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Date Date `json:"date"`
	}

	b, err := json.Marshal(payload{Date: MustParse("2024-01-05")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-01-05"}`, string(b))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-01-05T08:00:00Z"}`), &p))
	assert.Equal(t, "2024-01-05", p.Date.String())

	require.NoError(t, json.Unmarshal([]byte(`{"date":null}`), &p))
	assert.True(t, p.Date.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"date":"soon"}`), &p))
}

func ptr[T any](v T) *T { return &v }
