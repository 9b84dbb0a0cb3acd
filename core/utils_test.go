package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	march1 := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{name: "calendar date", in: "2024-03-01", want: march1},
		{name: "surrounding spaces", in: "  2024-03-01 ", want: march1},
		{name: "utc timestamp", in: "2024-03-01T10:15:00Z", want: march1},
		{name: "late evening west of utc", in: "2024-03-01T23:30:00-05:00", want: march1},
		{name: "early morning east of utc", in: "2024-03-01T00:30:00+03:00", want: march1},
		{name: "garbage", in: "01/03/2024", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				assert.Equal(t, errInvalidDate, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	in := time.Date(2024, time.March, 1, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), NormalizeDate(in))
}
