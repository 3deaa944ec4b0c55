package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		wantErr  bool
	}{
		{"every interval", "@every 6h", false},
		{"every minutes", "@every 30m", false},
		{"every mixed", "@every 1h30m", false},
		{"hourly descriptor", "@hourly", false},
		{"daily descriptor", "@daily", false},
		{"weekly descriptor", "@weekly", false},
		{"five field cron", "0 3 * * *", false},
		{"cron with ranges", "*/15 9-17 * * 1-5", false},
		{"empty", "", true},
		{"every without duration", "@every ", true},
		{"every bad duration", "@every banana", true},
		{"every negative", "@every -1h", true},
		{"unknown descriptor", "@fortnightly", true},
		{"garbage cron", "not a schedule", true},
		{"too many fields", "* * * * * * * *", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSchedule(tt.schedule)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNextRunAt_Every(t *testing.T) {
	from := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	next := NextRunAt("@every 6h", from)
	require.NotNil(t, next)
	assert.Equal(t, from.Add(6*time.Hour), *next)
}

func TestNextRunAt_Cron(t *testing.T) {
	from := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	// Daily at 03:00: next fire is tomorrow
	next := NextRunAt("0 3 * * *", from)
	require.NotNil(t, next)
	assert.Equal(t, 3, next.Hour())
	assert.True(t, next.After(from))
}

func TestNextRunAt_Descriptor(t *testing.T) {
	from := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	next := NextRunAt("@hourly", from)
	require.NotNil(t, next)
	assert.Equal(t, 0, next.Minute())
	assert.True(t, next.After(from))
}

func TestNextRunAt_Invalid(t *testing.T) {
	assert.Nil(t, NextRunAt("garbage", time.Now()))
	assert.Nil(t, NextRunAt("@every banana", time.Now()))
}
