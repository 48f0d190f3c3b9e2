// ABOUTME: Tests for the locale date/time tool.
// ABOUTME: Covers IANA zones, city aliases, and rejection of unknown locales.

package builtins

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock returns a deterministic winter instant so DST does not
// shift expected offsets.
func fixedClock() time.Time {
	return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
}

func callDateTime(t *testing.T, args string) (map[string]any, error) {
	t.Helper()
	d := newDateTimeTool(fixedClock)

	res, err := d.Handler(context.Background(), json.RawMessage(args))
	if err != nil {
		return nil, err
	}

	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "text", res.Content[0].Type)

	structured, ok := res.StructuredContent.(map[string]any)
	require.True(t, ok)
	return structured, nil
}

func TestDateTime_IANAZone(t *testing.T) {
	structured, err := callDateTime(t, `{"locale":"Europe/Copenhagen"}`)
	require.NoError(t, err)

	assert.Equal(t, "Europe/Copenhagen", structured["timezone"])
	assert.Equal(t, "2024-01-15", structured["date"])
	assert.Equal(t, "13:00:00", structured["time"])
	assert.Equal(t, "+0100", structured["offset"])
	assert.Equal(t, "2024-01-15T13:00:00+01:00", structured["iso"])
}

func TestDateTime_CityAliases(t *testing.T) {
	tests := []struct {
		locale string
		wantTZ string
	}{
		{locale: "New York", wantTZ: "America/New_York"},
		{locale: "NYC", wantTZ: "America/New_York"},
		{locale: "Copenhagen", wantTZ: "Europe/Copenhagen"},
		{locale: "cp hagen", wantTZ: "Europe/Copenhagen"},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			structured, err := callDateTime(t, `{"locale":"`+tt.locale+`"}`)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTZ, structured["timezone"])
			assert.Equal(t, tt.locale, structured["locale"])
		})
	}
}

func TestDateTime_UTCZone(t *testing.T) {
	structured, err := callDateTime(t, `{"locale":"UTC"}`)
	require.NoError(t, err)
	assert.Equal(t, "12:00:00", structured["time"])
	assert.Equal(t, "+0000", structured["offset"])
}

func TestDateTime_UnknownLocale(t *testing.T) {
	_, err := callDateTime(t, `{"locale":"Atlantis/Lost_City"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported locale")
}

func TestDateTime_EmptyLocale(t *testing.T) {
	_, err := callDateTime(t, `{"locale":"  "}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "`locale` is required")
}

func TestDateTime_DescriptorShape(t *testing.T) {
	d := DateTimeTool()
	assert.Equal(t, "get_locale_date_time", d.Name)
	assert.NotEmpty(t, d.Description)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(d.InputSchema, &schema))
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []any{"locale"}, schema["required"])
	assert.Equal(t, false, schema["additionalProperties"])
}
