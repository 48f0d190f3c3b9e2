// ABOUTME: Locale date/time tool resolving IANA timezones and city aliases.
// ABOUTME: Returns the current wall-clock time with a structured breakdown.

package builtins

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	// Embed the zone database so containers without tzdata still
	// resolve IANA names.
	_ "time/tzdata"

	"github.com/2389/mcpd/internal/tools"
)

// cityToTZ maps known city aliases to IANA timezone names.
var cityToTZ = map[string]string{
	"new york":   "America/New_York",
	"nyc":        "America/New_York",
	"copenhagen": "Europe/Copenhagen",
	"cp hagen":   "Europe/Copenhagen",
}

const dateTimeSchema = `{
	"type": "object",
	"properties": {
		"locale": {
			"type": "string",
			"description": "Timezone/locale like 'America/New_York', 'Europe/Copenhagen', 'New York', or 'Copenhagen'."
		}
	},
	"required": ["locale"],
	"additionalProperties": false
}`

// dateTimeHandlers holds the clock, injectable for tests.
type dateTimeHandlers struct {
	now func() time.Time
}

// DateTimeTool returns the get_locale_date_time descriptor.
func DateTimeTool() *tools.Descriptor {
	return newDateTimeTool(time.Now)
}

func newDateTimeTool(now func() time.Time) *tools.Descriptor {
	h := &dateTimeHandlers{now: now}
	return &tools.Descriptor{
		Name:        "get_locale_date_time",
		Description: "Get the local date/time for a locale. Use an IANA timezone or known city alias.",
		InputSchema: json.RawMessage(dateTimeSchema),
		Handler:     h.Get,
	}
}

type dateTimeInput struct {
	Locale string `json:"locale"`
}

func (h *dateTimeHandlers) Get(_ context.Context, args json.RawMessage) (*tools.Result, error) {
	var in dateTimeInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	loc, err := resolveTimezone(in.Locale)
	if err != nil {
		return nil, err
	}

	now := h.now().In(loc)

	text := fmt.Sprintf("Local date/time in %s is %s.", loc.String(), now.Format("2006-01-02 15:04:05 MST-0700"))

	return tools.TextResult(text, map[string]any{
		"locale":   in.Locale,
		"timezone": loc.String(),
		"date":     now.Format("2006-01-02"),
		"time":     now.Format("15:04:05"),
		"iso":      now.Format(time.RFC3339),
		"offset":   now.Format("-0700"),
	}), nil
}

// resolveTimezone maps a locale string to a time.Location, accepting
// IANA zone names and a small set of city aliases.
func resolveTimezone(locale string) (*time.Location, error) {
	candidate := strings.TrimSpace(locale)
	if candidate == "" {
		return nil, fmt.Errorf("`locale` is required")
	}

	if tz, ok := cityToTZ[strings.ToLower(candidate)]; ok {
		candidate = tz
	}

	loc, err := time.LoadLocation(candidate)
	if err != nil {
		return nil, fmt.Errorf("unsupported locale/timezone; try an IANA timezone like 'America/New_York' or a known alias like 'Copenhagen'")
	}
	return loc, nil
}
