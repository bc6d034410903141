package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calmux/internal/provider"
	"github.com/teemow/calmux/internal/temporal"
)

var stamp = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestWriteICS(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	events := []provider.CalendarEvent{
		{
			ID:         "holiday",
			Title:      "Holiday",
			Start:      temporal.PlainDate(2025, 3, 14),
			End:        temporal.PlainDate(2025, 3, 15),
			AllDay:     true,
			ProviderID: provider.Google,
			AccountID:  "g",
		},
		{
			ID:          "standup",
			Title:       "Standup",
			Description: "Daily sync",
			Location:    "Room 1",
			Start:       temporal.Instant(time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)),
			End:         temporal.Instant(time.Date(2025, 3, 14, 9, 15, 0, 0, time.UTC)),
			Status:      "confirmed",
			ProviderID:  provider.Microsoft,
			AccountID:   "m",
		},
		{
			ID:         "dinner",
			Title:      "Dinner",
			Start:      temporal.Zoned(time.Date(2025, 3, 14, 20, 0, 0, 0, paris)),
			ProviderID: provider.Google,
			AccountID:  "g",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, events, stamp))

	out := buf.String()
	assert.Contains(t, out, "PRODID:"+ProductID)
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20250314")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20250315")
	assert.Contains(t, out, "DTSTART:20250314T090000Z")
	assert.Contains(t, out, "DTSTART;TZID=Europe/Paris:20250314T200000")
	assert.Contains(t, out, "STATUS:CONFIRMED")
	assert.Contains(t, out, "UID:standup@m.microsoft")

	cal, err := ical.NewDecoder(strings.NewReader(out)).Decode()
	require.NoError(t, err)
	vevents := cal.Events()
	require.Len(t, vevents, 3)

	summary, err := vevents[1].Props.Text(ical.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "Standup", summary)

	start, err := vevents[1].DateTimeStart(time.UTC)
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)))
}

func TestWriteICS_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteICS(&buf, nil, stamp))
	assert.Zero(t, buf.Len())
}

func TestWriteICS_MissingStart(t *testing.T) {
	var buf bytes.Buffer
	err := WriteICS(&buf, []provider.CalendarEvent{{ID: "broken", Title: "x"}}, stamp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}
