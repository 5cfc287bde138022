package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"availcal/internal/blackout"
	appLog "availcal/internal/log"
)

// ParseBlackouts reads an iCalendar payload and turns every VEVENT into a
// blackout request. Start and end are rendered as RFC 3339 strings; the
// summary becomes the reason.
//
//   - VEVENTs without DTSTART are logged and skipped.
//   - A missing DTEND falls back to DTSTART plus one day for all-day events
//     and to DTSTART otherwise.
func ParseBlackouts(body []byte) ([]blackout.NewPeriod, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err)
		return nil, err
	}

	out := make([]blackout.NewPeriod, 0)
	for _, ve := range cal.Events() {
		p, perr := parseBlackoutEvent(ve)
		if perr != nil {
			// Log and skip this event, but keep parsing others.
			appLog.Error("ics vevent parse failed", perr, "uid", propValue(ve, ical.ComponentPropertyUniqueId))
			continue
		}
		out = append(out, p)
	}

	appLog.Info("ics parse completed", "blackout_count", len(out))
	return out, nil
}

func parseBlackoutEvent(ve *ical.VEvent) (blackout.NewPeriod, error) {
	var out blackout.NewPeriod

	if ve.GetProperty(ical.ComponentPropertyDtStart) == nil {
		return out, errors.New("missing DTSTART")
	}
	start, err := ve.GetStartAt()
	if err != nil {
		return out, err
	}

	allDay := !strings.Contains(propValue(ve, ical.ComponentPropertyDtStart), "T")

	end := start
	if ve.GetProperty(ical.ComponentPropertyDtEnd) != nil {
		if e, err := ve.GetEndAt(); err == nil {
			end = e
		}
	} else if allDay {
		end = start.AddDate(0, 0, 1)
	}

	out.StartAt = start.Format(time.RFC3339)
	out.EndAt = end.Format(time.RFC3339)
	out.Reason = propValue(ve, ical.ComponentPropertySummary)
	return out, nil
}

func propValue(ve *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return p.Value
	}
	return ""
}
