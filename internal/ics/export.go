package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "availcal/internal/log"
	"availcal/internal/model"
)

const (
	defaultProductID = "-//availcal//availability//EN"
	uidDomain        = "@availcal"
)

// ExportOptions controls the produced VCALENDAR.
type ExportOptions struct {
	ProductID    string
	CalendarName string
	// Now stamps DTSTAMP on every event. Zero means time.Now().
	Now time.Time
}

// Export renders availability windows and blackouts as an iCalendar
// payload. Windows become "Available" events; blackouts whose timestamps
// parse as RFC 3339 become events named after their reason. Unparseable
// blackouts are logged and left out.
func Export(windows []model.Window, blackouts []model.Blackout, opts ExportOptions) string {
	if opts.ProductID == "" {
		opts.ProductID = defaultProductID
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	stamp := opts.Now.UTC()

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(opts.ProductID)
	if opts.CalendarName != "" {
		cal.SetXWRCalName(opts.CalendarName)
	}

	for _, w := range windows {
		ev := cal.AddEvent(windowUID(w))
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(w.Start)
		ev.SetEndAt(w.End)
		ev.SetSummary("Available")
		if w.Overridden {
			ev.SetDescription("Daily override for " + w.DateKey)
		}
	}

	exported := 0
	for _, b := range blackouts {
		start, err := time.Parse(time.RFC3339, b.StartAt)
		if err != nil {
			appLog.Error("ics export: skipping blackout with bad start", err, "id", b.ID)
			continue
		}
		end, err := time.Parse(time.RFC3339, b.EndAt)
		if err != nil {
			appLog.Error("ics export: skipping blackout with bad end", err, "id", b.ID)
			continue
		}
		summary := b.Reason
		if summary == "" {
			summary = "Unavailable"
		}
		ev := cal.AddEvent(b.ID + uidDomain)
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(start)
		ev.SetEndAt(end)
		ev.SetSummary(summary)
		exported++
	}

	appLog.Info("ics export completed", "windows", len(windows), "blackouts", exported)
	return cal.Serialize()
}

func windowUID(w model.Window) string {
	return "avail-" + w.DateKey + "-" + w.Start.Format("1504") + "-" + w.End.Format("1504") + uidDomain
}
