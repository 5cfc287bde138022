package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"availcal/internal/blackout"
	"availcal/internal/ics"
	appLog "availcal/internal/log"
	"availcal/internal/model"
	"availcal/internal/schedule"
	"availcal/internal/session"
)

const (
	defaultExportWeeks = 4
	maxExportWeeks     = 52
)

// sessionResponse is a snapshot plus the validation problems of its
// template. Warnings never block an edit.
type sessionResponse struct {
	session.Snapshot
	Warnings []string `json:"warnings,omitempty"`
}

func respond(w http.ResponseWriter, status int, snap session.Snapshot) {
	writeJSON(w, status, sessionResponse{
		Snapshot: snap,
		Warnings: validationWarnings(schedule.Validate(snap.Week)),
	})
}

// validationWarnings flattens a joined validation error into messages.
func validationWarnings(err error) []string {
	if err == nil {
		return nil
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		return []string{err.Error()}
	}
	var out []string
	for _, e := range joined.Unwrap() {
		out = append(out, validationWarnings(e)...)
	}
	return out
}

type createSessionRequest struct {
	Preset string `json:"preset"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	week := s.seed.Clone()
	if req.Preset != "" {
		p, err := schedule.PresetByName(req.Preset)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		week = schedule.ApplyPreset(p)
	}

	sess := s.sessions.Create(week)
	respond(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleGetSession(w http.ResponseWriter, _ *http.Request, sess *session.Session) {
	respond(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.PathValue("id")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathDay(w http.ResponseWriter, r *http.Request) (schedule.Weekday, bool) {
	day, err := schedule.ParseWeekday(r.PathValue("day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return day, true
}

func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.PathValue("index")
	idx, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid range index %q", raw))
		return 0, false
	}
	return idx, true
}

func (s *Server) pathDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	date, err := schedule.ParseDateKey(r.PathValue("date"), s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return time.Time{}, false
	}
	return date, true
}

func (s *Server) handleSetDay(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	day, ok := pathDay(w, r)
	if !ok {
		return
	}
	var ds schedule.DaySchedule
	if err := decodeJSON(r, &ds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	respond(w, http.StatusOK, sess.SetDay(day, ds))
}

func (s *Server) handleAddRange(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	day, ok := pathDay(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK, sess.AddTimeRange(day))
}

type updateRangeRequest struct {
	Field schedule.RangeField `json:"field"`
	Value string              `json:"value"`
}

func (s *Server) handleUpdateRange(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	day, ok := pathDay(w, r)
	if !ok {
		return
	}
	idx, ok := pathIndex(w, r)
	if !ok {
		return
	}
	var req updateRangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Field != schedule.FieldFrom && req.Field != schedule.FieldTo {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("field must be %q or %q", schedule.FieldFrom, schedule.FieldTo))
		return
	}
	respond(w, http.StatusOK, sess.UpdateTimeRange(day, idx, req.Field, req.Value))
}

func (s *Server) handleRemoveRange(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	day, ok := pathDay(w, r)
	if !ok {
		return
	}
	idx, ok := pathIndex(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK, sess.RemoveTimeRange(day, idx))
}

func (s *Server) handleCopyDay(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	day, ok := pathDay(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK, sess.CopyDayToWeek(day))
}

func (s *Server) handleClearAll(w http.ResponseWriter, _ *http.Request, sess *session.Session) {
	respond(w, http.StatusOK, sess.ClearAll())
}

type applyPresetRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleApplyPreset(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req applyPresetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	p, err := schedule.PresetByName(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, http.StatusOK, sess.ApplyPreset(p))
}

func (s *Server) handleValidate(w http.ResponseWriter, _ *http.Request, sess *session.Session) {
	warnings := validationWarnings(schedule.Validate(sess.Week()))
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":    len(warnings) == 0,
		"warnings": append([]string{}, warnings...),
	})
}

func (s *Server) handleSetOverride(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	date, ok := s.pathDate(w, r)
	if !ok {
		return
	}
	var ds schedule.DaySchedule
	if err := decodeJSON(r, &ds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	respond(w, http.StatusOK, sess.SetOverride(date, ds))
}

func (s *Server) handleClearOverride(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	date, ok := s.pathDate(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK, sess.ClearOverride(date))
}

func (s *Server) handleClearOverrides(w http.ResponseWriter, _ *http.Request, sess *session.Session) {
	respond(w, http.StatusOK, sess.ClearAllOverrides())
}

type effectiveResponse struct {
	Date       string               `json:"date"`
	Schedule   schedule.DaySchedule `json:"schedule"`
	Overridden bool                 `json:"overridden"`
}

func (s *Server) handleEffective(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	date, ok := s.pathDate(w, r)
	if !ok {
		return
	}
	ds, overridden := sess.EffectiveDay(date)
	writeJSON(w, http.StatusOK, effectiveResponse{
		Date:       schedule.DateKey(date),
		Schedule:   ds,
		Overridden: overridden,
	})
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	switch dir := r.PathValue("dir"); dir {
	case "prev":
		respond(w, http.StatusOK, sess.PreviousWeek())
	case "next":
		respond(w, http.StatusOK, sess.NextWeek())
	case "today":
		respond(w, http.StatusOK, sess.Today())
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown direction %q", dir))
	}
}

func (s *Server) handleListBlackouts(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	writeJSON(w, http.StatusOK, sess.Blackouts.List(r.Context()))
}

func (s *Server) handleAddBlackout(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var p blackout.NewPeriod
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	list, err := sess.AddBlackout(r.Context(), p)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

type importResponse struct {
	Imported  int              `json:"imported"`
	Blackouts []model.Blackout `json:"blackouts"`
}

func (s *Server) handleImportBlackouts(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body: "+err.Error())
		return
	}
	periods, err := ics.ParseBlackouts(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	imported := 0
	for _, p := range periods {
		if _, ok, _ := sess.Blackouts.Add(r.Context(), p); ok {
			imported++
		}
	}
	appLog.Info("blackouts imported", "session", sess.ID, "parsed", len(periods), "imported", imported)

	writeJSON(w, http.StatusOK, importResponse{
		Imported:  imported,
		Blackouts: sess.Blackouts.List(r.Context()),
	})
}

func (s *Server) handleRemoveBlackout(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	writeJSON(w, http.StatusOK, sess.RemoveBlackout(r.Context(), r.PathValue("bid")))
}

// handleExport renders the navigated week and the following ones as an
// iCalendar feed. ?weeks=N selects how many weeks (1..52, default 4).
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	weeks := parseIntDefault(r.URL.Query().Get("weeks"), defaultExportWeeks)
	if weeks < 1 {
		weeks = 1
	}
	if weeks > maxExportWeeks {
		weeks = maxExportWeeks
	}

	start := sess.Navigation().StartOfWeek()
	res, err := ics.ExpandAvailability(sess.Week(), sess.Overrides(), ics.ExpandConfig{
		DisplayLocation: s.loc,
		RangeStart:      start,
		RangeEnd:        start.AddDate(0, 0, 7*weeks),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(res.Skipped) > 0 {
		appLog.Debug("export skipped invalid ranges", "session", sess.ID, "skipped", len(res.Skipped))
	}

	body := ics.Export(res.Windows, sess.Blackouts.List(r.Context()), ics.ExportOptions{
		CalendarName: "availcal",
	})

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="availability.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
