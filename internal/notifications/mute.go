package notifications

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/netwatch-io/netwatch/internal/storage"
)

// wallClockMinutes parses an "HH:MM" string into minutes-since-midnight.
// Unparseable input is treated as midnight, matching a config error that
// should not itself block notification delivery.
func wallClockMinutes(hhmm string) int {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	h, errH := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil {
		return 0
	}
	return h*60 + m
}

// inShift reports whether nowMinutes falls within [start, end), handling
// windows that wrap past midnight (e.g. a night shift 22:00-06:00).
func inShift(nowMinutes, start, end int) bool {
	if start == end {
		return true // a 24h shift
	}
	if start < end {
		return nowMinutes >= start && nowMinutes < end
	}
	// Wraps midnight.
	return nowMinutes >= start || nowMinutes < end
}

// onDutyUsers evaluates the configured shift wall-clock windows against
// `at` — process-local time, no "current shift" state is maintained
// anywhere (spec.md §9 Design Notes).
func onDutyUsers(shifts []storage.DutyShift, at time.Time) []string {
	nowMinutes := at.Hour()*60 + at.Minute()
	var onDuty []string
	for _, s := range shifts {
		if inShift(nowMinutes, wallClockMinutes(s.Start), wallClockMinutes(s.End)) {
			onDuty = append(onDuty, s.UserID)
		}
	}
	return onDuty
}

// isSuppressed implements spec.md §4.3's pre-dispatch gate: the active
// Global Alarm Mute short-circuits everything; otherwise, if a duty roster
// is configured, dispatch is suppressed only when every on-duty user is
// individually muted. With no roster configured the roster has nothing to
// say about eligibility, so dispatch proceeds.
func isSuppressed(ctx context.Context, store storage.DutyStore, at time.Time) (bool, error) {
	mutes, err := store.ActiveMutes(ctx, at)
	if err != nil {
		return false, err
	}
	mutedUsers := make(map[string]bool, len(mutes))
	for _, m := range mutes {
		if m.UserID == nil {
			return true, nil // global mute active
		}
		mutedUsers[*m.UserID] = true
	}

	shifts, err := store.ListDutyShifts(ctx)
	if err != nil {
		return false, err
	}
	if len(shifts) == 0 {
		return false, nil
	}

	onDuty := onDutyUsers(shifts, at)
	if len(onDuty) == 0 {
		return false, nil
	}
	for _, u := range onDuty {
		if !mutedUsers[u] {
			return false, nil // at least one eligible, unmuted recipient
		}
	}
	return true, nil
}
