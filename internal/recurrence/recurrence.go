// Package recurrence computes when a reminder should next fire.
//
// Rules are a closed set. Free-form rule strings are parsed once with Parse
// and everything past that boundary works with Rule values.
package recurrence

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	apperr "github.com/julianstephens/finlit/internal/errors"
)

// Rule is how often a reminder repeats once its due time has passed.
type Rule int

const (
	None Rule = iota
	Daily
	Weekly
	Monthly
)

const (
	Day   = 24 * time.Hour
	Week  = 7 * Day
	Month = 30 * Day // fixed approximation, not calendar aware
)

var canonical = map[Rule]string{
	Daily:   "FREQ=DAILY",
	Weekly:  "FREQ=WEEKLY",
	Monthly: "FREQ=MONTHLY",
}

// Parse accepts "", "none", "DAILY", "FREQ=DAILY;..." and the weekly and
// monthly equivalents, case-insensitively.
func Parse(s string) (Rule, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	switch {
	case v == "" || v == "NONE":
		return None, nil
	case v == "DAILY" || strings.HasPrefix(v, "FREQ=DAILY"):
		return Daily, nil
	case v == "WEEKLY" || strings.HasPrefix(v, "FREQ=WEEKLY"):
		return Weekly, nil
	case v == "MONTHLY" || strings.HasPrefix(v, "FREQ=MONTHLY"):
		return Monthly, nil
	}
	return None, apperr.Validation("recurrence.Parse", "unsupported recurrence rule %q", s)
}

// String returns the stored rule string, empty for None.
func (r Rule) String() string {
	return canonical[r]
}

// Label is the lower-case name shown to users.
func (r Rule) Label() string {
	switch r {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	default:
		return "none"
	}
}

// Period is the fixed step between occurrences, zero for None.
func (r Rule) Period() time.Duration {
	switch r {
	case Daily:
		return Day
	case Weekly:
		return Week
	case Monthly:
		return Month
	default:
		return 0
	}
}

func (r Rule) IsRecurring() bool {
	return r.Period() > 0
}

// NextFireAt returns dueAt while it is still in the future. Once it has
// passed, a recurring rule yields the first occurrence strictly after now
// and None yields nil: the reminder is finished.
func NextFireAt(dueAt time.Time, rule Rule, now time.Time) *time.Time {
	if dueAt.After(now) {
		next := dueAt
		return &next
	}
	period := rule.Period()
	if period == 0 {
		return nil
	}
	steps := now.Sub(dueAt)/period + 1
	next := dueAt.Add(steps * period)
	return &next
}

func (r Rule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rule) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value stores None as NULL.
func (r Rule) Value() (driver.Value, error) {
	if r == None {
		return nil, nil
	}
	return r.String(), nil
}

func (r *Rule) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*r = None
		return nil
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	default:
		return fmt.Errorf("recurrence: cannot scan %T into Rule", src)
	}
}
