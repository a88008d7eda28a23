package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Date function names.
const (
	FuncNow          = "now"
	FuncToday        = "today"
	FuncStartOfDay   = "startOfDay"
	FuncStartOfWeek  = "startOfWeek"
	FuncStartOfMonth = "startOfMonth"
	FuncStartOfYear  = "startOfYear"
	FuncEndOfDay     = "endOfDay"
	FuncEndOfWeek    = "endOfWeek"
	FuncEndOfMonth   = "endOfMonth"
	FuncEndOfYear    = "endOfYear"
)

var dateFunctionNames = []string{
	FuncNow, FuncToday,
	FuncStartOfDay, FuncStartOfWeek, FuncStartOfMonth, FuncStartOfYear,
	FuncEndOfDay, FuncEndOfWeek, FuncEndOfMonth, FuncEndOfYear,
}

var (
	timeType  = reflect.TypeOf(time.Time{})
	int64Type = reflect.TypeOf(int64(0))
)

// DateFunctions evaluates relative date functions. Every string argument is a
// modifier added to the calculated date, e.g. today('+1d') or now('-2w 3d').
// Results are time.Time values, or Unix milliseconds for int64 targets.
// Weeks start on Monday.
type DateFunctions struct {
	// Now returns the current time; defaults to time.Now.
	Now func() time.Time
	// Location is the zone days are calculated in; defaults to time.Local.
	Location *time.Location
}

// NewDateFunctions creates date functions on the system clock.
func NewDateFunctions() *DateFunctions {
	return &DateFunctions{Now: time.Now, Location: time.Local}
}

func (f *DateFunctions) Accepts(name string, expected reflect.Type) bool {
	if !isDateFunction(name) {
		return false
	}
	return untyped(expected) || expected == timeType || expected == int64Type
}

func isDateFunction(name string) bool {
	for _, n := range dateFunctionNames {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

func (f *DateFunctions) Apply(name string, args []EQType, expected reflect.Type, _ *TypeConverter) (any, error) {
	calculated := f.calculate(name)
	for _, arg := range args {
		var modifier string
		switch a := arg.(type) {
		case EQString:
			modifier = a.Value
		case EQValue:
			modifier = a.Value
		default:
			return nil, fmt.Errorf("%s: unsupported modifier %s", name, arg)
		}
		p, err := ParsePeriod(modifier)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		calculated = p.AddTo(calculated)
	}

	if expected == int64Type {
		return calculated.UnixMilli(), nil
	}
	return calculated, nil
}

func (f *DateFunctions) calculate(name string) time.Time {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	current := now().In(loc)
	y, m, d := current.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	endOf := func(start time.Time) time.Time { return start.Add(-time.Nanosecond) }

	// days since Monday
	weekday := (int(today.Weekday()) + 6) % 7

	switch strings.ToLower(name) {
	case strings.ToLower(FuncToday), strings.ToLower(FuncStartOfDay):
		return today
	case strings.ToLower(FuncStartOfWeek):
		return today.AddDate(0, 0, -weekday)
	case strings.ToLower(FuncStartOfMonth):
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case strings.ToLower(FuncStartOfYear):
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	case strings.ToLower(FuncEndOfDay):
		return endOf(today.AddDate(0, 0, 1))
	case strings.ToLower(FuncEndOfWeek):
		return endOf(today.AddDate(0, 0, 7-weekday))
	case strings.ToLower(FuncEndOfMonth):
		return endOf(time.Date(y, m+1, 1, 0, 0, 0, 0, loc))
	case strings.ToLower(FuncEndOfYear):
		return endOf(time.Date(y+1, time.January, 1, 0, 0, 0, 0, loc))
	}
	return current
}

// Period is a calendar offset plus an exact duration.
type Period struct {
	Years, Months, Days int
	Duration            time.Duration
}

// AddTo shifts t by the period.
func (p Period) AddTo(t time.Time) time.Time {
	return t.AddDate(p.Years, p.Months, p.Days).Add(p.Duration)
}

var periodUnits = map[string]func(p *Period, n int){
	"y": func(p *Period, n int) { p.Years += n },
	"M": func(p *Period, n int) { p.Months += n },
	"w": func(p *Period, n int) { p.Days += 7 * n },
	"d": func(p *Period, n int) { p.Days += n },
	"h": func(p *Period, n int) { p.Duration += time.Duration(n) * time.Hour },
	"m": func(p *Period, n int) { p.Duration += time.Duration(n) * time.Minute },
	"s": func(p *Period, n int) { p.Duration += time.Duration(n) * time.Second },
	"S": func(p *Period, n int) { p.Duration += time.Duration(n) * time.Millisecond },
}

var periodUnitAliases = map[string]string{
	"year": "y", "years": "y",
	"month": "M", "months": "M",
	"week": "w", "weeks": "w",
	"day": "d", "days": "d",
	"hour": "h", "hours": "h",
	"min": "m", "minute": "m", "minutes": "m",
	"sec": "s", "second": "s", "seconds": "s",
	"ms": "S", "milli": "S", "millis": "S",
}

// ParsePeriod parses modifiers like "+1d", "-2w3d" or "1 year 2 months".
// A sign applies to the amounts directly following it; whitespace before an
// amount resets the sign to positive.
func ParsePeriod(s string) (Period, error) {
	var p Period
	sign := 1
	i := 0
	parsed := false

	for i < len(s) {
		spaced := false
		for i < len(s) && isWhitespace(s[i]) {
			i++
			spaced = true
		}
		if i >= len(s) {
			break
		}
		if spaced {
			sign = 1
		}
		if s[i] == '+' || s[i] == '-' {
			sign = 1
			if s[i] == '-' {
				sign = -1
			}
			i++
			for i < len(s) && isWhitespace(s[i]) {
				i++
			}
		}

		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if start == i {
			return Period{}, fmt.Errorf("invalid period %q: expected a number at offset %d", s, start)
		}
		n, err := strconv.Atoi(s[start:i])
		if err != nil {
			return Period{}, fmt.Errorf("invalid period %q: %w", s, err)
		}

		for i < len(s) && isWhitespace(s[i]) {
			i++
		}
		unitStart := i
		for i < len(s) && (s[i] >= 'a' && s[i] <= 'z' || s[i] >= 'A' && s[i] <= 'Z') {
			i++
		}
		unit := s[unitStart:i]
		if alias, ok := periodUnitAliases[strings.ToLower(unit)]; ok && len(unit) > 1 {
			unit = alias
		}
		apply, ok := periodUnits[unit]
		if !ok {
			return Period{}, fmt.Errorf("invalid period %q: unknown unit %q", s, unit)
		}
		apply(&p, sign*n)
		parsed = true
	}

	if !parsed {
		return Period{}, fmt.Errorf("invalid period %q", s)
	}
	return p, nil
}
