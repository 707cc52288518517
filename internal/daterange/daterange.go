// Package daterange turns dashboard presets ("last 7 days", "this month", ...)
// into concrete calendar-date intervals in the dashboard's timezone.
package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// Layout is the date format used on the wire and in the store.
const Layout = "2006-01-02"

// DefaultTimezone is where the account's ad day starts and ends.
const DefaultTimezone = "America/Sao_Paulo"

// ErrInvalidDate is returned for dates not in Layout.
var ErrInvalidDate = errors.New("invalid date")

// Preset names a relative range.
type Preset string

const (
	Today      Preset = "today"
	Yesterday  Preset = "yesterday"
	Last7Days  Preset = "last7days"
	Last14Days Preset = "last14days"
	Last30Days Preset = "last30days"
	ThisMonth  Preset = "thisMonth"
	LastMonth  Preset = "lastMonth"
	AllTime    Preset = "allTime"
)

// Presets lists every preset in picker order.
var Presets = []Preset{Today, Yesterday, Last7Days, Last14Days, Last30Days, ThisMonth, LastMonth, AllTime}

// Range is an inclusive [Start, End] interval of YYYY-MM-DD dates.
type Range struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (r Range) String() string { return r.Start + ".." + r.End }

// Contains reports whether day (YYYY-MM-DD) lies inside the range.
func (r Range) Contains(day string) bool {
	return day >= r.Start && day <= r.End
}

// Resolver resolves presets against "today" in a fixed location.
type Resolver struct {
	loc           *time.Location
	now           func() time.Time
	launch        map[string]string
	end           map[string]string
	opening       map[string]string
	defaultLaunch string
	defaultKey    string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithLaunchDates sets the per-product start of the all-time preset.
func WithLaunchDates(m map[string]string) Option {
	return func(r *Resolver) { r.launch = m }
}

// WithEndDates sets per-product ends of the all-time preset for funnels that closed.
func WithEndDates(m map[string]string) Option {
	return func(r *Resolver) { r.end = m }
}

// WithOpeningStarts sets products whose default range starts on a fixed date.
func WithOpeningStarts(m map[string]string) Option {
	return func(r *Resolver) { r.opening = m }
}

// WithDefaults sets the product assumed when none is given and the launch
// date used for products with none configured.
func WithDefaults(productID, launch string) Option {
	return func(r *Resolver) {
		r.defaultKey = productID
		r.defaultLaunch = launch
	}
}

// NewResolver creates a resolver for the given location.
func NewResolver(loc *time.Location, opts ...Option) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	r := &Resolver{
		loc:     loc,
		now:     time.Now,
		launch:  map[string]string{},
		end:     map[string]string{},
		opening: map[string]string{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadLocation loads a timezone by name, falling back to DefaultTimezone when empty.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", name, err)
	}
	return loc, nil
}

// today returns the current civil date in r.loc as a UTC midnight, so that
// AddDate arithmetic never crosses a DST transition.
func (r *Resolver) today() time.Time {
	y, m, d := r.now().In(r.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns today's date in the resolver's timezone.
func (r *Resolver) Today() string {
	return r.today().Format(Layout)
}

// Resolve maps a preset to a concrete range. Unknown presets resolve to yesterday.
func (r *Resolver) Resolve(preset Preset, productID string) Range {
	today := r.today()
	yesterday := today.AddDate(0, 0, -1)

	switch preset {
	case Today:
		return span(today, today)
	case Yesterday:
		return span(yesterday, yesterday)
	case Last7Days:
		return span(yesterday.AddDate(0, 0, -6), yesterday)
	case Last14Days:
		return span(yesterday.AddDate(0, 0, -13), yesterday)
	case Last30Days:
		return span(yesterday.AddDate(0, 0, -29), yesterday)
	case ThisMonth:
		return span(time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC), today)
	case LastMonth:
		start := time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(today.Year(), today.Month(), 0, 0, 0, 0, 0, time.UTC)
		return span(start, end)
	case AllTime:
		return r.allTime(productID, today)
	default:
		return span(yesterday, yesterday)
	}
}

func (r *Resolver) allTime(productID string, today time.Time) Range {
	key := productID
	if key == "" {
		key = r.defaultKey
	}
	start, ok := r.launch[key]
	if !ok || start == "" {
		start = r.defaultLaunch
	}
	if start == "" {
		start = today.Format(Layout)
	}
	// The explicit end only applies to a named product.
	end := today.Format(Layout)
	if productID != "" {
		if e, ok := r.end[productID]; ok && e != "" {
			end = e
		}
	}
	// Before launch the range is the single end day.
	if start > end {
		start = end
	}
	return Range{Start: start, End: end}
}

// DefaultRange is the range a product's dashboard opens with.
func (r *Resolver) DefaultRange(productID string) Range {
	if s, ok := r.opening[productID]; ok && s != "" {
		today := r.Today()
		if s > today {
			s = today
		}
		return Range{Start: s, End: today}
	}
	return r.Resolve(AllTime, productID)
}

// IncludesPartialDay reports whether the range reaches today, whose data is
// still being synced.
func (r *Resolver) IncludesPartialDay(rg Range) bool {
	return rg.End >= r.Today()
}

// Explicit validates user-picked bounds. Reversed bounds are swapped, the
// way the picker treats a second click before the first.
func Explicit(start, end string) (Range, error) {
	s, err := parseDay(start)
	if err != nil {
		return Range{}, err
	}
	e, err := parseDay(end)
	if err != nil {
		return Range{}, err
	}
	if e.Before(s) {
		s, e = e, s
	}
	return span(s, e), nil
}

// ParsePreset validates a preset name.
func ParsePreset(s string) (Preset, bool) {
	for _, p := range Presets {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse(Layout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

func span(start, end time.Time) Range {
	return Range{Start: start.Format(Layout), End: end.Format(Layout)}
}
