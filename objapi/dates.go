package objapi

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lychee-technology/notionmap"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Instant is a point in time that remembers whether it was a bare date.
// A parsed instant also keeps its literal and encodes back to it unchanged.
type Instant struct {
	Time     time.Time
	DateOnly bool

	literal string
}

// DateOf returns a date-only Instant.
func DateOf(year int, month time.Month, day int) Instant {
	return Instant{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), DateOnly: true}
}

// DateTime returns a full timestamp Instant.
func DateTime(t time.Time) Instant {
	return Instant{Time: t}
}

func (i Instant) String() string {
	if i.DateOnly {
		return i.Time.Format(dateLayout)
	}
	return i.Time.Format(dateTimeLayout)
}

// Equal compares instants by time and by date-only flag.
func (i Instant) Equal(other Instant) bool {
	return i.DateOnly == other.DateOnly && i.Time.Equal(other.Time)
}

func (i Instant) MarshalJSON() ([]byte, error) {
	if i.literal != "" {
		return json.Marshal(i.literal)
	}
	return json.Marshal(i.String())
}

func (i *Instant) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return notionmap.NewDecodeError("instant is not a string", err)
	}
	parsed, err := ParseInstant(raw)
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// ParseInstant accepts YYYY-MM-DD and RFC 3339 timestamps.
func ParseInstant(raw string) (Instant, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return Instant{Time: t, DateOnly: true, literal: raw}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return Instant{}, notionmap.NewDecodeError(fmt.Sprintf("'%s' is neither a date nor a timestamp", raw), err)
	}
	return Instant{Time: t, literal: raw}, nil
}

// DateRange is the wire shape of dates: a start with optional end and time zone.
// An end or time zone received as an explicit null is encoded as null again.
type DateRange struct {
	Start    Instant  `json:"start"`
	End      *Instant `json:"end,omitempty"`
	TimeZone *string  `json:"time_zone,omitempty"`

	nullEnd      bool
	nullTimeZone bool
}

type dateRangeWire struct {
	Start    Instant  `json:"start"`
	End      *Instant `json:"end,omitempty"`
	TimeZone *string  `json:"time_zone,omitempty"`
}

func (d *DateRange) UnmarshalJSON(data []byte) error {
	var w dateRangeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*d = DateRange{Start: w.Start, End: w.End, TimeZone: w.TimeZone}
	if raw, ok := fields["end"]; ok && isNull(raw) {
		d.nullEnd = true
	}
	if raw, ok := fields["time_zone"]; ok && isNull(raw) {
		d.nullTimeZone = true
	}
	return nil
}

func (d DateRange) MarshalJSON() ([]byte, error) {
	fields := map[string]any{"start": d.Start}
	switch {
	case d.End != nil:
		fields["end"] = d.End
	case d.nullEnd:
		fields["end"] = nil
	}
	switch {
	case d.TimeZone != nil:
		fields["time_zone"] = d.TimeZone
	case d.nullTimeZone:
		fields["time_zone"] = nil
	}
	return json.Marshal(fields)
}

// Span is an ordered start/end pair.
type Span struct {
	Start Instant
	End   Instant
}

// ProjectDate is the value projection shared by date formulas and date rollups:
// nil without a date, the start without an end, otherwise the ordered Span.
func ProjectDate(d *DateRange) any {
	if d == nil {
		return nil
	}
	if d.End == nil {
		return d.Start
	}
	return Span{Start: d.Start, End: *d.End}
}
