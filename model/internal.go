package model

import (
	"strconv"
)

// Departure is one upcoming departure at the monitored stop: the line
// identifier, the cleaned destination name, the whole minutes until it
// leaves (0 means it is leaving now) and the platform where known.
// Departures are immutable values with structural equality only.
type Departure struct {
	Line         string  `json:"line"`
	Destination  string  `json:"destination"`
	MinutesUntil int     `json:"minutesUntil"`
	Platform     *string `json:"platform,omitempty"`
}

type ByMinutesUntil []Departure

func (a ByMinutesUntil) Len() int {
	return len(a)
}

func (a ByMinutesUntil) Swap(i, j int) {
	a[i], a[j] = a[j], a[i]
}

func (a ByMinutesUntil) Less(i, j int) bool {
	if a[i].MinutesUntil == a[j].MinutesUntil {
		return a[i].Line < a[j].Line
	}
	return a[i].MinutesUntil < a[j].MinutesUntil
}

// Format renders the departure as a single line, e.g. "S3 Erkner 5 min"
func (d Departure) Format() string {
	return d.Line + " " + d.Destination + " " + strconv.Itoa(d.MinutesUntil) + " min"
}

// FormatTruncated renders the departure within maxChars characters,
// shortening the destination so that the line and minutes always survive.
// If even those do not fit, the formatted string is cut hard at maxChars.
func (d Departure) FormatTruncated(maxChars int) string {
	formatted := d.Format()
	if len(formatted) <= maxChars {
		return formatted
	}

	lineText := d.Line + " "
	minText := " " + strconv.Itoa(d.MinutesUntil) + " min"
	overhead := len(lineText) + len(minText)

	if overhead >= maxChars {
		runes := []rune(formatted)
		if maxChars < len(runes) {
			runes = runes[:maxChars]
		}
		return string(runes)
	}

	dest := []rune(d.Destination)
	if len(dest) > maxChars-overhead {
		dest = dest[:maxChars-overhead]
	}

	return lineText + string(dest) + minText
}

func (d Departure) Equal(other Departure) bool {
	if d.Line != other.Line || d.Destination != other.Destination || d.MinutesUntil != other.MinutesUntil {
		return false
	}
	if (d.Platform == nil) != (other.Platform == nil) {
		return false
	}
	return d.Platform == nil || *d.Platform == *other.Platform
}

// DeparturesEqual reports whether two boards hold the same departures in
// the same order
func DeparturesEqual(a []Departure, b []Departure) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
