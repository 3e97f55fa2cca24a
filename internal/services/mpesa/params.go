package mpesa

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Nairobi is East Africa Time. Kenya observes no DST, so a fixed zone avoids
// depending on tzdata being installed.
var Nairobi = time.FixedZone("EAT", 3*60*60)

// Timestamp layouts used by Daraja.
const (
	LayoutCompact = "20060102150405"      // STK TransactionDate, C2B TransTime
	LayoutDotted  = "02.01.2006 15:04:05" // B2C TransactionCompletedDateTime
)

// Params is a loosely typed parameter list keyed by name. Every accessor
// returns nil for missing or unusable values instead of an error.
type Params map[string]json.RawMessage

// Lookup returns the raw value for key and whether it was present.
func (p Params) Lookup(key string) (json.RawMessage, bool) {
	v, ok := p[key]
	return v, ok
}

func (p Params) String(key string) *string {
	return RawString(p[key])
}

func (p Params) Float(key string) *float64 {
	return RawFloat(p[key])
}

// Time parses the value with the first matching layout in Nairobi time.
func (p Params) Time(key string, layouts ...string) *time.Time {
	s := p.String(key)
	if s == nil {
		return nil
	}
	return ParseTime(*s, layouts...)
}

// RawString renders a JSON scalar as text. Numbers keep their literal digits
// so msisdns and receipt numbers survive without float rounding.
func RawString(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		return &s
	}
	if raw[0] == '{' || raw[0] == '[' {
		return nil
	}
	s := string(raw)
	return &s
}

func RawFloat(raw json.RawMessage) *float64 {
	s := RawString(raw)
	if s == nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*s), 64)
	if err != nil {
		return nil
	}
	return &f
}

func ParseTime(s string, layouts ...string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if len(layouts) == 0 {
		layouts = []string{LayoutCompact, LayoutDotted}
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, Nairobi); err == nil {
			return &t
		}
	}
	return nil
}
