// Package shortcode parses [screen_recording ...] tags and renders them into
// embeddable video markup.
package shortcode

import (
	"fmt"
	"strconv"
	"strings"
)

// Name is the shortcode tag this package handles.
const Name = "screen_recording"

// FrameMode is the parsed device_frame attribute.
type FrameMode int

const (
	// FrameAuto defers to the recording's stored options.
	FrameAuto FrameMode = iota
	FrameOn
	FrameOff
)

// Attributes are the parsed shortcode attributes with defaults applied.
type Attributes struct {
	ID         int64
	DeviceType string // explicit device override; wins over everything else
	Frame      FrameMode
	Width      string
	Height     string
	Autoplay   bool
	Controls   bool
	Loop       bool
	Muted      bool
	Class      string
	Style      string
}

// defaults returns the attribute defaults: autoplay looping muted playback
// without controls, frame resolution deferred to the stored options.
func defaults() Attributes {
	return Attributes{
		Frame:    FrameAuto,
		Width:    "auto",
		Height:   "auto",
		Autoplay: true,
		Controls: false,
		Loop:     true,
		Muted:    true,
	}
}

// Parse parses the body of a [screen_recording ...] shortcode tag. The input
// is everything between the tag name and the closing bracket. Unknown
// attributes are ignored; a missing or non-numeric id yields ID 0, which the
// renderer reports as invalid.
func Parse(raw string) Attributes {
	attrs := defaults()
	for key, val := range scanPairs(raw) {
		switch key {
		case "id":
			if n, err := strconv.ParseInt(val, 10, 64); err == nil && n > 0 {
				attrs.ID = n
			}
		case "device_type":
			attrs.DeviceType = val
		case "device_frame":
			attrs.Frame = parseFrameMode(val)
		case "width":
			attrs.Width = val
		case "height":
			attrs.Height = val
		case "autoplay":
			attrs.Autoplay = parseBool(val, attrs.Autoplay)
		case "controls":
			attrs.Controls = parseBool(val, attrs.Controls)
		case "loop":
			attrs.Loop = parseBool(val, attrs.Loop)
		case "muted":
			attrs.Muted = parseBool(val, attrs.Muted)
		case "class":
			attrs.Class = val
		case "style":
			attrs.Style = val
		}
	}
	return attrs
}

// ParseTag parses a full shortcode string including the surrounding brackets
// and tag name, e.g. `[screen_recording id="7"]`.
func ParseTag(tag string) (Attributes, error) {
	s := strings.TrimSpace(tag)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if !strings.HasPrefix(s, Name) {
		return Attributes{}, fmt.Errorf("not a %s shortcode", Name)
	}
	return Parse(strings.TrimPrefix(s, Name)), nil
}

func parseFrameMode(v string) FrameMode {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return FrameOn
	case "false", "0", "no", "off":
		return FrameOff
	}
	return FrameAuto
}

func parseBool(v string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return fallback
}

// scanPairs extracts key="value" pairs from an attribute string. Values may
// be double-quoted, single-quoted, or bare; bare keys with no value map to
// "true". Keys are lowercased.
func scanPairs(raw string) map[string]string {
	out := make(map[string]string)
	s := raw
	for {
		s = strings.TrimLeft(s, " \t\n")
		if s == "" {
			return out
		}
		eq := -1
		end := len(s)
		for i := 0; i < len(s); i++ {
			if s[i] == '=' {
				eq = i
				break
			}
			if s[i] == ' ' || s[i] == '\t' || s[i] == '\n' {
				end = i
				break
			}
		}
		if eq < 0 {
			// bare flag attribute
			key := strings.ToLower(s[:end])
			if key != "" {
				out[key] = "true"
			}
			s = s[end:]
			continue
		}
		key := strings.ToLower(strings.TrimSpace(s[:eq]))
		rest := s[eq+1:]
		var val string
		if len(rest) > 0 && (rest[0] == '"' || rest[0] == '\'') {
			q := rest[0]
			closing := strings.IndexByte(rest[1:], q)
			if closing < 0 {
				val = rest[1:]
				rest = ""
			} else {
				val = rest[1 : 1+closing]
				rest = rest[closing+2:]
			}
		} else {
			sp := strings.IndexAny(rest, " \t\n")
			if sp < 0 {
				val = rest
				rest = ""
			} else {
				val = rest[:sp]
				rest = rest[sp:]
			}
		}
		if key != "" {
			out[key] = val
		}
		s = rest
	}
}
