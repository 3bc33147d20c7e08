package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// OptionsEncoding tags which wire format a stored options blob used.
type OptionsEncoding int

const (
	EncodingJSON OptionsEncoding = iota
	EncodingLegacy
)

// RecordingOptions is the structured bag persisted with each recording.
// It is written as JSON; rows created by earlier releases may carry the
// legacy PHP serialize() encoding instead, so DecodeOptions accepts both.
type RecordingOptions struct {
	DeviceKey       string   `json:"device_key,omitempty"`
	ViewportWidth   int      `json:"viewport_width,omitempty"`
	ViewportHeight  int      `json:"viewport_height,omitempty"`
	Duration        int      `json:"duration,omitempty"`
	Format          string   `json:"format,omitempty"`
	Scenario        string   `json:"scenario,omitempty"`
	ShowDeviceFrame FlexBool `json:"show_device_frame,omitempty"`
	PostID          int64    `json:"post_id,omitempty"`
}

// FlexBool unmarshals from a JSON bool, number, or string. Older rows stored
// show_device_frame as 0/1.
type FlexBool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	switch s := strings.Trim(string(data), `"`); s {
	case "true", "1":
		*b = true
	case "false", "0", "", "null":
		*b = false
	default:
		return fmt.Errorf("invalid bool value %q", s)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (b FlexBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(b))
}

// EncodeOptions serializes options as JSON, the current wire format.
func EncodeOptions(o *RecordingOptions) (string, error) {
	if o == nil {
		return "", nil
	}
	raw, err := json.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("encode options: %w", err)
	}
	return string(raw), nil
}

// DecodeOptions deserializes a stored options blob. JSON is tried first; on
// failure the legacy PHP serialize() array format is tried. The returned
// encoding tags which format succeeded.
func DecodeOptions(raw string) (*RecordingOptions, OptionsEncoding, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, EncodingJSON, nil
	}
	var o RecordingOptions
	if err := json.Unmarshal([]byte(raw), &o); err == nil {
		return &o, EncodingJSON, nil
	}
	legacy, err := decodeLegacyArray(raw)
	if err != nil {
		return nil, EncodingLegacy, fmt.Errorf("decode options: not JSON and %w", err)
	}
	return optionsFromLegacy(legacy), EncodingLegacy, nil
}

func optionsFromLegacy(m map[string]legacyValue) *RecordingOptions {
	o := &RecordingOptions{
		DeviceKey:       m["device_key"].str,
		ViewportWidth:   m["viewport_width"].intVal(),
		ViewportHeight:  m["viewport_height"].intVal(),
		Duration:        m["duration"].intVal(),
		Format:          m["format"].str,
		Scenario:        m["scenario"].str,
		ShowDeviceFrame: FlexBool(m["show_device_frame"].boolVal()),
		PostID:          int64(m["post_id"].intVal()),
	}
	return o
}

// legacyValue is a scalar from a PHP serialize() array.
type legacyValue struct {
	kind byte // 's', 'i', 'd', 'b', 'N'
	str  string
	num  float64
	b    bool
}

func (v legacyValue) intVal() int {
	switch v.kind {
	case 'i', 'd':
		return int(v.num)
	case 's':
		n, _ := strconv.Atoi(v.str)
		return n
	}
	return 0
}

func (v legacyValue) boolVal() bool {
	switch v.kind {
	case 'b':
		return v.b
	case 'i', 'd':
		return v.num != 0
	case 's':
		return v.str == "1" || v.str == "true"
	}
	return false
}

// decodeLegacyArray parses the subset of the PHP serialize() grammar the old
// plugin produced: a flat associative array of scalars, e.g.
// a:2:{s:10:"device_key";s:16:"mobile_iphone_xr";s:8:"duration";i:5;}
func decodeLegacyArray(raw string) (map[string]legacyValue, error) {
	p := &legacyParser{src: raw}
	count, err := p.arrayHeader()
	if err != nil {
		return nil, err
	}
	out := make(map[string]legacyValue, count)
	for i := 0; i < count; i++ {
		key, err := p.scalar()
		if err != nil {
			return nil, fmt.Errorf("legacy entry %d key: %w", i, err)
		}
		if key.kind != 's' && key.kind != 'i' {
			return nil, fmt.Errorf("legacy entry %d: unsupported key type %q", i, key.kind)
		}
		val, err := p.scalar()
		if err != nil {
			return nil, fmt.Errorf("legacy entry %d value: %w", i, err)
		}
		name := key.str
		if key.kind == 'i' {
			name = strconv.Itoa(int(key.num))
		}
		out[name] = val
	}
	if err := p.expect('}'); err != nil {
		return nil, err
	}
	return out, nil
}

type legacyParser struct {
	src string
	pos int
}

func (p *legacyParser) expect(c byte) error {
	if p.pos >= len(p.src) || p.src[p.pos] != c {
		return fmt.Errorf("legacy format: expected %q at offset %d", c, p.pos)
	}
	p.pos++
	return nil
}

// arrayHeader consumes "a:N:{" and returns N.
func (p *legacyParser) arrayHeader() (int, error) {
	if err := p.expect('a'); err != nil {
		return 0, err
	}
	if err := p.expect(':'); err != nil {
		return 0, err
	}
	count, err := p.readInt(':')
	if err != nil {
		return 0, err
	}
	if err := p.expect('{'); err != nil {
		return 0, err
	}
	return count, nil
}

// scalar consumes one serialized scalar including its trailing semicolon.
func (p *legacyParser) scalar() (legacyValue, error) {
	if p.pos >= len(p.src) {
		return legacyValue{}, fmt.Errorf("legacy format: unexpected end at offset %d", p.pos)
	}
	kind := p.src[p.pos]
	p.pos++
	if kind == 'N' {
		return legacyValue{kind: 'N'}, p.expect(';')
	}
	if err := p.expect(':'); err != nil {
		return legacyValue{}, err
	}
	switch kind {
	case 's':
		n, err := p.readInt(':')
		if err != nil {
			return legacyValue{}, err
		}
		if err := p.expect('"'); err != nil {
			return legacyValue{}, err
		}
		if p.pos+n > len(p.src) {
			return legacyValue{}, fmt.Errorf("legacy format: string overruns input at offset %d", p.pos)
		}
		s := p.src[p.pos : p.pos+n]
		p.pos += n
		if err := p.expect('"'); err != nil {
			return legacyValue{}, err
		}
		return legacyValue{kind: 's', str: s}, p.expect(';')
	case 'i':
		n, err := p.readInt(';')
		if err != nil {
			return legacyValue{}, err
		}
		return legacyValue{kind: 'i', num: float64(n)}, nil
	case 'd':
		end := strings.IndexByte(p.src[p.pos:], ';')
		if end < 0 {
			return legacyValue{}, fmt.Errorf("legacy format: unterminated double at offset %d", p.pos)
		}
		f, err := strconv.ParseFloat(p.src[p.pos:p.pos+end], 64)
		if err != nil {
			return legacyValue{}, fmt.Errorf("legacy format: bad double at offset %d", p.pos)
		}
		p.pos += end + 1
		return legacyValue{kind: 'd', num: f}, nil
	case 'b':
		if p.pos >= len(p.src) {
			return legacyValue{}, fmt.Errorf("legacy format: unexpected end at offset %d", p.pos)
		}
		b := p.src[p.pos] == '1'
		p.pos++
		return legacyValue{kind: 'b', b: b}, p.expect(';')
	}
	return legacyValue{}, fmt.Errorf("legacy format: unsupported type %q at offset %d", kind, p.pos-2)
}

// readInt reads digits (optionally signed) up to the terminator, consuming it.
func (p *legacyParser) readInt(term byte) (int, error) {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != term {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return 0, fmt.Errorf("legacy format: unterminated integer at offset %d", start)
	}
	n, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return 0, fmt.Errorf("legacy format: bad integer at offset %d", start)
	}
	p.pos++
	return n, nil
}
