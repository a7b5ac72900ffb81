package feature

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// props is a sparse attribute record keyed by upper-cased name.
type props map[string]any

func normalizeProps(in map[string]any) props {
	out := make(props, len(in))
	for k, v := range in {
		out[strings.ToUpper(k)] = v
	}
	return out
}

// str returns the first present, non-blank attribute among keys.
func (p props) str(keys ...string) string {
	for _, k := range keys {
		switch v := p[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case json.Number:
			return v.String()
		}
	}
	return ""
}

// num returns the attribute as a finite number, or nil when it is absent,
// null, blank, or unparsable.
func (p props) num(key string) *float64 {
	var f float64
	switch v := p[key].(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		return parseNum(v)
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// raw returns a JSON encoding of the attribute: strings are returned as
// given, other values are marshaled.
func (p props) raw(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func parseNum(s string) *float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func parseYear(s string) (int, bool) {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || y <= 0 {
		return 0, false
	}
	return y, true
}

// tractFromProps builds a Tract. ok is false when GEOID is missing.
func tractFromProps(p props, fallbackID string) (Tract, bool) {
	t := Tract{
		GEOID:        p.str("GEOID", "GEOID10", "GEOID20"),
		Name:         p.str("NAMELSAD", "NAME"),
		Neighborhood: p.str("NEIGHBORHOOD", "NEIGHBORHOOD_NAME"),
		MedianRent:   p.num("MEDIAN_RENT"),
		Burden30:     p.num("BURDEN_30"),
		Burden50:     p.num("BURDEN_50"),
		RentSeries:   p.raw("RENT_SERIES"),
	}
	if t.GEOID == "" {
		t.GEOID = fallbackID
	}
	if t.GEOID == "" {
		return Tract{}, false
	}
	if t.Name == "" {
		t.Name = "Tract " + t.GEOID
	}
	for _, b := range GRAPIBuckets {
		if v := p.num(string(b)); v != nil {
			if t.GRAPI == nil {
				t.GRAPI = make(map[GRAPIBucket]float64, len(GRAPIBuckets))
			}
			t.GRAPI[b] = *v
		}
	}
	return t, true
}

// zoneFromProps builds a Zone. ok is false when no id is available.
func zoneFromProps(p props, fallbackID string) (Zone, bool) {
	z := Zone{
		ID:       p.str("ZONE_ID", "ZONEID"),
		Name:     p.str("ZONE_NAME", "NAME"),
		Tier:     p.str("MHA_TIER", "TIER"),
		Category: p.str("CATEGORY", "ZONE_CAT"),
	}
	if z.ID == "" {
		z.ID = fallbackID
	}
	if z.ID == "" {
		return Zone{}, false
	}
	if z.Name == "" {
		z.Name = "Zone " + z.ID
	}
	return z, true
}
