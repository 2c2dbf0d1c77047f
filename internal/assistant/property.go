package assistant

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// PropertyInfo is the project fact sheet embedded in assistant prompts.
// Widget configs store it as free-form JSON; unknown keys are ignored.
type PropertyInfo struct {
	ProjectName   string            `json:"projectName,omitempty"`
	Developer     string            `json:"developer,omitempty"`
	Location      string            `json:"location,omitempty"`
	Area          string            `json:"area,omitempty"`
	Possession    string            `json:"possession,omitempty"`
	AvailableBHK  []string          `json:"availableBhk,omitempty"`
	Pricing       map[string]string `json:"pricing,omitempty"`
	Amenities     []string          `json:"amenities,omitempty"`
	SpecialOffers string            `json:"specialOffers,omitempty"`
}

// DecodePropertyInfo reads the opaque property context map. Values that do
// not fit the expected shape are dropped rather than failing the request.
func DecodePropertyInfo(raw map[string]any) PropertyInfo {
	var info PropertyInfo
	if len(raw) == 0 {
		return info
	}
	info.ProjectName = stringValue(raw["projectName"])
	info.Developer = stringValue(raw["developer"])
	info.Location = stringValue(raw["location"])
	info.Area = stringValue(raw["area"])
	info.Possession = stringValue(raw["possession"])
	info.SpecialOffers = stringValue(raw["specialOffers"])
	info.AvailableBHK = stringList(raw["availableBhk"])
	info.Amenities = stringList(raw["amenities"])
	if pricing, ok := raw["pricing"].(map[string]any); ok {
		info.Pricing = make(map[string]string, len(pricing))
		for k, v := range pricing {
			if s := stringValue(v); s != "" {
				info.Pricing[k] = s
			}
		}
	}
	return info
}

// IsEmpty reports whether no property facts are known.
func (p PropertyInfo) IsEmpty() bool {
	return p.ProjectName == "" && p.Developer == "" && p.Location == "" &&
		len(p.AvailableBHK) == 0 && len(p.Pricing) == 0 && len(p.Amenities) == 0
}

// PricingText renders pricing as "2 BHK: 80L, 3 BHK: 1Cr" in key order.
func (p PropertyInfo) PricingText() string {
	if len(p.Pricing) == 0 {
		return ""
	}
	keys := make([]string, 0, len(p.Pricing))
	for k := range p.Pricing {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, p.Pricing[k]))
	}
	return strings.Join(parts, ", ")
}

// FirstPrice returns the price of the lowest-sorted configuration.
func (p PropertyInfo) FirstPrice() string {
	if len(p.Pricing) == 0 {
		return ""
	}
	keys := make([]string, 0, len(p.Pricing))
	for k := range p.Pricing {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return p.Pricing[keys[0]]
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return ""
	}
}

func stringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := stringValue(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(t, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
