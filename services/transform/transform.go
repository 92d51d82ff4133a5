// Package transform applies configured field-mapping rules to a source
// record, producing the gateway's string-typed target object. It is pure:
// same inputs always produce the same output.
package transform

import (
	// Go Internal Packages
	"fmt"
	"sort"
	"strconv"

	// Local Packages
	models "pdv-bridge/models"

	// External Packages
	"github.com/shopspring/decimal"
)

// Apply runs every active rule against source in stable order by target
// field. Later rules for the same target field overwrite earlier output.
func Apply(source map[string]any, rules []models.FieldMapping) map[string]string {
	ordered := make([]models.FieldMapping, 0, len(rules))
	for _, r := range rules {
		if r.Active {
			ordered = append(ordered, r)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].TargetField < ordered[j].TargetField
	})

	out := make(map[string]string, len(ordered))
	for _, rule := range ordered {
		out[rule.TargetField] = applyRule(source, rule)
	}
	return out
}

func applyRule(source map[string]any, rule models.FieldMapping) string {
	switch models.ParseMappingKind(string(rule.Kind)) {
	case models.MapFixed:
		return rule.FixedValue
	case models.MapScale100:
		return scale(lookup(source, rule), 100)
	case models.MapScale1000:
		return scale(lookup(source, rule), 1000)
	default:
		return lookup(source, rule)
	}
}

// lookup resolves the source value, falling back to the rule's default,
// falling back to empty string.
func lookup(source map[string]any, rule models.FieldMapping) string {
	if rule.SourceField != "" {
		if v, ok := source[rule.SourceField]; ok {
			if s := Stringify(v); s != "" {
				return s
			}
		}
	}
	return rule.DefaultValue
}

// scale parses raw as a decimal (empty parses as zero), multiplies by
// factor and rounds to the nearest integer.
func scale(raw string, factor int64) string {
	if raw == "" {
		raw = "0"
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		d = decimal.Zero
	}
	return d.Mul(decimal.NewFromInt(factor)).Round(0).String()
}

// Stringify coerces a source value to the gateway's string wire format.
// Floats render as plain decimals, never exponent notation.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return decimal.NewFromFloat(t).String()
	case float32:
		return decimal.NewFromFloat32(t).String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
