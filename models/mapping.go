package models

import "time"

// MappingKind is the closed set of field transformation rules.
type MappingKind string

const (
	MapDirect    MappingKind = "direct"
	MapFixed     MappingKind = "fixed"
	MapScale100  MappingKind = "scale_100"
	MapScale1000 MappingKind = "scale_1000"
)

// ParseMappingKind maps a stored kind string to its variant. Unknown
// kinds behave as direct.
func ParseMappingKind(s string) MappingKind {
	switch MappingKind(s) {
	case MapFixed, MapScale100, MapScale1000:
		return MappingKind(s)
	}
	return MapDirect
}

// EntityScope is the record kind a mapping rule applies to.
type EntityScope string

const (
	ScopeProduct     EntityScope = "product"
	ScopeTransaction EntityScope = "transaction"
	ScopePayment     EntityScope = "payment"
	ScopeValidate    EntityScope = "validate"
)

// FieldMapping converts one named field between the terminal's and the
// gateway's JSON schemas. SourceField is empty for fixed rules.
type FieldMapping struct {
	ID   string `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`

	SourceField string      `json:"sourceField,omitempty" bson:"source_field,omitempty"`
	TargetField string      `json:"targetField" bson:"target_field"`
	Kind        MappingKind `json:"kind" bson:"kind"`

	FixedValue   string `json:"fixedValue,omitempty" bson:"fixed_value,omitempty"`
	DefaultValue string `json:"defaultValue,omitempty" bson:"default_value,omitempty"`

	Active bool        `json:"active" bson:"active"`
	Scope  EntityScope `json:"scope" bson:"scope"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}
