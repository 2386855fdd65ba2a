package jsonschema

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	// Core
	Type        string `json:"type,omitempty"`
	Format      string `json:"format,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	// Union
	OneOf []*Schema `json:"oneOf,omitempty"`

	// Unit is the "x-unit" extension naming the unit a quantity is bound to.
	Unit string `json:"x-unit,omitempty"`
	// UnitContract is the "x-unit-contract" extension: "coerce" or "dimension".
	UnitContract string `json:"x-unit-contract,omitempty"`
}

// Number returns {"type": "number"}.
func Number() *Schema { return &Schema{Type: "number"} }

// ArrayOf returns {"type": "array", "items": items}.
func ArrayOf(items *Schema) *Schema { return &Schema{Type: "array", Items: items} }
