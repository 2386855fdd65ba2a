package qskema

// UnknownPolicy controls how unknown keys are handled.
type UnknownPolicy int

const (
	UnknownStrict UnknownPolicy = iota // Reject unknown keys with an error.
	UnknownStrip                       // Drop unknown keys.
)

// Strictness configures enforcement for duplicate keys.
type Strictness struct {
	OnDuplicateKey Severity // Warn or Error (duplicate JSON keys).
}

// Severity expresses the severity level for issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// PresenceOpt configures presence collection for WithMeta-style parsing.
type PresenceOpt struct {
	Collect bool
	Include []string
	Exclude []string
}

// ParseOpt bundles parsing options.
type ParseOpt struct {
	Strictness Strictness
	MaxBytes   int64
	Presence   PresenceOpt
	FailFast   bool
}

// Mode selects how quantity fields interpret their input.
type Mode int

const (
	// ModeNative accepts in-memory values: quantities, foreign quantity
	// objects, numbers, strings, slices, byte buffers and wire-record maps.
	ModeNative Mode = iota
	// ModeJSON accepts only what a JSON document can carry: the wire record
	// in the active Embedding, plus bare numbers for coercing fields.
	ModeJSON
)

func (m Mode) String() string {
	if m == ModeJSON {
		return "json"
	}
	return "native"
}

// Embedding selects how a wire record sits inside a larger document.
type Embedding int

const (
	// EmbedNested stores the record as a JSON string: "x": "{\"val\": 1, \"unit\": \"nm\"}".
	EmbedNested Embedding = iota
	// EmbedInline stores the record as an object: "x": {"val": 1, "unit": "nm"}.
	EmbedInline
)

func (e Embedding) String() string {
	if e == EmbedInline {
		return "inline"
	}
	return "nested"
}

// ParseEmbedding maps "nested" and "inline" to an Embedding.
func ParseEmbedding(s string) (Embedding, bool) {
	switch s {
	case "nested", "":
		return EmbedNested, true
	case "inline":
		return EmbedInline, true
	}
	return EmbedNested, false
}
