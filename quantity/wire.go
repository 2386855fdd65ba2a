package quantity

import (
	"bytes"
	"math"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	qs "github.com/reoring/qskema"
	"github.com/reoring/qskema/units"
)

// Wire record keys.
const (
	KeyVal  = "val"
	KeyUnit = "unit"
)

// Record is the wire form of a quantity: {"val": <number|nested list>, "unit": "<unit>"}.
// Val holds the encoded JSON text of the magnitude.
type Record struct {
	Val  json.RawMessage `json:"val"`
	Unit string          `json:"unit"`
}

// Encode builds the wire record for q. Floats always carry a decimal point
// or an exponent, so 2.0 is written as 2.0 and decodes back as a float.
func Encode(q units.Quantity) (Record, error) {
	var buf bytes.Buffer
	switch q.Kind() {
	case units.KindInt:
		buf.WriteString(strconv.FormatInt(q.IntValue(), 10))
	case units.KindFloat:
		if err := writeFloat(&buf, q.FloatValue()); err != nil {
			return Record{}, err
		}
	case units.KindArray:
		a := q.Array()
		if a == nil {
			return Record{}, qs.NewUnitError(qs.UnsupportedExport, "trying to serialize a quantity without a magnitude")
		}
		if err := writeNested(&buf, a.Nested()); err != nil {
			return Record{}, err
		}
	default:
		return Record{}, qs.NewUnitError(qs.UnsupportedExport, "trying to serialize unsupported magnitude kind %s", q.Kind())
	}
	return Record{Val: buf.Bytes(), Unit: q.Units()}, nil
}

// EncodeAny is Encode for values of unknown type. Anything other than a
// units.Quantity is an unsupported export.
func EncodeAny(v any) (Record, error) {
	switch t := v.(type) {
	case units.Quantity:
		return Encode(t)
	case *units.Quantity:
		if t != nil {
			return Encode(*t)
		}
	}
	return Record{}, qs.NewUnitError(qs.UnsupportedExport, "trying to serialize unsupported type %T", v)
}

// Marshal encodes q as inline record JSON.
func Marshal(q units.Quantity) ([]byte, error) {
	rec, err := Encode(q)
	if err != nil {
		return nil, err
	}
	return json.Marshal(rec)
}

// EncodeString encodes q as record JSON text, the value stored for a field
// in the nested embedding.
func EncodeString(q units.Quantity) (string, error) {
	b, err := Marshal(q)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// EncodeEmbedded returns the value a model document stores for q: a string
// holding the record JSON for EmbedNested, the raw record object for EmbedInline.
func EncodeEmbedded(q units.Quantity, e qs.Embedding) (any, error) {
	b, err := Marshal(q)
	if err != nil {
		return nil, err
	}
	if e == qs.EmbedInline {
		return json.RawMessage(b), nil
	}
	return string(b), nil
}

func writeFloat(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return qs.NewUnitError(qs.UnsupportedExport, "trying to serialize non-finite value %v", f)
	}
	buf.WriteString(FormatFloat(f))
	return nil
}

// FormatFloat renders f the way the wire record does: shortest round-trip
// digits, exponent form outside [1e-6, 1e21), and always a '.' or exponent.
func FormatFloat(f float64) string {
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	s := strconv.FormatFloat(f, format, -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func writeNested(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case []any:
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeNested(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case int64:
		buf.WriteString(strconv.FormatInt(t, 10))
	case float64:
		return writeFloat(buf, t)
	default:
		return qs.NewUnitError(qs.UnsupportedExport, "trying to serialize unsupported element %T", v)
	}
	return nil
}

// DecodeRecord rebuilds a quantity from a record map. The map must hold
// exactly the keys "val" and "unit".
func DecodeRecord(m map[string]any) (units.Quantity, error) {
	if len(m) != 2 {
		return units.Quantity{}, qs.NewUnitError(qs.UnitValidation,
			"quantity record must have exactly two keys %q and %q, got %s", KeyVal, KeyUnit, sortedKeys(m))
	}
	for k := range m {
		if k != KeyVal && k != KeyUnit {
			return units.Quantity{}, qs.NewUnitError(qs.UnitValidation,
				"unexpected key %q in quantity record, expected %q and %q", k, KeyVal, KeyUnit)
		}
	}
	unitName, ok := m[KeyUnit].(string)
	if !ok {
		return units.Quantity{}, qs.NewUnitError(qs.UnitValidation, "quantity record %q must be a string, got %T", KeyUnit, m[KeyUnit])
	}
	u, err := units.ParseUnit(unitName)
	if err != nil {
		return units.Quantity{}, qs.WrapUnitError(qs.UnitValidation, err, "invalid unit %q: %v", unitName, err)
	}
	return magnitudeWithUnit(m[KeyVal], u)
}

func magnitudeWithUnit(val any, u units.Unit) (units.Quantity, error) {
	switch t := val.(type) {
	case json.Number:
		return numberQuantity(t, u)
	case bool, nil, string, map[string]any:
		return units.Quantity{}, qs.NewUnitError(qs.UnitValidation, "quantity record %q must be a number or a list of numbers, got %T", KeyVal, val)
	}
	q, err := units.NewWithUnit(val, u)
	if err != nil {
		return units.Quantity{}, qs.WrapUnitError(qs.UnitValidation, err, "invalid %q: %v", KeyVal, err)
	}
	return q, nil
}

// numberQuantity reads a JSON number: integer literals become int
// quantities, anything with a fraction or exponent a float quantity.
func numberQuantity(n json.Number, u units.Unit) (units.Quantity, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return units.Int(i, u), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return units.Quantity{}, qs.WrapUnitError(qs.UnitValidation, err, "invalid number %q", s)
	}
	return units.Float(f, u), nil
}

func sortedKeys(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, strconv.Quote(k))
	}
	sort.Strings(keys)
	return "[" + strings.Join(keys, ", ") + "]"
}

// Unmarshal decodes inline record JSON. Duplicate keys are rejected.
func Unmarshal(data []byte) (units.Quantity, error) {
	if iss, err := qs.DetectJSONDuplicateKeysBytes(data, qs.Strictness{OnDuplicateKey: qs.Error}, 1); err == nil && len(iss) > 0 {
		return units.Quantity{}, qs.NewUnitError(qs.UnitValidation, "quantity record: %s", iss[0].Message)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return units.Quantity{}, qs.WrapUnitError(qs.UnitValidation, err, "quantity record is not valid JSON: %v", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return units.Quantity{}, qs.NewUnitError(qs.UnitValidation, "quantity record must be a JSON object, got %s", jsonKind(v))
	}
	return DecodeRecord(m)
}

// DecodeString decodes record JSON held in a string (the nested embedding).
func DecodeString(s string) (units.Quantity, error) { return Unmarshal([]byte(s)) }

// DecodeJSON decodes a record in either embedding: a JSON object, or a JSON
// string whose content is the record.
func DecodeJSON(data []byte) (units.Quantity, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return units.Quantity{}, qs.WrapUnitError(qs.UnitValidation, err, "invalid JSON string: %v", err)
		}
		return DecodeString(s)
	}
	return Unmarshal(trimmed)
}

// DecodePath extracts the record at a GJSON path inside a larger document,
// for example "system.box_vectors" or "frames.0.time".
func DecodePath(doc []byte, path string) (units.Quantity, error) {
	r := gjson.GetBytes(doc, path)
	switch {
	case !r.Exists():
		return units.Quantity{}, qs.NewUnitError(qs.UnitValidation, "no value at path %q", path)
	case r.Type == gjson.String:
		return DecodeString(r.Str)
	case r.IsObject():
		return Unmarshal([]byte(r.Raw))
	default:
		return units.Quantity{}, qs.NewUnitError(qs.UnitValidation, "value at path %q is not a quantity record", path)
	}
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	default:
		return "object"
	}
}
