// Package model holds validated, mutable instances of object schemas and
// reads and writes them as JSON or YAML documents.
package model

import (
	"bytes"
	"context"
	"reflect"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	qs "github.com/reoring/qskema"
	"github.com/reoring/qskema/dsl"
	"github.com/reoring/qskema/quantity"
	"github.com/reoring/qskema/units"
)

// Model is a mutable instance of an object schema. Every assignment is
// validated before it is stored.
type Model struct {
	schema *dsl.ObjectSchema
	values map[string]any
}

// New validates input against s in native mode and returns the instance.
func New(ctx context.Context, s *dsl.ObjectSchema, input map[string]any) (*Model, error) {
	v, err := s.Parse(qs.WithMode(ctx, qs.ModeNative), input)
	if err != nil {
		return nil, err
	}
	return &Model{schema: s, values: v}, nil
}

// MustNew is New that panics on error.
func MustNew(ctx context.Context, s *dsl.ObjectSchema, input map[string]any) *Model {
	m, err := New(ctx, s, input)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseJSON validates a JSON document. Quantity fields expect records as
// JSON strings; pass a context from qs.WithEmbedding(ctx, qs.EmbedInline)
// for documents holding inline record objects.
func ParseJSON(ctx context.Context, s *dsl.ObjectSchema, data []byte, opts ...qs.ParseOpt) (*Model, error) {
	v, err := qs.ParseFrom(ctx, s, qs.JSONBytes(data), opts...)
	if err != nil {
		return nil, err
	}
	return &Model{schema: s, values: v}, nil
}

// ParseYAML validates a YAML document holding inline records.
func ParseYAML(ctx context.Context, s *dsl.ObjectSchema, data []byte, opts ...qs.ParseOpt) (*Model, error) {
	v, err := qs.ParseFrom(ctx, s, qs.YAMLBytes(data), opts...)
	if err != nil {
		return nil, err
	}
	return &Model{schema: s, values: v}, nil
}

func (m *Model) Schema() *dsl.ObjectSchema { return m.schema }

// Get returns the stored value of a field.
func (m *Model) Get(name string) (any, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Quantity returns a field value that holds a quantity.
func (m *Model) Quantity(name string) (units.Quantity, bool) {
	q, ok := m.values[name].(units.Quantity)
	return q, ok
}

// Set assigns one field. The value goes through the field's contract and the
// schema's refinements; on failure the model keeps its previous state.
func (m *Model) Set(ctx context.Context, name string, v any) error {
	ctx = qs.WithMode(ctx, qs.ModeNative)
	parsed, err := m.schema.ParseField(ctx, name, v)
	if err != nil {
		return err
	}
	next := m.Dump()
	if parsed == nil {
		delete(next, name)
	} else {
		next[name] = parsed
	}
	if err := m.schema.Refine(ctx, next); err != nil {
		return err
	}
	m.values = next
	return nil
}

// Update assigns several fields in name order and stops at the first
// failure. Fields assigned before the failure keep their new values.
func (m *Model) Update(ctx context.Context, fields map[string]any) error {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if err := m.Set(ctx, k, fields[k]); err != nil {
			return err
		}
	}
	return nil
}

// Dump returns a shallow copy of the field values.
func (m *Model) Dump() map[string]any {
	out := make(map[string]any, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// DumpJSON renders the model as a JSON object. Quantity fields are written
// as record JSON strings unless ctx selects the inline embedding.
func (m *Model) DumpJSON(ctx context.Context) ([]byte, error) {
	enc, err := m.schema.Encode(ctx, m.values)
	if err != nil {
		return nil, err
	}
	return json.Marshal(enc)
}

// MarshalJSON implements json.Marshaler with the nested embedding.
func (m *Model) MarshalJSON() ([]byte, error) {
	return m.DumpJSON(qs.WithEmbedding(context.Background(), qs.EmbedNested))
}

// DumpYAML renders the model as a YAML mapping with inline records. Float
// magnitudes keep their decimal point so they load back as floats.
func (m *Model) DumpYAML(ctx context.Context) ([]byte, error) {
	enc, err := m.schema.Encode(qs.WithEmbedding(ctx, qs.EmbedInline), m.values)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(enc)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	ye := yaml.NewEncoder(&buf)
	ye.SetIndent(2)
	root, err := yamlNode(doc, false)
	if err != nil {
		return nil, err
	}
	if err := ye.Encode(root); err != nil {
		return nil, err
	}
	if err := ye.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func yamlNode(v any, flow bool) (*yaml.Node, error) {
	switch t := v.(type) {
	case map[string]any:
		n := &yaml.Node{Kind: yaml.MappingNode}
		if flow {
			n.Style = yaml.FlowStyle
		}
		for _, k := range mappingKeys(t) {
			child, err := yamlNode(t[k], flow || k == quantity.KeyVal)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, child)
		}
		return n, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, e := range t {
			child, err := yamlNode(e, true)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	case json.Number:
		s := t.String()
		if strings.ContainsAny(s, ".eE") {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}, nil
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: s}, nil
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t}, nil
	case bool:
		if t {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"}, nil
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "false"}, nil
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return n, nil
}

// mappingKeys orders record keys as val, unit and everything else by name.
func mappingKeys(m map[string]any) []string {
	if _, hasVal := m[quantity.KeyVal]; hasVal && len(m) == 2 {
		if _, hasUnit := m[quantity.KeyUnit]; hasUnit {
			return []string{quantity.KeyVal, quantity.KeyUnit}
		}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal compares field values. Quantities compare after unit conversion.
func (m *Model) Equal(o *Model) bool {
	if m == nil || o == nil {
		return m == o
	}
	if len(m.values) != len(o.values) {
		return false
	}
	for k, v := range m.values {
		ov, ok := o.values[k]
		if !ok {
			return false
		}
		if q, isQ := v.(units.Quantity); isQ {
			oq, isOQ := ov.(units.Quantity)
			if !isOQ || !q.Equal(oq) {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(v, ov) {
			return false
		}
	}
	return true
}

// LoadJSONQuantities decodes a JSON object without a schema. Top-level
// values that hold a quantity record, as a JSON string or an object with
// exactly "val" and "unit", become units.Quantity. Other values are left as
// decoded.
func LoadJSONQuantities(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, qs.Issues{{Path: "/", Code: qs.CodeParseError, Message: err.Error(), Cause: err}}
	}
	for k, v := range out {
		rec, ok := recordOf(v)
		if !ok {
			continue
		}
		q, err := quantity.DecodeRecord(rec)
		if err != nil {
			return nil, qs.Issues{qs.UnitIssue(qs.RootPath().Field(k), err)}
		}
		out[k] = q
	}
	return out, nil
}

func recordOf(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case string:
		if !strings.HasPrefix(strings.TrimSpace(t), "{") {
			return nil, false
		}
		dec := json.NewDecoder(strings.NewReader(t))
		dec.UseNumber()
		var m map[string]any
		if err := dec.Decode(&m); err != nil {
			return nil, false
		}
		return m, isRecord(m)
	case map[string]any:
		return t, isRecord(t)
	}
	return nil, false
}

func isRecord(m map[string]any) bool {
	_, hasVal := m[quantity.KeyVal]
	_, hasUnit := m[quantity.KeyUnit]
	return hasVal && hasUnit
}
