package qskema

import (
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format names the encoding of a Source.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// Source abstracts over document inputs. Decode produces a generic value
// tree: map[string]any, []any, string, bool, nil and json.Number (JSON) or
// int/float64 (YAML).
type Source interface {
	Format() Format
	Decode(opt ParseOpt) (any, error)
}

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source { return &jsonSource{data: b} }

// JSONReader wraps an io.Reader as a JSON Source. The reader is consumed on
// Decode.
func JSONReader(r io.Reader) Source { return &jsonSource{r: r} }

// YAMLBytes wraps a byte slice as a YAML Source. Quantity records inside YAML
// documents are inline mappings.
func YAMLBytes(b []byte) Source { return &yamlSource{data: b} }

type jsonSource struct {
	data []byte
	r    io.Reader
}

func (s *jsonSource) Format() Format { return FormatJSON }

func (s *jsonSource) Decode(opt ParseOpt) (any, error) {
	data, err := readLimited(s.data, s.r, opt.MaxBytes)
	if err != nil {
		return nil, err
	}
	if opt.Strictness.OnDuplicateKey != Ignore {
		iss, err := DetectJSONDuplicateKeysBytes(data, opt.Strictness, 1)
		if err != nil {
			return nil, err
		}
		if len(iss) > 0 && opt.Strictness.OnDuplicateKey == Error {
			return nil, iss
		}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, singleIssue(CodeParseError, err.Error())
	}
	return v, nil
}

type yamlSource struct{ data []byte }

func (s *yamlSource) Format() Format { return FormatYAML }

func (s *yamlSource) Decode(opt ParseOpt) (any, error) {
	if opt.MaxBytes > 0 && int64(len(s.data)) > opt.MaxBytes {
		return nil, singleIssue(CodeTruncated, "max bytes exceeded")
	}
	var v any
	if err := yaml.Unmarshal(s.data, &v); err != nil {
		return nil, singleIssue(CodeParseError, err.Error())
	}
	return NormalizeYAML(v), nil
}

// NormalizeYAML converts mappings decoded by yaml.v3 into map[string]any,
// recursively. Non-string keys are rendered with fmt.Sprint.
func NormalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = NormalizeYAML(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				ks = fmt.Sprint(k)
			}
			out[ks] = NormalizeYAML(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = NormalizeYAML(vv)
		}
		return out
	default:
		return v
	}
}

func readLimited(data []byte, r io.Reader, maxBytes int64) ([]byte, error) {
	if r != nil {
		if maxBytes > 0 {
			r = io.LimitReader(r, maxBytes+1)
		}
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, singleIssue(CodeParseError, err.Error())
		}
		data = b
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, singleIssue(CodeTruncated, "max bytes exceeded")
	}
	return data, nil
}
