package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/joeshaw/envdecode"
	"github.com/sirupsen/logrus"

	qs "github.com/reoring/qskema"
	"github.com/reoring/qskema/dsl"
	"github.com/reoring/qskema/i18n"
	_ "github.com/reoring/qskema/interop/arrayunit"
	_ "github.com/reoring/qskema/interop/simunit"
	"github.com/reoring/qskema/model"
	"github.com/reoring/qskema/quantity"
	"github.com/reoring/qskema/units"
)

// config is read from the environment.
type config struct {
	Lang      string `env:"QSKEMA_LANG,default=en"`
	LogLevel  string `env:"QSKEMA_LOG_LEVEL,default=warn"`
	Embedding string `env:"QSKEMA_EMBEDDING,default=nested"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// cli carries what every subcommand needs.
type cli struct {
	cfg    config
	embed  qs.Embedding
	log    *logrus.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}
	if err := envdecode.Decode(&c.cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 2
	}
	c.log = logrus.New()
	c.log.SetOutput(stderr)
	c.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	lvl, err := logrus.ParseLevel(c.cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "config: QSKEMA_LOG_LEVEL: %v\n", err)
		return 2
	}
	c.log.SetLevel(lvl)
	i18n.SetLanguage(c.cfg.Lang)
	embed, ok := qs.ParseEmbedding(c.cfg.Embedding)
	if !ok {
		fmt.Fprintf(stderr, "config: QSKEMA_EMBEDDING: unknown embedding %q\n", c.cfg.Embedding)
		return 2
	}
	c.embed = embed
	c.log.WithFields(logrus.Fields{"lang": c.cfg.Lang, "embedding": embed}).Debug("config loaded")

	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	sub := args[0]
	log := c.log.WithField("cmd", sub)
	var code int
	switch sub {
	case "convert":
		code = c.convertCmd(log, args[1:])
	case "check":
		code = c.checkCmd(log, args[1:])
	case "encode":
		code = c.encodeCmd(log, args[1:])
	case "decode":
		code = c.decodeCmd(log, args[1:])
	case "schema":
		code = c.schemaCmd(log, args[1:])
	default:
		usage(stderr)
		return 2
	}
	log.WithField("exit", code).Debug("done")
	return code
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `qskema CLI

Usage:
  qskema check   -field name=kind[:unit] ... [-format json|yaml] [-inline] [file]
  qskema convert -field name=kind[:unit] ... -to json|yaml [-inline] [-inline-in] [file]
  qskema encode  -kind float|int|array|dimension|unit -unit U [-inline] VALUE
  qskema decode  [-path gjson.path] [-to U] [file]
  qskema schema  -field name=kind[:unit] ... [-title T]

Field kinds:
  string, bool, number          plain values
  int, float, array, unit       quantities converted to the given unit
  dimension                     quantities in any unit compatible with the given one
A trailing "?" on the name makes the field optional.

Environment:
  QSKEMA_LANG       message language (en, ja)
  QSKEMA_LOG_LEVEL  logrus level (default warn)
  QSKEMA_EMBEDDING  nested or inline JSON records (default nested)`)
}

// fieldFlags collects repeated -field flags.
type fieldFlags []string

func (f *fieldFlags) String() string     { return strings.Join(*f, ",") }
func (f *fieldFlags) Set(v string) error { *f = append(*f, v); return nil }

func (c *cli) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

func (c *cli) checkCmd(log *logrus.Entry, args []string) int {
	fs := c.newFlagSet("check")
	var fields fieldFlags
	var format string
	var inline, strip bool
	fs.Var(&fields, "field", "field spec name=kind[:unit], repeatable")
	fs.StringVar(&format, "format", "", "input format json|yaml (default from file extension, else json)")
	fs.BoolVar(&inline, "inline", false, "JSON input holds records inline instead of as strings")
	fs.BoolVar(&strip, "strip", false, "drop unknown keys instead of rejecting them")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	s, err := buildSchema(fields, "", strip)
	if err != nil {
		return c.fail(log, 2, err)
	}
	data, name, err := c.readInput(fs.Arg(0))
	if err != nil {
		return c.fail(log, 2, err)
	}
	m, err := c.parseModel(context.Background(), s, data, formatOf(format, name), inline)
	if err != nil {
		return c.reportIssues(log, err)
	}
	log.WithField("fields", len(m.Dump())).Info("document valid")
	fmt.Fprintln(c.stdout, "ok")
	return 0
}

func (c *cli) convertCmd(log *logrus.Entry, args []string) int {
	fs := c.newFlagSet("convert")
	var fields fieldFlags
	var from, to string
	var inline, inlineIn, strip bool
	fs.Var(&fields, "field", "field spec name=kind[:unit], repeatable")
	fs.StringVar(&from, "from", "", "input format json|yaml (default from file extension, else json)")
	fs.StringVar(&to, "to", "json", "output format json|yaml")
	fs.BoolVar(&inline, "inline", false, "write JSON records inline instead of as strings")
	fs.BoolVar(&inlineIn, "inline-in", false, "JSON input holds records inline instead of as strings")
	fs.BoolVar(&strip, "strip", false, "drop unknown keys instead of rejecting them")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	s, err := buildSchema(fields, "", strip)
	if err != nil {
		return c.fail(log, 2, err)
	}
	data, name, err := c.readInput(fs.Arg(0))
	if err != nil {
		return c.fail(log, 2, err)
	}
	ctx := context.Background()
	m, err := c.parseModel(ctx, s, data, formatOf(from, name), inlineIn)
	if err != nil {
		return c.reportIssues(log, err)
	}
	var out []byte
	switch to {
	case "yaml":
		out, err = m.DumpYAML(ctx)
	case "json":
		out, err = m.DumpJSON(qs.WithEmbedding(ctx, c.embedding(inline)))
		if err == nil {
			out = append(out, '\n')
		}
	default:
		return c.fail(log, 2, fmt.Errorf("unknown output format %q", to))
	}
	if err != nil {
		return c.reportIssues(log, err)
	}
	log.WithFields(logrus.Fields{"from": formatOf(from, name), "to": to}).Info("converted")
	_, _ = c.stdout.Write(out)
	return 0
}

func (c *cli) encodeCmd(log *logrus.Entry, args []string) int {
	fs := c.newFlagSet("encode")
	var kind, unit string
	var inline bool
	fs.StringVar(&kind, "kind", "unit", "field kind float|int|array|dimension|unit")
	fs.StringVar(&unit, "unit", "", "field unit")
	fs.BoolVar(&inline, "inline", false, "print the record object instead of a JSON string")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	f, err := quantityField(kind, unit)
	if err != nil {
		return c.fail(log, 2, err)
	}
	log = log.WithFields(logrus.Fields{"field": f.String(), "unit": unit})
	ctx := context.Background()
	q, err := f.Parse(qs.WithMode(ctx, qs.ModeNative), fs.Arg(0))
	if err != nil {
		return c.reportIssues(log, err)
	}
	enc, err := f.EncodeValue(qs.WithEmbedding(ctx, c.embedding(inline)), q)
	if err != nil {
		return c.reportIssues(log, err)
	}
	out, err := json.Marshal(enc)
	if err != nil {
		return c.fail(log, 1, err)
	}
	log.WithField("quantity", q.String()).Debug("encoded")
	fmt.Fprintln(c.stdout, string(out))
	return 0
}

func (c *cli) decodeCmd(log *logrus.Entry, args []string) int {
	fs := c.newFlagSet("decode")
	var path, to string
	fs.StringVar(&path, "path", "", "GJSON path of the record inside the document")
	fs.StringVar(&to, "to", "", "convert the decoded quantity to this unit")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	data, _, err := c.readInput(fs.Arg(0))
	if err != nil {
		return c.fail(log, 2, err)
	}
	var q units.Quantity
	if path != "" {
		log = log.WithField("path", path)
		q, err = quantity.DecodePath(data, path)
	} else {
		q, err = quantity.DecodeJSON(data)
	}
	if err != nil {
		return c.reportIssues(log, err)
	}
	if to != "" {
		if q, err = q.ConvertTo(to); err != nil {
			return c.reportIssues(log, err)
		}
	}
	log.WithField("unit", q.Units()).Debug("decoded")
	fmt.Fprintln(c.stdout, q.String())
	return 0
}

func (c *cli) schemaCmd(log *logrus.Entry, args []string) int {
	fs := c.newFlagSet("schema")
	var fields fieldFlags
	var title string
	var strip bool
	fs.Var(&fields, "field", "field spec name=kind[:unit], repeatable")
	fs.StringVar(&title, "title", "", "schema title")
	fs.BoolVar(&strip, "strip", false, "allow unknown keys")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	s, err := buildSchema(fields, title, strip)
	if err != nil {
		return c.fail(log, 2, err)
	}
	sch, err := s.JSONSchema()
	if err != nil {
		return c.fail(log, 1, err)
	}
	out, err := json.MarshalIndent(sch, "", "  ")
	if err != nil {
		return c.fail(log, 1, err)
	}
	fmt.Fprintln(c.stdout, string(out))
	return 0
}

// ---- helpers ----

func (c *cli) embedding(inline bool) qs.Embedding {
	if inline {
		return qs.EmbedInline
	}
	return c.embed
}

func (c *cli) readInput(name string) ([]byte, string, error) {
	if name == "" || name == "-" {
		b, err := io.ReadAll(c.stdin)
		return b, "", err
	}
	b, err := os.ReadFile(name)
	return b, name, err
}

func (c *cli) fail(log *logrus.Entry, code int, err error) int {
	log.WithError(err).Error("failed")
	fmt.Fprintf(c.stderr, "error: %v\n", err)
	return code
}

// reportIssues prints one line per issue and exits 1.
func (c *cli) reportIssues(log *logrus.Entry, err error) int {
	iss, ok := qs.AsIssues(err)
	if !ok {
		iss = qs.Issues{qs.UnitIssue(qs.RootPath(), err)}
	}
	for _, it := range iss {
		log.WithFields(logrus.Fields{"path": it.Path, "code": it.Code}).Info("issue")
		fmt.Fprintf(c.stdout, "%s\t%s\t%s\n", it.Path, it.Code, it.Message)
	}
	return 1
}

func formatOf(flagValue, name string) string {
	if flagValue != "" {
		return flagValue
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return "yaml"
	}
	return "json"
}

// parseModel reads a document. JSON records are expected in the configured
// embedding; YAML records are always inline.
func (c *cli) parseModel(ctx context.Context, s *dsl.ObjectSchema, data []byte, format string, inline bool) (*model.Model, error) {
	if format == "yaml" {
		return model.ParseYAML(ctx, s, data)
	}
	return model.ParseJSON(qs.WithEmbedding(ctx, c.embedding(inline)), s, data)
}

// buildSchema turns -field specs into an object schema.
func buildSchema(specs []string, title string, strip bool) (*dsl.ObjectSchema, error) {
	if len(specs) == 0 {
		return nil, errors.New("at least one -field is required")
	}
	b := dsl.Object()
	if title != "" {
		b = b.Title(title)
	}
	if strip {
		b = b.UnknownStrip()
	}
	for _, spec := range specs {
		name, kind, unit, optional, err := splitFieldSpec(spec)
		if err != nil {
			return nil, err
		}
		ad, err := adapterFor(kind, unit)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		step := b.Field(name, ad)
		if optional {
			b = step.Optional()
		} else {
			b = step.Required()
		}
	}
	return b.Build()
}

func splitFieldSpec(spec string) (name, kind, unit string, optional bool, err error) {
	name, rest, ok := strings.Cut(spec, "=")
	if !ok || name == "" || rest == "" {
		return "", "", "", false, fmt.Errorf("invalid field spec %q, want name=kind[:unit]", spec)
	}
	if strings.HasSuffix(name, "?") {
		name = strings.TrimSuffix(name, "?")
		optional = true
	}
	kind, unit, _ = strings.Cut(rest, ":")
	return name, kind, unit, optional, nil
}

func adapterFor(kind, unit string) (dsl.AnyAdapter, error) {
	switch kind {
	case "string":
		return dsl.SchemaOf(dsl.String()), nil
	case "bool":
		return dsl.SchemaOf(dsl.Bool()), nil
	case "number":
		return dsl.SchemaOf(dsl.Float()), nil
	}
	f, err := quantityField(kind, unit)
	if err != nil {
		return dsl.AnyAdapter{}, err
	}
	return dsl.Quantity(f), nil
}

func quantityField(kind, unit string) (*quantity.Field, error) {
	cfg := quantity.Config{Unit: unit, Contract: quantity.ExactCoerce}
	switch kind {
	case "int":
		cfg.Numeric = quantity.NumericInt
	case "float":
		cfg.Numeric = quantity.NumericFloat
	case "array":
		cfg.Numeric = quantity.NumericArray
	case "unit":
		cfg.Numeric = quantity.NumericAny
	case "dimension":
		cfg.Contract = quantity.DimensionOnly
	default:
		return nil, fmt.Errorf("unknown field kind %q", kind)
	}
	return quantity.New(cfg)
}
