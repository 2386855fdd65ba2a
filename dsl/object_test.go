package dsl_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	qs "github.com/reoring/qskema"
	g "github.com/reoring/qskema/dsl"
)

func TestPrimitives(t *testing.T) {
	ctx := context.Background()
	if v, err := g.String().Parse(ctx, "hello"); err != nil || v != "hello" {
		t.Fatalf("string parse ok expected, got v=%v err=%v", v, err)
	}
	if _, err := g.String().Parse(ctx, 1); err == nil {
		t.Fatalf("expected invalid_type for non-string")
	}
	if v, err := g.Bool().Parse(ctx, true); err != nil || v != true {
		t.Fatalf("bool parse ok expected, got v=%v err=%v", v, err)
	}
	if _, err := g.Bool().Parse(ctx, "nope"); err == nil {
		t.Fatalf("expected invalid_type for non-bool")
	}
	if v, err := g.Int().Parse(ctx, 3.0); err != nil || v != 3 {
		t.Fatalf("int parse from integral float expected ok, v=%v err=%v", v, err)
	}
	if _, err := g.Int().Parse(ctx, 3.5); err == nil {
		t.Fatalf("expected invalid_type for fractional int")
	}
	if v, err := g.Float().Parse(ctx, 2); err != nil || v != 2.0 {
		t.Fatalf("float parse from int expected ok, v=%v err=%v", v, err)
	}
}

func TestObject_RequiredDefaultUnknown(t *testing.T) {
	ctx := context.Background()
	obj, err := g.Object().
		Field("id", g.SchemaOf(g.String())).Required().
		Field("nickname", g.SchemaOf(g.String())).
		Field("active", g.SchemaOf(g.Bool())).Default(true).
		UnknownStrict().
		Build()
	if err != nil {
		t.Fatalf("unexpected build err: %v", err)
	}

	v, err := obj.Parse(ctx, map[string]any{"id": "u_1"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if v["active"] != true {
		t.Fatalf("expected default active=true, got: %#v", v)
	}
	if _, ok := v["nickname"]; ok {
		t.Fatalf("optional field must stay absent: %#v", v)
	}

	_, err = obj.Parse(ctx, map[string]any{"zzz": 1})
	iss, ok := qs.AsIssues(err)
	if !ok || len(iss) != 2 {
		t.Fatalf("expected required+unknown issues, got: %v", err)
	}
	if iss[0].Path != "/id" || iss[0].Code != qs.CodeRequired {
		t.Fatalf("unexpected first issue: %+v", iss[0])
	}
	if iss[1].Path != "/zzz" || iss[1].Code != qs.CodeUnknownKey {
		t.Fatalf("unexpected second issue: %+v", iss[1])
	}

	strip := g.Object().Field("id", g.SchemaOf(g.String())).UnknownStrip().MustBuild()
	if v, err := strip.Parse(ctx, map[string]any{"id": "x", "zzz": 1}); err != nil || len(v) != 1 {
		t.Fatalf("strip should drop unknown keys, v=%v err=%v", v, err)
	}
}

func TestObject_FailFast(t *testing.T) {
	obj := g.Object().
		Field("a", g.SchemaOf(g.String())).Required().
		Field("b", g.SchemaOf(g.String())).Required().
		MustBuild()
	_, err := qs.ParseFrom(context.Background(), obj, qs.JSONBytes([]byte(`{}`)), qs.ParseOpt{FailFast: true})
	iss, ok := qs.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Path != "/a" {
		t.Fatalf("expected a single issue at /a, got: %v", err)
	}
}

func TestObject_Refine(t *testing.T) {
	ctx := context.Background()
	s := g.Object().
		Field("password", g.SchemaOf(g.String())).Required().
		Field("confirm", g.SchemaOf(g.String())).Required().
		Refine("password==confirm", func(ctx context.Context, v map[string]any) error {
			if v["password"] != v["confirm"] {
				return fmt.Errorf("password mismatch")
			}
			return nil
		}).
		MustBuild()
	_, err := s.Parse(ctx, map[string]any{"password": "x", "confirm": "y"})
	iss, ok := qs.AsIssues(err)
	if !ok || iss[0].Code != "custom" {
		t.Fatalf("expected custom refine issue, got: %v", err)
	}
	if _, err := s.Parse(ctx, map[string]any{"password": "x", "confirm": "x"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestObject_BuildRejectsUndeclaredRequired(t *testing.T) {
	_, err := g.Object().Field("a", g.SchemaOf(g.String())).Require("b").Build()
	if err == nil {
		t.Fatalf("expected build error for undeclared required field")
	}
}

func TestNullable(t *testing.T) {
	ctx := context.Background()
	obj := g.Object().Field("note", g.SchemaOf(g.String()).Nullable()).MustBuild()
	v, err := obj.Parse(ctx, map[string]any{"note": nil})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if v["note"] != nil {
		t.Fatalf("expected nil note, got %#v", v["note"])
	}
	_, err = obj.Parse(ctx, map[string]any{"note": 1})
	if !errors.As(err, new(qs.Issues)) {
		t.Fatalf("expected issues, got %v", err)
	}
}

func TestObject_ParseFromWithMeta(t *testing.T) {
	obj := g.Object().
		Field("name", g.SchemaOf(g.String())).
		Field("active", g.SchemaOf(g.Bool())).Default(false).
		Field("note", g.SchemaOf(g.String()).Nullable()).
		MustBuild()
	dm, err := qs.ParseFromWithMeta(context.Background(), obj, qs.JSONBytes([]byte(`{"name":"a","note":null}`)))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if dm.Presence["/active"]&qs.PresenceDefaultApplied == 0 {
		t.Fatalf("expected default applied at /active: %v", dm.Presence)
	}
	if dm.Presence["/note"]&qs.PresenceWasNull == 0 {
		t.Fatalf("expected wasNull at /note: %v", dm.Presence)
	}
}
