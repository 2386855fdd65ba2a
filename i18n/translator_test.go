package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("invalid_type", nil); msg == "invalid_type" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("invalid_type", nil); msg == "invalid type" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_QuantityCodes(t *testing.T) {
	if msg := T("incompatible_unit", map[string]string{"unit": "angstrom"}); msg != "unit must be compatible with angstrom" {
		t.Fatalf("unexpected message %q", msg)
	}
	if msg := T("missing_unit", nil); msg == "missing_unit" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	defer SetLanguage("en")
	if msg := T("unit_validation", nil); msg == "value cannot be coerced to a quantity" {
		t.Fatalf("expected japanese message, got %q", msg)
	}
}

type fixedTranslator struct{}

func (fixedTranslator) Message(code string, _ map[string]string) string { return "x:" + code }

func TestSetTranslator(t *testing.T) {
	SetTranslator(fixedTranslator{})
	defer SetTranslator(nil)
	if msg := T("unsupported_export", nil); msg != "x:unsupported_export" {
		t.Fatalf("custom translator not used: %q", msg)
	}
}
