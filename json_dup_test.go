package qskema

import "testing"

func TestDetectJSONDuplicateKeysBytes_NoDup(t *testing.T) {
	js := []byte(`{"a":{"val":1,"unit":"nm"},"b":[{"val":2,"unit":"nm"}]}`)
	iss, err := DetectJSONDuplicateKeysBytes(js, Strictness{OnDuplicateKey: Warn}, -1)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(iss) != 0 {
		t.Fatalf("expected 0 issues, got %d: %v", len(iss), iss)
	}
}

func TestDetectJSONDuplicateKeysBytes_WithDup(t *testing.T) {
	js := []byte(`{"val":1,"val":2}`)
	iss, err := DetectJSONDuplicateKeysBytes(js, Strictness{OnDuplicateKey: Warn}, -1)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(iss) == 0 {
		t.Fatalf("expected duplicate_key issue")
	}
	if iss[0].Code != CodeDuplicateKey {
		t.Fatalf("expected duplicate_key, got %s", iss[0].Code)
	}
	if iss[0].Path != "/val" {
		t.Fatalf("expected path /val, got %s", iss[0].Path)
	}
}

func TestDetectJSONDuplicateKeysBytes_NestedPath(t *testing.T) {
	js := []byte(`{"box":[1,{"unit":"nm","unit":"A"}]}`)
	iss, err := DetectJSONDuplicateKeysBytes(js, Strictness{OnDuplicateKey: Error}, -1)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(iss) != 1 || iss[0].Path != "/box/1/unit" {
		t.Fatalf("unexpected issues: %v", iss)
	}
}

func TestDetectJSONDuplicateKeysBytes_Ignore(t *testing.T) {
	iss, err := DetectJSONDuplicateKeysBytes([]byte(`{"a":1,"a":2}`), Strictness{}, -1)
	if err != nil || len(iss) != 0 {
		t.Fatalf("expected no issues when ignoring, got %v %v", iss, err)
	}
}
