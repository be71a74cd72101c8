package core

import "testing"

func TestLoadProfileDefault(t *testing.T) {
	p, err := LoadProfile("")
	if err != nil {
		t.Fatalf("load default profile: %v", err)
	}
	if p.Name != "default" {
		t.Fatalf("expected default profile, got %q", p.Name)
	}
	if p.TimeoutSeconds != 5 {
		t.Fatalf("expected 5s default timeout, got %d", p.TimeoutSeconds)
	}
	if p.StrictSchemas {
		t.Fatal("default profile must not enable strict schemas")
	}
}

func TestLoadProfileStrict(t *testing.T) {
	p, err := LoadProfile("STRICT")
	if err != nil {
		t.Fatalf("load strict profile: %v", err)
	}
	if !p.StrictSchemas {
		t.Fatal("strict profile must enable strict schemas")
	}
}

func TestLoadProfileUnknown(t *testing.T) {
	if _, err := LoadProfile("nope"); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

func TestLoadProfileReturnsCopy(t *testing.T) {
	a, _ := LoadProfile("ci")
	a.TimeoutSeconds = 999
	b, _ := LoadProfile("ci")
	if b.TimeoutSeconds == 999 {
		t.Fatal("profile defaults must not be mutable through returned copies")
	}
}
