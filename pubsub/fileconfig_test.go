package pubsub

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseConfig(t *testing.T) {
	data := []byte(`
[pubsub]
priority_min = 0
priority_max = 50
default_priority = 25
default_group = "gameplay"
strict_groups = true
`)

	opts, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}

	b, err := New(opts...)
	if err != nil {
		t.Fatalf("New with parsed options failed: %v", err)
	}

	if _, err := b.Publish("tick", nil, AtPriority(51)); !errors.Is(err, ErrInvalidPriority) {
		t.Errorf("expected the configured domain to apply, got %v", err)
	}
	if err := b.DeactivateGroup("never-seen"); !errors.Is(err, ErrUnknownGroup) {
		t.Errorf("expected strict groups to apply, got %v", err)
	}
	if err := b.DeactivateGroup("gameplay"); !errors.Is(err, ErrDefaultGroup) {
		t.Errorf("expected the renamed default group to apply, got %v", err)
	}
}

func TestParseConfig_Empty(t *testing.T) {
	opts, err := ParseConfig([]byte(""))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if len(opts) != 0 {
		t.Errorf("expected no options from empty config, got %d", len(opts))
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	if _, err := ParseConfig([]byte("not [valid toml")); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pubsub.toml")
	data := []byte("[pubsub]\ndefault_priority = 42\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	opts, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if len(opts) != 1 {
		t.Fatalf("expected 1 option, got %d", len(opts))
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	opts, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Errorf("expected missing file to be silent, got %v", err)
	}
	if opts != nil {
		t.Errorf("expected nil options, got %v", opts)
	}
}

func TestFileConfig_PartialDomain(t *testing.T) {
	// Only one bound given: the other stays at its default.
	opts, err := ParseConfig([]byte("[pubsub]\npriority_max = 500\n"))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}

	b, err := New(opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := b.Publish("tick", nil, AtPriority(400)); err != nil {
		t.Errorf("expected 400 inside widened domain, got %v", err)
	}
	if _, err := b.Publish("tick", nil, AtPriority(-1)); !errors.Is(err, ErrInvalidPriority) {
		t.Errorf("expected default lower bound to hold, got %v", err)
	}
}
