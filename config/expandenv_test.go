package config

import (
	"errors"
	"strings"
	"testing"
)

func TestExpandEnvStrict_MissingVarErrors(t *testing.T) {
	t.Setenv("PRESENT", "ok")

	_, err := ExpandEnvStrict("a=${PRESENT} b=${MISSING_B} c=${MISSING_A}")
	if !errors.Is(err, ErrMissingEnv) {
		t.Fatalf("expected ErrMissingEnv, got: %v", err)
	}
	if !strings.Contains(err.Error(), "MISSING_A, MISSING_B") {
		t.Fatalf("expected sorted missing names in error, got: %v", err)
	}
}

func TestExpandEnvStrict_DollarEscape(t *testing.T) {
	t.Setenv("X", "y")

	out, err := ExpandEnvStrict("$$${X}")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if out != "$y" {
		t.Fatalf("ExpandEnvStrict() = %q, want %q", out, "$y")
	}
}

func TestExpandEnv_BareVarIsLenient(t *testing.T) {
	out, err := expandEnv("a=$UNSET b", mapLookup(nil))
	if err != nil {
		t.Fatalf("expandEnv() error = %v", err)
	}
	if out != "a= b" {
		t.Fatalf("expandEnv() = %q, want %q", out, "a= b")
	}
}
