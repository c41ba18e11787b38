package envutil

import (
	"testing"
	"time"
)

func TestDefaultsWhenUnsetOrInvalid(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_INT", "abc")
	if got := Int("ENVUTIL_TEST_INT", 7); got != 7 {
		t.Fatalf("Int: got %d want 7", got)
	}
	if got := String("ENVUTIL_TEST_MISSING", "x"); got != "x" {
		t.Fatalf("String: got %q", got)
	}
	if got := Bool("ENVUTIL_TEST_MISSING", true); !got {
		t.Fatalf("Bool: expected default true")
	}
}

func TestParsesValues(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_DUR", "45")
	t.Setenv("ENVUTIL_TEST_DUR2", "2m")
	t.Setenv("ENVUTIL_TEST_BOOL", "off")
	t.Setenv("ENVUTIL_TEST_FLOAT", "0.6")
	if got := Duration("ENVUTIL_TEST_DUR", 0); got != 45*time.Second {
		t.Fatalf("Duration seconds: got %s", got)
	}
	if got := Duration("ENVUTIL_TEST_DUR2", 0); got != 2*time.Minute {
		t.Fatalf("Duration string: got %s", got)
	}
	if Bool("ENVUTIL_TEST_BOOL", true) {
		t.Fatalf("Bool: expected false")
	}
	if got := Float("ENVUTIL_TEST_FLOAT", 0); got != 0.6 {
		t.Fatalf("Float: got %v", got)
	}
}
