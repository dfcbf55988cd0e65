package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLoggerRedirects(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...any) {
		got = fmt.Sprintf(format, v...)
	})
	Logf("sampled %d atoms", 42)

	if got != "sampled 42 atoms" {
		t.Errorf("redirected logger saw %q", got)
	}
}

func TestSetLoggerNilMutes(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(string, ...any) { called = true })
	SetLogger(nil)
	Logf("should vanish")

	if called {
		t.Error("muted logger still forwarded a message")
	}
}

func TestDefaultLoggerInstalled(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf must never be nil")
	}
}
