package errcat

import (
	"errors"
	"testing"
)

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(IO, "physics.New", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected Is(err, cause) to hold")
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected errors.As to extract *Error")
	}
	if e.Kind != IO {
		t.Fatalf("got kind %v, want IO", e.Kind)
	}
}

func TestCatchModeLatchesFirstError(t *testing.T) {
	SetCatchMode(true)
	defer SetCatchMode(false)

	first := New(Configuration, "transport.NewContext", "missing prng")
	second := New(Format, "physics.New", "bad mdf")

	Raise(first)
	Raise(second)

	if Caught() != first {
		t.Fatalf("expected first raised error to be latched")
	}
	ResetCaught()
	if Caught() != nil {
		t.Fatalf("expected ResetCaught to clear the latch")
	}
}

func TestRaiseNilIsNoop(t *testing.T) {
	if Raise(nil) != nil {
		t.Fatalf("Raise(nil) must return nil")
	}
}

func TestHandlerInvokedWithoutCatchMode(t *testing.T) {
	var got *Error
	SetHandler(func(err *Error) { got = err })
	defer SetHandler(nil)

	e := New(Physics, "transport.Step", "rotation exceeds 2pi")
	Raise(e)
	if got != e {
		t.Fatalf("expected installed handler to observe the raised error")
	}
}
