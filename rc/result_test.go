package rc

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/ngfx/errors"
)

func TestResultPtr_StatusOnly(t *testing.T) {
	r := NewResult[*testObject](ResultOutOfMemory)
	if r.OK() {
		t.Fatal("OutOfMemory should not be OK")
	}
	if r.Valid() {
		t.Fatal("status-only ResultPtr should be null")
	}

	var def ResultPtr[*testObject, Result]
	if !def.OK() || def.Result != ResultOK {
		t.Fatal("zero ResultPtr should carry success")
	}
}

func TestResultPtr_Adopt(t *testing.T) {
	o := newTestObject()
	r := AdoptResult(o, ResultOK)
	if !r.OK() || !r.Valid() {
		t.Fatal("expected valid success result")
	}
	if externalCount(o) != 1 {
		t.Fatalf("AdoptResult must not retain, external = %d", externalCount(o))
	}

	c := r.Clone()
	if externalCount(o) != 2 {
		t.Fatalf("external = %d, want 2", externalCount(o))
	}
	c.Reset()
	r.Reset()
	if o.destroys.Load() != 1 {
		t.Fatalf("destroyed %d times, want 1", o.destroys.Load())
	}
}

func TestResultPtr_IndependentStatus(t *testing.T) {
	// a producer may report failure and still hand back an object
	o := newTestObject()
	r := AdoptResult(o, ResultNotReady)
	if r.OK() {
		t.Fatal("status should not be corrected")
	}
	if !r.Valid() {
		t.Fatal("pointer should not be cleared")
	}
	r.Reset()
	if o.destroys.Load() != 1 {
		t.Fatalf("destroyed %d times, want 1", o.destroys.Load())
	}
}

func TestResultPtr_Take(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		o := newTestObject()
		r := AdoptResult(o, ResultOK)
		p, err := r.Take()
		if err != nil {
			t.Fatalf("Take failed: %v", err)
		}
		if r.Valid() {
			t.Fatal("Take should move the pointer out")
		}
		if p.Raw() != o || externalCount(o) != 1 {
			t.Fatal("Take must transfer the reference without retaining")
		}
		p.Reset()
		if o.destroys.Load() != 1 {
			t.Fatalf("destroyed %d times, want 1", o.destroys.Load())
		}
	})

	t.Run("failure status", func(t *testing.T) {
		o := newTestObject()
		r := AdoptResult(o, ResultDeviceLost)
		_, err := r.Take()
		if !stderrors.Is(err, errors.ErrResult) {
			t.Fatalf("err = %v, want result error", err)
		}
		var e *errors.Error
		if !stderrors.As(err, &e) || e.Value != ResultDeviceLost {
			t.Fatalf("error should carry the status, got %v", err)
		}
		if !r.Valid() {
			t.Fatal("failed Take must leave the pointer in place")
		}
		r.Reset()
	})

	t.Run("success without object", func(t *testing.T) {
		r := NewResult[*testObject](ResultOK)
		_, err := r.Take()
		if !stderrors.Is(err, errors.ErrNilPointer) {
			t.Fatalf("err = %v, want nil_pointer", err)
		}
	})

	t.Run("custom status type", func(t *testing.T) {
		type status string
		r := NewResult[*testObject](status("timeout"))
		if r.OK() {
			t.Fatal("non-empty status should not be OK")
		}
		if _, err := r.Take(); !stderrors.Is(err, errors.ErrResult) {
			t.Fatalf("err = %v, want result error", err)
		}
	})
}

func TestResult_String(t *testing.T) {
	tests := map[Result]string{
		ResultOK:              "ok",
		ResultFailed:          "failed",
		ResultOutOfMemory:     "out of memory",
		ResultInvalidArgument: "invalid argument",
		ResultNotReady:        "not ready",
		ResultDeviceLost:      "device lost",
		Result(42):            "Result(42)",
	}
	for r, want := range tests {
		if got := r.String(); got != want {
			t.Errorf("Result(%d).String() = %q, want %q", int32(r), got, want)
		}
	}
}
