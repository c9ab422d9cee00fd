package framegraph

import (
	"errors"
	"strings"
	"testing"
)

func TestNullHandle(t *testing.T) {
	var h Handle
	if !h.IsNull() {
		t.Error("zero value should be the null handle")
	}
	if !Null.IsNull() {
		t.Error("Null should be null")
	}
	if h.Index() != 0 {
		t.Errorf("expected index 0, got %d", h.Index())
	}
	if !h.Equal(Null) {
		t.Error("zero value should equal Null")
	}
}

func TestHandleFields(t *testing.T) {
	h := newHandle(42, KindBuffer, 0xABCD, 3)
	if h.Index() != 42 {
		t.Errorf("expected index 42, got %d", h.Index())
	}
	if h.Kind() != KindBuffer {
		t.Errorf("expected KindBuffer, got %v", h.Kind())
	}
	if h.ValidityTag() != 0xABCD {
		t.Errorf("expected tag 0xABCD, got 0x%04x", h.ValidityTag())
	}
	if h.Version() != 3 {
		t.Errorf("expected version 3, got %d", h.Version())
	}
	if h.IsNull() {
		t.Error("non-zero handle should not be null")
	}
}

func TestHandleEqualIgnoresTag(t *testing.T) {
	a := newHandle(7, KindTexture, 0x1111, 2)
	b := newHandle(7, KindTexture, 0x2222, 2)
	if !a.Equal(b) {
		t.Error("handles differing only in validity tag should be equal")
	}

	c := newHandle(7, KindTexture, 0x1111, 3)
	if a.Equal(c) {
		t.Error("handles with different versions should not be equal")
	}

	d := newHandle(7, KindBuffer, 0x1111, 2)
	if a.Equal(d) {
		t.Error("handles with different kinds should not be equal")
	}

	e := newHandle(8, KindTexture, 0x1111, 2)
	if a.Equal(e) {
		t.Error("handles with different indices should not be equal")
	}
}

func TestHandleWithVersion(t *testing.T) {
	h := newHandle(5, KindTexture, 0x0042, 0)
	v := h.WithVersion(9)
	if v.Version() != 9 {
		t.Errorf("expected version 9, got %d", v.Version())
	}
	if v.Index() != 5 || v.Kind() != KindTexture || v.ValidityTag() != 0x0042 {
		t.Error("WithVersion should preserve index, kind, and tag")
	}
	if h.Version() != 0 {
		t.Error("WithVersion should not mutate the receiver")
	}
}

func TestHandleValid(t *testing.T) {
	ctx := NewExecutionContext()
	h := newHandle(1, KindTexture, ctx.Current(), 0)
	if !h.Valid(ctx) {
		t.Error("handle with current tag should be valid")
	}

	shared := newHandle(2, KindTexture, SharedValidityTag, 0)
	if !shared.Valid(ctx) {
		t.Error("shared handle should always be valid")
	}

	ctx.AdvanceEpoch(1)
	if h.Valid(ctx) {
		t.Error("handle should be invalid after epoch advance")
	}
	if !shared.Valid(ctx) {
		t.Error("shared handle should survive epoch advance")
	}

	var null Handle
	if null.Valid(ctx) {
		t.Error("null handle should never be valid")
	}
}

func TestHandleIndexOverflow(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for index above MaxResourceIndex")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrIndexOverflow) {
			t.Errorf("expected ErrIndexOverflow, got %v", r)
		}
	}()
	newHandle(MaxResourceIndex+1, KindTexture, 1, 0)
}

func TestCorruptNullHandlePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for index-zero handle with nonzero fields")
		}
	}()
	h := Handle{kind: KindBuffer}
	h.IsNull()
}

func TestHandleString(t *testing.T) {
	var null Handle
	if null.String() != "Handle[null]" {
		t.Errorf("unexpected null string: %s", null.String())
	}

	h := newHandle(3, KindTexture, 0x00FF, 1)
	s := h.String()
	if !strings.Contains(s, "texture") || !strings.Contains(s, "#3") {
		t.Errorf("unexpected handle string: %s", s)
	}
}

func TestResourceKindString(t *testing.T) {
	cases := []struct {
		kind ResourceKind
		want string
	}{
		{KindTexture, "texture"},
		{KindBuffer, "buffer"},
		{KindAccelerationStructure, "acceleration-structure"},
		{ResourceKind(99), "unknown(99)"},
	}
	for _, c := range cases {
		if got := c.kind.String(); got != c.want {
			t.Errorf("expected %q, got %q", c.want, got)
		}
	}
}
