package framegraph

import "testing"

func TestNewGraphDefaults(t *testing.T) {
	g := NewGraph(GraphConfig{})
	if g.Registry() == nil {
		t.Fatal("graph should own a registry")
	}
	if !g.ValidationEnabled() {
		t.Error("validation should be on by default")
	}

	g2 := NewGraph(GraphConfig{SkipValidation: true})
	if g2.ValidationEnabled() {
		t.Error("SkipValidation should disable validation")
	}
}

func TestGraphNewFrameResets(t *testing.T) {
	g := NewGraph(GraphConfig{})
	g.NewFrame(0)
	b := g.AddPass("p0")
	b.Dispose()
	if len(g.Passes()) != 1 {
		t.Fatal("expected one pass")
	}

	g.NewFrame(1)
	if len(g.Passes()) != 0 {
		t.Error("NewFrame should reset the pass list")
	}
	if g.FrameIndex() != 1 {
		t.Errorf("expected frame 1, got %d", g.FrameIndex())
	}
	if g.Registry().FrameIndex() != 1 {
		t.Error("registry frame index should follow the graph")
	}
}

func TestGraphAddPassOutsideFrame(t *testing.T) {
	g := NewGraph(GraphConfig{})
	expectPanic(t, ErrNotRecording, func() {
		g.AddPass("too early")
	})
}

func TestGraphAddPassWhileBuilding(t *testing.T) {
	g := NewGraph(GraphConfig{})
	g.NewFrame(0)
	b := g.AddPass("open")
	defer b.Dispose()
	expectPanic(t, ErrNotRecording, func() {
		g.AddPass("overlapping")
	})
}

func TestGraphPassIndices(t *testing.T) {
	g := NewGraph(GraphConfig{})
	g.NewFrame(0)
	for i := 0; i < 3; i++ {
		b := g.AddPass("p")
		b.Dispose()
	}
	for i, p := range g.Passes() {
		if p.Index() != i {
			t.Errorf("pass %d has index %d", i, p.Index())
		}
	}
}

func TestGraphFallbackRegistrationCleared(t *testing.T) {
	g := NewGraph(GraphConfig{})
	g.NewFrame(0)
	desc := testTextureDesc("black")
	desc.Clear = true
	desc.ClearColor = ColorBlack
	fb := g.Registry().CreateTexture(desc)
	g.RegisterFallbackTexture(fb)

	if _, ok := g.fallbackFor(desc); !ok {
		t.Fatal("fallback should be registered")
	}

	g.NewFrame(1)
	if _, ok := g.fallbackFor(desc); ok {
		t.Error("fallback registrations must not survive NewFrame")
	}
}

func TestGraphRegisterFallbackInvalid(t *testing.T) {
	g := NewGraph(GraphConfig{})
	g.NewFrame(0)
	stale := g.Registry().CreateTexture(testTextureDesc("old"))
	g.NewFrame(1)

	expectPanic(t, ErrInvalidHandle, func() {
		g.RegisterFallbackTexture(stale)
	})

	// An imported texture without a descriptor cannot key the lookup.
	imported := g.Registry().ImportTexture(&nullResource{})
	expectPanic(t, ErrInvalidHandle, func() {
		g.RegisterFallbackTexture(imported)
	})
}

func TestGraphNewRendererList(t *testing.T) {
	g := NewGraph(GraphConfig{})
	a := g.NewRendererList()
	b := g.NewRendererList()
	if a.IsNull() || b.IsNull() {
		t.Error("minted lists should not be null")
	}
	if a.ID() == b.ID() {
		t.Error("minted lists should be distinct")
	}
}
