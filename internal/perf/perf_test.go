package perf

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

// fakeClock advances by step on every reading.
func fakeClock(step time.Duration) func() time.Time {
	t := time.Unix(0, 0)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func TestSections(t *testing.T) {
	in := New(zap.NewNop())
	in.now = fakeClock(time.Millisecond)

	in.Start("load")
	in.Start("build") // implicitly ends load
	in.EndWithTriangles(12)

	sections := in.Sections()
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[0].Name != "load" || sections[1].Name != "build" {
		t.Errorf("unexpected order: %s, %s", sections[0].Name, sections[1].Name)
	}
	if sections[0].Last != time.Millisecond {
		t.Errorf("expected load to take 1ms, got %v", sections[0].Last)
	}
	if sections[1].Triangles != 12 {
		t.Errorf("expected 12 triangles, got %d", sections[1].Triangles)
	}
}

func TestMovingAverage(t *testing.T) {
	in := New(zap.NewNop())

	step := 10 * time.Millisecond
	in.now = fakeClock(step)
	in.Start("build")
	in.End()

	// second sample of 20ms moves the average 10% of the way
	in.now = fakeClock(2 * step)
	in.Start("build")
	in.End()

	s := in.Sections()[0]
	if s.Samples != 2 {
		t.Fatalf("expected 2 samples, got %d", s.Samples)
	}
	if want := 11 * time.Millisecond; s.Average != want {
		t.Errorf("expected average %v, got %v", want, s.Average)
	}
	if s.Last != 2*step {
		t.Errorf("expected last %v, got %v", 2*step, s.Last)
	}
}

func TestReport(t *testing.T) {
	in := New(zap.NewNop())
	in.now = fakeClock(time.Millisecond)

	in.Start("build")
	in.EndWithTriangles(5)
	in.Start("write") // left open, Report closes it

	got := in.Report()
	want := "[build: 5tris 1.000ms] [write: 0tris 1.000ms] [[total: 5tris 2.000ms]]"
	if got != want {
		t.Errorf("unexpected report:\n got %q\nwant %q", got, want)
	}
}

func TestEndWithoutStart(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	New(zap.NewNop()).End()
}
