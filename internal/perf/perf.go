// Package perf times named pipeline stages and reports them through zap.
package perf

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// smoothing is the weight of a new sample in a section's moving average.
const smoothing = 0.1

// Section is the accumulated timing of one named stage.
type Section struct {
	Name      string
	Last      time.Duration
	Average   time.Duration
	Triangles int
	Samples   int
}

// Instrumenter records sections in start order. Only one section is open
// at a time; starting a new one ends the current one.
type Instrumenter struct {
	log *zap.Logger
	now func() time.Time

	sections []*Section
	byName   map[string]*Section

	open  *Section
	start time.Time
}

// New creates an instrumenter that reports to log.
func New(log *zap.Logger) *Instrumenter {
	return &Instrumenter{
		log:    log,
		now:    time.Now,
		byName: make(map[string]*Section),
	}
}

// Start opens a named section.
func (in *Instrumenter) Start(name string) {
	if in.open != nil {
		in.End()
	}

	s, ok := in.byName[name]
	if !ok {
		s = &Section{Name: name}
		in.byName[name] = s
		in.sections = append(in.sections, s)
	}
	in.open = s
	in.start = in.now()
}

// End closes the open section. It panics if no section is open.
func (in *Instrumenter) End() {
	in.EndWithTriangles(0)
}

// EndWithTriangles closes the open section and records how many triangles it produced.
func (in *Instrumenter) EndWithTriangles(triangles int) {
	if in.open == nil {
		panic("perf: End without matching Start")
	}

	s := in.open
	elapsed := in.now().Sub(in.start)
	s.Last = elapsed
	s.Triangles = triangles
	if s.Samples == 0 {
		s.Average = elapsed
	} else {
		s.Average += time.Duration(float64(elapsed-s.Average) * smoothing)
	}
	s.Samples++

	in.log.Debug("section done",
		zap.String("section", s.Name),
		zap.Duration("elapsed", elapsed),
		zap.Int("triangles", triangles),
	)
	in.open = nil
}

// Sections returns the sections in the order they were first started.
func (in *Instrumenter) Sections() []Section {
	out := make([]Section, len(in.sections))
	for i, s := range in.sections {
		out[i] = *s
	}
	return out
}

// Report closes any open section and logs one line with every section and the total.
func (in *Instrumenter) Report() string {
	if in.open != nil {
		in.End()
	}

	var sb strings.Builder
	var total time.Duration
	triangles := 0
	for _, s := range in.sections {
		fmt.Fprintf(&sb, "[%s: %dtris %.3fms] ", s.Name, s.Triangles, ms(s.Last))
		total += s.Last
		triangles += s.Triangles
	}
	fmt.Fprintf(&sb, "[[total: %dtris %.3fms]]", triangles, ms(total))

	line := sb.String()
	in.log.Info("timings", zap.String("report", line))
	return line
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
