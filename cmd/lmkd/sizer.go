package main

import (
	"sync"

	"github.com/jmylchreest/lmk/internal/display"
	"github.com/jmylchreest/lmk/internal/layout"
)

// engineSizer sizes new store entries with the current wrap options. The
// engine is swapped when a reloaded config changes them.
type engineSizer struct {
	mu      sync.RWMutex
	metrics metricsSource
	engine  *layout.Engine
}

// metricsSource is the part of the renderer the sizer needs.
type metricsSource interface {
	Metrics(font display.Font) layout.Metrics
}

func newEngineSizer(m metricsSource, opts layout.WrapOptions) *engineSizer {
	s := &engineSizer{metrics: m}
	s.SetWrap(opts)
	return s
}

// SetWrap rebuilds the engine for opts.
func (s *engineSizer) SetWrap(opts layout.WrapOptions) {
	engine := layout.NewEngine(s.metrics.Metrics(display.FontTitle), s.metrics.Metrics(display.FontBody), opts)
	s.mu.Lock()
	s.engine = engine
	s.mu.Unlock()
}

// ComputeBox implements store.Sizer.
func (s *engineSizer) ComputeBox(title, body string, widthEnvelope int) layout.Box {
	s.mu.RLock()
	engine := s.engine
	s.mu.RUnlock()
	return engine.ComputeBox(title, body, widthEnvelope)
}
