package main

import (
	"fmt"
	"github.com/aybabtme/uniplot/histogram"
	"io"
	"time"
)

const (
	statsBins  = 10
	statsWidth = 40
)

// stats collects timing samples of a transfer, in milliseconds.
type stats struct {
	name    string
	samples []float64
	last    time.Time
}

func newStats(name string) *stats {
	return &stats{name: name}
}

func (s *stats) add(d time.Duration) {
	s.samples = append(s.samples, float64(d)/float64(time.Millisecond))
}

// tick records the time since the previous tick.
func (s *stats) tick(now time.Time) {
	if !s.last.IsZero() {
		s.add(now.Sub(s.last))
	}
	s.last = now
}

func (s *stats) summary() (min, mean, max float64) {
	if len(s.samples) == 0 {
		return
	}
	min, max = s.samples[0], s.samples[0]
	sum := 0.0
	for _, v := range s.samples {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	mean = sum / float64(len(s.samples))
	return
}

func (s *stats) print(w io.Writer) error {
	if len(s.samples) == 0 {
		_, err := fmt.Fprintf(w, "%s: no samples\n", s.name)
		return err
	}

	min, mean, max := s.summary()
	if _, err := fmt.Fprintf(w, "%s: %d samples, min %.3fms, mean %.3fms, max %.3fms\n", s.name, len(s.samples), min, mean, max); err != nil {
		return err
	}

	h := histogram.Hist(statsBins, s.samples)
	return histogram.Fprintf(w, h, histogram.Linear(statsWidth), func(v float64) string {
		return fmt.Sprintf("%.3fms", v)
	})
}
