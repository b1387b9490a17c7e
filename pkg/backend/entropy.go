package backend

import "math"

// Histogram counts how many pixels fall into each 8-bit grey level
type Histogram [256]int

// Add counts one pixel at the given level
func (h *Histogram) Add(level uint8) {
	h[level]++
}

// Total returns the number of counted pixels
func (h *Histogram) Total() int {
	n := 0
	for _, c := range h {
		n += c
	}
	return n
}

// Entropy returns -sum(p*ln(p)) over the non-empty bins, with p = count/total.
// Empty bins are skipped rather than smoothed, and an empty histogram has zero entropy.
func (h *Histogram) Entropy() float64 {
	total := h.Total()
	if total == 0 {
		return 0
	}

	entropy := 0.0
	for _, c := range h {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		entropy -= p * math.Log(p)
	}
	return entropy
}
