// Package thumbnail generates named thumbnail sizes for source images
package thumbnail

import (
	"fmt"
	"strconv"
	"strings"
)

// Size is a named thumbnail size. Crop sizes are produced at exactly
// Width x Height around the focal point; other sizes are fitted inside the
// box, where a zero side is unbounded.
type Size struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Crop   bool   `json:"crop"`
}

func (s Size) String() string {
	spec := fmt.Sprintf("%s=%dx%d", s.Name, s.Width, s.Height)
	if s.Crop {
		spec += ":crop"
	}
	return spec
}

// Validate checks the size bounds
func (s Size) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("size name cannot be empty")
	}
	if s.Width < 0 || s.Height < 0 || (s.Width == 0 && s.Height == 0) {
		return fmt.Errorf("size %q needs a positive width or height", s.Name)
	}
	if s.Crop && (s.Width == 0 || s.Height == 0) {
		return fmt.Errorf("size %q is cropped and needs both width and height", s.Name)
	}
	return nil
}

// DefaultSizes returns the standard set of sizes
func DefaultSizes() []Size {
	return []Size{
		{Name: "thumbnail", Width: 150, Height: 150, Crop: true},
		{Name: "medium", Width: 300, Height: 300},
		{Name: "medium_large", Width: 768},
		{Name: "large", Width: 1024, Height: 1024},
	}
}

// ParseSizes parses a comma separated list of name=WxH[:crop] entries,
// for example "thumbnail=150x150:crop,medium=300x300". The name may be
// omitted, in which case WxH is used.
func ParseSizes(spec string) ([]Size, error) {
	var sizes []Size
	seen := map[string]bool{}

	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		var s Size
		dims := entry
		if name, rest, ok := strings.Cut(entry, "="); ok {
			s.Name = strings.TrimSpace(name)
			dims = rest
		}
		if d, flag, ok := strings.Cut(dims, ":"); ok {
			if !strings.EqualFold(strings.TrimSpace(flag), "crop") {
				return nil, fmt.Errorf("size %q: unknown flag %q", entry, flag)
			}
			s.Crop = true
			dims = d
		}

		w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(dims)), "x")
		if !ok {
			return nil, fmt.Errorf("size %q: expected WxH", entry)
		}
		var err error
		if s.Width, err = parseSide(w); err != nil {
			return nil, fmt.Errorf("size %q: width: %w", entry, err)
		}
		if s.Height, err = parseSide(h); err != nil {
			return nil, fmt.Errorf("size %q: height: %w", entry, err)
		}

		if s.Name == "" {
			s.Name = fmt.Sprintf("%dx%d", s.Width, s.Height)
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("size %q is listed twice", s.Name)
		}
		seen[s.Name] = true
		sizes = append(sizes, s)
	}

	if len(sizes) == 0 {
		return nil, fmt.Errorf("no sizes in %q", spec)
	}
	return sizes, nil
}

// parseSide accepts a non-negative integer, with an empty side meaning 0
func parseSide(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d", n)
	}
	return n, nil
}
