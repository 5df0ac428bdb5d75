package site

import "testing"

func TestActiveSection(t *testing.T) {
	// hero 0-800, features 800-1400, demo 1400-2000, contact 2000-2600
	sections := Stack(0, []string{"hero", "features", "demo", "contact"}, []float64{800, 600, 600, 600})

	tests := []struct {
		name     string
		scrollY  float64
		viewport float64
		want     string
	}{
		{"top of page", 0, 900, "hero"},
		{"one third down still in hero", 400, 900, "hero"},
		{"one third down crosses into features", 500, 900, "features"},
		{"one third down exactly on boundary", 1100, 900, "demo"},
		{"last section", 1900, 900, "contact"},
		{"past the end", 5000, 900, "contact"},
		{"negative overscroll", -200, 900, "hero"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ActiveSection(tt.scrollY, tt.viewport, sections); got != tt.want {
				t.Errorf("ActiveSection(%v, %v) = %q, want %q", tt.scrollY, tt.viewport, got, tt.want)
			}
		})
	}
}

func TestActiveSectionBeforeFirst(t *testing.T) {
	sections := Stack(300, []string{"hero", "features"}, []float64{500, 500})

	if got := ActiveSection(0, 300, sections); got != "hero" {
		t.Errorf("expected first section before the page starts, got %q", got)
	}
}

func TestActiveSectionGapFallsBackToFirst(t *testing.T) {
	sections := []SectionBounds{
		{ID: "hero", Top: 0, Height: 100},
		{ID: "features", Top: 200, Height: 100},
	}

	if got := ActiveSection(150, 0, sections); got != "hero" {
		t.Errorf("expected gap to fall back to first section, got %q", got)
	}
}

func TestActiveSectionEmpty(t *testing.T) {
	if got := ActiveSection(10, 100, nil); got != "" {
		t.Errorf("expected empty result for no sections, got %q", got)
	}
}

func TestDark(t *testing.T) {
	tests := map[string]bool{
		"hero":         true,
		"features":     false,
		"demo":         true,
		"testimonials": false,
		"cta":          true,
		"contact":      false,
		"unknown":      true,
	}

	for id, want := range tests {
		if got := Dark(id); got != want {
			t.Errorf("Dark(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestLandingNavTargetsExist(t *testing.T) {
	page := Landing()
	for _, item := range page.Nav {
		if _, ok := SectionByID(item.Target); !ok {
			t.Errorf("nav item %q targets unknown section %q", item.Name, item.Target)
		}
	}
	if len(page.Testimonials) != 4 || len(page.Features) != 4 {
		t.Errorf("unexpected landing content: %d testimonials, %d features", len(page.Testimonials), len(page.Features))
	}
}
