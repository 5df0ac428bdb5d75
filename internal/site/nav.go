package site

// SectionBounds is the vertical extent of a rendered section
type SectionBounds struct {
	ID     string
	Top    float64
	Height float64
}

// ActiveSection maps a scroll position to the section under the probe line
// one third down the viewport. Before the first section the first one is
// active, past the end the last one. Gaps between sections fall back to the
// first section. It returns "" when there are no sections.
func ActiveSection(scrollY, viewportHeight float64, sections []SectionBounds) string {
	if len(sections) == 0 {
		return ""
	}

	probe := scrollY + viewportHeight/3

	for _, s := range sections {
		if probe >= s.Top && probe < s.Top+s.Height {
			return s.ID
		}
	}

	last := sections[len(sections)-1]
	if probe >= last.Top+last.Height {
		return last.ID
	}
	return sections[0].ID
}

// Dark reports whether the navigation bar uses its dark theme over the section.
// Unknown sections use the hero's dark theme.
func Dark(id string) bool {
	if s, ok := SectionByID(id); ok {
		return s.Dark
	}
	return true
}

// SectionByID looks up a landing page section
func SectionByID(id string) (Section, bool) {
	for _, s := range Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Stack lays out sections of the given heights one after another from top
func Stack(top float64, ids []string, heights []float64) []SectionBounds {
	bounds := make([]SectionBounds, 0, len(ids))
	for i, id := range ids {
		h := 0.0
		if i < len(heights) {
			h = heights[i]
		}
		bounds = append(bounds, SectionBounds{ID: id, Top: top, Height: h})
		top += h
	}
	return bounds
}
