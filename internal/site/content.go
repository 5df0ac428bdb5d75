// Package site holds the landing page content, the scroll-to-section mapping
// used by the navigation bar, and the HTTP server that renders them.
package site

// Section is a landing page section the navigation bar can highlight
type Section struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Dark bool   `json:"dark"`
}

// Sections lists the landing page sections in page order
var Sections = []Section{
	{ID: "hero", Name: "Home", Dark: true},
	{ID: "features", Name: "Features", Dark: false},
	{ID: "demo", Name: "Demo", Dark: true},
	{ID: "testimonials", Name: "Testimony", Dark: false},
	{ID: "cta", Name: "CTA", Dark: true},
	{ID: "contact", Name: "Contact Us", Dark: false},
}

// NavItem is a navigation bar link
type NavItem struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

// Hero is the top banner
type Hero struct {
	Badge    string `json:"badge"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Action   string `json:"action"`
}

// Feature is a feature card
type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Stat is a headline number in the demo section
type Stat struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Testimonial is a user quote
type Testimonial struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
	Role   string `json:"role"`
}

// CallToAction is the closing banner
type CallToAction struct {
	Title      string   `json:"title"`
	Subtitle   string   `json:"subtitle"`
	Primary    string   `json:"primary"`
	Secondary  string   `json:"secondary"`
	Assurances []string `json:"assurances"`
}

// ContactDetails are the ways to reach the team besides the form
type ContactDetails struct {
	Emails  []string `json:"emails"`
	Phone   string   `json:"phone"`
	Address []string `json:"address"`
}

// SocialLink is a footer link
type SocialLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Page is the full landing page content
type Page struct {
	Brand         string         `json:"brand"`
	Nav           []NavItem      `json:"nav"`
	Sections      []Section      `json:"sections"`
	Hero          Hero           `json:"hero"`
	FeaturesIntro string         `json:"features_intro"`
	Features      []Feature      `json:"features"`
	DemoIntro     string         `json:"demo_intro"`
	DemoExample   string         `json:"demo_example"`
	Stats         []Stat         `json:"stats"`
	Testimonials  []Testimonial  `json:"testimonials"`
	CTA           CallToAction   `json:"cta"`
	Contact       ContactDetails `json:"contact"`
	Socials       []SocialLink   `json:"socials"`
	Copyright     string         `json:"copyright"`
}

// Landing returns the landing page content
func Landing() *Page {
	return &Page{
		Brand: "Sparrow AI",
		Nav: []NavItem{
			{Name: "Home", Target: "hero"},
			{Name: "Features", Target: "features"},
			{Name: "Demo", Target: "demo"},
			{Name: "Testimony", Target: "testimonials"},
			{Name: "Contact Us", Target: "contact"},
		},
		Sections: Sections,
		Hero: Hero{
			Badge:    "AI-Powered One-Page Summaries",
			Title:    "Turn any PDF into a one-page summary",
			Subtitle: "Drowning in lecture slides? Upload any PDF and get a concise summary, perfect for last-minute studying or research.",
			Action:   "Start Summarizing",
		},
		FeaturesIntro: "Transform documents into active learning with powerful AI tools.",
		Features: []Feature{
			{Title: "Seamless Upload", Description: "Drag-and-drop any PDF: lecture slides, research papers, or textbooks."},
			{Title: "Precision Analysis", Description: "AI identifies key concepts with 94% accuracy."},
			{Title: "Instant Summary", Description: "Structured summaries with highlighted essentials."},
			{Title: "Interactive Q&A", Description: "Ask questions or get suggested questions about the content."},
		},
		DemoIntro:   "See how we transform dense academic content into digestible knowledge.",
		DemoExample: "Example: 50-page Biology Lecture PDF",
		Stats: []Stat{
			{Value: "94%", Label: "Accuracy Rate"},
			{Value: "5.2s", Label: "Avg. Processing"},
			{Value: "10×", Label: "Content Reduction"},
			{Value: "24/7", Label: "Availability"},
		},
		Testimonials: []Testimonial{
			{
				Quote:  "This tool saved me 10+ hours weekly on medical school notes. The summaries are incredibly accurate.",
				Author: "Sarah K.",
				Role:   "3rd Year Med Student",
			},
			{
				Quote:  "Finally an AI that understands academic papers. It extracts exactly what I need for my research.",
				Author: "David T.",
				Role:   "PhD Researcher",
			},
			{
				Quote:  "I went from struggling with textbook chapters to acing exams thanks to these concise summaries.",
				Author: "Jamal R.",
				Role:   "Engineering Student",
			},
			{
				Quote:  "As a professor, I recommend this to all my students. The quality of analysis is remarkable.",
				Author: "Dr. Lisa M.",
				Role:   "University Professor",
			},
		},
		CTA: CallToAction{
			Title:      "Ready to Transform Your Study Workflow?",
			Subtitle:   "Join thousands of students and researchers saving hours every week with our AI-powered PDF summarizer.",
			Primary:    "Get Started Free",
			Secondary:  "See Pricing",
			Assurances: []string{"No credit card required", "7-day free trial", "Cancel anytime"},
		},
		Contact: ContactDetails{
			Emails:  []string{"support@sparrow.com", "sales@sparrow.com"},
			Phone:   "+234 906 425 2791",
			Address: []string{"123 Tech Street", "Boston, MA 02110"},
		},
		Socials: []SocialLink{
			{Name: "X (Twitter)", URL: "https://x.com/kamaltp__"},
			{Name: "LinkedIn", URL: "https://www.linkedin.com/in/kamaldeen-mohammed-123b89235"},
			{Name: "GitHub", URL: "https://github.com/ethiago007"},
			{Name: "Instagram", URL: "https://www.instagram.com/kzmzltp"},
		},
		Copyright: "Sparrow AI. All rights reserved.",
	}
}
