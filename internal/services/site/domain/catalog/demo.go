package catalog

import "time"

func demoApps(now time.Time) []App {
	return []App{
		{
			Slug: "taskflow", Name: "TaskFlow", Tagline: "Projects without the chaos",
			Description: "A lightweight project tracker for small teams.",
			Category:    "Productivity", URL: "https://taskflow.example.com", Featured: true,
			CreatedAt: now, UpdatedAt: now,
		},
		{
			Slug: "fitpulse", Name: "FitPulse", Tagline: "Your pocket coach",
			Description: "Workout plans that adapt to your progress.",
			Category:    "Health", URL: "https://fitpulse.example.com",
			CreatedAt: now, UpdatedAt: now,
		},
	}
}

func demoServices() []Service {
	return []Service{
		{
			Slug: "web-development", Title: "Web development",
			Summary:        "Fast, accessible websites and web apps.",
			Features:       []string{"Server-rendered pages", "Design systems", "Performance audits"},
			PriceFromCents: 500000,
		},
		{
			Slug: "mobile-apps", Title: "Mobile apps",
			Summary:        "Native-quality apps for iOS and Android.",
			Features:       []string{"Cross-platform builds", "App store launch"},
			PriceFromCents: 800000,
		},
		{
			Slug: "product-strategy", Title: "Product strategy",
			Summary:        "Research and roadmaps that de-risk your launch.",
			Features:       []string{"Discovery workshops", "User research"},
			PriceFromCents: 250000,
		},
	}
}

func demoCaseStudies() []CaseStudy {
	return []CaseStudy{
		{
			Slug: "fintech-onboarding", Title: "Cutting onboarding time in half",
			Client: "Northwind Bank", Industry: "Finance",
			Summary:   "A redesigned signup flow for a digital bank.",
			Challenge: "Customers abandoned signup at identity verification.",
			Solution:  "We rebuilt the flow around progressive verification.",
			Results:   []string{"52% faster onboarding", "31% fewer drop-offs"},
		},
	}
}

func demoReviews(now time.Time) []Review {
	return []Review{
		{ID: "demo-review-1", Author: "Priya Shah", Company: "Northwind Bank", Rating: 5, Body: "A thoughtful team that shipped on time.", Approved: true, CreatedAt: now},
	}
}
