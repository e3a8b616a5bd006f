package pages

// DefaultHome returns the seeded home page.
func DefaultHome() HomePage {
	return HomePage{
		HeroTitle:    "We design and build digital products that grow your business",
		HeroSubtitle: "Strategy, design and engineering under one roof, from first sketch to launch and beyond.",
		CTAText:      "Start a project",
		CTALink:      "/contact",
		Highlights: []Highlight{
			{Title: "Product strategy", Description: "Workshops and research that turn ideas into roadmaps."},
			{Title: "Design systems", Description: "Interfaces that stay consistent as your product grows."},
			{Title: "Engineering", Description: "Reliable web and mobile apps built to last."},
		},
		Stats: []Stat{
			{Label: "Projects delivered", Value: "120+"},
			{Label: "Years in business", Value: "10"},
			{Label: "Client satisfaction", Value: "98%"},
		},
	}
}

// DefaultAbout returns the seeded about page.
func DefaultAbout() AboutPage {
	return AboutPage{
		Title:   "About us",
		Intro:   "We are a small, senior team of designers and engineers.",
		Mission: "Help ambitious teams ship products people love.",
		Vision:  "A web where every product is fast, accessible and useful.",
		Values:  []string{"Craft", "Candor", "Curiosity"},
		Team: []TeamMember{
			{Name: "Alex Morgan", Role: "Founder & CEO"},
			{Name: "Sam Rivera", Role: "Head of Design"},
			{Name: "Jordan Lee", Role: "Head of Engineering"},
		},
	}
}

// DefaultApps returns the seeded apps page.
func DefaultApps() AppsPage {
	return AppsPage{
		Title:     "Our apps",
		Subtitle:  "Products we built and run ourselves.",
		EmptyText: "No apps published yet.",
	}
}

// DefaultServices returns the seeded services page.
func DefaultServices() ServicesPage {
	return ServicesPage{
		Title:    "Services",
		Subtitle: "Everything you need to take a product from idea to market.",
		CTAText:  "Talk to us",
		CTALink:  "/contact",
	}
}

// DefaultCaseStudies returns the seeded case studies page.
func DefaultCaseStudies() CaseStudiesPage {
	return CaseStudiesPage{
		Title:    "Case studies",
		Subtitle: "A selection of work we are proud of.",
	}
}

// DefaultApplication returns the seeded application page.
func DefaultApplication() ApplicationPage {
	return ApplicationPage{
		Title:          "Join the team",
		Intro:          "We are always looking for curious people.",
		OpenPositions:  []string{"Product Designer", "Frontend Engineer", "Backend Engineer"},
		SuccessMessage: "Thanks for applying! We will be in touch soon.",
	}
}

// DefaultInvestment returns the seeded investment page.
func DefaultInvestment() InvestmentPage {
	return InvestmentPage{
		Title:                  "Invest with us",
		Intro:                  "We partner with investors who share our long-term view.",
		MinimumInvestmentCents: 2500000,
		SuccessMessage:         "Thanks for your interest! Our team will reach out shortly.",
	}
}

// DefaultLegal returns the seeded legal page.
func DefaultLegal() LegalPage {
	return LegalPage{
		PrivacyPolicy: "We only collect the data needed to provide our services and never sell it.",
		Terms:         "By using this site you agree to use it lawfully and respectfully.",
		CookiePolicy:  "We use essential cookies for sign-in and language preferences.",
		LastUpdated:   "2026-01-01",
	}
}

// DefaultContactSettings returns the seeded contact settings.
func DefaultContactSettings() ContactSettings {
	return ContactSettings{
		Email:   "hello@agency.test",
		Phone:   "+1 555 0100",
		Address: "100 Market Street, Springfield",
		Hours:   "Mon-Fri 9:00-18:00",
		Socials: []SocialLink{
			{Name: "LinkedIn", URL: "https://www.linkedin.com/"},
			{Name: "GitHub", URL: "https://github.com/"},
		},
	}
}

// DefaultPricingPlans returns the seeded subscription tiers.
func DefaultPricingPlans() PricingPlans {
	return PricingPlans{
		Title:    "Pricing",
		Subtitle: "Simple plans that grow with you.",
		Plans: []Plan{
			{ID: "free", Name: "Free", Description: "For trying things out.", MonthlyPriceCents: 0, Features: []string{"Community support", "1 project"}, Rank: 0},
			{ID: "pro", Name: "Pro", Description: "For growing teams.", MonthlyPriceCents: 2900, Features: []string{"Priority chat support", "10 projects"}, Rank: 1, Highlighted: true},
			{ID: "enterprise", Name: "Enterprise", Description: "For organizations at scale.", MonthlyPriceCents: 9900, Features: []string{"Dedicated manager", "Unlimited projects"}, Rank: 2},
		},
	}
}

// DefaultSiteSettings returns the seeded site settings.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		SiteName:   "Agency",
		Tagline:    "Digital products, done right.",
		FooterText: "All rights reserved.",
	}
}
