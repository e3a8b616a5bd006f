package pages

// Storage keys of the singleton content records.
const (
	KeyHome            = "homePageContent"
	KeyAbout           = "aboutPageContent"
	KeyApps            = "appsPageContent"
	KeyServices        = "servicesPageContent"
	KeyCaseStudies     = "caseStudiesPageContent"
	KeyApplication     = "applicationPageContent"
	KeyInvestment      = "investmentPageContent"
	KeyLegal           = "legalPageContent"
	KeyContactSettings = "contactSettings"
	KeyPricingPlans    = "pricingPlans"
	KeySiteSettings    = "siteSettings"
)

type Highlight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// HomePage is the landing page content.
type HomePage struct {
	HeroTitle    string      `json:"heroTitle"`
	HeroSubtitle string      `json:"heroSubtitle"`
	CTAText      string      `json:"ctaText"`
	CTALink      string      `json:"ctaLink"`
	Highlights   []Highlight `json:"highlights"`
	Stats        []Stat      `json:"stats"`
}

type TeamMember struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Bio   string `json:"bio"`
	Photo string `json:"photo"`
}

// AboutPage is the agency story page.
type AboutPage struct {
	Title   string       `json:"title"`
	Intro   string       `json:"intro"`
	Mission string       `json:"mission"`
	Vision  string       `json:"vision"`
	Values  []string     `json:"values"`
	Team    []TeamMember `json:"team"`
}

// AppsPage frames the apps directory.
type AppsPage struct {
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle"`
	EmptyText string `json:"emptyText"`
}

// ServicesPage frames the services list.
type ServicesPage struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	CTAText  string `json:"ctaText"`
	CTALink  string `json:"ctaLink"`
}

// CaseStudiesPage frames the case study list.
type CaseStudiesPage struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// ApplicationPage introduces the job application form.
type ApplicationPage struct {
	Title          string   `json:"title"`
	Intro          string   `json:"intro"`
	OpenPositions  []string `json:"openPositions"`
	SuccessMessage string   `json:"successMessage"`
}

// InvestmentPage introduces the investor inquiry form.
type InvestmentPage struct {
	Title                  string `json:"title"`
	Intro                  string `json:"intro"`
	MinimumInvestmentCents int64  `json:"minimumInvestmentCents"`
	SuccessMessage         string `json:"successMessage"`
}

// LegalPage holds the policy texts.
type LegalPage struct {
	PrivacyPolicy string `json:"privacyPolicy"`
	Terms         string `json:"terms"`
	CookiePolicy  string `json:"cookiePolicy"`
	LastUpdated   string `json:"lastUpdated"`
}

type SocialLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ContactSettings is shown on the contact page and footer.
type ContactSettings struct {
	Email   string       `json:"email"`
	Phone   string       `json:"phone"`
	Address string       `json:"address"`
	Hours   string       `json:"hours"`
	Socials []SocialLink `json:"socials"`
}

// Plan is one subscription tier. Higher Rank is a higher tier.
type Plan struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	MonthlyPriceCents int64    `json:"monthlyPriceCents"`
	Features          []string `json:"features"`
	Rank              int      `json:"rank"`
	Highlighted       bool     `json:"highlighted"`
}

// PricingPlans lists the subscription tiers.
type PricingPlans struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Plans    []Plan `json:"plans"`
}

// Lowest returns the plan with the lowest rank.
func (p PricingPlans) Lowest() (Plan, bool) {
	var lowest Plan
	found := false
	for _, plan := range p.Plans {
		if !found || plan.Rank < lowest.Rank {
			lowest, found = plan, true
		}
	}
	return lowest, found
}

// Find returns the plan with id.
func (p PricingPlans) Find(id string) (Plan, bool) {
	for _, plan := range p.Plans {
		if plan.ID == id {
			return plan, true
		}
	}
	return Plan{}, false
}

// SiteSettings are the global site options.
type SiteSettings struct {
	SiteName        string `json:"siteName"`
	Tagline         string `json:"tagline"`
	LogoURL         string `json:"logoUrl"`
	FooterText      string `json:"footerText"`
	MaintenanceMode bool   `json:"maintenanceMode"`
}
