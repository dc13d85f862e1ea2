// Package leadgen produces synthetic lead tables in the upstream
// export format, including its realistic missing-data patterns. The
// output is useful for demos and for exercising the scoring pipeline
// without a real export file.
package leadgen

import (
	"fmt"
	"math/rand"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/lead-quality-cli/internal/model"
)

// Config holds the vocabulary and field presence rates for generation.
// A rate is the probability that a field carries a real value instead
// of the "N/A" sentinel.
type Config struct {
	Companies  []string `yaml:"companies" mapstructure:"companies"`
	Suffixes   []string `yaml:"suffixes" mapstructure:"suffixes"`
	Industries []string `yaml:"industries" mapstructure:"industries"`
	Streets    []string `yaml:"streets" mapstructure:"streets"`
	Cities     []string `yaml:"cities" mapstructure:"cities"`
	States     []string `yaml:"states" mapstructure:"states"`
	BBBRatings []string `yaml:"bbb_ratings" mapstructure:"bbb_ratings"`
	FirstNames []string `yaml:"first_names" mapstructure:"first_names"`
	LastNames  []string `yaml:"last_names" mapstructure:"last_names"`
	Titles     []string `yaml:"titles" mapstructure:"titles"`

	EmailRate        float64 `yaml:"email_rate" mapstructure:"email_rate"`
	PhoneRate        float64 `yaml:"phone_rate" mapstructure:"phone_rate"`
	ContactRate      float64 `yaml:"contact_rate" mapstructure:"contact_rate"`
	WebsiteRate      float64 `yaml:"website_rate" mapstructure:"website_rate"`
	ContactPhoneRate float64 `yaml:"contact_phone_rate" mapstructure:"contact_phone_rate"`
}

// DefaultConfig matches the distribution of the upstream sample export.
// The BBB list repeats "N/A" so unrated businesses stay the most common
// outcome.
func DefaultConfig() Config {
	return Config{
		Companies: []string{
			"TechFlow Solutions", "DataSync Inc", "CloudPipe Pro", "DevCore Ltd",
			"AI Metrics Co", "SaaS Builder", "Growth Labs", "Pipeline Tech",
			"CodeStream", "AutoScale", "DataBridge", "CloudForge",
		},
		Suffixes:   []string{"Inc", "LLC", "Corp", "Co"},
		Industries: []string{"Computer Software Developers", "Technology", "SaaS", "Consulting", "Marketing"},
		Streets:    []string{"Main St", "Oak Ave", "Tech Blvd", "Innovation Dr"},
		Cities:     []string{"San Francisco", "New York", "Austin", "Miami", "Seattle", "Boston", "Denver"},
		States:     []string{"CA", "NY", "TX", "FL", "WA", "NJ", "PA"},
		BBBRatings: []string{"A+", "A", "B+", "B", model.MissingSentinel, model.MissingSentinel},
		FirstNames: []string{"John", "Jane", "Mike", "Sarah", "David", "Lisa"},
		LastNames:  []string{"Smith", "Johnson", "Williams", "Brown", "Davis"},
		Titles: []string{
			"CEO", "CTO", "VP Sales", "Marketing Director", "Founder",
			"President", "Manager", model.MissingSentinel,
		},
		EmailRate:        0.7,
		PhoneRate:        0.6,
		ContactRate:      0.8,
		WebsiteRate:      0.85,
		ContactPhoneRate: 0.5,
	}
}

// Generator builds synthetic leads from a vocabulary.
type Generator struct {
	cfg   Config
	caser cases.Caser
}

// New creates a Generator. Company vocabulary entries are normalized to
// title case so lowercase entries in a custom config still render like
// real company names.
func New(cfg Config) *Generator {
	return &Generator{cfg: cfg, caser: cases.Title(language.AmericanEnglish, cases.NoLower)}
}

// Generate produces n leads using the supplied rng. The same seed
// yields the same table.
func (g *Generator) Generate(n int, rng *rand.Rand) []model.Lead {
	leads := make([]model.Lead, 0, n)
	for i := 0; i < n; i++ {
		leads = append(leads, g.lead(i, rng))
	}
	return leads
}

func (g *Generator) lead(i int, rng *rand.Rand) model.Lead {
	company := g.caser.String(pick(rng, g.cfg.Companies)) + " " + pick(rng, g.cfg.Suffixes)
	domain := domainFor(company)

	street := fmt.Sprintf("%d %s", 100+rng.Intn(9900), pick(rng, g.cfg.Streets))

	companyPhone := model.MissingSentinel
	if rng.Float64() < g.cfg.PhoneRate {
		companyPhone = phone(rng)
	}

	website := model.MissingSentinel
	if rng.Float64() < g.cfg.WebsiteRate {
		website = "www." + domain
	}

	contactName := model.MissingSentinel
	if rng.Float64() < g.cfg.ContactRate {
		contactName = pick(rng, g.cfg.FirstNames) + " " + pick(rng, g.cfg.LastNames)
	}

	email := model.MissingSentinel
	if rng.Float64() < g.cfg.EmailRate {
		email = fmt.Sprintf("contact%d@%s", i, domain)
	}

	contactPhone := model.MissingSentinel
	if rng.Float64() < g.cfg.ContactPhoneRate {
		contactPhone = phone(rng)
	}

	return model.Lead{
		Company:      model.Str(company),
		Industry:     model.Str(pick(rng, g.cfg.Industries)),
		Street:       model.Str(street),
		City:         model.Str(pick(rng, g.cfg.Cities)),
		State:        model.Str(pick(rng, g.cfg.States)),
		BBBRating:    model.Str(pick(rng, g.cfg.BBBRatings)),
		CompanyPhone: model.Str(companyPhone),
		Website:      model.Str(website),
		ContactName:  model.Str(contactName),
		ContactTitle: model.Str(pick(rng, g.cfg.Titles)),
		ContactEmail: model.Str(email),
		ContactPhone: model.Str(contactPhone),
	}
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}

func phone(rng *rand.Rand) string {
	return fmt.Sprintf("(%d) %d-%d", 200+rng.Intn(800), 200+rng.Intn(800), 1000+rng.Intn(9000))
}

// domainFor derives a bare web domain from a company name.
func domainFor(company string) string {
	d := strings.ToLower(company)
	d = strings.ReplaceAll(d, " ", "")
	d = strings.ReplaceAll(d, ",", "")
	return d + ".com"
}
