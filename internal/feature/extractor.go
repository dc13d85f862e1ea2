// Package feature derives per-lead quality scores from raw lead fields.
// Every scorer returns a value in [0,1]; the vocabularies it matches
// against come from config, not hidden constants.
package feature

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-quality-cli/internal/config"
	"github.com/sells-group/lead-quality-cli/internal/model"
)

// emailShape is the minimal local@domain.tld check the pipeline uses.
// Anything stricter rejects real-world addresses the CRM accepts.
var emailShape = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

var nonDigit = regexp.MustCompile(`[^\d]`)

// completenessFields are the four fields counted for data_completeness.
const completenessFields = 4

// DefaultConfig returns the stock extractor vocabularies.
func DefaultConfig() config.FeatureConfig {
	return config.FeatureConfig{
		DecisionMakerTitles: []string{"ceo", "cto", "vp", "director", "founder", "president"},
		ManagerTitles:       []string{"manager", "lead", "head"},
		TechKeywords:        []string{"software", "technology", "saas", "tech"},
		PersonalDomains:     []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com"},
	}
}

// ValidateConfig checks that a FeatureConfig has usable vocabularies.
func ValidateConfig(c config.FeatureConfig) error {
	var errs []string
	if len(c.DecisionMakerTitles) == 0 {
		errs = append(errs, "decision_maker_titles must not be empty")
	}
	if len(c.ManagerTitles) == 0 {
		errs = append(errs, "manager_titles must not be empty")
	}
	if len(c.TechKeywords) == 0 {
		errs = append(errs, "tech_keywords must not be empty")
	}
	if len(errs) > 0 {
		return eris.Errorf("feature: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Extractor computes quality features for lead rows.
type Extractor struct {
	cfg config.FeatureConfig
}

// NewExtractor creates an Extractor with the given vocabularies.
func NewExtractor(cfg config.FeatureConfig) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract computes the full feature vector for every row of the table.
// The returned slice is index-aligned with leads.
func (e *Extractor) Extract(leads []model.Lead) []model.FeatureVector {
	out := make([]model.FeatureVector, len(leads))
	for i, lead := range leads {
		out[i] = model.FeatureVector{
			EmailQuality:     e.ScoreEmail(lead.ContactEmail),
			PhoneQuality:     e.ScorePhone(lead.ContactPhone),
			TitleValue:       e.ScoreTitle(lead.ContactTitle),
			DataCompleteness: Completeness(lead),
			IndustryFit:      e.ScoreIndustry(lead.Industry),
		}
	}
	return out
}

// ScoreEmail scores email quality: 0.0 missing, 0.2 malformed, 0.6 on
// a consumer webmail domain, 1.0 on any other valid domain.
func (e *Extractor) ScoreEmail(email *string) float64 {
	if model.Missing(email) {
		return 0.0
	}
	if !emailShape.MatchString(*email) {
		return 0.2
	}

	at := strings.LastIndex(*email, "@")
	domain := strings.ToLower((*email)[at+1:])
	for _, d := range e.cfg.PersonalDomains {
		if domain == strings.ToLower(d) {
			return 0.6
		}
	}
	return 1.0
}

// ScorePhone scores phone availability: digits stripped, 10 or 11
// digits count as a valid US number.
func (e *Extractor) ScorePhone(phone *string) float64 {
	if model.Missing(phone) {
		return 0.0
	}
	digits := nonDigit.ReplaceAllString(*phone, "")
	if n := len(digits); n == 10 || n == 11 {
		return 1.0
	}
	return 0.3
}

// ScoreTitle scores contact title influence: decision makers 1.0,
// manager-tier roles 0.6, everything else 0.3.
func (e *Extractor) ScoreTitle(title *string) float64 {
	if model.Missing(title) {
		return 0.0
	}
	lower := strings.ToLower(*title)

	for _, t := range e.cfg.DecisionMakerTitles {
		if strings.Contains(lower, strings.ToLower(t)) {
			return 1.0
		}
	}
	for _, t := range e.cfg.ManagerTitles {
		if strings.Contains(lower, strings.ToLower(t)) {
			return 0.6
		}
	}
	return 0.3
}

// ScoreIndustry scores industry alignment. A truly absent industry is
// neutral (0.5); the literal "N/A" string is NOT treated as absent and
// falls through to 0.7 with every other non-tech industry. The
// asymmetry is a known quirk of the original heuristic, kept so scores
// stay comparable.
func (e *Extractor) ScoreIndustry(industry *string) float64 {
	if industry == nil {
		return 0.5
	}
	lower := strings.ToLower(*industry)
	for _, kw := range e.cfg.TechKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return 1.0
		}
	}
	return 0.7
}

// Completeness returns the fraction of the four key contact fields
// (email, phone, name, website) that are present and not the sentinel.
// Rows are independent; no row affects another's score.
func Completeness(lead model.Lead) float64 {
	filled := 0
	for _, f := range []*string{lead.ContactEmail, lead.ContactPhone, lead.ContactName, lead.Website} {
		if !model.Missing(f) {
			filled++
		}
	}
	return float64(filled) / completenessFields
}
