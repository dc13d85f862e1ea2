// Package export shapes scored leads into CRM-ready records: contact
// imports, workflow recommendations, and prioritized sales tasks.
package export

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/lead-quality-cli/internal/config"
	"github.com/sells-group/lead-quality-cli/internal/model"
)

// Priority is the three-tier CRM priority, deliberately distinct from
// the four-bucket display category.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Contact is one flattened CRM contact record. Field tags are the
// HubSpot property names the import endpoint expects.
type Contact struct {
	Email                 string   `json:"email" yaml:"email"`
	FirstName             string   `json:"firstname" yaml:"firstname"`
	LastName              string   `json:"lastname" yaml:"lastname"`
	JobTitle              string   `json:"jobtitle" yaml:"jobtitle"`
	Phone                 string   `json:"phone" yaml:"phone"`
	Company               string   `json:"company" yaml:"company"`
	Website               string   `json:"website" yaml:"website"`
	City                  string   `json:"city" yaml:"city"`
	State                 string   `json:"state" yaml:"state"`
	AILeadScore           int      `json:"ai_lead_score" yaml:"ai_lead_score"`
	LeadQualityCategory   string   `json:"lead_quality_category" yaml:"lead_quality_category"`
	LeadPriority          Priority `json:"lead_priority" yaml:"lead_priority"`
	DataCompletenessScore int      `json:"data_completeness_score" yaml:"data_completeness_score"`
	LeadSource            string   `json:"lead_source" yaml:"lead_source"`
	LastUpdated           string   `json:"last_updated" yaml:"last_updated"`
}

// Properties returns the contact as a property map for the upload
// client.
func (c Contact) Properties() map[string]any {
	return map[string]any{
		"email":                   c.Email,
		"firstname":               c.FirstName,
		"lastname":                c.LastName,
		"jobtitle":                c.JobTitle,
		"phone":                   c.Phone,
		"company":                 c.Company,
		"website":                 c.Website,
		"city":                    c.City,
		"state":                   c.State,
		"ai_lead_score":           c.AILeadScore,
		"lead_quality_category":   c.LeadQualityCategory,
		"lead_priority":           string(c.LeadPriority),
		"data_completeness_score": c.DataCompletenessScore,
		"lead_source":             c.LeadSource,
		"last_updated":            c.LastUpdated,
	}
}

// ImportSummary aggregates one formatted contact batch.
type ImportSummary struct {
	TotalContacts int    `json:"total_contacts" yaml:"total_contacts"`
	HotLeads      int    `json:"hot_leads" yaml:"hot_leads"`
	ImportDate    string `json:"import_date" yaml:"import_date"`
	Source        string `json:"source" yaml:"source"`
}

// ImportPayload is the full CRM import: contacts plus summary.
type ImportPayload struct {
	Contacts []Contact     `json:"contacts" yaml:"contacts"`
	Summary  ImportSummary `json:"summary" yaml:"summary"`
}

// Workflow is a recommended CRM automation over the scored table.
type Workflow struct {
	Name          string   `json:"name" yaml:"name"`
	Trigger       string   `json:"trigger" yaml:"trigger"`
	Actions       []string `json:"actions" yaml:"actions"`
	AffectedLeads int      `json:"affected_leads" yaml:"affected_leads"`
}

// Task is one prioritized follow-up for the sales team.
type Task struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Priority    Priority `json:"priority" yaml:"priority"`
	DueDate     string   `json:"due_date" yaml:"due_date"`
	TaskType    string   `json:"task_type" yaml:"task_type"`
}

// DefaultConfig returns the stock export settings.
func DefaultConfig() config.ExportConfig {
	return config.ExportConfig{
		SourceLabel:     "SaaSSquatch Enhanced",
		HighThreshold:   0.8,
		MediumThreshold: 0.6,
		MaxTasks:        10,
	}
}

// Formatter maps scored leads to CRM export records.
type Formatter struct {
	cfg config.ExportConfig
	now func() time.Time
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithClock overrides the time source, for reproducible output.
func WithClock(now func() time.Time) Option {
	return func(f *Formatter) { f.now = now }
}

// New creates a Formatter with the given export config.
func New(cfg config.ExportConfig, opts ...Option) *Formatter {
	f := &Formatter{cfg: cfg, now: time.Now}
	if f.cfg.MaxTasks <= 0 {
		f.cfg.MaxTasks = 10
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FormatContacts converts scored leads into the CRM import payload.
// Rows with neither an email nor a phone are silently dropped; that is
// a business rule, not an error.
func (f *Formatter) FormatContacts(leads []model.ScoredLead) ImportPayload {
	date := f.now().Format("2006-01-02")

	contacts := make([]Contact, 0, len(leads))
	hot := 0
	for _, lead := range leads {
		if !hasContactInfo(lead.Lead) {
			continue
		}
		c := f.formatContact(lead, date)
		if c.LeadPriority == PriorityHigh {
			hot++
		}
		contacts = append(contacts, c)
	}

	zap.L().Debug("export: formatted contacts",
		zap.Int("input", len(leads)),
		zap.Int("contacts", len(contacts)),
		zap.Int("hot", hot),
	)

	return ImportPayload{
		Contacts: contacts,
		Summary: ImportSummary{
			TotalContacts: len(contacts),
			HotLeads:      hot,
			ImportDate:    date,
			Source:        f.cfg.SourceLabel,
		},
	}
}

func (f *Formatter) formatContact(lead model.ScoredLead, date string) Contact {
	first, last := splitName(lead.ContactName)

	return Contact{
		Email:                 model.Value(lead.ContactEmail),
		FirstName:             first,
		LastName:              last,
		JobTitle:              model.Value(lead.ContactTitle),
		Phone:                 model.Value(lead.ContactPhone),
		Company:               model.Value(lead.Company),
		Website:               model.Value(lead.Website),
		City:                  model.Value(lead.City),
		State:                 model.Value(lead.State),
		AILeadScore:           roundPct(lead.Score),
		LeadQualityCategory:   string(lead.Category),
		LeadPriority:          f.priorityFor(lead.Score),
		DataCompletenessScore: roundPct(lead.Features.DataCompleteness),
		LeadSource:            f.cfg.SourceLabel,
		LastUpdated:           date,
	}
}

// RecommendWorkflows emits one automation record per populated score
// bucket: hot (score >= high threshold) and warm (medium <= score <
// high). Returns zero, one, or two workflows.
func (f *Formatter) RecommendWorkflows(leads []model.ScoredLead) []Workflow {
	var hot, warm int
	for _, lead := range leads {
		switch {
		case lead.Score >= f.cfg.HighThreshold:
			hot++
		case lead.Score >= f.cfg.MediumThreshold:
			warm++
		}
	}

	var workflows []Workflow
	if hot > 0 {
		workflows = append(workflows, Workflow{
			Name:    "Hot Lead Immediate Follow-up",
			Trigger: fmt.Sprintf("AI Lead Score >= %d", roundPct(f.cfg.HighThreshold)),
			Actions: []string{
				"Create high-priority task for sales rep",
				"Send Slack notification to sales team",
				`Set lifecycle stage to "Sales Qualified Lead"`,
			},
			AffectedLeads: hot,
		})
	}
	if warm > 0 {
		workflows = append(workflows, Workflow{
			Name: "Warm Lead Nurture Sequence",
			Trigger: fmt.Sprintf("AI Lead Score %d-%d",
				roundPct(f.cfg.MediumThreshold), roundPct(f.cfg.HighThreshold)-1),
			Actions: []string{
				"Enroll in email nurture campaign",
				"Create follow-up task in 3 days",
				`Add to "Warm Prospects" list`,
			},
			AffectedLeads: warm,
		})
	}
	return workflows
}

// SalesTasks builds the prioritized task list from the table's top
// leads by score. Leads below the medium threshold never produce a
// task, even inside the top selection.
func (f *Formatter) SalesTasks(leads []model.ScoredLead) []Task {
	top := make([]model.ScoredLead, len(leads))
	copy(top, leads)
	// Stable sort keeps the table's natural order on score ties.
	sort.SliceStable(top, func(i, j int) bool { return top[i].Score > top[j].Score })
	if len(top) > f.cfg.MaxTasks {
		top = top[:f.cfg.MaxTasks]
	}

	var tasks []Task
	for _, lead := range top {
		company := model.Value(lead.Company)
		if company == "" {
			company = "Unknown Company"
		}
		contact := model.Value(lead.ContactName)
		if contact == "" {
			contact = "Unknown Contact"
		}

		switch {
		case lead.Score >= f.cfg.HighThreshold:
			tasks = append(tasks, Task{
				Title:       fmt.Sprintf("URGENT: Call %s", company),
				Description: fmt.Sprintf("Hot lead (%d%% score). Contact: %s", roundPct(lead.Score), contact),
				Priority:    PriorityHigh,
				DueDate:     "1 day",
				TaskType:    "call",
			})
		case lead.Score >= f.cfg.MediumThreshold:
			tasks = append(tasks, Task{
				Title:       fmt.Sprintf("Research and reach out to %s", company),
				Description: fmt.Sprintf("Warm lead (%d%% score). Research before calling.", roundPct(lead.Score)),
				Priority:    PriorityMedium,
				DueDate:     "3 days",
				TaskType:    "research",
			})
		}
	}
	return tasks
}

// priorityFor maps a score to the three-level CRM priority.
func (f *Formatter) priorityFor(score float64) Priority {
	switch {
	case score >= f.cfg.HighThreshold:
		return PriorityHigh
	case score >= f.cfg.MediumThreshold:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// hasContactInfo reports whether a lead is worth importing at all.
func hasContactInfo(lead model.Lead) bool {
	return !model.Missing(lead.ContactEmail) || !model.Missing(lead.ContactPhone)
}

// splitName splits a full name into first and last on the first
// whitespace boundary.
func splitName(name *string) (first, last string) {
	v := model.Value(name)
	if v == "" {
		return "", ""
	}
	parts := strings.SplitN(strings.TrimSpace(v), " ", 2)
	first = parts[0]
	if len(parts) > 1 {
		last = strings.TrimSpace(parts[1])
	}
	return first, last
}

// roundPct rescales a 0-1 value to a rounded 0-100 integer.
func roundPct(v float64) int {
	return int(math.Round(v * 100))
}
