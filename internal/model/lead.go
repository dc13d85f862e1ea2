// Package model defines the core data types shared across the lead
// quality pipeline: raw leads, derived feature vectors, scored leads,
// and persisted scoring runs.
package model

import (
	"strings"
	"time"
)

// MissingSentinel is the literal marker upstream lead exports use for
// an unknown field value.
const MissingSentinel = "N/A"

// Lead is one raw lead row as supplied by the CSV loader. Fields are
// pointers so a truly absent value (nil) stays distinct from the "N/A"
// sentinel string; the industry scorer depends on that distinction.
// Leads are never mutated by the pipeline.
type Lead struct {
	Company      *string `json:"company"`
	Industry     *string `json:"industry"`
	Street       *string `json:"street"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	BBBRating    *string `json:"bbb_rating"`
	CompanyPhone *string `json:"company_phone"`
	Website      *string `json:"website"`
	ContactName  *string `json:"contact_name"`
	ContactTitle *string `json:"contact_title"`
	ContactEmail *string `json:"contact_email"`
	ContactPhone *string `json:"contact_phone"`
}

// Missing reports whether a field value is absent or the sentinel.
func Missing(v *string) bool {
	return v == nil || strings.TrimSpace(*v) == "" || *v == MissingSentinel
}

// Value returns the field value, or "" when the field is absent or the
// sentinel.
func Value(v *string) string {
	if Missing(v) {
		return ""
	}
	return *v
}

// Str returns a pointer to s, for building Lead literals.
func Str(s string) *string { return &s }

// FeatureNames lists the five quality features in canonical column order.
var FeatureNames = []string{
	"email_quality",
	"phone_quality",
	"title_value",
	"data_completeness",
	"industry_fit",
}

// FeatureVector holds the five derived quality scores for one lead.
// Every field is always defined and bounded in [0,1].
type FeatureVector struct {
	EmailQuality     float64 `json:"email_quality"`
	PhoneQuality     float64 `json:"phone_quality"`
	TitleValue       float64 `json:"title_value"`
	DataCompleteness float64 `json:"data_completeness"`
	IndustryFit      float64 `json:"industry_fit"`
}

// Values returns the features as a slice in FeatureNames order.
func (v FeatureVector) Values() []float64 {
	return []float64{
		v.EmailQuality,
		v.PhoneQuality,
		v.TitleValue,
		v.DataCompleteness,
		v.IndustryFit,
	}
}

// Category is the four-tier display bucket derived from a lead score.
type Category string

const (
	CategoryHot         Category = "Hot Lead"
	CategoryWarm        Category = "Warm Lead"
	CategoryCold        Category = "Cold Lead"
	CategoryLowPriority Category = "Low Priority"
)

// ScoredLead is a lead with its derived features, model score, and
// display category attached. The embedded Lead is a copy of the input
// row, not a reference to it.
type ScoredLead struct {
	Lead
	Features FeatureVector `json:"features"`
	Score    float64       `json:"lead_score"`
	Category Category      `json:"category"`
}

// TrainStats summarizes one training pass over a lead table.
type TrainStats struct {
	TrainAccuracy float64 `json:"train_accuracy"`
	TestAccuracy  float64 `json:"test_accuracy"`
	TotalSamples  int     `json:"total_samples"`
	PositiveLeads int     `json:"positive_leads"`
}

// FeatureWeight pairs a feature name with its trained importance.
type FeatureWeight struct {
	Name       string  `json:"name"`
	Importance float64 `json:"importance"`
}

// Run records one persisted scoring run.
type Run struct {
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	LeadCount  int             `json:"lead_count"`
	Stats      TrainStats      `json:"stats"`
	Importance []FeatureWeight `json:"importance,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
