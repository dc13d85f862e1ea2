package hubspot

import (
	"context"
	"fmt"
	"sync"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/sync/errgroup"
)

// UploadResult summarizes one contact upload pass.
type UploadResult struct {
	Total      int              `json:"total_contacts"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Errors     []string         `json:"errors,omitempty"`
	Created    []CreatedContact `json:"created_contacts,omitempty"`
}

// CreatedContact identifies a contact created during an upload.
type CreatedContact struct {
	HubSpotID string  `json:"hubspot_id"`
	Email     string  `json:"email"`
	Company   string  `json:"company,omitempty"`
	Score     float64 `json:"ai_score,omitempty"`
}

// UploadOptions tunes an upload pass.
type UploadOptions struct {
	// BatchSize caps concurrent create requests. Defaults to 3.
	BatchSize int
	// PhoneRegion is the default region for phone parsing. Defaults to "US".
	PhoneRegion string
}

// UploadContacts creates the given contacts, running a bounded number
// of requests concurrently. Contacts without an email address are
// counted as failed, and per-contact API failures do not abort the
// rest of the upload. Phone numbers are normalized to E.164 before
// sending; values that do not parse are sent as-is.
func UploadContacts(ctx context.Context, client Client, contacts []map[string]any, opts UploadOptions) *UploadResult {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 3
	}
	region := opts.PhoneRegion
	if region == "" {
		region = "US"
	}

	result := &UploadResult{Total: len(contacts)}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchSize)

	for _, props := range contacts {
		email := propString(props, "email")
		if email == "" {
			mu.Lock()
			result.Failed++
			result.Errors = append(result.Errors,
				fmt.Sprintf("Contact %s: No email address", propStringOr(props, "company", "Unknown")))
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			sendProps := normalizePhone(props, region)

			resp, err := client.CreateContact(ctx, sendProps)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				if IsConflict(err) {
					result.Errors = append(result.Errors,
						fmt.Sprintf("Contact %s: Already exists in HubSpot", email))
				} else {
					result.Errors = append(result.Errors,
						fmt.Sprintf("Contact %s: %v", email, err))
				}
				return nil
			}
			result.Successful++
			result.Created = append(result.Created, CreatedContact{
				HubSpotID: resp.ID,
				Email:     email,
				Company:   propString(props, "company"),
				Score:     propFloat(props, "ai_lead_score"),
			})
			return nil
		})
	}

	g.Wait() //nolint:errcheck
	return result
}

// normalizePhone returns a copy of props with the phone property in
// E.164 format when it parses as a valid number for the region.
func normalizePhone(props map[string]any, region string) map[string]any {
	phone := propString(props, "phone")
	if phone == "" {
		return props
	}
	parsed, err := phonenumbers.Parse(phone, region)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return props
	}

	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	out["phone"] = phonenumbers.Format(parsed, phonenumbers.E164)
	return out
}

func propString(props map[string]any, key string) string {
	v, ok := props[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

func propStringOr(props map[string]any, key, fallback string) string {
	if s := propString(props, key); s != "" {
		return s
	}
	return fallback
}

func propFloat(props map[string]any, key string) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}
