package leadgen

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-quality-cli/internal/model"
)

func TestGenerate_Count(t *testing.T) {
	g := New(DefaultConfig())
	leads := g.Generate(100, rand.New(rand.NewSource(1)))
	assert.Len(t, leads, 100)

	leads = g.Generate(0, rand.New(rand.NewSource(1)))
	assert.Empty(t, leads)
}

func TestGenerate_Deterministic(t *testing.T) {
	g := New(DefaultConfig())

	a := g.Generate(50, rand.New(rand.NewSource(42)))
	b := g.Generate(50, rand.New(rand.NewSource(42)))
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, *a[i].Company, *b[i].Company)
		assert.Equal(t, *a[i].ContactEmail, *b[i].ContactEmail)
		assert.Equal(t, *a[i].CompanyPhone, *b[i].CompanyPhone)
	}

	c := g.Generate(50, rand.New(rand.NewSource(7)))
	same := true
	for i := range a {
		if *a[i].Company != *c[i].Company || *a[i].ContactEmail != *c[i].ContactEmail {
			same = false
			break
		}
	}
	assert.False(t, same, "different seeds should produce different tables")
}

func TestGenerate_AllFieldsPopulated(t *testing.T) {
	g := New(DefaultConfig())
	leads := g.Generate(20, rand.New(rand.NewSource(3)))

	for _, lead := range leads {
		// Generated leads use the sentinel, never nil or empty.
		for _, field := range []*string{
			lead.Company, lead.Industry, lead.Street, lead.City, lead.State,
			lead.BBBRating, lead.CompanyPhone, lead.Website, lead.ContactName,
			lead.ContactTitle, lead.ContactEmail, lead.ContactPhone,
		} {
			require.NotNil(t, field)
			assert.NotEmpty(t, *field)
		}
	}
}

func TestGenerate_MissingDataRates(t *testing.T) {
	g := New(DefaultConfig())
	leads := g.Generate(2000, rand.New(rand.NewSource(11)))

	var emails, phones, contacts int
	for _, lead := range leads {
		if *lead.ContactEmail != model.MissingSentinel {
			emails++
		}
		if *lead.CompanyPhone != model.MissingSentinel {
			phones++
		}
		if *lead.ContactName != model.MissingSentinel {
			contacts++
		}
	}

	assert.InDelta(t, 0.7, float64(emails)/2000, 0.05)
	assert.InDelta(t, 0.6, float64(phones)/2000, 0.05)
	assert.InDelta(t, 0.8, float64(contacts)/2000, 0.05)
}

func TestGenerate_EmailMatchesCompanyDomain(t *testing.T) {
	g := New(DefaultConfig())
	leads := g.Generate(200, rand.New(rand.NewSource(5)))

	for _, lead := range leads {
		email := *lead.ContactEmail
		if email == model.MissingSentinel {
			continue
		}
		require.Contains(t, email, "@")
		domain := email[strings.Index(email, "@")+1:]
		expected := domainFor(*lead.Company)
		assert.Equal(t, expected, domain)
	}
}

func TestGenerate_TitleCasesCustomVocabulary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Companies = []string{"acme widgets"}
	cfg.Suffixes = []string{"Inc"}

	g := New(cfg)
	leads := g.Generate(5, rand.New(rand.NewSource(1)))
	for _, lead := range leads {
		assert.Equal(t, "Acme Widgets Inc", *lead.Company)
	}
}
