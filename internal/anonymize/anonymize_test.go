package anonymize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/teaser-cli/internal/model"
)

func TestText_MasksContactDetails(t *testing.T) {
	a := New("", "")

	tests := []struct {
		in   string
		want string
	}{
		{"Reach us at sales@acme-corp.com today", "Reach us at [EMAIL_REDACTED] today"},
		// A sentence-ending period sticks to the address and is masked with it.
		{"Write to info@acme.com.", "Write to [EMAIL_REDACTED]"},
		{"Call +91 98765 43210 for details", "Call [PHONE_REDACTED] for details"},
		{"Call 022-2345678 now", "Call [PHONE_REDACTED] now"},
		{"No contact details here.", "No contact details here."},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, a.Text(tt.in), tt.in)
	}
}

func TestText_MasksIdentity(t *testing.T) {
	a := New("Acme Specialty Pvt Ltd", "https://www.acme.example/")

	out := a.Text("ACME SPECIALTY PVT LTD exports from www.acme.example to Europe.")
	assert.Equal(t, "the Company exports from [WEBSITE_REDACTED] to Europe.", out)
}

func TestProfile(t *testing.T) {
	a := New("Acme", "")
	p := &model.CompanyProfile{
		Narrative: model.NarrativeProfile{
			BizDesc:    "Acme makes compounds. Contact info@acme.com.",
			Highlights: []string{"Acme won an award"},
			Customers:  []string{"BigCo"},
		},
	}

	a.Profile(p)

	// The email pattern eats adjacent dots, so the sentence period goes too.
	assert.Equal(t, "the Company makes compounds. Contact [EMAIL_REDACTED]", p.Narrative.BizDesc)
	assert.Equal(t, []string{"the Company won an award"}, p.Narrative.Highlights)
	assert.Equal(t, []string{"BigCo"}, p.Narrative.Customers)

	a.Profile(nil) // no-op
}

func TestBlind(t *testing.T) {
	p := &model.CompanyProfile{
		CompanyName: "Acme Specialty",
		Website:     "https://acme.example",
		Narrative:   model.NarrativeProfile{Website: "https://acme.example"},
	}

	Blind(p)

	assert.True(t, strings.HasPrefix(p.CompanyName, "Project "))
	assert.Empty(t, p.Website)
	assert.Empty(t, p.Narrative.Website)
}

func TestCodename(t *testing.T) {
	for i := 0; i < 20; i++ {
		assert.True(t, strings.HasPrefix(Codename(), "Project "))
	}
}
