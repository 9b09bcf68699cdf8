// Package narrative generates the descriptive half of a teaser profile. A
// model-backed generator drafts grounded narrative JSON from the extracted
// context; when no model is reachable or its output is unusable, a
// deterministic sector template takes over. Generated content never displaces
// extracted facts; the merge layer overlays it underneath them.
package narrative

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/teaser-cli/internal/extract"
	"github.com/sells-group/teaser-cli/internal/model"
	"github.com/sells-group/teaser-cli/pkg/anthropic"
)

// Input carries the grounding context for one generation call.
type Input struct {
	Sector     string
	Financials *model.Financials
	KPIs       model.KPIMap
	PublicText string
}

// Options configures the model call.
type Options struct {
	Model       string
	MaxTokens   int64
	Temperature float64
}

const (
	// DefaultModel is used when Options.Model is empty.
	DefaultModel     = "claude-haiku-4-5-20251001"
	defaultMaxTokens = 2048

	// maxContextChars caps how much public text enters the prompt.
	maxContextChars = 6000
)

// Generator produces narrative profiles, preferring the model and falling
// back to the sector template.
type Generator struct {
	client anthropic.Client
	opts   Options
	vocab  *extract.Vocabulary
}

// New creates a Generator. A nil client is allowed and routes every call
// straight to the sector-template fallback.
func New(client anthropic.Client, vocab *extract.Vocabulary, opts Options) *Generator {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if vocab == nil {
		vocab = extract.DefaultVocabulary()
	}
	return &Generator{client: client, opts: opts, vocab: vocab}
}

// Generate returns a narrative profile for the input. Model failures are
// logged and absorbed; the caller always gets a usable profile.
func (g *Generator) Generate(ctx context.Context, in Input) model.NarrativeProfile {
	if g.client != nil {
		profile, err := g.fromModel(ctx, in)
		if err == nil {
			return profile
		}
		zap.L().Warn("narrative generation failed, using sector template",
			zap.String("sector", in.Sector),
			zap.Error(err))
	}
	return Fallback(in, g.vocab)
}

func (g *Generator) fromModel(ctx context.Context, in Input) (model.NarrativeProfile, error) {
	temp := g.opts.Temperature
	req := anthropic.MessageRequest{
		Model:       g.opts.Model,
		MaxTokens:   g.opts.MaxTokens,
		Temperature: &temp,
		System: []anthropic.SystemBlock{
			{Text: "You are an expert M&A analyst. Return ONLY valid JSON."},
		},
		Messages: []anthropic.Message{
			{Role: "user", Content: buildPrompt(in)},
		},
	}

	resp, err := g.client.CreateMessage(ctx, req)
	if err != nil {
		return model.NarrativeProfile{}, err
	}
	resp.Usage.LogCost(g.opts.Model, "narrative")

	profile, err := ParseResponse(resp.Text())
	if err != nil {
		return model.NarrativeProfile{}, err
	}
	if profile.IsZero() {
		return model.NarrativeProfile{}, eris.New("narrative: model returned empty profile")
	}
	return profile, nil
}

func buildPrompt(in Input) string {
	var b strings.Builder
	b.WriteString("You are preparing a blind investment teaser for a ")
	b.WriteString(in.Sector)
	b.WriteString(" company.\n\n")
	b.WriteString("CRITICAL: Use \"The Company\" instead of any real name.\n")
	b.WriteString("OBJECTIVE: Generate a data-driven narrative based ONLY on the provided context.\n\n")

	b.WriteString("DATA:\n")
	b.WriteString("- Financials: ")
	b.WriteString(jsonOrNone(in.Financials))
	b.WriteString("\n- Extracted KPIs: ")
	b.WriteString(jsonOrNone(in.KPIs))
	b.WriteString("\n- Public context: ")
	b.WriteString(truncate(in.PublicText, maxContextChars))
	b.WriteString("\n\n")

	b.WriteString(`INSTRUCTIONS:
1. STRICT DATA ENFORCEMENT: if customer names, locations, or numbers are not
   explicitly in the context, omit the field entirely. DO NOT ESTIMATE OR
   FABRICATE DATA.
2. Return ONLY valid JSON with this structure (every field optional; omit
   anything the context does not support):

{
    "biz_desc": "2-3 sentences describing the business model.",
    "customers": ["Customer 1", "Customer 2"],
    "assets": [{"label": "Employees", "value": "450+"}],
    "certifications": ["Cert 1", "Cert 2"],
    "products": [{"category": "Category", "details": "Description"}],
    "applications": [{"industry": "Industry 1", "share": "60%"}],
    "export_markets": ["Market 1"],
    "upcoming_facilities": ["Facility 1"],
    "highlights": ["Investment highlight sentence."],
    "global_reach": "Description of geographic footprint."
}`)
	return b.String()
}

func jsonOrNone(v any) string {
	switch t := v.(type) {
	case *model.Financials:
		if !t.HasSeries() {
			return "None"
		}
	case model.KPIMap:
		if len(t) == 0 {
			return "None"
		}
	case nil:
		return "None"
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "None"
	}
	return string(raw)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var codeFenceRE = regexp.MustCompile("(?m)^```(?:json)?\\s*|\\s*```$")

// ParseResponse turns raw model output into a NarrativeProfile. Code fences
// are stripped and common JSON defects repaired before unmarshalling;
// placeholder values the model may emit anyway are scrubbed out.
func ParseResponse(raw string) (model.NarrativeProfile, error) {
	txt := strings.TrimSpace(codeFenceRE.ReplaceAllString(raw, ""))
	if txt == "" {
		return model.NarrativeProfile{}, eris.New("narrative: empty model output")
	}

	repaired, err := jsonrepair.RepairJSON(txt)
	if err != nil {
		return model.NarrativeProfile{}, eris.Wrap(err, "narrative: repair model output")
	}

	var profile model.NarrativeProfile
	if err := json.Unmarshal([]byte(repaired), &profile); err != nil {
		return model.NarrativeProfile{}, eris.Wrap(err, "narrative: unmarshal model output")
	}
	return scrub(profile), nil
}

// isPlaceholder reports values the model uses to mean "unknown".
func isPlaceholder(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NA", "N/A", "NONE", "UNDISCLOSED", "UNKNOWN":
		return true
	}
	return false
}

func scrubList(items []string) []string {
	var out []string
	for _, it := range items {
		if !isPlaceholder(it) {
			out = append(out, strings.TrimSpace(it))
		}
	}
	return out
}

func scrub(p model.NarrativeProfile) model.NarrativeProfile {
	if isPlaceholder(p.BizDesc) {
		p.BizDesc = ""
	}
	if isPlaceholder(p.GlobalReach) {
		p.GlobalReach = ""
	}
	if isPlaceholder(p.Website) {
		p.Website = ""
	}
	p.Certifications = scrubList(p.Certifications)
	p.Customers = scrubList(p.Customers)
	p.ExportMarkets = scrubList(p.ExportMarkets)
	p.UpcomingFacilities = scrubList(p.UpcomingFacilities)
	p.Highlights = scrubList(p.Highlights)

	var products []model.Product
	for _, pr := range p.Products {
		if !isPlaceholder(pr.Category) {
			products = append(products, pr)
		}
	}
	p.Products = products

	var apps []model.Application
	for _, a := range p.Applications {
		if !isPlaceholder(a.Industry) {
			apps = append(apps, a)
		}
	}
	p.Applications = apps

	var assets []model.Asset
	for _, a := range p.Assets {
		if !isPlaceholder(a.Value) {
			assets = append(assets, a)
		}
	}
	p.Assets = assets

	return p
}
