package model

// Packet is the per-document partial profile produced by extraction. Packets
// are transient intermediates; the merge policy consumes them and they are
// discarded afterwards.
type Packet struct {
	SourceFile string            `json:"source_file"`
	Financials *Financials       `json:"financials,omitempty"`
	Text       string            `json:"text,omitempty"`
	KPIs       KPIMap            `json:"kpis,omitempty"`
	Narrative  *NarrativeProfile `json:"narrative,omitempty"`
	Err        string            `json:"error,omitempty"`
}

// CrawledPage is one scraped public page.
type CrawledPage struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Text        string `json:"text"`
}

// PublicContext aggregates scraped public pages for one company.
type PublicContext struct {
	Pages        []CrawledPage `json:"pages"`
	CombinedText string        `json:"combined_text"`
}
