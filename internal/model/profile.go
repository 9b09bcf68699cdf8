package model

// Provenance points an extracted fact back to where it was read.
// It is used only for citation, never for ownership.
type Provenance struct {
	SourceFile string `json:"source_file"`
	Sheet      string `json:"sheet,omitempty"`
	Row        *int   `json:"row,omitempty"`
	Metric     string `json:"metric"`
}

// Metric keys used across extraction and merge.
const (
	MetricRevenue = "revenue"
	MetricEBITDA  = "ebitda"
	MetricPAT     = "pat"
)

// MetricSeries is a named, year-aligned numeric sequence with provenance.
// Years are in discovery order, not necessarily chronological.
type MetricSeries struct {
	Metric     string     `json:"metric"`
	Years      []string   `json:"years"`
	Values     []float64  `json:"values"`
	Provenance Provenance `json:"provenance"`
}

// Financials bundles the extracted metric series of one document (or of the
// merged profile). A nil/empty slice means the metric was not found; a zero
// inside a slice means the cell was present but absent or unparseable.
type Financials struct {
	Years   []string  `json:"years"`
	Revenue []float64 `json:"revenue"`
	EBITDA  []float64 `json:"ebitda"`
	PAT     []float64 `json:"pat"`

	// Sources maps metric key -> provenance of the row/column it came from.
	Sources map[string]Provenance `json:"sources,omitempty"`
}

// HasSeries reports whether a usable series was extracted. Revenue or EBITDA
// is required; PAT alone is not enough to anchor a time series.
func (f *Financials) HasSeries() bool {
	return f != nil && (len(f.Revenue) > 0 || len(f.EBITDA) > 0)
}

// Series returns the extracted metrics as MetricSeries values, skipping
// metrics that were not found.
func (f *Financials) Series() []MetricSeries {
	if f == nil {
		return nil
	}
	var out []MetricSeries
	for _, m := range []struct {
		key    string
		values []float64
	}{
		{MetricRevenue, f.Revenue},
		{MetricEBITDA, f.EBITDA},
		{MetricPAT, f.PAT},
	} {
		if len(m.values) == 0 {
			continue
		}
		out = append(out, MetricSeries{
			Metric:     m.key,
			Years:      f.Years,
			Values:     m.values,
			Provenance: f.Sources[m.key],
		})
	}
	return out
}

// KPIMap holds extracted key-performance indicators. A missing key means
// "not found", never false/zero. Boolean flag keys are always present.
type KPIMap map[string]any

// Boolean flag keys, always set by the KPI extractor.
const (
	KPIZeroDebt     = "zero_debt"
	KPIProfitable   = "profitable"
	KPIISOCertified = "iso_certified"
	KPIWHOGMP       = "who_gmp"
	KPIFDAApproved  = "fda_approved"
)

// Product is one product-portfolio entry.
type Product struct {
	Category string `json:"category"`
	Details  string `json:"details,omitempty"`
}

// Application is one end-market entry. Share is a position-based heuristic,
// illustrative rather than measured.
type Application struct {
	Industry string `json:"industry"`
	Share    string `json:"share"`
}

// Asset is one operational-asset callout (plants, employees, etc).
type Asset struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// NarrativeProfile holds the structured, non-numeric descriptive facts about
// a company. Every field is independently optional; a zero value means the
// fact was not found in any document.
type NarrativeProfile struct {
	BizDesc            string        `json:"biz_desc,omitempty"`
	Website            string        `json:"website,omitempty"`
	Products           []Product     `json:"products,omitempty"`
	Applications       []Application `json:"applications,omitempty"`
	Certifications     []string      `json:"certifications,omitempty"`
	Assets             []Asset       `json:"assets,omitempty"`
	ExportMarkets      []string      `json:"export_markets,omitempty"`
	Customers          []string      `json:"customers,omitempty"`
	UpcomingFacilities []string      `json:"upcoming_facilities,omitempty"`
	Highlights         []string      `json:"highlights,omitempty"`
	GlobalReach        string        `json:"global_reach,omitempty"`
}

// IsZero reports whether no narrative field was populated.
func (n NarrativeProfile) IsZero() bool {
	return n.BizDesc == "" && n.Website == "" && len(n.Products) == 0 &&
		len(n.Applications) == 0 && len(n.Certifications) == 0 &&
		len(n.Assets) == 0 && len(n.ExportMarkets) == 0 &&
		len(n.Customers) == 0 && len(n.UpcomingFacilities) == 0 &&
		len(n.Highlights) == 0 && n.GlobalReach == ""
}

// CompanyProfile is the merged structured representation of one company.
// It is created once per processing run and never mutated after merge.
type CompanyProfile struct {
	CompanyName string           `json:"company_name"`
	Website     string           `json:"website,omitempty"`
	Sector      string           `json:"sector"`
	Financials  *Financials      `json:"financials,omitempty"`
	KPIs        KPIMap           `json:"kpis"`
	Narrative   NarrativeProfile `json:"narrative"`
	Citations   []Citation       `json:"citations"`
}
