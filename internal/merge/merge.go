// Package merge combines per-document extraction results and public context
// into a single company profile, recording a citation for every claim it
// admits.
package merge

import (
	"github.com/sells-group/teaser-cli/internal/model"
)

// MergeFinancials folds src into dst, key by key. Years and each metric
// series are merged independently: a source list replaces the destination
// list only when it is strictly longer, so ties keep the earlier document.
// Provenance travels with the winning series. dst may be nil.
func MergeFinancials(dst, src *model.Financials) *model.Financials {
	if src == nil {
		return dst
	}
	if dst == nil {
		dst = &model.Financials{Sources: make(map[string]model.Provenance)}
	}
	if dst.Sources == nil {
		dst.Sources = make(map[string]model.Provenance)
	}

	if len(src.Years) > len(dst.Years) {
		dst.Years = src.Years
	}
	if len(src.Revenue) > len(dst.Revenue) {
		dst.Revenue = src.Revenue
		copySource(dst, src, model.MetricRevenue)
	}
	if len(src.EBITDA) > len(dst.EBITDA) {
		dst.EBITDA = src.EBITDA
		copySource(dst, src, model.MetricEBITDA)
	}
	if len(src.PAT) > len(dst.PAT) {
		dst.PAT = src.PAT
		copySource(dst, src, model.MetricPAT)
	}
	return dst
}

func copySource(dst, src *model.Financials, metric string) {
	if src.Sources == nil {
		return
	}
	if p, ok := src.Sources[metric]; ok {
		dst.Sources[metric] = p
	}
}

// MergeNarrative overlays extracted narrative fields onto a generated base.
// An extracted field wins whenever it is non-zero; generated text only fills
// the gaps.
func MergeNarrative(generated, extracted model.NarrativeProfile) model.NarrativeProfile {
	out := generated

	if extracted.BizDesc != "" {
		out.BizDesc = extracted.BizDesc
	}
	if extracted.Website != "" {
		out.Website = extracted.Website
	}
	if len(extracted.Products) > 0 {
		out.Products = extracted.Products
	}
	if len(extracted.Applications) > 0 {
		out.Applications = extracted.Applications
	}
	if len(extracted.Certifications) > 0 {
		out.Certifications = extracted.Certifications
	}
	if len(extracted.Assets) > 0 {
		out.Assets = extracted.Assets
	}
	if len(extracted.ExportMarkets) > 0 {
		out.ExportMarkets = extracted.ExportMarkets
	}
	if len(extracted.Customers) > 0 {
		out.Customers = extracted.Customers
	}
	if len(extracted.UpcomingFacilities) > 0 {
		out.UpcomingFacilities = extracted.UpcomingFacilities
	}
	if len(extracted.Highlights) > 0 {
		out.Highlights = extracted.Highlights
	}
	if extracted.GlobalReach != "" {
		out.GlobalReach = extracted.GlobalReach
	}
	return out
}
