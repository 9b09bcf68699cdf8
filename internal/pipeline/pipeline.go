// Package pipeline orchestrates a profile build: decode each project
// document, run the pure extractors in parallel, gather public context,
// generate the narrative, merge everything into one profile, and scrub it.
// Decode failures stay per-document; a run only fails when nothing at all
// could be processed.
package pipeline

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/teaser-cli/internal/anonymize"
	"github.com/sells-group/teaser-cli/internal/extract"
	"github.com/sells-group/teaser-cli/internal/fetcher"
	"github.com/sells-group/teaser-cli/internal/merge"
	"github.com/sells-group/teaser-cli/internal/model"
	"github.com/sells-group/teaser-cli/internal/narrative"
	"github.com/sells-group/teaser-cli/internal/scrape"
	"github.com/sells-group/teaser-cli/internal/store"
)

const (
	defaultWorkers  = 4
	defaultCacheTTL = 24 * time.Hour
)

// Document is one input file with its resolved decoder kind.
type Document struct {
	Path string
	Kind model.FileKind
}

// Config wires the pipeline's collaborators. Store, Scraper, and Narrative
// are each optional; absent collaborators disable persistence, public
// context, and generated narrative respectively.
type Config struct {
	Store     store.Store
	Scraper   scrape.Scraper
	Narrative *narrative.Generator
	Vocab     *extract.Vocabulary

	Workers  int
	CacheTTL time.Duration

	// Ingest caps; zero means the fetcher defaults.
	MaxTextBytes int64
	MaxSheetRows int

	// Blind replaces the company name with a project codename and strips
	// the website from the finished profile.
	Blind bool
}

// Pipeline runs profile builds. Safe for concurrent use; all mutable state
// is per-run.
type Pipeline struct {
	cfg   Config
	vocab *extract.Vocabulary
}

func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	vocab := cfg.Vocab
	if vocab == nil {
		vocab = extract.DefaultVocabulary()
	}
	return &Pipeline{cfg: cfg, vocab: vocab}
}

// Run processes one stored project end to end, moving it through processing
// to complete or failed.
func (p *Pipeline) Run(ctx context.Context, projectID string) (*model.CompanyProfile, error) {
	st := p.cfg.Store
	if st == nil {
		return nil, eris.New("pipeline: run requires a store")
	}
	log := zap.L().With(zap.String("project_id", projectID))

	proj, err := st.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := st.UpdateProjectStatus(ctx, projectID, model.ProjectStatusProcessing); err != nil {
		return nil, err
	}
	log.Info("pipeline: starting run",
		zap.String("company", proj.CompanyName),
		zap.Int("files", len(proj.Files)))

	docs := make([]Document, 0, len(proj.Files))
	for _, f := range proj.Files {
		docs = append(docs, Document{Path: f.Path, Kind: f.Kind})
	}

	profile, err := p.Process(ctx, proj.CompanyName, proj.CompanyURL, docs)
	if err != nil {
		if ferr := st.FailProject(ctx, projectID, err.Error()); ferr != nil {
			log.Error("pipeline: failed to mark project failed", zap.Error(ferr))
		}
		return nil, err
	}

	if err := st.SaveProfile(ctx, projectID, profile); err != nil {
		return nil, err
	}
	log.Info("pipeline: run complete", zap.String("sector", profile.Sector))
	return profile, nil
}

// Process builds a profile from the given documents without touching project
// state. The store, when present, is still used as a public-context cache.
func (p *Pipeline) Process(ctx context.Context, companyName, companyURL string, docs []Document) (*model.CompanyProfile, error) {
	if len(docs) == 0 && companyURL == "" {
		return nil, eris.New("pipeline: nothing to process")
	}

	packets := p.extractAll(ctx, docs)
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: extraction cancelled")
	}

	usable := 0
	for _, pkt := range packets {
		if pkt.Err == "" {
			usable++
		}
	}
	if len(docs) > 0 && usable == 0 && companyURL == "" {
		return nil, eris.New("pipeline: every document failed to decode")
	}

	public := p.gatherPublic(ctx, companyURL)
	generated := p.generate(ctx, companyName, packets, public)

	profile := merge.BuildProfile(merge.Inputs{
		CompanyName: companyName,
		Website:     companyURL,
		Packets:     packets,
		Public:      public,
		Generated:   generated,
		Vocab:       p.vocab,
	})

	anon := anonymize.New(companyName, profile.Website)
	anon.Profile(profile)
	if p.cfg.Blind {
		anonymize.Blind(profile)
	}

	zap.L().Info("pipeline: profile built",
		zap.String("company", profile.CompanyName),
		zap.String("sector", profile.Sector),
		zap.Int("documents", len(docs)),
		zap.Int("documents_usable", usable),
		zap.Int("citations", len(profile.Citations)),
		zap.Bool("public_used", public != nil))
	return profile, nil
}

// extractAll decodes and extracts every document concurrently. Packet order
// matches document order; failures become error packets.
func (p *Pipeline) extractAll(ctx context.Context, docs []Document) []model.Packet {
	packets := make([]model.Packet, len(docs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				packets[i] = model.Packet{SourceFile: filepath.Base(doc.Path), Err: err.Error()}
				return nil
			}
			packets[i] = p.extractDocument(doc)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	return packets
}

func (p *Pipeline) extractDocument(doc Document) model.Packet {
	name := filepath.Base(doc.Path)

	switch doc.Kind {
	case model.FileKindWorkbook:
		return p.extractWorkbook(doc.Path, name)
	case model.FileKindText:
		return p.extractText(doc.Path, name)
	}
	return model.Packet{SourceFile: name, Err: "unsupported file kind"}
}

func (p *Pipeline) extractWorkbook(path, name string) model.Packet {
	sheets, err := fetcher.ReadSheets(path, fetcher.WorkbookOptions{MaxRows: p.cfg.MaxSheetRows})
	if err != nil {
		zap.L().Warn("pipeline: workbook decode failed",
			zap.String("file", name), zap.Error(err))
		return model.Packet{SourceFile: name, Err: err.Error()}
	}

	ext := extract.NewTableExtractor(p.vocab)
	var fin *model.Financials
	for _, sheet := range sheets {
		if got, ok := ext.Extract(sheet.Grid, name, sheet.Name); ok {
			fin = merge.MergeFinancials(fin, got)
		}
	}
	return model.Packet{SourceFile: name, Financials: fin}
}

func (p *Pipeline) extractText(path, name string) model.Packet {
	text, err := fetcher.ReadText(path, p.cfg.MaxTextBytes)
	if err != nil {
		zap.L().Warn("pipeline: text decode failed",
			zap.String("file", name), zap.Error(err))
		return model.Packet{SourceFile: name, Err: err.Error()}
	}

	pkt := model.Packet{
		SourceFile: name,
		Text:       text,
		KPIs:       extract.ExtractKPIs(text),
	}
	if nar := extract.NewNarrativeExtractor(p.vocab).Extract(text); !nar.IsZero() {
		pkt.Narrative = &nar
	}
	return pkt
}

// gatherPublic fetches public context for the company URL, consulting the
// store cache first. Scrape failures are logged and absorbed.
func (p *Pipeline) gatherPublic(ctx context.Context, companyURL string) *model.PublicContext {
	if p.cfg.Scraper == nil || companyURL == "" {
		return nil
	}

	if p.cfg.Store != nil {
		cached, err := p.cfg.Store.GetCachedContext(ctx, companyURL)
		if err != nil {
			zap.L().Warn("pipeline: context cache lookup failed",
				zap.String("url", companyURL), zap.Error(err))
		} else if cached != nil {
			zap.L().Debug("pipeline: context cache hit", zap.String("url", companyURL))
			return cached
		}
	}

	public, err := p.cfg.Scraper.GatherContext(ctx, []string{companyURL})
	if err != nil {
		zap.L().Warn("pipeline: public context unavailable",
			zap.String("url", companyURL), zap.Error(err))
		return nil
	}
	if public == nil || public.CombinedText == "" {
		return nil
	}

	if p.cfg.Store != nil {
		if err := p.cfg.Store.SetCachedContext(ctx, companyURL, public, p.cfg.CacheTTL); err != nil {
			zap.L().Warn("pipeline: context cache write failed",
				zap.String("url", companyURL), zap.Error(err))
		}
	}
	return public
}

// generate produces the narrative underlay. The sector and grounding data
// are assembled from the packets the same way the merge will see them.
func (p *Pipeline) generate(ctx context.Context, companyName string, packets []model.Packet, public *model.PublicContext) model.NarrativeProfile {
	if p.cfg.Narrative == nil {
		return model.NarrativeProfile{}
	}

	var text strings.Builder
	var fin *model.Financials
	kpis := make(model.KPIMap)
	for _, pkt := range packets {
		if pkt.Err != "" {
			continue
		}
		if pkt.Financials != nil {
			fin = merge.MergeFinancials(fin, pkt.Financials)
		}
		for k, v := range pkt.KPIs {
			if _, seen := kpis[k]; !seen {
				kpis[k] = v
			}
		}
		text.WriteString(pkt.Text)
		text.WriteString("\n")
	}
	publicText := ""
	if public != nil {
		publicText = public.CombinedText
		text.WriteString(publicText)
	}

	sectorText := strings.TrimSpace(text.String())
	if sectorText == "" {
		sectorText = companyName
	}

	return p.cfg.Narrative.Generate(ctx, narrative.Input{
		Sector:     extract.DetectSector(sectorText, p.vocab),
		Financials: fin,
		KPIs:       kpis,
		PublicText: publicText,
	})
}

// DiscoverDocuments walks a directory and returns the decodable files in
// lexical path order. Files with unrecognized extensions are skipped.
func DiscoverDocuments(dir string) ([]Document, error) {
	var docs []Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		kind, ok := fetcher.KindOf(d.Name())
		if !ok {
			return nil
		}
		docs = append(docs, Document{Path: path, Kind: kind})
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: discover documents in %s", dir)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}
