// Package scrape collects public web context for a company. The pages it
// returns feed sector detection and the citation list; extraction itself
// never goes online.
package scrape

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/teaser-cli/internal/model"
)

// Scraper gathers public context from a set of URLs.
type Scraper interface {
	GatherContext(ctx context.Context, urls []string) (*model.PublicContext, error)
}

// Options configures the HTTP scraper.
type Options struct {
	UserAgent      string
	Timeout        time.Duration
	MaxPages       int
	RequestsPerSec float64
	MinParagraph   int // paragraph length cutoff
	MaxParagraphs  int // paragraphs kept per page
	MaxAttempts    int // fetch attempts per page, transient failures only
	RetryBackoff   time.Duration
}

// HTTPScraper fetches pages over plain HTTP with a shared rate limiter and
// extracts readable text with goquery. Page failures are logged and skipped;
// a page that cannot be scraped simply contributes nothing.
type HTTPScraper struct {
	client  *http.Client
	opts    Options
	limiter *rate.Limiter
}

// NewHTTPScraper creates a scraper with the given options.
func NewHTTPScraper(opts Options) *HTTPScraper {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxPages == 0 {
		opts.MaxPages = 5
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 2
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "teaser-cli/1.0"
	}
	if opts.MinParagraph == 0 {
		opts.MinParagraph = 50
	}
	if opts.MaxParagraphs == 0 {
		opts.MaxParagraphs = 5
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryBackoff == 0 {
		opts.RetryBackoff = 500 * time.Millisecond
	}
	return &HTTPScraper{
		client:  &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSec), 1),
	}
}

// GatherContext scrapes up to MaxPages of the given URLs and combines their
// text into one context blob. Only the context error is fatal; individual
// page failures are skipped.
func (s *HTTPScraper) GatherContext(ctx context.Context, urls []string) (*model.PublicContext, error) {
	pc := &model.PublicContext{}
	var combined strings.Builder

	n := 0
	for _, u := range urls {
		if n == s.opts.MaxPages {
			break
		}
		u = normalizeURL(u)
		if u == "" {
			continue
		}

		page, err := s.ScrapePage(ctx, u)
		if err != nil {
			if ctx.Err() != nil {
				return nil, eris.Wrap(ctx.Err(), "scrape: context cancelled")
			}
			zap.L().Warn("page scrape failed, skipping",
				zap.String("url", u),
				zap.Error(err),
			)
			continue
		}
		n++
		pc.Pages = append(pc.Pages, page)
		combined.WriteString("\nURL: " + page.URL)
		combined.WriteString("\nTITLE: " + page.Title)
		combined.WriteString("\nTEXT: " + page.Text + "\n")
	}

	pc.CombinedText = strings.TrimSpace(combined.String())
	return pc, nil
}

// ScrapePage fetches one URL and extracts title, meta description, and the
// first few substantial paragraphs.
func (s *HTTPScraper) ScrapePage(ctx context.Context, url string) (model.CrawledPage, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return model.CrawledPage{}, eris.Wrap(err, "scrape: rate limiter wait")
	}

	doc, err := s.fetchDocument(ctx, url)
	if err != nil {
		return model.CrawledPage{}, err
	}

	page := model.CrawledPage{
		URL:         url,
		Title:       strings.TrimSpace(doc.Find("title").First().Text()),
		Description: metaDescription(doc),
	}

	var paragraphs []string
	doc.Find("p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if len(text) > s.opts.MinParagraph {
			paragraphs = append(paragraphs, text)
		}
		return len(paragraphs) < s.opts.MaxParagraphs
	})
	page.Text = strings.Join(paragraphs, " ")

	return page, nil
}

// fetchDocument performs the GET with retries on transient failures.
// Network errors, 429, and 5xx responses are retried with linear backoff;
// any other non-200 status fails the page immediately.
func (s *HTTPScraper) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	var lastErr error
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		if attempt > 1 {
			zap.L().Debug("retrying page fetch",
				zap.String("url", url),
				zap.Int("attempt", attempt),
			)
			select {
			case <-ctx.Done():
				return nil, eris.Wrap(ctx.Err(), "scrape: context cancelled")
			case <-time.After(time.Duration(attempt-1) * s.opts.RetryBackoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, eris.Wrap(err, "scrape: build request")
		}
		req.Header.Set("User-Agent", s.opts.UserAgent)

		resp, err := s.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, eris.Wrap(err, "scrape: fetch page")
			}
			lastErr = eris.Wrap(err, "scrape: fetch page")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = eris.Errorf("scrape: status %d for %s", resp.StatusCode, url)
			if transientStatus(resp.StatusCode) {
				continue
			}
			return nil, lastErr
		}

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, eris.Wrap(err, "scrape: parse html")
		}
		return doc, nil
	}
	return nil, lastErr
}

func transientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func metaDescription(doc *goquery.Document) string {
	if v, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	if v, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func normalizeURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "https://" + u
	}
	return u
}
