package docs

import (
	"bytes"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/gocolly/colly/v2"

	"github.com/sqlweaver/sqlweaver/internal/log"
)

// Loader fetches reference documentation pages and reduces them to
// plain text suitable for chunking. Navigation chrome is stripped with
// a readability pass; pages where that fails fall back to the raw body.
type Loader struct {
	parallelism int
	delay       time.Duration
	logger      log.Logger
}

// NewLoader creates a Loader. parallelism below 1 defaults to 2;
// delay paces requests per domain to stay polite to doc sites.
func NewLoader(parallelism int, delay time.Duration, logger log.Logger) *Loader {
	if parallelism < 1 {
		parallelism = 2
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Loader{parallelism: parallelism, delay: delay, logger: logger}
}

// Fetch downloads every URL and returns the concatenated page text in
// the order of the input list. Individual page failures are logged and
// skipped; Fetch errors only when no page could be fetched at all.
func (l *Loader) Fetch(urls []string) (string, error) {
	if len(urls) == 0 {
		return "", fmt.Errorf("no documentation URLs configured")
	}

	c := colly.NewCollector(
		colly.Async(true),
		colly.UserAgent("sqlweaver-docs-fetcher"),
	)
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: l.parallelism,
		Delay:       l.delay,
	}); err != nil {
		return "", fmt.Errorf("configuring fetch limits: %w", err)
	}

	order := make(map[string]int, len(urls))
	for i, u := range urls {
		order[u] = i
	}

	var mu sync.Mutex
	type page struct {
		idx  int
		text string
	}
	var pages []page

	c.OnResponse(func(r *colly.Response) {
		pageURL := r.Request.URL
		text := extractText(r.Body, pageURL)
		if text == "" {
			l.logger.Warn("page produced no text", "url", pageURL.String())
			return
		}

		mu.Lock()
		pages = append(pages, page{idx: order[pageURL.String()], text: text})
		mu.Unlock()
		l.logger.Debug("fetched documentation page", "url", pageURL.String(), "bytes", len(text))
	})
	c.OnError(func(r *colly.Response, err error) {
		l.logger.Warn("failed to fetch documentation page", "url", r.Request.URL.String(), "error", err)
	})

	for _, u := range urls {
		if err := c.Visit(u); err != nil {
			l.logger.Warn("failed to queue documentation page", "url", u, "error", err)
		}
	}
	c.Wait()

	if len(pages) == 0 {
		return "", fmt.Errorf("no documentation pages could be fetched")
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].idx < pages[j].idx })
	var sb strings.Builder
	for i, p := range pages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(p.text)
	}
	return sb.String(), nil
}

// extractText runs readability over an HTML body. On failure the raw
// body is returned as-is; the chunker copes with noisy text better
// than retrieval copes with a missing page.
func extractText(body []byte, pageURL *url.URL) string {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil || strings.TrimSpace(article.TextContent) == "" {
		return strings.TrimSpace(string(body))
	}
	return strings.TrimSpace(article.TextContent)
}
