// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package adapter

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/litfed/internal/httputil"
	"github.com/pdiddy/litfed/pkg/types"
)

// arxivAPIBase is the arXiv export API root. A var so tests can point it
// at an httptest server.
var arxivAPIBase = "http://export.arxiv.org/api/query"

// ArxivBackend queries the arXiv Atom feed API, which is paginated by
// start/offset rather than a page token.
type ArxivBackend struct {
	Client *httputil.Client
}

func NewArxivBackend(userAgent string) *ArxivBackend {
	return &ArxivBackend{Client: httputil.NewClient(0, Rates["arxiv"], userAgent)}
}

func (b *ArxivBackend) Name() string { return "arxiv" }

func (b *ArxivBackend) Search(ctx context.Context, query string, maxResults int) ([]types.Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	if maxResults <= 0 {
		maxResults = 20
	}

	var papers []types.Paper
	start := 0
	for len(papers) < maxResults {
		batchSize := maxResults - len(papers)
		if batchSize > 100 {
			batchSize = 100
		}
		batch, err := b.searchBatch(ctx, query, start, batchSize)
		if err != nil {
			if len(papers) > 0 {
				return papers, nil
			}
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		papers = append(papers, batch...)
		if len(batch) < batchSize {
			break
		}
		start += batchSize
	}
	return papers, nil
}

func (b *ArxivBackend) searchBatch(ctx context.Context, query string, start, maxResults int) ([]types.Paper, error) {
	params := url.Values{
		"search_query": {"all:" + query},
		"start":        {strconv.Itoa(start)},
		"max_results":  {strconv.Itoa(maxResults)},
		"sortBy":       {"relevance"},
		"sortOrder":    {"descending"},
	}
	resp, err := b.Client.Get(ctx, arxivAPIBase, params, nil)
	if err != nil {
		return nil, err
	}
	feed, err := httputil.XML[arxivFeed](resp)
	if err != nil {
		return nil, err
	}
	var papers []types.Paper
	for _, e := range feed.Entries {
		papers = append(papers, *b.parseEntry(e))
	}
	return papers, nil
}

func (b *ArxivBackend) GetByID(ctx context.Context, id string) (*types.Paper, error) {
	arxivID := strings.TrimPrefix(id, "arxiv_")
	if arxivID == "" {
		return nil, fmt.Errorf("empty id")
	}
	params := url.Values{"id_list": {arxivID}}
	resp, err := b.Client.Get(ctx, arxivAPIBase, params, nil)
	if err != nil {
		return nil, err
	}
	feed, err := httputil.XML[arxivFeed](resp)
	if err != nil {
		return nil, err
	}
	if len(feed.Entries) == 0 {
		return nil, nil
	}
	return b.parseEntry(feed.Entries[0]), nil
}

func (b *ArxivBackend) parseEntry(e arxivEntry) *types.Paper {
	arxivID := extractArxivID(e.ID)

	var authors []types.Author
	for _, a := range e.Authors {
		if a.Name != "" {
			authors = append(authors, types.Author{Name: a.Name})
		}
	}

	var year *int
	if pub, err := time.Parse(time.RFC3339, e.Published); err == nil {
		y := pub.Year()
		year = &y
	}

	// The journal field is genuinely ambiguous on arXiv: an upstream
	// journal-ref wins when present; otherwise fall back to the arXiv
	// identity itself rather than leaving it blank (Open Question #2).
	journal := strings.TrimSpace(e.JournalRef)
	if journal == "" {
		if primary := e.PrimaryCategory.Term; primary != "" {
			journal = "arXiv:" + primary
		} else {
			journal = "arXiv"
		}
	}

	var keywords []string
	for _, c := range e.Categories {
		if c.Term != "" {
			keywords = append(keywords, c.Term)
		}
	}
	keywords = capKeywords(keywords, 10)

	var htmlURL string
	for _, l := range e.Links {
		if l.Rel == "alternate" {
			htmlURL = l.Href
		}
	}

	// pdfUrl is built deterministically from the id rather than trusted
	// to an upstream link; arXiv ids always resolve to this path.
	var pdfURL string
	urls := map[string]string{}
	if arxivID != "" {
		pdfURL = "https://arxiv.org/pdf/" + arxivID + ".pdf"
		urls["arxiv"] = "https://arxiv.org/abs/" + arxivID
		urls["arxiv_pdf"] = pdfURL
	}
	doi := normalizeDOI(e.DOI)
	if doi != "" {
		urls["doi"] = "https://doi.org/" + doi
		urls["scihub"] = "https://sci-hub.se/" + doi
	}
	if pdfURL != "" {
		urls["pdf"] = pdfURL
	}
	if htmlURL != "" {
		urls["html"] = htmlURL
	}

	return &types.Paper{
		ID:         "arxiv_" + arxivID,
		Title:      titleOrUnknown(e.Title),
		Authors:    authors,
		Year:       year,
		Journal:    journal,
		DOI:        doi,
		ArxivID:    arxivID,
		Abstract:   normalizeWhitespace(e.Summary),
		Keywords:   keywords,
		AccessType: types.AccessOpen,
		PDFURL:     pdfURL,
		HTMLURL:    htmlURL,
		Source:     "arxiv",
		SourceType: types.SourcePreprint,
		URLs:       urls,
	}
}

type arxivFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string `xml:"id"`
	Title      string `xml:"title"`
	Summary    string `xml:"summary"`
	Published  string `xml:"published"`
	DOI        string `xml:"doi"`
	JournalRef string `xml:"journal_ref"`
	Authors    []struct {
		Name string `xml:"name"`
	} `xml:"author"`
	Categories []struct {
		Term string `xml:"term,attr"`
	} `xml:"category"`
	PrimaryCategory struct {
		Term string `xml:"term,attr"`
	} `xml:"primary_category"`
	Links []struct {
		Href  string `xml:"href,attr"`
		Rel   string `xml:"rel,attr"`
		Type  string `xml:"type,attr"`
		Title string `xml:"title,attr"`
	} `xml:"link"`
}
