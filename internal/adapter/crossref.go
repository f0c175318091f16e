// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/litfed/internal/httputil"
	"github.com/pdiddy/litfed/pkg/types"
)

var crossrefBase = "https://api.crossref.org/works"

// crossrefTypeMap maps CrossRef's "type" facet onto our SourceType.
var crossrefTypeMap = map[string]types.SourceType{
	"journal-article":     types.SourcePeerReviewed,
	"proceedings-article": types.SourceConference,
	"posted-content":      types.SourcePreprint,
	"dissertation":        types.SourceThesis,
	"book-chapter":        types.SourceBookChapter,
	"report":              types.SourceGreyLiterature,
}

type CrossRefBackend struct {
	Client *httputil.Client
	Email  string
}

// NewCrossRefBackend builds a CrossRefBackend. When email is set, it is
// folded into the User-Agent as a "mailto:" token so the request
// qualifies for CrossRef's polite pool, in addition to being
// sent as the "mailto" query parameter on every call.
func NewCrossRefBackend(userAgent, email string) *CrossRefBackend {
	ua := userAgent
	if email != "" {
		ua = strings.TrimSpace(userAgent + " (mailto:" + email + ")")
	}
	return &CrossRefBackend{
		Client: httputil.NewClient(0, Rates["crossref"], ua),
		Email:  email,
	}
}

func (b *CrossRefBackend) Name() string { return "crossref" }

func (b *CrossRefBackend) Search(ctx context.Context, query string, maxResults int) ([]types.Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	if maxResults <= 0 {
		maxResults = 20
	}

	var papers []types.Paper
	offset := 0
	for len(papers) < maxResults {
		rows := maxResults - len(papers)
		if rows > 100 {
			rows = 100
		}
		batch, err := b.query(ctx, url.Values{"query": {query}}, rows, offset)
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
		if len(batch) < rows {
			break
		}
		offset += rows
	}
	return papers, nil
}

// SearchByPublisher is a CrossRef-specific refinement not available on
// other adapters: filter by publisher name alongside the free-text query.
func (b *CrossRefBackend) SearchByPublisher(ctx context.Context, query, publisher string, maxResults int) ([]types.Paper, error) {
	if maxResults <= 0 {
		maxResults = 20
	}
	params := url.Values{"query": {query}, "query.publisher-name": {publisher}}
	return b.query(ctx, params, maxResults, 0)
}

func (b *CrossRefBackend) query(ctx context.Context, params url.Values, rows, offset int) ([]types.Paper, error) {
	params.Set("rows", strconv.Itoa(rows))
	params.Set("offset", strconv.Itoa(offset))
	if b.Email != "" {
		params.Set("mailto", b.Email)
	}
	resp, err := b.Client.Get(ctx, crossrefBase, params, nil)
	if err != nil {
		return nil, err
	}
	parsed, err := httputil.JSON[crossrefResponse](resp)
	if err != nil {
		return nil, err
	}
	var papers []types.Paper
	for _, item := range parsed.Message.Items {
		if p := b.parseItem(item); p != nil {
			papers = append(papers, *p)
		}
	}
	return papers, nil
}

func (b *CrossRefBackend) GetByID(ctx context.Context, id string) (*types.Paper, error) {
	doi := strings.TrimPrefix(id, "crossref_")
	if doi == "" {
		return nil, fmt.Errorf("empty id")
	}
	resp, err := b.Client.Get(ctx, crossrefBase+"/"+url.PathEscape(doi), nil, nil)
	if err != nil {
		return nil, nil
	}
	parsed, err := httputil.JSON[crossrefWorkResponse](resp)
	if err != nil {
		return nil, err
	}
	return b.parseItem(parsed.Message), nil
}

func (b *CrossRefBackend) parseItem(item crossrefItem) *types.Paper {
	if item.DOI == "" {
		return nil
	}
	doi := normalizeDOI(item.DOI)

	var authors []types.Author
	for _, a := range item.Author {
		name := strings.TrimSpace(a.Given + " " + a.Family)
		if name != "" {
			authors = append(authors, types.Author{Name: name, ORCID: stripORCIDPrefix(a.ORCID)})
		}
	}

	var year *int
	if parts := item.Published.DateParts; len(parts) > 0 && len(parts[0]) > 0 {
		y := parts[0][0]
		year = &y
	}

	title := first(item.Title)
	journal := first(item.ContainerTitle)

	sourceType, ok := crossrefTypeMap[item.Type]
	if !ok {
		sourceType = types.SourceUnknown
	}

	access := types.AccessPaywalled
	var pdfURL string
	for _, l := range item.Link {
		if l.ContentType == "application/pdf" && pdfURL == "" {
			pdfURL = l.URL
		}
	}
	if pdfURL != "" {
		access = types.AccessOpen
	}

	urls := map[string]string{
		"doi":    "https://doi.org/" + doi,
		"scihub": "https://sci-hub.se/" + doi,
	}
	if pdfURL != "" {
		urls["pdf"] = pdfURL
	}

	return &types.Paper{
		ID:             "crossref_" + doi,
		Title:          titleOrUnknown(stripJATS(title)),
		Authors:        authors,
		Year:           year,
		Journal:        journal,
		Publisher:      item.Publisher,
		Volume:         item.Volume,
		Issue:          item.Issue,
		Pages:          item.Page,
		DOI:            doi,
		Abstract:       normalizeWhitespace(stripJATS(item.Abstract)),
		CitationCount:  item.IsReferencedByCount,
		ReferenceCount: item.ReferenceCount,
		AccessType:     access,
		PDFURL:         pdfURL,
		Source:         "crossref",
		SourceType:     sourceType,
		URLs:           urls,
	}
}

type crossrefResponse struct {
	Message struct {
		Items []crossrefItem `json:"items"`
	} `json:"message"`
}

type crossrefWorkResponse struct {
	Message crossrefItem `json:"message"`
}

type crossrefItem struct {
	DOI                 string   `json:"DOI"`
	Title               []string `json:"title"`
	ContainerTitle      []string `json:"container-title"`
	Publisher           string   `json:"publisher"`
	Volume              string   `json:"volume"`
	Issue               string   `json:"issue"`
	Page                string   `json:"page"`
	Type                string   `json:"type"`
	Abstract            string   `json:"abstract"`
	IsReferencedByCount int      `json:"is-referenced-by-count"`
	ReferenceCount      int      `json:"reference-count"`
	Published           struct {
		DateParts [][]int `json:"date-parts"`
	} `json:"published"`
	Author []struct {
		Given  string `json:"given"`
		Family string `json:"family"`
		ORCID  string `json:"ORCID"`
	} `json:"author"`
	Link []struct {
		URL         string `json:"URL"`
		ContentType string `json:"content-type"`
	} `json:"link"`
}
