// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/litfed/internal/httputil"
	"github.com/pdiddy/litfed/pkg/types"
)

// coreAPIBase is the CORE v3 API root. A var so tests can point it at an
// httptest server.
var coreAPIBase = "https://api.core.ac.uk/v3"

// CoreBackend wraps the CORE aggregator API, which requires a bearer API
// key and paginates by offset.
type CoreBackend struct {
	Client *httputil.Client
	APIKey string
}

func NewCoreBackend(userAgent, apiKey string) *CoreBackend {
	return &CoreBackend{
		Client: httputil.NewClient(0, Rates["core"], userAgent),
		APIKey: apiKey,
	}
}

func (b *CoreBackend) Name() string { return "core" }

func (b *CoreBackend) Search(ctx context.Context, query string, maxResults int) ([]types.Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	if b.APIKey == "" {
		return nil, nil
	}
	if maxResults <= 0 {
		maxResults = 20
	}

	var papers []types.Paper
	offset := 0
	for len(papers) < maxResults {
		limit := maxResults - len(papers)
		if limit > 100 {
			limit = 100
		}
		batch, err := b.searchPage(ctx, query, limit, offset)
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
		if len(batch) < limit {
			break
		}
		offset += limit
	}
	return papers, nil
}

func (b *CoreBackend) searchPage(ctx context.Context, query string, limit, offset int) ([]types.Paper, error) {
	params := url.Values{
		"q":      {query},
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
	resp, err := b.Client.Get(ctx, coreAPIBase+"/search/works", params, b.authHeader())
	if err != nil {
		return nil, err
	}
	parsed, err := httputil.JSON[coreResponse](resp)
	if err != nil {
		return nil, err
	}
	var papers []types.Paper
	for _, r := range parsed.Results {
		if p := b.parseWork(r); p != nil {
			papers = append(papers, *p)
		}
	}
	return papers, nil
}

func (b *CoreBackend) authHeader() http.Header {
	if b.APIKey == "" {
		return nil
	}
	return http.Header{"Authorization": {"Bearer " + b.APIKey}}
}

// GetByID resolves one work by its numeric CORE id. A transport failure
// is reported as not-found rather than an error; a malformed response
// body propagates.
func (b *CoreBackend) GetByID(ctx context.Context, id string) (*types.Paper, error) {
	coreID := strings.TrimSpace(strings.TrimPrefix(id, "core_"))
	if coreID == "" {
		return nil, fmt.Errorf("empty id")
	}
	resp, err := b.Client.Get(ctx, coreAPIBase+"/works/"+url.PathEscape(coreID), nil, b.authHeader())
	if err != nil {
		return nil, nil
	}
	w, err := httputil.JSON[coreWork](resp)
	if err != nil {
		return nil, err
	}
	return b.parseWork(w), nil
}

func (b *CoreBackend) parseWork(r coreWork) *types.Paper {
	if r.ID == 0 && r.Title == "" {
		return nil
	}

	var authors []types.Author
	for _, a := range r.Authors {
		if a.Name != "" {
			authors = append(authors, types.Author{Name: a.Name})
		}
	}

	var year *int
	if r.YearPublished > 0 {
		y := r.YearPublished
		year = &y
	}

	doi := normalizeDOI(r.DOI)

	sourceType := types.SourceGreyLiterature
	switch strings.ToLower(r.DocumentType) {
	case "research", "article", "journal article":
		sourceType = types.SourcePeerReviewed
	case "thesis":
		sourceType = types.SourceThesis
	case "presentation", "conference":
		sourceType = types.SourceConference
	}

	access := types.AccessUnknown
	if r.DownloadURL != "" {
		access = types.AccessOpen
	}

	urls := map[string]string{}
	if doi != "" {
		urls["doi"] = "https://doi.org/" + doi
		urls["scihub"] = "https://sci-hub.se/" + doi
	}
	if r.DownloadURL != "" {
		urls["pdf"] = r.DownloadURL
	}

	var keywords []string
	keywords = append(keywords, r.FieldOfStudy...)

	return &types.Paper{
		ID:         "core_" + strconv.Itoa(r.ID),
		Title:      titleOrUnknown(r.Title),
		Authors:    authors,
		Year:       year,
		Journal:    r.PublishedIn,
		DOI:        doi,
		Abstract:   normalizeWhitespace(r.Abstract),
		Keywords:   capKeywords(keywords, 10),
		AccessType: access,
		PDFURL:     r.DownloadURL,
		Source:     "core",
		SourceType: sourceType,
		URLs:       urls,
	}
}

type coreResponse struct {
	Results []coreWork `json:"results"`
}

type coreWork struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Abstract      string   `json:"abstract"`
	YearPublished int      `json:"yearPublished"`
	DOI           string   `json:"doi"`
	DownloadURL   string   `json:"downloadUrl"`
	PublishedIn   string   `json:"publisher"`
	DocumentType  string   `json:"documentType"`
	FieldOfStudy  []string `json:"fieldOfStudy"`
	Authors       []struct {
		Name string `json:"name"`
	} `json:"authors"`
}
