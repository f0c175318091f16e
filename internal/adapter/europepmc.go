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

var europePMCBase = "https://www.ebi.ac.uk/europepmc/webservices/rest/search"

// EuropePMCBackend paginates via an opaque cursorMark token rather than
// an offset, per the upstream REST API.
type EuropePMCBackend struct {
	Client *httputil.Client
}

func NewEuropePMCBackend(userAgent string) *EuropePMCBackend {
	return &EuropePMCBackend{Client: httputil.NewClient(0, Rates["europe_pmc"], userAgent)}
}

func (b *EuropePMCBackend) Name() string { return "europe_pmc" }

func (b *EuropePMCBackend) Search(ctx context.Context, query string, maxResults int) ([]types.Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	if maxResults <= 0 {
		maxResults = 20
	}

	var papers []types.Paper
	cursor := "*"
	for len(papers) < maxResults {
		pageSize := maxResults - len(papers)
		if pageSize > 100 {
			pageSize = 100
		}
		batch, next, err := b.searchPage(ctx, query, cursor, pageSize)
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
		if next == "" || next == cursor || len(batch) < pageSize {
			break
		}
		cursor = next
	}
	return papers, nil
}

func (b *EuropePMCBackend) searchPage(ctx context.Context, query, cursor string, pageSize int) ([]types.Paper, string, error) {
	params := url.Values{
		"query":      {query},
		"format":     {"json"},
		"pageSize":   {strconv.Itoa(pageSize)},
		"cursorMark": {cursor},
	}
	resp, err := b.Client.Get(ctx, europePMCBase, params, nil)
	if err != nil {
		return nil, "", err
	}
	parsed, err := httputil.JSON[europePMCResponse](resp)
	if err != nil {
		return nil, "", err
	}
	var papers []types.Paper
	for _, r := range parsed.ResultList.Result {
		if p := b.parseResult(r); p != nil {
			papers = append(papers, *p)
		}
	}
	return papers, parsed.NextCursorMark, nil
}

func (b *EuropePMCBackend) GetByID(ctx context.Context, id string) (*types.Paper, error) {
	raw := strings.TrimPrefix(id, "europmc_")
	if raw == "" {
		return nil, fmt.Errorf("empty id")
	}
	params := url.Values{"query": {"ext_id:" + raw}, "format": {"json"}}
	resp, err := b.Client.Get(ctx, europePMCBase, params, nil)
	if err != nil {
		return nil, nil
	}
	parsed, err := httputil.JSON[europePMCResponse](resp)
	if err != nil {
		return nil, err
	}
	if len(parsed.ResultList.Result) == 0 {
		return nil, nil
	}
	return b.parseResult(parsed.ResultList.Result[0]), nil
}

func (b *EuropePMCBackend) parseResult(r europePMCResult) *types.Paper {
	// PMCID is preferred as the composite id when present since it implies
	// full-text open access; otherwise fall back to the PMID.
	id := r.PMCID
	if id == "" {
		id = r.PMID
	}
	if id == "" {
		id = r.ID
	}
	if id == "" {
		return nil
	}

	var authors []types.Author
	if r.AuthorString != "" {
		for _, name := range strings.Split(r.AuthorString, ", ") {
			name = strings.TrimSpace(name)
			if name != "" {
				authors = append(authors, types.Author{Name: name})
			}
		}
	}

	var year *int
	if y := firstDigits(r.PubYear); y != "" {
		if yi, ok := atoiDigits(y); ok {
			year = &yi
		}
	}

	doi := normalizeDOI(r.DOI)

	sourceType := types.SourcePeerReviewed
	if strings.EqualFold(r.PubType, "preprint") {
		sourceType = types.SourcePreprint
	}

	access := types.AccessPaywalled
	if r.IsOpenAccess == "Y" {
		access = types.AccessOpen
	}

	urls := map[string]string{}
	if doi != "" {
		urls["doi"] = "https://doi.org/" + doi
		urls["scihub"] = "https://sci-hub.se/" + doi
	}
	var pdfURL string
	if r.PMCID != "" {
		urls["pmc"] = fmt.Sprintf("https://www.ncbi.nlm.nih.gov/pmc/articles/%s/", r.PMCID)
		if r.IsOpenAccess == "Y" {
			pdfURL = fmt.Sprintf("https://www.ncbi.nlm.nih.gov/pmc/articles/%s/pdf/", r.PMCID)
			urls["pdf"] = pdfURL
		}
	}

	return &types.Paper{
		ID:            "europmc_" + id,
		Title:         titleOrUnknown(r.Title),
		Authors:       authors,
		Year:          year,
		Journal:       r.JournalTitle,
		DOI:           doi,
		PMID:          r.PMID,
		PMCID:         r.PMCID,
		Abstract:      normalizeWhitespace(r.AbstractText),
		CitationCount: r.CitedByCount,
		AccessType:    access,
		PDFURL:        pdfURL,
		Source:        "europe_pmc",
		SourceType:    sourceType,
		URLs:          urls,
	}
}

type europePMCResponse struct {
	NextCursorMark string `json:"nextCursorMark"`
	ResultList     struct {
		Result []europePMCResult `json:"result"`
	} `json:"resultList"`
}

type europePMCResult struct {
	ID           string `json:"id"`
	PMID         string `json:"pmid"`
	PMCID        string `json:"pmcid"`
	DOI          string `json:"doi"`
	Title        string `json:"title"`
	AuthorString string `json:"authorString"`
	JournalTitle string `json:"journalTitle"`
	PubYear      string `json:"pubYear"`
	PubType      string `json:"pubType"`
	AbstractText string `json:"abstractText"`
	IsOpenAccess string `json:"isOpenAccess"`
	CitedByCount int    `json:"citedByCount"`
}
