// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/litfed/internal/httputil"
	"github.com/pdiddy/litfed/pkg/types"
)

var unpaywallBase = "https://api.unpaywall.org/v2"

// UnpaywallBackend is not a search source: it only enriches papers that
// already carry a DOI with open-access location data. Search always
// returns an empty result so the orchestrator's fan-out treats it as a
// zero-yield source rather than a failure.
type UnpaywallBackend struct {
	Client *httputil.Client
	Email  string
}

func NewUnpaywallBackend(userAgent, email string) *UnpaywallBackend {
	return &UnpaywallBackend{
		Client: httputil.NewClient(15*time.Second, Rates["unpaywall"], userAgent),
		Email:  email,
	}
}

func (b *UnpaywallBackend) Name() string { return "unpaywall" }

func (b *UnpaywallBackend) Search(ctx context.Context, query string, maxResults int) ([]types.Paper, error) {
	return nil, nil
}

func (b *UnpaywallBackend) GetByID(ctx context.Context, id string) (*types.Paper, error) {
	doi := strings.TrimPrefix(id, "unpaywall_")
	return b.FindOpenAccess(ctx, doi)
}

// FindOpenAccess looks up a bare DOI and returns a minimal Paper carrying
// only the access-related fields Unpaywall knows about.
func (b *UnpaywallBackend) FindOpenAccess(ctx context.Context, doi string) (*types.Paper, error) {
	doi = normalizeDOI(doi)
	if doi == "" {
		return nil, fmt.Errorf("empty doi")
	}
	params := url.Values{}
	if b.Email != "" {
		params.Set("email", b.Email)
	}
	resp, err := b.Client.Get(ctx, unpaywallBase+"/"+url.PathEscape(doi), params, nil)
	if err != nil {
		return nil, nil
	}
	rec, err := httputil.JSON[unpaywallRecord](resp)
	if err != nil {
		return nil, nil
	}
	return recordToPaper(doi, rec), nil
}

// EnrichPaper backfills access fields on an existing Paper from an
// Unpaywall lookup, without overwriting anything already populated
// (enrichment never regresses a paper's existing data).
func (b *UnpaywallBackend) EnrichPaper(ctx context.Context, p *types.Paper) error {
	if p.DOI == "" {
		return nil
	}
	found, err := b.FindOpenAccess(ctx, p.DOI)
	if err != nil {
		return err
	}
	if found == nil {
		return nil
	}
	if p.AccessType != types.AccessOpen && found.AccessType == types.AccessOpen {
		p.AccessType = types.AccessOpen
	}
	if p.PDFURL == "" && found.PDFURL != "" {
		p.PDFURL = found.PDFURL
	}
	if p.HTMLURL == "" && found.HTMLURL != "" {
		p.HTMLURL = found.HTMLURL
	}
	if p.URLs == nil {
		p.URLs = map[string]string{}
	}
	for k, v := range found.URLs {
		if _, exists := p.URLs[k]; !exists {
			p.URLs[k] = v
		}
	}
	return nil
}

func recordToPaper(doi string, rec unpaywallRecord) *types.Paper {
	access := types.AccessPaywalled
	var pdfURL, htmlURL string
	if rec.IsOA {
		access = types.AccessOpen
		htmlURL = rec.BestOALocation.URL
		if rec.BestOALocation.URLForPDF != "" {
			pdfURL = rec.BestOALocation.URLForPDF
		} else {
			pdfURL = rec.BestOALocation.URL
		}
	}
	urls := map[string]string{"doi": "https://doi.org/" + doi}
	if pdfURL != "" {
		urls["pdf"] = pdfURL
	}
	return &types.Paper{
		ID:         "unpaywall_" + doi,
		Title:      titleOrUnknown(rec.Title),
		DOI:        doi,
		AccessType: access,
		PDFURL:     pdfURL,
		HTMLURL:    htmlURL,
		Source:     "unpaywall",
		SourceType: types.SourceUnknown,
		URLs:       urls,
	}
}

type unpaywallRecord struct {
	DOI            string `json:"doi"`
	Title          string `json:"title"`
	IsOA           bool   `json:"is_oa"`
	BestOALocation struct {
		URL       string `json:"url"`
		URLForPDF string `json:"url_for_pdf"`
	} `json:"best_oa_location"`
}
