// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package adapter

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/litfed/internal/httputil"
	"github.com/pdiddy/litfed/pkg/types"
)

// openAlexSearchBase is the OpenAlex works endpoint. A var so tests can
// point it at an httptest server.
var openAlexSearchBase = "https://api.openalex.org/works"

type OpenAlexBackend struct {
	Client *httputil.Client
	Email  string
}

func NewOpenAlexBackend(userAgent, email string) *OpenAlexBackend {
	return &OpenAlexBackend{
		Client: httputil.NewClient(0, Rates["openalex"], userAgent),
		Email:  email,
	}
}

func (b *OpenAlexBackend) Name() string { return "openalex" }

func (b *OpenAlexBackend) Search(ctx context.Context, query string, maxResults int) ([]types.Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	if maxResults <= 0 {
		maxResults = 20
	}

	var papers []types.Paper
	page := 1
	const perPage = 25
	for len(papers) < maxResults {
		batch, err := b.searchPage(ctx, query, page, perPage)
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
		if len(batch) < perPage {
			break
		}
		page++
	}
	if len(papers) > maxResults {
		papers = papers[:maxResults]
	}
	return papers, nil
}

func (b *OpenAlexBackend) searchPage(ctx context.Context, query string, page, perPage int) ([]types.Paper, error) {
	params := url.Values{
		"search":   {query},
		"page":     {strconv.Itoa(page)},
		"per-page": {strconv.Itoa(perPage)},
	}
	if b.Email != "" {
		params.Set("mailto", b.Email)
	}
	resp, err := b.Client.Get(ctx, openAlexSearchBase, params, nil)
	if err != nil {
		return nil, err
	}
	parsed, err := httputil.JSON[openAlexResponse](resp)
	if err != nil {
		return nil, err
	}
	var papers []types.Paper
	for _, w := range parsed.Results {
		if p := b.parseWork(w); p != nil {
			papers = append(papers, *p)
		}
	}
	return papers, nil
}

// GetByID accepts an "openalex_"-prefixed id, a bare work id ("W..."),
// or a bare DOI ("10...."), which OpenAlex resolves via its doi: scheme.
func (b *OpenAlexBackend) GetByID(ctx context.Context, id string) (*types.Paper, error) {
	workID := strings.TrimPrefix(id, "openalex_")
	if workID == "" {
		return nil, fmt.Errorf("empty id")
	}
	if strings.HasPrefix(workID, "10.") {
		workID = "doi:" + workID
	}
	params := url.Values{}
	if b.Email != "" {
		params.Set("mailto", b.Email)
	}
	resp, err := b.Client.Get(ctx, openAlexSearchBase+"/"+workID, params, nil)
	if err != nil {
		return nil, nil
	}
	w, err := httputil.JSON[openAlexWork](resp)
	if err != nil {
		return nil, err
	}
	return b.parseWork(w), nil
}

func (b *OpenAlexBackend) parseWork(w openAlexWork) *types.Paper {
	if w.ID == "" {
		return nil
	}
	workID := strings.TrimPrefix(w.ID, "https://openalex.org/")

	var authors []types.Author
	for _, a := range w.Authorships {
		if a.Author.DisplayName == "" {
			continue
		}
		author := types.Author{Name: a.Author.DisplayName}
		if len(a.Institutions) > 0 {
			author.Affiliation = a.Institutions[0].DisplayName
		}
		author.ORCID = stripORCIDPrefix(a.Author.ORCID)
		authors = append(authors, author)
	}

	var year *int
	if w.PublicationYear > 0 {
		y := w.PublicationYear
		year = &y
	}

	var journal, publisher string
	if w.PrimaryLocation.Source.DisplayName != "" {
		journal = w.PrimaryLocation.Source.DisplayName
		publisher = w.PrimaryLocation.Source.HostOrganizationName
	}

	doi := normalizeDOI(strings.TrimPrefix(w.DOI, "https://doi.org/"))

	access := types.AccessPaywalled
	if w.OpenAccess.IsOA {
		access = types.AccessOpen
	}

	var pdfURL string
	if w.PrimaryLocation.PDFURL != "" {
		pdfURL = w.PrimaryLocation.PDFURL
	} else if w.OpenAccess.OAURL != "" {
		pdfURL = w.OpenAccess.OAURL
	}

	abstract := reconstructAbstract(w.AbstractInvertedIndex)

	keywords := topConcepts(w.Concepts, 10)

	urls := map[string]string{
		"openalex": w.ID,
	}
	if doi != "" {
		urls["doi"] = "https://doi.org/" + doi
		urls["scihub"] = "https://sci-hub.se/" + doi
	}
	if pdfURL != "" {
		urls["pdf"] = pdfURL
	}

	sourceType := types.SourceUnknown
	switch w.Type {
	case "article":
		sourceType = types.SourcePeerReviewed
	case "preprint":
		sourceType = types.SourcePreprint
	case "dissertation":
		sourceType = types.SourceThesis
	case "book-chapter":
		sourceType = types.SourceBookChapter
	case "proceedings-article":
		sourceType = types.SourceConference
	}

	p := &types.Paper{
		ID:             "openalex_" + workID,
		Title:          titleOrUnknown(w.Title),
		Authors:        authors,
		Year:           year,
		Journal:        journal,
		Publisher:      publisher,
		DOI:            doi,
		Abstract:       abstract,
		Keywords:       keywords,
		CitationCount:  w.CitedByCount,
		ReferenceCount: len(w.ReferencedWorks),
		AccessType:     access,
		PDFURL:         pdfURL,
		Source:         "openalex",
		SourceType:     sourceType,
		URLs:           urls,
	}
	if w.IDs.PMID != "" {
		p.PMID = strings.TrimPrefix(w.IDs.PMID, "https://pubmed.ncbi.nlm.nih.gov/")
	}
	return p
}

// reconstructAbstract rebuilds running text from OpenAlex's inverted
// index representation (word -> list of positions).
func reconstructAbstract(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}
	maxPos := 0
	for _, positions := range index {
		for _, pos := range positions {
			if pos > maxPos {
				maxPos = pos
			}
		}
	}
	words := make([]string, maxPos+1)
	for word, positions := range index {
		for _, pos := range positions {
			words[pos] = word
		}
	}
	return strings.Join(words, " ")
}

func topConcepts(concepts []openAlexConcept, n int) []string {
	sorted := make([]openAlexConcept, len(concepts))
	copy(sorted, concepts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
	var out []string
	for _, c := range sorted {
		if c.DisplayName == "" {
			continue
		}
		out = append(out, c.DisplayName)
		if len(out) >= n {
			break
		}
	}
	return out
}

type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexConcept struct {
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
}

type openAlexWork struct {
	ID                    string            `json:"id"`
	Title                 string            `json:"title"`
	PublicationYear       int               `json:"publication_year"`
	DOI                   string            `json:"doi"`
	Type                  string            `json:"type"`
	CitedByCount          int               `json:"cited_by_count"`
	ReferencedWorks       []string          `json:"referenced_works"`
	AbstractInvertedIndex map[string][]int  `json:"abstract_inverted_index"`
	Concepts              []openAlexConcept `json:"concepts"`
	Authorships           []struct {
		Author struct {
			DisplayName string `json:"display_name"`
			ORCID       string `json:"orcid"`
		} `json:"author"`
		Institutions []struct {
			DisplayName string `json:"display_name"`
		} `json:"institutions"`
	} `json:"authorships"`
	PrimaryLocation struct {
		Source struct {
			DisplayName          string `json:"display_name"`
			HostOrganizationName string `json:"host_organization_name"`
		} `json:"source"`
		PDFURL string `json:"pdf_url"`
	} `json:"primary_location"`
	OpenAccess struct {
		IsOA  bool   `json:"is_oa"`
		OAURL string `json:"oa_url"`
	} `json:"open_access"`
	IDs struct {
		PMID string `json:"pmid"`
	} `json:"ids"`
}
