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

var semanticScholarBase = "https://api.semanticscholar.org/graph/v1"

const semanticScholarFields = "paperId,title,abstract,year,citationCount,referenceCount,authors,journal,venue,publicationVenue,externalIds,openAccessPdf,fieldsOfStudy,publicationTypes,isOpenAccess"

// SemanticScholarBackend is the only adapter that exposes a citation
// graph (GetCitations/GetReferences); see CitationSource.
type SemanticScholarBackend struct {
	Client *httputil.Client
	APIKey string
}

func NewSemanticScholarBackend(userAgent, apiKey string) *SemanticScholarBackend {
	rate := Rates["semantic_scholar"]
	if apiKey != "" {
		rate = Rates["semantic_scholar_keyed"]
	}
	client := httputil.NewClient(0, rate, userAgent)
	// Semantic Scholar throttles aggressively on the keyless tier; route
	// its requests through the 429-aware retry helper.
	client.Retry429 = 3
	return &SemanticScholarBackend{
		Client: client,
		APIKey: apiKey,
	}
}

func (b *SemanticScholarBackend) Name() string { return "semantic_scholar" }

func (b *SemanticScholarBackend) Search(ctx context.Context, query string, maxResults int) ([]types.Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query")
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
		batch, err := b.searchBatch(ctx, query, limit, offset)
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

func (b *SemanticScholarBackend) searchBatch(ctx context.Context, query string, limit, offset int) ([]types.Paper, error) {
	params := url.Values{
		"query":  {query},
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
		"fields": {semanticScholarFields},
	}
	headers := b.authHeader()
	resp, err := b.Client.Get(ctx, semanticScholarBase+"/paper/search", params, headers)
	if err != nil {
		return nil, err
	}
	parsed, err := httputil.JSON[semanticSearchResponse](resp)
	if err != nil {
		return nil, err
	}
	var papers []types.Paper
	for _, sp := range parsed.Data {
		if p := b.parsePaper(sp); p != nil {
			papers = append(papers, *p)
		}
	}
	return papers, nil
}

func (b *SemanticScholarBackend) authHeader() map[string][]string {
	if b.APIKey == "" {
		return nil
	}
	return map[string][]string{"x-api-key": {b.APIKey}}
}

func (b *SemanticScholarBackend) GetByID(ctx context.Context, id string) (*types.Paper, error) {
	s2ID := strings.TrimPrefix(id, "s2_")
	if s2ID == "" {
		return nil, fmt.Errorf("empty id")
	}
	params := url.Values{"fields": {semanticScholarFields}}
	resp, err := b.Client.Get(ctx, semanticScholarBase+"/paper/"+s2ID, params, b.authHeader())
	if err != nil {
		return nil, nil
	}
	sp, err := httputil.JSON[semanticPaper](resp)
	if err != nil {
		return nil, err
	}
	return b.parsePaper(sp), nil
}

func (b *SemanticScholarBackend) GetCitations(ctx context.Context, p types.Paper) ([]types.Paper, error) {
	return b.relatedPapers(ctx, p, "citations", "citingPaper")
}

func (b *SemanticScholarBackend) GetReferences(ctx context.Context, p types.Paper) ([]types.Paper, error) {
	return b.relatedPapers(ctx, p, "references", "citedPaper")
}

func (b *SemanticScholarBackend) relatedPapers(ctx context.Context, p types.Paper, edge, wrapperKey string) ([]types.Paper, error) {
	s2ID := strings.TrimPrefix(p.ID, "s2_")
	if s2ID == p.ID {
		if p.DOI != "" {
			s2ID = p.DOI
		} else {
			return nil, nil
		}
	}

	params := url.Values{"fields": {semanticScholarFields}, "limit": {"100"}}
	resp, err := b.Client.Get(ctx, fmt.Sprintf("%s/paper/%s/%s", semanticScholarBase, s2ID, edge), params, b.authHeader())
	if err != nil {
		return nil, nil
	}
	parsed, err := httputil.JSON[map[string]any](resp)
	if err != nil {
		return nil, nil
	}
	rows, _ := parsed["data"].([]any)
	var out []types.Paper
	for _, row := range rows {
		m, ok := row.(map[string]any)
		if !ok {
			continue
		}
		wrapped, ok := m[wrapperKey].(map[string]any)
		if !ok {
			continue
		}
		sp := mapToSemanticPaper(wrapped)
		if pp := b.parsePaper(sp); pp != nil {
			out = append(out, *pp)
		}
	}
	return out, nil
}

func (b *SemanticScholarBackend) parsePaper(sp semanticPaper) *types.Paper {
	if sp.PaperID == "" {
		return nil
	}

	var authors []types.Author
	for _, a := range sp.Authors {
		if a.Name != "" {
			authors = append(authors, types.Author{Name: a.Name})
		}
	}

	var year *int
	if sp.Year > 0 {
		y := sp.Year
		year = &y
	}

	journal := sp.PublicationVenue.Name
	if journal == "" {
		journal = sp.Venue
	}

	sourceType := types.SourcePeerReviewed
	hasPreprintType := containsFold(sp.PublicationTypes, "Preprint")
	if hasPreprintType || sp.ExternalIDs.ArXiv != "" {
		sourceType = types.SourcePreprint
	} else if containsFold(sp.PublicationTypes, "Conference") {
		sourceType = types.SourceConference
	}

	access := types.AccessPaywalled
	if sp.IsOpenAccess {
		access = types.AccessOpen
	}

	urls := map[string]string{"semanticscholar": "https://www.semanticscholar.org/paper/" + sp.PaperID}
	doi := normalizeDOI(sp.ExternalIDs.DOI)
	if doi != "" {
		urls["doi"] = "https://doi.org/" + doi
		urls["scihub"] = "https://sci-hub.se/" + doi
	}
	if sp.ExternalIDs.ArXiv != "" {
		urls["arxiv"] = "https://arxiv.org/abs/" + sp.ExternalIDs.ArXiv
		urls["arxiv_pdf"] = "https://arxiv.org/pdf/" + sp.ExternalIDs.ArXiv + ".pdf"
	}
	var pdfURL string
	if sp.OpenAccessPDF.URL != "" {
		pdfURL = sp.OpenAccessPDF.URL
		urls["pdf"] = pdfURL
	}

	return &types.Paper{
		ID:             "s2_" + sp.PaperID,
		Title:          titleOrUnknown(sp.Title),
		Authors:        authors,
		Year:           year,
		Journal:        journal,
		DOI:            doi,
		ArxivID:        sp.ExternalIDs.ArXiv,
		PMID:           sp.ExternalIDs.PubMed,
		Abstract:       sp.Abstract,
		Keywords:       capKeywords(sp.FieldsOfStudy, 10),
		CitationCount:  sp.CitationCount,
		ReferenceCount: sp.ReferenceCount,
		AccessType:     access,
		PDFURL:         pdfURL,
		Source:         "semantic_scholar",
		SourceType:     sourceType,
		URLs:           urls,
	}
}

func containsFold(ss []string, target string) bool {
	for _, s := range ss {
		if strings.EqualFold(s, target) {
			return true
		}
	}
	return false
}

// mapToSemanticPaper converts a generic JSON map (from the citations /
// references endpoints' nested wrapper objects) back into a semanticPaper.
func mapToSemanticPaper(m map[string]any) semanticPaper {
	var sp semanticPaper
	sp.PaperID, _ = m["paperId"].(string)
	sp.Title, _ = m["title"].(string)
	sp.Abstract, _ = m["abstract"].(string)
	if y, ok := m["year"].(float64); ok {
		sp.Year = int(y)
	}
	if cc, ok := m["citationCount"].(float64); ok {
		sp.CitationCount = int(cc)
	}
	if rc, ok := m["referenceCount"].(float64); ok {
		sp.ReferenceCount = int(rc)
	}
	if authors, ok := m["authors"].([]any); ok {
		for _, a := range authors {
			if am, ok := a.(map[string]any); ok {
				name, _ := am["name"].(string)
				sp.Authors = append(sp.Authors, semanticAuthor{Name: name})
			}
		}
	}
	return sp
}

type semanticSearchResponse struct {
	Total int             `json:"total"`
	Data  []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID          string              `json:"paperId"`
	Title            string              `json:"title"`
	Abstract         string              `json:"abstract"`
	Year             int                 `json:"year"`
	CitationCount    int                 `json:"citationCount"`
	ReferenceCount   int                 `json:"referenceCount"`
	Authors          []semanticAuthor    `json:"authors"`
	Venue            string              `json:"venue"`
	PublicationVenue struct {
		Name string `json:"name"`
	} `json:"publicationVenue"`
	ExternalIDs struct {
		DOI    string `json:"DOI"`
		ArXiv  string `json:"ArXiv"`
		PubMed string `json:"PubMed"`
	} `json:"externalIds"`
	OpenAccessPDF struct {
		URL string `json:"url"`
	} `json:"openAccessPdf"`
	FieldsOfStudy    []string `json:"fieldsOfStudy"`
	PublicationTypes []string `json:"publicationTypes"`
	IsOpenAccess     bool     `json:"isOpenAccess"`
}

type semanticAuthor struct {
	Name string `json:"name"`
}
