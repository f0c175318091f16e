// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package adapter

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/litfed/internal/httputil"
	"github.com/pdiddy/litfed/pkg/types"
)

// pubmedBase is the eutils endpoint root. A var so tests can point it at
// an httptest server.
var pubmedBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// PubMedBackend implements the two-phase esearch/efetch PubMed workflow.
type PubMedBackend struct {
	Client *httputil.Client
	APIKey string
	Email  string
}

// NewPubMedBackend builds a PubMedBackend. NCBI allows 10 req/s with
// an API key, 3 req/s without.
func NewPubMedBackend(userAgent, apiKey, email string) *PubMedBackend {
	rate := Rates["pubmed"]
	if apiKey != "" {
		rate = Rates["pubmed_keyed"]
	}
	return &PubMedBackend{
		Client: httputil.NewClient(0, rate, userAgent),
		APIKey: apiKey,
		Email:  email,
	}
}

func (b *PubMedBackend) Name() string { return "pubmed" }

func (b *PubMedBackend) Search(ctx context.Context, query string, maxResults int) ([]types.Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	if maxResults <= 0 {
		maxResults = 20
	}

	pmids, err := b.searchPMIDs(ctx, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("esearch: %w", err)
	}
	if len(pmids) == 0 {
		return nil, nil
	}
	return b.fetchDetails(ctx, pmids)
}

func (b *PubMedBackend) searchPMIDs(ctx context.Context, query string, max int) ([]string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {query},
		"retmode": {"json"},
		"retmax":  {strconv.Itoa(max)},
		"sort":    {"relevance"},
	}
	b.addAuth(params)

	resp, err := b.Client.Get(ctx, pubmedBase+"/esearch.fcgi", params, nil)
	if err != nil {
		return nil, err
	}
	parsed, err := httputil.JSON[esearchResponse](resp)
	if err != nil {
		return nil, err
	}
	return parsed.Result.IDList, nil
}

func (b *PubMedBackend) fetchDetails(ctx context.Context, pmids []string) ([]types.Paper, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(pmids, ",")},
		"retmode": {"xml"},
	}
	b.addAuth(params)

	resp, err := b.Client.Get(ctx, pubmedBase+"/efetch.fcgi", params, nil)
	if err != nil {
		return nil, fmt.Errorf("efetch: %w", err)
	}
	set, err := httputil.XML[pubmedArticleSet](resp)
	if err != nil {
		return nil, err
	}

	var papers []types.Paper
	for _, a := range set.Articles {
		if p := b.parseArticle(a); p != nil {
			papers = append(papers, *p)
		}
	}
	return papers, nil
}

func (b *PubMedBackend) addAuth(params url.Values) {
	if b.APIKey != "" {
		params.Set("api_key", b.APIKey)
	}
	if b.Email != "" {
		params.Set("email", b.Email)
	}
}

func (b *PubMedBackend) GetByID(ctx context.Context, id string) (*types.Paper, error) {
	pmid := strings.TrimPrefix(id, "pubmed_")
	if pmid == "" {
		return nil, fmt.Errorf("empty id")
	}
	papers, err := b.fetchDetails(ctx, []string{pmid})
	if err != nil {
		return nil, err
	}
	if len(papers) == 0 {
		return nil, nil
	}
	return &papers[0], nil
}

func (b *PubMedBackend) parseArticle(a pubmedArticle) *types.Paper {
	pmid := a.MedlineCitation.PMID
	if pmid == "" {
		return nil
	}

	var authors []types.Author
	for _, au := range a.MedlineCitation.Article.AuthorList.Authors {
		name := strings.TrimSpace(au.ForeName + " " + au.LastName)
		if name != "" {
			authors = append(authors, types.Author{Name: name})
		}
	}

	var year *int
	if y := a.MedlineCitation.Article.Journal.JournalIssue.PubDate.Year; y != "" {
		if yi, err := strconv.Atoi(y); err == nil {
			year = &yi
		}
	}

	var abstractParts []string
	for _, t := range a.MedlineCitation.Article.Abstract.AbstractText {
		abstractParts = append(abstractParts, t)
	}

	var doi, pmcid string
	for _, aid := range a.PubmedData.ArticleIDList.ArticleIDs {
		switch aid.IDType {
		case "doi":
			doi = normalizeDOI(aid.Value)
		case "pmc":
			pmcid = aid.Value
		}
	}

	var keywords []string
	for _, mh := range a.MedlineCitation.MeshHeadingList.MeshHeadings {
		if mh.DescriptorName != "" {
			keywords = append(keywords, mh.DescriptorName)
		}
	}
	keywords = capKeywords(keywords, 10)

	access := types.AccessPaywalled
	urls := map[string]string{
		"pubmed": fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", pmid),
	}
	if doi != "" {
		urls["doi"] = "https://doi.org/" + doi
		urls["scihub"] = "https://sci-hub.se/" + doi
	}
	if pmcid != "" {
		access = types.AccessOpen
		urls["pmc"] = fmt.Sprintf("https://www.ncbi.nlm.nih.gov/pmc/articles/%s/", pmcid)
		urls["pdf"] = fmt.Sprintf("https://www.ncbi.nlm.nih.gov/pmc/articles/%s/pdf/", pmcid)
	}

	p := &types.Paper{
		ID:         "pubmed_" + pmid,
		Title:      titleOrUnknown(a.MedlineCitation.Article.ArticleTitle),
		Authors:    authors,
		Year:       year,
		Journal:    a.MedlineCitation.Article.Journal.Title,
		DOI:        doi,
		PMID:       pmid,
		PMCID:      pmcid,
		Abstract:   normalizeWhitespace(strings.Join(abstractParts, " ")),
		Keywords:   keywords,
		AccessType: access,
		Source:     "pubmed",
		SourceType: types.SourcePeerReviewed,
		URLs:       urls,
	}
	if pmcid != "" {
		p.PDFURL = urls["pdf"]
	}
	return p
}

// esearch JSON response shapes.
type esearchResponse struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// efetch XML response shapes.
type pubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	MedlineCitation struct {
		PMID    string `xml:"PMID"`
		Article struct {
			ArticleTitle string `xml:"ArticleTitle"`
			Abstract     struct {
				AbstractText []string `xml:"AbstractText"`
			} `xml:"Abstract"`
			AuthorList struct {
				Authors []struct {
					LastName string `xml:"LastName"`
					ForeName string `xml:"ForeName"`
				} `xml:"Author"`
			} `xml:"AuthorList"`
			Journal struct {
				Title        string `xml:"Title"`
				JournalIssue struct {
					PubDate struct {
						Year string `xml:"Year"`
					} `xml:"PubDate"`
				} `xml:"JournalIssue"`
			} `xml:"Journal"`
		} `xml:"Article"`
		MeshHeadingList struct {
			MeshHeadings []struct {
				DescriptorName string `xml:"DescriptorName"`
			} `xml:"MeshHeading"`
		} `xml:"MeshHeadingList"`
	} `xml:"MedlineCitation"`
	PubmedData struct {
		ArticleIDList struct {
			ArticleIDs []struct {
				IDType string `xml:"IdType,attr"`
				Value  string `xml:",chardata"`
			} `xml:"ArticleId"`
		} `xml:"ArticleIdList"`
	} `xml:"PubmedData"`
}
