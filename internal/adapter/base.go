// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/litfed/internal/httputil"
	"github.com/pdiddy/litfed/pkg/types"
)

var baseSearchAPI = "https://api.base-search.net/cgi-bin/BaseHttpSearchInterface.fcgi"

// maxBaseHits mirrors BASE's own hard per-request ceiling; the adapter
// makes exactly one request per Search call rather than paginating.
const maxBaseHits = 125

// BaseBackend queries the Bielefeld Academic Search Engine. BASE's JSON
// fields (authors, subjects, links...) are inconsistently emitted as
// either a bare scalar or a list depending on cardinality, so every such
// field is decoded through flexString/flexStrings below.
type BaseBackend struct {
	Client *httputil.Client
}

func NewBaseBackend(userAgent string) *BaseBackend {
	return &BaseBackend{Client: httputil.NewClient(0, Rates["base"], userAgent)}
}

func (b *BaseBackend) Name() string { return "base" }

func (b *BaseBackend) Search(ctx context.Context, query string, maxResults int) ([]types.Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	if maxResults <= 0 || maxResults > maxBaseHits {
		maxResults = maxBaseHits
	}

	params := url.Values{
		"func":   {"PerformSearch"},
		"query":  {query},
		"hits":   {strconv.Itoa(maxResults)},
		"format": {"json"},
	}
	resp, err := b.Client.Get(ctx, baseSearchAPI, params, nil)
	if err != nil {
		return nil, err
	}
	parsed, err := httputil.JSON[baseResponse](resp)
	if err != nil {
		return nil, err
	}
	var papers []types.Paper
	for _, doc := range parsed.Response.Docs {
		if p := b.parseDoc(doc); p != nil {
			papers = append(papers, *p)
		}
	}
	return papers, nil
}

// GetByID: BASE exposes no single-record lookup endpoint.
func (b *BaseBackend) GetByID(ctx context.Context, id string) (*types.Paper, error) {
	return nil, nil
}

func (b *BaseBackend) parseDoc(d baseDoc) *types.Paper {
	title := strings.TrimSpace(string(d.Title))
	docID := strings.TrimSpace(string(d.DocID))
	if docID == "" {
		return nil
	}

	var authors []types.Author
	for _, name := range d.Author.values() {
		if name != "" {
			authors = append(authors, types.Author{Name: name})
		}
	}

	var year *int
	if yr := firstDigits(string(d.Year)); yr != "" {
		if yi, ok := atoiDigits(yr); ok {
			year = &yi
		}
	}

	doi := scavengeDOI(strings.Join(d.Identifier.values(), " "))
	doi = normalizeDOI(doi)

	urls := map[string]string{}
	if doi != "" {
		urls["doi"] = "https://doi.org/" + doi
		urls["scihub"] = "https://sci-hub.se/" + doi
	}
	var pdfURL string
	for _, link := range d.Link.values() {
		if strings.HasSuffix(strings.ToLower(link), ".pdf") && pdfURL == "" {
			pdfURL = link
		}
	}
	if pdfURL != "" {
		urls["pdf"] = pdfURL
	}

	access := types.AccessUnknown
	if oa := string(d.OA); oa == "1" {
		access = types.AccessOpen
	}

	return &types.Paper{
		ID:         "base_" + docID,
		Title:      titleOrUnknown(title),
		Authors:    authors,
		Year:       year,
		Journal:    strings.TrimSpace(string(d.Source)),
		DOI:        doi,
		Abstract:   normalizeWhitespace(string(d.Abstract)),
		Keywords:   capKeywords(d.Subject.values(), 10),
		AccessType: access,
		PDFURL:     pdfURL,
		Source:     "base",
		SourceType: types.SourceGreyLiterature,
		URLs:       urls,
	}
}

func firstDigits(s string) string {
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start == -1 {
				start = i
			}
		} else if start != -1 {
			return s[start:i]
		}
	}
	if start != -1 {
		return s[start:]
	}
	return ""
}

type baseResponse struct {
	Response struct {
		Docs []baseDoc `json:"docs"`
	} `json:"response"`
}

// flexString decodes a JSON value that may be a bare string or a list of
// strings, keeping only the first element of a list.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var ss []string
	if err := json.Unmarshal(b, &ss); err == nil {
		*f = flexString(first(ss))
		return nil
	}
	*f = ""
	return nil
}

type flexStrings []string

func (f *flexStrings) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexStrings{s}
		return nil
	}
	var ss []string
	if err := json.Unmarshal(b, &ss); err == nil {
		*f = flexStrings(ss)
		return nil
	}
	*f = nil
	return nil
}

func (f flexStrings) values() []string { return []string(f) }

type baseDoc struct {
	DocID      flexString  `json:"dcdocid"`
	Title      flexString  `json:"dctitle"`
	Author     flexStrings `json:"dcauthor"`
	Year       flexString  `json:"dcyear"`
	Abstract   flexString  `json:"dcdescription"`
	Subject    flexStrings `json:"dcsubject"`
	Identifier flexStrings `json:"dcidentifier"`
	Link       flexStrings `json:"dclink"`
	Source     flexString  `json:"dcsource"`
	OA         flexString  `json:"dcoa"`
}
