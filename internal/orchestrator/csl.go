// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrator

import (
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litfed/pkg/types"
)

// CSLItem is one bibliographic entry in CSL (Citation Style Language)
// YAML form, consumable by Pandoc and reference managers. Field names
// follow the CSL-JSON/CSL-YAML schema.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Volume         string    `yaml:"volume,omitempty"`
	Issue          string    `yaml:"issue,omitempty"`
	Page           string    `yaml:"page,omitempty"`
	Publisher      string    `yaml:"publisher,omitempty"`
}

// CSLName is a person's name in CSL form.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate is a CSL date-parts date.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

var cslTypeMap = map[types.SourceType]string{
	types.SourcePeerReviewed:   "article-journal",
	types.SourcePreprint:       "article",
	types.SourceConference:     "paper-conference",
	types.SourceThesis:         "thesis",
	types.SourceBookChapter:    "chapter",
	types.SourceGreyLiterature: "report",
	types.SourceUnknown:        "article",
}

// WriteCSL renders papers as a CSL-YAML bibliography to w.
func WriteCSL(w io.Writer, papers []types.Paper) error {
	items := make([]CSLItem, len(papers))
	for i, p := range papers {
		items[i] = toCSLItem(p)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

func toCSLItem(p types.Paper) CSLItem {
	item := CSLItem{
		ID:             p.ID,
		Type:           cslTypeMap[p.SourceType],
		Title:          p.Title,
		Abstract:       p.Abstract,
		DOI:            p.DOI,
		ContainerTitle: p.Journal,
		Volume:         p.Volume,
		Issue:          p.Issue,
		Page:           p.Pages,
		Publisher:      p.Publisher,
	}
	if item.Type == "" {
		item.Type = "article"
	}
	for _, a := range p.Authors {
		item.Author = append(item.Author, parseAuthorName(a.Name))
	}
	if p.Year != nil {
		item.Issued = &CSLDate{DateParts: [][]int{{*p.Year}}}
	}
	return item
}

// parseAuthorName splits a full name on its last space: everything
// before is given, the last token is family. Single-token names use the
// literal field instead.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{Given: name[:idx], Family: name[idx+1:]}
}
