// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitle_StopwordsAndPunctuation(t *testing.T) {
	assert.Equal(t, "role enzyme", normalizeTitle("The Role of A, an Enzyme"))
}

func TestNormalizeTitle_Idempotent(t *testing.T) {
	cases := []string{
		"The Role of A, an Enzyme",
		"Attention Is All You Need",
		"",
		"   multiple   spaces   ",
	}
	for _, c := range cases {
		once := normalizeTitle(c)
		twice := normalizeTitle(once)
		assert.Equal(t, once, twice, "normalizeTitle should be idempotent for %q", c)
	}
}

func TestNormalizeTitle_StopwordInvariant(t *testing.T) {
	assert.Equal(t, normalizeTitle("cat"), normalizeTitle("the cat"))
}

func TestNormalizeTerms(t *testing.T) {
	terms := normalizeTerms("Attention Is All You Need")
	assert.True(t, terms["attention"])
	assert.True(t, terms["need"])
	assert.True(t, terms["all"])
	assert.False(t, terms["the"]) // stopword, never retained
}
