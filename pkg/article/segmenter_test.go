package article

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func omnibusBill() string {
	return strings.Join([]string{
		"ARTICLE 1. GENERAL PROVISIONS",
		"SECTION 1.01.  Short title.",
		"SECTION 1.02.  Definitions.",
		"SECTION 1.03.  Applicability.",
		"ARTICLE 2. EDUCATION",
		"SECTION 2.01.  Section 29.001, Education Code, is amended.",
		"SECTION 2.02.  More text.",
		"SECTION 2.03.  More text.",
		"ARTICLE 3. HEALTH",
		"SECTION 3.01.  Text.",
		"SECTION 3.02.  Text.",
		"SECTION 3.03.  Text.",
		"ARTICLE 4. EFFECTIVE DATE",
		"SECTION 4.01.  This Act takes effect September 1, 2027.",
	}, "\n")
}

func TestParse_PartitionsSectionsByArticle(t *testing.T) {
	articles := Parse(omnibusBill())
	require.Len(t, articles, 4)

	assert.Equal(t, "1", articles[0].Number)
	assert.Equal(t, "GENERAL PROVISIONS", articles[0].Title)
	assert.Equal(t, []string{"1.01", "1.02", "1.03"}, articles[0].Sections)

	assert.Equal(t, []string{"2.01", "2.02", "2.03"}, articles[1].Sections)
	assert.Equal(t, []string{"3.01", "3.02", "3.03"}, articles[2].Sections)
	assert.Equal(t, []string{"4.01"}, articles[3].Sections)
}

func TestParse_LineRangesAreContiguous(t *testing.T) {
	articles := Parse(omnibusBill())
	require.Len(t, articles, 4)

	assert.Equal(t, 1, articles[0].StartLine)
	assert.Equal(t, 4, articles[0].EndLine)
	assert.Equal(t, 14, articles[3].EndLine, "final article runs to the last line")

	for i := 1; i < len(articles); i++ {
		assert.Equal(t, articles[i-1].EndLine+1, articles[i].StartLine,
			"ranges must be contiguous and non-overlapping")
		assert.Greater(t, articles[i].StartLine, articles[i-1].StartLine)
	}
}

func TestParse_RomanNumeralBoundaryMatching(t *testing.T) {
	text := strings.Join([]string{
		"ARTICLE I. DEFINITIONS",
		"SECTION 1.01.  Text.",
		"ARTICLE IV. PENALTIES",
		"SECTION 4.01.  Text.",
		"SECTION 4.02.  Text.",
	}, "\n")

	articles := Parse(text)
	require.Len(t, articles, 2)

	// Original numeral form is preserved, normalization is boundary-only.
	assert.Equal(t, "I", articles[0].Number)
	assert.Equal(t, "IV", articles[1].Number)
	assert.Equal(t, []string{"1.01"}, articles[0].Sections)
	assert.Equal(t, []string{"4.01", "4.02"}, articles[1].Sections)
}

func TestParse_BareSectionNumbersAttachToEnclosingArticle(t *testing.T) {
	text := strings.Join([]string{
		"ARTICLE 1. ONE",
		"SECTION 1.  Text.",
		"SECTION 2.  Text.",
		"ARTICLE 2. TWO",
		"SECTION 3.  Text.",
	}, "\n")

	articles := Parse(text)
	require.Len(t, articles, 2)
	assert.Equal(t, []string{"1", "2"}, articles[0].Sections)
	assert.Equal(t, []string{"3"}, articles[1].Sections)
}

func TestParse_MismatchedPrefixIsNotAttached(t *testing.T) {
	text := strings.Join([]string{
		"ARTICLE 1. ONE",
		"SECTION 1.01.  Text.",
		"SECTION 5.01.  Misfiled section.",
	}, "\n")

	articles := Parse(text)
	require.Len(t, articles, 1)
	assert.Equal(t, []string{"1.01"}, articles[0].Sections)
}

func TestParse_TitleOnNextLine(t *testing.T) {
	text := strings.Join([]string{
		"ARTICLE 1.",
		"GENERAL PROVISIONS",
		"SECTION 1.01.  Text.",
		"ARTICLE 2.",
		"SECTION 2.01.  Text.",
	}, "\n")

	articles := Parse(text)
	require.Len(t, articles, 2)
	assert.Equal(t, "GENERAL PROVISIONS", articles[0].Title)
	// Next line is a section declaration, so the fallback title applies.
	assert.Equal(t, "ARTICLE 2", articles[1].Title)
}

func TestParse_NoArticleStructure(t *testing.T) {
	text := "SECTION 1.  Section 5.001, Education Code, is amended.\nSECTION 2.  Effective date."

	articles := Parse(text)
	assert.Empty(t, articles)
	assert.False(t, HasArticleStructure(text))
	assert.Equal(t, 0, Count(text))
}

func TestParse_EmptyInput(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.False(t, HasArticleStructure(""))
}

func TestParse_CountMatchesParse(t *testing.T) {
	for _, text := range []string{"", "no structure at all", omnibusBill()} {
		assert.Equal(t, len(Parse(text)), Count(text))
		assert.Equal(t, len(Parse(text)) > 0, HasArticleStructure(text))
	}
}

func TestParse_Idempotent(t *testing.T) {
	text := omnibusBill()
	first := Parse(text)
	second := Parse(text)
	assert.Equal(t, first, second)
}

func TestFindForSection(t *testing.T) {
	articles := Parse(omnibusBill())

	found := FindForSection(articles, "3.02")
	require.NotNil(t, found)
	assert.Equal(t, "3", found.Number)

	assert.Nil(t, FindForSection(articles, "9.99"))
	assert.Nil(t, FindForSection(nil, "1.01"))
}

func TestParse_LargeSyntheticBill(t *testing.T) {
	// 40 articles, 25 sections each: the segmenter must stay near-linear
	// and partition every section exactly once.
	var b strings.Builder
	for a := 1; a <= 40; a++ {
		fmt.Fprintf(&b, "ARTICLE %d. SYNTHETIC ARTICLE %d\n", a, a)
		for s := 1; s <= 25; s++ {
			fmt.Fprintf(&b, "SECTION %d.%02d.  Section %d.%03d, Government Code, is amended.\n", a, s, a, s)
		}
	}

	articles := Parse(b.String())
	require.Len(t, articles, 40)

	total := 0
	for i, art := range articles {
		assert.Len(t, art.Sections, 25, "article %d", i+1)
		total += len(art.Sections)
	}
	assert.Equal(t, 1000, total)
}
