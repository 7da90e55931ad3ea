// Package article segments a bill into its top-level ARTICLE blocks.
//
// An omnibus bill declares articles on their own lines ("ARTICLE 2. HEALTH
// PROVISIONS") and numbers the sections inside each article with the
// article's value as prefix ("SECTION 2.01."). The segmenter computes each
// article's title, inclusive line range, and owned section numbers.
package article

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/coolbeans/billscan/pkg/billtext"
)

// Article is one ARTICLE block of a bill.
type Article struct {
	// Number preserves the numeral system used in the bill ("1" or "IV");
	// it is never silently normalized.
	Number string `json:"article_number"`
	Title  string `json:"title"`
	// StartLine and EndLine are 1-indexed and inclusive. StartLine is the
	// declaration line; EndLine is the line before the next declaration, or
	// the last line of the document for the final article.
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`
	// Sections holds the bill section numbers falling inside this article,
	// in document order.
	Sections []string `json:"sections"`
}

// Upper-case heading line, e.g. "GENERAL PROVISIONS". Used for the
// title-on-next-line drafting convention.
var upperHeadingPattern = regexp.MustCompile(`^[A-Z][A-Z ]*$`)

// Parse segments text into its ARTICLE blocks. A bill without article
// structure yields an empty slice; Parse never fails.
func Parse(text string) []Article {
	scan := billtext.Tokenize(text)

	articles := make([]Article, 0, len(scan.Articles))
	for i, tokIdx := range scan.Articles {
		tok := scan.Tokens[tokIdx]

		// Boundary runs to the line before the next declaration, or to the
		// end of the document for the final article.
		endLine := len(scan.Lines) - 1
		if i+1 < len(scan.Articles) {
			endLine = scan.Tokens[scan.Articles[i+1]].Line - 1
		}

		articles = append(articles, Article{
			Number:    tok.Number,
			Title:     articleTitle(scan, tok, endLine),
			StartLine: tok.Line + 1,
			EndLine:   endLine + 1,
			Sections:  sectionsInRange(scan, tok.Number, tok.Line, endLine),
		})
	}

	return articles
}

// articleTitle resolves the heading for one declaration. A title on the
// declaration line itself wins; otherwise an all-caps heading on the next
// line is accepted, and "ARTICLE {number}" is the fallback.
func articleTitle(scan *billtext.Scan, tok billtext.Token, endLine int) string {
	if tok.Title != "" {
		return tok.Title
	}

	next := tok.Line + 1
	if next < len(scan.Lines) && next <= endLine {
		candidate := strings.TrimSpace(scan.Lines[next])
		if upperHeadingPattern.MatchString(candidate) && !billtext.IsSectionDecl(candidate) {
			return candidate
		}
	}

	return "ARTICLE " + tok.Number
}

// sectionsInRange collects section numbers declared between startLine and
// endLine. A dotted number ("2.01") must carry this article's value as its
// integer prefix; a bare number ("3") belongs to whichever article encloses
// it, covering bills that do not use per-article numbering.
func sectionsInRange(scan *billtext.Scan, articleNumeral string, startLine, endLine int) []string {
	articleValue := billtext.NumeralValue(articleNumeral)

	var sections []string
	for _, tokIdx := range scan.Sections {
		tok := scan.Tokens[tokIdx]
		if tok.Line < startLine || tok.Line > endLine {
			continue
		}

		if dot := strings.Index(tok.Number, "."); dot >= 0 {
			prefix, err := strconv.Atoi(tok.Number[:dot])
			if err != nil || prefix != articleValue {
				continue
			}
		}
		sections = append(sections, tok.Number)
	}
	return sections
}

// HasArticleStructure reports whether text contains at least one ARTICLE
// declaration.
func HasArticleStructure(text string) bool {
	return len(billtext.Tokenize(text).Articles) > 0
}

// Count returns the number of ARTICLE declarations in text.
func Count(text string) int {
	return len(billtext.Tokenize(text).Articles)
}

// FindForSection returns the first article whose Sections contain
// sectionNumber, or nil when no article owns it.
func FindForSection(articles []Article, sectionNumber string) *Article {
	for i := range articles {
		for _, s := range articles[i].Sections {
			if s == sectionNumber {
				return &articles[i]
			}
		}
	}
	return nil
}
