// Package billtext provides the shared structural scan over raw bill text.
//
// Legislative bills are line-oriented: top-level divisions are declared by
// ARTICLE lines and units of legislative text by SECTION lines. The article
// segmenter, code reference extractor, and complexity classifier all consume
// the single token stream produced here, so they can never disagree on what
// counts as an article or section declaration.
package billtext

import (
	"regexp"
	"strconv"
	"strings"
)

// TokenKind identifies the structural role of one line of bill text.
type TokenKind string

const (
	// TokenArticle is a top-level ARTICLE declaration line.
	TokenArticle TokenKind = "article"
	// TokenSection is a bill SECTION declaration line.
	TokenSection TokenKind = "section"
	// TokenLine is any other line.
	TokenLine TokenKind = "line"
)

// Token is one line of bill text with its structural classification.
type Token struct {
	Kind TokenKind
	// Line is the 0-indexed line number within the document.
	Line int
	// Number is the captured numeral of an article ("1", "IV") or section
	// ("1", "2.01") declaration; empty for plain lines.
	Number string
	// Title is the heading text trailing an ARTICLE declaration, trimmed.
	Title string
	// Text is the raw line as it appeared in the input.
	Text string
}

// Scan is the tokenized form of one bill.
type Scan struct {
	Lines  []string
	Tokens []Token
	// Articles and Sections index into Tokens in document order.
	Articles []int
	Sections []int
}

var (
	// "ARTICLE 1. SHORT TITLE" or "ARTICLE IV." — numeral may be Arabic or
	// Roman, matching is case-insensitive after trimming the line.
	articleDeclPattern = regexp.MustCompile(`(?i)^ARTICLE\s+(\d+|[IVXLCDM]+)\.\s*(.*)$`)

	// "SECTION 1." or "SECTION 2.01." — deliberately case-sensitive:
	// lowercase "Section 124.002, Government Code" is a statutory reference,
	// not a bill section declaration.
	sectionDeclPattern = regexp.MustCompile(`^SECTION\s+(\d+(?:\.\d+)?)\.`)
)

// Tokenize splits text into lines and classifies each one. Empty input
// produces an empty scan; Tokenize never fails.
func Tokenize(text string) *Scan {
	if text == "" {
		return &Scan{}
	}

	lines := strings.Split(text, "\n")
	scan := &Scan{
		Lines:  lines,
		Tokens: make([]Token, 0, len(lines)),
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if m := articleDeclPattern.FindStringSubmatch(trimmed); m != nil {
			scan.Articles = append(scan.Articles, len(scan.Tokens))
			scan.Tokens = append(scan.Tokens, Token{
				Kind:   TokenArticle,
				Line:   i,
				Number: m[1],
				Title:  strings.TrimSpace(m[2]),
				Text:   line,
			})
			continue
		}

		if m := sectionDeclPattern.FindStringSubmatch(trimmed); m != nil {
			scan.Sections = append(scan.Sections, len(scan.Tokens))
			scan.Tokens = append(scan.Tokens, Token{
				Kind:   TokenSection,
				Line:   i,
				Number: m[1],
				Text:   line,
			})
			continue
		}

		scan.Tokens = append(scan.Tokens, Token{Kind: TokenLine, Line: i, Text: line})
	}

	return scan
}

// IsSectionDecl reports whether a single line (after trimming) is a bill
// section declaration.
func IsSectionDecl(line string) bool {
	return sectionDeclPattern.MatchString(strings.TrimSpace(line))
}

// IsArticleDecl reports whether a single line (after trimming) is an ARTICLE
// declaration.
func IsArticleDecl(line string) bool {
	return articleDeclPattern.MatchString(strings.TrimSpace(line))
}

// CodeNameFragment is the capturing regexp fragment for a statutory code name
// ("Government Code", "Health and Safety Code", "EDUCATION CODE"). Both the
// reference extractor and the complexity classifier embed it, so the two keep
// an identical extraction vocabulary.
const CodeNameFragment = `((?:[A-Za-z']+\s+){1,6}?(?i:code))\b`

// NormalizeCodeName canonicalizes a matched code name: every token is
// title-cased except the literal word "and", which stays lowercase.
// "EDUCATION CODE" and "education code" both normalize to "Education Code".
func NormalizeCodeName(name string) string {
	fields := strings.Fields(name)
	for i, f := range fields {
		if strings.EqualFold(f, "and") {
			fields[i] = "and"
			continue
		}
		fields[i] = titleCase(f)
	}
	return strings.Join(fields, " ")
}

func titleCase(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
}

// NumeralValue converts an article numeral in either system ("7", "IV") to
// its integer value. Returns 0 for anything unrecognizable.
func NumeralValue(numeral string) int {
	if numeral == "" {
		return 0
	}
	if n, err := strconv.Atoi(numeral); err == nil {
		return n
	}
	if n, ok := RomanToInt(numeral); ok {
		return n
	}
	return 0
}
