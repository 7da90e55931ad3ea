// Package coderef extracts references to external statutory codes from bill
// text and classifies the edit each reference performs.
//
// A bill amends codified law with recurring drafting formulas: "Section
// 124.002(a), Government Code, is amended to read as follows", "Subchapter B,
// Chapter 21, Education Code, is repealed", "Title 2, Education Code, is
// amended by adding Chapter 29A". The extractor recognizes this closed set of
// patterns; it does not validate that a referenced provision exists.
package coderef

import (
	"regexp"
	"strings"

	"github.com/coolbeans/billscan/pkg/billtext"
)

// Action classifies the edit a reference performs on the cited provision.
type Action string

const (
	ActionAdd    Action = "add"
	ActionAmend  Action = "amend"
	ActionRepeal Action = "repeal"
)

// Reference is one statutory-edit reference found in a bill.
type Reference struct {
	// Code is the normalized code name, e.g. "Education Code".
	Code       string `json:"code"`
	Title      string `json:"title,omitempty"`
	Subtitle   string `json:"subtitle,omitempty"`
	Chapter    string `json:"chapter,omitempty"`
	Subchapter string `json:"subchapter,omitempty"`
	// Section is the base locator of the cited provision. For section
	// references this is the section number with any inline qualifier
	// ("124.002(a)"); for chapter, subchapter, and title references it is
	// the full locator ("Subchapter B, Chapter 21").
	Section string `json:"section"`
	// Subsections holds the deduplicated parenthetical qualifiers attached
	// to the reference, e.g. ["(a)", "(b-1)"].
	Subsections []string `json:"subsections,omitempty"`
	Action      Action   `json:"action"`
	// BillSection is the enclosing bill section, "SECTION 1" or "SECTION 2.01".
	BillSection string `json:"bill_section"`
	// RawText is the exact matched substring, kept for diagnostics.
	RawText string `json:"raw_text"`
}

// Extractor holds the compiled reference patterns. The zero value is not
// usable; construct with NewExtractor. A single Extractor is safe for
// concurrent use: Go's regexp matching is stateless, every call scans its
// own input from the beginning.
type Extractor struct {
	// "Section 124.002(a) or (b), Government Code"
	sectionPattern *regexp.Regexp
	// "Subchapter B, Chapter 21, Education Code" / "Chapter 45, Government Code"
	chapterPattern *regexp.Regexp
	// "Title 2, Education Code" / "Subtitle C, Labor Code"
	titlePattern *regexp.Regexp

	// Qualifier harvesting
	parenQualifierPattern *regexp.Regexp
	amendingSubsPattern   *regexp.Regexp
	leadingChapterPattern *regexp.Regexp

	// Action classification
	addPattern    *regexp.Regexp
	repealPattern *regexp.Regexp
}

// NewExtractor compiles the pattern set.
func NewExtractor() *Extractor {
	return &Extractor{
		sectionPattern: regexp.MustCompile(
			`Section\s+(\d+[A-Za-z]?(?:\.\d+[A-Za-z]?)?(?:\([a-z0-9][a-z0-9-]*\))*` +
				`(?:\s+or\s+\([a-z0-9][a-z0-9-]*\))*)\s*,\s+` + billtext.CodeNameFragment),
		chapterPattern: regexp.MustCompile(
			`(Subchapter|Chapter)\s+([A-Z0-9]+(?:\.\d+)?)(?:,\s*Chapter\s+(\d+(?:\.\d+)?))?,\s+` +
				billtext.CodeNameFragment),
		titlePattern: regexp.MustCompile(
			`(Subtitle|Title)\s+([A-Z0-9]+(?:\.\d+)?),\s+` + billtext.CodeNameFragment),

		parenQualifierPattern: regexp.MustCompile(`\([a-z0-9][a-z0-9-]*\)`),
		amendingSubsPattern: regexp.MustCompile(
			`(?i)amending\s+Subsections?\s+((?:\([a-z0-9-]+\)(?:\s*,\s*(?:and\s+)?|\s+and\s+)?)+)`),
		leadingChapterPattern: regexp.MustCompile(`^(\d+)\.`),

		addPattern: regexp.MustCompile(
			`(?i)is\s+amended\s+by\s+adding\s+(?:Section|Chapter|Subchapter|Subsection|Subdivision)` +
				`|(?:is|are)\s+added\s+to\s+read\s+as\s+follows`),
		repealPattern: regexp.MustCompile(`(?i)\b(?:is|are)\s+repealed\b`),
	}
}

var defaultExtractor = NewExtractor()

// Parse extracts every statutory code reference from text using the shared
// default pattern set. Empty or malformed input yields an empty slice; Parse
// never fails.
func Parse(text string) []Reference {
	return defaultExtractor.Parse(text)
}

// billSectionSpan is one bill section's identifier and accumulated text.
type billSectionSpan struct {
	label string
	text  string
}

// Parse extracts every statutory code reference from text.
func (e *Extractor) Parse(text string) []Reference {
	scan := billtext.Tokenize(text)
	if len(scan.Lines) == 0 {
		return []Reference{}
	}

	refs := make([]Reference, 0)
	seen := make(map[refKey]bool)
	for _, span := range splitBillSections(scan, text) {
		for _, ref := range e.extractFromSpan(span) {
			key := refKey{span.label, ref.Section, ref.Code}
			if seen[key] {
				continue
			}
			seen[key] = true
			refs = append(refs, ref)
		}
	}
	return refs
}

type refKey struct {
	billSection string
	section     string
	code        string
}

// splitBillSections groups the document into per-bill-section spans. Each
// span starts at a SECTION declaration line and runs to the line before the
// next one. A document with no declarations at all becomes a single implicit
// "SECTION 1" span.
func splitBillSections(scan *billtext.Scan, text string) []billSectionSpan {
	if len(scan.Sections) == 0 {
		return []billSectionSpan{{label: "SECTION 1", text: text}}
	}

	spans := make([]billSectionSpan, 0, len(scan.Sections))
	for i, tokIdx := range scan.Sections {
		tok := scan.Tokens[tokIdx]

		end := len(scan.Lines)
		if i+1 < len(scan.Sections) {
			end = scan.Tokens[scan.Sections[i+1]].Line
		}

		spans = append(spans, billSectionSpan{
			label: "SECTION " + tok.Number,
			text:  strings.Join(scan.Lines[tok.Line:end], "\n"),
		})
	}
	return spans
}

// extractFromSpan applies the three pattern families to one span. The
// families are independent; each produces zero or more references.
func (e *Extractor) extractFromSpan(span billSectionSpan) []Reference {
	var refs []Reference
	refs = append(refs, e.extractSectionRefs(span)...)
	refs = append(refs, e.extractChapterRefs(span)...)
	refs = append(refs, e.extractTitleRefs(span)...)
	return refs
}

// extractSectionRefs handles "Section <num>[(qualifier)][ or (qualifier)], <Code>".
func (e *Extractor) extractSectionRefs(span billSectionSpan) []Reference {
	var refs []Reference
	for _, m := range e.sectionPattern.FindAllStringSubmatchIndex(span.text, -1) {
		rawText := span.text[m[0]:m[1]]
		locator := span.text[m[2]:m[3]]
		codeName := span.text[m[4]:m[5]]
		window := actionWindow(span.text, m[0], m[1])

		// The base section keeps its inline qualifier; only the
		// " or (x)" continuation is trimmed off.
		base := locator
		if idx := strings.Index(locator, " or "); idx >= 0 {
			base = strings.TrimSpace(locator[:idx])
		}

		ref := Reference{
			Code:        billtext.NormalizeCodeName(codeName),
			Section:     base,
			Subsections: e.harvestSubsections(locator, window),
			Action:      e.classifyAction(window),
			BillSection: span.label,
			RawText:     rawText,
		}

		// "124.002" implies Chapter 124.
		if cm := e.leadingChapterPattern.FindStringSubmatch(base); cm != nil {
			ref.Chapter = "Chapter " + cm[1]
		}

		refs = append(refs, ref)
	}
	return refs
}

// extractChapterRefs handles "(Subchapter|Chapter) <id>[, Chapter <n>], <Code>".
func (e *Extractor) extractChapterRefs(span billSectionSpan) []Reference {
	var refs []Reference
	for _, m := range e.chapterPattern.FindAllStringSubmatchIndex(span.text, -1) {
		rawText := span.text[m[0]:m[1]]
		kind := span.text[m[2]:m[3]]
		id := span.text[m[4]:m[5]]
		codeName := span.text[m[8]:m[9]]
		window := actionWindow(span.text, m[0], m[1])

		locator := kind + " " + id
		ref := Reference{
			Code:        billtext.NormalizeCodeName(codeName),
			Action:      e.classifyAction(window),
			BillSection: span.label,
			RawText:     rawText,
		}

		if kind == "Subchapter" {
			ref.Subchapter = locator
			// Optional enclosing chapter: "Subchapter B, Chapter 21, ...".
			if m[6] != -1 {
				ref.Chapter = "Chapter " + span.text[m[6]:m[7]]
				locator += ", " + ref.Chapter
			}
		} else {
			ref.Chapter = locator
		}
		ref.Section = locator

		refs = append(refs, ref)
	}
	return refs
}

// extractTitleRefs handles "(Title|Subtitle) <id>, <Code>".
func (e *Extractor) extractTitleRefs(span billSectionSpan) []Reference {
	var refs []Reference
	for _, m := range e.titlePattern.FindAllStringSubmatchIndex(span.text, -1) {
		rawText := span.text[m[0]:m[1]]
		kind := span.text[m[2]:m[3]]
		id := span.text[m[4]:m[5]]
		codeName := span.text[m[6]:m[7]]
		window := actionWindow(span.text, m[0], m[1])

		locator := kind + " " + id
		ref := Reference{
			Code:        billtext.NormalizeCodeName(codeName),
			Section:     locator,
			Action:      e.classifyAction(window),
			BillSection: span.label,
			RawText:     rawText,
		}
		if kind == "Subtitle" {
			ref.Subtitle = locator
		} else {
			ref.Title = locator
		}
		refs = append(refs, ref)
	}
	return refs
}

// actionWindowBefore/After bound the text inspected around a match when
// classifying its action.
const (
	actionWindowBefore = 20
	actionWindowAfter  = 100
)

func actionWindow(text string, matchStart, matchEnd int) string {
	start := matchStart - actionWindowBefore
	if start < 0 {
		start = 0
	}
	end := matchEnd + actionWindowAfter
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}

// classifyAction resolves the edit kind for one reference window. Add wins
// over amend: "is amended by adding Section ..." is the standard idiom for
// introducing new material, and its window also contains "is amended".
func (e *Extractor) classifyAction(window string) Action {
	if e.addPattern.MatchString(window) {
		return ActionAdd
	}
	if e.repealPattern.MatchString(window) {
		return ActionRepeal
	}
	return ActionAmend
}

// harvestSubsections unions the parenthetical qualifiers from the matched
// locator (including any " or (x)" continuation) with an "amending
// Subsections (a) and (b)" construction anywhere in the window, preserving
// first-appearance order.
func (e *Extractor) harvestSubsections(locator, window string) []string {
	var subs []string
	seen := make(map[string]bool)

	add := func(q string) {
		if !seen[q] {
			seen[q] = true
			subs = append(subs, q)
		}
	}

	for _, q := range e.parenQualifierPattern.FindAllString(locator, -1) {
		add(q)
	}
	if m := e.amendingSubsPattern.FindStringSubmatch(window); m != nil {
		for _, q := range e.parenQualifierPattern.FindAllString(m[1], -1) {
			add(q)
		}
	}
	return subs
}
