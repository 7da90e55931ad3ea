// Package consistency re-checks the contract that binds the three analysis
// views of one bill together: article ranges must be ordered and contiguous,
// references must not repeat a (billSection, section, code) triple, and the
// classifier's affected-code set must cover every code the reference
// extractor found. The three components never call each other, so this gate
// is the single place where their agreement is verified.
package consistency

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/coolbeans/billscan/pkg/article"
	"github.com/coolbeans/billscan/pkg/coderef"
	"github.com/coolbeans/billscan/pkg/complexity"
)

// Violation is one broken invariant.
type Violation struct {
	Check   string `json:"check"`
	Message string `json:"message"`
}

// Report aggregates the outcome of all consistency checks for one bill.
type Report struct {
	Passed     bool        `json:"passed"`
	Checks     int         `json:"checks"`
	Violations []Violation `json:"violations,omitempty"`
}

// Check verifies the cross-component invariants over the three outputs
// produced for the same bill text.
func Check(articles []article.Article, refs []coderef.Reference, result complexity.Result) *Report {
	report := &Report{Passed: true}

	checkArticleOrdering(report, articles)
	checkArticleCount(report, articles, result)
	checkDuplicateTriples(report, refs)
	checkAffectedCodes(report, refs, result)

	return report
}

func (r *Report) addViolation(check, format string, args ...any) {
	r.Passed = false
	r.Violations = append(r.Violations, Violation{
		Check:   check,
		Message: fmt.Sprintf(format, args...),
	})
}

func (r *Report) ran() { r.Checks++ }

// checkArticleOrdering verifies document order and contiguous,
// non-overlapping line ranges.
func checkArticleOrdering(report *Report, articles []article.Article) {
	report.ran()
	for i := range articles {
		if articles[i].StartLine > articles[i].EndLine {
			report.addViolation("article_ordering",
				"article %s has inverted range %d-%d",
				articles[i].Number, articles[i].StartLine, articles[i].EndLine)
		}
		if i == 0 {
			continue
		}
		if articles[i].StartLine <= articles[i-1].StartLine {
			report.addViolation("article_ordering",
				"article %s out of document order", articles[i].Number)
		}
		if articles[i].StartLine != articles[i-1].EndLine+1 {
			report.addViolation("article_ordering",
				"gap or overlap between articles %s and %s",
				articles[i-1].Number, articles[i].Number)
		}
	}
}

func checkArticleCount(report *Report, articles []article.Article, result complexity.Result) {
	report.ran()
	if result.ArticleCount != len(articles) {
		report.addViolation("article_count",
			"classifier counted %d articles, segmenter produced %d",
			result.ArticleCount, len(articles))
	}
}

func checkDuplicateTriples(report *Report, refs []coderef.Reference) {
	report.ran()
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		key := ref.BillSection + "\x00" + ref.Section + "\x00" + ref.Code
		if seen[key] {
			report.addViolation("duplicate_reference",
				"duplicate reference %s / %s / %s", ref.BillSection, ref.Section, ref.Code)
		}
		seen[key] = true
	}
}

// checkAffectedCodes verifies sortedness, deduplication, and the superset
// property over the extractor's codes.
func checkAffectedCodes(report *Report, refs []coderef.Reference, result complexity.Result) {
	report.ran()
	if !sort.StringsAreSorted(result.AffectedCodes) {
		report.addViolation("affected_codes", "affected codes are not sorted ascending")
	}

	affected := make(map[string]bool, len(result.AffectedCodes))
	for _, code := range result.AffectedCodes {
		if affected[code] {
			report.addViolation("affected_codes", "affected codes contain duplicate %q", code)
		}
		affected[code] = true
	}

	for _, ref := range refs {
		if !affected[ref.Code] {
			report.addViolation("affected_codes",
				"extractor code %q missing from affected codes", ref.Code)
		}
	}
}

// ToJSON serializes the report as indented JSON.
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// String returns a human-readable report.
func (r *Report) String() string {
	var b strings.Builder
	if r.Passed {
		fmt.Fprintf(&b, "consistency: %d checks passed\n", r.Checks)
		return b.String()
	}
	fmt.Fprintf(&b, "consistency: %d violation(s) across %d checks\n", len(r.Violations), r.Checks)
	for _, v := range r.Violations {
		fmt.Fprintf(&b, "  [%s] %s\n", v.Check, v.Message)
	}
	return b.String()
}
