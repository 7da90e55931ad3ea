// Package complexity derives a whole-document classification for a bill:
// how structurally complex it is and which drafting pattern it follows.
// Downstream routing uses the tags to separate omnibus bills and global
// terminology substitutions from ordinary targeted amendments.
package complexity

import (
	"regexp"
	"sort"
	"strings"

	"github.com/coolbeans/billscan/pkg/billtext"
)

// Level is the four-tier complexity classification.
type Level string

const (
	LevelSimple   Level = "simple"
	LevelModerate Level = "moderate"
	LevelComplex  Level = "complex"
	LevelOmnibus  Level = "omnibus"
)

// BillPattern tags the overall drafting pattern of a bill.
type BillPattern string

const (
	PatternTerminologyReplacement BillPattern = "terminology_replacement"
	PatternOmnibus                BillPattern = "omnibus"
	PatternSingleCode             BillPattern = "single_code"
	PatternNone                   BillPattern = "none"
)

// TerminologyReplacement describes a detected global term substitution.
type TerminologyReplacement struct {
	FromTerm string `json:"from_term"`
	ToTerm   string `json:"to_term"`
	// OccurrenceCount is how many times FromTerm appears anywhere in the
	// bill text.
	OccurrenceCount int `json:"occurrence_count"`
}

// Result is the whole-document classification.
type Result struct {
	Complexity   Level       `json:"complexity"`
	Pattern      BillPattern `json:"pattern"`
	ArticleCount int         `json:"article_count"`
	SectionCount int         `json:"section_count"`
	// AffectedCodes is sorted ascending and deduplicated. It is a superset
	// of every code name the reference extractor produces for the same
	// text: both draw on the same code-name vocabulary.
	AffectedCodes          []string                `json:"affected_codes"`
	TerminologyReplacement *TerminologyReplacement `json:"terminology_replacement,omitempty"`
}

var (
	// Pass one: a structural locator followed by a code name, the same
	// shapes the reference extractor matches.
	locatorCodePattern = regexp.MustCompile(
		`(?:Section|Subchapter|Chapter|Subtitle|Title)\s+[0-9A-Za-z.()-]+` +
			`(?:\s+or\s+\([a-z0-9-]+\))*\s*,\s+` + billtext.CodeNameFragment)

	// Pass two: bare "the Education Code" mentions.
	bareCodePattern = regexp.MustCompile(
		`\bthe\s+((?:(?:[A-Z][A-Za-z']*|and)\s+){1,6}?(?:Code|CODE))\b`)

	// Explicit global substitution declaration; one occurrence suffices.
	// `a reference in law to "X" means "Y"` style drafting.
	explicitReplacementPattern = regexp.MustCompile(
		`(?i)(?:each|every|all)\s+references?\s+to\s+"([^"]+)"\s+(?:means?|is|are)\s+"([^"]+)"`)

	// Strike-and-substitute construction; a global rename only when it
	// recurs, a single occurrence is an ordinary targeted edit.
	strikingPattern = regexp.MustCompile(
		`(?i)striking\s+"([^"]+)"\s+and\s+substituting\s+"([^"]+)"`)
)

// minStrikingOccurrences is the recurrence floor for accepting the
// strike-and-substitute form as a global terminology replacement.
const minStrikingOccurrences = 3

// Detect classifies text. Empty or malformed input yields the zeroed
// simple/none result; Detect never fails.
func Detect(text string) Result {
	scan := billtext.Tokenize(text)

	sectionCount := len(scan.Sections)
	articleCount := len(scan.Articles)
	codes := affectedCodes(text)
	terminology := detectTerminologyReplacement(text)

	return Result{
		Complexity:             classify(sectionCount, articleCount, len(codes)),
		Pattern:                patternTag(terminology, articleCount, sectionCount, len(codes)),
		ArticleCount:           articleCount,
		SectionCount:           sectionCount,
		AffectedCodes:          codes,
		TerminologyReplacement: terminology,
	}
}

// affectedCodes unions the locator-qualified and bare-mention passes into a
// sorted, deduplicated set of normalized code names.
func affectedCodes(text string) []string {
	seen := make(map[string]bool)

	for _, m := range locatorCodePattern.FindAllStringSubmatch(text, -1) {
		seen[billtext.NormalizeCodeName(m[1])] = true
	}
	for _, m := range bareCodePattern.FindAllStringSubmatch(text, -1) {
		seen[billtext.NormalizeCodeName(m[1])] = true
	}

	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// detectTerminologyReplacement tries the explicit declaration first, then the
// repeated strike-and-substitute construction.
func detectTerminologyReplacement(text string) *TerminologyReplacement {
	if m := explicitReplacementPattern.FindStringSubmatch(text); m != nil {
		return &TerminologyReplacement{
			FromTerm:        m[1],
			ToTerm:          m[2],
			OccurrenceCount: countOccurrences(text, m[1]),
		}
	}

	matches := strikingPattern.FindAllStringSubmatch(text, -1)
	if len(matches) < minStrikingOccurrences {
		return nil
	}

	// Count per term pair; accept the dominant pair if it recurs enough.
	type pair struct{ from, to string }
	counts := make(map[pair]int)
	order := make([]pair, 0)
	for _, m := range matches {
		p := pair{strings.ToLower(m[1]), strings.ToLower(m[2])}
		if counts[p] == 0 {
			order = append(order, p)
		}
		counts[p]++
	}

	var best pair
	bestCount := 0
	for _, p := range order {
		if counts[p] > bestCount {
			best, bestCount = p, counts[p]
		}
	}
	if bestCount < minStrikingOccurrences {
		return nil
	}

	// Report the original-case spelling from the first matching occurrence.
	for _, m := range matches {
		if strings.EqualFold(m[1], best.from) && strings.EqualFold(m[2], best.to) {
			return &TerminologyReplacement{
				FromTerm:        m[1],
				ToTerm:          m[2],
				OccurrenceCount: countOccurrences(text, m[1]),
			}
		}
	}
	return nil
}

func countOccurrences(text, term string) int {
	if term == "" {
		return 0
	}
	return strings.Count(strings.ToLower(text), strings.ToLower(term))
}

// classify evaluates the threshold rules as an ordered decision list; later
// rules are coarser fallbacks, not independent conditions.
func classify(sectionCount, articleCount, codeCount int) Level {
	switch {
	case articleCount > 0 || sectionCount > 50:
		return LevelOmnibus
	case sectionCount >= 11 || codeCount >= 3:
		return LevelComplex
	case sectionCount >= 4 && codeCount <= 2:
		return LevelModerate
	case sectionCount <= 3 && codeCount <= 1:
		return LevelSimple
	case sectionCount <= 10:
		return LevelModerate
	default:
		return LevelComplex
	}
}

// patternTag resolves the bill pattern in priority order: terminology
// replacement, omnibus, single code, none.
func patternTag(terminology *TerminologyReplacement, articleCount, sectionCount, codeCount int) BillPattern {
	switch {
	case terminology != nil:
		return PatternTerminologyReplacement
	case articleCount > 0 || sectionCount > 50:
		return PatternOmnibus
	case codeCount == 1:
		return PatternSingleCode
	default:
		return PatternNone
	}
}
