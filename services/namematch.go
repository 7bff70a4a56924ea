package services

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"kyc-hub/models"
)

var (
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	honorifics  = regexp.MustCompile(`\b(mr|mrs|ms|dr|prof|sir|shri|smt|kumari)\b\s*`)
)

// NormalizeName lower-cases name, drops punctuation and honorifics and collapses spaces
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = punctuation.ReplaceAllString(name, "")
	name = honorifics.ReplaceAllString(name, "")
	return strings.Join(strings.Fields(name), " ")
}

// MatchNames compares the name read from the document with the one the user typed
func MatchNames(extracted, entered string) models.NameMatch {
	a, b := NormalizeName(extracted), NormalizeName(entered)
	m := models.NameMatch{Extracted: a, Entered: b}
	if a == "" || b == "" {
		m.ConfidenceLevel = "no_data"
		m.Result = "insufficient_data"
		return m
	}

	m.Ratio = ratio(a, b)
	m.PartialRatio = partialRatio(a, b)
	m.TokenSortRatio = tokenSortRatio(a, b)
	m.TokenSetRatio = tokenSetRatio(a, b)
	m.Similarity = round1(m.Ratio*0.30 + m.PartialRatio*0.20 + m.TokenSortRatio*0.25 + m.TokenSetRatio*0.25)

	switch {
	case m.Similarity >= 95:
		m.Matches, m.ConfidenceLevel, m.Result = true, "very_high", "exact_match"
	case m.Similarity >= 85:
		m.Matches, m.ConfidenceLevel, m.Result = true, "high", "high_similarity"
	case m.Similarity >= 70:
		m.Matches, m.ConfidenceLevel, m.Result = true, "medium", "acceptable_match"
	default:
		m.ConfidenceLevel, m.Result = "low", "no_match"
	}
	return m
}

// ratio is the edit-distance similarity of a and b scaled to 0..100
func ratio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := max(la, lb)
	if longest == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return math.Round(100 * (1 - float64(dist)/float64(longest)))
}

// partialRatio scores the shorter string against its best aligned window in the longer one
func partialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}
	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		if r := ratio(string(short), string(long[i:i+len(short)])); r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

func sortedTokens(s string) []string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return tokens
}

func tokenSortRatio(a, b string) float64 {
	return ratio(strings.Join(sortedTokens(a), " "), strings.Join(sortedTokens(b), " "))
}

// tokenSetRatio ignores duplicated words and word order, so "rahul kumar" fully
// matches "rahul kumar sharma" on the shared part
func tokenSetRatio(a, b string) float64 {
	setA, setB := tokenSet(a), tokenSet(b)
	var common, onlyA, onlyB []string
	for t := range setA {
		if setB[t] {
			common = append(common, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range setB {
		if !setA[t] {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	t0 := strings.Join(common, " ")
	t1 := strings.TrimSpace(t0 + " " + strings.Join(onlyA, " "))
	t2 := strings.TrimSpace(t0 + " " + strings.Join(onlyB, " "))

	best := ratio(t1, t2)
	if t0 != "" {
		best = math.Max(best, math.Max(ratio(t0, t1), ratio(t0, t2)))
	}
	return best
}

func tokenSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, t := range strings.Fields(s) {
		set[t] = true
	}
	return set
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
