// Package querynorm turns raw user queries into normalised queries:
// lowercased, whitespace-collapsed text plus the statutory citations
// and case-number-like identifiers recognised in it. The same
// extraction runs over judgment text at index build time so query
// citations and indexed legal terms share one canonical form.
package querynorm

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/index"
)

// actAliases maps every recognised spelling of a statute to its
// canonical act key. Multi-word aliases are matched longest-first.
var actAliases = map[string]string{
	"ppc":                        "ppc",
	"p.p.c":                      "ppc",
	"pakistan penal code":        "ppc",
	"penal code":                 "ppc",
	"crpc":                       "crpc",
	"cr.p.c":                     "crpc",
	"code of criminal procedure": "crpc",
	"criminal procedure code":    "crpc",
	"cpc":                        "cpc",
	"c.p.c":                      "cpc",
	"code of civil procedure":    "cpc",
	"civil procedure code":       "cpc",
	"qso":                        "qso",
	"qanun-e-shahadat":           "qso",
	"qanun e shahadat":           "qso",
}

// reporters are law-report abbreviations recognised in reported
// citations like "PLD 2020 SC 1".
var reporters = map[string]struct{}{
	"pld": {}, "plj": {}, "scmr": {}, "mld": {}, "clc": {}, "ylr": {},
}

var stopwords = map[string]struct{}{
	"the": {}, "of": {}, "in": {}, "a": {}, "an": {}, "and": {},
	"or": {}, "for": {}, "to": {}, "vs": {}, "v": {}, "versus": {},
}

const memoTTL = 10 * time.Minute

// Normaliser recognises citations and identifiers in query and
// judgment text. Safe for concurrent use.
type Normaliser struct {
	actFirst     *regexp.Regexp
	sectionFirst *regexp.Regexp
	bareSection  *regexp.Regexp
	reported     *regexp.Regexp
	prefixedID   *regexp.Regexp
	bareID       *regexp.Regexp
	whitespace   *regexp.Regexp

	memo *expirable.LRU[string, *domain.NormalisedQuery]
}

// New returns a normaliser with the standard alias table.
func New() *Normaliser {
	// longest aliases first so "pakistan penal code" wins over "penal code"
	aliases := make([]string, 0, len(actAliases))
	for a := range actAliases {
		aliases = append(aliases, regexp.QuoteMeta(a))
	}
	sort.Slice(aliases, func(i, j int) bool { return len(aliases[i]) > len(aliases[j]) })
	actAlt := strings.Join(aliases, "|")

	repAlt := make([]string, 0, len(reporters))
	for r := range reporters {
		repAlt = append(repAlt, r)
	}
	sort.Strings(repAlt)

	section := `(\d{1,4}[a-z]?(?:\(\d+\))?)`

	return &Normaliser{
		actFirst: regexp.MustCompile(
			`\b(` + actAlt + `)\s*[.,]?\s*(?:section|sec\.?|s\.?)?\s*` + section + `\b`),
		sectionFirst: regexp.MustCompile(
			`\b(?:u/s|under\s+section|section|sec\.)\s*` + section + `(?:\s+(?:of\s+)?(?:the\s+)?(` + actAlt + `))?\b`),
		bareSection: regexp.MustCompile(
			section + `\s+(` + actAlt + `)\b`),
		reported: regexp.MustCompile(
			`\b(` + strings.Join(repAlt, "|") + `)\s+(\d{4})\s+([a-z]+)\s+(\d+)\b`),
		prefixedID: regexp.MustCompile(
			`\b(?:writ\s+petition|civil\s+appeal|criminal\s+appeal|application|appeal|petition|suit|w\.?\s?p\.?|crl\.?\s?a\.?)\s*(?:no\.?\s*)?(\d{1,6}/\d{4})\b`),
		bareID:     regexp.MustCompile(`\b(\d{1,6}/\d{4})\b`),
		whitespace: regexp.MustCompile(`\s+`),
		memo:       expirable.NewLRU[string, *domain.NormalisedQuery](512, nil, memoTTL),
	}
}

// NormaliseText lowercases and collapses whitespace.
func (n *Normaliser) NormaliseText(s string) string {
	return strings.TrimSpace(n.whitespace.ReplaceAllString(strings.ToLower(s), " "))
}

// Normalise processes a raw query: cleaning, citation recognition and
// identifier recognition. Results are memoised with a short TTL since
// typeahead and paging repeat the same query. Callers must not mutate
// the returned value.
func (n *Normaliser) Normalise(raw string) *domain.NormalisedQuery {
	cleaned := n.NormaliseText(raw)
	if cached, ok := n.memo.Get(cleaned); ok {
		return cached
	}

	citations := n.ExtractCitations(cleaned)
	identifiers := n.extractIdentifiers(cleaned)

	// rewrite recognised citation spans to canonical form
	normalised := cleaned
	for _, c := range citations {
		if c.Confident() {
			normalised = strings.Replace(normalised, c.Original, c.Canonical, 1)
		}
	}
	normalised = strings.TrimSpace(n.whitespace.ReplaceAllString(normalised, " "))

	var terms []string
	for _, t := range index.Tokenise(normalised) {
		if _, stop := stopwords[t]; !stop {
			terms = append(terms, t)
		}
	}

	q := &domain.NormalisedQuery{
		Raw:              raw,
		Normalised:       normalised,
		Terms:            terms,
		Citations:        citations,
		ExactIdentifiers: identifiers,
	}
	if len(citations) > 0 {
		q.Signals = append(q.Signals, domain.BoostSignal{Name: "citations", Value: float64(len(citations))})
	}
	if len(identifiers) > 0 {
		q.Signals = append(q.Signals, domain.BoostSignal{Name: "exact_identifiers", Value: float64(len(identifiers))})
	}

	n.memo.Add(cleaned, q)
	return q
}

// ExtractCitations recognises statutory references in already
// normalised (lowercase) text. Act-qualified references score 1.0;
// section references with no resolvable act score 0.5.
func (n *Normaliser) ExtractCitations(text string) []domain.Citation {
	seen := make(map[string]struct{})
	var out []domain.Citation

	add := func(act, section, original string, confidence float64) {
		canonical := fmt.Sprintf("%s:%s", act, section)
		if act == "" {
			canonical = fmt.Sprintf("section:%s", section)
		}
		if _, dup := seen[canonical]; dup {
			return
		}
		seen[canonical] = struct{}{}
		out = append(out, domain.Citation{
			Act:        act,
			Section:    section,
			Canonical:  canonical,
			Original:   strings.TrimSpace(original),
			Confidence: confidence,
		})
	}

	for _, m := range n.actFirst.FindAllStringSubmatch(text, -1) {
		add(actAliases[m[1]], m[2], m[0], 1.0)
	}
	for _, m := range n.bareSection.FindAllStringSubmatch(text, -1) {
		add(actAliases[m[2]], m[1], m[0], 1.0)
	}
	for _, m := range n.sectionFirst.FindAllStringSubmatch(text, -1) {
		if m[2] != "" {
			add(actAliases[m[2]], m[1], m[0], 1.0)
		} else {
			add("", m[1], m[0], 0.5)
		}
	}
	// reported citations: "pld 2020 sc 1" -> pld:2020:sc:1
	for _, m := range n.reported.FindAllStringSubmatch(text, -1) {
		canonical := fmt.Sprintf("%s:%s:%s:%s", m[1], m[2], m[3], m[4])
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, domain.Citation{
			Act:        m[1],
			Section:    m[4],
			Canonical:  canonical,
			Original:   m[0],
			Confidence: 1.0,
		})
	}
	return out
}

func (n *Normaliser) extractIdentifiers(text string) []domain.ExactIdentifier {
	seen := make(map[string]struct{})
	var out []domain.ExactIdentifier

	for _, m := range n.prefixedID.FindAllStringSubmatch(text, -1) {
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, domain.ExactIdentifier{Value: m[1], Original: strings.TrimSpace(m[0])})
	}
	for _, m := range n.bareID.FindAllStringSubmatch(text, -1) {
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, domain.ExactIdentifier{Value: m[1], Original: m[1]})
	}
	return out
}
