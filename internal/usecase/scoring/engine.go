// Package scoring ranks content items against a user's tiered interests.
package scoring

import (
	"math"
	"sort"
	"strings"

	domcontent "github.com/kailas-cloud/recfeed/internal/domain/content"
	"github.com/kailas-cloud/recfeed/internal/domain/interest"
	domrec "github.com/kailas-cloud/recfeed/internal/domain/recommendation"
)

// Field weights per tier, multiplied by term frequency.
const (
	primaryKeywordWeight = 3.0
	primaryTitleWeight   = 2.0
	primaryBodyWeight    = 1.0

	secondaryKeywordWeight = 1.5
	secondaryTitleWeight   = 1.0
	secondaryBodyWeight    = 0.5

	// fallback terms score flat on any field match
	fallbackWeight = 0.3

	diversityFactor = 0.1

	// RandomScore is the nominal score of an item kept by the variety rule.
	RandomScore = 0.1
)

// Variety strides: floor(1/ε) with ε = 0.05 for rich profiles, 0.15 otherwise.
const (
	richProfileTerms = 10
	richStride       = 20
	sparseStride     = 6
)

// Score rates every item of pool against tiers and returns the candidates
// with a positive score, highest first. Equal scores keep pool order.
//
// Items with no match are dropped, except every varietyStride-th pool item,
// which is kept with RandomScore and SourceRandom. The rule is a pure
// function of pool order, so identical inputs always produce identical output.
func Score(tiers interest.Tiers, pool []domcontent.Item) []domrec.Candidate {
	stride := varietyStride(tiers)
	out := make([]domrec.Candidate, 0, len(pool))

	for i := range pool {
		c, ok := scoreItem(tiers, &pool[i])
		if !ok {
			if i%stride != 0 {
				continue
			}
			c = domrec.Candidate{
				ItemID:      pool[i].ID(),
				Score:       RandomScore,
				Source:      domrec.SourceRandom,
				Category:    interest.CategoryGeneral,
				PublishedAt: pool[i].PublishedAt(),
			}
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Score > out[b].Score
	})
	return out
}

func varietyStride(tiers interest.Tiers) int {
	if tiers.Total() > richProfileTerms {
		return richStride
	}
	return sparseStride
}

// match accumulates one item's score across tiers.
type match struct {
	score    float64
	terms    []string
	seen     map[string]struct{}
	source   domrec.Source
	category string
}

func (m *match) record(term string, weight float64, source domrec.Source, categorize bool) {
	if weight <= 0 {
		return
	}
	m.score += weight
	if m.source == "" {
		m.source = source
	}
	if categorize && m.category == "" {
		m.category = interest.CategoryOf(term)
	}
	if _, dup := m.seen[term]; !dup {
		m.seen[term] = struct{}{}
		m.terms = append(m.terms, term)
	}
}

func scoreItem(tiers interest.Tiers, it *domcontent.Item) (domrec.Candidate, bool) {
	title := strings.ToLower(it.Title())
	body := strings.ToLower(it.Body())
	keywords := it.Keywords()

	m := match{seen: make(map[string]struct{})}

	for _, e := range tiers.Primary {
		w := fieldWeight(e, it, title, body, primaryKeywordWeight, primaryTitleWeight, primaryBodyWeight)
		m.record(e.Term, w, domrec.SourcePrimary, true)
	}
	for _, e := range tiers.Secondary {
		w := fieldWeight(e, it, title, body, secondaryKeywordWeight, secondaryTitleWeight, secondaryBodyWeight)
		m.record(e.Term, w, domrec.SourceSecondary, true)
	}
	for _, e := range tiers.Fallback {
		if anyFieldContains(e.Term, keywords, title, body) {
			m.record(e.Term, float64(e.Frequency)*fallbackWeight, domrec.SourceFallback, false)
		}
	}

	if m.score <= 0 {
		return domrec.Candidate{}, false
	}

	if n := len(m.terms); n > 1 {
		m.score *= 1 + math.Log(float64(n))*diversityFactor
	}
	if m.category == "" {
		m.category = interest.CategoryGeneral
	}

	return domrec.Candidate{
		ItemID:           it.ID(),
		Score:            m.score,
		Source:           m.source,
		Category:         m.category,
		MatchedInterests: m.terms,
		PublishedAt:      it.PublishedAt(),
	}, true
}

func fieldWeight(
	e interest.Entry, it *domcontent.Item, title, body string,
	keywordW, titleW, bodyW float64,
) float64 {
	f := float64(e.Frequency)
	var w float64
	if it.HasKeyword(e.Term) {
		w += f * keywordW
	}
	if strings.Contains(title, e.Term) {
		w += f * titleW
	}
	if strings.Contains(body, e.Term) {
		w += f * bodyW
	}
	return w
}

func anyFieldContains(term string, keywords []string, title, body string) bool {
	if strings.Contains(title, term) || strings.Contains(body, term) {
		return true
	}
	for _, k := range keywords {
		if strings.Contains(k, term) {
			return true
		}
	}
	return false
}
