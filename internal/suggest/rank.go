package suggest

import (
	"sort"
	"strings"

	"mapforge/internal/fieldpath"
)

// Kind tells how a candidate matched the query.
type Kind string

const (
	KindPrefix    Kind = "prefix"
	KindSubstring Kind = "substring"
	KindFuzzy     Kind = "fuzzy"
)

// Candidate is one ranked catalog path.
type Candidate struct {
	Path  string  `json:"path"`
	Kind  Kind    `json:"kind"`
	Score float64 `json:"score"`
}

// CandidateList is a list of candidates with ranking helpers.
type CandidateList []Candidate

// Score bands keep every prefix match above every substring match, and
// every substring match above every fuzzy one.
const (
	prefixBase    = 2.0
	substringBase = 1.0
	// minFuzzy drops fuzzy matches that are mostly noise.
	minFuzzy = 0.5
)

// Thresholds for picking an unambiguous match among ForPath results.
const (
	MinConfidence = 0.8
	MinLead       = 0.1
)

// Rank orders catalog entries for a typed fragment: prefix matches first,
// then substring matches, then leaves similar by edit distance. Matching
// ignores case and delimiter style. A blank query returns the catalog in
// order. limit <= 0 means no limit.
func Rank(catalog []string, query string, limit int) CandidateList {
	q := strings.ToLower(fieldpath.Canonical(query).String())

	var out CandidateList

	for _, path := range catalog {
		if q == "" {
			out = append(out, Candidate{Path: path, Kind: KindPrefix, Score: prefixBase})
			continue
		}

		lower := strings.ToLower(fieldpath.Canonical(path).String())
		leaf := strings.ToLower(fieldpath.Canonical(path).Leaf())
		shorter := 1 - float64(len(lower))/float64(len(lower)+len(q)+1)

		switch {
		case strings.HasPrefix(lower, q) || strings.HasPrefix(leaf, q):
			out = append(out, Candidate{Path: path, Kind: KindPrefix, Score: prefixBase + shorter})
		case strings.Contains(lower, q):
			out = append(out, Candidate{Path: path, Kind: KindSubstring, Score: substringBase + shorter})
		default:
			if s := NameSimilarity(leaf, q); s >= minFuzzy {
				out = append(out, Candidate{Path: path, Kind: KindFuzzy, Score: s})
			}
		}
	}

	if q != "" {
		sort.Sort(out)
	}

	return out.Top(limit)
}

// ForPath ranks catalog entries that likely correspond to target, a path
// of the other side. The leaf name weighs 60% and the parent segment 40%.
func ForPath(target string, catalog []string, limit int) CandidateList {
	const (
		leafWeight   = 0.6
		parentWeight = 0.4
	)

	t := fieldpath.Canonical(target)
	tLeaf, tParent := leafAndParent(t)

	var out CandidateList

	for _, path := range catalog {
		c := fieldpath.Canonical(path)
		cLeaf, cParent := leafAndParent(c)

		score := NameSimilarity(cLeaf, tLeaf)*leafWeight + NameSimilarity(cParent, tParent)*parentWeight
		out = append(out, Candidate{Path: path, Kind: KindFuzzy, Score: score})
	}

	sort.Sort(out)

	return out.Top(limit)
}

func leafAndParent(p fieldpath.Path) (string, string) {
	segs := p.Segments()

	switch len(segs) {
	case 0:
		return "", ""
	case 1:
		return segs[0].Name, ""
	}

	return segs[len(segs)-1].Name, segs[len(segs)-2].Name
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less sorts by score descending, then by path for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Path < c[j].Path
}

// Top returns the first n candidates; n <= 0 returns all of them.
func (c CandidateList) Top(n int) CandidateList {
	if n <= 0 || n >= len(c) {
		return c
	}

	return c[:n]
}

// Paths returns the candidate paths in rank order.
func (c CandidateList) Paths() []string {
	out := make([]string, 0, len(c))
	for _, cand := range c {
		out = append(out, cand.Path)
	}

	return out
}

// Best returns the best candidate, or nil if there is none.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// HighConfidence returns the best candidate if it reaches minScore and
// leads the runner-up by at least minGap.
func (c CandidateList) HighConfidence(minScore, minGap float64) *Candidate {
	best := c.Best()
	if best == nil || best.Score < minScore {
		return nil
	}

	if len(c) > 1 && c[0].Score-c[1].Score < minGap {
		return nil
	}

	return best
}
