// Package framing provides the domain model for the research framing
// artifact: the structured record accumulated across pipeline steps.
package framing

// Orientation is one of the four epistemic orientations a research idea
// can lean toward.
type Orientation string

const (
	OrientationExploratory    Orientation = "exploratory"
	OrientationCritical       Orientation = "critical"
	OrientationProblemSolving Orientation = "problem_solving"
	OrientationConstructive   Orientation = "constructive"
)

// Orientations lists all orientations in canonical order.
func Orientations() []Orientation {
	return []Orientation{
		OrientationExploratory,
		OrientationCritical,
		OrientationProblemSolving,
		OrientationConstructive,
	}
}

// Valid reports whether o is one of the four canonical orientations.
func (o Orientation) Valid() bool {
	switch o {
	case OrientationExploratory, OrientationCritical,
		OrientationProblemSolving, OrientationConstructive:
		return true
	}
	return false
}

// Profile maps each orientation to a weight in [0,1].
type Profile map[Orientation]float64

// NewProfile returns a profile with all orientations at zero weight.
func NewProfile() Profile {
	p := make(Profile, 4)
	for _, o := range Orientations() {
		p[o] = 0
	}
	return p
}

// Merge combines another profile into p additively: for each orientation the
// result takes the maximum of the two weights. Two independent signal sources
// (explicit keyword tags vs. free-text classification) reinforce rather than
// overwrite each other. Unknown orientations in other are ignored.
func (p Profile) Merge(other Profile) {
	for o, w := range other {
		if _, ok := p[o]; !ok {
			continue
		}
		if w > p[o] {
			p[o] = w
		}
	}
}

// Dominant returns the orientation with the highest weight. Ties resolve in
// canonical orientation order, which keeps the result deterministic.
func (p Profile) Dominant() Orientation {
	best := OrientationExploratory
	bestWeight := -1.0
	for _, o := range Orientations() {
		if p[o] > bestWeight {
			best = o
			bestWeight = p[o]
		}
	}
	return best
}

// KeywordMap groups keyword terms by orientation. Term order within an
// orientation is preserved as first-seen.
type KeywordMap map[Orientation][]string

// NewKeywordMap returns a keyword map with an empty term list per orientation.
func NewKeywordMap() KeywordMap {
	m := make(KeywordMap, 4)
	for _, o := range Orientations() {
		m[o] = []string{}
	}
	return m
}

// Merge unions another keyword map into m. Existing terms keep their
// position; new terms append in the order they appear in other.
func (m KeywordMap) Merge(other KeywordMap) {
	for o, terms := range other {
		if _, ok := m[o]; !ok {
			continue
		}
		seen := make(map[string]struct{}, len(m[o]))
		for _, t := range m[o] {
			seen[t] = struct{}{}
		}
		for _, t := range terms {
			if _, dup := seen[t]; dup {
				continue
			}
			m[o] = append(m[o], t)
			seen[t] = struct{}{}
		}
	}
}

// Keyword is a single tagged term, usually sourced from the keyword database.
type Keyword struct {
	Term   string      `json:"term"`
	Role   Orientation `json:"role"`
	Weight float64     `json:"weight,omitempty"`
}
