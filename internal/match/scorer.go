package match

import "idreclaim/internal/report/models"

// Weights is the contribution of each identity signal to the match score.
// Values come from configuration; DefaultWeights is the tuned baseline.
type Weights struct {
	Identifier   int
	NameExact    int
	NamePartial  int
	DateOfBirth  int
	DateOfIssue  int
	PlaceOfBirth int
}

// DefaultWeights and DefaultThreshold are the baseline: identifier plus any
// name signal clears the threshold, as does full corroboration of
// name+DOB+issue+birthplace, while a partial name match alone does not.
var DefaultWeights = Weights{
	Identifier:   60,
	NameExact:    30,
	NamePartial:  20,
	DateOfBirth:  15,
	DateOfIssue:  5,
	PlaceOfBirth: 5,
}

const DefaultThreshold = 40

// Attributes are the identity fields both report kinds share, extracted into
// one shape so scoring stays symmetric.
type Attributes struct {
	FullName     string
	IDNumber     *string
	DateOfBirth  *string
	DateOfIssue  *string
	PlaceOfBirth *string
}

// LostAttributes extracts the scorable fields from a lost report.
func LostAttributes(r models.LostReport) Attributes {
	return Attributes{
		FullName:     r.FullName,
		IDNumber:     r.IDNumber,
		DateOfBirth:  r.DateOfBirth,
		DateOfIssue:  r.DateOfIssue,
		PlaceOfBirth: r.PlaceOfBirth,
	}
}

// FoundAttributes extracts the scorable fields from a found report.
func FoundAttributes(r models.FoundReport) Attributes {
	return Attributes{
		FullName:     r.FullName,
		IDNumber:     r.IDNumber,
		DateOfBirth:  r.DateOfBirth,
		DateOfIssue:  r.DateOfIssue,
		PlaceOfBirth: r.PlaceOfBirth,
	}
}

// Scorer computes the weighted similarity between two records' identity
// attributes. Pure and deterministic: same inputs, same score.
type Scorer struct {
	weights Weights
}

func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Score sums the independent signal contributions. A field missing on either
// side contributes zero; absence is never penalized. Name-exact and
// name-partial are mutually exclusive, which caps the total at the sum of the
// remaining weights plus the larger name weight.
func (s *Scorer) Score(a, b Attributes) int {
	score := 0

	if ident, ok := bothPresent(a.IDNumber, b.IDNumber); ok {
		if normalizeIdentifier(ident.left) != "" && normalizeIdentifier(ident.left) == normalizeIdentifier(ident.right) {
			score += s.weights.Identifier
		}
	}

	nameA, nameB := normalize(a.FullName), normalize(b.FullName)
	switch {
	case nameA != "" && nameA == nameB:
		score += s.weights.NameExact
	case sharedTokenCount(a.FullName, b.FullName) >= 2:
		score += s.weights.NamePartial
	}

	if dob, ok := bothPresent(a.DateOfBirth, b.DateOfBirth); ok && normalize(dob.left) == normalize(dob.right) {
		score += s.weights.DateOfBirth
	}
	if issue, ok := bothPresent(a.DateOfIssue, b.DateOfIssue); ok && normalize(issue.left) == normalize(issue.right) {
		score += s.weights.DateOfIssue
	}
	if place, ok := bothPresent(a.PlaceOfBirth, b.PlaceOfBirth); ok && normalize(place.left) == normalize(place.right) {
		score += s.weights.PlaceOfBirth
	}

	return score
}

type fieldPair struct {
	left, right string
}

func bothPresent(a, b *string) (fieldPair, bool) {
	if a == nil || b == nil {
		return fieldPair{}, false
	}
	if normalize(*a) == "" || normalize(*b) == "" {
		return fieldPair{}, false
	}
	return fieldPair{left: *a, right: *b}, true
}
