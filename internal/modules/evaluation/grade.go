package evaluation

import "github.com/shopspring/decimal"

// Grade is the letter rating derived from an overall score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeE Grade = "E"
)

var (
	thresholdA = decimal.NewFromInt(90)
	thresholdB = decimal.NewFromInt(80)
	thresholdC = decimal.NewFromInt(70)
	thresholdD = decimal.NewFromInt(60)
)

// GradeFromScore maps a score to a grade. Lower bounds are inclusive.
func GradeFromScore(score decimal.Decimal) Grade {
	switch {
	case score.GreaterThanOrEqual(thresholdA):
		return GradeA
	case score.GreaterThanOrEqual(thresholdB):
		return GradeB
	case score.GreaterThanOrEqual(thresholdC):
		return GradeC
	case score.GreaterThanOrEqual(thresholdD):
		return GradeD
	default:
		return GradeE
	}
}

var gradeInfo = map[Grade]struct {
	rank  int
	label string
}{
	GradeA: {5, "优秀"},
	GradeB: {4, "良好"},
	GradeC: {3, "合格"},
	GradeD: {2, "待改进"},
	GradeE: {1, "不合格"},
}

// Rank orders grades for reporting, A highest. Unknown grades rank 0.
func (g Grade) Rank() int { return gradeInfo[g].rank }

func (g Grade) Label() string { return gradeInfo[g].label }

func (g Grade) Valid() bool {
	_, ok := gradeInfo[g]
	return ok
}
