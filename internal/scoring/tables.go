package scoring

import "seminar-results-service/internal/domain"

// WeightTable selects a weight vector from years until graduation:
// Above when years > Threshold, Exact[years] when present, Default otherwise.
// A participant with unknown grade gets Default. A nil vector means simple sum.
type WeightTable struct {
	Threshold int
	Above     []int
	Exact     map[int][]int
	Default   []int
}

// Weights returns the vector applicable to ctx.
func (t WeightTable) Weights(ctx domain.ScoringContext) []int {
	if ctx.YearsUntilGraduation == nil {
		return t.Default
	}
	years := *ctx.YearsUntilGraduation
	if years > t.Threshold {
		return t.Above
	}
	if w, ok := t.Exact[years]; ok {
		return w
	}
	return t.Default
}

// Strategy binds the table to WeightedSum.
func (t WeightTable) Strategy() Strategy {
	return func(scores []*int, ctx domain.ScoringContext) int {
		return WeightedSum(scores, t.Weights(ctx))
	}
}

var (
	bonusSecond = []int{1, 2, 1, 1, 1, 0}
	bonusFourth = []int{1, 1, 1, 2, 1, 0}
	bonusFirst  = []int{2, 1, 1, 1, 1, 0}
	bonusFifth  = []int{1, 1, 1, 1, 2, 0}
)

func gradeBonus(threshold int, above, at []int) WeightTable {
	return WeightTable{Threshold: threshold, Above: above, Exact: map[int][]int{threshold: at}}
}

// BuiltinTables returns the per-competition weight tables.
func BuiltinTables() map[string]WeightTable {
	return map[string]WeightTable{
		"series_Malynar_sum":            gradeBonus(8, bonusSecond, bonusFourth),
		"series_Malynar_sum_until_2021": gradeBonus(8, bonusFirst, bonusFifth),
		"series_Matik_sum":              gradeBonus(5, bonusSecond, bonusFourth),
		"series_Matik_sum_until_2021":   gradeBonus(5, bonusFirst, bonusFifth),
		"series_STROM_sum":              gradeBonus(2, bonusSecond, bonusFourth),
		"series_STROM_sum_until_2021":   gradeBonus(2, bonusFirst, bonusFifth),
		"series_STROM_4problems_sum": {
			Threshold: 2,
			Above:     []int{2, 1, 1, 1},
			Exact: map[int][]int{
				2: {1, 2, 1, 1},
				1: {1, 1, 2, 1},
			},
			Default: []int{1, 1, 1, 2},
		},
	}
}
