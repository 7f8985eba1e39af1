package scoring

import (
	"sort"
	"sync"

	"seminar-results-service/internal/domain"
)

// Strategy turns a participant's scores in problem order into a round subtotal.
// Nil entries are ungraded or missing solutions and contribute zero.
type Strategy func(scores []*int, ctx domain.ScoringContext) int

// PeriodStrategy combines round subtotals into a period total.
type PeriodStrategy func(subtotals []int) int

// Names of the built-in strategies.
const (
	SeriesSimpleSum   = "series_simple_sum"
	SemesterSimpleSum = "semester_simple_sum"
)

// Registry maps strategy names to functions. Unknown or empty names fall back
// to the simple sums; existing configured data depends on that.
type Registry struct {
	mu     sync.RWMutex
	series map[string]Strategy
	period map[string]PeriodStrategy
}

// NewRegistry returns a registry with every built-in strategy installed.
func NewRegistry() *Registry {
	r := &Registry{
		series: map[string]Strategy{
			SeriesSimpleSum: SimpleSum,
		},
		period: map[string]PeriodStrategy{
			SemesterSimpleSum: SumSubtotals,
		},
	}
	for name, table := range BuiltinTables() {
		r.series[name] = table.Strategy()
	}
	return r
}

// Register installs or replaces a round strategy.
func (r *Registry) Register(name string, s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.series[name] = s
}

// Series resolves a round strategy, defaulting to the simple sum.
func (r *Registry) Series(name string) Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.series[name]; ok {
		return s
	}
	return SimpleSum
}

// Period resolves a period strategy, defaulting to the sum of subtotals.
func (r *Registry) Period(name string) PeriodStrategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.period[name]; ok {
		return s
	}
	return SumSubtotals
}

// Names lists registered round strategies in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.series))
	for name := range r.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SimpleSum adds all graded scores.
func SimpleSum(scores []*int, _ domain.ScoringContext) int {
	total := 0
	for _, s := range scores {
		if s != nil {
			total += *s
		}
	}
	return total
}

// SumSubtotals is the default period strategy.
func SumSubtotals(subtotals []int) int {
	total := 0
	for _, s := range subtotals {
		total += s
	}
	return total
}

// WeightedSum sorts scores descending and takes the dot product with weights,
// so the best score gets weights[0]. Scores past the end of weights count zero.
// Without weights it is the simple sum.
func WeightedSum(scores []*int, weights []int) int {
	if len(weights) == 0 {
		return SimpleSum(scores, domain.ScoringContext{})
	}
	points := make([]int, len(scores))
	for i, s := range scores {
		if s != nil {
			points[i] = *s
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(points)))

	total := 0
	for i := 0; i < len(points) && i < len(weights); i++ {
		total += points[i] * weights[i]
	}
	return total
}
