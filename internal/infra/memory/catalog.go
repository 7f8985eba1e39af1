package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"seminar-results-service/internal/domain"
)

// Catalog is an in-memory competition directory: periods, rounds,
// registrations and solutions. Useful for tests and demos.
type Catalog struct {
	mu           sync.RWMutex
	periods      map[int64]domain.Period
	rounds       map[int64]domain.Round
	problemRound map[int64]int64
	participants map[int64][]domain.Participant
	solutions    map[int64][]domain.Solution
}

func NewCatalog() *Catalog {
	return &Catalog{
		periods:      make(map[int64]domain.Period),
		rounds:       make(map[int64]domain.Round),
		problemRound: make(map[int64]int64),
		participants: make(map[int64][]domain.Participant),
		solutions:    make(map[int64][]domain.Solution),
	}
}

// AddPeriod stores a period with its rounds and registered participants.
func (c *Catalog) AddPeriod(period domain.Period, participants ...domain.Participant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, round := range period.Rounds {
		round.PeriodID = period.ID
		c.rounds[round.ID] = round
		for _, problem := range round.Problems {
			c.problemRound[problem.ID] = round.ID
		}
	}
	period.Rounds = nil
	c.periods[period.ID] = period
	c.participants[period.ID] = append(c.participants[period.ID], participants...)
}

// AddSolution stores a solution under the round of its problem.
func (c *Catalog) AddSolution(sol domain.Solution) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	roundID, ok := c.problemRound[sol.ProblemID]
	if !ok {
		return fmt.Errorf("problem %d: %w", sol.ProblemID, domain.ErrRoundNotFound)
	}
	c.solutions[roundID] = append(c.solutions[roundID], sol)
	return nil
}

// Grade sets the score of a stored solution.
func (c *Catalog) Grade(solutionID int64, score int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for roundID, sols := range c.solutions {
		for i := range sols {
			if sols[i].ID == solutionID {
				points := score
				c.solutions[roundID][i].Score = &points
				return nil
			}
		}
	}
	return fmt.Errorf("solution %d not found", solutionID)
}

// CompleteRound marks a round complete.
func (c *Catalog) CompleteRound(roundID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	round, ok := c.rounds[roundID]
	if !ok {
		return domain.ErrRoundNotFound
	}
	round.Complete = true
	c.rounds[roundID] = round
	return nil
}

func (c *Catalog) LoadRound(_ context.Context, roundID int64) (domain.Round, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	round, ok := c.rounds[roundID]
	if !ok {
		return domain.Round{}, domain.ErrRoundNotFound
	}
	round.Problems = append([]domain.Problem(nil), round.Problems...)
	return round, nil
}

func (c *Catalog) LoadPeriod(_ context.Context, periodID int64) (domain.Period, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	period, ok := c.periods[periodID]
	if !ok {
		return domain.Period{}, domain.ErrPeriodNotFound
	}
	for _, round := range c.rounds {
		if round.PeriodID == periodID {
			round.Problems = append([]domain.Problem(nil), round.Problems...)
			period.Rounds = append(period.Rounds, round)
		}
	}
	sort.Slice(period.Rounds, func(i, j int) bool {
		return period.Rounds[i].Order < period.Rounds[j].Order
	})
	return period, nil
}

// GetRound and GetPeriod let the catalog serve as an uncached directory.
func (c *Catalog) GetRound(ctx context.Context, roundID int64) (domain.Round, error) {
	return c.LoadRound(ctx, roundID)
}

func (c *Catalog) GetPeriod(ctx context.Context, periodID int64) (domain.Period, error) {
	return c.LoadPeriod(ctx, periodID)
}

func (c *Catalog) Participants(_ context.Context, periodID int64) ([]domain.Participant, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.periods[periodID]; !ok {
		return nil, domain.ErrPeriodNotFound
	}
	return append([]domain.Participant(nil), c.participants[periodID]...), nil
}

func (c *Catalog) RoundSolutions(_ context.Context, roundID int64) ([]domain.Solution, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.rounds[roundID]; !ok {
		return nil, domain.ErrRoundNotFound
	}
	return append([]domain.Solution(nil), c.solutions[roundID]...), nil
}
