package postgres

import (
	"context"
	"errors"
	"fmt"

	"seminar-results-service/internal/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Loader reads competition structure, registrations and solutions from Postgres.
type Loader struct {
	pool *pgxpool.Pool
}

func NewLoader(pool *pgxpool.Pool) *Loader {
	return &Loader{pool: pool}
}

func (l *Loader) LoadRound(ctx context.Context, roundID int64) (domain.Round, error) {
	var round domain.Round
	err := l.pool.QueryRow(ctx, `
		SELECT id, period_id, "order", deadline, complete, scoring_method
		FROM rounds WHERE id = $1`, roundID).
		Scan(&round.ID, &round.PeriodID, &round.Order, &round.Deadline, &round.Complete, &round.ScoringMethod)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Round{}, domain.ErrRoundNotFound
	}
	if err != nil {
		return domain.Round{}, fmt.Errorf("load round: %w", err)
	}

	problems, err := l.problems(ctx, []int64{roundID})
	if err != nil {
		return domain.Round{}, err
	}
	round.Problems = problems[roundID]
	return round, nil
}

func (l *Loader) LoadPeriod(ctx context.Context, periodID int64) (domain.Period, error) {
	var period domain.Period
	err := l.pool.QueryRow(ctx, `
		SELECT id, competition, year, season, scoring_method
		FROM periods WHERE id = $1`, periodID).
		Scan(&period.ID, &period.Competition, &period.Year, &period.Season, &period.ScoringMethod)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Period{}, domain.ErrPeriodNotFound
	}
	if err != nil {
		return domain.Period{}, fmt.Errorf("load period: %w", err)
	}

	rows, err := l.pool.Query(ctx, `
		SELECT id, period_id, "order", deadline, complete, scoring_method
		FROM rounds WHERE period_id = $1 ORDER BY "order"`, periodID)
	if err != nil {
		return domain.Period{}, fmt.Errorf("load rounds: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var round domain.Round
		if err := rows.Scan(&round.ID, &round.PeriodID, &round.Order, &round.Deadline, &round.Complete, &round.ScoringMethod); err != nil {
			return domain.Period{}, fmt.Errorf("scan round: %w", err)
		}
		period.Rounds = append(period.Rounds, round)
		ids = append(ids, round.ID)
	}
	if err := rows.Err(); err != nil {
		return domain.Period{}, fmt.Errorf("load rounds: %w", err)
	}

	problems, err := l.problems(ctx, ids)
	if err != nil {
		return domain.Period{}, err
	}
	for i := range period.Rounds {
		period.Rounds[i].Problems = problems[period.Rounds[i].ID]
	}
	return period, nil
}

func (l *Loader) problems(ctx context.Context, roundIDs []int64) (map[int64][]domain.Problem, error) {
	out := make(map[int64][]domain.Problem, len(roundIDs))
	if len(roundIDs) == 0 {
		return out, nil
	}
	rows, err := l.pool.Query(ctx, `
		SELECT id, round_id, "order"
		FROM problems WHERE round_id = ANY($1) ORDER BY round_id, "order"`, roundIDs)
	if err != nil {
		return nil, fmt.Errorf("load problems: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p domain.Problem
		if err := rows.Scan(&p.ID, &p.RoundID, &p.Order); err != nil {
			return nil, fmt.Errorf("scan problem: %w", err)
		}
		out[p.RoundID] = append(out[p.RoundID], p)
	}
	return out, rows.Err()
}

// Participants lists registrations of a period ordered by id.
func (l *Loader) Participants(ctx context.Context, periodID int64) ([]domain.Participant, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT r.id, r.first_name, r.last_name, s.code, s.name, r.grade_tag, r.years_until_graduation
		FROM registrations r
		JOIN schools s ON s.code = r.school_code
		WHERE r.period_id = $1
		ORDER BY r.id`, periodID)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	defer rows.Close()

	var out []domain.Participant
	for rows.Next() {
		var (
			p     domain.Participant
			tag   *string
			years *int
		)
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.School.Code, &p.School.Name, &tag, &years); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		p.Grade = gradeOf(tag, years)
		out = append(out, p)
	}
	return out, rows.Err()
}

// gradeOf builds the scoring context from the registration columns.
// Years alone are enough; a missing tag leaves Tag empty.
func gradeOf(tag *string, years *int) *domain.Grade {
	if years == nil {
		return nil
	}
	g := &domain.Grade{YearsUntilGraduation: *years}
	if tag != nil {
		g.Tag = *tag
	}
	return g
}

// RoundSolutions returns every stored solution of the round, including
// superseded uploads.
func (l *Loader) RoundSolutions(ctx context.Context, roundID int64) ([]domain.Solution, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT s.id, s.registration_id, s.problem_id, s.score, s.uploaded_at, s.is_online, s.late_tag
		FROM solutions s
		JOIN problems p ON p.id = s.problem_id
		WHERE p.round_id = $1
		ORDER BY s.id`, roundID)
	if err != nil {
		return nil, fmt.Errorf("load solutions: %w", err)
	}
	defer rows.Close()

	var out []domain.Solution
	for rows.Next() {
		var sol domain.Solution
		if err := rows.Scan(&sol.ID, &sol.ParticipantID, &sol.ProblemID, &sol.Score, &sol.UploadedAt, &sol.IsOnline, &sol.LateTag); err != nil {
			return nil, fmt.Errorf("scan solution: %w", err)
		}
		out = append(out, sol)
	}
	return out, rows.Err()
}
