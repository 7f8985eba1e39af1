package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"seminar-results-service/internal/domain"
	"seminar-results-service/internal/results"
	"seminar-results-service/internal/scoring"

	"golang.org/x/sync/errgroup"
)

// Directory provides round and period structure.
type Directory interface {
	GetRound(ctx context.Context, roundID int64) (domain.Round, error)
	GetPeriod(ctx context.Context, periodID int64) (domain.Period, error)
}

// ParticipantDirectory lists the registrations of a period.
type ParticipantDirectory interface {
	Participants(ctx context.Context, periodID int64) ([]domain.Participant, error)
}

// SolutionStore returns every stored solution of a round's problems.
type SolutionStore interface {
	RoundSolutions(ctx context.Context, roundID int64) ([]domain.Solution, error)
}

// SnapshotStore keeps frozen results. Create must fail with
// domain.ErrAlreadyFrozen when a snapshot exists and never overwrite it.
type SnapshotStore interface {
	Get(ctx context.Context, key domain.SnapshotKey) ([]byte, bool, error)
	Create(ctx context.Context, key domain.SnapshotKey, data []byte) error
}

// Recorder observes computations and freezes.
type Recorder interface {
	ResultsServed(kind domain.SnapshotKind, source string, elapsed time.Duration)
	FreezeAttempt(kind domain.SnapshotKind, outcome string)
}

const (
	SourceFrozen = "frozen"
	SourceLive   = "live"
)

type nopRecorder struct{}

func (nopRecorder) ResultsServed(domain.SnapshotKind, string, time.Duration) {}
func (nopRecorder) FreezeAttempt(domain.SnapshotKind, string)                {}

// ResultsService computes, freezes and serves ranked results.
type ResultsService struct {
	directory    Directory
	participants ParticipantDirectory
	solutions    SolutionStore
	snapshots    SnapshotStore

	strategies *scoring.Registry
	builder    *results.Builder
	now        func() time.Time
	logger     *slog.Logger
	recorder   Recorder
	feed       *Feed
}

// Option customizes a ResultsService.
type Option func(*ResultsService)

func WithStrategies(r *scoring.Registry) Option { return func(s *ResultsService) { s.strategies = r } }
func WithRecorder(r Recorder) Option            { return func(s *ResultsService) { s.recorder = r } }

// WithLogger ignores nil and keeps slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(s *ResultsService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock is used by tests for deterministic deadlines.
func WithClock(now func() time.Time) Option { return func(s *ResultsService) { s.now = now } }

func NewResultsService(dir Directory, participants ParticipantDirectory, solutions SolutionStore, snapshots SnapshotStore, opts ...Option) *ResultsService {
	s := &ResultsService{
		directory:    dir,
		participants: participants,
		solutions:    solutions,
		snapshots:    snapshots,
		strategies:   scoring.NewRegistry(),
		now:          time.Now,
		logger:       slog.Default(),
		recorder:     nopRecorder{},
		feed:         NewFeed(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.builder = results.NewBuilder(s.strategies)
	return s
}

// RoundResults returns the ranked results of a round, frozen or live.
func (s *ResultsService) RoundResults(ctx context.Context, roundID int64) ([]domain.ResultRow, error) {
	return s.Results(ctx, domain.RoundKey(roundID))
}

// PeriodResults returns the ranked results of a period, frozen or live.
func (s *ResultsService) PeriodResults(ctx context.Context, periodID int64) ([]domain.ResultRow, error) {
	return s.Results(ctx, domain.PeriodKey(periodID))
}

// Results returns the frozen snapshot when present, otherwise computes fresh
// results without persisting them.
func (s *ResultsService) Results(ctx context.Context, key domain.SnapshotKey) ([]domain.ResultRow, error) {
	data, frozen, err := s.snapshots.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", key, err)
	}
	if frozen {
		var rows []domain.ResultRow
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", key, err)
		}
		return rows, nil
	}
	return s.compute(ctx, key)
}

// ResultsJSON serializes results; frozen snapshots are returned byte for byte.
func (s *ResultsService) ResultsJSON(ctx context.Context, key domain.SnapshotKey) ([]byte, error) {
	started := s.now()
	data, frozen, err := s.snapshots.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", key, err)
	}
	if frozen {
		s.recorder.ResultsServed(key.Kind, SourceFrozen, s.now().Sub(started))
		return data, nil
	}
	rows, err := s.compute(ctx, key)
	if err != nil {
		return nil, err
	}
	return json.Marshal(rows)
}

func (s *ResultsService) compute(ctx context.Context, key domain.SnapshotKey) ([]domain.ResultRow, error) {
	started := s.now()
	var (
		rows []domain.ResultRow
		err  error
	)
	switch key.Kind {
	case domain.KindRound:
		var in roundInput
		if in, err = s.loadRound(ctx, key.ID); err == nil {
			rows = s.rankRound(in)
		}
	case domain.KindPeriod:
		var in periodInput
		if in, err = s.loadPeriod(ctx, key.ID); err == nil {
			rows, err = s.rankPeriod(in)
		}
	default:
		err = fmt.Errorf("unknown results kind %q", key.Kind)
	}
	if err != nil {
		return nil, err
	}
	s.recorder.ResultsServed(key.Kind, SourceLive, s.now().Sub(started))
	s.logger.Debug("results computed", "key", key.String(), "rows", len(rows), "source", SourceLive)
	return rows, nil
}

type roundInput struct {
	round        domain.Round
	participants []domain.Participant
	solutions    []domain.Solution
}

type periodInput struct {
	period       domain.Period
	rounds       []domain.Round
	participants []domain.Participant
	solutions    [][]domain.Solution
}

func (s *ResultsService) loadRound(ctx context.Context, roundID int64) (roundInput, error) {
	round, err := s.directory.GetRound(ctx, roundID)
	if err != nil {
		return roundInput{}, err
	}
	participants, err := s.participants.Participants(ctx, round.PeriodID)
	if err != nil {
		return roundInput{}, fmt.Errorf("load participants: %w", err)
	}
	solutions, err := s.solutions.RoundSolutions(ctx, round.ID)
	if err != nil {
		return roundInput{}, fmt.Errorf("load solutions: %w", err)
	}
	return roundInput{round: round, participants: participants, solutions: solutions}, nil
}

func (s *ResultsService) loadPeriod(ctx context.Context, periodID int64) (periodInput, error) {
	period, err := s.directory.GetPeriod(ctx, periodID)
	if err != nil {
		return periodInput{}, err
	}
	in := periodInput{period: period, rounds: results.OrderedRounds(period)}
	in.solutions = make([][]domain.Solution, len(in.rounds))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		participants, err := s.participants.Participants(gctx, period.ID)
		if err != nil {
			return fmt.Errorf("load participants: %w", err)
		}
		in.participants = participants
		return nil
	})
	for i, round := range in.rounds {
		i, round := i, round
		g.Go(func() error {
			solutions, err := s.solutions.RoundSolutions(gctx, round.ID)
			if err != nil {
				return fmt.Errorf("load solutions of round %d: %w", round.ID, err)
			}
			in.solutions[i] = solutions
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return periodInput{}, err
	}
	return in, nil
}

func (s *ResultsService) rankRound(in roundInput) []domain.ResultRow {
	return results.Rank(s.builder.RoundRows(in.round, in.participants, in.solutions))
}

func (s *ResultsService) rankPeriod(in periodInput) ([]domain.ResultRow, error) {
	var merger results.Merger
	for i, round := range in.rounds {
		if err := merger.Add(round, s.builder.RoundRows(round, in.participants, in.solutions[i])); err != nil {
			return nil, err
		}
	}
	rows := merger.Rows()
	total := s.strategies.Period(in.period.ScoringMethod)
	for i := range rows {
		rows[i].Total = total(rows[i].Subtotal)
	}
	return results.Rank(rows), nil
}

// FreezeRound snapshots the round's results once every solution is graded
// and the deadline has passed. Re-freezing fails with domain.ErrAlreadyFrozen.
func (s *ResultsService) FreezeRound(ctx context.Context, roundID int64) error {
	key := domain.RoundKey(roundID)
	if err := s.ensureNotFrozen(ctx, key); err != nil {
		return err
	}
	in, err := s.loadRound(ctx, roundID)
	if err != nil {
		return err
	}
	if !RoundClosed(in.round, in.solutions, s.now()) {
		s.recorder.FreezeAttempt(key.Kind, "not_closed")
		s.logger.Warn("round not closed, refusing to freeze", "round_id", roundID)
		return domain.ErrNotClosed
	}
	return s.persist(ctx, key, s.rankRound(in))
}

// FreezePeriod snapshots the period's results once every round is complete.
func (s *ResultsService) FreezePeriod(ctx context.Context, periodID int64) error {
	key := domain.PeriodKey(periodID)
	if err := s.ensureNotFrozen(ctx, key); err != nil {
		return err
	}
	in, err := s.loadPeriod(ctx, periodID)
	if err != nil {
		return err
	}
	if !PeriodClosed(in.period) {
		s.recorder.FreezeAttempt(key.Kind, "not_closed")
		s.logger.Warn("period has incomplete rounds, refusing to freeze", "period_id", periodID)
		return domain.ErrNotClosed
	}
	rows, err := s.rankPeriod(in)
	if err != nil {
		return err
	}
	return s.persist(ctx, key, rows)
}

func (s *ResultsService) frozen(ctx context.Context, key domain.SnapshotKey) (bool, error) {
	_, ok, err := s.snapshots.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load snapshot %s: %w", key, err)
	}
	return ok, nil
}

func (s *ResultsService) ensureNotFrozen(ctx context.Context, key domain.SnapshotKey) error {
	frozen, err := s.frozen(ctx, key)
	if err != nil {
		return err
	}
	if frozen {
		s.recorder.FreezeAttempt(key.Kind, "already_frozen")
		return domain.ErrAlreadyFrozen
	}
	return nil
}

func (s *ResultsService) persist(ctx context.Context, key domain.SnapshotKey, rows []domain.ResultRow) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", key, err)
	}
	if err := s.snapshots.Create(ctx, key, data); err != nil {
		if errors.Is(err, domain.ErrAlreadyFrozen) {
			s.recorder.FreezeAttempt(key.Kind, "already_frozen")
			return err
		}
		s.recorder.FreezeAttempt(key.Kind, "error")
		return fmt.Errorf("store snapshot %s: %w", key, err)
	}
	s.recorder.FreezeAttempt(key.Kind, "frozen")
	s.logger.Info("results frozen", "key", key.String(), "rows", len(rows))
	s.feed.Publish(key, rows)
	return nil
}

// RoundClosed reports whether every current solution of the round is graded
// and its deadline lies before now.
func RoundClosed(round domain.Round, solutions []domain.Solution, now time.Time) bool {
	if round.Deadline.After(now) {
		return false
	}
	idx := results.IndexSolutions(solutions)
	for _, sol := range solutions {
		latest, _ := idx.Lookup(sol.ParticipantID, sol.ProblemID)
		if latest.ID == sol.ID && !sol.Graded() {
			return false
		}
	}
	return true
}

// PeriodClosed reports whether every round of the period is complete.
func PeriodClosed(period domain.Period) bool {
	for _, round := range period.Rounds {
		if !round.Complete {
			return false
		}
	}
	return true
}

// RoundState reports where the round is in its results lifecycle.
func (s *ResultsService) RoundState(ctx context.Context, roundID int64) (domain.FreezeState, error) {
	frozen, err := s.frozen(ctx, domain.RoundKey(roundID))
	if err != nil {
		return "", err
	}
	if frozen {
		return domain.StateFrozen, nil
	}
	round, err := s.directory.GetRound(ctx, roundID)
	if err != nil {
		return "", err
	}
	solutions, err := s.solutions.RoundSolutions(ctx, roundID)
	if err != nil {
		return "", fmt.Errorf("load solutions: %w", err)
	}
	if RoundClosed(round, solutions, s.now()) {
		return domain.StateClosedComputable, nil
	}
	return domain.StateOpen, nil
}

// PeriodState reports where the period is in its results lifecycle.
func (s *ResultsService) PeriodState(ctx context.Context, periodID int64) (domain.FreezeState, error) {
	frozen, err := s.frozen(ctx, domain.PeriodKey(periodID))
	if err != nil {
		return "", err
	}
	if frozen {
		return domain.StateFrozen, nil
	}
	period, err := s.directory.GetPeriod(ctx, periodID)
	if err != nil {
		return "", err
	}
	if PeriodClosed(period) {
		return domain.StateClosedComputable, nil
	}
	return domain.StateOpen, nil
}

// ParticipantPeriodRow builds one participant's unranked row over a period.
func (s *ResultsService) ParticipantPeriodRow(ctx context.Context, periodID int64, participantID domain.ParticipantID) (domain.ResultRow, error) {
	in, err := s.loadPeriod(ctx, periodID)
	if err != nil {
		return domain.ResultRow{}, err
	}
	for _, p := range in.participants {
		if p.ID != participantID {
			continue
		}
		var all []domain.Solution
		for _, sols := range in.solutions {
			all = append(all, sols...)
		}
		return s.builder.PeriodRow(in.period, p, results.IndexSolutions(all)), nil
	}
	return domain.ResultRow{}, domain.ErrParticipantNotFound
}

// Invitations selects participants and substitutes from the period ranking,
// ordered by last and first name.
func (s *ResultsService) Invitations(ctx context.Context, periodID int64, participants, substitutes int) ([]domain.Invitation, error) {
	ranked, err := s.PeriodResults(ctx, periodID)
	if err != nil {
		return nil, err
	}
	invited := results.Invitations(ranked, participants, substitutes)
	results.SortByName(invited)
	return invited, nil
}

// SchoolInvitations is Invitations grouped by school.
func (s *ResultsService) SchoolInvitations(ctx context.Context, periodID int64, participants, substitutes int) ([]domain.SchoolGroup, error) {
	invited, err := s.Invitations(ctx, periodID, participants, substitutes)
	if err != nil {
		return nil, err
	}
	return results.GroupBySchool(invited), nil
}

// Subscribe returns a channel that receives the current results immediately
// and the frozen snapshot once it is frozen. The caller must invoke cancel.
func (s *ResultsService) Subscribe(ctx context.Context, key domain.SnapshotKey) (<-chan []domain.ResultRow, func(), error) {
	// register before computing; a freeze published meanwhile replaces the primed rows
	ch, prime, cancel := s.feed.Subscribe(key)
	rows, err := s.Results(ctx, key)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	prime(rows)
	return ch, cancel, nil
}
