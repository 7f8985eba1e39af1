package domain

import (
	"fmt"
	"time"
)

// ParticipantID identifies one participant's enrollment in one period.
// It is totally ordered; result merging relies on that order.
type ParticipantID int64

// School is the school a participant attends.
type School struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Grade is a school grade; YearsUntilGraduation drives weighted scoring.
type Grade struct {
	Tag                  string `json:"tag"`
	YearsUntilGraduation int    `json:"years_until_graduation"`
}

// Participant is a registration in a period as seen by the results engine.
type Participant struct {
	ID        ParticipantID `json:"id"`
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
	School    School        `json:"school"`
	Grade     *Grade        `json:"grade,omitempty"`
}

// ScoringContext returns the attributes scoring strategies may depend on.
func (p Participant) ScoringContext() ScoringContext {
	if p.Grade == nil {
		return ScoringContext{}
	}
	years := p.Grade.YearsUntilGraduation
	return ScoringContext{YearsUntilGraduation: &years}
}

// Ref is the display reference embedded in result rows.
func (p Participant) Ref() ParticipantRef {
	ref := ParticipantRef{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		School:    p.School,
	}
	if p.Grade != nil {
		ref.Grade = p.Grade.Tag
	}
	return ref
}

// ScoringContext carries per-participant inputs to scoring strategies.
// A nil YearsUntilGraduation means the grade is unknown.
type ScoringContext struct {
	YearsUntilGraduation *int
}

// Problem belongs to exactly one round; Order is 1-based and dense within it.
type Problem struct {
	ID      int64 `json:"id"`
	RoundID int64 `json:"round_id"`
	Order   int   `json:"order"`
}

// Round is a series: an ordered batch of problems sharing a deadline.
type Round struct {
	ID            int64     `json:"id"`
	PeriodID      int64     `json:"period_id"`
	Order         int       `json:"order"`
	Deadline      time.Time `json:"deadline"`
	Complete      bool      `json:"complete"`
	ScoringMethod string    `json:"scoring_method"`
	Problems      []Problem `json:"problems"`
}

// Period is a semester made of ordered rounds.
type Period struct {
	ID            int64   `json:"id"`
	Competition   string  `json:"competition"`
	Year          int     `json:"year"`
	Season        string  `json:"season"`
	ScoringMethod string  `json:"scoring_method"`
	Rounds        []Round `json:"rounds"`
}

// Name is a human readable label used in exports.
func (p Period) Name() string {
	return fmt.Sprintf("%s %d %s", p.Competition, p.Year, p.Season)
}

// Solution links a participant to a problem. A nil Score means not yet graded.
type Solution struct {
	ID            int64         `json:"id"`
	ParticipantID ParticipantID `json:"participant_id"`
	ProblemID     int64         `json:"problem_id"`
	Score         *int          `json:"score"`
	UploadedAt    time.Time     `json:"uploaded_at"`
	IsOnline      bool          `json:"is_online"`
	LateTag       string        `json:"late_tag,omitempty"`
}

// Graded reports whether the solution has been corrected.
func (s Solution) Graded() bool {
	return s.Score != nil
}

// ParticipantRef is the participant part of a serialized result row.
type ParticipantRef struct {
	ID        ParticipantID `json:"id"`
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
	School    School        `json:"school"`
	Grade     string        `json:"grade,omitempty"`
}

// ProblemEntry is the display entry for one problem in a result row.
type ProblemEntry struct {
	Points      string `json:"points"`
	SolutionRef *int64 `json:"solution_ref"`
	ProblemRef  int64  `json:"problem_ref"`
	Votes       int    `json:"votes"`
}

// Display markers for problem entries.
const (
	PointsAbsent   = "-"
	PointsUngraded = "?"
)

// ResultRow is the computed result of one participant.
// Solutions holds one list of entries per round, in round order.
type ResultRow struct {
	RankStart   int              `json:"rank_start"`
	RankEnd     int              `json:"rank_end"`
	RankChanged bool             `json:"rank_changed"`
	Participant ParticipantRef   `json:"participant"`
	Subtotal    []int            `json:"subtotal"`
	Total       int              `json:"total"`
	Solutions   [][]ProblemEntry `json:"solutions"`
}

// Invitation is one invited participant for an in-person event.
type Invitation struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	School        School `json:"school"`
	IsParticipant bool   `json:"is_participant"`
}

// SchoolGroup bundles invitations of one school.
type SchoolGroup struct {
	School       School       `json:"school"`
	Participants []Invitation `json:"participants"`
}

// SnapshotKind distinguishes what a frozen snapshot belongs to.
type SnapshotKind string

const (
	KindRound  SnapshotKind = "round"
	KindPeriod SnapshotKind = "period"
)

// SnapshotKey addresses the frozen results of one round or period.
type SnapshotKey struct {
	Kind SnapshotKind
	ID   int64
}

func RoundKey(id int64) SnapshotKey  { return SnapshotKey{Kind: KindRound, ID: id} }
func PeriodKey(id int64) SnapshotKey { return SnapshotKey{Kind: KindPeriod, ID: id} }

func (k SnapshotKey) String() string {
	return fmt.Sprintf("%s:%d", k.Kind, k.ID)
}

// FreezeState is the results lifecycle of a round or period.
type FreezeState string

const (
	StateOpen             FreezeState = "OPEN"
	StateClosedComputable FreezeState = "CLOSED_COMPUTABLE"
	StateFrozen           FreezeState = "FROZEN"
)
