package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"timer-trivia-service/internal/domain"
	"timer-trivia-service/internal/scoring"
)

// PlayerStore persists participant records keyed by player id (in-memory,
// Redis, etc). List returns entries already ordered per the leaderboard rules.
type PlayerStore interface {
	Put(ctx context.Context, record domain.PlayerRecord) error
	Get(ctx context.Context, playerID string) (domain.PlayerRecord, error)
	List(ctx context.Context, league string) ([]domain.LeaderboardEntry, error)
}

// DrawLog is the append-only lucky-draw record. RecordWinner is atomic: under
// concurrent callers, or within the replay window, it returns the already
// recorded winner with fresh=false instead of appending a second one.
type DrawLog interface {
	RecordWinner(ctx context.Context, entry domain.DrawRecord) (stored domain.DrawRecord, fresh bool, err error)
	// CurrentWinner reports the winner drawn within the replay window, if any.
	CurrentWinner(ctx context.Context) (domain.DrawRecord, bool, error)
	RecentWinners(ctx context.Context, limit int) ([]domain.DrawRecord, error)
}

// CatalogRepository loads the question catalog (from cache/backing store).
type CatalogRepository interface {
	Catalog(ctx context.Context) (domain.Catalog, error)
}

// Options tune the quiz flow. Zero values fall back to the canonical setup:
// checkpoints after questions 3/6/9, the lucky draw opening at 9, linear
// scoring, and the wall clock.
type Options struct {
	Checkpoints  []int
	DrawQuestion int
	MaxNameLen   int
	Strategy     scoring.Strategy
	Clock        func() time.Time
	Rand         *rand.Rand
}

func (o Options) withDefaults() Options {
	if o.Checkpoints == nil {
		o.Checkpoints = []int{3, 6, 9}
	}
	if o.DrawQuestion == 0 {
		o.DrawQuestion = 9
	}
	if o.MaxNameLen == 0 {
		o.MaxNameLen = 32
	}
	if o.Strategy == nil {
		o.Strategy = scoring.Linear{}
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return o
}

// QuizService drives per-player quiz sessions over a shared player store and
// lucky-draw log.
type QuizService struct {
	players  PlayerStore
	catalogs CatalogRepository
	draws    DrawLog
	opts     Options

	mu       sync.RWMutex
	sessions map[string]*Session

	subMu       sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewQuizService(players PlayerStore, catalogs CatalogRepository, draws DrawLog, opts Options) *QuizService {
	return &QuizService{
		players:     players,
		catalogs:    catalogs,
		draws:       draws,
		opts:        opts.withDefaults(),
		sessions:    make(map[string]*Session),
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// Register validates the name, creates (or resumes) the player record, and
// opens a session. The record is persisted immediately so the participant is
// visible on the leaderboard before answering anything.
func (s *QuizService) Register(ctx context.Context, name, league string) (domain.PlayerRecord, error) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < 2 {
		return domain.PlayerRecord{}, domain.ErrNameRequired
	}
	if utf8.RuneCountInString(name) > s.opts.MaxNameLen {
		return domain.PlayerRecord{}, domain.ErrNameTooLong
	}

	cat, err := s.catalogs.Catalog(ctx)
	if err != nil {
		return domain.PlayerRecord{}, err
	}

	playerID := name + ":" + league
	record, err := s.players.Get(ctx, playerID)
	if errors.Is(err, domain.ErrPlayerNotFound) {
		record = domain.PlayerRecord{
			PlayerID:  playerID,
			Name:      name,
			League:    league,
			UpdatedAt: s.opts.Clock(),
		}
		if err := s.players.Put(ctx, record); err != nil {
			return domain.PlayerRecord{}, fmt.Errorf("register %s: %w", playerID, err)
		}
	} else if err != nil {
		return domain.PlayerRecord{}, fmt.Errorf("register %s: %w", playerID, err)
	}

	s.mu.Lock()
	if _, ok := s.sessions[playerID]; !ok {
		s.sessions[playerID] = newSession(record, len(cat.Questions), s.opts.Clock)
	}
	s.mu.Unlock()

	s.broadcast(ctx)
	return record, nil
}

// StartQuestion returns the current question and arms its timer. Re-entering
// the same question does not reset the timer; only advancing does.
func (s *QuizService) StartQuestion(ctx context.Context, playerID string) (domain.Question, error) {
	session, err := s.session(playerID)
	if err != nil {
		return domain.Question{}, err
	}
	cat, err := s.catalogs.Catalog(ctx)
	if err != nil {
		return domain.Question{}, err
	}
	return session.startQuestion(cat)
}

// SubmitAnswer scores the choice against the current question, updates and
// persists the player record, and moves the session into feedback. A store
// failure is surfaced but the in-session record keeps the points; the next
// successful Put carries them.
func (s *QuizService) SubmitAnswer(ctx context.Context, playerID string, choiceIndex int) (domain.AnswerResult, error) {
	session, err := s.session(playerID)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	cat, err := s.catalogs.Catalog(ctx)
	if err != nil {
		return domain.AnswerResult{}, err
	}

	result, record, err := session.submit(cat, choiceIndex, s.opts.Strategy)
	if err != nil {
		return domain.AnswerResult{}, err
	}

	if err := s.players.Put(ctx, record); err != nil {
		return result, fmt.Errorf("persist answer for %s: %w", playerID, err)
	}
	s.broadcast(ctx)
	return result, nil
}

// AdvanceOutcome describes where the session landed after Advance.
type AdvanceOutcome struct {
	Checkpoint    bool
	CheckpointAt  int
	DrawAvailable bool
	Finished      bool
	Question      *domain.Question
	Leaderboard   domain.Leaderboard
}

// Advance moves past feedback: into a checkpoint when the completed question
// number is configured as one, otherwise to the next question or the finish.
// A second Advance leaves the checkpoint.
func (s *QuizService) Advance(ctx context.Context, playerID string) (AdvanceOutcome, error) {
	session, err := s.session(playerID)
	if err != nil {
		return AdvanceOutcome{}, err
	}
	cat, err := s.catalogs.Catalog(ctx)
	if err != nil {
		return AdvanceOutcome{}, err
	}

	outcome, err := session.advance(cat, s.opts.Checkpoints, s.opts.DrawQuestion)
	if err != nil {
		return AdvanceOutcome{}, err
	}
	if outcome.Checkpoint || outcome.Finished {
		lb, lbErr := s.Leaderboard(ctx, "")
		if lbErr == nil {
			outcome.Leaderboard = lb
		}
	}
	return outcome, nil
}

// RunLuckyDraw picks a uniform winner among players who reached the trigger
// question, excluding prior winners. fresh=false means a winner drawn within
// the replay window was reused.
func (s *QuizService) RunLuckyDraw(ctx context.Context, league string) (domain.DrawRecord, bool, error) {
	// Within the replay window the cached winner is reused; this check runs
	// before eligibility filtering, which excludes prior winners.
	if current, active, err := s.draws.CurrentWinner(ctx); err != nil {
		return domain.DrawRecord{}, false, fmt.Errorf("read draw log: %w", err)
	} else if active {
		return current, false, nil
	}

	past, err := s.draws.RecentWinners(ctx, 0)
	if err != nil {
		return domain.DrawRecord{}, false, fmt.Errorf("read draw log: %w", err)
	}
	won := make(map[string]bool, len(past))
	for _, w := range past {
		won[w.Winner] = true
	}

	entries, err := s.players.List(ctx, league)
	if err != nil {
		return domain.DrawRecord{}, false, fmt.Errorf("list players: %w", err)
	}
	var pool []domain.LeaderboardEntry
	for _, e := range entries {
		if e.Progress >= s.opts.DrawQuestion && !won[e.Name] {
			pool = append(pool, e)
		}
	}
	if len(pool) == 0 {
		return domain.DrawRecord{}, false, domain.ErrNoEligibleParticipants
	}

	pick := pool[s.opts.Rand.Intn(len(pool))]
	return s.draws.RecordWinner(ctx, domain.DrawRecord{
		Winner:  pick.Name,
		League:  pick.League,
		DrawnAt: s.opts.Clock(),
	})
}

// RecentWinners exposes the draw log, most recent first.
func (s *QuizService) RecentWinners(ctx context.Context, limit int) ([]domain.DrawRecord, error) {
	return s.draws.RecentWinners(ctx, limit)
}

// QuestionCount reports the size of the loaded catalog.
func (s *QuizService) QuestionCount(ctx context.Context) (int, error) {
	cat, err := s.catalogs.Catalog(ctx)
	if err != nil {
		return 0, err
	}
	return len(cat.Questions), nil
}

// Leaderboard computes the ordered scoreboard on demand, optionally filtered
// by league.
func (s *QuizService) Leaderboard(ctx context.Context, league string) (domain.Leaderboard, error) {
	entries, err := s.players.List(ctx, league)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("list players: %w", err)
	}
	return domain.Leaderboard{
		League:    league,
		Entries:   entries,
		UpdatedAt: s.opts.Clock(),
	}, nil
}

// Subscribe returns a channel that receives leaderboard snapshots after every
// registration or scored answer. The caller must invoke cancel to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	initial, err := s.Leaderboard(ctx, "")
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan domain.Leaderboard, 8)
	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()

	ch <- initial

	cancel := func() {
		s.subMu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.subMu.Unlock()
	}
	return ch, cancel, nil
}

func (s *QuizService) broadcast(ctx context.Context) {
	s.subMu.Lock()
	n := len(s.subscribers)
	s.subMu.Unlock()
	if n == 0 {
		return
	}

	lb, err := s.Leaderboard(ctx, "")
	if err != nil {
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- lb:
		default:
			// Drop the stale snapshot so a slow reader never blocks scoring.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

func (s *QuizService) session(playerID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[playerID]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	return session, nil
}

// Session is the in-process state machine for one participant. All persistent
// state lives in the player record; the session adds only the phase, the
// question timer, and the last feedback.
type Session struct {
	mu     sync.Mutex
	record domain.PlayerRecord
	total  int
	now    func() time.Time

	state     sessionState
	qIndex    int
	timerSet  bool
	startedAt time.Time
}

type sessionState int

const (
	stateAnswering sessionState = iota
	stateFeedback
	stateCheckpoint
	stateFinished
)

func newSession(record domain.PlayerRecord, totalQuestions int, now func() time.Time) *Session {
	s := &Session{
		record: record,
		total:  totalQuestions,
		now:    now,
		qIndex: record.CurrentQ,
	}
	if s.qIndex >= totalQuestions {
		s.state = stateFinished
	}
	return s
}

func (s *Session) startQuestion(cat domain.Catalog) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateAnswering {
		return domain.Question{}, domain.ErrInvalidState
	}
	if !s.timerSet {
		s.timerSet = true
		s.startedAt = s.now()
	}
	return cat.Questions[s.qIndex], nil
}

func (s *Session) submit(cat domain.Catalog, choiceIndex int, strategy scoring.Strategy) (domain.AnswerResult, domain.PlayerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateAnswering || !s.timerSet {
		return domain.AnswerResult{}, domain.PlayerRecord{}, domain.ErrInvalidState
	}

	q := cat.Questions[s.qIndex]
	if choiceIndex < 0 || choiceIndex >= len(q.Choices) {
		return domain.AnswerResult{}, domain.PlayerRecord{}, domain.ErrInvalidChoice
	}

	now := s.now()
	elapsed := roundCentis(now.Sub(s.startedAt).Seconds())
	correct := choiceIndex == q.AnswerIndex
	points := strategy.Score(correct, elapsed, q.MaxPoints, q.MinPoints)

	if correct {
		s.record.Score += points
		s.record.CorrectCount++
		s.record.TotalTime = roundCentis(s.record.TotalTime + elapsed)
	}
	s.record.CurrentQ = s.qIndex + 1
	s.record.UpdatedAt = now
	s.state = stateFeedback

	return domain.AnswerResult{
		QuestionID:    q.ID,
		Correct:       correct,
		Elapsed:       elapsed,
		Awarded:       points,
		TotalScore:    s.record.Score,
		CorrectChoice: q.Choices[q.AnswerIndex],
		Explanation:   q.Explanation,
	}, s.record, nil
}

func (s *Session) advance(cat domain.Catalog, checkpoints []int, drawQuestion int) (AdvanceOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateFeedback:
		completed := s.qIndex + 1
		s.qIndex++
		s.timerSet = false
		if containsInt(checkpoints, completed) {
			s.state = stateCheckpoint
			return AdvanceOutcome{
				Checkpoint:    true,
				CheckpointAt:  completed,
				DrawAvailable: completed == drawQuestion,
			}, nil
		}
		return s.resumeLocked(cat), nil
	case stateCheckpoint:
		return s.resumeLocked(cat), nil
	default:
		return AdvanceOutcome{}, domain.ErrInvalidState
	}
}

// resumeLocked moves into the next answering phase, or the finish when the
// catalog is exhausted.
func (s *Session) resumeLocked(cat domain.Catalog) AdvanceOutcome {
	if s.qIndex >= s.total {
		s.state = stateFinished
		return AdvanceOutcome{Finished: true}
	}
	s.state = stateAnswering
	q := cat.Questions[s.qIndex]
	return AdvanceOutcome{Question: &q}
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// roundCentis rounds seconds to 0.01s, the precision shown to players and
// accumulated for the tie-breaker.
func roundCentis(seconds float64) float64 {
	return math.Round(seconds*100) / 100
}
