package domain

import (
	"sort"
	"time"
)

// Question is a single timed multiple-choice question. The catalog is fixed
// at startup; questions are never mutated at runtime.
type Question struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Prompt      string   `json:"prompt"`
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"answerIndex"`
	MaxPoints   int      `json:"maxPoints"`
	MinPoints   int      `json:"minPoints"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

// Catalog is the ordered question list for one quiz run.
type Catalog struct {
	Questions []Question `json:"questions"`
}

// PlayerRecord is the persisted state of one participant. Each record is only
// ever written by its own session, so last-writer-wins per key is safe.
type PlayerRecord struct {
	PlayerID     string `json:"playerId"`
	Name         string `json:"name"`
	League       string `json:"league"`
	Score        int    `json:"score"`
	CorrectCount int    `json:"correctCount"`
	// TotalTime accumulates elapsed seconds on correct submissions only and
	// serves as the leaderboard tie-breaker.
	TotalTime float64   `json:"totalTime"`
	CurrentQ  int       `json:"currentQ"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LeaderboardEntry is a read-only projection of a player record.
type LeaderboardEntry struct {
	Rank         int     `json:"rank"`
	Name         string  `json:"name"`
	League       string  `json:"league"`
	Score        int     `json:"score"`
	CorrectCount int     `json:"correctCount"`
	TotalTime    float64 `json:"totalTime"`
	Progress     int     `json:"progress"`
}

// Leaderboard captures an ordered scoreboard snapshot.
type Leaderboard struct {
	League    string             `json:"league,omitempty"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// DrawRecord is one appended lucky-draw outcome.
type DrawRecord struct {
	Winner  string    `json:"winner"`
	League  string    `json:"league"`
	DrawnAt time.Time `json:"drawnAt"`
}

// AnswerResult summarizes one submission for the participant's feedback view.
type AnswerResult struct {
	QuestionID    int     `json:"questionId"`
	Correct       bool    `json:"correct"`
	Elapsed       float64 `json:"elapsed"`
	Awarded       int     `json:"awarded"`
	TotalScore    int     `json:"totalScore"`
	CorrectChoice string  `json:"correctChoice"`
	Explanation   string  `json:"explanation,omitempty"`
}

// SortEntries orders leaderboard entries by score descending, total time
// ascending, correct count descending, then name, and assigns ranks.
func SortEntries(entries []LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].TotalTime != entries[j].TotalTime {
			return entries[i].TotalTime < entries[j].TotalTime
		}
		if entries[i].CorrectCount != entries[j].CorrectCount {
			return entries[i].CorrectCount > entries[j].CorrectCount
		}
		return entries[i].Name < entries[j].Name
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}

// Entry projects the record into its leaderboard form. Rank is assigned by
// SortEntries.
func (r PlayerRecord) Entry() LeaderboardEntry {
	return LeaderboardEntry{
		Name:         r.Name,
		League:       r.League,
		Score:        r.Score,
		CorrectCount: r.CorrectCount,
		TotalTime:    r.TotalTime,
		Progress:     r.CurrentQ,
	}
}
