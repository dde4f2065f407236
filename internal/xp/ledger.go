// Package xp implements the append-only XP ledger and everything derived
// from it: totals, levels, activity streaks, and the cached learner profile.
package xp

import (
	"errors"
	"time"
)

// ErrNonPositiveAmount is returned when an award would not increase total XP.
var ErrNonPositiveAmount = errors.New("xp amount must be positive")

// Source identifies what kind of event granted XP.
type Source string

const (
	SourceLesson         Source = "lesson"
	SourceDailyChallenge Source = "daily_challenge"
	SourceAchievement    Source = "achievement"
	SourceBonus          Source = "bonus"
)

// Transaction is one immutable ledger row. Rows are never updated or deleted.
type Transaction struct {
	ID          string
	UserID      string
	Amount      int64
	Source      Source
	ReferenceID string
	CreatedAt   time.Time
	Sequence    int64
}

// Total sums the amounts of the given transactions.
func Total(txs []Transaction) int64 {
	var total int64
	for _, tx := range txs {
		total += tx.Amount
	}
	return total
}

// TotalsBySource sums amounts per source.
func TotalsBySource(txs []Transaction) map[Source]int64 {
	out := make(map[Source]int64)
	for _, tx := range txs {
		out[tx.Source] += tx.Amount
	}
	return out
}

// ActivityDays returns the distinct UTC days on which XP was earned.
func ActivityDays(txs []Transaction) []time.Time {
	seen := make(map[time.Time]bool)
	var days []time.Time
	for _, tx := range txs {
		d := Day(tx.CreatedAt)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	return days
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
