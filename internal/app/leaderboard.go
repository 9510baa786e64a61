package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"quizboard-service/internal/domain"
)

// DefaultLeaderboardLimit is used when callers ask for a non-positive limit.
const DefaultLeaderboardLimit = 10

// LeaderboardRanker answers ranking queries over recorded scores. It keeps no state of its own.
type LeaderboardRanker struct {
	scores ScoreRecorder
	users  UserDirectory
	limit  int
	now    func() time.Time
}

func NewLeaderboardRanker(scores ScoreRecorder, users UserDirectory, limit int) *LeaderboardRanker {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	return &LeaderboardRanker{scores: scores, users: users, limit: limit, now: time.Now}
}

// Limit is the default list length of this ranker.
func (r *LeaderboardRanker) Limit() int {
	return r.limit
}

// Top returns the n best attempts across all users.
func (r *LeaderboardRanker) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	records, err := r.scores.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	users := map[string]domain.User{}
	if r.users != nil && len(records) > 0 {
		users, err = r.users.Lookup(ctx, userIDs(records))
		if err != nil {
			return nil, fmt.Errorf("lookup users: %w", err)
		}
	}
	return RankTop(records, users, r.limitOr(n)), nil
}

// History returns the n most recent attempts of one user.
func (r *LeaderboardRanker) History(ctx context.Context, userID string, n int) ([]domain.Attempt, error) {
	records, err := r.scores.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list scores of %s: %w", userID, err)
	}
	return RecentAttempts(records, r.limitOr(n)), nil
}

// Board combines Top and History for userID.
func (r *LeaderboardRanker) Board(ctx context.Context, userID string) (domain.Leaderboard, error) {
	top, err := r.Top(ctx, r.limit)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	history, err := r.History(ctx, userID, r.limit)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return domain.Leaderboard{Top: top, History: history, UpdatedAt: r.now().UTC()}, nil
}

func (r *LeaderboardRanker) limitOr(n int) int {
	if n <= 0 {
		return r.limit
	}
	return n
}

// RankTop orders records by percentage descending; equal percentages go to
// the earlier completion. Users missing from users fall back to their ID.
func RankTop(records []domain.ScoreRecord, users map[string]domain.User, n int) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(records))
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		name := rec.UserID
		if u, ok := users[rec.UserID]; ok && u.DisplayName != "" {
			name = u.DisplayName
		}
		entries = append(entries, domain.LeaderboardEntry{
			UserID:      rec.UserID,
			DisplayName: name,
			Score:       rec.Score,
			Total:       rec.Total,
			Percentage:  domain.Percentage(rec.Score, rec.Total),
			RecordedAt:  rec.RecordedAt,
		})
		ids = append(ids, rec.ID)
	}

	sort.Sort(byRank{entries: entries, ids: ids})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// byRank sorts entries together with their record IDs, which break the last ties.
type byRank struct {
	entries []domain.LeaderboardEntry
	ids     []int64
}

func (b byRank) Len() int { return len(b.entries) }

func (b byRank) Swap(i, j int) {
	b.entries[i], b.entries[j] = b.entries[j], b.entries[i]
	b.ids[i], b.ids[j] = b.ids[j], b.ids[i]
}

func (b byRank) Less(i, j int) bool {
	ei, ej := b.entries[i], b.entries[j]
	if ei.Percentage != ej.Percentage {
		return ei.Percentage > ej.Percentage
	}
	if !ei.RecordedAt.Equal(ej.RecordedAt) {
		return ei.RecordedAt.Before(ej.RecordedAt)
	}
	return b.ids[i] < b.ids[j]
}

// RecentAttempts returns up to n records, newest first.
func RecentAttempts(records []domain.ScoreRecord, n int) []domain.Attempt {
	sorted := make([]domain.ScoreRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RecordedAt.After(sorted[j].RecordedAt)
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}

	attempts := make([]domain.Attempt, 0, len(sorted))
	for _, rec := range sorted {
		attempts = append(attempts, domain.Attempt{
			Score:      rec.Score,
			Total:      rec.Total,
			Percentage: domain.Percentage(rec.Score, rec.Total),
			RecordedAt: rec.RecordedAt,
		})
	}
	return attempts
}

func userIDs(records []domain.ScoreRecord) []string {
	seen := make(map[string]struct{}, len(records))
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.UserID]; ok {
			continue
		}
		seen[rec.UserID] = struct{}{}
		ids = append(ids, rec.UserID)
	}
	return ids
}
