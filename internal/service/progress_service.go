package service

import (
	"coding_arena_backend/internal/progression"
	"coding_arena_backend/internal/repository"
	"coding_arena_backend/pkg/logger"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	leaderboardCacheKey = "leaderboard:top"
	leaderboardCacheTTL = 30 * time.Second
	leaderboardSize     = 10
)

// ProgressService 用户进度视图与排行榜。排行榜走 Redis cache-aside，
// 缓存故障时直接回落数据库。
type ProgressService struct {
	UserRepo *repository.UserRepository
	Redis    *redis.Client
}

func NewProgressService(userRepo *repository.UserRepository, rdb *redis.Client) *ProgressService {
	return &ProgressService{UserRepo: userRepo, Redis: rdb}
}

// ProgressSummary 用户当前进度与下一段位的距离
type ProgressSummary struct {
	Points            int    `json:"points"`
	Rank              string `json:"rank"`
	NextRank          string `json:"nextRank,omitempty"`
	NextRankThreshold int    `json:"nextRankThreshold,omitempty"`
	PointsToNextRank  int    `json:"pointsToNextRank,omitempty"`
	TaskEquivalent    string `json:"taskEquivalent"`
}

type LeaderboardEntry struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Points   int    `json:"points"`
	Rank     string `json:"rank"`
	Avatar   string `json:"avatar,omitempty"`
}

func (s *ProgressService) GetProgress(userID uint) (*ProgressSummary, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	summary := &ProgressSummary{
		Points:         user.Points,
		Rank:           string(progression.RankFor(user.Points)),
		TaskEquivalent: taskEquivalent(user.Points),
	}

	if next, ok := progression.NextThreshold(user.Points); ok {
		summary.NextRank = string(next.Rank)
		summary.NextRankThreshold = next.Threshold
		summary.PointsToNextRank = next.Threshold - user.Points
	}

	return summary, nil
}

// taskEquivalent 把到下一段位的积分差换算成"还差几个任务"的提示文案。
// 换算基准取各难度的典型任务分值：Easy 250 / Medium 400 / Hard 600。
func taskEquivalent(points int) string {
	next, ok := progression.NextThreshold(points)
	if !ok {
		return "Max Rank Achieved"
	}

	gap := next.Threshold - points

	denominator, label := 250, "Easy"
	switch {
	case gap > 600:
		denominator, label = 600, "Hard"
	case gap > 400:
		denominator, label = 400, "Medium"
	}

	count := (gap + denominator - 1) / denominator
	if count == 1 {
		if label != "Easy" {
			return fmt.Sprintf("1 Solid Submission to %s", next.Rank)
		}
		return fmt.Sprintf("1 Easy Submission to %s", next.Rank)
	}
	return fmt.Sprintf("%d %s Submissions to %s", count, label, next.Rank)
}

func (s *ProgressService) GetLeaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, leaderboardCacheKey).Bytes(); err == nil {
			var entries []LeaderboardEntry
			if json.Unmarshal(cached, &entries) == nil {
				return entries, nil
			}
		}
	}

	users, err := s.UserRepo.FindTopByPoints(leaderboardSize)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(users))
	for i, user := range users {
		entries[i] = LeaderboardEntry{
			Position: i + 1,
			Name:     user.Name,
			Points:   user.Points,
			Rank:     string(progression.RankFor(user.Points)),
			Avatar:   user.Avatar,
		}
	}

	if s.Redis != nil {
		if data, err := json.Marshal(entries); err == nil {
			if err := s.Redis.Set(ctx, leaderboardCacheKey, data, leaderboardCacheTTL).Err(); err != nil {
				logger.Log.Warn("leaderboard cache write failed", zap.Error(err))
			}
		}
	}

	return entries, nil
}

// UpdateScore 积分落账后失效排行榜缓存（ScoreCache 实现，尽力而为）
func (s *ProgressService) UpdateScore(ctx context.Context, userID uint, points int) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, leaderboardCacheKey).Err(); err != nil {
		logger.Log.Warn("leaderboard cache invalidation failed",
			zap.Uint("userId", userID),
			zap.Error(err),
		)
	}
}
