package services

import (
	"community_tool_share/apperr"
	"community_tool_share/models"
	"context"
)

type PointService struct{ base }

// RankEntry 排行榜条目，只暴露公开字段
type RankEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"nickname"`
	Avatar      string `json:"avatar,omitempty"`
	Points      int    `json:"points"`
}

func (s *PointService) History(ctx context.Context, userID string) ([]models.PointRecord, error) {
	recs, err := s.repo.ListPointRecords(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(err, "list point records")
	}
	return recs, nil
}

func (s *PointService) Balance(ctx context.Context, userID string) (int, error) {
	u, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return 0, lookupErr(err, "User", "id", userID)
	}
	return u.Points, nil
}

func (s *PointService) Ranking(ctx context.Context) ([]RankEntry, error) {
	users, err := s.repo.RankUsers(ctx, RankingSize)
	if err != nil {
		return nil, apperr.Wrap(err, "rank users")
	}
	out := make([]RankEntry, 0, len(users))
	for i, u := range users {
		out = append(out, RankEntry{
			Rank:        i + 1,
			UserID:      u.ID,
			Username:    u.Username,
			DisplayName: u.DisplayName,
			Avatar:      u.Avatar,
			Points:      u.Points,
		})
	}
	return out, nil
}

// Reconcile 余额与流水和是否一致
func (s *PointService) Reconcile(ctx context.Context, userID string) (balance, ledger int, err error) {
	balance, err = s.Balance(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	ledger, err = s.repo.LedgerBalance(ctx, userID)
	if err != nil {
		return 0, 0, apperr.Wrap(err, "sum ledger")
	}
	return balance, ledger, nil
}
