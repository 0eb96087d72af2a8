package services

import (
	"community_tool_share/apperr"
	"community_tool_share/db"
	"community_tool_share/models"
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

type ReviewService struct{ base }

var errDuplicateReview = apperr.Business("A review already exists for this borrow record")

// Create 只能评价已归还的借用，一条记录一条评价
func (s *ReviewService) Create(ctx context.Context, reviewerID, borrowRecordID string, rating int, content string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apperr.Validation("rating must be between 1 and 5")
	}
	var rv *models.Review
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		reviewer, err := tx.FindUserByID(ctx, reviewerID)
		if err != nil {
			return lookupErr(err, "User", "id", reviewerID)
		}
		rec, err := tx.FindBorrowByID(ctx, borrowRecordID)
		if err != nil {
			return lookupErr(err, "BorrowRecord", "id", borrowRecordID)
		}
		if rec.Status != models.BorrowReturned {
			return apperr.Business("Can only review after the tool has been returned")
		}
		exists, err := tx.ReviewExistsForBorrow(ctx, rec.ID)
		if err != nil {
			return apperr.Wrap(err, "check review")
		}
		if exists {
			return errDuplicateReview
		}

		rv = &models.Review{
			ID:             uuid.NewString(),
			BorrowRecordID: rec.ID,
			ReviewerID:     reviewer.ID,
			ToolID:         rec.ToolID,
			Rating:         rating,
			Content:        strings.TrimSpace(content),
			ReviewerName:   reviewer.DisplayName,
		}
		if err := tx.CreateReview(ctx, rv); err != nil {
			if errors.Is(err, db.ErrDuplicateReview) {
				return errDuplicateReview
			}
			return apperr.Wrap(err, "create review")
		}
		if _, err := tx.AddPoints(ctx, reviewer.ID, PointsReview, models.PointReview, "Points for writing a review"); err != nil {
			return apperr.Wrap(err, "award review points")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("review created", "review", rv.ID, "borrow", borrowRecordID, "rating", rating)
	return rv, nil
}

func (s *ReviewService) ListForTool(ctx context.Context, toolID string) ([]models.Review, error) {
	list, err := s.repo.ListReviews(ctx, db.ReviewFilter{ToolID: toolID})
	if err != nil {
		return nil, apperr.Wrap(err, "list tool reviews")
	}
	return list, nil
}

func (s *ReviewService) ListMine(ctx context.Context, userID string) ([]models.Review, error) {
	list, err := s.repo.ListReviews(ctx, db.ReviewFilter{ReviewerID: userID})
	if err != nil {
		return nil, apperr.Wrap(err, "list my reviews")
	}
	return list, nil
}
