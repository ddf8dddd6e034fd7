package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veritaschain/pociv-backend/internal/scoring"
	"github.com/veritaschain/pociv-backend/internal/services"
	"github.com/veritaschain/pociv-backend/internal/temporalx/rating"
)

type RatingRequest struct {
	ValidatorID     int64 `json:"validator_id" binding:"required"`
	TargetMessageID int64 `json:"target_message_id" binding:"required"`
	TargetUserID    int64 `json:"target_user_id" binding:"required"`
	ChannelID       int64 `json:"channel_id" binding:"required"`
	Metrics         []int `json:"metrics" binding:"required"`
}

type RatingResponse struct {
	WorkflowID string `json:"workflow_id"`
	Message    string `json:"message"`
}

type RatingHandler struct {
	ratings services.RatingService
}

func NewRatingHandler(ratings services.RatingService) *RatingHandler {
	return &RatingHandler{ratings: ratings}
}

// POST /api/submit-rating
func (h *RatingHandler) SubmitRating(c *gin.Context) {
	var req RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	workflowID, err := h.ratings.Submit(c.Request.Context(), rating.Input{
		ValidatorID:     req.ValidatorID,
		TargetMessageID: req.TargetMessageID,
		TargetUserID:    req.TargetUserID,
		ChannelID:       req.ChannelID,
		Metrics:         req.Metrics,
	})
	if errors.Is(err, scoring.ErrInvalidMetrics) {
		RespondError(c, http.StatusBadRequest, "invalid_metrics", err)
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "submit_failed", err)
		return
	}

	RespondOK(c, RatingResponse{
		WorkflowID: workflowID,
		Message:    "Rating submitted successfully. Workflow started.",
	})
}
