package handlers

import (
	"net/http"

	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/request"
	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	rewarddto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/reward"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) CreateReward(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRewardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reward, err := h.rewards.CreateReward(r.Context(), &rewarddto.CreateRewardInput{
		UserID:     req.UserID,
		ReferralID: req.ReferralID,
		Type:       req.Type,
		Value:      req.Value,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, response.FromReward(reward))
}

func (h *Handler) UpdateRewardStatus(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateRewardStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reward, err := h.rewards.UpdateRewardStatus(r.Context(), &rewarddto.UpdateRewardStatusInput{
		RewardID: chi.URLParam(r, "id"),
		Status:   domain.RewardStatus(req.Status),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.FromReward(reward))
}

func (h *Handler) ListRewards(w http.ResponseWriter, r *http.Request) {
	userID, err := actingFor(r, r.URL.Query().Get("userId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	rewards, err := h.rewards.ListRewards(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.FromRewards(rewards))
}
