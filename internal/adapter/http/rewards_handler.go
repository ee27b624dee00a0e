package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	uc "nftlend-backend/internal/usecase/rewards"
)

type RewardsHandler struct{ uc *uc.Usecase }

func NewRewardsHandler(u *uc.Usecase) *RewardsHandler { return &RewardsHandler{uc: u} }

type creditRewardsReq struct {
	Collection string   `json:"collection" validate:"required,hex40"`
	AssetIDs   []uint64 `json:"asset_ids"  validate:"required,min=1"`
	Amounts    []uint64 `json:"amounts"    validate:"required,min=1"`
}

func (h *RewardsHandler) CreditRewards(c echo.Context) error {
	caller, ok := callerAddress(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid " + HeaderCallerAddress})
	}
	var req creditRewardsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Credit(c.Request().Context(), uc.CreditInput{
		Caller:     caller,
		Collection: req.Collection,
		AssetIDs:   req.AssetIDs,
		Amounts:    req.Amounts,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *RewardsHandler) ClaimRewards(c echo.Context) error {
	caller, ok := callerAddress(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid " + HeaderCallerAddress})
	}
	bundleID, err := bundleIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid bundle_id"})
	}
	dto, err := h.uc.Claim(c.Request().Context(), bundleID, caller)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
