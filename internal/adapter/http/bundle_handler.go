package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	uc "nftlend-backend/internal/usecase/bundle"
)

type BundleHandler struct{ uc *uc.Usecase }

func NewBundleHandler(u *uc.Usecase) *BundleHandler { return &BundleHandler{uc: u} }

type createBundleReq struct {
	Collection         string   `json:"collection"           validate:"required,hex40"`
	AssetIDs           []uint64 `json:"asset_ids"            validate:"required,min=1"`
	UpfrontFee         uint64   `json:"upfront_fee"`
	RewardSharePercent uint8    `json:"reward_share_percent" validate:"lte=100"`
	PeriodSeconds      int64    `json:"period_seconds"       validate:"required,gte=1"`
}

func (h *BundleHandler) CreateBundle(c echo.Context) error {
	caller, ok := callerAddress(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid " + HeaderCallerAddress})
	}
	var req createBundleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	dto, err := h.uc.Create(c.Request().Context(), uc.CreateBundleInput{
		Caller:             caller,
		Collection:         req.Collection,
		AssetIDs:           req.AssetIDs,
		UpfrontFee:         req.UpfrontFee,
		RewardSharePercent: req.RewardSharePercent,
		PeriodSeconds:      req.PeriodSeconds,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *BundleHandler) GetBundle(c echo.Context) error {
	bundleID, err := bundleIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid bundle_id"})
	}
	dto, err := h.uc.Get(c.Request().Context(), bundleID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *BundleHandler) ResolveAsset(c echo.Context) error {
	collection := strings.ToLower(c.Param("collection"))
	if !reHex40.MatchString(collection) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid collection"})
	}
	assetID, err := assetIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid asset_id"})
	}
	dto, err := h.uc.Resolve(c.Request().Context(), collection, assetID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *BundleHandler) HasAccess(c echo.Context) error {
	collection := strings.ToLower(c.Param("collection"))
	if !reHex40.MatchString(collection) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid collection"})
	}
	assetID, err := assetIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid asset_id"})
	}
	address := strings.ToLower(c.QueryParam("address"))
	if !reHex40.MatchString(address) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid address"})
	}
	ok, err := h.uc.HasAccess(c.Request().Context(), collection, assetID, address)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"collection": collection,
		"asset_id":   assetID,
		"address":    address,
		"has_access": ok,
	})
}
