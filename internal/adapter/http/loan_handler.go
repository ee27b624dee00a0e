package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	uc "nftlend-backend/internal/usecase/loan"
)

type LoanHandler struct{ uc *uc.Usecase }

func NewLoanHandler(u *uc.Usecase) *LoanHandler { return &LoanHandler{uc: u} }

// ActivateLoan starts the loan; the caller is the borrower paying the fee.
func (h *LoanHandler) ActivateLoan(c echo.Context) error {
	caller, ok := callerAddress(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid " + HeaderCallerAddress})
	}
	bundleID, err := bundleIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid bundle_id"})
	}
	dto, err := h.uc.Activate(c.Request().Context(), bundleID, caller)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) ReclaimBundle(c echo.Context) error {
	caller, ok := callerAddress(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid " + HeaderCallerAddress})
	}
	bundleID, err := bundleIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid bundle_id"})
	}
	dto, err := h.uc.Reclaim(c.Request().Context(), bundleID, caller)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
