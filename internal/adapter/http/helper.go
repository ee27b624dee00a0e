package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"nftlend-backend/internal/domain/access"
	"nftlend-backend/internal/domain/bundle"
	"nftlend-backend/internal/domain/custody"
	"nftlend-backend/internal/domain/payment"
	"nftlend-backend/internal/usecase/rewards"
)

// HeaderCallerAddress carries the caller identity for every engine call.
// The surrounding platform authenticates it; the engine only authorizes.
const HeaderCallerAddress = "Ax-Caller-Address"

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, fe := range list {
		if fe.Field == field && strings.Contains(fe.Message, substr) {
			return true
		}
	}
	return false
}

func callerAddress(c echo.Context) (string, bool) {
	addr := strings.ToLower(strings.TrimSpace(c.Request().Header.Get(HeaderCallerAddress)))
	return addr, reHex40.MatchString(addr)
}

func bundleIDParam(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("bundle_id"), 10, 64)
}

func assetIDParam(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("asset_id"), 10, 64)
}

// writeDomainError maps the engine's error taxonomy onto HTTP statuses:
// authorization 403, not-found 404, state-conflict 409, validation 422,
// adapter-propagated payment/custody failures 422.
func writeDomainError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, access.ErrNotAuthorized):
		status = http.StatusForbidden
	case errors.Is(err, bundle.ErrNotFound),
		errors.Is(err, custody.ErrAssetNotFound):
		status = http.StatusNotFound
	case errors.Is(err, bundle.ErrAlreadyActive),
		errors.Is(err, bundle.ErrNotActive),
		errors.Is(err, bundle.ErrStillActive),
		errors.Is(err, bundle.ErrAssetAlreadyBundled):
		status = http.StatusConflict
	case errors.Is(err, bundle.ErrEmptyAssetList),
		errors.Is(err, bundle.ErrPeriodOutOfRange),
		errors.Is(err, bundle.ErrShareOutOfRange),
		errors.Is(err, rewards.ErrEmptyBatch),
		errors.Is(err, rewards.ErrLengthMismatch),
		errors.Is(err, rewards.ErrAmountOverflow),
		errors.Is(err, custody.ErrNotAssetOwner),
		errors.Is(err, custody.ErrCollectionNotAllowed),
		errors.Is(err, custody.ErrNotInCustody),
		errors.Is(err, payment.ErrNoAccount),
		errors.Is(err, payment.ErrInsufficientBalance):
		status = http.StatusUnprocessableEntity
	}
	return c.JSON(status, ErrorResponse{Error: err.Error()})
}
