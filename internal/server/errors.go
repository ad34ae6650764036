package server

import (
	"errors"
	"net/http"

	"github.com/0xtarunkm/star-fee-distribution/internal/domain"
	"github.com/0xtarunkm/star-fee-distribution/internal/storage"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// errorStatus maps domain sentinel errors to HTTP status and a stable
// machine-readable code. Unknown errors surface as 500.
func errorStatus(err error) (int, string) {
	switch {
	// Validation failures: the request itself is unacceptable.
	case errors.Is(err, domain.ErrInvalidDepositAmount):
		return http.StatusBadRequest, "invalid_deposit_amount"
	case errors.Is(err, domain.ErrInsufficientTokenBalance):
		return http.StatusBadRequest, "insufficient_token_balance"
	case errors.Is(err, domain.ErrInvalidY0Allocation):
		return http.StatusBadRequest, "invalid_y0_allocation"
	case errors.Is(err, domain.ErrInvalidFeeShare):
		return http.StatusBadRequest, "invalid_fee_share"
	case errors.Is(err, domain.ErrCreatorWalletNotProvided):
		return http.StatusBadRequest, "creator_wallet_not_provided"
	case errors.Is(err, domain.ErrBaseWeightMustBeZero):
		return http.StatusBadRequest, "base_weight_must_be_zero"
	case errors.Is(err, domain.ErrQuoteWeightMustBe10000):
		return http.StatusBadRequest, "quote_weight_must_be_10000"
	case errors.Is(err, domain.ErrLowerTickTooHigh):
		return http.StatusBadRequest, "lower_tick_too_high"
	case errors.Is(err, domain.ErrUpperTickTooLow):
		return http.StatusBadRequest, "upper_tick_too_low"
	case errors.Is(err, domain.ErrInvalidFeeTier):
		return http.StatusBadRequest, "invalid_fee_tier"
	case errors.Is(err, storage.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"

	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "not_found"

	// Sequencing conflicts: legal requests at the wrong moment.
	case errors.Is(err, domain.ErrConfigAlreadyInitialized):
		return http.StatusConflict, "config_already_initialized"
	case errors.Is(err, domain.ErrInvalidPaginationCursor):
		return http.StatusConflict, "invalid_pagination_cursor"
	case errors.Is(err, domain.ErrDistributionNotStarted):
		return http.StatusConflict, "distribution_not_started"
	case errors.Is(err, domain.ErrDayAlreadyClosed):
		return http.StatusConflict, "day_already_closed"
	case errors.Is(err, domain.ErrDayNotComplete):
		return http.StatusConflict, "day_not_complete"
	case errors.Is(err, domain.ErrDailyCapExceeded):
		return http.StatusConflict, "daily_cap_exceeded"
	case errors.Is(err, domain.ErrNoFeesToClaim):
		return http.StatusConflict, "no_fees_to_claim"
	case errors.Is(err, domain.ErrBaseFeesDetected):
		return http.StatusConflict, "base_fees_detected"

	case errors.Is(err, domain.ErrDistributionTooFrequent):
		return http.StatusTooManyRequests, "distribution_too_frequent"

	case errors.Is(err, domain.ErrMathOverflow):
		return http.StatusInternalServerError, "math_overflow"
	}

	return http.StatusInternalServerError, "internal_error"
}
