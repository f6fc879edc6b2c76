package rpc

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"

	"milkchain/core"
	"milkchain/native/access"
	nativecommon "milkchain/native/common"
	"milkchain/native/itemfactory"
	"milkchain/native/milk"
	"milkchain/native/rewards"
)

var (
	errRateLimited = errors.New("rate limit exceeded")
	errNotFound    = errors.New("not found")
)

type errorResponse struct {
	Error      string `json:"error"`
	RetryAfter uint64 `json:"retryAfter,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Error: http.StatusText(status)}
	if err != nil && err.Error() != "" {
		resp.Error = err.Error()
	}
	var claimed *itemfactory.AlreadyClaimedError
	if errors.As(err, &claimed) {
		resp.RetryAfter = claimed.RetryAfter
		w.Header().Set("Retry-After", strconv.FormatUint(claimed.RetryAfter, 10))
	}
	writeJSON(w, status, resp)
}

// statusFor maps a domain error onto the HTTP status reported to clients.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, access.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, itemfactory.ErrAlreadyClaimedToday):
		return http.StatusConflict
	case errors.Is(err, nativecommon.ErrModulePaused):
		return http.StatusServiceUnavailable
	case errors.Is(err, milk.ErrZeroAddress),
		errors.Is(err, milk.ErrInsufficientBalance),
		errors.Is(err, milk.ErrInsufficientAllowance),
		errors.Is(err, milk.ErrInvalidAmount),
		errors.Is(err, milk.ErrSupplyOverflow),
		errors.Is(err, milk.ErrInvalidDeposit),
		errors.Is(err, rewards.ErrOutOfOrderThresholds),
		errors.Is(err, rewards.ErrInvalidRewardParameters),
		errors.Is(err, itemfactory.ErrZeroAddress),
		errors.Is(err, itemfactory.ErrInvalidAmount),
		errors.Is(err, itemfactory.ErrInsufficientItems),
		errors.Is(err, itemfactory.ErrSelfApproval),
		errors.Is(err, core.ErrUnknownNamespace):
		return http.StatusBadRequest
	case errors.Is(err, rewards.ErrMalformedPayload):
		return http.StatusUnprocessableEntity
	case errors.Is(err, itemfactory.ErrNotOwnerNorApproved):
		return http.StatusForbidden
	case errors.Is(err, errNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func formatBig(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseAmount(raw string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok || v.Sign() < 0 {
		return nil, errors.New("amount must be a non-negative decimal integer")
	}
	return v, nil
}
