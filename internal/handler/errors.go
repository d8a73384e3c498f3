package handler

import (
	"errors"
	"net/http"

	"github.com/Shivanand-hulikatti/card-issuance/internal/auth"
	"github.com/Shivanand-hulikatti/card-issuance/internal/service"
)

const (
	codeInvalidBody  = "invalid_request_body"
	codeInvalidID    = "invalid_id"
	codeInvalidToken = "invalid_token"
	codeForbidden    = "forbidden"
	codeNotFound     = "not_found"
	codeInternal     = "internal_error"
)

var errInvalidID = errors.New("invalid id")

// respondError maps service errors to HTTP status codes.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errInvalidID) {
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
		return
	}

	code := service.ReasonCode(err)
	switch code {
	case "edition_not_found", "card_not_found":
		writeError(w, http.StatusNotFound, code, err.Error())
	case "invalid_capacity", "invalid_name", "invalid_batch", "invalid_amount", "invalid_recipient":
		writeError(w, http.StatusBadRequest, code, err.Error())
	case "capacity_exceeded", "self_reservation_not_allowed", "reservation_not_found",
		"series_overflow", "edition_limit_reached":
		writeError(w, http.StatusConflict, code, err.Error())
	case "insufficient_payment":
		writeError(w, http.StatusPaymentRequired, code, err.Error())
	case "unauthorized":
		if auth.CallerFrom(r.Context()) == "" {
			writeError(w, http.StatusUnauthorized, code, "authentication required")
			return
		}
		writeError(w, http.StatusForbidden, codeForbidden, "caller is not allowed to perform this operation")
	default:
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}
