package domain

import (
	"errors"
	"net/http"
)

// Error is a coded business error. Two errors are the same kind when their codes match.
type Error struct {
	Status  int
	Code    string
	Message string
}

func NewError(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func (e *Error) WithMessage(message string) *Error {
	return &Error{Status: e.Status, Code: e.Code, Message: message}
}

var (
	ErrCampaignNotFound      = NewError(http.StatusNotFound, "CAMPAIGN_NOT_FOUND", "campaign not found")
	ErrChainNotFound         = NewError(http.StatusNotFound, "CHAIN_NOT_FOUND", "chain not found")
	ErrOfferSequenceNotFound = NewError(http.StatusNotFound, "OFFER_SEQUENCE_NOT_FOUND", "offer sequence not found")
	ErrClientOfferNotFound   = NewError(http.StatusNotFound, "CLIENT_OFFER_NOT_FOUND", "client offer not found")
	ErrKeyCodeNotFound       = NewError(http.StatusNotFound, "KEY_CODE_NOT_FOUND", "key code not found")
	ErrOfferNotFound         = NewError(http.StatusNotFound, "OFFER_NOT_FOUND", "offer not found")
	ErrClientNotFound        = NewError(http.StatusNotFound, "CLIENT_NOT_FOUND", "client not found")
	ErrOrderNotFound         = NewError(http.StatusNotFound, "NOT_FOUND", "order not found")
	ErrNoPrintsToExport      = NewError(http.StatusNotFound, "NO_PRINTS_TO_EXPORT", "no print records found to export")

	ErrMissingCampaignID   = NewError(http.StatusBadRequest, "MISSING_CAMPAIGN_ID", "campaign id is required")
	ErrMissingRequiredData = NewError(http.StatusBadRequest, "MISSING_REQUIRED_DATA", "missing required data")
	ErrInvalidDataType     = NewError(http.StatusBadRequest, "INVALID_DATA_TYPE", "invalid data type")
	ErrNoChainAssociated   = NewError(http.StatusBadRequest, "NO_CHAIN_ASSOCIATED", "campaign has no chain")
	ErrNoFirstSequence     = NewError(http.StatusBadRequest, "NO_FIRST_SEQUENCE_FOUND", "chain has no first sequence")

	ErrProductOffer            = NewError(http.StatusConflict, "PRODUCT_OFFER_NOT_FOUND", "orders cannot be placed on a product offer")
	ErrCampaignOrBrandNotFound = NewError(http.StatusConflict, "CAMPAIGN_OR_BRAND_NOT_FOUND", "campaign has no brand")
	ErrDuplicateTitle          = NewError(http.StatusConflict, "DUPLICATE_TITLE", "title already exists for this brand")
	ErrDuplicateCampaignCode   = NewError(http.StatusConflict, "DUPLICATE_CAMPAIGN_CODE", "campaign code already exists for this brand")
)

// StatusOf maps err to an HTTP status, 500 when it carries no code.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}
