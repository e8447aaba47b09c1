package domain

import "errors"

var (
	// ErrInsufficientTokens signals that the balance cannot cover a spend.
	ErrInsufficientTokens = errors.New("insufficient tokens")
	// ErrUnknownFeature signals a feature key missing from the cost catalog.
	ErrUnknownFeature = errors.New("unknown feature")
	// ErrUnknownStep signals a step key missing from the reward catalog.
	ErrUnknownStep = errors.New("unknown step")
	// ErrInvalidAmount signals a zero or negative token amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidRequest signals a malformed request payload.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrStateNotFound signals that no ledger record has been persisted yet.
	ErrStateNotFound = errors.New("ledger state not found")
	// ErrCorruptState signals a persisted ledger record that cannot be decoded.
	ErrCorruptState = errors.New("ledger state corrupt")

	// ErrProviderError signals a completion provider failure.
	ErrProviderError = errors.New("completion provider error")
	// ErrMalformedReply signals a provider reply that is not valid JSON after cleanup.
	ErrMalformedReply = errors.New("malformed provider reply")
	// ErrNotImplemented signals an unimplemented feature.
	ErrNotImplemented = errors.New("not implemented")
)
