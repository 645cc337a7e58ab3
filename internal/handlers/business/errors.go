package business

import (
	"errors"
)

// Error kinds surfaced to callers. Every violated precondition aborts the whole
// operation; the transaction rolls back and none of these leave partial state.
var (
	ErrProgramHalted         = errors.New("program halted")
	ErrInvalidParams         = errors.New("invalid parameters")
	ErrInvalidLifecycleState = errors.New("operation not valid for current status")
	ErrRoundWindowViolation  = errors.New("outside round time window")
	ErrBuyLimitExceeded      = errors.New("round buy limit exceeded")
	ErrSupplyExhausted       = errors.New("supply exhausted")
	ErrDuplicateReceipt      = errors.New("buy index already used")
	ErrInvalidBuyIndex       = errors.New("buy index out of sequence")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrClockNotElapsed       = errors.New("lock time not elapsed")
	ErrAlreadyClaimed        = errors.New("distribution already claimed")
	ErrArithmetic            = errors.New("arithmetic out of bounds")
	ErrNotFound              = errors.New("record not found")
)
