package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure for the initiator
type ErrorKind string

const (
	KindStateViolation  ErrorKind = "state_violation"
	KindDeliveryFailure ErrorKind = "delivery_failure"
	KindParseFailure    ErrorKind = "parse_failure"
	KindExportFailure   ErrorKind = "export_failure"
)

var (
	ErrEmptyRoster          = errors.New("no recipients loaded")
	ErrEmptySurvey          = errors.New("survey has no questions")
	ErrEmptyTitle           = errors.New("title is empty")
	ErrUnknownToken         = errors.New("unknown or already answered token")
	ErrNoPendingQuestion    = errors.New("no pending free-text question")
	ErrUnknownRecipient     = errors.New("recipient is not part of this run")
	ErrRecipientMismatch    = errors.New("answer sender does not own this question")
	ErrOptionOutOfRange     = errors.New("selected option out of range")
	ErrRecipientUnreachable = errors.New("recipient unreachable")
	ErrNoRun                = errors.New("no survey has been launched")
	ErrEngineClosed         = errors.New("engine closed")
)

// Error is a classified failure. No Error is fatal to the process.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func stateViolation(op string, err error) *Error {
	return &Error{Kind: KindStateViolation, Op: op, Err: err}
}

func parseFailure(op string, err error) *Error {
	return &Error{Kind: KindParseFailure, Op: op, Err: err}
}

func deliveryFailure(op string, err error) *Error {
	return &Error{Kind: KindDeliveryFailure, Op: op, Err: err}
}

func exportFailure(op string, err error) *Error {
	return &Error{Kind: KindExportFailure, Op: op, Err: err}
}

// KindOf returns the classification of err, or "" when unclassified
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsStateViolation(err error) bool  { return KindOf(err) == KindStateViolation }
func IsParseFailure(err error) bool    { return KindOf(err) == KindParseFailure }
func IsDeliveryFailure(err error) bool { return KindOf(err) == KindDeliveryFailure }
func IsExportFailure(err error) bool   { return KindOf(err) == KindExportFailure }
