package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an error so callers can react without string matching.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindDatabase
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindDatabase:
		return "database"
	default:
		return "internal"
	}
}

// Error is the application error type. Op names the failing operation,
// e.g. "reminders.Snooze".
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	var s string
	switch {
	case e.Op != "" && e.Msg != "":
		s = e.Op + ": " + e.Msg
	case e.Op != "":
		s = e.Op
	default:
		s = e.Msg
	}
	if e.Err != nil {
		if s == "" {
			return e.Err.Error()
		}
		return s + ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports input that was rejected before any write.
func Validation(op, format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports an unknown entity id.
func NotFound(op, entity, id string) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf("%s %s not found", entity, id)}
}

// Database wraps a storage or connection failure. A nil err yields nil.
func Database(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if stderrors.As(err, &existing) && existing.Kind != KindInternal {
		return err
	}
	return &Error{Kind: KindDatabase, Op: op, Err: err}
}

// Internal reports a broken invariant.
func Internal(op, format string, args ...interface{}) error {
	return &Error{Kind: KindInternal, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

func IsValidation(err error) bool { return is(err, KindValidation) }
func IsNotFound(err error) bool   { return is(err, KindNotFound) }
func IsDatabase(err error) bool   { return is(err, KindDatabase) }
func IsInternal(err error) bool   { return err != nil && KindOf(err) == KindInternal }

func is(err error, k Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == k
}
