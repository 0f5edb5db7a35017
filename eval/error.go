// Copyright © 2018 The ELPS authors

package eval

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// Error conditions.  An *Error matches its condition with errors.Is.
var (
	ErrInvalidArgument    = errors.New("invalid-argument")
	ErrConflictingOptions = errors.New("conflicting-options")
	ErrResidue            = errors.New("residue")
	ErrNeedValue          = errors.New("need-value")
	ErrNoValue            = errors.New("no-value")
	ErrTypeMismatch       = errors.New("type-mismatch")
	ErrSecurity           = errors.New("security")
	ErrStackOverflow      = errors.New("stack-overflow")
	ErrUser               = errors.New("user-error")
	ErrNoCatch            = errors.New("no-catch")
	ErrConstValue         = errors.New("const-value")
)

// Error is an evaluation error.  The label of the innermost running action
// and a backtrace are attached when the error first propagates out of an
// action.
type Error struct {
	Condition error
	Message   string
	Label     string
	Cause     error
	Stack     []Record
}

// Errorf returns an *Error for condition with a formatted message.
func Errorf(condition error, format string, args ...interface{}) *Error {
	return &Error{
		Condition: condition,
		Message:   fmt.Sprintf(format, args...),
	}
}

// WrapError returns an *Error for condition caused by err.
func WrapError(condition error, err error) *Error {
	return &Error{
		Condition: condition,
		Message:   err.Error(),
		Cause:     err,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Condition != nil {
		msg = fmt.Sprintf("%v: %s", e.Condition, msg)
	}
	if e.Label != "" {
		return fmt.Sprintf("%s: %s", e.Label, msg)
	}
	return msg
}

// Unwrap allows errors.Is to match the condition and the cause of e.
func (e *Error) Unwrap() []error {
	var errs []error
	if e.Condition != nil {
		errs = append(errs, e.Condition)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// ConditionName returns the name of the condition of e, e.g.
// "invalid-argument".
func (e *Error) ConditionName() string {
	if e.Condition == nil {
		return "error"
	}
	return e.Condition.Error()
}

// WriteTrace writes the error and its backtrace to w
func (e *Error) WriteTrace(w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	var n int
	var err error
	wrote := func(_n int, _err error) bool {
		n += _n
		err = _err
		return err == nil
	}
	if !wrote(bw.WriteString(e.Error())) {
		return n, err
	}
	if !wrote(bw.WriteString("\n")) {
		return n, err
	}
	if len(e.Stack) > 0 {
		if !wrote(fmt.Fprintf(bw, "Backtrace [%d levels -- most recent last]:\n", len(e.Stack))) {
			return n, err
		}
		for _, rec := range e.Stack {
			if !wrote(fmt.Fprintf(bw, "  %s\n", rec)) {
				return n, err
			}
		}
	}
	return n, bw.Flush()
}
