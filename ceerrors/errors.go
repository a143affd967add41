// Package ceerrors implements §7: a small set of typed error kinds the
// rest of the module wraps real causes in with github.com/pkg/errors,
// the wrapping idiom the pack's indexer-style tools use (errors.Wrap(err,
// "context")) rather than stdlib fmt.Errorf("%w", err).
package ceerrors

import (
	"github.com/pkg/errors"
)

// Kind tags the category of failure so callers can branch on Is(err, Kind)
// without string-matching a message (§7 "typed, not stringly-typed").
type Kind string

const (
	KindParseError        Kind = "parse_error"
	KindResolutionFailure Kind = "resolution_failure"
	KindIndexUnavailable  Kind = "index_unavailable"
	KindCycleDetected     Kind = "cycle_detected"
	KindScopeStale        Kind = "scope_stale"
	KindBudgetExhausted   Kind = "budget_exhausted"
	KindFatal             Kind = "fatal"
)

// Error wraps a Kind and an underlying cause. The cause is built with
// pkg/errors and carries its stack trace, reachable through Unwrap; *Error
// has no Format method, so %+v on it prints only Error().
type Error struct {
	Kind  Kind
	Cause error
	Msg   string
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Msg
	}
	return e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates a bare Error of kind with msg, carrying a stack trace from
// this call site via pkg/errors.New.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg, Cause: errors.New(msg)}
}

// Wrap annotates cause with kind and msg, preserving cause's stack trace
// (or attaching one here if cause has none) the way errors.Wrap does.
func Wrap(kind Kind, cause error, msg string) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Cause: errors.Wrap(cause, msg)}
}

// Is reports whether err (or anything it wraps) carries kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if ce, ok := err.(*Error); ok && ce.Kind == kind {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// ParseError wraps a per-file parse failure (§4.A "errors produce a tree
// with ERROR spans rather than failing outright" — this kind is for the
// rarer case a port can't even attempt recovery, e.g. unreadable bytes).
func ParseError(cause error, path string) error {
	return Wrap(KindParseError, cause, "parse "+path)
}

// ResolutionFailure wraps a cross-file resolver failure (§4.D).
func ResolutionFailure(cause error, detail string) error {
	return Wrap(KindResolutionFailure, cause, "resolve "+detail)
}

// IndexUnavailable wraps a failure reaching one of the four index ports
// (§4.J), letting the orchestrator degrade gracefully instead of failing
// the whole query when only one port is down.
func IndexUnavailable(cause error, source string) error {
	return Wrap(KindIndexUnavailable, cause, source+" index unavailable")
}

// CycleDetected reports a module-dependency cycle found during topological
// sort (§4.D) — not necessarily fatal, but callers that need a strict DAG
// order should treat it as one.
func CycleDetected(cycle []string) error {
	msg := "dependency cycle: "
	for i, f := range cycle {
		if i > 0 {
			msg += " -> "
		}
		msg += f
	}
	return New(KindCycleDetected, msg)
}

// ScopeStale reports that a Scope names a focus node that is no longer
// present in the current snapshot, e.g. after an incremental rebuild
// removed the hinted file (§4.M).
func ScopeStale(detail string) error {
	return New(KindScopeStale, "scope stale: "+detail)
}

// BudgetExhausted reports that PackContext could not fit a single hit,
// whole or trimmed to its signature, into the token budget (§4.L).
func BudgetExhausted(detail string) error {
	return New(KindBudgetExhausted, "budget exhausted: "+detail)
}

// Fatal wraps an error that should abort the whole operation rather than
// degrade a single query (e.g. an unreadable repository root).
func Fatal(cause error, detail string) error {
	return Wrap(KindFatal, cause, detail)
}
