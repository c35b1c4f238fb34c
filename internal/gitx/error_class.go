// SPDX-License-Identifier: MIT
package gitx

import (
	"context"
	"errors"
	"strings"
)

// ErrorClass is a coarse, actionable category for a failed git or gh call.
type ErrorClass string

const (
	ClassNone          ErrorClass = ""
	ClassAuth          ErrorClass = "auth"
	ClassNetwork       ErrorClass = "network"
	ClassTimeout       ErrorClass = "timeout"
	ClassCorrupt       ErrorClass = "corrupt"
	ClassMissingRemote ErrorClass = "missing_remote"
	ClassNotFastFwd    ErrorClass = "not_fast_forward"
	ClassUnknown       ErrorClass = "unknown"
)

// ClassifyError maps git/process errors into broad actionable categories.
func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ClassNone
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ClassTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "permission denied", "authentication failed", "access denied", "publickey", "could not read username", "credential"):
		return ClassAuth
	case containsAny(msg, "could not resolve host", "network is unreachable", "connection timed out", "failed to connect", "temporary failure in name resolution", "tls handshake timeout"):
		return ClassNetwork
	case containsAny(msg, "timeout", "timed out", "deadline exceeded"):
		return ClassTimeout
	case containsAny(msg, "not possible to fast-forward", "non-fast-forward", "diverging branches", "[rejected]"):
		return ClassNotFastFwd
	case containsAny(msg, "not a git repository", "bad object", "corrupt", "object file"):
		return ClassCorrupt
	case containsAny(msg, "repository not found", "couldn't find remote ref", "remote ref does not exist", "no such remote", "does not appear to be a git repository"):
		return ClassMissingRemote
	default:
		return ClassUnknown
	}
}

func containsAny(msg string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}
