package completion

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/api/googleapi"
)

// FailureKind classifies a completion failure. All kinds are non-fatal: the
// target turn is marked failed and the user may retry by editing or
// resending.
type FailureKind string

const (
	KindNetwork FailureKind = "network"
	KindAPI     FailureKind = "api"
	KindTimeout FailureKind = "timeout"
)

// Error is a classified completion failure.
type Error struct {
	Kind    FailureKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// Classify maps an arbitrary error from a completion call onto the failure
// taxonomy. Context cancellation is passed through untouched so superseded
// requests are not mistaken for failures.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "completion request timed out"}
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = gerr.Error()
		}
		return &Error{Kind: KindAPI, Message: msg}
	}

	var nerr net.Error
	if errors.As(err, &nerr) {
		if nerr.Timeout() {
			return &Error{Kind: KindTimeout, Message: err.Error()}
		}
		return &Error{Kind: KindNetwork, Message: err.Error()}
	}

	return &Error{Kind: KindNetwork, Message: err.Error()}
}
