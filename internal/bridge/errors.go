package bridge

import "errors"

// Standard errors returned by the bridge.
var (
	// ErrMalformedPayload indicates an inbound message whose payload does
	// not match the expected shape for its method.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrAlreadyStarted indicates the controller is already running.
	ErrAlreadyStarted = errors.New("controller already started")

	// ErrNotStarted indicates the controller has not been started.
	ErrNotStarted = errors.New("controller not started")

	// ErrClosed indicates the controller has been disposed.
	ErrClosed = errors.New("controller closed")

	// ErrNoPayload indicates an embedded-logic call with nothing to run.
	ErrNoPayload = errors.New("no payload to execute")
)
