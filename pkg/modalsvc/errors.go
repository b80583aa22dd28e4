package modalsvc

import "errors"

// Configuration errors, reported before any asynchronous work starts.
var (
	ErrNoController = errors.New("no controller has been specified")
	ErrNoTemplate   = errors.New("no template or templateUrl has been specified")
)
