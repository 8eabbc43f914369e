package domain

import "errors"

// ErrSceneNotFound is returned when a scene ID is not present in the
// registry. Navigation treats it as a no-op; it signals a content defect.
var ErrSceneNotFound = errors.New("scene not found")

// ErrSessionNotFound is returned when a session ID cannot be found in a
// snapshot store.
var ErrSessionNotFound = errors.New("session not found")
