package policy

import "errors"

// ErrNoPolicy is returned when no policy document exists in the artifact root.
var ErrNoPolicy = errors.New("policy: no policy document found")
