package generator

import "errors"

// ErrValidation marks bad or missing caller input, detected before any
// network call.
var ErrValidation = errors.New("invalid generation request")

// ErrConfig marks a missing credential that neither the request nor
// the environment provided.
var ErrConfig = errors.New("missing generation configuration")

// ErrUpstream marks a rejected or unusable response from the
// generation backend. The wrapped message carries the backend's own
// error text when it sent one.
var ErrUpstream = errors.New("generation backend error")
