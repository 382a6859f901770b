package data

import "errors"

// ErrNamespaceRequired is returned when a repo is built without a namespace.
var ErrNamespaceRequired = errors.New("session namespace is required")
