package manifest

import "errors"

// ErrMalformedManifest indicates the manifest could not be decoded or lacks
// a navigation section. It is returned before anything is mutated.
var ErrMalformedManifest = errors.New("malformed manifest")
