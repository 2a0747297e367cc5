package source

import "errors"

// ErrNoContent marks a chapter-pages fetch where every fallback tier came up
// empty. Sites render paywalled chapters this way, so an empty page list is a
// failure, never a valid result.
var ErrNoContent = errors.New("no page content found")
