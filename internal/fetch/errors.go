package fetch

import (
	"errors"
	"fmt"
)

// BotChallengeError marks an anti-automation response (HTTP 403/503). It is
// kept distinct from other HTTP failures so the host can trigger cookie-based
// recovery instead of treating the site as broken.
type BotChallengeError struct {
	Status int
	URL    string
}

func (e *BotChallengeError) Error() string {
	return fmt.Sprintf("bot challenge (HTTP %d) at %s", e.Status, e.URL)
}

// HTTPError is any other non-2xx response.
type HTTPError struct {
	Status int
	URL    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d at %s", e.Status, e.URL)
}

func IsBotChallenge(err error) bool {
	var bc *BotChallengeError
	return errors.As(err, &bc)
}
