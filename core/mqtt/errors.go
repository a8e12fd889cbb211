package mqtt

import "errors"

// ErrPublishFailed is returned when a publish did not succeed after all retries.
var ErrPublishFailed = errors.New("publish failed after retries")
