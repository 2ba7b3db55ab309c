package notify

import "fmt"

// ConfigError means a digest could not be attempted: the user, a
// destination or the transport is missing. No transport call was made.
type ConfigError struct {
	UserID  int64
	Channel string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("notify config: user %d %s: %s", e.UserID, e.Channel, e.Reason)
}

// DeliveryError wraps a transport failure after the transport gave up.
type DeliveryError struct {
	UserID      int64
	Channel     string
	Destination string
	Err         error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("notify delivery: user %d %s to %s: %v", e.UserID, e.Channel, e.Destination, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// AggregationError wraps a failure reading or building a user's digest data.
type AggregationError struct {
	UserID int64
	Err    error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("notify aggregate: user %d: %v", e.UserID, e.Err)
}

func (e *AggregationError) Unwrap() error { return e.Err }
