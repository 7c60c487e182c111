package pub

// Event represents a publishable message in the pub/sub system.
// Events are the unit producers publish to topics.
type Event struct {
	// Data is the message payload.
	Data []byte `json:"data"`
	// Attributes are optional key/value pairs sent alongside the payload.
	Attributes map[string]string `json:"attributes,omitempty"`
}

// TextEvent builds an Event carrying s as its payload.
func TextEvent(s string) Event {
	return Event{Data: []byte(s)}
}
