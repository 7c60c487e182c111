package pub

import "time"

// Message is a message received from a subscription. AckID is opaque and is
// only valid for the subscription the message was pulled from.
type Message struct {
	AckID       string            `json:"ackId"`
	ID          string            `json:"id"`
	Data        []byte            `json:"data"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	PublishTime time.Time         `json:"publishTime"`
}

// AckIDs returns the acknowledgment identifiers of msgs in order.
func AckIDs(msgs []Message) []string {
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.AckID)
	}
	return ids
}
