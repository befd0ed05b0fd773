package model

// RecipientStatus is a recipient's standing within a run
type RecipientStatus string

const (
	RecipientPending  RecipientStatus = "pending"
	RecipientComplete RecipientStatus = "complete"
	RecipientFailed   RecipientStatus = "delivery_failed"
)

// Recipient is one addressable participant. ID is the canonical key,
// DisplayName is informational only.
type Recipient struct {
	ID          int64  `json:"id" bson:"id"`
	DisplayName string `json:"displayName,omitempty" bson:"displayName,omitempty"`
}
