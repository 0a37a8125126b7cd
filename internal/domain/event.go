package domain

import "time"

// Domain event types published to the event feed. Each type matches a
// workflow trigger type so the workflow consumer can route on it directly.
const (
	EventCustomerCreated = TriggerCustomerCreated
	EventCustomerUpdated = TriggerCustomerUpdated
	EventCampaignCreated = TriggerCampaignCreated
	EventDealStageChange = TriggerDealStageChange
)

// Event is the envelope published to the CRM event feed.
type Event struct {
	Type      string                 `json:"type"`
	EntityID  string                 `json:"entity_id"`
	ActorID   string                 `json:"actor_id,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}
