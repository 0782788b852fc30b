package dto

import "github.com/google/uuid"

type CreateTierRequest struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	MaxClients int    `json:"max_clients"`
}

// SubscriptionEventRequest carries a billing event: PURCHASE, RENEWAL,
// CANCELLATION or EXPIRATION.
type SubscriptionEventRequest struct {
	Type   string     `json:"type"`
	TierID *uuid.UUID `json:"tier_id,omitempty"`
}
