package testkit

import (
	"encoding/json"

	"directMail/business/segment"
)

const FrenchFilter = `{"country":[{"eq":"FR"}]}`

// FrenchKeyCode selects Ana and Ben.
func FrenchKeyCode(campaignID uint64) segment.KeyCodeInput {
	return segment.KeyCodeInput{
		CampaignID:  campaignID,
		Filters:     json.RawMessage(FrenchFilter),
		Description: "French clients",
		ListName:    "fr-2026",
	}
}
