package domain

// Models lists every persisted model, parents first.
func Models() []any {
	return []any{
		&Offer{},
		&Chain{},
		&OfferSequence{},
		&Campaign{},
		&CampaignOffer{},
		&Client{},
		&KeyCodeDetails{},
		&KeyCode{},
		&ClientOffer{},
		&OfferPrint{},
		&Order{},
	}
}
