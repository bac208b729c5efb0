// Package business holds the persistence contract shared by the engine services.
// Every engine operation receives a Repos handle; a handle obtained inside
// Store.Transaction is bound to that transaction.
package business

import (
	"context"
	"time"

	"directMail/domain"
	"directMail/pkg/filter"
)

type Store interface {
	// Repos returns a handle outside of any transaction.
	Repos() Repos
	// Transaction runs fn in one read-committed transaction and rolls back on error.
	Transaction(ctx context.Context, fn func(tx Repos) error) error
}

type Repos interface {
	Offers() OfferRepository
	Chains() ChainRepository
	Campaigns() CampaignRepository
	Clients() ClientRepository
	Segments() SegmentRepository
	ClientOffers() ClientOfferRepository
	Prints() OfferPrintRepository
	Orders() OrderRepository
}

type OfferRepository interface {
	Create(ctx context.Context, offer *domain.Offer) error
	FindByID(ctx context.Context, id uint64) (domain.Offer, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Offer, error)
	FindAll(ctx context.Context) ([]domain.Offer, error)
	Update(ctx context.Context, offer *domain.Offer) error
	Delete(ctx context.Context, id uint64) error
	TitleExists(ctx context.Context, brandID *uint64, title string, excludeID uint64) (bool, error)
}

type ChainRepository interface {
	Create(ctx context.Context, chain *domain.Chain) error
	FindByID(ctx context.Context, id uint64) (domain.Chain, error)
	FindAll(ctx context.Context) ([]domain.Chain, error)
	TitleExists(ctx context.Context, brandID *uint64, title string) (bool, error)
	SetFirstSequence(ctx context.Context, chainID, sequenceID uint64) error
	CreateSequences(ctx context.Context, seqs []*domain.OfferSequence) error
	FindSequence(ctx context.Context, id uint64) (domain.OfferSequence, error)
	ListSequences(ctx context.Context, chainID uint64) ([]domain.OfferSequence, error)
	FindStandaloneSequence(ctx context.Context, offerID uint64) (domain.OfferSequence, bool, error)
	LatestSequenceForOffer(ctx context.Context, offerID uint64) (domain.OfferSequence, bool, error)
}

type CampaignRepository interface {
	Create(ctx context.Context, campaign *domain.Campaign) error
	FindByID(ctx context.Context, id uint64) (domain.Campaign, error)
	FindAll(ctx context.Context) ([]domain.Campaign, error)
	Update(ctx context.Context, campaign *domain.Campaign) error
	CodeExists(ctx context.Context, brandID *uint64, code string, excludeID uint64) (bool, error)
	MarkExtracted(ctx context.Context, id uint64) error
	// LatestForChain returns the campaign on chainID with the latest mail date not after mailedBefore.
	LatestForChain(ctx context.Context, chainID uint64, mailedBefore time.Time) (domain.Campaign, bool, error)
	UpsertOffer(ctx context.Context, co *domain.CampaignOffer) error
	FindOffer(ctx context.Context, campaignID, offerID uint64) (domain.CampaignOffer, bool, error)
	// RouteOfferLetter resolves the chain, campaign and mailing routing of an
	// offer letter from the most recently mailed campaign carrying it.
	RouteOfferLetter(ctx context.Context, offerID uint64) (domain.OfferRouting, bool, error)
}

type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	FindByID(ctx context.Context, id uint64) (domain.Client, error)
	FindAll(ctx context.Context) ([]domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	TouchLastPurchase(ctx context.Context, id uint64, at time.Time) error
	LiveTotals(ctx context.Context, id uint64) (domain.LiveTotals, error)
}

type SegmentRepository interface {
	Create(ctx context.Context, segment *domain.KeyCodeDetails) error
	FindByID(ctx context.Context, id uint64) (domain.KeyCodeDetails, error)
	FindUnknown(ctx context.Context, campaignID, offerID uint64) (domain.KeyCodeDetails, bool, error)
	FindDerived(ctx context.Context, campaignID, offerID, fromSegmentID uint64) (domain.KeyCodeDetails, bool, error)
	ListKeys(ctx context.Context, campaignID uint64, unknown bool) ([]string, error)
	ListByCampaign(ctx context.Context, campaignID uint64) ([]domain.KeyCodeDetails, error)
	Stats(ctx context.Context, campaignID uint64) ([]domain.SegmentStats, error)

	UpsertMembership(ctx context.Context, m *domain.KeyCode) error
	// EnrollClients adds every client matching where that has no membership
	// yet on (campaign, offer) of segment, returning the number enrolled.
	EnrollClients(ctx context.Context, segment domain.KeyCodeDetails, where filter.Expr) (int64, error)
	// ExtractMemberships turns unextracted memberships into client offers and
	// prints, returning the number of clients extracted.
	ExtractMemberships(ctx context.Context, p ExtractParams) (int64, error)
	ListMemberships(ctx context.Context, campaignID, clientID uint64, offerIDs []uint64) ([]domain.KeyCode, error)
	CountMembershipRefs(ctx context.Context, memberships []domain.KeyCode) (map[uint64]domain.Refs, error)
	DeleteMemberships(ctx context.Context, ids []uint64) (int64, error)
}

type ClientOfferRepository interface {
	Create(ctx context.Context, co *domain.ClientOffer) error
	FindByID(ctx context.Context, id uint64) (domain.ClientOffer, error)
	FindByCode(ctx context.Context, code string) (domain.ClientOffer, error)
	FindSubstitute(ctx context.Context, clientID uint64, chainID, campaignID *uint64, sequenceID uint64) (domain.ClientOffer, bool, error)
	FindForSequences(ctx context.Context, clientID uint64, chainID, campaignID *uint64, sequenceIDs []uint64) ([]domain.ClientOffer, error)
	FindMatching(ctx context.Context, matches []ClientOfferMatch) ([]domain.ClientOffer, error)
	SetKeyCode(ctx context.Context, id, keyCodeID uint64) error
	// Activate flips is_activated from false to true and reports whether this call did it.
	Activate(ctx context.Context, id uint64) (bool, error)
	Deactivate(ctx context.Context, id uint64) error
	CountRefs(ctx context.Context, offers []domain.ClientOffer) (map[uint64]domain.Refs, error)
	Delete(ctx context.Context, ids []uint64) (int64, error)
}

type OfferPrintRepository interface {
	Create(ctx context.Context, print *domain.OfferPrint) error
	// DeleteOne removes at most one print matching m, unexported prints first.
	DeleteOne(ctx context.Context, m PrintMatch) (bool, error)
	ListByClient(ctx context.Context, clientID uint64) ([]domain.OfferPrint, error)
	// ExportPending marks the unexported prints matching f as exported and
	// returns them. A print is returned by at most one call.
	ExportPending(ctx context.Context, f ExportFilter) ([]domain.PrintExport, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uint64) (domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
	FindByClient(ctx context.Context, clientID uint64) ([]domain.Order, error)
	Delete(ctx context.Context, id uint64) error
}

// ClientOfferMatch identifies client offers; a nil pointer matches NULL.
type ClientOfferMatch struct {
	CampaignID *uint64
	ClientID   uint64
	KeyCodeID  *uint64
	SequenceID uint64
}

// PrintMatch identifies prints; a nil pointer matches NULL.
type PrintMatch struct {
	CampaignID *uint64
	ClientID   uint64
	KeyCodeID  *uint64
	OfferID    uint64
}

// ExportFilter selects the prints of one printer file. Prints are matched
// through the campaign offer that routed them, where a nil return address or
// payee matches NULL. A nil brand matches any brand. Past selects every print
// available before Date instead of those of that day.
type ExportFilter struct {
	OfferID         uint64
	BrandID         *uint64
	ReturnAddressID *uint64
	PayeeNameID     *uint64
	Printer         string
	Date            time.Time
	Past            bool
}

type ExtractParams struct {
	CampaignID      uint64
	ChainID         uint64
	SequenceID      uint64
	OfferID         uint64
	BrandID         *uint64
	ReturnAddressID *uint64
	MailDate        time.Time
}

// Clock returns the current time; engine services take one so tests can pin "today".
type Clock func() time.Time

func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

func Ptr[T any](v T) *T {
	return &v
}

func SameID(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
