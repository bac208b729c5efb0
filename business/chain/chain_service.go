package chain

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"directMail/business"
	"directMail/domain"
	"directMail/pkg/logger"
)

// GraphCache keeps chain edge lists outside the database. Edges are append-only,
// so entries never need invalidation.
type GraphCache interface {
	Get(ctx context.Context, chainID uint64) ([]domain.OfferSequence, bool, error)
	Set(ctx context.Context, chainID uint64, edges []domain.OfferSequence) error
}

type EdgeInput struct {
	NextOfferID uint64 `json:"next_offer_id" yaml:"next_offer_id" validate:"required"`
	DaysToAdd   int    `json:"days_to_add" yaml:"days_to_add" validate:"gte=0"`
}

type ChainInput struct {
	Title        string
	BrandID      *uint64
	FirstOfferID uint64
	// Edges maps a current offer to its outgoing connections.
	Edges map[uint64][]EdgeInput
}

type ChainDetails struct {
	Chain  domain.Chain           `json:"chain"`
	Edges  []domain.OfferSequence `json:"edges"`
	Levels []domain.ChainLevel    `json:"levels"`
}

type ChainService struct {
	store business.Store
	cache GraphCache
}

// NewChainService builds the service; cache may be nil.
func NewChainService(store business.Store, cache GraphCache) *ChainService {
	return &ChainService{store: store, cache: cache}
}

func (s *ChainService) CreateChain(ctx context.Context, in ChainInput) (domain.Chain, error) {
	if err := ctx.Err(); err != nil {
		return domain.Chain{}, fmt.Errorf("context error: %w", err)
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || in.FirstOfferID == 0 {
		return domain.Chain{}, domain.ErrMissingRequiredData.WithMessage("chain title and first offer are required")
	}

	offerIDs := map[uint64]bool{in.FirstOfferID: true}
	for from, edges := range in.Edges {
		offerIDs[from] = true
		for _, e := range edges {
			if e.NextOfferID == 0 || e.DaysToAdd < 0 {
				return domain.Chain{}, domain.ErrInvalidDataType.WithMessage("edges need a next offer and a non-negative delay")
			}
			offerIDs[e.NextOfferID] = true
		}
	}
	ids := make([]uint64, 0, len(offerIDs))
	for id := range offerIDs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var created domain.Chain
	err := s.store.Transaction(ctx, func(tx business.Repos) error {
		offers, err := tx.Offers().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(offers) != len(ids) {
			return domain.ErrOfferNotFound.WithMessage("chain references unknown offers")
		}

		exists, err := tx.Chains().TitleExists(ctx, in.BrandID, in.Title)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateTitle
		}

		created = domain.Chain{Title: in.Title, BrandID: in.BrandID}
		if err := tx.Chains().Create(ctx, &created); err != nil {
			return err
		}

		seqs := buildSequences(created.ID, in.FirstOfferID, ids, in.Edges)
		if err := tx.Chains().CreateSequences(ctx, seqs); err != nil {
			return err
		}

		entry, ok := NewGraph(created.ID, derefAll(seqs)).Entry(in.FirstOfferID)
		if !ok {
			return domain.ErrNoFirstSequence
		}
		if err := tx.Chains().SetFirstSequence(ctx, created.ID, entry.ID); err != nil {
			return err
		}
		created.OfferSequenceID = business.Ptr(entry.ID)
		return nil
	})
	if err != nil {
		logger.Error("failed to create chain", "title", in.Title, err)
		return domain.Chain{}, err
	}

	logger.Info("chain created", "chain_id", created.ID, "offers", len(ids))
	return created, nil
}

// buildSequences writes the first offer's edges first so that its entry edge
// has the lowest id, then every other offer in id order. Offers without
// outgoing connections get one terminal edge.
func buildSequences(chainID, first uint64, offerIDs []uint64, edges map[uint64][]EdgeInput) []*domain.OfferSequence {
	order := []uint64{first}
	for _, id := range offerIDs {
		if id != first {
			order = append(order, id)
		}
	}

	var seqs []*domain.OfferSequence
	for _, from := range order {
		out := edges[from]
		if len(out) == 0 {
			seqs = append(seqs, &domain.OfferSequence{ChainID: business.Ptr(chainID), CurrentOfferID: from})
			continue
		}
		for _, e := range out {
			seqs = append(seqs, &domain.OfferSequence{
				ChainID:        business.Ptr(chainID),
				CurrentOfferID: from,
				NextOfferID:    business.Ptr(e.NextOfferID),
				DaysToAdd:      e.DaysToAdd,
			})
		}
	}
	return seqs
}

func derefAll(seqs []*domain.OfferSequence) []domain.OfferSequence {
	out := make([]domain.OfferSequence, len(seqs))
	for i, s := range seqs {
		out[i] = *s
	}
	return out
}

func (s *ChainService) GetChain(ctx context.Context, id uint64) (ChainDetails, error) {
	if err := ctx.Err(); err != nil {
		return ChainDetails{}, fmt.Errorf("context error: %w", err)
	}

	repos := s.store.Repos()
	c, err := repos.Chains().FindByID(ctx, id)
	if err != nil {
		return ChainDetails{}, err
	}

	g, err := s.Graph(ctx, repos, id)
	if err != nil {
		return ChainDetails{}, err
	}

	details := ChainDetails{Chain: c, Edges: g.Edges()}
	if c.OfferSequenceID != nil {
		entry, err := repos.Chains().FindSequence(ctx, *c.OfferSequenceID)
		if err != nil {
			return ChainDetails{}, err
		}
		details.Levels = g.Levels(entry.CurrentOfferID)
	}
	return details, nil
}

func (s *ChainService) ListChains(ctx context.Context) ([]domain.Chain, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	return s.store.Repos().Chains().FindAll(ctx)
}

// Graph loads the edge list of chainID through repos, using the cache when set.
func (s *ChainService) Graph(ctx context.Context, repos business.Repos, chainID uint64) (*Graph, error) {
	if s.cache != nil {
		edges, ok, err := s.cache.Get(ctx, chainID)
		if err != nil {
			logger.Warn("chain cache read failed", "chain_id", chainID, err)
		} else if ok {
			return NewGraph(chainID, edges), nil
		}
	}

	edges, err := repos.Chains().ListSequences(ctx, chainID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(edges) > 0 {
		if err := s.cache.Set(ctx, chainID, edges); err != nil {
			logger.Warn("chain cache write failed", "chain_id", chainID, err)
		}
	}
	return NewGraph(chainID, edges), nil
}
