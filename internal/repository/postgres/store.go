package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"directMail/business"

	"gorm.io/gorm"
)

// Store runs engine operations on postgres, each transaction at READ COMMITTED.
// The same repositories run on sqlite, where transactions are serializable.
type Store struct {
	DB        *gorm.DB
	txOptions *sql.TxOptions
}

func NewStore(db *gorm.DB) *Store {
	s := &Store{DB: db}
	if db.Dialector.Name() == "postgres" {
		s.txOptions = &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	}
	return s
}

func (s *Store) Repos() business.Repos {
	return repos{db: s.DB}
}

func (s *Store) Transaction(ctx context.Context, fn func(tx business.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repos{db: tx})
	}, s.txOptions)
}

var _ business.Store = (*Store)(nil)

type repos struct {
	db *gorm.DB
}

func (r repos) Offers() business.OfferRepository             { return NewOfferRepository(r.db) }
func (r repos) Chains() business.ChainRepository             { return NewChainRepository(r.db) }
func (r repos) Campaigns() business.CampaignRepository       { return NewCampaignRepository(r.db) }
func (r repos) Clients() business.ClientRepository           { return NewClientRepository(r.db) }
func (r repos) Segments() business.SegmentRepository         { return NewSegmentRepository(r.db) }
func (r repos) ClientOffers() business.ClientOfferRepository { return NewClientOfferRepository(r.db) }
func (r repos) Prints() business.OfferPrintRepository        { return NewOfferPrintRepository(r.db) }
func (r repos) Orders() business.OrderRepository             { return NewOrderRepository(r.db) }

// findErr maps a missing row to notFound and wraps anything else.
func findErr(err error, notFound error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return fmt.Errorf("failed to find %s: %w", what, err)
}

// eqOrNull renders "column = ?" or "column IS NULL" for a nullable id.
func eqOrNull(column string, id *uint64) (string, []any) {
	if id == nil {
		return column + " IS NULL", nil
	}
	return column + " = ?", []any{*id}
}

func whereID(db *gorm.DB, column string, id *uint64) *gorm.DB {
	cond, args := eqOrNull(column, id)
	return db.Where(cond, args...)
}
