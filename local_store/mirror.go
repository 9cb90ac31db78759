package local_store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/refina/finance_client/finance_api"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotMirrored = errors.New("no mirrored copy")

// Mirror keeps read-only snapshots of backend collections in a local sqlite
// database so reads can fall back to the last known copy when the network is
// unavailable. Snapshots are immutable between syncs; nothing here mutates
// balances or lists locally.
type Mirror struct {
	db *gorm.DB
}

func NewMirror(db *gorm.DB) *Mirror {
	return &Mirror{db: db}
}

func (m *Mirror) Migrate() error {
	return m.db.AutoMigrate(
		&WalletRecord{},
		&CategoryRecord{},
		&SummaryRecord{},
	)
}

// SaveWallets replaces the wallet snapshot wholesale.
func (m *Mirror) SaveWallets(ctx context.Context, wallets []finance_api.Wallet) error {
	now := time.Now()

	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("1 = 1").Delete(&WalletRecord{}).Error
		if err != nil {
			return err
		}

		for _, wallet := range wallets {
			rec := WalletRecord{
				ID:            wallet.ID,
				Name:          wallet.Name,
				AccountNumber: wallet.AccountNumber,
				Balance:       wallet.Balance,
				Type:          string(wallet.Type),
				SyncedAt:      now,
			}
			err = tx.
				Clauses(clause.OnConflict{UpdateAll: true}).
				Create(&rec).Error
			if err != nil {
				return err
			}
		}

		return nil
	})
}

func (m *Mirror) Wallets(ctx context.Context) ([]finance_api.Wallet, error) {
	recs := []WalletRecord{}
	err := m.db.WithContext(ctx).Find(&recs).Error
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotMirrored
	}

	wallets := make([]finance_api.Wallet, 0, len(recs))
	for _, rec := range recs {
		wallets = append(wallets, finance_api.Wallet{
			ID:            rec.ID,
			Name:          rec.Name,
			AccountNumber: rec.AccountNumber,
			Balance:       rec.Balance,
			Type:          finance_api.WalletType(rec.Type),
		})
	}

	return wallets, nil
}

// SaveCategories replaces the snapshot of one transaction type.
func (m *Mirror) SaveCategories(ctx context.Context, typ finance_api.TransactionType, groups []finance_api.CategoryGroup) error {
	now := time.Now()

	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("type = ?", string(typ)).Delete(&CategoryRecord{}).Error
		if err != nil {
			return err
		}

		for _, cat := range finance_api.FlattenGroups(groups) {
			rec := CategoryRecord{
				ID:        cat.ID,
				Name:      cat.Name,
				GroupName: cat.GroupName,
				Type:      string(typ),
				SyncedAt:  now,
			}
			err = tx.
				Clauses(clause.OnConflict{UpdateAll: true}).
				Create(&rec).Error
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// Categories rebuilds the grouped shape from the flat snapshot, preserving
// first-seen group order.
func (m *Mirror) Categories(ctx context.Context, typ finance_api.TransactionType) ([]finance_api.CategoryGroup, error) {
	recs := []CategoryRecord{}
	err := m.db.
		WithContext(ctx).
		Where("type = ?", string(typ)).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotMirrored
	}

	order := []string{}
	byGroup := map[string][]finance_api.Category{}
	for _, rec := range recs {
		if _, ok := byGroup[rec.GroupName]; !ok {
			order = append(order, rec.GroupName)
		}
		byGroup[rec.GroupName] = append(byGroup[rec.GroupName], finance_api.Category{
			ID:        rec.ID,
			Name:      rec.Name,
			GroupName: rec.GroupName,
			Type:      typ,
		})
	}

	groups := make([]finance_api.CategoryGroup, 0, len(order))
	for _, name := range order {
		groups = append(groups, finance_api.CategoryGroup{
			Name:       name,
			Categories: byGroup[name],
		})
	}

	return groups, nil
}

// SaveSummary stores one aggregate payload under its endpoint key.
func (m *Mirror) SaveSummary(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	rec := SummaryRecord{
		Key:      key,
		Payload:  raw,
		SyncedAt: time.Now(),
	}

	return m.db.
		WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
}

func (m *Mirror) LoadSummary(ctx context.Context, key string, out any) error {
	var rec SummaryRecord
	err := m.db.
		WithContext(ctx).
		Where("key = ?", key).
		Find(&rec).Error
	if err != nil {
		return err
	}
	if rec.Key == "" {
		return ErrNotMirrored
	}

	return json.Unmarshal(rec.Payload, out)
}
