package local_store

import "time"

type WalletRecord struct {
	ID            string `gorm:"primarykey"`
	Name          string
	AccountNumber string
	Balance       int64
	Type          string
	SyncedAt      time.Time
}

type CategoryRecord struct {
	ID        string `gorm:"primarykey"`
	Name      string
	GroupName string
	Type      string `gorm:"index"`
	SyncedAt  time.Time
}

// SummaryRecord stores one dashboard aggregate as its raw JSON payload keyed
// by endpoint name.
type SummaryRecord struct {
	Key      string `gorm:"primarykey"`
	Payload  []byte
	SyncedAt time.Time
}
