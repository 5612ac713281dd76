package domain

import "time"

// BackupVersion is written into every exported backup file.
const BackupVersion = "1.0"

// BackupData is the portion of the state covered by backup files.
type BackupData struct {
	CexConfigs       []CexConfig       `json:"cexConfigs"`
	Transactions     []Transaction     `json:"transactions"`
	FiatTransactions []FiatTransaction `json:"fiatTransactions"`
	MonitoredCoins   []string          `json:"monitoredCoins"`
	Wallets          []Wallet          `json:"wallets"`
	Tags             []Tag             `json:"tags"`
	AIConfig         *AIConfig         `json:"aiConfig"`
	CexExchangeOrder []string          `json:"cexExchangeOrder"`
}

// Backup is the export/import file.
type Backup struct {
	Version    string      `json:"version"`
	ExportDate time.Time   `json:"exportDate"`
	Data       *BackupData `json:"data"`
}

// ExportBackup snapshots the backed up fields of s.
func (s AppState) ExportBackup(now time.Time) Backup {
	ai := s.AIConfig
	txs := make([]Transaction, len(s.Transactions))
	for i, t := range s.Transactions {
		txs[i] = t.Clone()
	}
	return Backup{
		Version:    BackupVersion,
		ExportDate: now.UTC(),
		Data: &BackupData{
			CexConfigs:       append([]CexConfig{}, s.CexConfigs...),
			Transactions:     txs,
			FiatTransactions: append([]FiatTransaction{}, s.FiatTransactions...),
			MonitoredCoins:   append([]string{}, s.MonitoredCoins...),
			Wallets:          append([]Wallet{}, s.Wallets...),
			Tags:             append([]Tag{}, s.Tags...),
			AIConfig:         &ai,
			CexExchangeOrder: append([]string{}, s.CexExchangeOrder...),
		},
	}
}

// ImportBackup replaces the backed up fields wholesale. Fields absent from the file reset to
// their defaults. It returns false and leaves s untouched when the file has no version or
// no data section.
func (s *AppState) ImportBackup(b Backup) bool {
	if b.Version == "" || b.Data == nil {
		return false
	}
	d := b.Data
	s.CexConfigs = d.CexConfigs
	s.Transactions = d.Transactions
	s.FiatTransactions = d.FiatTransactions
	s.MonitoredCoins = d.MonitoredCoins
	s.Wallets = d.Wallets
	s.Tags = d.Tags
	s.AIConfig = AIConfig{}
	if d.AIConfig != nil {
		s.AIConfig = *d.AIConfig
	}
	s.CexExchangeOrder = d.CexExchangeOrder
	s.Normalize()
	return true
}
