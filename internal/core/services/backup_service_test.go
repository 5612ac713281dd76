package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	portssvc "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/services"
	"github.com/SscSPs/crypto_bookkeeper/internal/core/services"
	"github.com/stretchr/testify/suite"
)

type BackupServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	scheduler *recordingScheduler
	session   *services.Session
	service   portssvc.BackupSvcFacade
}

func (suite *BackupServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.scheduler = &recordingScheduler{}

	state := domain.NewAppState()
	state.Transactions = []domain.Transaction{storedLeg("a", domain.Buy, baseDate, "1", "100")}
	state.MonitoredCoins = []string{"BTC"}
	state.AIConfig = domain.AIConfig{Provider: "openai", Model: "gpt"}
	state.ManualAssets = []domain.ManualAsset{{ID: "m1", Symbol: "BTC", Amount: dec("1")}}
	suite.session = services.NewSession(state, suite.scheduler)
	suite.service = services.NewBackupService(suite.session, func() time.Time { return baseDate })
}

func (suite *BackupServiceTestSuite) TestExportBackup() {
	backup, err := suite.service.ExportBackup(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(domain.BackupVersion, backup.Version)
	suite.Equal(baseDate, backup.ExportDate)
	suite.Require().NotNil(backup.Data)
	suite.Len(backup.Data.Transactions, 1)
	suite.Equal([]string{"BTC"}, backup.Data.MonitoredCoins)
	suite.Equal("openai", backup.Data.AIConfig.Provider)
}

func (suite *BackupServiceTestSuite) TestImportBackup_ReplacesListedFields() {
	backup := domain.Backup{
		Version: "1.0",
		Data: &domain.BackupData{
			Transactions: []domain.Transaction{
				storedLeg("x", domain.Buy, baseDate, "2", "50"),
				storedLeg("y", domain.Sell, baseDate, "2", "60"),
			},
			MonitoredCoins: []string{"ETH"},
		},
	}

	ok, err := suite.service.ImportBackup(suite.ctx, backup)

	suite.Require().NoError(err)
	suite.True(ok)
	suite.Equal(1, suite.scheduler.count())
	snap := suite.session.Snapshot().State
	suite.Len(snap.Transactions, 2)
	suite.Equal([]string{"ETH"}, snap.MonitoredCoins)
	suite.Equal(domain.AIConfig{}, snap.AIConfig)
	suite.Len(snap.ManualAssets, 1, "fields outside the backup are kept")
}

func (suite *BackupServiceTestSuite) TestImportBackup_IgnoresMalformed() {
	for _, b := range []domain.Backup{
		{Data: &domain.BackupData{}},
		{Version: "1.0"},
	} {
		ok, err := suite.service.ImportBackup(suite.ctx, b)
		suite.Require().NoError(err)
		suite.False(ok)
	}
	suite.Equal(0, suite.scheduler.count())
	suite.Len(suite.session.Snapshot().State.Transactions, 1)
}

func (suite *BackupServiceTestSuite) TestImportBackup_ConcurrentSettingSurvives() {
	backup := domain.Backup{
		Version: "1.0",
		Data:    &domain.BackupData{Transactions: []domain.Transaction{storedLeg("x", domain.Buy, baseDate, "2", "50")}},
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := suite.service.ImportBackup(suite.ctx, backup)
			suite.NoError(err)
		}()
		go func() {
			defer wg.Done()
			suite.NoError(suite.session.Mutate(func(state *domain.AppState, _ *domain.TransactionBook) error {
				state.HideAmounts = true
				return nil
			}))
		}()
	}
	wg.Wait()

	snap := suite.session.Snapshot().State
	suite.True(snap.HideAmounts, "hideAmounts is not part of a backup")
	suite.Len(snap.Transactions, 1)
	suite.Equal("x", snap.Transactions[0].ID)
	suite.Equal(40, suite.scheduler.count())
}

func TestBackupServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BackupServiceTestSuite))
}
