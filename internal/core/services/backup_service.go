package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	portssvc "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/services"
)

type backupService struct {
	BaseService
	session *Session
}

// NewBackupService creates the backup export/import service.
func NewBackupService(session *Session, now func() time.Time) portssvc.BackupSvcFacade {
	return &backupService{BaseService: BaseService{now: now}, session: session}
}

var _ portssvc.BackupSvcFacade = (*backupService)(nil)

func (s *backupService) ExportBackup(ctx context.Context) (*domain.Backup, error) {
	snapshot := s.session.Snapshot()
	backup := snapshot.State.ExportBackup(s.Now())
	s.LogInfo(ctx, "Backup exported", slog.Int("transactions", len(backup.Data.Transactions)))
	return &backup, nil
}

func (s *backupService) ImportBackup(ctx context.Context, backup domain.Backup) (bool, error) {
	applied, imported := false, 0
	err := s.session.Rebuild(func(state *domain.AppState) error {
		if !state.ImportBackup(backup) {
			return errNoChange
		}
		state.Transactions = append([]domain.Transaction(nil), state.Transactions...)
		for i := range state.Transactions {
			state.Transactions[i].Normalize()
		}
		applied, imported = true, len(state.Transactions)
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to import backup")
		return false, err
	}
	if !applied {
		s.LogInfo(ctx, "Backup ignored: missing version or data")
		return false, nil
	}
	s.LogInfo(ctx, "Backup imported",
		slog.String("version", backup.Version),
		slog.Int("transactions", imported))
	return true, nil
}
