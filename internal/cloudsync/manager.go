package cloudsync

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerly/ledgerly/internal/auth"
	"github.com/ledgerly/ledgerly/internal/domain"
	"github.com/ledgerly/ledgerly/internal/logger"
)

// Settings keys the manager keeps in the local key-value table.
const (
	settingDeviceID    = "device_id"
	settingLastSync    = "last_sync"
	settingSyncEnabled = "sync_enabled"
)

// FullSyncer is the slice of the engine the manager drives.
type FullSyncer interface {
	FullSync(ctx context.Context, deviceID string) domain.FullSyncResult
}

// Manager owns the sync bookkeeping around the engine: the per-installation
// device identity, the last successful sync time, and the user-facing
// sync-enabled toggle.
type Manager struct {
	syncer   FullSyncer
	settings SettingsStore
	auth     auth.Provider
}

// NewManager creates a sync manager.
func NewManager(syncer FullSyncer, settings SettingsStore, provider auth.Provider) *Manager {
	return &Manager{
		syncer:   syncer,
		settings: settings,
		auth:     provider,
	}
}

// DeviceID returns the stable per-installation device identifier, generating
// and persisting a random one on first use. Documents pushed by this
// installation are tagged with it.
func (m *Manager) DeviceID(ctx context.Context) (string, error) {
	id, ok, err := m.settings.Setting(ctx, settingDeviceID)
	if err != nil {
		return "", fmt.Errorf("reading device id: %w", err)
	}
	if ok && id != "" {
		return id, nil
	}

	id = uuid.New().String()
	if err := m.settings.PutSetting(ctx, settingDeviceID, id); err != nil {
		return "", fmt.Errorf("persisting device id: %w", err)
	}
	return id, nil
}

// SyncAll runs a full sync for this installation and records the completion
// time when every collection succeeded.
func (m *Manager) SyncAll(ctx context.Context) (domain.FullSyncResult, error) {
	log := logger.FromContext(ctx)

	if !m.auth.IsAuthenticated(ctx) {
		return domain.FullSyncError(auth.ErrNotAuthenticated), auth.ErrNotAuthenticated
	}

	deviceID, err := m.DeviceID(ctx)
	if err != nil {
		return domain.FullSyncError(err), err
	}

	result := m.syncer.FullSync(ctx, deviceID)
	if result.IsSuccessful() {
		if err := m.recordLastSync(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to record last sync time")
		}
		log.Info().Msg("Sync completed successfully")
	} else {
		log.Error().Str("error", firstSyncError(result)).Msg("Sync completed with failures")
	}

	return result, nil
}

// IsCloudSyncEnabled reports the persisted user toggle.
func (m *Manager) IsCloudSyncEnabled(ctx context.Context) (bool, error) {
	value, ok, err := m.settings.Setting(ctx, settingSyncEnabled)
	if err != nil || !ok {
		return false, err
	}
	return value == "true", nil
}

// SetCloudSyncEnabled persists the user toggle. Enabling requires a signed-in
// user and triggers an immediate sync; if that sync fails the toggle is
// rolled back so the stored flag never claims a working sync that has not
// happened.
func (m *Manager) SetCloudSyncEnabled(ctx context.Context, enabled bool) error {
	log := logger.FromContext(ctx)

	if enabled && !m.auth.IsAuthenticated(ctx) {
		log.Warn().Msg("Ignoring cloud sync enable while user is signed out")
		return auth.ErrNotAuthenticated
	}

	if err := m.settings.PutSetting(ctx, settingSyncEnabled, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("persisting sync toggle: %w", err)
	}

	if !enabled {
		return nil
	}

	result, err := m.SyncAll(ctx)
	if err != nil || !result.IsSuccessful() {
		if putErr := m.settings.PutSetting(ctx, settingSyncEnabled, "false"); putErr != nil {
			log.Warn().Err(putErr).Msg("Failed to roll back sync toggle")
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("initial sync failed: %s", firstSyncError(result))
	}

	return nil
}

// LastSyncTime returns when the last fully successful sync finished, or the
// zero time when none has.
func (m *Manager) LastSyncTime(ctx context.Context) (time.Time, error) {
	value, ok, err := m.settings.Setting(ctx, settingLastSync)
	if err != nil || !ok {
		return time.Time{}, err
	}

	millis, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing last sync time: %w", err)
	}
	return time.UnixMilli(millis), nil
}

func (m *Manager) recordLastSync(ctx context.Context) error {
	return m.settings.PutSetting(ctx, settingLastSync, strconv.FormatInt(time.Now().UnixMilli(), 10))
}

// firstSyncError picks the most useful failure message out of an aggregate,
// in the order the collections sync.
func firstSyncError(result domain.FullSyncResult) string {
	switch {
	case !result.Transactions.OK():
		return "transaction sync failed: " + result.Transactions.Err
	case !result.Budgets.OK():
		return "budget sync failed: " + result.Budgets.Err
	case !result.RecurringTransactions.OK():
		return "recurring sync failed: " + result.RecurringTransactions.Err
	}
	return ""
}
