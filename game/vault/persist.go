package vault

import (
	"context"
	"errors"

	"github.com/kasuganosora/itemvault/server/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// recordName is the snapshot row name for an account's primary inventory.
const recordName = "main"

// load builds the account's inventory: default templates first, stored
// snapshot overlaid when one exists. Restore bypasses admission, so stacks
// persisted under older, looser templates still come back.
func (m *Manager) load(ctx context.Context, accountID int64) (*Session, error) {
	inv, err := m.buildDefault(accountID)
	if err != nil {
		return nil, err
	}

	var rec model.InventoryRecord
	err = m.db.WithContext(ctx).
		Where("account_id = ? AND name = ?", accountID, recordName).
		First(&rec).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// First login keeps the template presets.
	case err != nil:
		return nil, err
	default:
		if err := inv.Restore(rec.Snapshot, m.loader); err != nil {
			return nil, err
		}
	}

	sess := &Session{accountID: accountID, inv: inv}
	m.watch(sess)
	if m.logger != nil {
		m.logger.Info("inventory session loaded",
			zap.Int64("account", accountID),
			zap.Int("containers", len(inv.Containers())),
		)
	}
	return sess, nil
}

// save snapshots the session and upserts its record. When force is false a
// clean session is skipped.
func (m *Manager) save(ctx context.Context, sess *Session, force bool) error {
	if !sess.dirty.Load() && !force {
		return nil
	}
	sess.mu.Lock()
	data, err := sess.inv.Snapshot()
	sess.mu.Unlock()
	if err != nil {
		return err
	}
	// Cleared before the write so a mutation racing the upsert re-dirties the
	// session instead of being marked saved.
	sess.dirty.Store(false)

	rec := model.InventoryRecord{
		AccountID: sess.accountID,
		Name:      recordName,
		Snapshot:  datatypes.JSON(data),
	}
	if err := m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"snapshot", "updated_at"}),
	}).Create(&rec).Error; err != nil {
		// The snapshot never landed; keep the session dirty so the next
		// autosave pass retries instead of dropping it.
		sess.dirty.Store(true)
		return err
	}
	return nil
}

// Save persists one account's session immediately, regardless of dirtiness.
func (m *Manager) Save(ctx context.Context, accountID int64) error {
	m.mu.Lock()
	sess, ok := m.sessions[accountID]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return m.save(ctx, sess, true)
}
