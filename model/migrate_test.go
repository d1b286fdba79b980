package model_test

import (
	"testing"

	"github.com/kasuganosora/itemvault/server/model"
	"github.com/kasuganosora/itemvault/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestAutoMigrateCreatesTables(t *testing.T) {
	db := testutil.SetupTestDB(t)

	assert.True(t, db.Migrator().HasTable(&model.Account{}))
	assert.True(t, db.Migrator().HasTable(&model.InventoryRecord{}))
}

func TestInventoryRecordUniquePerAccountAndName(t *testing.T) {
	db := testutil.SetupTestDB(t)

	rec := model.InventoryRecord{AccountID: 1, Name: "main", Snapshot: datatypes.JSON(`{}`)}
	require.NoError(t, db.Create(&rec).Error)

	dup := model.InventoryRecord{AccountID: 1, Name: "main", Snapshot: datatypes.JSON(`{}`)}
	assert.Error(t, db.Create(&dup).Error)

	other := model.InventoryRecord{AccountID: 2, Name: "main", Snapshot: datatypes.JSON(`{}`)}
	assert.NoError(t, db.Create(&other).Error)
}
