package db

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kasuganosora/itemvault/server/config"
	dbmysql "github.com/kasuganosora/itemvault/server/db/mysql"
	dbsqlite "github.com/kasuganosora/itemvault/server/db/sqlite"
	"gorm.io/gorm"
)

const (
	ModeMemory = "memory"
	ModeSQLite = "sqlite"
	ModeMySQL  = "mysql"
)

// Open returns a *gorm.DB for the configured database mode. ModeMemory is a
// private in-process SQLite database, used by tests and throwaway setups.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Mode {
	case ModeMemory:
		// A named shared-cache DB keeps the pool's connections on one
		// database while isolating each Open from every other.
		return dbsqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	case ModeSQLite:
		return dbsqlite.Open(cfg.SQLitePath)
	case ModeMySQL:
		return dbmysql.Open(cfg.MySQLDSN, cfg.MySQLMaxOpen, cfg.MySQLMaxIdle, cfg.MySQLMaxLife)
	default:
		return nil, fmt.Errorf("db: unknown mode %q", cfg.Mode)
	}
}
