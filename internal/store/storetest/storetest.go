// Package storetest поднимает изолированную in-memory SQLite базу с
// применёнными миграциями для тестов репозиториев и HTTP-хендлеров.
package storetest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/employee-api/internal/config"
	"github.com/employee-api/internal/store"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// New возвращает мигрированную базу, закрываемую по окончании теста
func New(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	cfg := config.DatabaseConfig{
		Driver:          config.DriverSQLite,
		SQLitePath:      fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnectAttempts: 1,
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := store.Open(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(db) })

	db = db.Session(&gorm.Session{Logger: gormlogger.Discard})

	_, err = store.Migrate(ctx, db, config.DriverSQLite)
	require.NoError(t, err)

	return db
}
