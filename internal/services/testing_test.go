package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	customerrors "qrlink/internal/errors"
	"qrlink/internal/models"
	"qrlink/internal/summary"
)

// openTestDB opens a fresh in-memory SQLite database. The connection pool is
// capped at one so every query sees the same in-memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Code{}, &models.Visit{}))
	return db
}

// stubEncoder returns fixed bytes, or fails when broken.
type stubEncoder struct {
	broken bool
}

func (e stubEncoder) Encode(content string) ([]byte, error) {
	if e.broken {
		return nil, customerrors.External("qr-encoder", errors.New("boom"))
	}
	return []byte("png:" + content), nil
}

// stubLocator returns a fixed location or a lookup error.
type stubLocator struct {
	location string
	err      error
}

func (l stubLocator) Locate(ip string) (string, error) {
	if l.err != nil {
		return "", l.err
	}
	return l.location, nil
}

// stubSummarizer returns a fixed narrative or an error.
type stubSummarizer struct {
	text string
	err  error
}

func (s stubSummarizer) Summarize(_ context.Context, _ summary.Aggregates) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}
