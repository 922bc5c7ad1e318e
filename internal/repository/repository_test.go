package repository_test

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"qrlink/internal/models"
	"qrlink/internal/repository"
)

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

func strptr(s string) *string { return &s }

func TestCodeRepository(t *testing.T) {
	t.Run("round-trips by token and id", func(t *testing.T) {
		repo := repository.NewCodeRepository(openTestDB(t))

		code := &models.Code{OwnerID: "alice", Kind: models.KindDynamic, TargetURL: "https://example.com", Token: strptr("abc12345")}
		require.NoError(t, repo.Create(code))
		require.NotZero(t, code.ID)

		byToken, err := repo.FindByToken("abc12345")
		require.NoError(t, err)
		assert.Equal(t, code.ID, byToken.ID)

		byID, err := repo.FindByID(code.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", byID.TargetURL)
	})

	t.Run("unknown token surfaces record-not-found", func(t *testing.T) {
		repo := repository.NewCodeRepository(openTestDB(t))

		_, err := repo.FindByToken("missing")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("duplicate tokens are rejected by the unique index", func(t *testing.T) {
		repo := repository.NewCodeRepository(openTestDB(t))

		first := &models.Code{OwnerID: "alice", Kind: models.KindDynamic, TargetURL: "https://example.com", Token: strptr("dup00000")}
		require.NoError(t, repo.Create(first))

		second := &models.Code{OwnerID: "bob", Kind: models.KindDynamic, TargetURL: "https://example.org", Token: strptr("dup00000")}
		assert.Error(t, repo.Create(second))
	})

	t.Run("static codes may share the nil token", func(t *testing.T) {
		repo := repository.NewCodeRepository(openTestDB(t))

		for i := 0; i < 3; i++ {
			require.NoError(t, repo.Create(&models.Code{OwnerID: "alice", Kind: models.KindStatic, TargetURL: "https://example.com"}))
		}

		codes, err := repo.FindAll()
		require.NoError(t, err)
		assert.Len(t, codes, 3)
	})

	t.Run("UpdateTarget rewrites the URL and stamps updated_at", func(t *testing.T) {
		repo := repository.NewCodeRepository(openTestDB(t))

		code := &models.Code{OwnerID: "alice", Kind: models.KindDynamic, TargetURL: "https://example.com", Token: strptr("upd00000")}
		require.NoError(t, repo.Create(code))
		require.Nil(t, code.LastUpdatedAt)

		before := time.Now()
		updated, err := repo.UpdateTarget(code.ID, "https://example.org")
		require.NoError(t, err)

		assert.Equal(t, "https://example.org", updated.TargetURL)
		require.NotNil(t, updated.LastUpdatedAt)
		assert.False(t, updated.LastUpdatedAt.Before(before.Add(-time.Second)))
	})
}

func TestVisitRepository(t *testing.T) {
	t.Run("appends and reads back in insertion order", func(t *testing.T) {
		db := openTestDB(t)
		codeRepo := repository.NewCodeRepository(db)
		visitRepo := repository.NewVisitRepository(db)

		code := &models.Code{OwnerID: "alice", Kind: models.KindDynamic, TargetURL: "https://example.com", Token: strptr("vis00000")}
		require.NoError(t, codeRepo.Create(code))

		for i, ip := range []string{"1.1.1.1", "2.2.2.2"} {
			require.NoError(t, visitRepo.Create(&models.Visit{
				CodeID:    code.ID,
				Timestamp: time.Now().Add(time.Duration(i) * time.Second),
				IPAddress: ip,
				Location:  "Unknown",
				Device:    "Desktop",
				Platform:  "Unknown",
				TargetURL: code.TargetURL,
			}))
		}

		visits, err := visitRepo.FindByCodeID(code.ID)
		require.NoError(t, err)
		require.Len(t, visits, 2)
		assert.Equal(t, "1.1.1.1", visits[0].IPAddress)
		assert.Equal(t, "2.2.2.2", visits[1].IPAddress)

		count, err := visitRepo.CountByCodeID(code.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("empty history is an empty slice, not an error", func(t *testing.T) {
		visitRepo := repository.NewVisitRepository(openTestDB(t))

		visits, err := visitRepo.FindByCodeID(42)
		require.NoError(t, err)
		assert.Empty(t, visits)
	})
}
