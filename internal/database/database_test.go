package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/soz/drivingschool/internal/config"
	"github.com/soz/drivingschool/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.PostgresConfig{
		Host:     "db",
		Port:     "5433",
		Username: "u",
		Password: "p",
		Database: "school",
	})
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=school sslmode=disable", dsn)
}

func TestGetSqliteDB_FileAndSetup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "school.db")

	db, err := GetSqliteDB(path, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, Setup(db, zerolog.Nop()))
	for _, m := range model.DatabaseModels {
		assert.True(t, db.Migrator().HasTable(m))
	}

	var count int64
	require.NoError(t, db.Model(&model.SchoolInfo{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// second setup must not duplicate the instance row
	require.NoError(t, Setup(db, zerolog.Nop()))
	require.NoError(t, db.Model(&model.SchoolInfo{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDumpMemoryDBToDisk(t *testing.T) {
	db, err := GetSqliteDB(filepath.Join(t.TempDir(), "src.db"), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, Setup(db, zerolog.Nop()))
	require.NoError(t, db.Create(&model.Trial{TrialID: "t1", License: "car"}).Error)

	out := filepath.Join(t.TempDir(), "dump.db")
	require.NoError(t, os.WriteFile(out, []byte("stale"), 0644))

	require.NoError(t, DumpMemoryDBToDisk(db, out))

	dumped, err := GetSqliteDB(out, zerolog.Nop())
	require.NoError(t, err)
	var trials []model.Trial
	require.NoError(t, dumped.Find(&trials).Error)
	require.Len(t, trials, 1)
	assert.Equal(t, "t1", trials[0].TrialID)
}

func TestDumpMemoryDBToDisk_NoPath(t *testing.T) {
	err := DumpMemoryDBToDisk(nil, "")
	assert.Error(t, err)
}

func TestGetBackupDBPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.db"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), nil, 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "c.db"), 0755))

	paths, err := GetBackupDBPaths(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.db")}, paths)
}

func TestGetBackupDBPaths_MissingDir(t *testing.T) {
	_, err := GetBackupDBPaths(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
