package sqlite

import (
	"os"
	"path/filepath"

	"gorm.io/gorm"

	"github.com/iotaledger/hive.go/db"
	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/log"
	"github.com/iotaledger/hive.go/runtime/ioutils"
	"github.com/iotaledger/hive.go/runtime/syncutils"
	"github.com/iotaledger/hive.go/sql"
)

// ExecFunc executes a function with the gorm database as argument.
type ExecFunc func(func(*gorm.DB) error) error

// Database is a wrapper around a gorm database (SQLite) that guards access to it.
type Database struct {
	logger       log.Logger
	directory    string
	filename     string
	errorHandler func(error)

	accessMutex *syncutils.StarvingMutex
	database    *gorm.DB
}

// New creates or opens the SQLite database stored as filename in directory.
func New(logger log.Logger, directory string, filename string, errorHandler func(error)) (*Database, error) {
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return nil, ierrors.Wrapf(err, "failed to create database directory: %s", directory)
	}

	gormDB, _, err := sql.New(
		logger,
		sql.DatabaseParameters{
			Engine:   db.EngineSQLite,
			Path:     directory,
			Filename: filename,
		},
		true,
		[]db.Engine{db.EngineSQLite},
	)
	if err != nil {
		return nil, ierrors.Wrapf(err, "failed to create/open SQLite database: %s", filepath.Join(directory, filename))
	}

	return &Database{
		logger:       logger,
		directory:    directory,
		filename:     filename,
		errorHandler: errorHandler,
		accessMutex:  syncutils.NewStarvingMutex(),
		database:     gormDB,
	}, nil
}

// ExecDBFunc returns a function that executes database operations while holding the access lock.
func (d *Database) ExecDBFunc() ExecFunc {
	return func(dbFunc func(*gorm.DB) error) error {
		d.accessMutex.RLock()
		defer d.accessMutex.RUnlock()

		if d.database == nil {
			return ierrors.Errorf("SQLite database %s is closed", filepath.Join(d.directory, d.filename))
		}

		return dbFunc(d.database)
	}
}

// Size returns the size of the directory holding the database.
func (d *Database) Size() int64 {
	folderSize, err := ioutils.FolderSize(d.directory)
	if err != nil {
		d.errorHandler(ierrors.Wrapf(err, "get folder size failed for %s", d.directory))
	}

	return folderSize
}

// Shutdown closes the database. Operations executed afterwards fail.
func (d *Database) Shutdown() {
	d.accessMutex.Lock()
	defer d.accessMutex.Unlock()

	if d.database == nil {
		return
	}

	sqlDB, err := d.database.DB()
	if err != nil {
		d.errorHandler(ierrors.Wrapf(err, "failed to get SQLite database: %s", filepath.Join(d.directory, d.filename)))

		return
	}

	if err := sqlDB.Close(); err != nil {
		d.errorHandler(ierrors.Wrap(err, "failed to close SQLite database"))
	}
	d.database = nil
}
