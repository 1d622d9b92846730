package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// emptyResultDriver satisfies database/sql with queries that always match
// zero rows, enough to exercise the record-not-found path without a server.
type emptyResultDriver struct{}

func (emptyResultDriver) Open(name string) (driver.Conn, error) { return emptyConn{}, nil }

type emptyConn struct{}

func (emptyConn) Prepare(query string) (driver.Stmt, error) { return emptyStmt{}, nil }
func (emptyConn) Close() error                              { return nil }
func (emptyConn) Begin() (driver.Tx, error)                 { return emptyTx{}, nil }

type emptyTx struct{}

func (emptyTx) Commit() error   { return nil }
func (emptyTx) Rollback() error { return nil }

type emptyStmt struct{}

func (emptyStmt) Close() error  { return nil }
func (emptyStmt) NumInput() int { return -1 }

func (emptyStmt) Exec(args []driver.Value) (driver.Result, error) {
	return driver.ResultNoRows, nil
}

func (emptyStmt) Query(args []driver.Value) (driver.Rows, error) {
	return emptyRows{}, nil
}

type emptyRows struct{}

func (emptyRows) Columns() []string              { return nil }
func (emptyRows) Close() error                   { return nil }
func (emptyRows) Next(dest []driver.Value) error { return io.EOF }

func init() {
	sql.Register("stocks-empty", emptyResultDriver{})
}

func openEmptyDB(t *testing.T) *gorm.DB {
	t.Helper()

	sqlDB, err := sql.Open("stocks-empty", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestFindByTickerReturnsNilWhenMissing(t *testing.T) {
	repo := NewStocksRepository(openEmptyDB(t))

	stock, err := repo.FindByTicker(context.Background(), "GHOST")
	require.NoError(t, err)
	assert.Nil(t, stock)
}

func TestFindByIDReturnsNilWhenMissing(t *testing.T) {
	repo := NewStocksRepository(openEmptyDB(t))

	stock, err := repo.FindByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, stock)
}
