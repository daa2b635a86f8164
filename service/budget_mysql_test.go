package service

import (
	"context"
	"testing"

	"infraspend/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockStore(t *testing.T) (*database.Store, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return database.NewStore(gormDB), mock
}

// Under REPEATABLE READ a plain SELECT would sum from the transaction's
// snapshot, so the project is locked and the amounts are read with a lock.
func TestRecompute_LocksProjectAndReadsCurrentRows(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `projects` WHERE id = \\?.* FOR UPDATE").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "budget", "total_expenditure"}).
			AddRow(7, "Harbor Bridge", "1000000.00", "100.00"))
	mock.ExpectQuery("SELECT .*amount.* FROM `expenditures` WHERE .* FOR SHARE").
		WithArgs(7, "approved").
		WillReturnRows(sqlmock.NewRows([]string{"amount"}).
			AddRow("100.00").
			AddRow("250.50"))
	mock.ExpectExec("UPDATE `projects` SET .*total_expenditure").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var total string
	err := store.Transaction(context.Background(), func(tx *database.Store) error {
		sum, err := BudgetAggregator{}.Recompute(context.Background(), tx, 7)
		total = sum.StringFixed(2)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "350.50", total)
	require.NoError(t, mock.ExpectationsWereMet())
}
