package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/savethebee/honeyweb/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewFromDB(sqlx.NewDb(db, "sqlmock")), mock
}

func TestCreateOrderWritesOrderBeforeItems(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	o := &models.Order{CustomerName: "Maria Ivanova", TotalPrice: decimal.RequireFromString("43.00")}
	items := []models.OrderItem{
		{ProductName: "Linden honey", Quantity: 2, Price: decimal.RequireFromString("15.50")},
		{ProductName: "Мед", Quantity: 1, Price: decimal.RequireFromString("12.00")},
	}
	require.NoError(t, st.CreateOrder(context.Background(), o, items))

	assert.Equal(t, models.OrderProcessing, o.Status)
	require.Len(t, o.Items, 2)
	for _, it := range o.Items {
		assert.Equal(t, o.ID, it.OrderID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderRollsBackOnItemFailure(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := st.CreateOrder(context.Background(), &models.Order{}, []models.OrderItem{{ProductName: "Мед", Quantity: 1}})
	assert.ErrorContains(t, err, "insert order item")
	assert.NoError(t, mock.ExpectationsWereMet())
}
