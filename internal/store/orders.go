package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/savethebee/honeyweb/internal/models"
)

const orderColumns = `id, user_id, customer_name, email, phone_number, address, notes, beekeeper_id, total_price, status, created_on`

// CreateOrder inserts the order row and then its item rows in one transaction.
func (s *Store) CreateOrder(ctx context.Context, o *models.Order, items []models.OrderItem) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.CreatedOn.IsZero() {
		o.CreatedOn = now()
	}
	if o.Status == "" {
		o.Status = models.OrderProcessing
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	orderQuery := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES (:id, :user_id, :customer_name, :email, :phone_number, :address, :notes, :beekeeper_id, :total_price, :status, :created_on)
	`
	if _, err := tx.NamedExecContext(ctx, orderQuery, o); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, product_name, quantity, price)
		VALUES (:id, :order_id, :product_id, :product_name, :quantity, :price)
	`
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].OrderID = o.ID
		if _, err := tx.NamedExecContext(ctx, itemQuery, &items[i]); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	o.Items = items
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	err := s.DB.GetContext(ctx, &o, s.rebind(`SELECT `+orderColumns+` FROM orders WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if o.Items, err = s.orderItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) orderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	query := `SELECT id, order_id, product_id, product_name, quantity, price FROM order_items WHERE order_id = ? ORDER BY product_name`
	err := s.DB.SelectContext(ctx, &items, s.rebind(query), orderID)
	return items, err
}

// attachItems loads items for every order with a single IN query.
func (s *Store) attachItems(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Items = []models.OrderItem{}
	}
	query, args, err := sqlx.In(`SELECT id, order_id, product_id, product_name, quantity, price FROM order_items WHERE order_id IN (?)`, ids)
	if err != nil {
		return err
	}
	var items []models.OrderItem
	if err := s.DB.SelectContext(ctx, &items, s.rebind(query), args...); err != nil {
		return err
	}
	for _, it := range items {
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return nil
}

func (s *Store) OrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders := []models.Order{}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = ? ORDER BY created_on DESC`
	if err := s.DB.SelectContext(ctx, &orders, s.rebind(query), userID); err != nil {
		return nil, err
	}
	return orders, s.attachItems(ctx, orders)
}

// ListOrders returns a page of orders, optionally filtered by status, and the total.
func (s *Store) ListOrders(ctx context.Context, status models.OrderStatus, limit, offset int) ([]models.Order, int, error) {
	where := ""
	var args []interface{}
	if status != "" {
		where = ` WHERE status = ?`
		args = append(args, status)
	}

	var total int
	if err := s.DB.GetContext(ctx, &total, s.rebind(`SELECT COUNT(*) FROM orders`+where), args...); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + orderColumns + ` FROM orders` + where + ` ORDER BY created_on DESC`
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}
	orders := []models.Order{}
	if err := s.DB.SelectContext(ctx, &orders, s.rebind(query), args...); err != nil {
		return nil, 0, err
	}
	return orders, total, s.attachItems(ctx, orders)
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	res, err := s.DB.ExecContext(ctx, s.rebind(`UPDATE orders SET status = ? WHERE id = ?`), status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) CountOrders(ctx context.Context) (int, error) {
	var n int
	err := s.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM orders`)
	return n, err
}
