package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/models"
)

// GetOrCreateCart returns the user's cart, creating it on first use.
func (s *Store) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var c models.Cart
	query := s.rebind(`SELECT id, user_id, created_on FROM carts WHERE user_id = ?`)
	err := s.DB.GetContext(ctx, &c, query, userID)
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	c = models.Cart{ID: uuid.New(), UserID: userID, CreatedOn: now()}
	insert := `INSERT INTO carts (id, user_id, created_on) VALUES (?, ?, ?) ON CONFLICT (user_id) DO NOTHING`
	if _, err := s.DB.ExecContext(ctx, s.rebind(insert), c.ID, c.UserID, c.CreatedOn); err != nil {
		return nil, err
	}
	// A concurrent request may have won the insert.
	if err := s.DB.GetContext(ctx, &c, query, userID); err != nil {
		return nil, err
	}
	return &c, nil
}

// AddCartItem adds quantity to an existing line for the same product or inserts
// a new line. A line never holds more than maxQuantity.
func (s *Store) AddCartItem(ctx context.Context, cartID uuid.UUID, honeyID, propolisID uuid.NullUUID, quantity, maxQuantity int) error {
	column, productID := "honey_id", honeyID.UUID
	if propolisID.Valid {
		column, productID = "propolis_id", propolisID.UUID
	}

	res, err := s.DB.ExecContext(ctx,
		s.rebind(`UPDATE cart_items
			SET quantity = CASE WHEN quantity + ? > ? THEN ? ELSE quantity + ? END
			WHERE cart_id = ? AND `+column+` = ?`),
		quantity, maxQuantity, maxQuantity, quantity, cartID, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	item := models.CartItem{
		ID:         uuid.New(),
		CartID:     cartID,
		HoneyID:    honeyID,
		PropolisID: propolisID,
		Quantity:   min(quantity, maxQuantity),
		AddedOn:    now(),
	}
	query := `
		INSERT INTO cart_items (id, cart_id, honey_id, propolis_id, quantity, added_on)
		VALUES (:id, :cart_id, :honey_id, :propolis_id, :quantity, :added_on)
	`
	_, err = s.DB.NamedExecContext(ctx, query, item)
	return err
}

func (s *Store) GetCartItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	var it models.CartItem
	query := `SELECT id, cart_id, honey_id, propolis_id, quantity, added_on FROM cart_items WHERE id = ? AND cart_id = ?`
	err := s.DB.GetContext(ctx, &it, s.rebind(query), itemID, cartID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *Store) UpdateCartItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) error {
	res, err := s.DB.ExecContext(ctx,
		s.rebind(`UPDATE cart_items SET quantity = ? WHERE id = ? AND cart_id = ?`),
		quantity, itemID, cartID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) RemoveCartItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	_, err := s.DB.ExecContext(ctx, s.rebind(`DELETE FROM cart_items WHERE id = ? AND cart_id = ?`), itemID, cartID)
	return err
}

func (s *Store) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	_, err := s.DB.ExecContext(ctx, s.rebind(`DELETE FROM cart_items WHERE cart_id = ?`), cartID)
	return err
}

// CartLines resolves every item of the cart against its honey or propolis row.
// Lines whose product was deactivated are left out.
func (s *Store) CartLines(ctx context.Context, cartID uuid.UUID) ([]models.CartLine, error) {
	query := `
		SELECT ci.id AS cart_item_id, h.id AS product_id, 'honey' AS product_kind,
		       h.title, h.image_url, h.price, ci.quantity, ci.added_on
		FROM cart_items ci
		JOIN honeys h ON h.id = ci.honey_id
		WHERE ci.cart_id = ? AND h.is_active = ?
		UNION ALL
		SELECT ci.id, p.id, 'propolis', p.title, p.image_url, p.price, ci.quantity, ci.added_on
		FROM cart_items ci
		JOIN propolises p ON p.id = ci.propolis_id
		WHERE ci.cart_id = ? AND p.is_active = ?
		ORDER BY added_on
	`
	var rows []struct {
		models.CartLine
		AddedOn interface{} `db:"added_on"`
	}
	if err := s.DB.SelectContext(ctx, &rows, s.rebind(query), cartID, true, cartID, true); err != nil {
		return nil, err
	}
	lines := make([]models.CartLine, len(rows))
	for i, r := range rows {
		lines[i] = r.CartLine
	}
	return lines, nil
}
