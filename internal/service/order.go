package service

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/email"
	"github.com/savethebee/honeyweb/internal/hub"
	"github.com/savethebee/honeyweb/internal/metrics"
	"github.com/savethebee/honeyweb/internal/models"
	"github.com/savethebee/honeyweb/internal/store"
	"github.com/shopspring/decimal"
)

const (
	MinOrderQuantity     = 1
	MaxOrderQuantity     = 10
	DefaultOrdersPerPage = 20
	defaultProductName   = "Мед"
	defaultHoneyDesc     = "Висококачествен български мед"
)

// Quick orders are priced per category name, not per catalog row.
var quickOrderPrices = map[string]decimal.Decimal{
	"Linden":    decimal.RequireFromString("15.50"),
	"Bio":       decimal.RequireFromString("18.00"),
	"Sunflower": decimal.RequireFromString("12.00"),
}

var defaultQuickOrderPrice = decimal.RequireFromString("15.00")

var quickOrderNames = map[string]string{
	"Linden":    "Липов мед",
	"Bio":       "Билков мед",
	"Sunflower": "Слънчогледов мед",
}

var quickOrderDescriptions = map[string]string{
	"Linden":    "Нежен липов мед с цветен аромат",
	"Bio":       "Билков мед от различни лечебни билки",
	"Sunflower": "Слънчогледов мед с богат вкус",
}

// sampleBeekeepers fill the quick-order form until real beekeepers register.
var sampleBeekeepers = []models.BeekeeperOption{
	{ID: uuid.MustParse("7d1f4a52-3c1e-4a8e-9a3b-1f5c2d8e6a01"), FullName: "Ивайло Борисов", Location: "Враца", PhoneNumber: "+359886612263"},
	{ID: uuid.MustParse("7d1f4a52-3c1e-4a8e-9a3b-1f5c2d8e6a02"), FullName: "Мария Петрова", Location: "Пловдив", PhoneNumber: "+359888234567"},
	{ID: uuid.MustParse("7d1f4a52-3c1e-4a8e-9a3b-1f5c2d8e6a03"), FullName: "Иван Стоянов", Location: "Варна", PhoneNumber: "+359888345678"},
}

// QuickOrderPrice returns the fixed unit price for a category name.
func QuickOrderPrice(categoryName string) decimal.Decimal {
	if p, ok := quickOrderPrices[categoryName]; ok {
		return p
	}
	return defaultQuickOrderPrice
}

// QuickOrderForm is the homepage order form.
type QuickOrderForm struct {
	FullName    string
	Email       string
	PhoneNumber string
	Address     string
	HoneyTypeID int
	BeekeeperID uuid.NullUUID
	Quantity    int
	Notes       string
}

func (f *QuickOrderForm) normalize() {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Email = strings.TrimSpace(f.Email)
	f.PhoneNumber = strings.TrimSpace(f.PhoneNumber)
	f.Address = strings.TrimSpace(f.Address)
	f.Notes = strings.TrimSpace(f.Notes)
}

func (f QuickOrderForm) validate() error {
	v := &ValidationError{}
	if !lengthBetween(f.FullName, 2, 100) {
		v.add("full_name", "Full name must be between 2 and 100 characters.")
	}
	if !IsValidEmail(f.Email) {
		v.add("email", "Enter a valid email address.")
	}
	if !IsValidPhone(f.PhoneNumber) {
		v.add("phone_number", "Enter a valid Bulgarian phone number.")
	}
	if f.Address == "" {
		v.add("address", "Address is required.")
	}
	if f.Quantity < MinOrderQuantity || f.Quantity > MaxOrderQuantity {
		v.add("quantity", ErrInvalidQuantity.Error())
	}
	return v.orNil()
}

// ContactDetails are the delivery fields for an order placed from the cart.
type ContactDetails struct {
	FullName    string
	PhoneNumber string
	Email       string
	Address     string
}

func (c ContactDetails) validate() error {
	v := &ValidationError{}
	if !lengthBetween(c.FullName, 2, 100) {
		v.add("full_name", "Full name must be between 2 and 100 characters.")
	}
	if !IsValidEmail(strings.TrimSpace(c.Email)) {
		v.add("email", "Enter a valid email address.")
	}
	if !IsValidPhone(strings.TrimSpace(c.PhoneNumber)) {
		v.add("phone_number", "Enter a valid Bulgarian phone number.")
	}
	if strings.TrimSpace(c.Address) == "" {
		v.add("address", "Address is required.")
	}
	return v.orNil()
}

// Broadcaster pushes live events to websocket clients.
type Broadcaster interface {
	Broadcast(ev hub.Event)
	SendToUser(userID uuid.UUID, ev hub.Event)
}

type OrderPage struct {
	Orders     []models.Order
	Total      int
	Page       int
	TotalPages int
	Status     models.OrderStatus
}

type OrderService struct {
	Store    *store.Store
	Notifier *email.Notifier
	Orders   Broadcaster // admin order feed
	Carts    Broadcaster // per-user cart feed
}

// HoneyTypes lists the categories available for quick orders.
func (s *OrderService) HoneyTypes(ctx context.Context) ([]models.HoneyType, error) {
	categories, err := s.Store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	types := []models.HoneyType{}
	for _, c := range categories {
		name, ok := quickOrderNames[c.Name]
		if !ok {
			continue
		}
		desc := quickOrderDescriptions[c.Name]
		if desc == "" {
			desc = defaultHoneyDesc
		}
		types = append(types, models.HoneyType{
			ID:          c.ID,
			Name:        name,
			Price:       QuickOrderPrice(c.Name),
			Description: desc,
		})
	}
	return types, nil
}

// BeekeeperOptions lists registered beekeepers, or the sample ones when none exist.
func (s *OrderService) BeekeeperOptions(ctx context.Context) ([]models.BeekeeperOption, error) {
	cards, err := s.Store.ListBeekeeperCards(ctx)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return append([]models.BeekeeperOption(nil), sampleBeekeepers...), nil
	}
	opts := make([]models.BeekeeperOption, 0, len(cards))
	for _, c := range cards {
		opts = append(opts, models.BeekeeperOption{ID: c.ID, FullName: c.FullName, PhoneNumber: c.PhoneNumber})
	}
	return opts, nil
}

func (s *OrderService) OrderFormData(ctx context.Context) (*models.OrderFormData, error) {
	types, err := s.HoneyTypes(ctx)
	if err != nil {
		return nil, err
	}
	beekeepers, err := s.BeekeeperOptions(ctx)
	if err != nil {
		return nil, err
	}
	return &models.OrderFormData{AvailableHoneyTypes: types, AvailableBeekeepers: beekeepers}, nil
}

// PlaceQuickOrder validates the form, prices it by category and stores the
// order with its single item. Notification emails are sent in the background
// and never affect the result.
func (s *OrderService) PlaceQuickOrder(ctx context.Context, f QuickOrderForm) (*models.Order, error) {
	f.normalize()
	if err := f.validate(); err != nil {
		return nil, err
	}

	types, err := s.HoneyTypes(ctx)
	if err != nil {
		return nil, err
	}
	var honeyType *models.HoneyType
	for i := range types {
		if types[i].ID == f.HoneyTypeID {
			honeyType = &types[i]
			break
		}
	}
	if honeyType == nil {
		return nil, ErrInvalidCategory
	}

	product, err := s.Store.FirstActiveHoneyInCategory(ctx, f.HoneyTypeID)
	if err != nil {
		return nil, err
	}
	item := models.OrderItem{
		ProductName: defaultProductName,
		Quantity:    f.Quantity,
		Price:       honeyType.Price,
	}
	if product != nil {
		item.ProductID = uuid.NullUUID{UUID: product.ID, Valid: true}
		item.ProductName = product.Title
	}

	order := &models.Order{
		CustomerName: f.FullName,
		Email:        f.Email,
		PhoneNumber:  f.PhoneNumber,
		Address:      f.Address,
		Notes:        f.Notes,
		TotalPrice:   item.Subtotal(),
	}
	if f.BeekeeperID.Valid {
		p, err := s.Store.GetBeekeeperProfile(ctx, f.BeekeeperID.UUID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			order.BeekeeperID = f.BeekeeperID
		}
	}

	if err := s.Store.CreateOrder(ctx, order, []models.OrderItem{item}); err != nil {
		slog.Error("Failed to create quick order", "error", err, "email", order.Email)
		return nil, err
	}
	slog.Info("Quick order placed", "order_id", order.ID, "total", order.TotalPrice.StringFixed(2))
	s.afterOrder(order, "quick")
	return order, nil
}

// CreateOrderFromCart snapshots the user's cart into an order and empties the cart.
func (s *OrderService) CreateOrderFromCart(ctx context.Context, userID uuid.UUID, c ContactDetails) (*models.Order, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	cart, err := s.Store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	lines, err := s.Store.CartLines(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]models.OrderItem, 0, len(lines))
	total := decimal.Zero
	for _, l := range lines {
		items = append(items, models.OrderItem{
			ProductID:   uuid.NullUUID{UUID: l.ProductID, Valid: true},
			ProductName: l.Title,
			Quantity:    l.Quantity,
			Price:       l.Price,
		})
		total = total.Add(l.Subtotal())
	}
	order := &models.Order{
		UserID:       uuid.NullUUID{UUID: userID, Valid: true},
		CustomerName: strings.TrimSpace(c.FullName),
		Email:        strings.TrimSpace(c.Email),
		PhoneNumber:  strings.TrimSpace(c.PhoneNumber),
		Address:      strings.TrimSpace(c.Address),
		TotalPrice:   total,
	}
	if err := s.Store.CreateOrder(ctx, order, items); err != nil {
		slog.Error("Failed to create order from cart", "error", err, "user_id", userID)
		return nil, err
	}
	if err := s.Store.ClearCart(ctx, cart.ID); err != nil {
		slog.Warn("Failed to clear cart after order", "error", err, "cart_id", cart.ID)
	}
	slog.Info("Cart order placed", "order_id", order.ID, "user_id", userID, "items", len(items))
	s.afterOrder(order, "cart")
	if s.Carts != nil {
		s.Carts.SendToUser(userID, hub.Event{Type: hub.EventCartUpdated, Payload: map[string]interface{}{"totalPrice": decimal.Zero}})
	}
	return order, nil
}

func (s *OrderService) afterOrder(o *models.Order, source string) {
	metrics.RecordOrder(source)
	if s.Notifier != nil {
		order := *o
		s.Notifier.Go("order_confirmation", func(ctx context.Context) error {
			return s.Notifier.OrderConfirmation(ctx, &order)
		})
		s.Notifier.Go("admin_order", func(ctx context.Context) error {
			return s.Notifier.AdminOrderAlert(ctx, &order)
		})
	}
	if s.Orders != nil {
		s.Orders.Broadcast(hub.Event{Type: hub.EventNewOrder, Payload: map[string]interface{}{
			"orderId":      o.ID,
			"customerName": o.CustomerName,
			"totalPrice":   o.TotalPrice,
			"createdOn":    o.CreatedOn,
		}})
	}
}

func (s *OrderService) UserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.Store.OrdersByUser(ctx, userID)
}

// AllOrders pages through every order, optionally filtered by status.
func (s *OrderService) AllOrders(ctx context.Context, status models.OrderStatus, page, perPage int) (*OrderPage, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidInput
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultOrdersPerPage
	}
	orders, total, err := s.Store.ListOrders(ctx, status, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	return &OrderPage{
		Orders:     orders,
		Total:      total,
		Page:       page,
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
		Status:     status,
	}, nil
}

func (s *OrderService) OrderDetails(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, err := s.Store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrNotFound
	}
	return o, nil
}

// OrderForUser returns the order only if it belongs to userID.
func (s *OrderService) OrderForUser(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	o, err := s.OrderDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.UserID.Valid || o.UserID.UUID != userID {
		return nil, ErrForbidden
	}
	return o, nil
}

// UpdateStatus changes the status and notifies the customer.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidInput
	}
	if err := s.Store.UpdateOrderStatus(ctx, id, status); err != nil {
		return nil, notFound(err)
	}
	o, err := s.OrderDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Notifier != nil {
		order := *o
		s.Notifier.Go("order_status", func(ctx context.Context) error {
			return s.Notifier.OrderStatusUpdate(ctx, &order)
		})
	}
	ev := hub.Event{Type: hub.EventOrderStatusChanged, Payload: map[string]interface{}{
		"orderId": o.ID,
		"status":  o.Status,
	}}
	if s.Orders != nil {
		s.Orders.Broadcast(ev)
	}
	if s.Carts != nil && o.UserID.Valid {
		s.Carts.SendToUser(o.UserID.UUID, ev)
	}
	return o, nil
}
