package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	Email              string    `db:"email" json:"email"`
	FirstName          string    `db:"first_name" json:"first_name"`
	LastName           string    `db:"last_name" json:"last_name"`
	PhoneNumber        string    `db:"phone_number" json:"phone_number"`
	PasswordHash       string    `db:"password_hash" json:"-"` // bcrypt
	ProfilePicturePath string    `db:"profile_picture_path" json:"profile_picture_path"`
	IsSubscribed       bool      `db:"is_subscribed" json:"is_subscribed"`
	IsAdmin            bool      `db:"is_admin" json:"is_admin"`
	CreatedOn          time.Time `db:"created_on" json:"created_on"`
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type Beekeeper struct {
	ID                   uuid.UUID `db:"id" json:"id"`
	UserID               uuid.UUID `db:"user_id" json:"user_id"`
	PhoneNumber          string    `db:"phone_number" json:"phone_number"`
	HiveFarmPicturePaths string    `db:"hive_farm_picture_paths" json:"hive_farm_picture_paths"`
	Latitude             *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude            *float64  `db:"longitude" json:"longitude,omitempty"`
	CreatedOn            time.Time `db:"created_on" json:"created_on"`
}

type Category struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type Flavour struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type Honey struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	Origin      string          `db:"origin" json:"origin"`
	Description string          `db:"description" json:"description"`
	ImageURL    string          `db:"image_url" json:"image_url"`
	Price       decimal.Decimal `db:"price" json:"price"`
	NetWeight   int             `db:"net_weight" json:"net_weight"` // grams
	YearMade    int             `db:"year_made" json:"year_made"`
	CreatedOn   time.Time       `db:"created_on" json:"created_on"`
	IsActive    bool            `db:"is_active" json:"is_active"`
	CategoryID  int             `db:"category_id" json:"category_id"`
	BeekeeperID uuid.UUID       `db:"beekeeper_id" json:"beekeeper_id"`
}

type Propolis struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	Origin      string          `db:"origin" json:"origin"`
	Description string          `db:"description" json:"description"`
	ImageURL    string          `db:"image_url" json:"image_url"`
	Price       decimal.Decimal `db:"price" json:"price"`
	NetWeight   int             `db:"net_weight" json:"net_weight"`
	YearMade    int             `db:"year_made" json:"year_made"`
	CreatedOn   time.Time       `db:"created_on" json:"created_on"`
	IsActive    bool            `db:"is_active" json:"is_active"`
	FlavourID   int             `db:"flavour_id" json:"flavour_id"`
	BeekeeperID uuid.UUID       `db:"beekeeper_id" json:"beekeeper_id"`
}

type BeePollen struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	Origin      string          `db:"origin" json:"origin"`
	Description string          `db:"description" json:"description"`
	ImageURL    string          `db:"image_url" json:"image_url"`
	Price       decimal.Decimal `db:"price" json:"price"`
	NetWeight   int             `db:"net_weight" json:"net_weight"`
	CreatedOn   time.Time       `db:"created_on" json:"created_on"`
	IsActive    bool            `db:"is_active" json:"is_active"`
	BeekeeperID uuid.UUID       `db:"beekeeper_id" json:"beekeeper_id"`
}

type Post struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	ImageURL  string    `db:"image_url" json:"image_url"`
	CreatedOn time.Time `db:"created_on" json:"created_on"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	AuthorID  uuid.UUID `db:"author_id" json:"author_id"`
}

type Comment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Content   string    `db:"content" json:"content"`
	CreatedOn time.Time `db:"created_on" json:"created_on"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	PostID    uuid.UUID `db:"post_id" json:"post_id"`
	AuthorID  uuid.UUID `db:"author_id" json:"author_id"`
}

type OrderStatus string

const (
	OrderProcessing OrderStatus = "Processing"
	OrderPrepared   OrderStatus = "Prepared"
	OrderShipped    OrderStatus = "Shipped"
	OrderCompleted  OrderStatus = "Completed"
)

var OrderStatuses = []OrderStatus{OrderProcessing, OrderPrepared, OrderShipped, OrderCompleted}

func (s OrderStatus) Valid() bool {
	for _, st := range OrderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Order copies product names and prices into its items at creation time.
type Order struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	UserID       uuid.NullUUID   `db:"user_id" json:"user_id"` // invalid for guest orders
	CustomerName string          `db:"customer_name" json:"customer_name"`
	Email        string          `db:"email" json:"email"`
	PhoneNumber  string          `db:"phone_number" json:"phone_number"`
	Address      string          `db:"address" json:"address"`
	Notes        string          `db:"notes" json:"notes"`
	BeekeeperID  uuid.NullUUID   `db:"beekeeper_id" json:"beekeeper_id"`
	TotalPrice   decimal.Decimal `db:"total_price" json:"total_price"`
	Status       OrderStatus     `db:"status" json:"status"`
	CreatedOn    time.Time       `db:"created_on" json:"created_on"`

	Items []OrderItem `db:"-" json:"items,omitempty"`
}

type OrderItem struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	OrderID     uuid.UUID       `db:"order_id" json:"order_id"`
	ProductID   uuid.NullUUID   `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	Quantity    int             `db:"quantity" json:"quantity"`
	Price       decimal.Decimal `db:"price" json:"price"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	CreatedOn time.Time `db:"created_on" json:"created_on"`
}

// CartItem references exactly one of HoneyID or PropolisID.
type CartItem struct {
	ID         uuid.UUID     `db:"id" json:"id"`
	CartID     uuid.UUID     `db:"cart_id" json:"cart_id"`
	HoneyID    uuid.NullUUID `db:"honey_id" json:"honey_id"`
	PropolisID uuid.NullUUID `db:"propolis_id" json:"propolis_id"`
	Quantity   int           `db:"quantity" json:"quantity"`
	AddedOn    time.Time     `db:"added_on" json:"added_on"`
}

type FortuneAccess struct {
	ID             uuid.UUID `db:"id" json:"id"`
	IPAddress      string    `db:"ip_address" json:"ip_address"`
	LastAccessDate time.Time `db:"last_access_date" json:"last_access_date"`
	CreatedOn      time.Time `db:"created_on" json:"created_on"`
	FortuneText    string    `db:"fortune_text" json:"fortune_text"`
}

type SubscribedEmail struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	SubscribedOn time.Time `db:"subscribed_on" json:"subscribed_on"`
}
