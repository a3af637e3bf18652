package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HoneyListing is a honey row joined with its category and beekeeper names.
type HoneyListing struct {
	Honey
	CategoryName  string `db:"category_name" json:"category_name"`
	BeekeeperName string `db:"beekeeper_name" json:"beekeeper_name"`
}

type PropolisListing struct {
	Propolis
	FlavourName   string `db:"flavour_name" json:"flavour_name"`
	BeekeeperName string `db:"beekeeper_name" json:"beekeeper_name"`
}

type BeePollenListing struct {
	BeePollen
	BeekeeperName string `db:"beekeeper_name" json:"beekeeper_name"`
}

type BeekeeperCard struct {
	ID              uuid.UUID `db:"id" json:"id"`
	FullName        string    `db:"full_name" json:"full_name"`
	Email           string    `db:"email" json:"email"`
	PhoneNumber     string    `db:"phone_number" json:"phone_number"`
	HivePicturePath string    `db:"hive_farm_picture_paths" json:"hive_picture_path"`
	HoneyCount      int       `db:"honey_count" json:"honey_count"`
	PropolisCount   int       `db:"propolis_count" json:"propolis_count"`
	JoinedDate      time.Time `db:"created_on" json:"joined_date"`
}

type BeekeeperProfile struct {
	Beekeeper
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`

	OwnedHoneys []HoneyListing `db:"-" json:"owned_honeys"`
}

func (p *BeekeeperProfile) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

type MapPoint struct {
	ID        uuid.UUID `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Latitude  float64   `db:"latitude" json:"latitude"`
	Longitude float64   `db:"longitude" json:"longitude"`
}

// CartLine is a cart item resolved against the product it references.
type CartLine struct {
	CartItemID  uuid.UUID       `db:"cart_item_id" json:"cart_item_id"`
	ProductID   uuid.UUID       `db:"product_id" json:"product_id"`
	ProductKind string          `db:"product_kind" json:"product_kind"` // "honey" or "propolis"
	Title       string          `db:"title" json:"title"`
	ImageURL    string          `db:"image_url" json:"image_url"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Quantity    int             `db:"quantity" json:"quantity"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type CartView struct {
	Honeys     []CartLine      `json:"honeys"`
	Propolises []CartLine      `json:"propolises"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func (c *CartView) Empty() bool {
	return len(c.Honeys) == 0 && len(c.Propolises) == 0
}

func (c *CartView) Lines() []CartLine {
	lines := make([]CartLine, 0, len(c.Honeys)+len(c.Propolises))
	lines = append(lines, c.Honeys...)
	return append(lines, c.Propolises...)
}

type PostSummary struct {
	Post
	AuthorName   string `db:"author_name" json:"author_name"`
	CommentCount int    `db:"comment_count" json:"comment_count"`
}

type CommentView struct {
	Comment
	AuthorName string `db:"author_name" json:"author_name"`
}

type PostDetails struct {
	PostSummary
	Comments []CommentView `json:"comments"`
}

// HoneyType is a quick-order option on the homepage form.
type HoneyType struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

type BeekeeperOption struct {
	ID          uuid.UUID `json:"id"`
	FullName    string    `json:"full_name"`
	Location    string    `json:"location"`
	PhoneNumber string    `json:"phone_number"`
}

type OrderFormData struct {
	AvailableHoneyTypes []HoneyType       `json:"available_honey_types"`
	AvailableBeekeepers []BeekeeperOption `json:"available_beekeepers"`
}
