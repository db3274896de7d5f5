package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stock statuses a product can be listed under.
const (
	StockInStock       = "in_stock"
	StockLimited       = "limited"
	StockOutOfStock    = "out_of_stock"
	StockAvailableSoon = "available_soon"
)

var stockStatuses = map[string]bool{
	StockInStock:       true,
	StockLimited:       true,
	StockOutOfStock:    true,
	StockAvailableSoon: true,
}

func ValidStockStatus(s string) bool {
	return stockStatuses[s]
}

type Product struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name           string             `bson:"name" json:"name"`
	Description    string             `bson:"description" json:"description"`
	CategoryID     string             `bson:"category_id" json:"category_id"`
	PartNumber     string             `bson:"part_number" json:"part_number"`
	Manufacturer   string             `bson:"manufacturer" json:"manufacturer"`
	MachineType    string             `bson:"machine_type" json:"machine_type"`
	TechnicalSpecs string             `bson:"technical_specs" json:"technical_specs"`
	Price          float64            `bson:"price" json:"price"`
	Currency       string             `bson:"currency" json:"currency"`
	StockStatus    string             `bson:"stock_status" json:"stock_status"`
	IsFeatured     string             `bson:"is_featured" json:"is_featured"` // "yes" or "no"
	Images         []string           `bson:"images,omitempty" json:"images,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
	CreatedBy      string             `bson:"created_by,omitempty" json:"created_by,omitempty"`

	// Resolved for display only; "Uncategorized" when the reference is
	// orphaned. Never persisted.
	CategoryName string `bson:"-" json:"category_name,omitempty"`
}

type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	IconClass   string             `bson:"icon_class" json:"icon_class"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`

	// Derived by a count query at read time, never stored authoritatively.
	ProductCount int64 `bson:"-" json:"product_count"`
}

// Enquiry statuses. The workflow is ordered for display purposes but every
// transition between members of the set is allowed.
const (
	EnquiryNew       = "new"
	EnquiryContacted = "contacted"
	EnquiryQuoted    = "quoted"
	EnquiryClosed    = "closed"
)

var enquiryStatuses = map[string]bool{
	EnquiryNew:       true,
	EnquiryContacted: true,
	EnquiryQuoted:    true,
	EnquiryClosed:    true,
}

func ValidEnquiryStatus(s string) bool {
	return enquiryStatuses[s]
}

type Enquiry struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name            string             `bson:"name" json:"name"`
	Email           string             `bson:"email" json:"email"`
	Phone           string             `bson:"phone" json:"phone"`
	Company         string             `bson:"company,omitempty" json:"company,omitempty"`
	Country         string             `bson:"country" json:"country"`
	Industry        string             `bson:"industry,omitempty" json:"industry,omitempty"`
	Message         string             `bson:"message" json:"message"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	QuantityUnit    string             `bson:"quantity_unit,omitempty" json:"quantity_unit,omitempty"`
	DeliveryUrgency string             `bson:"delivery_urgency" json:"delivery_urgency"`
	// Carried as opaque text; resolution is best effort and never a
	// precondition for accepting the enquiry.
	ProductID   string    `bson:"product_id,omitempty" json:"product_id,omitempty"`
	Attachments []string  `bson:"attachments,omitempty" json:"attachments,omitempty"`
	Status      string    `bson:"status" json:"status"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
	IPAddress   string    `bson:"ip_address" json:"ip_address"`

	ProductName string `bson:"-" json:"product_name,omitempty"`
}

type AdminUser struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"` // bcrypt hash
	Role      string             `bson:"role" json:"role"`  // "admin" or "superadmin"
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

type ActivityEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Action    string             `bson:"action" json:"action"`
	Details   string             `bson:"details" json:"details"`
	UserID    string             `bson:"user_id,omitempty" json:"user_id,omitempty"`
	UserName  string             `bson:"user_name" json:"user_name"` // "System" when unauthenticated
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	IPAddress string             `bson:"ip_address" json:"ip_address"`
}

// Snapshot is the in-memory stats aggregate injected into every rendered page.
type Snapshot struct {
	TotalProducts   int64     `json:"total_products"`
	TotalCategories int64     `json:"total_categories"`
	NewEnquiries    int64     `json:"new_enquiries"`
	TotalEnquiries  int64     `json:"total_enquiries"`
	CachedAt        time.Time `json:"cached_at"`
	CacheDuration   int64     `json:"cache_duration"` // seconds
	Error           bool      `json:"error,omitempty"`
}
