package domain

import "time"

const (
	RoleOwner     = "owner"
	RoleWarehouse = "warehouse"
	RoleDealer    = "dealer"
	RoleSalesman  = "salesman"
)

const (
	WarehouseActive   = "active"
	WarehouseInactive = "inactive"
)

const (
	ItemActive   = "active"
	ItemInactive = "inactive"
)

const (
	TransportPending    = "pending"
	TransportDispatched = "dispatched"
	TransportDelivered  = "delivered"
	TransportCancelled  = "cancelled"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

const (
	ReturnPending  = "pending"
	ReturnApproved = "approved"
	ReturnRejected = "rejected"
)

// Inventory adjustment modes for direct stock corrections.
const (
	AdjustSet      = "set"
	AdjustAdd      = "add"
	AdjustSubtract = "subtract"
)

// Actor is the authenticated identity making a request. For the warehouse
// role, ID is the warehouse the account is bound to; for dealer and salesman
// it is the user account ID.
type Actor struct {
	ID       string
	Username string
	Role     string
}

type Warehouse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type WarehouseCreateRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type Item struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

type ItemCreateRequest struct {
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

type ItemUpdateRequest struct {
	Name           *string `json:"name,omitempty"`
	UnitPriceCents *int64  `json:"unit_price_cents,omitempty"`
	Status         *string `json:"status,omitempty"`
}

// InventoryRow is the per-(warehouse, item) quantity. An absent row reads
// as quantity zero.
type InventoryRow struct {
	WarehouseID string    `json:"warehouse_id"`
	ItemID      string    `json:"item_id"`
	Quantity    int       `json:"quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type InventoryAdjustRequest struct {
	WarehouseID string `json:"warehouse_id"`
	ItemID      string `json:"item_id"`
	Quantity    int    `json:"quantity"`
	Mode        string `json:"mode"`
}

type InventoryTransferRequest struct {
	FromWarehouseID string `json:"from_warehouse_id"`
	ToWarehouseID   string `json:"to_warehouse_id"`
	ItemID          string `json:"item_id"`
	Quantity        int    `json:"quantity"`
}

type InventoryBulkUpdateRequest struct {
	Updates []InventoryAdjustRequest `json:"updates"`
}

type AvailabilityResponse struct {
	WarehouseID     string `json:"warehouse_id"`
	ItemID          string `json:"item_id"`
	Available       bool   `json:"available"`
	CurrentQuantity int    `json:"current_quantity"`
}

type OrderLine struct {
	ItemID         string `json:"item_id"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
}

type Order struct {
	ID              string      `json:"id"`
	OrderNumber     string      `json:"order_number"`
	WarehouseID     string      `json:"warehouse_id"`
	DealerID        string      `json:"dealer_id,omitempty"`
	SalesmanID      string      `json:"salesman_id,omitempty"`
	TotalCents      int64       `json:"total_cents"`
	TransportStatus string      `json:"transport_status"`
	PaymentStatus   string      `json:"payment_status"`
	OrderDate       time.Time   `json:"order_date"`
	DispatchDate    *time.Time  `json:"dispatch_date,omitempty"`
	DeliveryDate    *time.Time  `json:"delivery_date,omitempty"`
	Lines           []OrderLine `json:"lines"`
}

type OrderLineInput struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type OrderCreateRequest struct {
	WarehouseID string           `json:"warehouse_id"`
	DealerID    string           `json:"dealer_id,omitempty"`
	SalesmanID  string           `json:"salesman_id,omitempty"`
	Lines       []OrderLineInput `json:"lines"`
}

type OrderUpdateRequest struct {
	Lines []OrderLineInput `json:"lines"`
}

type TransportStatusRequest struct {
	Status string `json:"status"`
}

type PaymentStatusRequest struct {
	Status string `json:"status"`
}

// OrderFilter narrows list queries to the rows an actor may see.
// Empty fields are unrestricted.
type OrderFilter struct {
	WarehouseID string
	DealerID    string
	SalesmanID  string
}

type Payment struct {
	ID             string     `json:"id"`
	OrderID        string     `json:"order_id"`
	AmountCents    int64      `json:"amount_cents"`
	Method         string     `json:"method"`
	Status         string     `json:"status"`
	TransactionRef string     `json:"transaction_ref,omitempty"`
	PaymentDate    time.Time  `json:"payment_date"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Notes          string     `json:"notes,omitempty"`
}

type PaymentCreateRequest struct {
	AmountCents    int64  `json:"amount_cents"`
	Method         string `json:"method"`
	Status         string `json:"status"`
	TransactionRef string `json:"transaction_ref,omitempty"`
	DueDate        string `json:"due_date,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

type PaymentUpdateRequest struct {
	AmountCents *int64  `json:"amount_cents,omitempty"`
	Status      *string `json:"status,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

type ReturnOrder struct {
	ID              string    `json:"id"`
	ReturnNumber    string    `json:"return_number"`
	OriginalOrderID string    `json:"original_order_id,omitempty"`
	WarehouseID     string    `json:"warehouse_id"`
	DealerID        string    `json:"dealer_id,omitempty"`
	SalesmanID      string    `json:"salesman_id,omitempty"`
	ItemID          string    `json:"item_id"`
	Quantity        int       `json:"quantity"`
	Reason          string    `json:"reason"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

type ReturnCreateRequest struct {
	OriginalOrderID string `json:"original_order_id,omitempty"`
	WarehouseID     string `json:"warehouse_id"`
	DealerID        string `json:"dealer_id,omitempty"`
	SalesmanID      string `json:"salesman_id,omitempty"`
	ItemID          string `json:"item_id"`
	Quantity        int    `json:"quantity"`
	Reason          string `json:"reason"`
}

type ReturnStatusRequest struct {
	Status string `json:"status"`
}

type ReturnFilter struct {
	WarehouseID string
	DealerID    string
	SalesmanID  string
}

// RegistrationCode is a single-use onboarding code minted by the owner.
// Warehouse-role codes bind the new account to a warehouse.
type RegistrationCode struct {
	Code        string     `json:"code"`
	Role        string     `json:"role"`
	WarehouseID string     `json:"warehouse_id,omitempty"`
	ExpiresAt   time.Time  `json:"expires_at"`
	UsedAt      *time.Time `json:"used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type RegistrationCodeRequest struct {
	Role         string `json:"role"`
	WarehouseID  string `json:"warehouse_id,omitempty"`
	ExpiresInHrs int    `json:"expires_in_hours"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Code     string `json:"code"`
}

type RegisterResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	ActorID  string `json:"actor_id"`
}

// UserSummary is the credential-free view of an account returned to the
// owner.
type UserSummary struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	WarehouseID string    `json:"warehouse_id,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ActorID     string `json:"actor_id"`
	ExpiresAt   string `json:"expires_at"`
}

// UserAccount is the internal persistence model for credentials.
type UserAccount struct {
	ID           string
	Username     string
	PasswordHash string
	Role         string
	WarehouseID  string
	Phone        string
	Active       bool
	CreatedAt    time.Time
}

// ActorID is the scope identity the account acts as. Warehouse accounts act
// as their warehouse; everyone else acts as themselves.
func (u UserAccount) ActorID() string {
	if u.Role == RoleWarehouse && u.WarehouseID != "" {
		return u.WarehouseID
	}
	return u.ID
}
