package store

import (
	"context"
	"errors"
	"time"

	"github.com/Skywalker147/sorath-sub001/internal/domain"
)

// Failure taxonomy shared by both store implementations and the service
// layer. Out-of-scope rows are reported as ErrNotFound so existence is
// never leaked to the caller.
var (
	ErrValidation        = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrAccessDenied      = errors.New("access denied")
	ErrConflict          = errors.New("conflict")
)

// Repository is the transactional store contract. Every mutating operation
// is a single atomic unit: it either commits all of its writes or none.
type Repository interface {
	CreateWarehouse(ctx context.Context, warehouse domain.Warehouse) (*domain.Warehouse, error)
	GetWarehouse(ctx context.Context, id string) (*domain.Warehouse, error)
	ListWarehouses(ctx context.Context) ([]domain.Warehouse, error)
	SetWarehouseStatus(ctx context.Context, id string, status string) (*domain.Warehouse, error)

	CreateItem(ctx context.Context, item domain.Item) (*domain.Item, error)
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	ListItems(ctx context.Context) ([]domain.Item, error)
	UpdateItem(ctx context.Context, item domain.Item) (*domain.Item, error)
	GetItemsByIDs(ctx context.Context, ids []string) (map[string]domain.Item, error)

	GetInventory(ctx context.Context, warehouseID string, itemID string) (int, error)
	ListInventory(ctx context.Context, warehouseID string) ([]domain.InventoryRow, error)
	AdjustInventory(ctx context.Context, adj domain.InventoryAdjustRequest) (*domain.InventoryRow, error)
	TransferInventory(ctx context.Context, req domain.InventoryTransferRequest) error
	BulkAdjustInventory(ctx context.Context, updates []domain.InventoryAdjustRequest) error

	CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	ReplaceOrderLines(ctx context.Context, orderID string, lines []domain.OrderLine, totalCents int64) (*domain.Order, error)
	UpdateTransportStatus(ctx context.Context, orderID string, status string, at time.Time) (*domain.Order, error)
	SetPaymentStatus(ctx context.Context, orderID string, status string) (*domain.Order, error)
	DeleteOrder(ctx context.Context, orderID string) error

	CreatePayment(ctx context.Context, payment domain.Payment) (*domain.Payment, error)
	GetPayment(ctx context.Context, id string) (*domain.Payment, error)
	ListPayments(ctx context.Context, orderID string) ([]domain.Payment, error)
	UpdatePayment(ctx context.Context, payment domain.Payment) (*domain.Payment, error)
	DeletePayment(ctx context.Context, id string) error

	CreateReturnOrder(ctx context.Context, ret domain.ReturnOrder) (*domain.ReturnOrder, error)
	GetReturnOrder(ctx context.Context, id string) (*domain.ReturnOrder, error)
	ListReturnOrders(ctx context.Context, filter domain.ReturnFilter) ([]domain.ReturnOrder, error)
	SetReturnStatus(ctx context.Context, returnID string, status string) (*domain.ReturnOrder, error)

	CreateRegistrationCode(ctx context.Context, code domain.RegistrationCode) (*domain.RegistrationCode, error)
	ConsumeRegistrationCode(ctx context.Context, code string, at time.Time) (*domain.RegistrationCode, error)
	ReleaseRegistrationCode(ctx context.Context, code string) error

	CreateUser(ctx context.Context, user domain.UserAccount) (*domain.UserAccount, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.UserAccount, error)
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, passwordHash string) error
}
