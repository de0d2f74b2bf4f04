package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Skywalker147/sorath-sub001/internal/domain"
	"github.com/Skywalker147/sorath-sub001/internal/store"
	"github.com/Skywalker147/sorath-sub001/internal/xid"
)

// Store is the in-memory repository used for dev mode and tests. A single
// RWMutex stands in for the row locks of the Postgres implementation: every
// read-modify-write sequence runs under the write lock, so the same
// atomicity guarantees hold.
type Store struct {
	mu              sync.RWMutex
	warehouses      map[string]domain.Warehouse
	items           map[string]domain.Item
	inventory       map[string]map[string]int
	ordersByID      map[string]*domain.Order
	orderNumbers    map[string]string
	paymentsByID    map[string]domain.Payment
	returnsByID     map[string]domain.ReturnOrder
	returnNumbers   map[string]string
	codesByValue    map[string]domain.RegistrationCode
	usersByUsername map[string]domain.UserAccount
}

func New() *Store {
	return &Store{
		warehouses:      make(map[string]domain.Warehouse),
		items:           make(map[string]domain.Item),
		inventory:       make(map[string]map[string]int),
		ordersByID:      make(map[string]*domain.Order),
		orderNumbers:    make(map[string]string),
		paymentsByID:    make(map[string]domain.Payment),
		returnsByID:     make(map[string]domain.ReturnOrder),
		returnNumbers:   make(map[string]string),
		codesByValue:    make(map[string]domain.RegistrationCode),
		usersByUsername: make(map[string]domain.UserAccount),
	}
}

// seedUsers builds the initial dev/demo accounts. Passwords come from
// SEED_<ROLE>_PASSWORD environment variables with hardcoded dev fallbacks;
// production deployments use PostgreSQL and registration codes instead.
func seedUsers(warehouseID string) map[string]domain.UserAccount {
	seeds := []struct {
		username string
		envKey   string
		fallback string
		role     string
	}{
		{"owner", "SEED_OWNER_PASSWORD", "owner123", domain.RoleOwner},
		{"centralwh", "SEED_WAREHOUSE_PASSWORD", "warehouse123", domain.RoleWarehouse},
		{"dealer1", "SEED_DEALER_PASSWORD", "dealer123", domain.RoleDealer},
		{"salesman1", "SEED_SALESMAN_PASSWORD", "salesman123", domain.RoleSalesman},
	}

	defaulted := false
	now := time.Now().UTC()
	users := make(map[string]domain.UserAccount, len(seeds))
	for _, seed := range seeds {
		password := os.Getenv(seed.envKey)
		if password == "" {
			password = seed.fallback
			defaulted = true
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", seed.username, err)
		}
		account := domain.UserAccount{
			ID:           xid.New("usr"),
			Username:     seed.username,
			PasswordHash: string(hash),
			Role:         seed.role,
			Active:       true,
			CreatedAt:    now,
		}
		if seed.role == domain.RoleWarehouse {
			account.WarehouseID = warehouseID
		}
		users[seed.username] = account
	}
	if defaulted {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_*_PASSWORD to override.")
	}
	return users
}

func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()

	warehouses := []domain.Warehouse{
		{ID: "wh-central", Name: "Central Warehouse", Address: "12 Harbor Rd", Phone: "555-0101", Status: domain.WarehouseActive, CreatedAt: now},
		{ID: "wh-east", Name: "East Depot", Address: "48 Mill Lane", Phone: "555-0102", Status: domain.WarehouseActive, CreatedAt: now},
	}
	items := []domain.Item{
		{ID: "itm-pipe-20", Name: "PVC Pipe 20mm", UnitPriceCents: 4500, Status: domain.ItemActive, CreatedAt: now},
		{ID: "itm-pipe-32", Name: "PVC Pipe 32mm", UnitPriceCents: 7200, Status: domain.ItemActive, CreatedAt: now},
		{ID: "itm-valve-01", Name: "Ball Valve 1in", UnitPriceCents: 15500, Status: domain.ItemActive, CreatedAt: now},
		{ID: "itm-tape-01", Name: "Thread Seal Tape", UnitPriceCents: 900, Status: domain.ItemActive, CreatedAt: now},
	}

	for _, w := range warehouses {
		s.warehouses[w.ID] = w
		s.inventory[w.ID] = make(map[string]int)
	}
	for _, item := range items {
		s.items[item.ID] = item
		for _, w := range warehouses {
			s.inventory[w.ID][item.ID] = 100
		}
	}
	s.usersByUsername = seedUsers("wh-central")
	return s
}

func (s *Store) CreateWarehouse(_ context.Context, warehouse domain.Warehouse) (*domain.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if warehouse.ID == "" || warehouse.Name == "" {
		return nil, store.ErrValidation
	}
	if _, exists := s.warehouses[warehouse.ID]; exists {
		return nil, store.ErrConflict
	}
	if warehouse.Status == "" {
		warehouse.Status = domain.WarehouseActive
	}
	if warehouse.CreatedAt.IsZero() {
		warehouse.CreatedAt = time.Now().UTC()
	}

	s.warehouses[warehouse.ID] = warehouse
	created := warehouse
	return &created, nil
}

func (s *Store) GetWarehouse(_ context.Context, id string) (*domain.Warehouse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	warehouse, exists := s.warehouses[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copied := warehouse
	return &copied, nil
}

func (s *Store) ListWarehouses(_ context.Context) ([]domain.Warehouse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Warehouse, 0, len(s.warehouses))
	for _, w := range s.warehouses {
		result = append(result, w)
	}
	slices.SortFunc(result, func(a, b domain.Warehouse) int {
		return strings.Compare(a.Name, b.Name)
	})
	return result, nil
}

func (s *Store) SetWarehouseStatus(_ context.Context, id string, status string) (*domain.Warehouse, error) {
	if status != domain.WarehouseActive && status != domain.WarehouseInactive {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	warehouse, exists := s.warehouses[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	warehouse.Status = status
	s.warehouses[id] = warehouse
	updated := warehouse
	return &updated, nil
}

func (s *Store) CreateItem(_ context.Context, item domain.Item) (*domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == "" || item.Name == "" || item.UnitPriceCents < 1 {
		return nil, store.ErrValidation
	}
	if _, exists := s.items[item.ID]; exists {
		return nil, store.ErrConflict
	}
	if item.Status == "" {
		item.Status = domain.ItemActive
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	s.items[item.ID] = item
	created := item
	return &created, nil
}

func (s *Store) GetItem(_ context.Context, id string) (*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copied := item
	return &copied, nil
}

func (s *Store) ListItems(_ context.Context) ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Item, 0, len(s.items))
	for _, item := range s.items {
		result = append(result, item)
	}
	slices.SortFunc(result, func(a, b domain.Item) int {
		return strings.Compare(a.Name, b.Name)
	})
	return result, nil
}

func (s *Store) UpdateItem(_ context.Context, item domain.Item) (*domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == "" || item.Name == "" || item.UnitPriceCents < 1 {
		return nil, store.ErrValidation
	}
	if _, exists := s.items[item.ID]; !exists {
		return nil, store.ErrNotFound
	}

	s.items[item.ID] = item
	updated := item
	return &updated, nil
}

func (s *Store) GetItemsByIDs(_ context.Context, ids []string) (map[string]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.Item, len(ids))
	for _, id := range ids {
		if item, exists := s.items[id]; exists {
			result[id] = item
		}
	}
	return result, nil
}

func (s *Store) GetInventory(_ context.Context, warehouseID string, itemID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.inventory[warehouseID][itemID], nil
}

func (s *Store) ListInventory(_ context.Context, warehouseID string) ([]domain.InventoryRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]domain.InventoryRow, 0, len(s.inventory[warehouseID]))
	for itemID, qty := range s.inventory[warehouseID] {
		rows = append(rows, domain.InventoryRow{WarehouseID: warehouseID, ItemID: itemID, Quantity: qty})
	}
	slices.SortFunc(rows, func(a, b domain.InventoryRow) int {
		return strings.Compare(a.ItemID, b.ItemID)
	})
	return rows, nil
}

// applyAdjustment computes the new quantity for a single set/add/subtract.
// Subtract clamps at zero instead of failing; only transfers treat
// underflow as an error.
func applyAdjustment(current int, adj domain.InventoryAdjustRequest) (int, error) {
	if adj.WarehouseID == "" || adj.ItemID == "" || adj.Quantity < 0 {
		return 0, store.ErrValidation
	}
	switch adj.Mode {
	case domain.AdjustSet:
		return adj.Quantity, nil
	case domain.AdjustAdd:
		return current + adj.Quantity, nil
	case domain.AdjustSubtract:
		next := current - adj.Quantity
		if next < 0 {
			next = 0
		}
		return next, nil
	}
	return 0, store.ErrValidation
}

func (s *Store) AdjustInventory(_ context.Context, adj domain.InventoryAdjustRequest) (*domain.InventoryRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := applyAdjustment(s.inventory[adj.WarehouseID][adj.ItemID], adj)
	if err != nil {
		return nil, err
	}
	s.setQuantityLocked(adj.WarehouseID, adj.ItemID, next)

	return &domain.InventoryRow{
		WarehouseID: adj.WarehouseID,
		ItemID:      adj.ItemID,
		Quantity:    next,
		UpdatedAt:   time.Now().UTC(),
	}, nil
}

func (s *Store) TransferInventory(_ context.Context, req domain.InventoryTransferRequest) error {
	if req.FromWarehouseID == "" || req.ToWarehouseID == "" || req.ItemID == "" || req.Quantity < 1 {
		return store.ErrValidation
	}
	if req.FromWarehouseID == req.ToWarehouseID {
		return store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	available := s.inventory[req.FromWarehouseID][req.ItemID]
	if available < req.Quantity {
		return store.ErrInsufficientStock
	}

	s.setQuantityLocked(req.FromWarehouseID, req.ItemID, available-req.Quantity)
	s.setQuantityLocked(req.ToWarehouseID, req.ItemID, s.inventory[req.ToWarehouseID][req.ItemID]+req.Quantity)
	return nil
}

func (s *Store) BulkAdjustInventory(_ context.Context, updates []domain.InventoryAdjustRequest) error {
	if len(updates) == 0 {
		return store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate every entry before the first write so a bad entry rolls the
	// whole batch back.
	staged := make([]int, len(updates))
	scratch := make(map[string]int, len(updates))
	for i, adj := range updates {
		key := adj.WarehouseID + "\x00" + adj.ItemID
		current, seen := scratch[key]
		if !seen {
			current = s.inventory[adj.WarehouseID][adj.ItemID]
		}
		next, err := applyAdjustment(current, adj)
		if err != nil {
			return err
		}
		staged[i] = next
		scratch[key] = next
	}

	for i, adj := range updates {
		s.setQuantityLocked(adj.WarehouseID, adj.ItemID, staged[i])
	}
	return nil
}

func (s *Store) setQuantityLocked(warehouseID string, itemID string, qty int) {
	byItem, exists := s.inventory[warehouseID]
	if !exists {
		byItem = make(map[string]int)
		s.inventory[warehouseID] = byItem
	}
	byItem[itemID] = qty
}

func (s *Store) CreateOrder(_ context.Context, order domain.Order) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID == "" || order.OrderNumber == "" || order.WarehouseID == "" || len(order.Lines) == 0 {
		return nil, store.ErrValidation
	}
	if _, exists := s.orderNumbers[order.OrderNumber]; exists {
		return nil, store.ErrConflict
	}
	if order.TransportStatus == "" {
		order.TransportStatus = domain.TransportPending
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = domain.PaymentStatusPending
	}
	if order.OrderDate.IsZero() {
		order.OrderDate = time.Now().UTC()
	}

	stored := order
	stored.Lines = slices.Clone(order.Lines)
	s.ordersByID[order.ID] = &stored
	s.orderNumbers[order.OrderNumber] = order.ID

	created := stored
	created.Lines = slices.Clone(stored.Lines)
	return &created, nil
}

func (s *Store) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, exists := s.ordersByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copied := *order
	copied.Lines = slices.Clone(order.Lines)
	return &copied, nil
}

func (s *Store) ListOrders(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Order, 0, len(s.ordersByID))
	for _, order := range s.ordersByID {
		if filter.WarehouseID != "" && order.WarehouseID != filter.WarehouseID {
			continue
		}
		if filter.DealerID != "" && order.DealerID != filter.DealerID {
			continue
		}
		if filter.SalesmanID != "" && order.SalesmanID != filter.SalesmanID {
			continue
		}
		copied := *order
		copied.Lines = slices.Clone(order.Lines)
		result = append(result, copied)
	}
	slices.SortFunc(result, func(a, b domain.Order) int {
		if a.OrderDate.Equal(b.OrderDate) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.OrderDate.After(b.OrderDate) {
			return -1
		}
		return 1
	})
	return result, nil
}

func (s *Store) ReplaceOrderLines(_ context.Context, orderID string, lines []domain.OrderLine, totalCents int64) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.ordersByID[orderID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if order.TransportStatus != domain.TransportPending {
		return nil, store.ErrInvalidState
	}

	order.Lines = slices.Clone(lines)
	order.TotalCents = totalCents

	copied := *order
	copied.Lines = slices.Clone(order.Lines)
	return &copied, nil
}

func (s *Store) UpdateTransportStatus(_ context.Context, orderID string, status string, at time.Time) (*domain.Order, error) {
	if !domain.KnownTransportStatus(status) {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.ordersByID[orderID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if !domain.TransportTransitionAllowed(order.TransportStatus, status) {
		return nil, store.ErrInvalidState
	}

	order.TransportStatus = status
	switch status {
	case domain.TransportDispatched:
		stamp := at
		order.DispatchDate = &stamp
	case domain.TransportDelivered:
		stamp := at
		order.DeliveryDate = &stamp
	}

	copied := *order
	copied.Lines = slices.Clone(order.Lines)
	return &copied, nil
}

func (s *Store) SetPaymentStatus(_ context.Context, orderID string, status string) (*domain.Order, error) {
	if !domain.KnownPaymentStatus(status) {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.ordersByID[orderID]
	if !exists {
		return nil, store.ErrNotFound
	}
	order.PaymentStatus = status

	copied := *order
	copied.Lines = slices.Clone(order.Lines)
	return &copied, nil
}

func (s *Store) DeleteOrder(_ context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.ordersByID[orderID]
	if !exists {
		return store.ErrNotFound
	}
	if order.TransportStatus != domain.TransportPending {
		return store.ErrInvalidState
	}

	delete(s.orderNumbers, order.OrderNumber)
	delete(s.ordersByID, orderID)
	for id, payment := range s.paymentsByID {
		if payment.OrderID == orderID {
			delete(s.paymentsByID, id)
		}
	}
	return nil
}

func (s *Store) CreatePayment(_ context.Context, payment domain.Payment) (*domain.Payment, error) {
	if payment.AmountCents < 1 || payment.Method == "" {
		return nil, store.ErrValidation
	}
	switch payment.Status {
	case domain.PaymentPending, domain.PaymentPaid, domain.PaymentFailed:
	default:
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.ordersByID[payment.OrderID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if payment.ID == "" {
		payment.ID = xid.New("pay")
	}
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now().UTC()
	}

	s.paymentsByID[payment.ID] = payment
	s.reconcileLocked(order)

	created := payment
	return &created, nil
}

func (s *Store) GetPayment(_ context.Context, id string) (*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payment, exists := s.paymentsByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copied := payment
	return &copied, nil
}

func (s *Store) ListPayments(_ context.Context, orderID string) ([]domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.paymentsForOrderLocked(orderID), nil
}

func (s *Store) UpdatePayment(_ context.Context, payment domain.Payment) (*domain.Payment, error) {
	if payment.AmountCents < 1 {
		return nil, store.ErrValidation
	}
	switch payment.Status {
	case domain.PaymentPending, domain.PaymentPaid, domain.PaymentFailed:
	default:
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.paymentsByID[payment.ID]
	if !exists {
		return nil, store.ErrNotFound
	}
	payment.OrderID = existing.OrderID
	s.paymentsByID[payment.ID] = payment

	if order, ok := s.ordersByID[payment.OrderID]; ok {
		s.reconcileLocked(order)
	}
	updated := payment
	return &updated, nil
}

func (s *Store) DeletePayment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payment, exists := s.paymentsByID[id]
	if !exists {
		return store.ErrNotFound
	}
	delete(s.paymentsByID, id)

	if order, ok := s.ordersByID[payment.OrderID]; ok {
		s.reconcileLocked(order)
	}
	return nil
}

// reconcileLocked re-derives the order's payment status from the full
// payment set; it runs inside the same critical section as the payment
// mutation that triggered it.
func (s *Store) reconcileLocked(order *domain.Order) {
	order.PaymentStatus = domain.DerivePaymentStatus(order.TotalCents, s.paymentsForOrderLocked(order.ID))
}

func (s *Store) paymentsForOrderLocked(orderID string) []domain.Payment {
	payments := make([]domain.Payment, 0, 4)
	for _, payment := range s.paymentsByID {
		if payment.OrderID == orderID {
			payments = append(payments, payment)
		}
	}
	slices.SortFunc(payments, func(a, b domain.Payment) int {
		if a.PaymentDate.Equal(b.PaymentDate) {
			return strings.Compare(a.ID, b.ID)
		}
		if a.PaymentDate.Before(b.PaymentDate) {
			return -1
		}
		return 1
	})
	return payments
}

func (s *Store) CreateReturnOrder(_ context.Context, ret domain.ReturnOrder) (*domain.ReturnOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ret.ID == "" || ret.ReturnNumber == "" || ret.WarehouseID == "" || ret.ItemID == "" || ret.Quantity < 1 {
		return nil, store.ErrValidation
	}
	if ret.DealerID == "" && ret.SalesmanID == "" {
		return nil, store.ErrValidation
	}
	if _, exists := s.returnNumbers[ret.ReturnNumber]; exists {
		return nil, store.ErrConflict
	}
	if ret.Status == "" {
		ret.Status = domain.ReturnPending
	}
	if ret.CreatedAt.IsZero() {
		ret.CreatedAt = time.Now().UTC()
	}

	s.returnsByID[ret.ID] = ret
	s.returnNumbers[ret.ReturnNumber] = ret.ID
	created := ret
	return &created, nil
}

func (s *Store) GetReturnOrder(_ context.Context, id string) (*domain.ReturnOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ret, exists := s.returnsByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copied := ret
	return &copied, nil
}

func (s *Store) ListReturnOrders(_ context.Context, filter domain.ReturnFilter) ([]domain.ReturnOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.ReturnOrder, 0, len(s.returnsByID))
	for _, ret := range s.returnsByID {
		if filter.WarehouseID != "" && ret.WarehouseID != filter.WarehouseID {
			continue
		}
		if filter.DealerID != "" && ret.DealerID != filter.DealerID {
			continue
		}
		if filter.SalesmanID != "" && ret.SalesmanID != filter.SalesmanID {
			continue
		}
		result = append(result, ret)
	}
	slices.SortFunc(result, func(a, b domain.ReturnOrder) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	return result, nil
}

// SetReturnStatus drives the return state machine. Approval restocks the
// warehouse inside the same critical section; moving an approved return to
// rejected reverses the restock, clamped at zero like any direct subtract.
func (s *Store) SetReturnStatus(_ context.Context, returnID string, status string) (*domain.ReturnOrder, error) {
	if status != domain.ReturnApproved && status != domain.ReturnRejected {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ret, exists := s.returnsByID[returnID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if ret.Status == status {
		return nil, store.ErrInvalidState
	}

	switch status {
	case domain.ReturnApproved:
		s.setQuantityLocked(ret.WarehouseID, ret.ItemID, s.inventory[ret.WarehouseID][ret.ItemID]+ret.Quantity)
	case domain.ReturnRejected:
		if ret.Status == domain.ReturnApproved {
			next := s.inventory[ret.WarehouseID][ret.ItemID] - ret.Quantity
			if next < 0 {
				next = 0
			}
			s.setQuantityLocked(ret.WarehouseID, ret.ItemID, next)
		}
	}

	ret.Status = status
	s.returnsByID[returnID] = ret
	updated := ret
	return &updated, nil
}

func (s *Store) CreateRegistrationCode(_ context.Context, code domain.RegistrationCode) (*domain.RegistrationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if code.Code == "" || code.Role == "" || code.ExpiresAt.IsZero() {
		return nil, store.ErrValidation
	}
	if _, exists := s.codesByValue[code.Code]; exists {
		return nil, store.ErrConflict
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now().UTC()
	}

	s.codesByValue[code.Code] = code
	created := code
	return &created, nil
}

func (s *Store) ConsumeRegistrationCode(_ context.Context, code string, at time.Time) (*domain.RegistrationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.codesByValue[code]
	if !exists {
		return nil, store.ErrNotFound
	}
	if entry.UsedAt != nil {
		return nil, store.ErrConflict
	}
	if at.After(entry.ExpiresAt) {
		return nil, store.ErrValidation
	}

	used := at
	entry.UsedAt = &used
	s.codesByValue[code] = entry
	consumed := entry
	return &consumed, nil
}

// ReleaseRegistrationCode clears the used-at mark so a code consumed in a
// registration attempt that later failed can be redeemed again.
func (s *Store) ReleaseRegistrationCode(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.codesByValue[code]
	if !exists {
		return store.ErrNotFound
	}
	entry.UsedAt = nil
	s.codesByValue[code] = entry
	return nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) (*domain.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.Username == "" || user.PasswordHash == "" || user.Role == "" {
		return nil, store.ErrValidation
	}
	if _, exists := s.usersByUsername[user.Username]; exists {
		return nil, store.ErrConflict
	}
	if user.ID == "" {
		user.ID = xid.New("usr")
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	s.usersByUsername[user.Username] = user
	created := user
	return &created, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.usersByUsername[username]
	if !exists {
		return nil, store.ErrNotFound
	}
	copied := user
	return &copied, nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		result = append(result, user)
	}
	slices.SortFunc(result, func(a, b domain.UserAccount) int {
		return strings.Compare(a.Username, b.Username)
	})
	return result, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.PasswordHash = passwordHash
	s.usersByUsername[username] = user
	return nil
}
