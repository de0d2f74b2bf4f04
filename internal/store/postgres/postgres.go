package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Skywalker147/sorath-sub001/internal/domain"
	"github.com/Skywalker147/sorath-sub001/internal/store"
	"github.com/Skywalker147/sorath-sub001/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateWarehouse(ctx context.Context, warehouse domain.Warehouse) (*domain.Warehouse, error) {
	if warehouse.ID == "" || warehouse.Name == "" {
		return nil, store.ErrValidation
	}
	if warehouse.Status == "" {
		warehouse.Status = domain.WarehouseActive
	}
	if warehouse.CreatedAt.IsZero() {
		warehouse.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO warehouses (id, name, address, phone, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,now())
	`, warehouse.ID, warehouse.Name, warehouse.Address, warehouse.Phone, warehouse.Status, warehouse.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}

	created := warehouse
	return &created, nil
}

func (s *Store) GetWarehouse(ctx context.Context, id string) (*domain.Warehouse, error) {
	var warehouse domain.Warehouse
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, address, phone, status, created_at
		FROM warehouses
		WHERE id = $1
	`, id).Scan(&warehouse.ID, &warehouse.Name, &warehouse.Address, &warehouse.Phone, &warehouse.Status, &warehouse.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	warehouse.CreatedAt = warehouse.CreatedAt.UTC()
	return &warehouse, nil
}

func (s *Store) ListWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, address, phone, status, created_at
		FROM warehouses
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	warehouses := make([]domain.Warehouse, 0, 16)
	for rows.Next() {
		var w domain.Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.Address, &w.Phone, &w.Status, &w.CreatedAt); err != nil {
			return nil, err
		}
		w.CreatedAt = w.CreatedAt.UTC()
		warehouses = append(warehouses, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return warehouses, nil
}

func (s *Store) SetWarehouseStatus(ctx context.Context, id string, status string) (*domain.Warehouse, error) {
	if status != domain.WarehouseActive && status != domain.WarehouseInactive {
		return nil, store.ErrValidation
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE warehouses
		SET status = $2, updated_at = now()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetWarehouse(ctx, id)
}

func (s *Store) CreateItem(ctx context.Context, item domain.Item) (*domain.Item, error) {
	if item.ID == "" || item.Name == "" || item.UnitPriceCents < 1 {
		return nil, store.ErrValidation
	}
	if item.Status == "" {
		item.Status = domain.ItemActive
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, name, unit_price_cents, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,now())
	`, item.ID, item.Name, item.UnitPriceCents, item.Status, item.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}

	created := item
	return &created, nil
}

func (s *Store) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	var item domain.Item
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, unit_price_cents, status, created_at
		FROM items
		WHERE id = $1
	`, id).Scan(&item.ID, &item.Name, &item.UnitPriceCents, &item.Status, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	item.CreatedAt = item.CreatedAt.UTC()
	return &item, nil
}

func (s *Store) ListItems(ctx context.Context) ([]domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, unit_price_cents, status, created_at
		FROM items
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Item, 0, 64)
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.UnitPriceCents, &item.Status, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.CreatedAt = item.CreatedAt.UTC()
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdateItem(ctx context.Context, item domain.Item) (*domain.Item, error) {
	if item.ID == "" || item.Name == "" || item.UnitPriceCents < 1 {
		return nil, store.ErrValidation
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE items
		SET name = $2, unit_price_cents = $3, status = $4, updated_at = now()
		WHERE id = $1
	`, item.ID, item.Name, item.UnitPriceCents, item.Status)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := item
	return &updated, nil
}

func (s *Store) GetItemsByIDs(ctx context.Context, ids []string) (map[string]domain.Item, error) {
	result := make(map[string]domain.Item, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, unit_price_cents, status, created_at
		FROM items
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.UnitPriceCents, &item.Status, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.CreatedAt = item.CreatedAt.UTC()
		result[item.ID] = item
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) GetInventory(ctx context.Context, warehouseID string, itemID string) (int, error) {
	var qty int
	err := s.db.QueryRowContext(ctx, `
		SELECT qty
		FROM inventory_stocks
		WHERE warehouse_id = $1 AND item_id = $2
	`, warehouseID, itemID).Scan(&qty)
	if err != nil {
		// Absent row reads as quantity zero.
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return qty, nil
}

func (s *Store) ListInventory(ctx context.Context, warehouseID string) ([]domain.InventoryRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT warehouse_id, item_id, qty, updated_at
		FROM inventory_stocks
		WHERE warehouse_id = $1
		ORDER BY item_id ASC
	`, warehouseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.InventoryRow, 0, 64)
	for rows.Next() {
		var row domain.InventoryRow
		if err := rows.Scan(&row.WarehouseID, &row.ItemID, &row.Quantity, &row.UpdatedAt); err != nil {
			return nil, err
		}
		row.UpdatedAt = row.UpdatedAt.UTC()
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// AdjustInventory applies a single set/add/subtract under a row lock.
// Subtract clamps at zero rather than failing; only TransferInventory
// treats underflow as an error.
func (s *Store) AdjustInventory(ctx context.Context, adj domain.InventoryAdjustRequest) (*domain.InventoryRow, error) {
	if adj.WarehouseID == "" || adj.ItemID == "" || adj.Quantity < 0 {
		return nil, store.ErrValidation
	}
	switch adj.Mode {
	case domain.AdjustSet, domain.AdjustAdd, domain.AdjustSubtract:
	default:
		return nil, store.ErrValidation
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	current, err := lockedQuantity(ctx, tx, adj.WarehouseID, adj.ItemID)
	if err != nil {
		return nil, err
	}

	next := adj.Quantity
	switch adj.Mode {
	case domain.AdjustAdd:
		next = current + adj.Quantity
	case domain.AdjustSubtract:
		next = current - adj.Quantity
		if next < 0 {
			next = 0
		}
	}

	if err := upsertQuantity(ctx, tx, adj.WarehouseID, adj.ItemID, next); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &domain.InventoryRow{
		WarehouseID: adj.WarehouseID,
		ItemID:      adj.ItemID,
		Quantity:    next,
		UpdatedAt:   time.Now().UTC(),
	}, nil
}

// TransferInventory moves qty between warehouses as one atomic unit. The
// source row is locked for the whole read-modify-write so two concurrent
// transfers draining the same source cannot both succeed past zero.
func (s *Store) TransferInventory(ctx context.Context, req domain.InventoryTransferRequest) error {
	if req.FromWarehouseID == "" || req.ToWarehouseID == "" || req.ItemID == "" || req.Quantity < 1 {
		return store.ErrValidation
	}
	if req.FromWarehouseID == req.ToWarehouseID {
		return store.ErrValidation
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	available, err := lockedQuantity(ctx, tx, req.FromWarehouseID, req.ItemID)
	if err != nil {
		return err
	}
	if available < req.Quantity {
		return store.ErrInsufficientStock
	}

	if err := upsertQuantity(ctx, tx, req.FromWarehouseID, req.ItemID, available-req.Quantity); err != nil {
		return err
	}
	destination, err := lockedQuantity(ctx, tx, req.ToWarehouseID, req.ItemID)
	if err != nil {
		return err
	}
	if err := upsertQuantity(ctx, tx, req.ToWarehouseID, req.ItemID, destination+req.Quantity); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) BulkAdjustInventory(ctx context.Context, updates []domain.InventoryAdjustRequest) error {
	if len(updates) == 0 {
		return store.ErrValidation
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, adj := range updates {
		if adj.WarehouseID == "" || adj.ItemID == "" || adj.Quantity < 0 {
			return store.ErrValidation
		}

		current, err := lockedQuantity(ctx, tx, adj.WarehouseID, adj.ItemID)
		if err != nil {
			return err
		}

		var next int
		switch adj.Mode {
		case domain.AdjustSet:
			next = adj.Quantity
		case domain.AdjustAdd:
			next = current + adj.Quantity
		case domain.AdjustSubtract:
			next = current - adj.Quantity
			if next < 0 {
				next = 0
			}
		default:
			return store.ErrValidation
		}

		if err := upsertQuantity(ctx, tx, adj.WarehouseID, adj.ItemID, next); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func lockedQuantity(ctx context.Context, tx *sql.Tx, warehouseID string, itemID string) (int, error) {
	var qty int
	err := tx.QueryRowContext(ctx, `
		SELECT qty
		FROM inventory_stocks
		WHERE warehouse_id = $1 AND item_id = $2
		FOR UPDATE
	`, warehouseID, itemID).Scan(&qty)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return qty, nil
}

func upsertQuantity(ctx context.Context, tx *sql.Tx, warehouseID string, itemID string, qty int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO inventory_stocks (warehouse_id, item_id, qty, updated_at)
		VALUES ($1,$2,$3,now())
		ON CONFLICT (warehouse_id, item_id)
		DO UPDATE SET qty = EXCLUDED.qty, updated_at = now()
	`, warehouseID, itemID, qty)
	return err
}

func (s *Store) CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	if order.ID == "" || order.OrderNumber == "" || order.WarehouseID == "" || len(order.Lines) == 0 {
		return nil, store.ErrValidation
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

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, order_number, warehouse_id, dealer_id, salesman_id, total_cents,
			transport_status, payment_status, order_date, dispatch_date, delivery_date
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NULL,NULL)
	`, order.ID, order.OrderNumber, order.WarehouseID, nullIfEmpty(order.DealerID),
		nullIfEmpty(order.SalesmanID), order.TotalCents, order.TransportStatus,
		order.PaymentStatus, order.OrderDate)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}

	for _, line := range order.Lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, item_id, qty, unit_price_cents, line_total_cents)
			VALUES ($1,$2,$3,$4,$5)
		`, order.ID, line.ItemID, line.Quantity, line.UnitPriceCents, line.LineTotalCents)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	created := order
	return &created, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	var dealerID, salesmanID sql.NullString
	var dispatchDate, deliveryDate sql.NullTime

	err := s.db.QueryRowContext(ctx, `
		SELECT id, order_number, warehouse_id, dealer_id, salesman_id, total_cents,
			transport_status, payment_status, order_date, dispatch_date, delivery_date
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.OrderNumber, &order.WarehouseID, &dealerID, &salesmanID,
		&order.TotalCents, &order.TransportStatus, &order.PaymentStatus, &order.OrderDate,
		&dispatchDate, &deliveryDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if dealerID.Valid {
		order.DealerID = dealerID.String
	}
	if salesmanID.Valid {
		order.SalesmanID = salesmanID.String
	}
	if dispatchDate.Valid {
		at := dispatchDate.Time.UTC()
		order.DispatchDate = &at
	}
	if deliveryDate.Valid {
		at := deliveryDate.Time.UTC()
		order.DeliveryDate = &at
	}
	order.OrderDate = order.OrderDate.UTC()

	lines, err := s.orderLines(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Lines = lines
	return &order, nil
}

func (s *Store) orderLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, qty, unit_price_cents, line_total_cents
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]domain.OrderLine, 0, 8)
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ItemID, &line.Quantity, &line.UnitPriceCents, &line.LineTotalCents); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *Store) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_number, warehouse_id, dealer_id, salesman_id, total_cents,
			transport_status, payment_status, order_date, dispatch_date, delivery_date
		FROM orders
		WHERE ($1 = '' OR warehouse_id = $1)
			AND ($2 = '' OR dealer_id = $2)
			AND ($3 = '' OR salesman_id = $3)
		ORDER BY order_date DESC, id DESC
	`, filter.WarehouseID, filter.DealerID, filter.SalesmanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, 64)
	for rows.Next() {
		var order domain.Order
		var dealerID, salesmanID sql.NullString
		var dispatchDate, deliveryDate sql.NullTime
		if err := rows.Scan(&order.ID, &order.OrderNumber, &order.WarehouseID, &dealerID,
			&salesmanID, &order.TotalCents, &order.TransportStatus, &order.PaymentStatus,
			&order.OrderDate, &dispatchDate, &deliveryDate); err != nil {
			return nil, err
		}
		if dealerID.Valid {
			order.DealerID = dealerID.String
		}
		if salesmanID.Valid {
			order.SalesmanID = salesmanID.String
		}
		if dispatchDate.Valid {
			at := dispatchDate.Time.UTC()
			order.DispatchDate = &at
		}
		if deliveryDate.Valid {
			at := deliveryDate.Time.UTC()
			order.DeliveryDate = &at
		}
		order.OrderDate = order.OrderDate.UTC()
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		lines, err := s.orderLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}
	return orders, nil
}

func (s *Store) ReplaceOrderLines(ctx context.Context, orderID string, lines []domain.OrderLine, totalCents int64) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, store.ErrValidation
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var status string
	err = tx.QueryRowContext(ctx, `
		SELECT transport_status
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, orderID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if status != domain.TransportPending {
		return nil, store.ErrInvalidState
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_lines WHERE order_id = $1`, orderID); err != nil {
		return nil, err
	}
	for _, line := range lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, item_id, qty, unit_price_cents, line_total_cents)
			VALUES ($1,$2,$3,$4,$5)
		`, orderID, line.ItemID, line.Quantity, line.UnitPriceCents, line.LineTotalCents)
		if err != nil {
			return nil, err
		}
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE orders SET total_cents = $2 WHERE id = $1
	`, orderID, totalCents); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

func (s *Store) UpdateTransportStatus(ctx context.Context, orderID string, status string, at time.Time) (*domain.Order, error) {
	if !domain.KnownTransportStatus(status) {
		return nil, store.ErrValidation
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	err = tx.QueryRowContext(ctx, `
		SELECT transport_status
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, orderID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if !domain.TransportTransitionAllowed(current, status) {
		return nil, store.ErrInvalidState
	}

	switch status {
	case domain.TransportDispatched:
		_, err = tx.ExecContext(ctx, `
			UPDATE orders SET transport_status = $2, dispatch_date = $3 WHERE id = $1
		`, orderID, status, at)
	case domain.TransportDelivered:
		_, err = tx.ExecContext(ctx, `
			UPDATE orders SET transport_status = $2, delivery_date = $3 WHERE id = $1
		`, orderID, status, at)
	default:
		_, err = tx.ExecContext(ctx, `
			UPDATE orders SET transport_status = $2 WHERE id = $1
		`, orderID, status)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

func (s *Store) SetPaymentStatus(ctx context.Context, orderID string, status string) (*domain.Order, error) {
	if !domain.KnownPaymentStatus(status) {
		return nil, store.ErrValidation
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET payment_status = $2 WHERE id = $1
	`, orderID, status)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetOrder(ctx, orderID)
}

func (s *Store) DeleteOrder(ctx context.Context, orderID string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var status string
	err = tx.QueryRowContext(ctx, `
		SELECT transport_status
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, orderID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}
	if status != domain.TransportPending {
		return store.ErrInvalidState
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE order_id = $1`, orderID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_lines WHERE order_id = $1`, orderID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) CreatePayment(ctx context.Context, payment domain.Payment) (*domain.Payment, error) {
	if payment.OrderID == "" || payment.AmountCents < 1 || payment.Method == "" {
		return nil, store.ErrValidation
	}
	switch payment.Status {
	case domain.PaymentPending, domain.PaymentPaid, domain.PaymentFailed:
	default:
		return nil, store.ErrValidation
	}
	if payment.ID == "" {
		payment.ID = xid.New("pay")
	}
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := lockOrderRow(ctx, tx, payment.OrderID); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments (
			id, order_id, amount_cents, method, status, transaction_ref,
			payment_date, due_date, notes
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, payment.ID, payment.OrderID, payment.AmountCents, payment.Method, payment.Status,
		nullIfEmpty(payment.TransactionRef), payment.PaymentDate, nullTime(payment.DueDate), payment.Notes)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}

	if err := reconcileOrder(ctx, tx, payment.OrderID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	created := payment
	return &created, nil
}

func (s *Store) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	var payment domain.Payment
	var transactionRef sql.NullString
	var dueDate sql.NullTime

	err := s.db.QueryRowContext(ctx, `
		SELECT id, order_id, amount_cents, method, status, transaction_ref,
			payment_date, due_date, notes
		FROM payments
		WHERE id = $1
	`, id).Scan(&payment.ID, &payment.OrderID, &payment.AmountCents, &payment.Method,
		&payment.Status, &transactionRef, &payment.PaymentDate, &dueDate, &payment.Notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if transactionRef.Valid {
		payment.TransactionRef = transactionRef.String
	}
	if dueDate.Valid {
		at := dueDate.Time.UTC()
		payment.DueDate = &at
	}
	payment.PaymentDate = payment.PaymentDate.UTC()
	return &payment, nil
}

func (s *Store) ListPayments(ctx context.Context, orderID string) ([]domain.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, amount_cents, method, status, transaction_ref,
			payment_date, due_date, notes
		FROM payments
		WHERE order_id = $1
		ORDER BY payment_date ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0, 8)
	for rows.Next() {
		var payment domain.Payment
		var transactionRef sql.NullString
		var dueDate sql.NullTime
		if err := rows.Scan(&payment.ID, &payment.OrderID, &payment.AmountCents, &payment.Method,
			&payment.Status, &transactionRef, &payment.PaymentDate, &dueDate, &payment.Notes); err != nil {
			return nil, err
		}
		if transactionRef.Valid {
			payment.TransactionRef = transactionRef.String
		}
		if dueDate.Valid {
			at := dueDate.Time.UTC()
			payment.DueDate = &at
		}
		payment.PaymentDate = payment.PaymentDate.UTC()
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *Store) UpdatePayment(ctx context.Context, payment domain.Payment) (*domain.Payment, error) {
	if payment.ID == "" || payment.AmountCents < 1 {
		return nil, store.ErrValidation
	}
	switch payment.Status {
	case domain.PaymentPending, domain.PaymentPaid, domain.PaymentFailed:
	default:
		return nil, store.ErrValidation
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var orderID string
	err = tx.QueryRowContext(ctx, `
		SELECT order_id FROM payments WHERE id = $1 FOR UPDATE
	`, payment.ID).Scan(&orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if err := lockOrderRow(ctx, tx, orderID); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE payments
		SET amount_cents = $2, status = $3, notes = $4
		WHERE id = $1
	`, payment.ID, payment.AmountCents, payment.Status, payment.Notes)
	if err != nil {
		return nil, err
	}

	if err := reconcileOrder(ctx, tx, orderID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	payment.OrderID = orderID
	updated := payment
	return &updated, nil
}

func (s *Store) DeletePayment(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var orderID string
	err = tx.QueryRowContext(ctx, `
		SELECT order_id FROM payments WHERE id = $1 FOR UPDATE
	`, id).Scan(&orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}
	if err := lockOrderRow(ctx, tx, orderID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id); err != nil {
		return err
	}
	if err := reconcileOrder(ctx, tx, orderID); err != nil {
		return err
	}
	return tx.Commit()
}

func lockOrderRow(ctx context.Context, tx *sql.Tx, orderID string) error {
	var id string
	err := tx.QueryRowContext(ctx, `
		SELECT id FROM orders WHERE id = $1 FOR UPDATE
	`, orderID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

// reconcileOrder re-derives payment_status from the full payment set inside
// the caller's transaction, so the derived field can never drift from the
// payments it summarizes.
func reconcileOrder(ctx context.Context, tx *sql.Tx, orderID string) error {
	var totalCents, paidSum int64
	err := tx.QueryRowContext(ctx, `
		SELECT o.total_cents, COALESCE(SUM(p.amount_cents) FILTER (WHERE p.status = $2), 0)
		FROM orders o
		LEFT JOIN payments p ON p.order_id = o.id
		WHERE o.id = $1
		GROUP BY o.total_cents
	`, orderID, domain.PaymentPaid).Scan(&totalCents, &paidSum)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}

	status := domain.PaymentStatusPartial
	switch {
	case paidSum == 0:
		status = domain.PaymentStatusPending
	case paidSum >= totalCents:
		status = domain.PaymentStatusPaid
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET payment_status = $2 WHERE id = $1
	`, orderID, status)
	return err
}

func (s *Store) CreateReturnOrder(ctx context.Context, ret domain.ReturnOrder) (*domain.ReturnOrder, error) {
	if ret.ID == "" || ret.ReturnNumber == "" || ret.WarehouseID == "" || ret.ItemID == "" || ret.Quantity < 1 {
		return nil, store.ErrValidation
	}
	if ret.DealerID == "" && ret.SalesmanID == "" {
		return nil, store.ErrValidation
	}
	if ret.Status == "" {
		ret.Status = domain.ReturnPending
	}
	if ret.CreatedAt.IsZero() {
		ret.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO return_orders (
			id, return_number, original_order_id, warehouse_id, dealer_id, salesman_id,
			item_id, qty, reason, status, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, ret.ID, ret.ReturnNumber, nullIfEmpty(ret.OriginalOrderID), ret.WarehouseID,
		nullIfEmpty(ret.DealerID), nullIfEmpty(ret.SalesmanID), ret.ItemID, ret.Quantity,
		ret.Reason, ret.Status, ret.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}

	created := ret
	return &created, nil
}

func (s *Store) GetReturnOrder(ctx context.Context, id string) (*domain.ReturnOrder, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, return_number, original_order_id, warehouse_id, dealer_id, salesman_id,
			item_id, qty, reason, status, created_at
		FROM return_orders
		WHERE id = $1
	`, id)
	ret, err := scanReturnOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return ret, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReturnOrder(row rowScanner) (*domain.ReturnOrder, error) {
	var ret domain.ReturnOrder
	var originalOrderID, dealerID, salesmanID sql.NullString
	err := row.Scan(&ret.ID, &ret.ReturnNumber, &originalOrderID, &ret.WarehouseID,
		&dealerID, &salesmanID, &ret.ItemID, &ret.Quantity, &ret.Reason, &ret.Status, &ret.CreatedAt)
	if err != nil {
		return nil, err
	}
	if originalOrderID.Valid {
		ret.OriginalOrderID = originalOrderID.String
	}
	if dealerID.Valid {
		ret.DealerID = dealerID.String
	}
	if salesmanID.Valid {
		ret.SalesmanID = salesmanID.String
	}
	ret.CreatedAt = ret.CreatedAt.UTC()
	return &ret, nil
}

func (s *Store) ListReturnOrders(ctx context.Context, filter domain.ReturnFilter) ([]domain.ReturnOrder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, return_number, original_order_id, warehouse_id, dealer_id, salesman_id,
			item_id, qty, reason, status, created_at
		FROM return_orders
		WHERE ($1 = '' OR warehouse_id = $1)
			AND ($2 = '' OR dealer_id = $2)
			AND ($3 = '' OR salesman_id = $3)
		ORDER BY created_at DESC, id DESC
	`, filter.WarehouseID, filter.DealerID, filter.SalesmanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.ReturnOrder, 0, 32)
	for rows.Next() {
		ret, err := scanReturnOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ret)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SetReturnStatus drives the return state machine and mirrors its inventory
// effect in the same transaction. Approval restocks the warehouse; moving an
// approved return back to rejected reverses the restock clamped at zero,
// matching the ledger's direct-subtract behavior.
func (s *Store) SetReturnStatus(ctx context.Context, returnID string, status string) (*domain.ReturnOrder, error) {
	if status != domain.ReturnApproved && status != domain.ReturnRejected {
		return nil, store.ErrValidation
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var ret domain.ReturnOrder
	err = tx.QueryRowContext(ctx, `
		SELECT id, warehouse_id, item_id, qty, status
		FROM return_orders
		WHERE id = $1
		FOR UPDATE
	`, returnID).Scan(&ret.ID, &ret.WarehouseID, &ret.ItemID, &ret.Quantity, &ret.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if ret.Status == status {
		return nil, store.ErrInvalidState
	}

	switch status {
	case domain.ReturnApproved:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO inventory_stocks (warehouse_id, item_id, qty, updated_at)
			VALUES ($1,$2,$3,now())
			ON CONFLICT (warehouse_id, item_id)
			DO UPDATE SET qty = inventory_stocks.qty + EXCLUDED.qty, updated_at = now()
		`, ret.WarehouseID, ret.ItemID, ret.Quantity)
	case domain.ReturnRejected:
		if ret.Status == domain.ReturnApproved {
			_, err = tx.ExecContext(ctx, `
				UPDATE inventory_stocks
				SET qty = GREATEST(qty - $3, 0), updated_at = now()
				WHERE warehouse_id = $1 AND item_id = $2
			`, ret.WarehouseID, ret.ItemID, ret.Quantity)
		}
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE return_orders SET status = $2 WHERE id = $1
	`, returnID, status); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetReturnOrder(ctx, returnID)
}

func (s *Store) CreateRegistrationCode(ctx context.Context, code domain.RegistrationCode) (*domain.RegistrationCode, error) {
	if code.Code == "" || code.Role == "" || code.ExpiresAt.IsZero() {
		return nil, store.ErrValidation
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO registration_codes (code, role, warehouse_id, expires_at, used_at, created_at)
		VALUES ($1,$2,$3,$4,NULL,$5)
	`, code.Code, code.Role, nullIfEmpty(code.WarehouseID), code.ExpiresAt, code.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}

	created := code
	return &created, nil
}

func (s *Store) ConsumeRegistrationCode(ctx context.Context, code string, at time.Time) (*domain.RegistrationCode, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var entry domain.RegistrationCode
	var warehouseID sql.NullString
	var usedAt sql.NullTime
	err = tx.QueryRowContext(ctx, `
		SELECT code, role, warehouse_id, expires_at, used_at, created_at
		FROM registration_codes
		WHERE code = $1
		FOR UPDATE
	`, code).Scan(&entry.Code, &entry.Role, &warehouseID, &entry.ExpiresAt, &usedAt, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if warehouseID.Valid {
		entry.WarehouseID = warehouseID.String
	}
	if usedAt.Valid {
		return nil, store.ErrConflict
	}
	if at.After(entry.ExpiresAt) {
		return nil, store.ErrValidation
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE registration_codes SET used_at = $2 WHERE code = $1
	`, code, at); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	used := at
	entry.UsedAt = &used
	entry.ExpiresAt = entry.ExpiresAt.UTC()
	entry.CreatedAt = entry.CreatedAt.UTC()
	return &entry, nil
}

// ReleaseRegistrationCode clears the used-at mark so a code consumed in a
// registration attempt that later failed can be redeemed again.
func (s *Store) ReleaseRegistrationCode(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE registration_codes SET used_at = NULL WHERE code = $1
	`, code)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) (*domain.UserAccount, error) {
	if user.Username == "" || user.PasswordHash == "" || user.Role == "" {
		return nil, store.ErrValidation
	}
	if user.ID == "" {
		user.ID = xid.New("usr")
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (id, username, password, role, warehouse_id, phone, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())
	`, user.ID, user.Username, user.PasswordHash, user.Role, nullIfEmpty(user.WarehouseID),
		user.Phone, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}

	created := user
	return &created, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.UserAccount, error) {
	var user domain.UserAccount
	var warehouseID sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password, role, warehouse_id, phone, active, created_at
		FROM app_users
		WHERE username = $1
	`, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role,
		&warehouseID, &user.Phone, &user.Active, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if warehouseID.Valid {
		user.WarehouseID = warehouseID.String
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, password, role, warehouse_id, phone, active, created_at
		FROM app_users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		var warehouseID sql.NullString
		if err := rows.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role,
			&warehouseID, &user.Phone, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		if warehouseID.Valid {
			user.WarehouseID = warehouseID.String
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, passwordHash string) error {
	if username == "" || passwordHash == "" {
		return store.ErrValidation
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE app_users
		SET password = $2, updated_at = now()
		WHERE username = $1
	`, username, passwordHash)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullTime(val *time.Time) any {
	if val == nil {
		return nil
	}
	return *val
}
