package service

import (
	"context"
	"testing"

	"github.com/Skywalker147/sorath-sub001/internal/cache"
	"github.com/Skywalker147/sorath-sub001/internal/domain"
	"github.com/Skywalker147/sorath-sub001/internal/notify"
	"github.com/Skywalker147/sorath-sub001/internal/store/memory"
)

func newTestService() *Service {
	return New(memory.NewSeeded(), cache.NoopItemCache{}, notify.NoopSender{}, nil)
}

func asOwner() context.Context {
	return WithActor(context.Background(), domain.Actor{ID: "usr-owner", Username: "owner", Role: domain.RoleOwner})
}

func asWarehouse(warehouseID string) context.Context {
	return WithActor(context.Background(), domain.Actor{ID: warehouseID, Username: "centralwh", Role: domain.RoleWarehouse})
}

func asDealer(id string) context.Context {
	return WithActor(context.Background(), domain.Actor{ID: id, Username: "dealer1", Role: domain.RoleDealer})
}

func asSalesman(id string) context.Context {
	return WithActor(context.Background(), domain.Actor{ID: id, Username: "salesman1", Role: domain.RoleSalesman})
}

func TestActorRequiredOnEveryOperation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.ListWarehouses(ctx); err == nil {
		t.Fatal("expected error without actor")
	}
	if _, err := svc.ListOrders(ctx); err == nil {
		t.Fatal("expected error without actor")
	}
	if _, err := svc.AdjustInventory(ctx, domain.InventoryAdjustRequest{
		WarehouseID: "wh-central", ItemID: "itm-tape-01", Quantity: 1, Mode: domain.AdjustAdd,
	}); err == nil {
		t.Fatal("expected error without actor")
	}
}
