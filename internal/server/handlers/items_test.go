package handlers

import (
	"context"
	"testing"

	"github.com/snapdb/snapdb/internal/storage"
)

func TestItemCRUD(t *testing.T) {
	db := newTestDB(t)
	h := NewItemHandler(storage.NewItemService(db))
	ctx := context.Background()

	created, err := h.CreateItem(ctx, CreateItemRequest{Name: "first"})
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	if created.ID != 1 || created.Name != "first" {
		t.Errorf("unexpected item: %+v", created.Item)
	}
	if created.StatusCode() != 201 {
		t.Errorf("expected 201, got %d", created.StatusCode())
	}

	got, err := h.GetItem(ctx, GetItemRequest{ID: created.ID})
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if got.Name != "first" {
		t.Errorf("expected %q, got %q", "first", got.Name)
	}

	updated, err := h.UpdateItem(ctx, UpdateItemRequest{ID: created.ID, Name: "renamed"})
	if err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}
	if updated.ID != created.ID || updated.Name != "renamed" {
		t.Errorf("unexpected item after update: %+v", updated)
	}

	list, err := h.ListItems(ctx, ListItemsRequest{})
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	if len(*list) != 1 || (*list)[0].Name != "renamed" {
		t.Errorf("unexpected list: %+v", *list)
	}

	del, err := h.DeleteItem(ctx, DeleteItemRequest{ID: created.ID})
	if err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}
	if del.Message == "" {
		t.Error("expected a confirmation message")
	}

	list, err = h.ListItems(ctx, ListItemsRequest{})
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	if len(*list) != 0 {
		t.Errorf("expected empty list, got %+v", *list)
	}
}

func TestItemNotFound(t *testing.T) {
	db := newTestDB(t)
	h := NewItemHandler(storage.NewItemService(db))
	ctx := context.Background()

	_, err := h.GetItem(ctx, GetItemRequest{ID: 42})
	if status := statusOf(t, err); status != 404 {
		t.Errorf("GetItem: expected 404, got %d", status)
	}

	_, err = h.UpdateItem(ctx, UpdateItemRequest{ID: 42, Name: "ghost"})
	if status := statusOf(t, err); status != 404 {
		t.Errorf("UpdateItem: expected 404, got %d", status)
	}

	// Deleting an id with no record is still a success.
	if _, err := h.DeleteItem(ctx, DeleteItemRequest{ID: 42}); err != nil {
		t.Errorf("DeleteItem: expected success, got %v", err)
	}
}

func TestItemValidation(t *testing.T) {
	db := newTestDB(t)
	h := NewItemHandler(storage.NewItemService(db))
	ctx := context.Background()

	_, err := h.CreateItem(ctx, CreateItemRequest{})
	if status := statusOf(t, err); status != 400 {
		t.Errorf("CreateItem: expected 400, got %d", status)
	}

	_, err = h.UpdateItem(ctx, UpdateItemRequest{ID: 1})
	if status := statusOf(t, err); status != 400 {
		t.Errorf("UpdateItem: expected 400, got %d", status)
	}
}

func TestItemIDsNeverReused(t *testing.T) {
	db := newTestDB(t)
	h := NewItemHandler(storage.NewItemService(db))
	ctx := context.Background()

	first, err := h.CreateItem(ctx, CreateItemRequest{Name: "first"})
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	if _, err := h.DeleteItem(ctx, DeleteItemRequest{ID: first.ID}); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}
	second, err := h.CreateItem(ctx, CreateItemRequest{Name: "second"})
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	if second.ID <= first.ID {
		t.Errorf("expected id above %d, got %d", first.ID, second.ID)
	}
}
