package handlers

import (
	"context"
	"errors"
	"fmt"

	apierrors "github.com/snapdb/snapdb/internal/errors"
	"github.com/snapdb/snapdb/internal/models"
	"github.com/snapdb/snapdb/internal/storage"
)

// ItemHandler handles item CRUD requests.
type ItemHandler struct {
	items *storage.ItemService
}

// NewItemHandler creates a new item handler.
func NewItemHandler(items *storage.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

// ListItemsRequest is the request type for listing items (empty).
type ListItemsRequest struct{}

// GetItemRequest is a request for a single item.
type GetItemRequest struct {
	ID uint64 `path:"id"`
}

// CreateItemRequest is a request to create an item.
type CreateItemRequest struct {
	Name string `json:"name" jsonschema:"description=Display name of the item"`
}

// CreatedItem is the response for a created item.
type CreatedItem struct {
	models.Item
}

// StatusCode returns 201 for item creation.
func (c *CreatedItem) StatusCode() int {
	return 201
}

// UpdateItemRequest is a request to rename an item.
type UpdateItemRequest struct {
	ID   uint64 `json:"-" path:"id"`
	Name string `json:"name"`
}

// DeleteItemRequest is a request to delete an item.
type DeleteItemRequest struct {
	ID uint64 `path:"id"`
}

// DeleteItemResponse acknowledges a deletion.
type DeleteItemResponse struct {
	Message string `json:"message"`
}

// ListItems returns all items in ascending id order.
func (h *ItemHandler) ListItems(ctx context.Context, req ListItemsRequest) (*[]models.Item, error) {
	items, err := h.items.List()
	if err != nil {
		return nil, apierrors.Storage(err)
	}
	return &items, nil
}

// GetItem returns the item with the given id.
func (h *ItemHandler) GetItem(ctx context.Context, req GetItemRequest) (*models.Item, error) {
	item, err := h.items.Get(req.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apierrors.NotFound(fmt.Sprintf("Item %d", req.ID))
		}
		return nil, apierrors.Storage(err)
	}
	return item, nil
}

// CreateItem stores a new item under a freshly allocated id.
func (h *ItemHandler) CreateItem(ctx context.Context, req CreateItemRequest) (*CreatedItem, error) {
	if req.Name == "" {
		return nil, apierrors.MissingField("name")
	}
	item, err := h.items.Create(req.Name)
	if err != nil {
		return nil, apierrors.Storage(err)
	}
	return &CreatedItem{Item: *item}, nil
}

// UpdateItem renames an existing item.
func (h *ItemHandler) UpdateItem(ctx context.Context, req UpdateItemRequest) (*models.Item, error) {
	if req.Name == "" {
		return nil, apierrors.MissingField("name")
	}
	item, err := h.items.Update(req.ID, req.Name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apierrors.NotFound(fmt.Sprintf("Item %d", req.ID))
		}
		return nil, apierrors.Storage(err)
	}
	return item, nil
}

// DeleteItem removes the item with the given id. Deleting an id with no
// record is still a success.
func (h *ItemHandler) DeleteItem(ctx context.Context, req DeleteItemRequest) (*DeleteItemResponse, error) {
	if _, err := h.items.Delete(req.ID); err != nil {
		return nil, apierrors.Storage(err)
	}
	return &DeleteItemResponse{Message: "Item deleted successfully."}, nil
}
