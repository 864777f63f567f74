package storage

import (
	"github.com/snapdb/snapdb/internal/models"
)

// ItemService handles item CRUD over the shared store.
type ItemService struct {
	db *DB
}

// NewItemService creates a new item service.
func NewItemService(db *DB) *ItemService {
	return &ItemService{db: db}
}

// Create allocates the next id and stores a new item under it. The id
// allocation and the insert happen under one lock hold.
func (s *ItemService) Create(name string) (*models.Item, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	id, ok, err := s.db.store.NextID(models.ItemTable)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTableMissing
	}

	item := &models.Item{ID: id, Name: name}
	raw, err := encodeRecord(item)
	if err != nil {
		return nil, err
	}
	if _, ok, err := s.db.store.Upsert(models.ItemTable, id, raw); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrTableMissing
	}
	return item, nil
}

// Get returns the item with the given id, or ErrNotFound.
func (s *ItemService) Get(id uint64) (*models.Item, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	raw, ok := s.db.store.FindByID(models.ItemTable, id)
	if !ok {
		return nil, ErrNotFound
	}
	return decodeRecord[models.Item](raw)
}

// List returns all items in ascending id order.
func (s *ItemService) List() ([]models.Item, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	raws, ok := s.db.store.FindAll(models.ItemTable)
	if !ok {
		return nil, ErrTableMissing
	}
	items := make([]models.Item, 0, len(raws))
	for _, raw := range raws {
		item, err := decodeRecord[models.Item](raw)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// Update replaces the name of an existing item. The existence check and the
// write happen under one lock hold. Returns ErrNotFound when the id has no
// record.
func (s *ItemService) Update(id uint64, name string) (*models.Item, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.store.FindByID(models.ItemTable, id); !ok {
		return nil, ErrNotFound
	}

	item := &models.Item{ID: id, Name: name}
	raw, err := encodeRecord(item)
	if err != nil {
		return nil, err
	}
	if _, ok, err := s.db.store.Upsert(models.ItemTable, id, raw); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrTableMissing
	}
	return item, nil
}

// Delete removes the item with the given id. The returned item is nil when
// nothing was stored under the id; that is not an error.
func (s *ItemService) Delete(id uint64) (*models.Item, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	raw, ok, err := s.db.store.DeleteByID(models.ItemTable, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTableMissing
	}
	if raw == nil {
		return nil, nil
	}
	return decodeRecord[models.Item](raw)
}
