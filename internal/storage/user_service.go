package storage

import (
	"github.com/snapdb/snapdb/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles account registration and authentication.
type UserService struct {
	db *DB
}

// NewUserService creates a new user service.
func NewUserService(db *DB) *UserService {
	return &UserService{db: db}
}

// Register creates a new account with the MUTATE permission. The uniqueness
// check, id allocation and insert happen under one lock hold, so two
// concurrent registrations of the same username cannot both succeed.
// Returns ErrUsernameTaken when the username exists.
func (s *UserService) Register(username, password string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	existing, ok := s.db.store.FindByField(models.UserTable, "username", username)
	if !ok {
		return nil, ErrTableMissing
	}
	if len(existing) > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	id, ok, err := s.db.store.NextID(models.UserTable)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTableMissing
	}

	user := &models.User{
		ID:          id,
		Username:    username,
		Password:    string(hash),
		Permissions: []models.Permission{models.PermMutate},
	}
	raw, err := encodeRecord(user)
	if err != nil {
		return nil, err
	}
	if _, ok, err := s.db.store.Upsert(models.UserTable, id, raw); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrTableMissing
	}

	public := *user
	public.Password = ""
	return &public, nil
}

// Authenticate verifies the username and password, returning the account
// without its password hash. Unknown usernames and wrong passwords are
// indistinguishable to the caller.
func (s *UserService) Authenticate(username, password string) (*models.User, error) {
	user, err := s.getByUsername(username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user.Password = ""
	return user, nil
}

// GetByUsername returns the account without its password hash, or
// ErrNotFound.
func (s *UserService) GetByUsername(username string) (*models.User, error) {
	user, err := s.getByUsername(username)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

func (s *UserService) getByUsername(username string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	raws, ok := s.db.store.FindByField(models.UserTable, "username", username)
	if !ok {
		return nil, ErrTableMissing
	}
	if len(raws) == 0 {
		return nil, ErrNotFound
	}
	return decodeRecord[models.User](raws[0])
}
