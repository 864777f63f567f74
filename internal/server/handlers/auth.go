package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/snapdb/snapdb/internal/auth"
	apierrors "github.com/snapdb/snapdb/internal/errors"
	"github.com/snapdb/snapdb/internal/server/ipgeo"
	"github.com/snapdb/snapdb/internal/server/reqctx"
	"github.com/snapdb/snapdb/internal/storage"
)

// AuthHandler handles authentication requests.
type AuthHandler struct {
	users  *storage.UserService
	tokens *auth.Manager
	geo    *ipgeo.Checker
}

// NewAuthHandler creates a new auth handler. geo may be nil.
func NewAuthHandler(users *storage.UserService, tokens *auth.Manager, geo *ipgeo.Checker) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, geo: geo}
}

// LoginRequest is a request to log in.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is a response from logging in.
type LoginResponse struct {
	Token string `json:"token"`
}

// RegisterRequest is a request to register a new account.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResponse is a response from registering.
type RegisterResponse struct {
	Message string `json:"message"`
}

// StatusCode returns 201 for successful registrations.
func (r *RegisterResponse) StatusCode() int {
	return 201
}

// Login verifies credentials and returns a JWT token.
func (h *AuthHandler) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, apierrors.MissingField("username or password")
	}

	ip := reqctx.ClientIP(ctx)
	user, err := h.users.Authenticate(req.Username, req.Password)
	if err != nil {
		slog.WarnContext(ctx, "Login rejected", "username", req.Username, "ip", ip, "country", h.geo.CountryCode(ip))
		return nil, apierrors.Unauthorized("Invalid credentials")
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		return nil, apierrors.InternalWithError("Failed to generate token", err)
	}

	slog.InfoContext(ctx, "Login", "username", user.Username, "ip", ip, "country", h.geo.CountryCode(ip))
	return &LoginResponse{Token: token}, nil
}

// Register creates a new account.
func (h *AuthHandler) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, apierrors.MissingField("username or password")
	}

	ip := reqctx.ClientIP(ctx)
	user, err := h.users.Register(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			return nil, apierrors.Conflict("User already exists")
		}
		return nil, apierrors.InternalWithError("Failed to register user", err)
	}

	slog.InfoContext(ctx, "Registered", "username", user.Username, "id", user.ID, "ip", ip, "country", h.geo.CountryCode(ip))
	return &RegisterResponse{Message: "User registered successfully."}, nil
}
