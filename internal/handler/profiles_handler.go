package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/sift-profiler/internal/dto"
	"github.com/octobees/sift-profiler/internal/entity"
	middlewarepkg "github.com/octobees/sift-profiler/internal/middleware"
	"github.com/octobees/sift-profiler/internal/service"
)

// ProfileRunner runs profile generation.
type ProfileRunner interface {
	Generate(ctx context.Context, companyName string) (*entity.CompanyProfile, error)
	Create(ctx context.Context, userID uuid.UUID, companyName string) (*entity.ProfileRecord, error)
	CreateStreaming(ctx context.Context, userID uuid.UUID, companyName string) <-chan service.StreamEvent
}

// ProfileStore reads and removes saved profiles.
type ProfileStore interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]entity.ProfileRecord, error)
	Get(ctx context.Context, ownerID uuid.UUID, rawID string) (*entity.ProfileRecord, error)
	Delete(ctx context.Context, ownerID uuid.UUID, rawID string) error
}

// ProfilesHandler exposes profile generation and retrieval endpoints.
type ProfilesHandler struct {
	runner ProfileRunner
	store  ProfileStore
	logger *zap.Logger
}

// NewProfilesHandler constructs a ProfilesHandler.
func NewProfilesHandler(runner ProfileRunner, store ProfileStore, logger *zap.Logger) *ProfilesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfilesHandler{runner: runner, store: store, logger: logger.Named("profiles")}
}

// Generate handles POST /generate-profile. The profile is returned as-is
// and is not saved.
func (h *ProfilesHandler) Generate(c echo.Context) error {
	var req dto.CreateProfileRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	profile, err := h.runner.Generate(c.Request().Context(), req.CompanyName)
	if err != nil {
		return h.fail(c, "generate profile", err)
	}

	return c.JSON(http.StatusOK, profile)
}

// Create handles POST /profiles/create.
func (h *ProfilesHandler) Create(c echo.Context) error {
	userID, ok := middlewarepkg.UserIDFromContext(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "unauthorized")
	}

	var req dto.CreateProfileRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	rec, err := h.runner.Create(c.Request().Context(), userID, req.CompanyName)
	if err != nil {
		return h.fail(c, "create profile", err)
	}

	return Success(c, http.StatusCreated, "profile created", rec)
}

// CreateStream handles GET /profiles/create-stream as server-sent events.
// Failures are reported in-stream, never as HTTP errors.
func (h *ProfilesHandler) CreateStream(c echo.Context) error {
	stream := newEventStream(c)

	userID, ok := middlewarepkg.UserIDFromContext(c)
	if !ok {
		return stream.send("ERROR|Unauthorized: invalid token")
	}

	companyName := strings.TrimSpace(c.QueryParam("company_name"))
	if companyName == "" {
		return stream.send("ERROR|company_name is required")
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	for ev := range h.runner.CreateStreaming(ctx, userID, companyName) {
		if err := stream.send(ev.Data()); err != nil {
			h.logger.Info("stream consumer gone",
				zap.String("request_id", middlewarepkg.RequestIDFromContext(c)),
				zap.Error(err))
			return nil
		}
	}
	return nil
}

// List handles GET /profiles/my-profiles.
func (h *ProfilesHandler) List(c echo.Context) error {
	userID, ok := middlewarepkg.UserIDFromContext(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "unauthorized")
	}

	records, err := h.store.List(c.Request().Context(), userID)
	if err != nil {
		return h.fail(c, "list profiles", err)
	}

	return Success(c, http.StatusOK, "", records)
}

// Get handles GET /profiles/:id.
func (h *ProfilesHandler) Get(c echo.Context) error {
	userID, ok := middlewarepkg.UserIDFromContext(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "unauthorized")
	}

	rec, err := h.store.Get(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return h.fail(c, "get profile", err)
	}

	return Success(c, http.StatusOK, "", rec)
}

// Delete handles DELETE /profiles/:id.
func (h *ProfilesHandler) Delete(c echo.Context) error {
	userID, ok := middlewarepkg.UserIDFromContext(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "unauthorized")
	}

	if err := h.store.Delete(c.Request().Context(), userID, c.Param("id")); err != nil {
		return h.fail(c, "delete profile", err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *ProfilesHandler) fail(c echo.Context, op string, err error) error {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed",
			zap.String("request_id", middlewarepkg.RequestIDFromContext(c)),
			zap.Int("status", status),
			zap.Error(err))
	}
	return Error(c, status, message)
}
