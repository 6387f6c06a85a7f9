package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/dhima/client-service/internal/apperr"
	"github.com/dhima/client-service/internal/logging"
	"github.com/dhima/client-service/internal/models"
	"github.com/dhima/client-service/internal/storage"
	"github.com/dhima/client-service/internal/validation"
	"github.com/dhima/client-service/pkg/clock"
	platformEvents "github.com/dhima/client-service/platform/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultPageSize is used when no page size is configured.
	DefaultPageSize = 10
	// DefaultPublishTimeout bounds how long a request waits on its change event.
	DefaultPublishTimeout = 3 * time.Second
)

var errNotObject = &validation.Error{Messages: []string{"request body must be a JSON object"}}

// Service encapsulates client business logic: validation, persistence and
// change notifications.
type Service struct {
	store     Store
	publisher EventPublisher
	clock     clock.Clock
	logger    logging.Logger
	pageSize  int
	hashCost  int

	publishTimeout time.Duration
}

// Option customises a Service.
type Option func(*Service)

// WithPublisher sets where change events go. Without one events are dropped.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock overrides the event timestamp source.
func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the service logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithPageSize sets how many clients a list page holds.
func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithHashCost sets the bcrypt cost for stored passwords.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

// WithPublishTimeout bounds each event publish. Non-positive values are ignored.
func WithPublishTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

// NewService creates a client service over store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		publisher: platformEvents.NoopPublisher{},
		clock:     clock.RealClock{},
		logger:    logging.NewNoOpLogger(),
		pageSize:  DefaultPageSize,
		hashCost:  bcrypt.DefaultCost,

		publishTimeout: DefaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("component", "clients"))
	return s
}

// ListClients returns one page of clients.
func (s *Service) ListClients(ctx context.Context, query models.ListClientsQuery) (models.ClientListResponse, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Page-1 > math.MaxInt32/s.pageSize {
		return models.ClientListResponse{}, &validation.Error{Messages: []string{"Page is out of range"}}
	}

	clients, total, err := s.store.ListClients(ctx, query.Page, s.pageSize)
	if err != nil {
		return models.ClientListResponse{}, s.internal(ctx, err, "Error while fetching clients")
	}
	s.logger.Debug("found clients", zap.Int("count", len(clients)), zap.Int("page", query.Page))

	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(s.pageSize) - 1) / int64(s.pageSize))
	}

	return models.ClientListResponse{
		Clients: clients,
		Pagination: models.Pagination{
			CurrentPage:  query.Page,
			PageSize:     s.pageSize,
			TotalPages:   totalPages,
			TotalRecords: total,
		},
	}, nil
}

// GetClient fetches one client with its role.
func (s *Service) GetClient(ctx context.Context, rawID string) (*models.ClientDetail, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}

	client, err := s.store.GetClient(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrClientNotFound) {
			return nil, apperr.Wrap(err, fmt.Sprintf("client with id %d not found", id), http.StatusNotFound)
		}
		return nil, s.internal(ctx, err, "Error while fetching client")
	}
	return client, nil
}

// CreateClient validates payload and inserts one client.
func (s *Service) CreateClient(ctx context.Context, payload []byte) (models.MessageResponse, error) {
	var req models.CreateClientRequest
	if err := createValidator.Decode(payload, &req); err != nil {
		return models.MessageResponse{}, err
	}

	client, err := s.newClient(req)
	if err != nil {
		return models.MessageResponse{}, s.internal(ctx, err, "Error while creating client")
	}

	id, err := s.store.CreateClient(ctx, &client)
	if err != nil {
		return models.MessageResponse{}, s.internal(ctx, err, "Error while creating client")
	}
	s.logger.Info("created client", zap.String("first_name", client.FirstName), zap.Int64("id", id))

	s.publish(ctx, platformEvents.ClientCreated, []int64{id}, 1)
	return models.MessageResponse{
		Message: fmt.Sprintf("client %s with id %d created successfully", client.FirstName, id),
		IDs:     []int64{id},
	}, nil
}

// CreateClients validates every client in payload and inserts them all in
// one transaction.
func (s *Service) CreateClients(ctx context.Context, payload []byte) (models.MessageResponse, error) {
	var req models.BulkCreateClientsRequest
	if err := bulkValidator.Decode(payload, &req); err != nil {
		return models.MessageResponse{}, err
	}

	clients := make([]models.Client, 0, len(req.Clients))
	for _, r := range req.Clients {
		client, err := s.newClient(r)
		if err != nil {
			return models.MessageResponse{}, s.internal(ctx, err, "Error while creating clients")
		}
		clients = append(clients, client)
	}

	res, err := s.store.CreateClients(ctx, clients)
	if err != nil {
		return models.MessageResponse{}, s.internal(ctx, err, "Error while creating clients")
	}
	s.logger.Info("created clients", zap.Int64("rows_affected", res.RowsAffected))

	s.publish(ctx, platformEvents.ClientCreated, nil, res.RowsAffected)
	return models.MessageResponse{
		Message:      fmt.Sprintf("%d client(s) created successfully", res.RowsAffected),
		RowsAffected: res.RowsAffected,
	}, nil
}

// UpdateClient validates payload, with the id taken from rawID, and updates
// the client.
func (s *Service) UpdateClient(ctx context.Context, rawID string, payload []byte) (models.MessageResponse, error) {
	doc := map[string]any{}
	if body := bytes.TrimSpace(payload); len(body) > 0 {
		var decoded any
		if err := json.Unmarshal(body, &decoded); err != nil {
			return models.MessageResponse{}, errNotObject
		}
		switch v := decoded.(type) {
		case map[string]any:
			doc = v
		case nil:
			// null is treated like an empty body
		default:
			return models.MessageResponse{}, errNotObject
		}
	}
	if id, err := strconv.ParseInt(rawID, 10, 64); err == nil {
		doc["id"] = id
	} else {
		doc["id"] = rawID
	}

	merged, err := json.Marshal(doc)
	if err != nil {
		return models.MessageResponse{}, s.internal(ctx, err, "Error while updating client")
	}
	var req models.UpdateClientRequest
	if err := updateValidator.Decode(merged, &req); err != nil {
		return models.MessageResponse{}, err
	}

	client := models.Client{
		ID:         req.ID,
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		Position:   req.Position,
		Email:      req.Email,
		RoleID:     req.RoleID,
	}
	affected, err := s.store.UpdateClient(ctx, &client)
	if err != nil {
		if errors.Is(err, storage.ErrClientNotFound) {
			return models.MessageResponse{}, apperr.Wrap(err, fmt.Sprintf("client with id %d not found", req.ID), http.StatusNotFound)
		}
		return models.MessageResponse{}, s.internal(ctx, err, "Error while updating client")
	}
	s.logger.Info("updated client", zap.Int64("id", req.ID), zap.Int64("rows_affected", affected))

	s.publish(ctx, platformEvents.ClientUpdated, []int64{req.ID}, 1)
	return models.MessageResponse{
		Message:      fmt.Sprintf("client %s with id %d updated successfully", req.FirstName, req.ID),
		RowsAffected: affected,
	}, nil
}

// DeleteClients removes every client listed in payload's clientIds.
func (s *Service) DeleteClients(ctx context.Context, payload []byte) (models.MessageResponse, error) {
	var req models.DeleteClientsRequest
	if err := deleteValidator.Decode(payload, &req); err != nil {
		return models.MessageResponse{}, err
	}

	affected, err := s.store.DeleteClients(ctx, req.ClientIDs)
	if err != nil {
		return models.MessageResponse{}, s.internal(ctx, err, "Error while deleting client(s)")
	}
	s.logger.Info("deleted clients", zap.Int64s("ids", req.ClientIDs), zap.Int64("rows_affected", affected))

	s.publish(ctx, platformEvents.ClientDeleted, req.ClientIDs, affected)
	return models.MessageResponse{
		Message:      "client(s) deleted successfully",
		RowsAffected: affected,
	}, nil
}

func (s *Service) newClient(req models.CreateClientRequest) (models.Client, error) {
	client := models.Client{
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		Position:   req.Position,
		Email:      req.Email,
		RoleID:     req.RoleID,
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
		if err != nil {
			return models.Client{}, fmt.Errorf("hash password: %w", err)
		}
		client.PasswordHash = string(hash)
	}
	return client, nil
}

// internal logs err with its detail and returns message as a 500.
func (s *Service) internal(ctx context.Context, err error, message string) error {
	fields := []zap.Field{zap.Error(err)}
	if code := storage.MySQLErrorNumber(err); code != 0 {
		fields = append(fields, zap.Uint16("mysql_error", code))
	}
	logging.ForContext(ctx, s.logger).Error(message, fields...)
	return apperr.Wrap(err, message, http.StatusInternalServerError)
}

// publish announces a committed change. Failures are logged only.
func (s *Service) publish(ctx context.Context, eventType string, ids []int64, count int64) {
	event := platformEvents.ClientEvent{
		EventID:    uuid.New().String(),
		Type:       eventType,
		ClientIDs:  ids,
		Count:      count,
		OccurredAt: s.clock.Now().UTC(),
		RequestID:  logging.RequestIDFromContext(ctx),
	}
	// The change is already committed: neither the caller's cancellation nor a
	// stalled broker may hold the response.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, event); err != nil {
		logging.ForContext(ctx, s.logger).Warn("failed to publish client event",
			zap.String("type", eventType),
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, &validation.Error{Messages: []string{fieldMessages["id"]}}
	}
	return id, nil
}
