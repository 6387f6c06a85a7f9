package clients

import (
	"context"

	"github.com/dhima/client-service/internal/models"
	"github.com/dhima/client-service/internal/storage"
	platformEvents "github.com/dhima/client-service/platform/events"
)

// Store persists clients. *storage.MySQLClient implements it.
type Store interface {
	ListClients(ctx context.Context, page, limit int) ([]models.Client, int64, error)
	GetClient(ctx context.Context, id int64) (*models.ClientDetail, error)
	CreateClient(ctx context.Context, client *models.Client) (int64, error)
	CreateClients(ctx context.Context, clients []models.Client) (storage.ExecResult, error)
	UpdateClient(ctx context.Context, client *models.Client) (int64, error)
	DeleteClients(ctx context.Context, ids []int64) (int64, error)
}

// EventPublisher announces committed client changes.
type EventPublisher interface {
	Publish(ctx context.Context, event platformEvents.ClientEvent) error
}

var _ Store = (*storage.MySQLClient)(nil)
