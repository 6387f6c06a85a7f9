package storage

import (
	"slices"
	"strings"
	"sync"

	"github.com/dhima/client-service/internal/logging"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// Registry maps configuration names to pools so that configuring the same
// name twice reuses the first pool. It is owned by the application entry
// point and passed to whatever needs database access.
type Registry struct {
	mu       sync.Mutex
	logger   logging.Logger
	poolBase logging.Logger
	pools    map[string]*MySQLClient
}

// NewRegistry creates an empty registry.
func NewRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Registry{
		logger:   logger.With(zap.String("component", "pool_registry")),
		poolBase: logger,
		pools:    make(map[string]*MySQLClient),
	}
}

// GetInstance returns the pool registered under cfg's name, opening and
// registering it on first use. A config for an existing name is ignored.
func (r *Registry) GetInstance(cfg Config) (*MySQLClient, error) {
	if cfg.IsZero() {
		return nil, cfg.Validate()
	}
	cfg = cfg.Clone()
	name := cfg.InstanceName()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.pools[name]; ok {
		r.logger.Debug("reusing pool instance", zap.String("name", name))
		return existing, nil
	}

	client, err := Open(cfg, r.poolBase)
	if err != nil {
		return nil, err
	}
	r.pools[name] = client
	r.logger.Info("pool instance registered", zap.String("name", name))
	return client, nil
}

// Register adds an already constructed pool under its name. It returns false
// when the name is taken.
func (r *Registry) Register(client *MySQLClient) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pools[client.Name()]; ok {
		return false
	}
	r.pools[client.Name()] = client
	return true
}

// Lookup returns the pool registered under name.
func (r *Registry) Lookup(name string) (*MySQLClient, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	client, ok := r.pools[name]
	return client, ok
}

// Instances returns all registered pools ordered by name.
func (r *Registry) Instances() []*MySQLClient {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*MySQLClient, 0, len(r.pools))
	for _, client := range r.pools {
		out = append(out, client)
	}
	slices.SortFunc(out, func(a, b *MySQLClient) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return out
}

// Close closes every registered pool and empties the registry.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result *multierror.Error
	for name, client := range r.pools {
		if err := client.Close(); err != nil {
			result = multierror.Append(result, err)
		}
		delete(r.pools, name)
	}
	return result.ErrorOrNil()
}
