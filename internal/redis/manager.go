package redis

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/brainink/hub/internal/setup/config"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// SessionDBIndex is the database holding the access token and encrypted user data.
const SessionDBIndex = 0

// clientName identifies hub connections in CLIENT LIST.
const clientName = "brainink-hub"

// Manager opens one rueidis client per database on first use and closes them
// together on shutdown.
type Manager struct {
	clients map[int]rueidis.Client
	config  *config.Redis
	logger  *zap.Logger
	mu      sync.Mutex
}

// NewManager returns a Manager for the server in cfg. No connection is made
// until a client is requested.
func NewManager(cfg *config.Redis, logger *zap.Logger) *Manager {
	return &Manager{
		clients: make(map[int]rueidis.Client),
		config:  cfg,
		logger:  logger.Named("redis"),
	}
}

// Session returns the client for the session database after checking the
// server answers, so a misconfigured backend fails at startup rather than on
// the first credential read.
func (m *Manager) Session(ctx context.Context) (rueidis.Client, error) {
	client, err := m.GetClient(SessionDBIndex)
	if err != nil {
		return nil, err
	}

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		return nil, fmt.Errorf("session store at %s is unreachable: %w", m.addr(), err)
	}

	return client, nil
}

// GetClient returns the client for db, connecting on the first call.
func (m *Manager) GetClient(db int) (rueidis.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if client, ok := m.clients[db]; ok {
		return client, nil
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{m.addr()},
		Username:    m.config.Username,
		Password:    m.config.Password,
		SelectDB:    db,
		ClientName:  clientName,
		// Credentials must never be served from a client-side cache
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis db %d at %s: %w", db, m.addr(), err)
	}

	m.clients[db] = client
	m.logger.Debug("Connected to redis", zap.String("addr", m.addr()), zap.Int("db", db))

	return client, nil
}

// Close closes every open client. Clients requested afterwards reconnect.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for db, client := range m.clients {
		client.Close()
		delete(m.clients, db)
	}

	m.logger.Debug("Closed redis clients")
}

func (m *Manager) addr() string {
	return net.JoinHostPort(m.config.Host, strconv.Itoa(m.config.Port))
}
