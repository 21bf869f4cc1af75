package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/callsight/callsight/internal/config"
)

type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnected
	StateReconnecting
)

func (s ConnState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

const (
	connectTimeout = 30 * time.Second
	probeTimeout   = 5 * time.Second
)

type opener func(cfg config.DatabaseConfig) (*sqlx.DB, error)

// ConnManager owns the process-wide database handle. The connection is
// established lazily on first Acquire, probed for liveness before every
// use, and re-established when the probe fails. Concurrent ingestions
// share the handle; pooling below it belongs to database/sql.
type ConnManager struct {
	mu    sync.Mutex
	cfg   config.DatabaseConfig
	open  opener
	db    *sqlx.DB
	state atomic.Int32
}

func NewConnManager(cfg config.DatabaseConfig) *ConnManager {
	return &ConnManager{cfg: cfg, open: openDB}
}

// Acquire returns a live handle, connecting or reconnecting as needed.
// Connection establishment is bounded by connectTimeout so a dead store
// fails fast instead of hanging the request.
func (m *ConnManager) Acquire(ctx context.Context) (*sqlx.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := m.db.PingContext(probeCtx)
		cancel()
		if err == nil {
			return m.db, nil
		}
		logutil.GetLogger(ctx).Warn("store connection lost, reconnecting", zap.Error(err))
		m.state.Store(int32(StateReconnecting))
		_ = m.db.Close()
		m.db = nil
	}

	db, err := m.connect(ctx)
	if err != nil {
		m.state.Store(int32(StateDisconnected))
		return nil, err
	}
	m.db = db
	m.state.Store(int32(StateConnected))
	return m.db, nil
}

func (m *ConnManager) connect(ctx context.Context) (*sqlx.DB, error) {
	db, err := m.open(m.cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect store: %w", err)
	}
	logutil.GetLogger(ctx).Info("store connected",
		zap.String("host", m.cfg.Host),
		zap.String("dbname", m.cfg.DBName),
	)
	return db, nil
}

func (m *ConnManager) State() ConnState {
	return ConnState(m.state.Load())
}

func (m *ConnManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Store(int32(StateDisconnected))
	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	return err
}

func openDB(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode, int(connectTimeout.Seconds()))
	}
	return sqlx.Open("postgres", dsn)
}
