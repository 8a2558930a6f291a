package database

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Collection names. Each one is persisted as a single JSON array.
const (
	Users           = "users"
	BloodRequests   = "blood-requests"
	Notifications   = "notifications"
	DonationDrives  = "donation-drives"
	DonationHistory = "donation-history"
	Messages        = "messages"
)

// AllCollections lists every collection created on first run.
var AllCollections = []string{Users, BloodRequests, Notifications, DonationDrives, DonationHistory, Messages}

// Backend persists whole collections as opaque JSON documents.
// Read returns (nil, nil) when the collection has never been written.
type Backend interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Close() error
}

// Store owns a Backend and the per-collection write locks. Locks only cover
// this process: two servers pointed at the same files still race.
type Store struct {
	backend Backend
	logger  *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStore(backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend: backend,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (s *Store) Backend() Backend { return s.backend }

func (s *Store) Close() error { return s.backend.Close() }

func (s *Store) lockFor(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	return l
}

// Init makes sure every collection exists, writing an empty array for the
// ones that have never been saved.
func (s *Store) Init(ctx context.Context) error {
	for _, name := range AllCollections {
		data, err := s.backend.Read(ctx, name)
		if err != nil {
			return err
		}
		if data != nil {
			continue
		}
		if err := s.backend.Write(ctx, name, []byte("[]")); err != nil {
			return err
		}
		s.logger.Info("📄 created collection", zap.String("collection", name))
	}
	return nil
}
