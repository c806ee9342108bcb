package session

import (
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/alkeincodes/bundle-tool/internal/cache"
	"github.com/alkeincodes/bundle-tool/internal/clock"
)

// Session records when an operator logged in. Sessions live for the
// process lifetime; there is no server-side expiry or revocation, which is
// an accepted property of this low-traffic internal tool.
type Session struct {
	ID        string
	CreatedAt time.Time
}

// Store gates API access. The interface exists so the in-memory map can be
// swapped for a real backend without touching handlers.
type Store interface {
	Create() Session
	Exists(id string) bool
	Count() int
}

type memoryStore struct {
	genID *snowflake.Node
	clk   clock.Clock
	items cache.Store[string, Session]
}

// NewStore builds the in-memory session store.
func NewStore(genID *snowflake.Node, clk clock.Clock) Store {
	return &memoryStore{
		genID: genID,
		clk:   clk,
		items: cache.New[string, Session](clk.Now),
	}
}

func (s *memoryStore) Create() Session {
	sess := Session{
		ID:        s.genID.Generate().String(),
		CreatedAt: s.clk.Now(),
	}
	s.items.Set(sess.ID, sess, 0)
	return sess
}

func (s *memoryStore) Exists(id string) bool {
	if id == "" {
		return false
	}
	_, ok := s.items.Get(id)
	return ok
}

func (s *memoryStore) Count() int {
	return s.items.Len()
}
