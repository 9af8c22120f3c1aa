package store

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

type Stores struct {
	pool *pgxpool.Pool
}

func NewStores(pool *pgxpool.Pool) *Stores {
	return &Stores{pool: pool}
}

func (s *Stores) Users() UserStore {
	return newUserStore(s.pool)
}

func (s *Stores) Requests() RequestStore {
	return newRequestStore(s.pool)
}

func (s *Stores) Bridges() BridgeStore {
	return newBridgeStore(s.pool)
}

func (s *Stores) Messages() MessageStore {
	return newMessageStore(s.pool)
}
