package service

import (
	"bloodbridge.app/engage/internal/channel"
	"bloodbridge.app/engage/internal/oracle"
	"bloodbridge.app/engage/internal/queue"
	"bloodbridge.app/engage/internal/store"
)

type Services struct {
	stores    *store.Stores
	scorer    oracle.Scorer
	sender    channel.Sender
	producer  queue.Producer
	rankLimit int
}

type ServicesConfig struct {
	Stores    *store.Stores
	Scorer    oracle.Scorer
	Sender    channel.Sender
	Producer  queue.Producer
	RankLimit int
}

func NewServices(cfg ServicesConfig) *Services {
	return &Services{
		stores:    cfg.Stores,
		scorer:    cfg.Scorer,
		sender:    cfg.Sender,
		producer:  cfg.Producer,
		rankLimit: cfg.RankLimit,
	}
}

func (s *Services) Donors() DonorService {
	return NewDonorService(s.stores.Users())
}

func (s *Services) Requests() RequestService {
	return NewRequestService(s.stores.Requests())
}

func (s *Services) Bridges() BridgeService {
	return NewBridgeService(s.stores.Bridges())
}

func (s *Services) Ranking() RankingService {
	return NewRankingService(s.stores.Users(), s.scorer)
}

func (s *Services) Messages() store.MessageStore {
	return s.stores.Messages()
}

func (s *Services) Notifier() NotifierService {
	return NewNotifierService(s.Bridges(), s.producer)
}

func (s *Services) Dispatcher() Dispatcher {
	return NewDispatcher(DispatcherConfig{
		Donors:    s.Donors(),
		Requests:  s.Requests(),
		Bridges:   s.Bridges(),
		Ranking:   s.Ranking(),
		Notifier:  s.Notifier(),
		Messages:  s.stores.Messages(),
		Sender:    s.sender,
		RankLimit: s.rankLimit,
	})
}
