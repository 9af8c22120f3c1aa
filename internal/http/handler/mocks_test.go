package handler_test

import (
	"context"

	"bloodbridge.app/engage/internal/model"
	"bloodbridge.app/engage/internal/service"
	"bloodbridge.app/engage/internal/store"
)

type mockDispatcher struct {
	handleInboundFn func(ctx context.Context, from, body string) error
	calls           []struct{ From, Body string }
}

func (m *mockDispatcher) HandleInbound(ctx context.Context, from, body string) error {
	m.calls = append(m.calls, struct{ From, Body string }{from, body})
	if m.handleInboundFn != nil {
		return m.handleInboundFn(ctx, from, body)
	}
	return nil
}

type mockRankingService struct {
	rankFn func(ctx context.Context, params service.RankParams) ([]service.RankedDonor, error)
}

func (m *mockRankingService) Rank(ctx context.Context, params service.RankParams) ([]service.RankedDonor, error) {
	if m.rankFn != nil {
		return m.rankFn(ctx, params)
	}
	return nil, nil
}

type mockRequestService struct {
	createFn                func(ctx context.Context, params service.CreateRequestParams) (*model.Request, error)
	getByIDFn               func(ctx context.Context, id int64) (*model.Request, error)
	listFn                  func(ctx context.Context, status *model.RequestStatus) ([]model.Request, error)
	listRecentByRequesterFn func(ctx context.Context, phone string, limit int) ([]model.Request, error)
	updateStatusFn          func(ctx context.Context, id int64, status model.RequestStatus) (*model.Request, error)
}

func (m *mockRequestService) Create(ctx context.Context, params service.CreateRequestParams) (*model.Request, error) {
	if m.createFn != nil {
		return m.createFn(ctx, params)
	}
	return nil, nil
}

func (m *mockRequestService) GetByID(ctx context.Context, id int64) (*model.Request, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockRequestService) List(ctx context.Context, status *model.RequestStatus) ([]model.Request, error) {
	if m.listFn != nil {
		return m.listFn(ctx, status)
	}
	return nil, nil
}

func (m *mockRequestService) ListRecentByRequester(ctx context.Context, phone string, limit int) ([]model.Request, error) {
	if m.listRecentByRequesterFn != nil {
		return m.listRecentByRequesterFn(ctx, phone, limit)
	}
	return nil, nil
}

func (m *mockRequestService) UpdateStatus(ctx context.Context, id int64, status model.RequestStatus) (*model.Request, error) {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil, store.ErrNotFound
}

type mockBridgeService struct {
	createFn        func(ctx context.Context, requestID, donorUserID int64, notes *string) (*model.Bridge, error)
	getByIDFn       func(ctx context.Context, bridgeID int64) (*model.Bridge, error)
	resolveFn       func(ctx context.Context, donorPhone string, action service.ReplyAction) (*model.Bridge, error)
	updateStatusFn  func(ctx context.Context, bridgeID int64, status model.BridgeStatus) (*model.Bridge, error)
	listByRequestFn func(ctx context.Context, requestID int64) ([]model.Bridge, error)
}

func (m *mockBridgeService) Create(ctx context.Context, requestID, donorUserID int64, notes *string) (*model.Bridge, error) {
	if m.createFn != nil {
		return m.createFn(ctx, requestID, donorUserID, notes)
	}
	return nil, nil
}

func (m *mockBridgeService) GetByID(ctx context.Context, bridgeID int64) (*model.Bridge, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, bridgeID)
	}
	return nil, store.ErrNotFound
}

func (m *mockBridgeService) Resolve(ctx context.Context, donorPhone string, action service.ReplyAction) (*model.Bridge, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, donorPhone, action)
	}
	return nil, service.ErrNoPending
}

func (m *mockBridgeService) UpdateStatus(ctx context.Context, bridgeID int64, status model.BridgeStatus) (*model.Bridge, error) {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, bridgeID, status)
	}
	return nil, store.ErrNotFound
}

func (m *mockBridgeService) ListByRequest(ctx context.Context, requestID int64) ([]model.Bridge, error) {
	if m.listByRequestFn != nil {
		return m.listByRequestFn(ctx, requestID)
	}
	return nil, nil
}

type mockNotifierService struct {
	fanoutFn func(ctx context.Context, req *model.Request, donors []service.RankedDonor) int
	calls    int
}

func (m *mockNotifierService) Fanout(ctx context.Context, req *model.Request, donors []service.RankedDonor) int {
	m.calls++
	if m.fanoutFn != nil {
		return m.fanoutFn(ctx, req, donors)
	}
	return len(donors)
}

type mockMessageStore struct {
	createFn func(ctx context.Context, msg *model.Message) error
	listFn   func(ctx context.Context, userID *int64, limit int) ([]model.Message, error)
}

func (m *mockMessageStore) Create(ctx context.Context, msg *model.Message) error {
	if m.createFn != nil {
		return m.createFn(ctx, msg)
	}
	return nil
}

func (m *mockMessageStore) List(ctx context.Context, userID *int64, limit int) ([]model.Message, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, limit)
	}
	return nil, nil
}
