package service_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"bloodbridge.app/engage/internal/model"
	"bloodbridge.app/engage/internal/service"
	"bloodbridge.app/engage/internal/store"
)

var _ = Describe("BridgeService", func() {
	var (
		bridges *mockBridgeStore
		svc     service.BridgeService
		ctx     context.Context
	)

	BeforeEach(func() {
		bridges = &mockBridgeStore{}
		svc = service.NewBridgeService(bridges)
		ctx = context.Background()
	})

	Describe("Create", func() {
		It("creates a pending bridge", func() {
			var created *model.Bridge
			bridges.createFn = func(ctx context.Context, bridge *model.Bridge) error {
				created = bridge
				return nil
			}

			bridge, err := svc.Create(ctx, 100, 200, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(bridge.Status).To(Equal(model.BridgePending))
			Expect(bridge.RequestID).To(Equal(int64(100)))
			Expect(bridge.DonorUserID).To(Equal(int64(200)))
			Expect(created).NotTo(BeNil())
			Expect(created.ID).NotTo(BeZero())
		})
	})

	Describe("Resolve", func() {
		It("confirms the most recent pending bridge with a confirmation timestamp", func() {
			bridges.latestPendingByPhoneFn = func(ctx context.Context, phone string) (*model.Bridge, error) {
				return &model.Bridge{ID: 7, RequestID: 100, DonorUserID: 200, Status: model.BridgePending}, nil
			}
			bridges.updateStatusFn = func(ctx context.Context, id int64, status model.BridgeStatus, confirmedAt *time.Time) (*model.Bridge, error) {
				Expect(id).To(Equal(int64(7)))
				Expect(status).To(Equal(model.BridgeConfirmed))
				Expect(confirmedAt).NotTo(BeNil())
				Expect(*confirmedAt).To(BeTemporally("~", time.Now(), time.Second))
				return &model.Bridge{ID: id, Status: status, ConfirmedAt: confirmedAt}, nil
			}

			bridge, err := svc.Resolve(ctx, "+911234567890", service.ReplyConfirm)
			Expect(err).NotTo(HaveOccurred())
			Expect(bridge.Status).To(Equal(model.BridgeConfirmed))
			Expect(bridge.ConfirmedAt).NotTo(BeNil())
		})

		It("declines the most recent pending bridge without a confirmation timestamp", func() {
			bridges.latestPendingByPhoneFn = func(ctx context.Context, phone string) (*model.Bridge, error) {
				return &model.Bridge{ID: 7, Status: model.BridgePending}, nil
			}
			bridges.updateStatusFn = func(ctx context.Context, id int64, status model.BridgeStatus, confirmedAt *time.Time) (*model.Bridge, error) {
				Expect(status).To(Equal(model.BridgeDeclined))
				Expect(confirmedAt).To(BeNil())
				return &model.Bridge{ID: id, Status: status}, nil
			}

			bridge, err := svc.Resolve(ctx, "+911234567890", service.ReplyDecline)
			Expect(err).NotTo(HaveOccurred())
			Expect(bridge.Status).To(Equal(model.BridgeDeclined))
			Expect(bridge.ConfirmedAt).To(BeNil())
		})

		It("returns ErrNoPending when the donor has nothing pending", func() {
			bridges.latestPendingByPhoneFn = func(ctx context.Context, phone string) (*model.Bridge, error) {
				return nil, store.ErrNotFound
			}

			_, err := svc.Resolve(ctx, "+911234567890", service.ReplyConfirm)
			Expect(err).To(MatchError(service.ErrNoPending))
			Expect(bridges.updateCalls).To(BeZero())
		})

		It("transitions exactly one bridge per reply", func() {
			bridges.latestPendingByPhoneFn = func(ctx context.Context, phone string) (*model.Bridge, error) {
				return &model.Bridge{ID: 9, Status: model.BridgePending}, nil
			}
			bridges.updateStatusFn = func(ctx context.Context, id int64, status model.BridgeStatus, confirmedAt *time.Time) (*model.Bridge, error) {
				return &model.Bridge{ID: id, Status: status}, nil
			}

			_, err := svc.Resolve(ctx, "+911234567890", service.ReplyConfirm)
			Expect(err).NotTo(HaveOccurred())
			Expect(bridges.updateCalls).To(Equal(1))
		})
	})

	Describe("UpdateStatus", func() {
		It("rejects an unknown status", func() {
			_, err := svc.UpdateStatus(ctx, 7, model.BridgeStatus("archived"))
			Expect(err).To(HaveOccurred())
			Expect(bridges.updateCalls).To(BeZero())
		})

		It("applies a coordinator transition", func() {
			bridges.updateStatusFn = func(ctx context.Context, id int64, status model.BridgeStatus, confirmedAt *time.Time) (*model.Bridge, error) {
				Expect(confirmedAt).To(BeNil())
				return &model.Bridge{ID: id, Status: status}, nil
			}

			bridge, err := svc.UpdateStatus(ctx, 7, model.BridgeCompleted)
			Expect(err).NotTo(HaveOccurred())
			Expect(bridge.Status).To(Equal(model.BridgeCompleted))
		})

		It("stamps the confirmation time on a coordinator confirm", func() {
			bridges.updateStatusFn = func(ctx context.Context, id int64, status model.BridgeStatus, confirmedAt *time.Time) (*model.Bridge, error) {
				Expect(confirmedAt).NotTo(BeNil())
				return &model.Bridge{ID: id, Status: status, ConfirmedAt: confirmedAt}, nil
			}

			bridge, err := svc.UpdateStatus(ctx, 7, model.BridgeConfirmed)
			Expect(err).NotTo(HaveOccurred())
			Expect(bridge.ConfirmedAt).NotTo(BeNil())
		})

		It("surfaces store failures", func() {
			bridges.updateStatusFn = func(ctx context.Context, id int64, status model.BridgeStatus, confirmedAt *time.Time) (*model.Bridge, error) {
				return nil, errors.New("connection refused")
			}

			_, err := svc.UpdateStatus(ctx, 7, model.BridgeConfirmed)
			Expect(err).To(HaveOccurred())
		})
	})
})
