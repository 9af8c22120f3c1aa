package service_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"bloodbridge.app/engage/internal/model"
	"bloodbridge.app/engage/internal/queue"
	"bloodbridge.app/engage/internal/service"
)

var _ = Describe("NotifierService", func() {
	var (
		bridges  *mockBridgeStore
		producer *mockProducer
		svc      service.NotifierService
		ctx      context.Context
		req      *model.Request
	)

	rankedDonors := func(ids ...int64) []service.RankedDonor {
		out := make([]service.RankedDonor, 0, len(ids))
		for _, id := range ids {
			out = append(out, service.RankedDonor{
				User:  model.User{ID: id, Phone: fmt.Sprintf("+9112345%05d", id)},
				Score: 0.5,
			})
		}
		return out
	}

	BeforeEach(func() {
		bridges = &mockBridgeStore{}
		producer = &mockProducer{}
		svc = service.NewNotifierService(service.NewBridgeService(bridges), producer)
		ctx = context.Background()
		req = &model.Request{ID: 100, BloodGroup: "B+", Location: "Pune", Units: 2, Urgency: model.UrgencyUrgent}
	})

	It("creates one pending bridge and one alert task per donor", func() {
		attempted := svc.Fanout(ctx, req, rankedDonors(1, 2, 3))

		Expect(attempted).To(Equal(3))
		Expect(bridges.createCalls).To(Equal(3))
		Expect(producer.enqueued).To(HaveLen(3))
		for i, task := range producer.enqueued {
			Expect(task.TaskType).To(Equal(queue.TaskTypeDonorAlert))
			Expect(task.RequestID).To(Equal(req.ID))
			Expect(task.DonorID).To(Equal(int64(i + 1)))
			Expect(task.BridgeID).NotTo(BeZero())
		}
	})

	It("names the blood group and location in the alert text", func() {
		svc.Fanout(ctx, req, rankedDonors(1))

		Expect(producer.enqueued).To(HaveLen(1))
		Expect(producer.enqueued[0].Text).To(ContainSubstring("B+ blood needed at Pune"))
		Expect(producer.enqueued[0].Text).To(ContainSubstring(`Reply "1" for Yes or "2" for No.`))
	})

	It("skips a donor whose bridge cannot be created without blocking the rest", func() {
		calls := 0
		bridges.createFn = func(ctx context.Context, bridge *model.Bridge) error {
			calls++
			if calls == 2 {
				return errors.New("connection refused")
			}
			return nil
		}

		attempted := svc.Fanout(ctx, req, rankedDonors(1, 2, 3))

		Expect(attempted).To(Equal(3))
		Expect(producer.enqueued).To(HaveLen(2))
	})

	It("counts a donor whose enqueue fails as attempted", func() {
		producer.enqueueFn = func(ctx context.Context, task queue.AlertTask) error {
			return errors.New("stream unavailable")
		}

		attempted := svc.Fanout(ctx, req, rankedDonors(1, 2))

		Expect(attempted).To(Equal(2))
		Expect(bridges.createCalls).To(Equal(2))
	})

	It("returns zero for an empty ranking", func() {
		attempted := svc.Fanout(ctx, req, nil)
		Expect(attempted).To(BeZero())
		Expect(bridges.createCalls).To(BeZero())
		Expect(producer.enqueued).To(BeEmpty())
	})
})
