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

var _ = Describe("Dispatcher", func() {
	var (
		users    *mockUserStore
		requests *mockRequestStore
		bridges  *mockBridgeStore
		messages *mockMessageStore
		scorer   *mockScorer
		sender   *mockSender
		producer *mockProducer
		d        service.Dispatcher
		ctx      context.Context
	)

	BeforeEach(func() {
		users = &mockUserStore{}
		requests = &mockRequestStore{}
		bridges = &mockBridgeStore{}
		messages = &mockMessageStore{}
		scorer = &mockScorer{}
		sender = &mockSender{}
		producer = &mockProducer{}

		bridgeSvc := service.NewBridgeService(bridges)
		d = service.NewDispatcher(service.DispatcherConfig{
			Donors:    service.NewDonorService(users),
			Requests:  service.NewRequestService(requests),
			Bridges:   bridgeSvc,
			Ranking:   service.NewRankingService(users, scorer),
			Notifier:  service.NewNotifierService(bridgeSvc, producer),
			Messages:  messages,
			Sender:    sender,
			RankLimit: 5,
		})
		ctx = context.Background()
	})

	It("creates the contact's user row before executing any command", func() {
		var upserted *model.User
		users.upsertFn = func(ctx context.Context, user *model.User) error {
			upserted = user
			return nil
		}

		err := d.HandleInbound(ctx, "whatsapp:+911234567890", "help")
		Expect(err).NotTo(HaveOccurred())
		Expect(upserted).NotTo(BeNil())
		Expect(upserted.Phone).To(Equal("+911234567890"))
		Expect(upserted.OptedIn).To(BeTrue())
		Expect(upserted.Name).To(Equal("WA 7890"))
	})

	It("replies with the help text for help, menu and unrecognized input", func() {
		for _, body := range []string{"help", "MENU", "what is this"} {
			sender.sent = nil
			Expect(d.HandleInbound(ctx, "+911234567890", body)).To(Succeed())
			Expect(sender.sent).To(HaveLen(1))
			Expect(sender.sent[0].Text).To(ContainSubstring("BloodBridge bot"))
		}
	})

	It("replies with the help text for an empty body without touching the store", func() {
		upserts := 0
		users.upsertFn = func(ctx context.Context, user *model.User) error {
			upserts++
			return nil
		}

		Expect(d.HandleInbound(ctx, "+911234567890", "   \n  ")).To(Succeed())
		Expect(upserts).To(BeZero())
		Expect(sender.sent).To(HaveLen(1))
		Expect(sender.sent[0].Text).To(ContainSubstring("BloodBridge bot"))
	})

	It("opts a donor in", func() {
		optIns := 0
		users.setOptInFn = func(ctx context.Context, phone string, optedIn bool) error {
			Expect(phone).To(Equal("+911234567890"))
			Expect(optedIn).To(BeTrue())
			optIns++
			return nil
		}

		Expect(d.HandleInbound(ctx, "+911234567890", "I want to donate")).To(Succeed())
		Expect(optIns).To(Equal(1))
		Expect(sender.sent).To(HaveLen(1))
		Expect(sender.sent[0].Text).To(ContainSubstring("opted in"))
	})

	It("sets a blood group and echoes it uppercased", func() {
		var stored string
		users.setBloodGroupFn = func(ctx context.Context, phone, bloodGroup string) error {
			stored = bloodGroup
			return nil
		}

		Expect(d.HandleInbound(ctx, "+911234567890", "bg o-")).To(Succeed())
		Expect(stored).To(Equal("O-"))
		Expect(sender.sent).To(HaveLen(1))
		Expect(sender.sent[0].Text).To(ContainSubstring("O-"))
	})

	It("rejects an invalid blood group with guidance instead of an error", func() {
		Expect(d.HandleInbound(ctx, "+911234567890", "bg x+")).To(Succeed())
		Expect(sender.sent).To(HaveLen(1))
		Expect(sender.sent[0].Text).To(ContainSubstring("valid blood group"))
	})

	It("sets a location preserving its case", func() {
		var stored string
		users.setLocationFn = func(ctx context.Context, phone, location string) error {
			stored = location
			return nil
		}

		Expect(d.HandleInbound(ctx, "+911234567890", "LOC Navi Mumbai")).To(Succeed())
		Expect(stored).To(Equal("Navi Mumbai"))
	})

	It("lists recent requests for status", func() {
		requests.listByRequesterPhoneFn = func(ctx context.Context, phone string, limit int) ([]model.Request, error) {
			Expect(limit).To(Equal(5))
			return []model.Request{
				{ID: 42, BloodGroup: "B+", Units: 2, Urgency: model.UrgencyUrgent, Location: "Pune", Status: model.RequestOpen},
			}, nil
		}

		Expect(d.HandleInbound(ctx, "+911234567890", "status")).To(Succeed())
		Expect(sender.sent).To(HaveLen(1))
		Expect(sender.sent[0].Text).To(ContainSubstring("#42 • B+ • 2u • urgent • Pune • open"))
	})

	It("answers status with a fallback when there are no requests", func() {
		Expect(d.HandleInbound(ctx, "+911234567890", "status")).To(Succeed())
		Expect(sender.sent).To(HaveLen(1))
		Expect(sender.sent[0].Text).To(Equal("No recent requests found."))
	})

	Describe("alert replies", func() {
		BeforeEach(func() {
			bridges.latestPendingByPhoneFn = func(ctx context.Context, phone string) (*model.Bridge, error) {
				return &model.Bridge{ID: 7, Status: model.BridgePending}, nil
			}
			bridges.updateStatusFn = func(ctx context.Context, id int64, status model.BridgeStatus, confirmedAt *time.Time) (*model.Bridge, error) {
				return &model.Bridge{ID: id, Status: status, ConfirmedAt: confirmedAt}, nil
			}
		})

		It("confirms on 1, yes and y", func() {
			for _, body := range []string{"1", "yes", "Y"} {
				sender.sent = nil
				Expect(d.HandleInbound(ctx, "+911234567890", body)).To(Succeed())
				Expect(sender.sent).To(HaveLen(1))
				Expect(sender.sent[0].Text).To(ContainSubstring("Thank you for confirming"))
			}
		})

		It("declines on 2, no and n", func() {
			for _, body := range []string{"2", "no", "N"} {
				sender.sent = nil
				Expect(d.HandleInbound(ctx, "+911234567890", body)).To(Succeed())
				Expect(sender.sent).To(HaveLen(1))
				Expect(sender.sent[0].Text).To(Equal("No worries—thanks for responding!"))
			}
		})

		It("acknowledges a reply with nothing pending without mutating state", func() {
			bridges.latestPendingByPhoneFn = func(ctx context.Context, phone string) (*model.Bridge, error) {
				return nil, store.ErrNotFound
			}

			Expect(d.HandleInbound(ctx, "+911234567890", "1")).To(Succeed())
			Expect(bridges.updateCalls).To(BeZero())
			Expect(sender.sent).To(HaveLen(1))
			Expect(sender.sent[0].Text).To(ContainSubstring("No pending requests"))
		})
	})

	Describe("request creation", func() {
		BeforeEach(func() {
			users.listCandidatesFn = func(ctx context.Context, filter store.CandidateFilter) ([]model.User, error) {
				return []model.User{
					{ID: 1, Phone: "+911111111111", OptedIn: true, PropensityScore: f64(0.9)},
					{ID: 2, Phone: "+912222222222", OptedIn: true, PropensityScore: f64(0.4)},
				}, nil
			}
		})

		It("creates the request, fans out alerts and reports the attempted count", func() {
			var created *model.Request
			requests.createFn = func(ctx context.Context, req *model.Request) error {
				created = req
				return nil
			}

			Expect(d.HandleInbound(ctx, "+911234567890", "request B+ Pune 2 urgent")).To(Succeed())

			Expect(created).NotTo(BeNil())
			Expect(created.BloodGroup).To(Equal("B+"))
			Expect(created.Location).To(Equal("Pune"))
			Expect(created.Units).To(Equal(2))
			Expect(created.Urgency).To(Equal(model.UrgencyUrgent))
			Expect(created.Status).To(Equal(model.RequestOpen))

			Expect(bridges.createCalls).To(Equal(2))
			Expect(producer.enqueued).To(HaveLen(2))

			Expect(sender.sent).To(HaveLen(2))
			Expect(sender.sent[0].Text).To(ContainSubstring("Request created"))
			Expect(sender.sent[1].Text).To(ContainSubstring("Contacted 2 donors"))
		})

		It("does not filter candidates by the default location", func() {
			Expect(d.HandleInbound(ctx, "+911234567890", "request")).To(Succeed())
			Expect(users.listCandidatesCalls).NotTo(BeEmpty())
			Expect(users.listCandidatesCalls[0].Location).To(BeNil())
		})

		It("rejects an invalid blood group before creating anything", func() {
			creates := 0
			requests.createFn = func(ctx context.Context, req *model.Request) error {
				creates++
				return nil
			}

			Expect(d.HandleInbound(ctx, "+911234567890", "request X+ Pune 1 urgent")).To(Succeed())
			Expect(creates).To(BeZero())
			Expect(sender.sent).To(HaveLen(1))
			Expect(sender.sent[0].Text).To(ContainSubstring("valid blood group"))
		})

		It("keeps the created request and reports ranking trouble when ranking fails", func() {
			users.listCandidatesFn = func(ctx context.Context, filter store.CandidateFilter) ([]model.User, error) {
				return nil, errors.New("connection refused")
			}

			Expect(d.HandleInbound(ctx, "+911234567890", "request B+ Pune 1 urgent")).To(Succeed())
			Expect(sender.sent).To(HaveLen(2))
			Expect(sender.sent[0].Text).To(ContainSubstring("Request created"))
			Expect(sender.sent[1].Text).To(ContainSubstring("trouble ranking donors"))
		})
	})

	It("treats each line as its own command with its own reply", func() {
		Expect(d.HandleInbound(ctx, "+911234567890", "donate\nbg B+\nloc Pune")).To(Succeed())
		Expect(sender.sent).To(HaveLen(3))
		Expect(sender.sent[0].Text).To(ContainSubstring("opted in"))
		Expect(sender.sent[1].Text).To(ContainSubstring("B+"))
		Expect(sender.sent[2].Text).To(ContainSubstring("Pune"))
	})

	It("isolates a failing unit from the rest of the batch", func() {
		users.setBloodGroupFn = func(ctx context.Context, phone, bloodGroup string) error {
			return errors.New("connection refused")
		}

		Expect(d.HandleInbound(ctx, "+911234567890", "bg B+\nloc Pune")).To(Succeed())
		Expect(sender.sent).To(HaveLen(2))
		Expect(sender.sent[0].Text).To(ContainSubstring("something went wrong"))
		Expect(sender.sent[1].Text).To(ContainSubstring("Pune"))
	})

	It("replies with an apology when the user row cannot be created", func() {
		users.upsertFn = func(ctx context.Context, user *model.User) error {
			return errors.New("connection refused")
		}

		Expect(d.HandleInbound(ctx, "+911234567890", "donate")).To(Succeed())
		Expect(sender.sent).To(HaveLen(1))
		Expect(sender.sent[0].Text).To(ContainSubstring("something went wrong"))
	})

	It("logs inbound and outbound messages with direction and intent", func() {
		Expect(d.HandleInbound(ctx, "+911234567890", "donate")).To(Succeed())

		Expect(messages.logged).To(HaveLen(2))
		Expect(messages.logged[0].Direction).To(Equal(model.DirectionIn))
		Expect(messages.logged[0].Intent).NotTo(BeNil())
		Expect(*messages.logged[0].Intent).To(Equal("donate"))
		Expect(messages.logged[1].Direction).To(Equal(model.DirectionOut))
	})

	It("still replies when the message log is down", func() {
		messages.createFn = func(ctx context.Context, msg *model.Message) error {
			return errors.New("connection refused")
		}

		Expect(d.HandleInbound(ctx, "+911234567890", "help")).To(Succeed())
		Expect(sender.sent).To(HaveLen(1))
	})
})
