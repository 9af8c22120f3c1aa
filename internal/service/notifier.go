package service

import (
	"context"
	"fmt"
	"log/slog"

	"bloodbridge.app/engage/common/logger"
	"bloodbridge.app/engage/internal/model"
	"bloodbridge.app/engage/internal/queue"
)

type NotifierService interface {
	// Fanout creates a pending bridge per ranked donor and enqueues an
	// outbound alert for each. Per-donor failures are logged and skipped;
	// one donor's failure never blocks the rest of the batch. Returns the
	// number of donors attempted.
	Fanout(ctx context.Context, req *model.Request, donors []RankedDonor) int
}

type notifierService struct {
	bridges  BridgeService
	producer queue.Producer
}

func NewNotifierService(bridges BridgeService, producer queue.Producer) NotifierService {
	return &notifierService{
		bridges:  bridges,
		producer: producer,
	}
}

func (s *notifierService) Fanout(ctx context.Context, req *model.Request, donors []RankedDonor) int {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "engage.service.notifier",
		RequestID: logger.Ptr(req.ID),
	})

	text := AlertText(req)
	attempted := 0

	for _, donor := range donors {
		attempted++

		bridge, err := s.bridges.Create(ctx, req.ID, donor.ID, nil)
		if err != nil {
			slog.ErrorContext(ctx, "bridge creation failed for donor",
				"error", err,
				"donor_id", donor.ID)
			continue
		}

		err = s.producer.Enqueue(ctx, queue.AlertTask{
			TaskType:  queue.TaskTypeDonorAlert,
			BridgeID:  bridge.ID,
			RequestID: req.ID,
			DonorID:   donor.ID,
			To:        donor.Phone,
			Text:      text,
		})
		if err != nil {
			// The bridge exists; the donor just won't hear about it until a
			// coordinator follows up. Logged, not rolled back.
			slog.ErrorContext(ctx, "alert enqueue failed for donor",
				"error", err,
				"donor_id", donor.ID,
				"bridge_id", bridge.ID)
		}
	}

	slog.InfoContext(ctx, "notification fan-out complete",
		"attempted", attempted,
		"blood_group", req.BloodGroup,
	)
	return attempted
}

// AlertText is the outbound donor alert naming the need and the reply
// protocol.
func AlertText(req *model.Request) string {
	return fmt.Sprintf("🚨 Emergency: %s blood needed at %s.\nCan you donate today?\nReply \"1\" for Yes or \"2\" for No.",
		req.BloodGroup, req.Location)
}
