package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"bloodbridge.app/engage/common/id"
	"bloodbridge.app/engage/common/logger"
	"bloodbridge.app/engage/common/phone"
	"bloodbridge.app/engage/internal/bot"
	"bloodbridge.app/engage/internal/channel"
	"bloodbridge.app/engage/internal/model"
	"bloodbridge.app/engage/internal/store"
)

const helpText = `Hi! I'm the BloodBridge bot. Try:
• donate         (opt-in for alerts)
• BG B+          (set blood group)
• LOC Pune       (set location)
• request B+ Pune 2 urgent
Reply 1=Yes, 2=No when you get an alert.
Type help to see this again.`

const (
	replyOptedIn         = "You're opted in ✅\nNow send:\n• BG B+\n• LOC Pune"
	replyInvalidGroup    = "Please specify a valid blood group (e.g., A+, O-, B+, AB+)."
	replyNoRequests      = "No recent requests found."
	replyConfirmed       = "🙏 Thank you for confirming! Our coordinator will reach out."
	replyNothingPending  = "Thanks! No pending requests for you right now."
	replyDeclined        = "No worries—thanks for responding!"
	replyRankingTrouble  = "We had trouble ranking donors right now. Please try again shortly."
	replyGenericTrouble  = "Sorry, something went wrong there. Please try again shortly."
	channelName          = "whatsapp"
	recentRequestsWindow = 5
)

// Dispatcher drives the conversational protocol: it splits an inbound
// message into command units, executes each against the domain services and
// answers every unit with its own reply.
type Dispatcher interface {
	HandleInbound(ctx context.Context, from, body string) error
}

type dispatcher struct {
	donors    DonorService
	requests  RequestService
	bridges   BridgeService
	ranking   RankingService
	notifier  NotifierService
	messages  store.MessageStore
	sender    channel.Sender
	rankLimit int
}

type DispatcherConfig struct {
	Donors    DonorService
	Requests  RequestService
	Bridges   BridgeService
	Ranking   RankingService
	Notifier  NotifierService
	Messages  store.MessageStore
	Sender    channel.Sender
	RankLimit int
}

func NewDispatcher(cfg DispatcherConfig) Dispatcher {
	limit := cfg.RankLimit
	if limit < 1 {
		limit = defaultRankLimit
	}
	return &dispatcher{
		donors:    cfg.Donors,
		requests:  cfg.Requests,
		bridges:   cfg.Bridges,
		ranking:   cfg.Ranking,
		notifier:  cfg.Notifier,
		messages:  cfg.Messages,
		sender:    cfg.Sender,
		rankLimit: limit,
	}
}

// HandleInbound never returns an error for per-command failures; those are
// converted to user-visible replies so the webhook can always acknowledge.
func (d *dispatcher) HandleInbound(ctx context.Context, from, body string) error {
	sender := phone.Normalize(from)
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "engage.service.dispatcher",
		Phone:     logger.Ptr(sender),
	})

	units := bot.Split(body)
	if len(units) == 0 {
		d.reply(ctx, nil, sender, helpText)
		return nil
	}

	// The identity row must exist before any command in the batch runs.
	user, err := d.donors.EnsureFromPhone(ctx, sender)
	if err != nil {
		slog.ErrorContext(ctx, "failed to ensure user for inbound contact", "error", err)
		d.reply(ctx, nil, sender, replyGenericTrouble)
		return nil
	}

	for _, unit := range units {
		cmd := bot.Classify(unit)
		unitCtx := logger.WithLogFields(ctx, logger.LogFields{
			Intent: logger.Ptr(string(cmd.Kind)),
		})

		d.logMessage(unitCtx, user, model.DirectionIn, unit, string(cmd.Kind))

		replies, err := d.execute(unitCtx, user, sender, cmd)
		if err != nil {
			// One failing unit must never abort the batch.
			slog.ErrorContext(unitCtx, "command unit failed",
				"error", err,
				"unit", logger.Truncate(unit, 120))
			replies = []string{replyGenericTrouble}
		}
		for _, text := range replies {
			d.reply(unitCtx, user, sender, text)
		}
	}

	return nil
}

func (d *dispatcher) execute(ctx context.Context, user *model.User, sender string, cmd bot.Command) ([]string, error) {
	switch cmd.Kind {
	case bot.KindHelp, bot.KindUnknown:
		return []string{helpText}, nil

	case bot.KindDonate:
		if err := d.donors.OptIn(ctx, sender); err != nil {
			return nil, err
		}
		return []string{replyOptedIn}, nil

	case bot.KindSetBloodGroup:
		if err := d.donors.SetBloodGroup(ctx, sender, cmd.BloodGroup); err != nil {
			if errors.Is(err, ErrInvalidBloodGroup) {
				return []string{replyInvalidGroup}, nil
			}
			return nil, err
		}
		return []string{fmt.Sprintf("Blood group set to %s ✅", strings.ToUpper(cmd.BloodGroup))}, nil

	case bot.KindSetLocation:
		if err := d.donors.SetLocation(ctx, sender, cmd.Location); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Location set to %s ✅", cmd.Location)}, nil

	case bot.KindStatus:
		return d.executeStatus(ctx, sender)

	case bot.KindConfirm:
		return d.executeReply(ctx, sender, ReplyConfirm)

	case bot.KindDecline:
		return d.executeReply(ctx, sender, ReplyDecline)

	case bot.KindCreateRequest:
		return d.executeCreateRequest(ctx, user, sender, cmd)
	}

	return []string{helpText}, nil
}

func (d *dispatcher) executeStatus(ctx context.Context, sender string) ([]string, error) {
	reqs, err := d.requests.ListRecentByRequester(ctx, sender, recentRequestsWindow)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return []string{replyNoRequests}, nil
	}

	var b strings.Builder
	b.WriteString("Recent requests:")
	for _, r := range reqs {
		fmt.Fprintf(&b, "\n#%d • %s • %du • %s • %s • %s",
			r.ID, r.BloodGroup, r.Units, r.Urgency, r.Location, r.Status)
	}
	return []string{b.String()}, nil
}

func (d *dispatcher) executeReply(ctx context.Context, sender string, action ReplyAction) ([]string, error) {
	_, err := d.bridges.Resolve(ctx, sender, action)
	if err != nil {
		if errors.Is(err, ErrNoPending) {
			// No-op: acknowledged, no state mutated.
			return []string{replyNothingPending}, nil
		}
		return nil, err
	}

	if action == ReplyConfirm {
		return []string{replyConfirmed}, nil
	}
	return []string{replyDeclined}, nil
}

func (d *dispatcher) executeCreateRequest(ctx context.Context, user *model.User, sender string, cmd bot.Command) ([]string, error) {
	if !model.ValidBloodGroup(cmd.BloodGroup) {
		return []string{replyInvalidGroup}, nil
	}

	req, err := d.requests.Create(ctx, CreateRequestParams{
		RequesterName:  user.Name,
		RequesterPhone: sender,
		BloodGroup:     cmd.BloodGroup,
		Units:          cmd.Units,
		Urgency:        cmd.Urgency,
		Location:       cmd.Location,
	})
	if err != nil {
		return nil, err
	}

	replies := []string{fmt.Sprintf("📝 Request created (ID %d):\n%s at %s, %d units (%s).\nFinding donors...",
		req.ID, req.BloodGroup, req.Location, req.Units, req.Urgency)}

	location := req.Location
	var locFilter *string
	if location != "" && !strings.EqualFold(location, bot.DefaultLocation) {
		locFilter = &location
	}

	ranked, err := d.ranking.Rank(ctx, RankParams{
		BloodGroup: &req.BloodGroup,
		Location:   locFilter,
		Limit:      d.rankLimit,
	})
	if err != nil {
		slog.ErrorContext(ctx, "ranking failed for new request",
			"error", err,
			"request_id", req.ID)
		return append(replies, replyRankingTrouble), nil
	}

	attempted := d.notifier.Fanout(ctx, req, ranked)

	// Attempted count, not delivered count: delivery is async and best-effort.
	return append(replies, fmt.Sprintf("📣 Contacted %d donors. You'll be notified on confirmations.", attempted)), nil
}

// reply sends one outbound message and appends it to the message log.
// Both steps are best-effort: a dead channel or log store never fails the
// inbound webhook.
func (d *dispatcher) reply(ctx context.Context, user *model.User, sender, text string) {
	if err := d.sender.Send(ctx, sender, text); err != nil {
		slog.ErrorContext(ctx, "failed to send reply", "error", err)
	}
	d.logMessage(ctx, user, model.DirectionOut, text, "")
}

func (d *dispatcher) logMessage(ctx context.Context, user *model.User, direction model.Direction, text, intent string) {
	msg := &model.Message{
		ID:        id.New(),
		Channel:   channelName,
		Direction: direction,
		Text:      text,
	}
	if user != nil {
		msg.UserID = &user.ID
	}
	if intent != "" {
		msg.Intent = &intent
	}
	if err := d.messages.Create(ctx, msg); err != nil {
		slog.WarnContext(ctx, "failed to log message", "error", err, "direction", direction)
	}
}
