package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"bloodbridge.app/engage/common/logger"
	"bloodbridge.app/engage/internal/model"
	"bloodbridge.app/engage/internal/oracle"
	"bloodbridge.app/engage/internal/store"
)

// Composite score weights. Propensity dominates; a matching location and a
// recent donation nudge the ordering.
const (
	weightPropensity = 0.6
	weightLocation   = 0.3
	weightRecency    = 0.1

	// recencyWindowDays is the span over which a past donation decays from
	// full weight to none.
	recencyWindowDays = 180

	// overFetchFactor leaves room for re-ranking after composite scoring.
	overFetchFactor = 3

	defaultRankLimit = 5
)

type RankParams struct {
	BloodGroup *string
	Location   *string
	Limit      int
}

// RankedDonor is one candidate with its composite score.
type RankedDonor struct {
	model.User
	Score float64 `json:"score"`
}

type RankingService interface {
	// Rank returns eligible donors ordered by composite score, best first.
	// Oracle failures degrade to neutral scoring and never surface; store
	// failures do.
	Rank(ctx context.Context, params RankParams) ([]RankedDonor, error)
}

type rankingService struct {
	userStore store.UserStore
	scorer    oracle.Scorer
}

func NewRankingService(userStore store.UserStore, scorer oracle.Scorer) RankingService {
	return &rankingService{
		userStore: userStore,
		scorer:    scorer,
	}
}

func (s *rankingService) Rank(ctx context.Context, params RankParams) ([]RankedDonor, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "engage.service.ranking",
	})

	limit := params.Limit
	if limit < 1 {
		limit = defaultRankLimit
	}

	candidates, err := s.userStore.ListCandidates(ctx, store.CandidateFilter{
		BloodGroup: params.BloodGroup,
		Location:   params.Location,
		Limit:      limit * overFetchFactor,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching candidates: %w", err)
	}

	// Fallback: a narrow location filter must not hide donors of the right
	// blood group. Retry unfiltered before giving up.
	if len(candidates) == 0 && params.Location != nil && *params.Location != "" {
		slog.DebugContext(ctx, "no candidates for location, retrying without filter",
			"location", *params.Location)
		candidates, err = s.userStore.ListCandidates(ctx, store.CandidateFilter{
			BloodGroup: params.BloodGroup,
			Limit:      limit * overFetchFactor,
		})
		if err != nil {
			return nil, fmt.Errorf("fetching candidates without location: %w", err)
		}
	}

	ranked := make([]RankedDonor, 0, len(candidates))
	for i := range candidates {
		donor := candidates[i]
		propensity := s.propensity(ctx, &donor)
		score := compositeScore(propensity, sameLocation(&donor, params.Location), donor.DaysSinceLastDonation)
		ranked = append(ranked, RankedDonor{User: donor, Score: score})
	}

	// Stable sort: ties keep the fetch order (stored propensity, then
	// recency of creation).
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// propensity returns the donor's stored oracle score, opportunistically
// calling the oracle when it is missing. Any oracle failure degrades to a
// neutral 0 rather than failing the ranking call.
func (s *rankingService) propensity(ctx context.Context, donor *model.User) float64 {
	if donor.PropensityScore != nil && *donor.PropensityScore > 0 {
		return *donor.PropensityScore
	}

	pred, err := s.scorer.Predict(ctx, oracle.FeaturesForUser(donor))
	if err != nil {
		slog.DebugContext(ctx, "oracle unavailable, using neutral score",
			"error", err,
			"donor_id", donor.ID)
		return 0
	}

	// Persist the fresh score so the next ranking skips the oracle call.
	// Best-effort: a write failure only costs a future recomputation.
	if err := s.userStore.SetPropensityScore(ctx, donor.ID, pred.Score); err != nil {
		slog.WarnContext(ctx, "failed to persist propensity score",
			"error", err,
			"donor_id", donor.ID)
	}

	return pred.Score
}

func sameLocation(donor *model.User, requested *string) float64 {
	if requested == nil || *requested == "" || donor.Location == nil {
		return 0
	}
	if strings.Contains(strings.ToLower(*donor.Location), strings.ToLower(*requested)) {
		return 1
	}
	return 0
}

// recencyFactor maps days-since-last-donation onto [0,1]: 1 for a donation
// today, linearly down to 0 at 180+ days, 0 when unknown.
func recencyFactor(daysSince *int) float64 {
	if daysSince == nil {
		return 0
	}
	return math.Max(0, math.Min(1, 1-float64(*daysSince)/recencyWindowDays))
}

// compositeScore blends the signals and rounds to 2 decimal places for
// display stability.
func compositeScore(propensity, locationMatch float64, daysSince *int) float64 {
	score := weightPropensity*propensity +
		weightLocation*locationMatch +
		weightRecency*recencyFactor(daysSince)
	return math.Round(score*100) / 100
}
