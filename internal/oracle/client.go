// Package oracle is the client for the external predictive-scoring service.
// The service predicts the likelihood that a donor will donate if contacted.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"bloodbridge.app/engage/internal/model"
)

// Features is the flat feature object sent to POST /predict.
// Any field may be null; the model tolerates missing features.
type Features struct {
	FrequencyInDays       *float64 `json:"frequency_in_days"`
	CallsToDonationsRatio *float64 `json:"calls_to_donations_ratio"`
	DaysSinceLastDonation *float64 `json:"days_since_last_donation"`
	DonatedEarlier        int      `json:"donated_earlier"`
	BloodGroup            *string  `json:"blood_group"`
	Gender                *string  `json:"gender"`
}

// Prediction is the oracle's response body.
type Prediction struct {
	Score float64 `json:"score"`
	Label int     `json:"label"`
}

// Scorer predicts donation propensity for a donor feature set.
// Callers must treat any error as "no signal" and degrade to a neutral score.
type Scorer interface {
	Predict(ctx context.Context, features Features) (*Prediction, error)
}

type client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a Scorer against the given base URL with a bounded
// per-call timeout so a slow oracle cannot stall ranking.
func NewClient(baseURL string, timeout time.Duration) Scorer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *client) Predict(ctx context.Context, features Features) (*Prediction, error) {
	body, err := json.Marshal(features)
	if err != nil {
		return nil, fmt.Errorf("encoding features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling oracle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("oracle returned status %d", resp.StatusCode)
	}

	var pred Prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return nil, fmt.Errorf("decoding oracle response: %w", err)
	}

	if pred.Score < 0 || pred.Score > 1 {
		return nil, fmt.Errorf("oracle score %v out of range", pred.Score)
	}

	return &pred, nil
}

// FeaturesForUser maps a donor row onto the oracle's feature contract.
func FeaturesForUser(u *model.User) Features {
	f := Features{
		FrequencyInDays:       u.FrequencyInDays,
		CallsToDonationsRatio: u.CallsToDonationsRatio,
		BloodGroup:            u.BloodGroup,
		Gender:                u.Gender,
	}
	if u.DaysSinceLastDonation != nil {
		d := float64(*u.DaysSinceLastDonation)
		f.DaysSinceLastDonation = &d
	}
	if u.DonatedEarlier {
		f.DonatedEarlier = 1
	}
	return f
}
