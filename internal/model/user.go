package model

import (
	"regexp"
	"time"
)

// User is a contact known to the system. Donors are users with OptedIn set;
// requesters are created the same way on first inbound contact.
type User struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	Phone            string  `json:"phone_e164"`
	BloodGroup       *string `json:"blood_group,omitempty"`
	Location         *string `json:"location,omitempty"`
	OptedIn          bool    `json:"wa_opt_in"`
	PreferredChannel string  `json:"preferred_channel"`
	Gender           *string `json:"gender,omitempty"`

	// Oracle feature fields. PropensityScore is the precomputed oracle
	// output in [0,1]; the rest are the raw features sent on rescoring.
	PropensityScore       *float64 `json:"ml_score,omitempty"`
	DaysSinceLastDonation *int     `json:"days_since_last_donation,omitempty"`
	FrequencyInDays       *float64 `json:"frequency_in_days,omitempty"`
	CallsToDonationsRatio *float64 `json:"calls_to_donations_ratio,omitempty"`
	DonatedEarlier        bool     `json:"donated_earlier"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var bloodGroupRe = regexp.MustCompile(`^(A|B|AB|O)[+-]$`)

// ValidBloodGroup reports whether s is one of the 8 recognized groups.
// Callers are expected to upper-case first.
func ValidBloodGroup(s string) bool {
	return bloodGroupRe.MatchString(s)
}
