// Package bot holds the conversational command grammar: a fixed, small set
// of commands recognized from inbound free text.
package bot

// Kind tags the classified command variant.
type Kind string

const (
	KindHelp          Kind = "help"
	KindDonate        Kind = "donate"
	KindSetBloodGroup Kind = "set-blood-group"
	KindSetLocation   Kind = "set-location"
	KindStatus        Kind = "status"
	KindConfirm       Kind = "confirm"
	KindDecline       Kind = "decline"
	KindCreateRequest Kind = "create-request"
	KindUnknown       Kind = "unrecognized"
)

// Command is one classified command unit. Only the fields relevant to the
// Kind are populated.
type Command struct {
	Kind Kind
	Raw  string

	// KindSetBloodGroup and KindCreateRequest
	BloodGroup string

	// KindSetLocation and KindCreateRequest
	Location string

	// KindCreateRequest
	Units   int
	Urgency string
}
