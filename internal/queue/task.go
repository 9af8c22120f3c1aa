package queue

type TaskType string

const (
	// TaskTypeDonorAlert is an outbound donor alert produced by the
	// notification fan-out for a newly created bridge.
	TaskTypeDonorAlert TaskType = "donor_alert"
)

// AlertTask carries everything the dispatch worker needs to deliver one
// donor alert. Delivery is at-least-once; bridge creation already happened
// on the producer side, so a redelivered task only re-sends text.
type AlertTask struct {
	TaskType  TaskType
	BridgeID  int64
	RequestID int64
	DonorID   int64
	To        string // normalized donor phone
	Text      string
	Attempt   int
	TraceID   *string
}
