package report

// ProgressKind tells what a Progress value describes
type ProgressKind int

const (
	// ProgressStarted opens a unit of work with its total, when known
	ProgressStarted ProgressKind = iota
	// ProgressStep advances Current within the unit
	ProgressStep
	// ProgressPartUploaded reports one completed multipart part
	ProgressPartUploaded
	// ProgressPartFailed reports one failed multipart part
	ProgressPartFailed
	// ProgressCompleted closes the unit successfully
	ProgressCompleted
	// ProgressFailed closes the unit with an error
	ProgressFailed
)

// Progress is one progress event of a pipeline or sync run. Name
// identifies the unit (a member name or cloud key), Current/Total
// carry byte or item counts depending on the producer.
type Progress struct {
	Kind    ProgressKind
	Name    string
	Current int64
	Total   int64
	Err     error
}

// Publish sends p on ch. A nil channel discards the event, so
// producers never need to guard their sends.
func Publish(ch chan<- Progress, p Progress) {
	if ch == nil {
		return
	}
	ch <- p
}
