package jackroute

// Stage is a step of one activation. Every activation passes through all of
// them in order.
type Stage int

const (
	StageStarted Stage = iota
	StageAwaitingTarget
	StageEnumerating
	StageResolving
	StageConnecting
	StageReporting
	StageDone
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageStarted:
		return "started"
	case StageAwaitingTarget:
		return "awaiting-target"
	case StageEnumerating:
		return "enumerating"
	case StageResolving:
		return "resolving"
	case StageConnecting:
		return "connecting"
	case StageReporting:
		return "reporting"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}
