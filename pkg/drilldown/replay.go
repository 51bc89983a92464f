package drilldown

type Action string

const (
	ActionOpen     Action = "open"
	ActionSelect   Action = "select"
	ActionDescend  Action = "descend"
	ActionNavigate Action = "navigate"
	ActionClose    Action = "close"
)

// Step is one serialised navigator call.
type Step struct {
	Action   Action `json:"action"`
	Category string `json:"category,omitempty"`
	Number   int    `json:"number,omitempty"`
	Index    int    `json:"index,omitempty"`
}

// Replay applies steps in order and stops at the first rejected one. It
// returns the navigator after the last accepted step and how many steps were
// applied.
func (n Navigator) Replay(steps []Step) (Navigator, int) {
	current := n
	for i, step := range steps {
		next, ok := current.apply(step)
		if !ok {
			return current, i
		}
		current = next
	}
	return current, len(steps)
}

func (n Navigator) apply(step Step) (Navigator, bool) {
	switch step.Action {
	case ActionOpen:
		return n.Open(step.Category)
	case ActionSelect:
		return n.SelectArea(step.Number)
	case ActionDescend:
		return n.Descend(step.Number)
	case ActionNavigate:
		return n.NavigateTo(step.Index)
	case ActionClose:
		return n.Close(), true
	}
	return n, false
}
