// Package rotation picks which symbol the chart shows each tick.
package rotation

// Action is what the history store must do for the charted symbol.
type Action int

const (
	Skip Action = iota
	Initialize
	Append
)

func (a Action) String() string {
	switch a {
	case Initialize:
		return "initialize"
	case Append:
		return "append"
	default:
		return "skip"
	}
}

// Step is the decision for one tick.
type Step struct {
	Symbol string
	Action Action
	Reason string
}

// Controller tracks the charted symbol and the position in rotation order.
type Controller struct {
	active string
	index  int
}

// NewController returns a controller with no active symbol at index 0.
func NewController() *Controller {
	return &Controller{}
}

// Next decides this tick's charted symbol from the snapshot's symbol order.
// reopened forces a full initialize after the session comes back. An empty
// order yields Skip and changes nothing.
func (c *Controller) Next(symbols []string, reopened bool) Step {
	if len(symbols) == 0 {
		return Step{Action: Skip, Reason: "empty snapshot"}
	}
	scheduled := symbols[c.index%len(symbols)]

	switch {
	case c.active == "":
		c.active = scheduled
		return Step{Symbol: scheduled, Action: Initialize, Reason: "no active symbol"}
	case !contains(symbols, c.active):
		c.active = scheduled
		return Step{Symbol: scheduled, Action: Initialize, Reason: "active symbol vanished"}
	case reopened:
		c.active = scheduled
		return Step{Symbol: scheduled, Action: Initialize, Reason: "session reopened"}
	case scheduled != c.active:
		c.active = scheduled
		return Step{Symbol: scheduled, Action: Initialize, Reason: "rotated"}
	default:
		return Step{Symbol: c.active, Action: Append}
	}
}

// Advance moves to the next position after the tick has rendered.
func (c *Controller) Advance(n int) {
	if n <= 0 {
		return
	}
	c.index = (c.index + 1) % n
}

// Release forgets the active symbol so the next step initializes.
func (c *Controller) Release() {
	c.active = ""
}

// Active returns the charted symbol, or "" when none.
func (c *Controller) Active() string { return c.active }

// Index returns the rotation position.
func (c *Controller) Index() int { return c.index }

func contains(symbols []string, s string) bool {
	for _, sym := range symbols {
		if sym == s {
			return true
		}
	}
	return false
}
