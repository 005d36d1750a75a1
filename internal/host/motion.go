package host

import (
	"os"
	"strconv"
	"strings"

	"github.com/verte-zerg/marquee/internal/marquee"
)

// MotionPreference holds the reduced-motion setting and notifies
// subscribers when it changes. It is not safe for concurrent use; changes
// from other goroutines must be delivered through the UI loop.
type MotionPreference struct {
	reduced bool
	subs    map[int]func(bool)
	nextID  int
}

// NewMotionPreference returns a preference with the initial value.
func NewMotionPreference(reduced bool) *MotionPreference {
	return &MotionPreference{reduced: reduced, subs: map[int]func(bool){}}
}

// ReducedMotion implements marquee.MotionPreference.
func (p *MotionPreference) ReducedMotion() bool {
	return p.reduced
}

// Subscribe implements marquee.MotionPreference.
func (p *MotionPreference) Subscribe(onChange func(bool)) marquee.CancelFunc {
	if onChange == nil {
		return func() {}
	}
	id := p.nextID
	p.nextID++
	p.subs[id] = onChange
	return func() {
		delete(p.subs, id)
	}
}

// Subscribers returns the number of active subscriptions.
func (p *MotionPreference) Subscribers() int {
	return len(p.subs)
}

// Set updates the preference.
func (p *MotionPreference) Set(reduced bool) {
	if reduced == p.reduced {
		return
	}
	p.reduced = reduced
	for _, fn := range p.subs {
		fn(reduced)
	}
}

// Toggle flips the preference.
func (p *MotionPreference) Toggle() {
	p.Set(!p.reduced)
}

// ReducedMotionFromEnv reads MARQUEE_REDUCED_MOTION, then REDUCE_MOTION.
// ok is false when neither is set to a recognised value.
func ReducedMotionFromEnv() (reduced, ok bool) {
	for _, key := range []string{"MARQUEE_REDUCED_MOTION", "REDUCE_MOTION"} {
		if v, found := parseMotionValue(os.Getenv(key)); found {
			return v, true
		}
	}
	return false, false
}

func parseMotionValue(raw string) (bool, bool) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	switch raw {
	case "":
		return false, false
	case "reduce", "reduced":
		return true, true
	case "no-preference":
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
