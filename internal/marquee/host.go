package marquee

// CancelFunc releases a host subscription.
type CancelFunc func()

// FrameFunc receives a frame timestamp and the delta since the previous
// frame, both in milliseconds.
type FrameFunc func(timestampMs, deltaMs float64)

// Element is a host node that can be measured or observed.
type Element interface {
	ElementID() string
}

// Sample is a scroll offset observed at a point in time.
type Sample struct {
	TimestampMs float64
	OffsetPx    float64
}

// FrameScheduler calls onFrame before every repaint until cancelled.
type FrameScheduler interface {
	Start(onFrame FrameFunc) CancelFunc
}

// SizeObserver reports the rendered width of an element whenever it changes.
type SizeObserver interface {
	ObserveSize(el Element, onResize func(width float64)) CancelFunc
}

// IntersectionObserver reports whether an element intersects the viewport
// grown by margin on each side.
type IntersectionObserver interface {
	ObserveIntersection(el Element, margin float64, onChange func(visible bool)) CancelFunc
}

// MotionPreference mirrors the user's reduced-motion setting.
type MotionPreference interface {
	ReducedMotion() bool
	Subscribe(onChange func(reduced bool)) CancelFunc
}

// ScrollSource streams scroll offsets of the chosen scroll container.
type ScrollSource interface {
	SubscribeScroll(onSample func(Sample)) CancelFunc
}

// Host bundles the collaborators an Engine subscribes to. Nil providers are
// skipped.
type Host struct {
	Frames        FrameScheduler
	Sizes         SizeObserver
	Intersections IntersectionObserver
	Motion        MotionPreference
	Scroll        ScrollSource

	// Copy is one rendered copy of the content.
	Copy Element
	// Container is the outer element used for visibility.
	Container Element
}
