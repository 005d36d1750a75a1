package marquee

// WidthObserver holds the measured width of one copy. The width is 0 until
// the host reports a measurement and keeps its last known value afterwards.
type WidthObserver struct {
	width    float64
	cancel   CancelFunc
	onChange func(width float64)
}

// NewWidthObserver returns an observer that calls onChange after each
// accepted measurement. onChange may be nil.
func NewWidthObserver(onChange func(width float64)) *WidthObserver {
	return &WidthObserver{onChange: onChange}
}

// Attach subscribes to size changes of el.
func (w *WidthObserver) Attach(obs SizeObserver, el Element) {
	if obs == nil || el == nil || w.cancel != nil {
		return
	}
	w.cancel = obs.ObserveSize(el, w.set)
}

// Detach stops observing. The last width is kept.
func (w *WidthObserver) Detach() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.cancel = nil
}

// Width returns the last measured width.
func (w *WidthObserver) Width() float64 {
	return w.width
}

func (w *WidthObserver) set(width float64) {
	if width < 0 || !finite(width) || width == w.width {
		return
	}
	w.width = width
	if w.onChange != nil {
		w.onChange(width)
	}
}

// VisibilityGate tracks whether the container is near the viewport.
type VisibilityGate struct {
	visible  bool
	margin   float64
	cancel   CancelFunc
	onChange func(visible bool)
}

// NewVisibilityGate returns a gate that is closed until the host reports.
func NewVisibilityGate(margin float64, onChange func(visible bool)) *VisibilityGate {
	return &VisibilityGate{margin: margin, onChange: onChange}
}

// Attach subscribes to intersection changes of el.
func (g *VisibilityGate) Attach(obs IntersectionObserver, el Element) {
	if obs == nil || el == nil || g.cancel != nil {
		return
	}
	g.cancel = obs.ObserveIntersection(el, g.margin, g.set)
}

// Detach unsubscribes from the host.
func (g *VisibilityGate) Detach() {
	if g.cancel == nil {
		return
	}
	g.cancel()
	g.cancel = nil
}

// Visible reports the last intersection state.
func (g *VisibilityGate) Visible() bool {
	return g.visible
}

func (g *VisibilityGate) set(visible bool) {
	if visible == g.visible {
		return
	}
	g.visible = visible
	if g.onChange != nil {
		g.onChange(visible)
	}
}

// MotionFlag mirrors the reduced-motion preference.
type MotionFlag struct {
	reduced  bool
	cancel   CancelFunc
	onChange func(reduced bool)
}

// NewMotionFlag returns a flag that reads false until attached.
func NewMotionFlag(onChange func(reduced bool)) *MotionFlag {
	return &MotionFlag{onChange: onChange}
}

// Attach reads the current preference and subscribes to changes.
func (f *MotionFlag) Attach(pref MotionPreference) {
	if pref == nil || f.cancel != nil {
		return
	}
	f.reduced = pref.ReducedMotion()
	f.cancel = pref.Subscribe(f.set)
}

// Detach unsubscribes from the preference.
func (f *MotionFlag) Detach() {
	if f.cancel == nil {
		return
	}
	f.cancel()
	f.cancel = nil
}

// Reduced reports whether reduced motion is preferred.
func (f *MotionFlag) Reduced() bool {
	return f.reduced
}

func (f *MotionFlag) set(reduced bool) {
	if reduced == f.reduced {
		return
	}
	f.reduced = reduced
	if f.onChange != nil {
		f.onChange(reduced)
	}
}
