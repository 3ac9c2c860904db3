package scanner

// DefaultConfirmationFrames is how many consecutive frames must carry the same
// valid value before it is confirmed: the first sighting plus five repeats.
const DefaultConfirmationFrames = 6

// Detection is one barcode found in a frame by the external detector.
type Detection struct {
	Value  string `json:"value"`
	Box    Rect   `json:"box"`
	Format string `json:"format,omitempty"`
}

// Observer receives every state a Processor emits.
type Observer func(State)

// Config tunes a Processor. Zero values fall back to the defaults.
type Config struct {
	ConfirmationFrames int
	MinAreaRatio       float64
}

// Processor aggregates detections across frames for one scan session. It is
// not safe for concurrent use; feed it one frame at a time.
type Processor struct {
	validator  Validator
	threshold  int
	observer   Observer
	active     bool
	frameCount int
	lastValue  string
	hasLast    bool
}

// NewProcessor returns an active Processor. observer may be nil.
func NewProcessor(cfg Config, observer Observer) *Processor {
	threshold := cfg.ConfirmationFrames
	if threshold <= 0 {
		threshold = DefaultConfirmationFrames
	}
	ratio := cfg.MinAreaRatio
	if ratio <= 0 {
		ratio = DefaultMinAreaRatio
	}
	return &Processor{
		validator: Validator{MinAreaRatio: ratio},
		threshold: threshold,
		observer:  observer,
		active:    true,
	}
}

// SetActive gates processing. Deactivating forgets the current candidate so a
// later activation starts from Sense.
func (p *Processor) SetActive(active bool) {
	if !active {
		p.reset()
	}
	p.active = active
}

func (p *Processor) Active() bool { return p.active }

// FrameCount is the number of consecutive frames the current candidate was seen.
func (p *Processor) FrameCount() int { return p.frameCount }

// Process consumes one frame. It returns the emitted state and true, or a zero
// State and false when the processor is inactive and nothing was emitted.
func (p *Processor) Process(detections []Detection, transform Transform, scannerBox Rect) (State, bool) {
	if !p.active {
		return State{}, false
	}
	if transform == nil {
		transform = Identity
	}

	candidate, ok := p.candidate(detections, transform, scannerBox)
	if !ok {
		p.reset()
		return p.emit(SenseState()), true
	}

	// A new value always starts at Recognize, whatever the threshold.
	if !p.hasLast || candidate.Value != p.lastValue {
		p.lastValue = candidate.Value
		p.hasLast = true
		p.frameCount = 1
		return p.emit(RecognizeState(candidate.Value)), true
	}

	p.frameCount++
	if p.frameCount >= p.threshold {
		return p.emit(CommunicateState(candidate.Value)), true
	}
	return p.emit(RecognizeState(candidate.Value)), true
}

// candidate picks the first detection, in input order, that passes both checks.
func (p *Processor) candidate(detections []Detection, transform Transform, scannerBox Rect) (Detection, bool) {
	for _, d := range detections {
		box := transform(d.Box)
		if p.validator.IsLargeEnough(scannerBox, box) && p.validator.IsInsideScannerBox(scannerBox, box) {
			return d, true
		}
	}
	return Detection{}, false
}

func (p *Processor) reset() {
	p.frameCount = 0
	p.lastValue = ""
	p.hasLast = false
}

func (p *Processor) emit(s State) State {
	if p.observer != nil {
		p.observer(s)
	}
	return s
}
