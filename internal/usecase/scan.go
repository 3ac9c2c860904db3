package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/medkit-app/medkit/internal/database"
	"github.com/medkit-app/medkit/internal/inventory"
	"github.com/medkit-app/medkit/internal/scanner"
	"github.com/medkit-app/medkit/internal/services"
)

// TargetKind says what a confirmed barcode refers to.
type TargetKind string

const (
	TargetSupply    TargetKind = "supply"
	TargetContainer TargetKind = "container"
	TargetUnknown   TargetKind = "unknown"
)

// ScanTarget is the inventory record behind a confirmed barcode.
type ScanTarget struct {
	Kind      TargetKind               `json:"kind"`
	Barcode   string                   `json:"barcode"`
	Supply    *inventory.SupplyView    `json:"supply,omitempty"`
	Container *inventory.ContainerView `json:"container,omitempty"`
}

// ScanEvent is what one frame produced. Target is set only on the frame where
// a value is first confirmed.
type ScanEvent struct {
	SessionID string        `json:"session_id"`
	Frame     int           `json:"frame"`
	State     scanner.State `json:"-"`
	Phase     string        `json:"phase"`
	Value     string        `json:"value,omitempty"`
	Target    *ScanTarget   `json:"target,omitempty"`
}

// ScanSession feeds frames through a barcode processor and looks confirmed
// barcodes up in the inventory, once per confirmation.
type ScanSession struct {
	id         string
	processor  *scanner.Processor
	supplies   *services.SupplyService
	containers *services.ContainerService
	logger     *slog.Logger
	now        func() time.Time

	frames int

	// resolvedValue was looked up during the current Communicate run.
	resolved      bool
	resolvedValue string
}

func NewScanSession(dbCtx *database.Context, cfg scanner.Config, logger *slog.Logger) *ScanSession {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	return &ScanSession{
		id:         id,
		processor:  scanner.NewProcessor(cfg, nil),
		supplies:   services.NewSupplyService(dbCtx),
		containers: services.NewContainerService(dbCtx),
		logger:     logger.With("system", "scan", "session_id", id),
		now:        time.Now,
	}
}

func (s *ScanSession) ID() string { return s.id }

// SetActive pauses or resumes the session. Pausing drops any partial confirmation.
func (s *ScanSession) SetActive(active bool) {
	s.processor.SetActive(active)
	if !active {
		s.resolved, s.resolvedValue = false, ""
	}
}

// HandleFrame processes one frame. The bool is false when the session is paused.
func (s *ScanSession) HandleFrame(ctx context.Context, detections []scanner.Detection, transform scanner.Transform, scannerBox scanner.Rect) (ScanEvent, bool, error) {
	s.frames++

	state, emitted := s.processor.Process(detections, transform, scannerBox)
	if !emitted {
		return ScanEvent{}, false, nil
	}
	event, err := s.handleState(ctx, state)
	return event, true, err
}

func (s *ScanSession) handleState(ctx context.Context, state scanner.State) (ScanEvent, error) {
	event := ScanEvent{
		SessionID: s.id,
		Frame:     s.frames,
		State:     state,
		Phase:     state.Phase.String(),
		Value:     state.Value,
	}

	if state.Phase != scanner.Communicate {
		s.resolved, s.resolvedValue = false, ""
		return event, nil
	}
	if s.resolved && state.Value == s.resolvedValue {
		return event, nil
	}

	target, err := s.resolve(ctx, state.Value)
	if err != nil {
		s.logger.Error("barcode lookup failed", "barcode", state.Value, "error", err)
		return event, err
	}
	s.resolved, s.resolvedValue = true, state.Value
	event.Target = target
	s.logger.Info("barcode confirmed", "barcode", state.Value, "kind", target.Kind, "frame", s.frames)

	return event, nil
}

func (s *ScanSession) resolve(ctx context.Context, barcode string) (*ScanTarget, error) {
	detail, err := s.supplies.Get(ctx, barcode)
	switch {
	case err == nil:
		view := inventory.NewSupplyDetailView(detail, s.now())
		return &ScanTarget{Kind: TargetSupply, Barcode: barcode, Supply: &view}, nil
	case !errors.Is(err, services.ErrNotFound):
		return nil, fmt.Errorf("failed to look up supply: %w", err)
	}

	container, err := s.containers.Get(ctx, barcode)
	switch {
	case err == nil:
		contents, err := s.supplies.ListByContainer(ctx, barcode)
		if err != nil {
			return nil, fmt.Errorf("failed to list container supplies: %w", err)
		}
		view := inventory.ContainerView{Barcode: container.Barcode, Name: container.Name, Supplies: len(contents)}
		return &ScanTarget{Kind: TargetContainer, Barcode: barcode, Container: &view}, nil
	case !errors.Is(err, services.ErrNotFound):
		return nil, fmt.Errorf("failed to look up container: %w", err)
	}

	return &ScanTarget{Kind: TargetUnknown, Barcode: barcode}, nil
}
