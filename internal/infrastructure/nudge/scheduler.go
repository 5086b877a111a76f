// Package nudge posts reminders about sheets still awaiting approval on a
// cron schedule.
package nudge

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/events"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/notify"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/render"
)

// maxListed caps how many sheet labels appear in one reminder.
const maxListed = 5

// Source supplies the sheets to remind about. Refresh runs before every
// reminder so a long-running scheduler sees the latest saved session.
type Source interface {
	Refresh(ctx context.Context) error
	Pending() []render.SheetView
}

// Scheduler fires reminders on a standard five-field cron spec.
type Scheduler struct {
	spec      string
	source    Source
	publisher events.Publisher
	notifier  notify.Notifier
	logger    *zap.Logger
}

// New validates spec and returns a scheduler. Publisher and notifier may be
// nil.
func New(spec string, source Source, publisher events.Publisher, notifier notify.Notifier, logger *zap.Logger) (*Scheduler, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("nudge schedule is empty")
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid nudge schedule %q: %w", spec, err)
	}
	if notifier == nil {
		notifier = notify.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		spec:      spec,
		source:    source,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
	}, nil
}

// Run starts the cron loop and blocks until ctx is done. A reminder that is
// running when ctx ends is allowed to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(s.spec, func() { s.Nudge(ctx) }); err != nil {
		return fmt.Errorf("schedule nudge: %w", err)
	}

	c.Start()
	s.logger.Info("nudge scheduled", zap.String("schedule", s.spec))
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}

// Nudge sends one reminder when any sheet is still pending. It reports
// whether a reminder went out.
func (s *Scheduler) Nudge(ctx context.Context) bool {
	if err := s.source.Refresh(ctx); err != nil {
		s.logger.Warn("nudge refresh failed", zap.Error(err))
	}
	pending := s.source.Pending()
	if len(pending) == 0 {
		s.logger.Debug("nothing awaiting review")
		return false
	}

	msg := Message(pending)
	s.notifier.Notify(notify.New(notify.SeverityInfo, msg))
	if s.publisher != nil {
		e := events.New(events.TypeReviewNudge, msg).WithMeta("pending", fmt.Sprint(len(pending)))
		if err := s.publisher.Publish(e); err != nil {
			s.logger.Warn("nudge publish failed", zap.Error(err))
		}
	}
	return true
}

// Message summarises the pending sheets, e.g.
// "3 sheet(s) awaiting review: A1.1 (reviewing), A1.2 (detected), ...".
func Message(pending []render.SheetView) string {
	labels := make([]string, 0, maxListed)
	for i, v := range pending {
		if i == maxListed {
			labels = append(labels, fmt.Sprintf("and %d more", len(pending)-maxListed))
			break
		}
		labels = append(labels, fmt.Sprintf("%s (%s)", v.DetailOrPlaceholder(), v.Status))
	}
	return fmt.Sprintf("%d sheet(s) awaiting review: %s", len(pending), strings.Join(labels, ", "))
}
