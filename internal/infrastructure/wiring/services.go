package wiring

import (
	"context"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/application"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/events"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/notify"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/infrastructure/metrics"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/parse"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/storage"
)

// AppServices exposes the application layer services wired together with a workspace.
type AppServices struct {
	Workspace  *Workspace
	Controller *application.SessionController
	Workflow   *application.WorkflowService
	Export     *application.ExportService
	Charts     *application.ChartService
	Parser     *parse.Client
	Metrics    *metrics.Metrics
	Flash      *notify.Queue
	Events     *events.InMemoryPublisher
}

// BuildAppServices constructs the controller and its services for a
// workspace. Notices go to the flash queue and to notifier when non-nil.
// Published events are forwarded to the workspace's messaging adapters
// until ctx is done.
func BuildAppServices(ctx context.Context, ws *Workspace, notifier notify.Notifier) *AppServices {
	logger := ws.Logger
	flash := notify.NewQueue()
	sinks := notify.Multi{flash}
	if notifier != nil {
		sinks = append(sinks, notifier)
	}

	publisher := events.NewInMemoryPublisher()
	publisher.Subscribe(ws.Messaging.Handler(ctx, logger.Named("messaging")))

	parser := parse.NewClient(ws.Config.Parse.URL,
		parse.WithTimeout(ws.Config.Parse.Timeout),
		parse.WithLogger(logger.Named("parse")))
	m := metrics.New()

	ctrl := application.NewSessionController(application.Deps{
		Parser:     parser,
		Sessions:   storage.NewSessionRepository(ws.Store, logger),
		Workflows:  storage.NewWorkflowRepository(ws.Store, logger),
		Selections: storage.NewSelectionRepository(ws.Store, logger),
		Notifier:   sinks,
		Publisher:  publisher,
		Observer:   m,
		Logger:     logger,
		MaxAge:     ws.Config.Session.MaxAge,
	})

	return &AppServices{
		Workspace:  ws,
		Controller: ctrl,
		Workflow:   application.NewWorkflowService(ctrl),
		Export:     application.NewExportService(ctrl),
		Charts:     application.NewChartService(ctrl),
		Parser:     parser,
		Metrics:    m,
		Flash:      flash,
		Events:     publisher,
	}
}
