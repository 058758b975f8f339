package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	types "github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/domain/workflow"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/mailer"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/realtime"
)

// WorkflowNotifier fans committed workflow changes out to realtime channels
// and email. Failures are logged, never returned.
type WorkflowNotifier interface {
	ClientOnboarded(ctx context.Context, client *types.User, project *types.Project)
	TaskStatusChanged(ctx context.Context, task *types.Task, previous types.TaskStatus, project *types.Project, progressChanged bool)
	// Wait blocks until queued welcome mails have been attempted.
	Wait()
}

type workflowNotifier struct {
	log         *logger.Logger
	emit        SSEEmitter
	mail        mailer.Mailer
	mailTimeout time.Duration
	pending     sync.WaitGroup
}

func NewWorkflowNotifier(log *logger.Logger, emit SSEEmitter, mail mailer.Mailer) WorkflowNotifier {
	return &workflowNotifier{
		log:         log.With("service", "WorkflowNotifier"),
		emit:        emit,
		mail:        mail,
		mailTimeout: 10 * time.Second,
	}
}

func (n *workflowNotifier) ClientOnboarded(ctx context.Context, client *types.User, project *types.Project) {
	if client == nil || project == nil {
		return
	}
	for _, ch := range []string{realtime.AdminChannel, realtime.TeamChannel} {
		n.send(ctx, realtime.SSEMessage{
			Channel: ch,
			Event:   realtime.SSEEventClientOnboarded,
			Data: map[string]any{
				"client":  types.Sanitize(client),
				"project": workflow.NewProjectView(project),
			},
		})
	}
	if n.mail == nil {
		return
	}
	n.pending.Add(1)
	go func() {
		defer n.pending.Done()
		n.welcome(context.WithoutCancel(ctx), client, project)
	}()
}

// TaskStatusChanged publishes once per audience: the project's client, the
// team and admins each listen on exactly one of these channels.
func (n *workflowNotifier) TaskStatusChanged(ctx context.Context, task *types.Task, previous types.TaskStatus, project *types.Project, progressChanged bool) {
	if task == nil {
		return
	}
	channels := []string{realtime.ProjectChannel(task.ProjectID), realtime.TeamChannel, realtime.AdminChannel}
	projectName := ""
	if project != nil {
		projectName = project.Name
	}
	for _, ch := range channels {
		n.send(ctx, realtime.SSEMessage{
			Channel: ch,
			Event:   realtime.SSEEventTaskStatusChanged,
			Data: map[string]any{
				"task":     workflow.NewTaskView(task, projectName),
				"previous": previous,
			},
		})
		if progressChanged && project != nil {
			n.send(ctx, realtime.SSEMessage{
				Channel: ch,
				Event:   realtime.SSEEventProjectProgressChanged,
				Data:    map[string]any{"project": workflow.NewProjectView(project)},
			})
		}
	}
}

func (n *workflowNotifier) Wait() {
	if n == nil {
		return
	}
	n.pending.Wait()
}

func (n *workflowNotifier) send(ctx context.Context, msg realtime.SSEMessage) {
	if n == nil || n.emit == nil {
		return
	}
	n.emit.Emit(ctx, msg)
}

func (n *workflowNotifier) welcome(ctx context.Context, client *types.User, project *types.Project) {
	ctx, cancel := context.WithTimeout(ctx, n.mailTimeout)
	defer cancel()
	err := n.mail.Send(ctx, mailer.Message{
		To:      []mailer.Address{{Email: client.Email, Name: client.Name}},
		Subject: "Welcome to Webotixs",
		Text: fmt.Sprintf(
			"Hi %s,\n\nYour project %q is set up and our team has started onboarding. The target date is %s.\nSign in to your dashboard to follow progress.\n",
			client.Name, project.Name, project.DeadlineString(),
		),
		Categories: []string{"client-onboarded"},
	})
	if err != nil {
		n.log.Warn("welcome email failed", "client_id", client.ID.String(), "error", err)
	}
}
