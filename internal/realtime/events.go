package realtime

import "github.com/google/uuid"

type SSEEvent string

const (
	SSEEventTaskStatusChanged      SSEEvent = "TaskStatusChanged"
	SSEEventProjectProgressChanged SSEEvent = "ProjectProgressChanged"
	SSEEventClientOnboarded        SSEEvent = "ClientOnboarded"
)

// SSEMessage is one event addressed to a channel.
type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// AdminChannel receives every workflow event.
const AdminChannel = "admin"

// TeamChannel receives task and onboarding events for every project, including
// projects created after a stream opened.
const TeamChannel = "team"

func UserChannel(userID uuid.UUID) string { return "user:" + userID.String() }

func ProjectChannel(projectID uuid.UUID) string { return "project:" + projectID.String() }
