package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
)

const outboundBuffer = 32

type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
	Logger   *logger.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// Done is closed when the hub disconnects the client.
func (c *SSEClient) Done() <-chan struct{} { return c.done }
