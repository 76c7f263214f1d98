package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
	"github.com/vsinha/blendmrp/pkg/infrastructure/events"
)

type EventsHandler struct {
	store events.EventStore
}

func NewEventsHandler(store events.EventStore) *EventsHandler {
	return &EventsHandler{store: store}
}

// ListEvents returns the retained domain events after ?from= (a position),
// optionally only those of ?stream=. last_position is what to pass as from next time.
func (h *EventsHandler) ListEvents(c *gin.Context) {
	var from int64
	if raw := c.Query("from"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			errorResponse(c, fmt.Errorf("%w: invalid event position %q", entities.ErrInvalidArgument, raw))
			return
		}
		from = parsed
	}

	all, err := h.store.ReadAllEvents(from)
	if err != nil {
		errorResponse(c, err)
		return
	}

	stream := c.Query("stream")
	last := from
	list := make([]events.Event, 0, len(all))
	for _, event := range all {
		last = event.Position()
		if stream != "" && event.StreamID() != stream {
			continue
		}
		list = append(list, event)
	}
	c.JSON(http.StatusOK, gin.H{"events": list, "last_position": last})
}
