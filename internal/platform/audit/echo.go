package audit

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// EntryFromRequest builds an Entry carrying the caller's IP and user agent.
func EntryFromRequest(c echo.Context, actorID uuid.UUID, action, resource string, resourceID *uuid.UUID) Entry {
	return Entry{
		ActorID:    actorID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IPAddress:  c.RealIP(),
		UserAgent:  c.Request().UserAgent(),
	}
}
