package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"internship-portal/internal/domain"
)

const (
	ActorIDHeader   = "X-Actor-ID"
	ActorTypeHeader = "X-Actor-Type"

	ActorContextKey = "actor"
)

// ActorRequired identifies the caller from request headers. Session handling
// belongs to the host; nothing here checks permissions.
func ActorRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(ActorIDHeader))
		if id == "" {
			return Unauthorized("Missing " + ActorIDHeader + " header")
		}

		actorType := domain.ActorType(strings.ToUpper(strings.TrimSpace(c.Get(ActorTypeHeader))))
		if !actorType.Valid() {
			return BadRequest("Invalid " + ActorTypeHeader + " header")
		}

		c.Locals(ActorContextKey, domain.Recipient{ID: id, Type: actorType})
		return c.Next()
	}
}

func GetActor(c *fiber.Ctx) (domain.Recipient, error) {
	actor, ok := c.Locals(ActorContextKey).(domain.Recipient)
	if !ok {
		return domain.Recipient{}, Unauthorized("Actor not identified")
	}
	return actor, nil
}
