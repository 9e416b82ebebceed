package handler

import (
	"net/http"

	"bizrecords/internal/middleware"
	"bizrecords/internal/model"
)

// actorFromRequest names who performed a trash action. The IP is resolved the
// same way the rate limiter and access log see it.
func actorFromRequest(r *http.Request) model.AuditActor {
	actor := model.AuditActor{IP: middleware.ClientIP(r)}

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return actor
	}

	actor.UserID = claims.UserID
	actor.Username = claims.Username
	actor.Role = claims.Role

	return actor
}
