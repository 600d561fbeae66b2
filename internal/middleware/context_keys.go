package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

const (
	actorIDKey   = contextKey("actorID")
	actorRoleKey = contextKey("actorRole")
)

// GetActorFromContext retrieves the authenticated actor's id and role. Every
// mutating service call takes these explicitly; nothing reads ambient
// session state deeper in the stack.
func GetActorFromContext(c *gin.Context) (actorID string, actorRole string, ok bool) {
	idVal := c.Request.Context().Value(actorIDKey)
	roleVal := c.Request.Context().Value(actorRoleKey)
	id, okID := idVal.(string)
	role, okRole := roleVal.(string)
	if !okID || id == "" {
		return "", "", false
	}
	if !okRole {
		role = ""
	}
	return id, role, true
}

// GetActorRoleFromCtx returns the authenticated actor's role, if any. Used to
// stamp audit entries from inside the service layer.
func GetActorRoleFromCtx(ctx context.Context) string {
	role, _ := ctx.Value(actorRoleKey).(string)
	return role
}
