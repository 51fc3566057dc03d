package handlers

import (
	"encoding/json"
	"strconv"

	apierrors "github.com/Ankitaa-Mannaa/task-manager/internal/errors"
	"github.com/Ankitaa-Mannaa/task-manager/internal/middleware"
	"github.com/Ankitaa-Mannaa/task-manager/internal/services"
	"github.com/gin-gonic/gin"
)

// bindStrict decodes the JSON body into v, rejecting unknown fields and type
// mismatches before any business logic runs.
func bindStrict(c *gin.Context, v interface{}) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// currentActor assembles the actor placed in context by RequireAuth.
func currentActor(c *gin.Context) (services.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return services.Actor{}, false
	}
	role, ok := middleware.GetRole(c)
	if !ok {
		return services.Actor{}, false
	}
	return services.Actor{ID: userID, Role: role}, true
}

// pathID parses a numeric id path parameter, answering 400 on garbage.
func pathID(c *gin.Context, param string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid ID")
		return 0, false
	}
	return id, true
}
