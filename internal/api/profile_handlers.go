package api

import (
	"github.com/gin-gonic/gin"

	"github.com/GBZC2708/procard-api/internal/service"
)

func GetProfile(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")

		p, err := service.GetOrCreateProfile(c.Request.Context(), app.Store(), user)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to load profile")
			return
		}
		HandleSuccess(c, app.Logger(), p, nil)
	}
}

func PatchProfile(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")

		var body service.ProfilePatchRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateProfilePatch(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		p, err := service.UpdateProfile(c.Request.Context(), app.Store(), user, &body)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to update profile")
			return
		}
		HandleSuccess(c, app.Logger(), p, nil)
	}
}
