package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GBZC2708/procard-api/internal"
)

func GetDashboard(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")
		today := internal.EpochDay(time.Now())

		summary, err := app.Dashboard().Summary(c.Request.Context(), user, today)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to compute dashboard")
			return
		}
		HandleSuccess(c, app.Logger(), summary, nil)
	}
}
