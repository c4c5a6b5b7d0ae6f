package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/GBZC2708/procard-api/internal"
	"github.com/GBZC2708/procard-api/internal/service"
)

func ListSupplements(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")
		activeOnly := c.Query("all") == ""

		items, err := app.Store().ListSupplements(c.Request.Context(), user, activeOnly)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to list supplements")
			return
		}
		HandleSuccess(c, app.Logger(), items, map[string]any{"count": len(items)})
	}
}

func PostSupplement(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")

		var body service.SupplementRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateSupplementRequest(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		item, err := service.CreateSupplement(c.Request.Context(), app.Store(), user, &body)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to create supplement")
			return
		}
		HandleSuccess(c, app.Logger(), item, nil)
	}
}

func PutSupplement(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.SupplementRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateSupplementRequest(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		item, err := service.UpdateSupplement(c.Request.Context(), app.Store(), c.Param("id"), &body)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to update supplement")
			return
		}
		HandleSuccess(c, app.Logger(), item, nil)
	}
}

func DeleteSupplement(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := service.DeactivateSupplement(c.Request.Context(), app.Store(), c.Param("id")); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to deactivate supplement")
			return
		}
		HandleSuccess(c, app.Logger(), nil, map[string]any{"deactivated": true})
	}
}

func GetSupplementPlan(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")
		day, err := dateParam(c)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid date")
			return
		}

		plan, err := service.DailyPlan(c.Request.Context(), app.Store(), user, day)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to load plan")
			return
		}
		HandleSuccess(c, app.Logger(), plan, nil)
	}
}

type planEntryRequest struct {
	SupplementID string  `json:"supplement_id"`
	TimeSlot     string  `json:"time_slot"`
	Amount       float64 `json:"amount"`
	Unit         string  `json:"unit"`
}

func PutSupplementPlanEntry(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")
		day, err := dateParam(c)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid date")
			return
		}

		var body planEntryRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if body.SupplementID == "" || !internal.IsValidTimeSlot(body.TimeSlot) {
			HandleError(c, app.Logger(), errors.New("'supplement_id' and a known 'time_slot' are required"), 400, "Validation failed")
			return
		}

		e, err := service.AddOrUpdateSupplementEntry(c.Request.Context(), app.Store(), user, day,
			body.SupplementID, internal.TimeSlot(body.TimeSlot), body.Amount, body.Unit)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to save plan entry")
			return
		}
		HandleSuccess(c, app.Logger(), e, nil)
	}
}

type planAmountRequest struct {
	EntryID      string  `json:"entry_id"`
	SupplementID string  `json:"supplement_id"`
	TimeSlot     string  `json:"time_slot"`
	Amount       float64 `json:"amount"`
}

func PatchSupplementPlanAmount(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")
		day, err := dateParam(c)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid date")
			return
		}

		var body planAmountRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		ref := &internal.DailySupplementEntry{
			ID:           body.EntryID,
			SupplementID: body.SupplementID,
			TimeSlot:     internal.TimeSlot(body.TimeSlot),
		}
		e, err := service.UpdateSupplementEntryAmount(c.Request.Context(), app.Store(), user, day, ref, body.Amount)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to update plan entry")
			return
		}
		HandleSuccess(c, app.Logger(), e, nil)
	}
}

func DeleteSupplementPlanEntry(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString("user")
		day, err := dateParam(c)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid date")
			return
		}

		var body planAmountRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		ref := &internal.DailySupplementEntry{
			ID:           body.EntryID,
			SupplementID: body.SupplementID,
			TimeSlot:     internal.TimeSlot(body.TimeSlot),
		}
		if err := service.DeleteSupplementEntry(c.Request.Context(), app.Store(), user, day, ref); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to delete plan entry")
			return
		}
		HandleSuccess(c, app.Logger(), nil, map[string]any{"deleted": true})
	}
}
