package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github/itish2003/medassist/logger"
	"github/itish2003/medassist/models"
	"github/itish2003/medassist/services"
)

// ReminderController serves the reminder form. Scheduling happens in the
// browser; the server only echoes the record back.
type ReminderController struct{}

func NewReminderController() *ReminderController {
	return &ReminderController{}
}

// ReminderUI is the Gin handler for POST /reminder-ui.
func (c *ReminderController) ReminderUI(ctx *gin.Context) {
	var req models.ReminderRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.HTML(http.StatusBadRequest, "bad_request.html", "the medicine, dose, frequency and times fields are required")
		return
	}

	reminder := services.BuildReminder(req.Medicine, req.Dose, req.Frequency, services.ParseTimes(req.Times))
	logger.Infow("reminder created", "times", len(reminder.ReminderTimes))
	ctx.HTML(http.StatusOK, "reminder.html", reminder)
}
