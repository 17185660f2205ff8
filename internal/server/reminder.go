package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	reminderdomain "github.com/smallbiznis/faktura/internal/reminder/domain"
)

type updateReminderSettingsRequest struct {
	Enabled      *bool          `json:"enabled"`
	ReminderDays []int          `json:"reminder_days"`
	Subjects     map[int]string `json:"subjects"`
	Templates    map[int]string `json:"templates"`
}

func (s *Server) GetReminderSettings(c *gin.Context) {
	resp, err := s.reminderSvc.GetSettings(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateReminderSettings(c *gin.Context) {
	var req updateReminderSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reminderSvc.UpdateSettings(c.Request.Context(), reminderdomain.UpdateSettingsRequest{
		Enabled:      req.Enabled,
		ReminderDays: req.ReminderDays,
		Subjects:     req.Subjects,
		Templates:    req.Templates,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// RunReminders triggers the reminder batch for the org in context outside the
// scheduled sweep.
func (s *Server) RunReminders(c *gin.Context) {
	result, err := s.reminderSvc.ProcessReminders(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func isReminderValidationError(err error) bool {
	switch err {
	case reminderdomain.ErrInvalidOrganization,
		reminderdomain.ErrInvalidReminderDays:
		return true
	default:
		return false
	}
}
