package controllers

import (
	"net/http"

	"crmaize-backend/services"

	"github.com/gin-gonic/gin"
)

type EmailSettingsController struct {
	email *services.EmailService
}

func NewEmailSettingsController(email *services.EmailService) *EmailSettingsController {
	return &EmailSettingsController{email: email}
}

// Status reports whether outbound email is configured and which sender
// identity is in use.
func (ec *EmailSettingsController) Status(c *gin.Context) {
	c.JSON(http.StatusOK, ec.email.ConfigurationStatus())
}
