package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github/itish2003/medassist/middleware"
	"github/itish2003/medassist/web"
)

// NewRouter wires the page, the two form endpoints, the reminder script and
// a health check. There are no API documentation routes.
func NewRouter(rag *RAGController, reminders *ReminderController) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery())
	router.SetHTMLTemplate(web.Templates())

	page := web.IndexPage()
	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	})
	router.StaticFileFS("/static/reminders.js", "reminders.js", http.FS(web.Static()))

	router.POST("/drug-info", rag.DrugInfo)
	router.POST("/reminder-ui", reminders.ReminderUI)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Medication Assistant",
			"version": "1.0.0",
		})
	})

	return router
}
