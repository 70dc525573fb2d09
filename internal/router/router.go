package router

import (
	"net/http"

	"employee-management/internal/handlers"
	"employee-management/internal/middleware"
	"employee-management/internal/upload"

	"github.com/gin-gonic/gin"
)

// maxFormBody leaves room for the text fields next to a full-size image.
const maxFormBody = upload.MaxImageSize + 1<<20

func Setup(r *gin.Engine, eh *handlers.EmployeeHandler, images http.FileSystem) {
	api := r.Group("/api")
	{
		api.GET("/health", eh.Health)
		api.GET("/all-users", eh.ListSummary)
		api.GET("/employees", eh.ListDetailed)
		api.POST("/add-employee", middleware.LimitBody(maxFormBody), eh.AddEmployee)
		api.DELETE("/delete-employee/:id", eh.DeleteEmployee)
	}

	r.StaticFS("/"+upload.PublicPrefix, images)
	r.NoRoute(handlers.NotFound)
}
