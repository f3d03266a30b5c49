package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/soalgen/soalgen/internal/middleware"
)

type RouterDeps struct {
	Generate  *GenerateHandler
	Database  *DatabaseHandler
	JWTSecret []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))

	authGroup.POST("/questions/generate", deps.Generate.Generate)

	authGroup.GET("/database/documents", deps.Database.ListDocuments)
	authGroup.GET("/database/document-count", deps.Database.DocumentCount)
	authGroup.POST("/database/documents", deps.Database.IngestText)
	authGroup.POST("/database/upload-documents", deps.Database.UploadDocuments)
	authGroup.DELETE("/database/source/:name", deps.Database.DeleteSource)
	authGroup.POST("/database/reset", deps.Database.Reset)
}
