// Package server assembles the gin router and HTTP server.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coolprogrammerarpit007/bg-remover/internal/handler"
	"github.com/coolprogrammerarpit007/bg-remover/internal/middleware"
)

// NewRouter wires the middleware stack and routes.
func NewRouter(images *handler.ImageHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Background Remover API running"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	router.POST("/upload", images.Upload)
	router.GET("/images", images.List)
	router.GET("/images/:id", images.Info)
	router.GET("/download/original/:id", images.DownloadOriginal)
	router.GET("/download/processed/:id", images.DownloadProcessed)

	return router
}

// New builds the HTTP server around the router.
func New(addr string, router *gin.Engine) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
