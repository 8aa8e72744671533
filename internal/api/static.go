package api

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static
var staticFS embed.FS

// SetupStaticRoutes serves the embedded chat page.
func SetupStaticRoutes(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) {
		content, err := staticFS.ReadFile("static/index.html")
		if err != nil {
			c.String(http.StatusNotFound, "page not found")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", content)
	})
}
