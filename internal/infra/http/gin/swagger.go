package ginserver

import (
	_ "embed"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
)

const (
	docsPath    = "/swagger"
	docsSpecURL = docsPath + "/doc.json"
)

//go:embed swagger/openapi.json
var openAPIDocument []byte

//go:embed swagger/index.html
var docsPageTemplate string

// registerAPIDocs serves the booking API document and a Swagger UI page for it.
// Production builds publish the document through the API gateway instead.
func registerAPIDocs(router gin.IRoutes, env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "prod") {
		return false
	}
	page := []byte(strings.ReplaceAll(docsPageTemplate, "{{SPEC_URL}}", docsSpecURL))
	router.GET(docsSpecURL, func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache")
		c.Data(http.StatusOK, "application/json", openAPIDocument)
	})
	router.GET(docsPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	})
	return true
}
