package httpapi

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// spaFallback serves built web assets from the static dir. Unknown GET paths
// get index.html so client-side routes survive a reload; unknown API paths
// stay 404.
func (s *Server) spaFallback(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusNotFound, errorBody("not found"))
		return
	}
	if strings.HasPrefix(c.Request.URL.Path, "/api/") || s.opts.StaticDir == "" {
		c.JSON(http.StatusNotFound, errorBody("not found"))
		return
	}

	clean := path.Clean("/" + c.Request.URL.Path)
	if clean != "/" {
		file := filepath.Join(s.opts.StaticDir, filepath.FromSlash(clean))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
	}

	index := filepath.Join(s.opts.StaticDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		c.JSON(http.StatusNotFound, errorBody("not found"))
		return
	}
	c.File(index)
}
