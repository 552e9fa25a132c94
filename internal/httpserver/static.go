package httpserver

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// StaticHandler 托管前端构建产物，未知路径回退到 index.html
type StaticHandler struct {
	dir string
}

func NewStaticHandler(dir string) *StaticHandler {
	return &StaticHandler{dir: dir}
}

func (h *StaticHandler) Handle(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	name := filepath.Join(h.dir, filepath.FromSlash(path.Clean("/"+c.Request.URL.Path)))
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		c.File(name)
		return
	}

	index := filepath.Join(h.dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.File(index)
}
