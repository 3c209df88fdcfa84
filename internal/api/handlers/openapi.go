package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"

	"github.com/aide-systems/aide-core/internal/version"
)

// ResolveOpenAPIPath returns a readable path to openapi.yaml. It honours
// AIDE_OPENAPI_PATH, then tries paths relative to the repo root and to the
// package directories tests run from.
func ResolveOpenAPIPath() string {
	if p := os.Getenv("AIDE_OPENAPI_PATH"); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	candidates := []string{
		"api/openapi.yaml",
		filepath.FromSlash("../../api/openapi.yaml"),
		filepath.FromSlash("../../../api/openapi.yaml"),
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return "api/openapi.yaml"
}

// GetOpenAPISpec serves openapi.yaml converted to JSON, stamped with the
// running version and a current example timestamp for triggers
func GetOpenAPISpec(c *gin.Context) {
	data, err := os.ReadFile(ResolveOpenAPIPath())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to load openapi.yaml"})
		return
	}
	var obj map[string]any
	if err := yaml.Unmarshal(data, &obj); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to parse openapi.yaml"})
		return
	}

	if info, ok := obj["info"].(map[string]any); ok {
		info["version"] = version.Version
	}

	ts := time.Now().UTC()
	if t, err := time.Parse(time.RFC3339, version.BuildTime); err == nil {
		ts = t
	}
	if prop := lookup(obj, "components", "schemas", "TriggerRequest", "properties", "timestamp"); prop != nil {
		prop["example"] = ts.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, obj)
}

// lookup walks nested YAML maps and returns the map at path, or nil
func lookup(m map[string]any, path ...string) map[string]any {
	cur := m
	for _, key := range path {
		next, ok := cur[key].(map[string]any)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}
