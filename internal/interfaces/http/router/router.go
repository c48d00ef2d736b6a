package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar wires a handler's endpoints onto an API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router collects registrars and mounts them under a versioned API prefix
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// NewRouter creates a Router for the given engine
func NewRouter(engine *gin.Engine) *Router {
	return &Router{engine: engine, apiVersion: "v1"}
}

// WithAPIVersion overrides the default v1 prefix
func (r *Router) WithAPIVersion(version string) *Router {
	r.apiVersion = version
	return r
}

// Register adds a registrar; call Setup once all are registered
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup mounts every registered handler under /api/<version>
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}
