// Package v1 exposes the recommendation engine over the v1 REST API.
package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/artrec/hunterd/engine"
	"github.com/artrec/hunterd/internal/profile"
	"github.com/artrec/hunterd/store"
)

type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store
	Engine  *engine.Service
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, eng *engine.Service) *APIV1Service {
	return &APIV1Service{
		Profile: profile,
		Store:   store,
		Engine:  eng,
	}
}

// RegisterRoutes mounts the v1 API under /api/v1 on the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	g := echoServer.Group("/api/v1")

	g.PUT("/users/:uuid/profile", s.UpsertProfile)
	g.GET("/users/:uuid/profile", s.GetProfile)
	g.POST("/users/:uuid/candidates", s.GenerateCandidates)
	g.GET("/users/:uuid/candidates", s.ListCandidates)
	g.GET("/users/:uuid/candidates/status", s.GetGenerationStatus)
	g.POST("/swipes", s.RecordSwipe)
}
