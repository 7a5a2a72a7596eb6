package handlers

import (
	"github.com/xctd-glitch/trackng.app/internal/engine"
	"github.com/xctd-glitch/trackng.app/internal/geo"
	"github.com/xctd-glitch/trackng.app/internal/store"
	"github.com/xctd-glitch/trackng.app/services"
)

var (
	gateEngine  *engine.Engine
	configStore store.ConfigStore
	postbackSvc *services.PostbackService
	geoResolver *geo.Resolver
)

// Init wires the handler package's collaborators. Called once from main
// before routes are registered.
func Init(e *engine.Engine, st store.ConfigStore, pb *services.PostbackService, g *geo.Resolver) {
	gateEngine = e
	configStore = st
	postbackSvc = pb
	geoResolver = g
}
