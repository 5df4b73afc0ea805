package controllers

import (
	"net/http"

	"github.com/rzbill/httpmq/internal/runtime"
	queuesvc "github.com/rzbill/httpmq/internal/services/queues"
	logpkg "github.com/rzbill/httpmq/pkg/log"
)

// ControllerRegistry manages all HTTP controllers.
type ControllerRegistry struct {
	general  *GeneralController
	protocol *ProtocolController
	queues   *QueuesController
}

// NewControllerRegistry creates a new controller registry.
func NewControllerRegistry(rt *runtime.Runtime, svc *queuesvc.Service, logger logpkg.Logger) *ControllerRegistry {
	return &ControllerRegistry{
		general:  NewGeneralController(rt),
		protocol: NewProtocolController(svc, logger, rt.Config().PayloadMaxBytes),
		queues:   NewQueuesController(svc),
	}
}

// RegisterAllRoutes registers all controller routes with the given mux:
// health and metrics, the text protocol on "/", and the JSON API.
func (r *ControllerRegistry) RegisterAllRoutes(mux *http.ServeMux) {
	r.general.RegisterRoutes(mux)
	r.protocol.RegisterRoutes(mux)
	r.queues.RegisterRoutes(mux)
}
