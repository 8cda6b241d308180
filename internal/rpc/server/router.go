package server

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/orchestrator-core/controlplane/internal/service"
)

// RegisterRoutes registers all model-service API routes under /v0.
func RegisterRoutes(api huma.API, services *service.Services) {
	const pathPrefix = "/v0"

	RegisterWorkspaces(api, pathPrefix, services.Workspace)
	RegisterTemplates(api, pathPrefix, services.Template)
	RegisterWorkloads(api, pathPrefix, services.Workload)
	RegisterTargets(api, pathPrefix, services.Target)
	RegisterHosts(api, pathPrefix, services.Host)
	RegisterDeployments(api, pathPrefix, services.Deployment)
	RegisterAssignments(api, pathPrefix, services.Assignment)
	RegisterConfigs(api, pathPrefix, services.Config)
}
