package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"gopkg.in/yaml.v3"

	"github.com/orchestrator-core/controlplane/internal/rpc/server"
	"github.com/orchestrator-core/controlplane/internal/service"
	"github.com/orchestrator-core/controlplane/internal/version"
)

func main() {
	outputPath := flag.String("output", "openapi.yaml", "Output path for OpenAPI spec")
	versionOverride := flag.String("version", "", "Override the API version (defaults to version.Version)")
	flag.Parse()

	apiVersion := version.Version
	if *versionOverride != "" {
		apiVersion = *versionOverride
	}

	spec := generateSpec(apiVersion)

	yamlData, err := yaml.Marshal(spec)
	if err != nil {
		log.Fatalf("failed to marshal OpenAPI spec to YAML: %v", err)
	}

	if err := os.WriteFile(*outputPath, yamlData, 0644); err != nil {
		log.Fatalf("failed to write OpenAPI spec to %s: %v", *outputPath, err)
	}

	absPath, err := filepath.Abs(*outputPath)
	if err != nil {
		absPath = *outputPath
	}
	fmt.Printf("OpenAPI spec generated: %s\n", absPath)
}

// generateSpec builds a Huma API, registers all model-service routes, and
// returns the resulting OpenAPI document. The services are empty: routes
// close over them but only dereference at request time, never at
// registration time.
func generateSpec(apiVersion string) *huma.OpenAPI {
	mux := http.NewServeMux()

	humaConfig := huma.DefaultConfig("Orchestrator Control Plane", apiVersion)
	humaConfig.Info.Description = "Control plane API for workspaces, templates, workloads, targets, hosts, deployments, assignments, and config."

	api := humago.New(mux, humaConfig)

	server.RegisterRoutes(api, &service.Services{})

	return api.OpenAPI()
}
