package memory_test

import (
	"testing"

	"github.com/orchestrator-core/controlplane/internal/store/conformance"
	"github.com/orchestrator-core/controlplane/internal/store/memory"
)

func TestMemoryStore(t *testing.T) {
	conformance.Run(t, memory.New())
}
