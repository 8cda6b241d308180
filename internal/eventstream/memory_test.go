package eventstream_test

import (
	"testing"

	"github.com/orchestrator-core/controlplane/internal/eventstream"
	"github.com/orchestrator-core/controlplane/internal/eventstream/conformance"
)

func TestMemoryStream(t *testing.T) {
	conformance.Run(t, eventstream.NewMemory())
}
