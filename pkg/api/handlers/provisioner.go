package handlers

import (
	"context"

	"github.com/urmzd/jarvis-node/pkg/provisioning"
)

// Provisioner is the orchestrator surface the handlers serve.
// *provisioning.Service satisfies it.
type Provisioner interface {
	NodeInfo(ctx context.Context) provisioning.NodeInfo
	ScanNetworks(ctx context.Context) []provisioning.NetworkInfo
	Status() provisioning.Status
	Provision(req provisioning.ProvisionRequest) (provisioning.ProvisionResult, error)
	ProvisionK2(req provisioning.K2Request) provisioning.K2Result
	Attempts(ctx context.Context, limit int) ([]provisioning.Attempt, error)
}
