// Package client is a typed HTTP client for the model-service API, one
// method per operation registered in internal/rpc/server, used by
// cmd/orchestratorctl.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/orchestrator-core/controlplane/internal/rpc"
)

// DefaultBaseURL is used when ORCHESTRATOR_API_BASE_URL is unset.
const DefaultBaseURL = "http://localhost:8443"

// Client talks to the /v0 API exposed by cmd/api.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// apiError is the huma error envelope (RFC 7807-flavored) every non-2xx
// response body carries.
type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode >= 300 {
		var apiErr apiError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Detail != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Detail)
		}
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(respBody))
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

type operationResult struct {
	OperationID string `json:"operationId"`
}

func (c *Client) UpsertWorkspace(ctx context.Context, w rpc.WorkspaceMessage) (string, error) {
	var out operationResult
	if err := c.do(ctx, http.MethodPut, "/v0/workspaces", nil, w, &out); err != nil {
		return "", err
	}
	return out.OperationID, nil
}

func (c *Client) DeleteWorkspace(ctx context.Context, id string) (string, error) {
	var out operationResult
	if err := c.do(ctx, http.MethodDelete, "/v0/workspaces/"+id, nil, nil, &out); err != nil {
		return "", err
	}
	return out.OperationID, nil
}

func (c *Client) GetWorkspace(ctx context.Context, id string) (rpc.WorkspaceMessage, error) {
	var out rpc.WorkspaceMessage
	err := c.do(ctx, http.MethodGet, "/v0/workspaces/"+id, nil, nil, &out)
	return out, err
}

func (c *Client) ListWorkspaces(ctx context.Context) ([]rpc.WorkspaceMessage, error) {
	var out []rpc.WorkspaceMessage
	err := c.do(ctx, http.MethodGet, "/v0/workspaces", nil, nil, &out)
	return out, err
}

func (c *Client) UpsertTemplate(ctx context.Context, t rpc.TemplateMessage) (string, error) {
	var out operationResult
	if err := c.do(ctx, http.MethodPut, "/v0/templates", nil, t, &out); err != nil {
		return "", err
	}
	return out.OperationID, nil
}

func (c *Client) DeleteTemplate(ctx context.Context, id string) (string, error) {
	var out operationResult
	if err := c.do(ctx, http.MethodDelete, "/v0/templates/"+id, nil, nil, &out); err != nil {
		return "", err
	}
	return out.OperationID, nil
}

func (c *Client) GetTemplate(ctx context.Context, id string) (rpc.TemplateMessage, error) {
	var out rpc.TemplateMessage
	err := c.do(ctx, http.MethodGet, "/v0/templates/"+id, nil, nil, &out)
	return out, err
}

func (c *Client) ListTemplates(ctx context.Context) ([]rpc.TemplateMessage, error) {
	var out []rpc.TemplateMessage
	err := c.do(ctx, http.MethodGet, "/v0/templates", nil, nil, &out)
	return out, err
}

func (c *Client) UpsertWorkload(ctx context.Context, w rpc.WorkloadMessage) (string, error) {
	var out operationResult
	if err := c.do(ctx, http.MethodPut, "/v0/workloads", nil, w, &out); err != nil {
		return "", err
	}
	return out.OperationID, nil
}

func (c *Client) DeleteWorkload(ctx context.Context, id string) (string, error) {
	var out operationResult
	if err := c.do(ctx, http.MethodDelete, "/v0/workloads/"+id, nil, nil, &out); err != nil {
		return "", err
	}
	return out.OperationID, nil
}

func (c *Client) GetWorkload(ctx context.Context, id string) (rpc.WorkloadMessage, error) {
	var out rpc.WorkloadMessage
	err := c.do(ctx, http.MethodGet, "/v0/workloads/"+id, nil, nil, &out)
	return out, err
}

func (c *Client) ListWorkloads(ctx context.Context, teamID string) ([]rpc.WorkloadMessage, error) {
	q := url.Values{}
	if teamID != "" {
		q.Set("teamId", teamID)
	}
	var out []rpc.WorkloadMessage
	err := c.do(ctx, http.MethodGet, "/v0/workloads", q, nil, &out)
	return out, err
}

func (c *Client) UpsertTarget(ctx context.Context, t rpc.TargetMessage) (string, error) {
	var out operationResult
	if err := c.do(ctx, http.MethodPut, "/v0/targets", nil, t, &out); err != nil {
		return "", err
	}
	return out.OperationID, nil
}

func (c *Client) DeleteTarget(ctx context.Context, id string) (string, error) {
	var out operationResult
	if err := c.do(ctx, http.MethodDelete, "/v0/targets/"+id, nil, nil, &out); err != nil {
		return "", err
	}
	return out.OperationID, nil
}

func (c *Client) GetTarget(ctx context.Context, id string) (rpc.TargetMessage, error) {
	var out rpc.TargetMessage
	err := c.do(ctx, http.MethodGet, "/v0/targets/"+id, nil, nil, &out)
	return out, err
}

func (c *Client) ListTargets(ctx context.Context) ([]rpc.TargetMessage, error) {
	var out []rpc.TargetMessage
	err := c.do(ctx, http.MethodGet, "/v0/targets", nil, nil, &out)
	return out, err
}

func (c *Client) UpsertHost(ctx context.Context, h rpc.HostMessage) (string, error) {
	var out operationResult
	if err := c.do(ctx, http.MethodPut, "/v0/hosts", nil, h, &out); err != nil {
		return "", err
	}
	return out.OperationID, nil
}

func (c *Client) DeleteHost(ctx context.Context, id string) (string, error) {
	var out operationResult
	if err := c.do(ctx, http.MethodDelete, "/v0/hosts/"+id, nil, nil, &out); err != nil {
		return "", err
	}
	return out.OperationID, nil
}

func (c *Client) GetHost(ctx context.Context, id string) (rpc.HostMessage, error) {
	var out rpc.HostMessage
	err := c.do(ctx, http.MethodGet, "/v0/hosts/"+id, nil, nil, &out)
	return out, err
}

func (c *Client) ListHosts(ctx context.Context) ([]rpc.HostMessage, error) {
	var out []rpc.HostMessage
	err := c.do(ctx, http.MethodGet, "/v0/hosts", nil, nil, &out)
	return out, err
}

func (c *Client) UpsertDeployment(ctx context.Context, d rpc.DeploymentMessage) (string, error) {
	var out operationResult
	if err := c.do(ctx, http.MethodPut, "/v0/deployments", nil, d, &out); err != nil {
		return "", err
	}
	return out.OperationID, nil
}

func (c *Client) DeleteDeployment(ctx context.Context, id string) (string, error) {
	var out operationResult
	if err := c.do(ctx, http.MethodDelete, "/v0/deployments/"+id, nil, nil, &out); err != nil {
		return "", err
	}
	return out.OperationID, nil
}

func (c *Client) GetDeployment(ctx context.Context, id string) (rpc.DeploymentMessage, error) {
	var out rpc.DeploymentMessage
	err := c.do(ctx, http.MethodGet, "/v0/deployments/"+id, nil, nil, &out)
	return out, err
}

func (c *Client) ListDeployments(ctx context.Context, workloadID, targetID, templateID string) ([]rpc.DeploymentMessage, error) {
	q := url.Values{}
	if workloadID != "" {
		q.Set("workloadId", workloadID)
	}
	if targetID != "" {
		q.Set("targetId", targetID)
	}
	if templateID != "" {
		q.Set("templateId", templateID)
	}
	var out []rpc.DeploymentMessage
	err := c.do(ctx, http.MethodGet, "/v0/deployments", q, nil, &out)
	return out, err
}

func (c *Client) GetAssignment(ctx context.Context, id string) (rpc.AssignmentMessage, error) {
	var out rpc.AssignmentMessage
	err := c.do(ctx, http.MethodGet, "/v0/assignments/"+id, nil, nil, &out)
	return out, err
}

func (c *Client) ListAssignments(ctx context.Context, deploymentID, hostID string) ([]rpc.AssignmentMessage, error) {
	q := url.Values{}
	if deploymentID != "" {
		q.Set("deploymentId", deploymentID)
	}
	if hostID != "" {
		q.Set("hostId", hostID)
	}
	var out []rpc.AssignmentMessage
	err := c.do(ctx, http.MethodGet, "/v0/assignments", q, nil, &out)
	return out, err
}

func (c *Client) UpsertConfig(ctx context.Context, cfg rpc.ConfigMessage) (string, error) {
	var out operationResult
	if err := c.do(ctx, http.MethodPut, "/v0/configs", nil, cfg, &out); err != nil {
		return "", err
	}
	return out.OperationID, nil
}

func (c *Client) DeleteConfig(ctx context.Context, id string) (string, error) {
	var out operationResult
	if err := c.do(ctx, http.MethodDelete, "/v0/configs/"+id, nil, nil, &out); err != nil {
		return "", err
	}
	return out.OperationID, nil
}

func (c *Client) GetConfig(ctx context.Context, id string) (rpc.ConfigMessage, error) {
	var out rpc.ConfigMessage
	err := c.do(ctx, http.MethodGet, "/v0/configs/"+id, nil, nil, &out)
	return out, err
}

func (c *Client) ListConfigs(ctx context.Context, owningModel string) ([]rpc.ConfigMessage, error) {
	q := url.Values{}
	if owningModel != "" {
		q.Set("owningModel", owningModel)
	}
	var out []rpc.ConfigMessage
	err := c.do(ctx, http.MethodGet, "/v0/configs", q, nil, &out)
	return out, err
}
