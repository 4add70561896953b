// Package agents is the client for the platform's agent management and
// execution APIs.
package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/altairlabs/platformkit/internal/httpx"
	"github.com/altairlabs/platformkit/types"
)

// PlatformAPIVersion is sent on every request via the
// Platform-Api-Version header.
const PlatformAPIVersion = "2025-02-01"

const (
	defaultDeployment  = "gpt-4o-dev-default"
	defaultTemperature = 0.3
	defaultMaxTokens   = 1000
	defaultIterations  = 3
	defaultHistory     = 50
)

// userMessageTemplate is appended to agent instructions on creation so
// the platform substitutes the caller's message at execution time.
const userMessageTemplate = "The user question to process:\n---\n{{payload.userMessage}}\n"

// Config holds the connection parameters for the agent APIs.
type Config struct {
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	ClientID string `yaml:"client_id"`
}

// Client calls the agent management endpoints.
type Client struct {
	clientID string
	api      *httpx.Client
}

// NewClient creates an agent API client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, types.NewError(types.ErrConfiguration, "base url is required")
	}
	if cfg.ClientID == "" {
		return nil, types.NewError(types.ErrConfiguration, "client id is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	api := httpx.NewClient(cfg.BaseURL,
		httpx.WithHeader("Platform-Api-Version", PlatformAPIVersion),
		httpx.WithHeader("Accept", "application/json"),
		httpx.WithHeader("x-api-key", cfg.APIKey),
		httpx.WithLogger(logger),
	)
	return &Client{clientID: cfg.ClientID, api: api}, nil
}

// Agent describes a single agent definition.
type Agent struct {
	Name                string  `json:"agentName"`
	Description         string  `json:"description"`
	Instructions        string  `json:"instructions"`
	Kind                string  `json:"agentKind"`
	Temperature         float64 `json:"temperature"`
	MaxTokens           int     `json:"maxTokens"`
	ModelDeploymentName string  `json:"modelDeploymentName"`
	PromptTemplate      string  `json:"promptTemplate"`
}

func (a *Agent) applyDefaults() {
	if a.ModelDeploymentName == "" {
		a.ModelDeploymentName = defaultDeployment
	}
	if a.Temperature == 0 {
		a.Temperature = defaultTemperature
	}
	if a.MaxTokens == 0 {
		a.MaxTokens = defaultMaxTokens
	}
}

func (a *Agent) validate() error {
	if a.Name == "" {
		return types.NewError(types.ErrInputValidation, "agent name cannot be empty")
	}
	if a.Kind == "" {
		return types.NewError(types.ErrInputValidation, "agent kind cannot be empty")
	}
	return nil
}

// CreateAgent registers a new agent. The user-message template block is
// appended to the instructions so the platform can substitute the
// caller's message at execution time.
func (c *Client) CreateAgent(ctx context.Context, agent Agent) (map[string]any, error) {
	if err := agent.validate(); err != nil {
		return nil, err
	}
	agent.applyDefaults()
	agent.Instructions += userMessageTemplate

	var resp map[string]any
	path := fmt.Sprintf("/agents/api/%s/agents", c.clientID)
	if err := c.api.PostJSON(ctx, path, agent, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ListAgents lists all agents for the client.
func (c *Client) ListAgents(ctx context.Context) (map[string]any, error) {
	var resp map[string]any
	path := fmt.Sprintf("/agents/api/%s/agents", c.clientID)
	if err := c.api.GetJSON(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateAgent updates an existing agent in place.
func (c *Client) UpdateAgent(ctx context.Context, agent Agent) (map[string]any, error) {
	if err := agent.validate(); err != nil {
		return nil, err
	}
	agent.applyDefaults()

	var resp map[string]any
	path := fmt.Sprintf("/agents/api/%s/agents/%s/%s", c.clientID, url.PathEscape(agent.Name), url.PathEscape(agent.Kind))
	if err := c.api.PatchJSON(ctx, path, agent, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// DeleteAgent removes an agent.
func (c *Client) DeleteAgent(ctx context.Context, name, kind string) (map[string]any, error) {
	if name == "" || kind == "" {
		return nil, types.NewError(types.ErrInputValidation, "agent name and kind cannot be empty")
	}
	var resp map[string]any
	path := fmt.Sprintf("/agents/api/%s/agents/%s/%s", c.clientID, url.PathEscape(name), url.PathEscape(kind))
	if err := c.api.Delete(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// AgentRef names a member of an agent group.
type AgentRef struct {
	Name string `json:"agentName"`
	Kind string `json:"agentKind"`
}

// AgentGroup describes an orchestrated group of agents.
type AgentGroup struct {
	Name                            string     `json:"agentGroupName"`
	OrchestratorInstruction         string     `json:"orchestratorInstruction"`
	SelectionInstruction            string     `json:"selectionInstruction"`
	ResultQualityControlInstruction string     `json:"resultQualityControlInstruction"`
	MaxIterations                   int        `json:"maximumNumberOfIteration"`
	MaxHistoryItems                 int        `json:"maximumNumberOfHistoryItems"`
	Temperature                     float64    `json:"temperature"`
	MaxTokens                       int        `json:"maxTokens"`
	DeploymentName                  string     `json:"deploymentName"`
	Agents                          []AgentRef `json:"agents"`
}

func (g *AgentGroup) applyDefaults() {
	if g.DeploymentName == "" {
		g.DeploymentName = defaultDeployment
	}
	if g.Temperature == 0 {
		g.Temperature = defaultTemperature
	}
	if g.MaxTokens == 0 {
		g.MaxTokens = defaultMaxTokens
	}
	if g.MaxIterations == 0 {
		g.MaxIterations = defaultIterations
	}
	if g.MaxHistoryItems == 0 {
		g.MaxHistoryItems = defaultHistory
	}
}

func (g *AgentGroup) validate() error {
	if g.Name == "" {
		return types.NewError(types.ErrInputValidation, "agent group name cannot be empty")
	}
	if len(g.Agents) == 0 {
		return types.NewError(types.ErrInputValidation, "agent group must contain at least one agent")
	}
	return nil
}

// CreateAgentGroup registers a new agent group.
func (c *Client) CreateAgentGroup(ctx context.Context, group AgentGroup) (map[string]any, error) {
	if err := group.validate(); err != nil {
		return nil, err
	}
	group.applyDefaults()

	var resp map[string]any
	path := fmt.Sprintf("/agents/api/%s/agent-groups", c.clientID)
	if err := c.api.PostJSON(ctx, path, group, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ListAgentGroups lists all agent groups for the client.
func (c *Client) ListAgentGroups(ctx context.Context) (map[string]any, error) {
	var resp map[string]any
	path := fmt.Sprintf("/agents/api/%s/agent-groups", c.clientID)
	if err := c.api.GetJSON(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateAgentGroup updates an existing agent group in place.
func (c *Client) UpdateAgentGroup(ctx context.Context, group AgentGroup) (map[string]any, error) {
	if err := group.validate(); err != nil {
		return nil, err
	}
	group.applyDefaults()

	var resp map[string]any
	path := fmt.Sprintf("/agents/api/%s/agent-groups/%s", c.clientID, url.PathEscape(group.Name))
	if err := c.api.PatchJSON(ctx, path, group, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// DeleteAgentGroup removes an agent group.
func (c *Client) DeleteAgentGroup(ctx context.Context, name string) (map[string]any, error) {
	if name == "" {
		return nil, types.NewError(types.ErrInputValidation, "agent group name cannot be empty")
	}
	var resp map[string]any
	path := fmt.Sprintf("/agents/api/%s/agent-groups/%s", c.clientID, url.PathEscape(name))
	if err := c.api.Delete(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ExecuteOptions tunes an Execute call.
type ExecuteOptions struct {
	// UserID identifies the requesting user. Defaults to
	// "not-authorized" for unauthenticated callers.
	UserID string
}

type executeRequest struct {
	HandlerName  string `json:"handlerName"`
	UserID       string `json:"userId"`
	AgentKind    string `json:"agentKind"`
	QueryPayload string `json:"QueryPayload"`
}

// Execute runs a single agent or agent group against a user message.
// The query payload travels as an encoded string per the platform
// contract.
func (c *Client) Execute(ctx context.Context, handlerName, userMessage, agentKind string, opts ExecuteOptions) (map[string]any, error) {
	if handlerName == "" {
		return nil, types.NewError(types.ErrInputValidation, "handler name cannot be empty")
	}
	if userMessage == "" {
		return nil, types.NewError(types.ErrInputValidation, "user message cannot be empty")
	}
	if opts.UserID == "" {
		opts.UserID = "not-authorized"
	}

	payload, err := json.Marshal(map[string]string{"userMessage": userMessage})
	if err != nil {
		return nil, types.NewError(types.ErrInvalidRequest, "failed to encode query payload").WithCause(err)
	}

	body := executeRequest{
		HandlerName:  handlerName,
		UserID:       opts.UserID,
		AgentKind:    agentKind,
		QueryPayload: string(payload),
	}

	var resp map[string]any
	path := fmt.Sprintf("/agents/api/%s/realtime/execute-agents", c.clientID)
	if err := c.api.PostJSON(ctx, path, body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
