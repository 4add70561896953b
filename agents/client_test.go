package agents

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/altairlabs/platformkit/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		BaseURL:  srv.URL,
		APIKey:   "test-key",
		ClientID: "acme",
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing base url", Config{ClientID: "acme"}},
		{"missing client id", Config{BaseURL: "http://localhost"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg, nil)
			require.Error(t, err)
			assert.Equal(t, types.ErrConfiguration, types.GetErrorCode(err))
		})
	}
}

func TestCreateAgent(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/agents/api/acme/agents", r.URL.Path)
		assert.Equal(t, PlatformAPIVersion, r.Header.Get("Platform-Api-Version"))
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"created"}`))
	})

	resp, err := client.CreateAgent(context.Background(), Agent{
		Name:         "summarizer",
		Kind:         "chat",
		Instructions: "Summarize the document.",
	})
	require.NoError(t, err)
	assert.Equal(t, "created", resp["status"])

	assert.Equal(t, "summarizer", gotBody["agentName"])
	assert.Equal(t, "chat", gotBody["agentKind"])
	assert.Equal(t, defaultDeployment, gotBody["modelDeploymentName"])
	assert.Equal(t, defaultTemperature, gotBody["temperature"])
	assert.Equal(t, float64(defaultMaxTokens), gotBody["maxTokens"])

	instructions, ok := gotBody["instructions"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(instructions, "Summarize the document."))
	assert.Equal(t, 1, strings.Count(instructions, "{{payload.userMessage}}"))
}

func TestCreateAgent_Validation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	tests := []struct {
		name  string
		agent Agent
	}{
		{"missing name", Agent{Kind: "chat"}},
		{"missing kind", Agent{Name: "summarizer"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CreateAgent(context.Background(), tt.agent)
			require.Error(t, err)
			assert.Equal(t, types.ErrInputValidation, types.GetErrorCode(err))
		})
	}
}

func TestListAgents(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/agents/api/acme/agents", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"agents":[{"agentName":"summarizer"}]}`))
	})

	resp, err := client.ListAgents(context.Background())
	require.NoError(t, err)
	assert.Contains(t, resp, "agents")
}

func TestUpdateAgent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/agents/api/acme/agents/summarizer/chat", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Be brief.", body["instructions"])
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"updated"}`))
	})

	resp, err := client.UpdateAgent(context.Background(), Agent{
		Name:         "summarizer",
		Kind:         "chat",
		Instructions: "Be brief.",
	})
	require.NoError(t, err)
	assert.Equal(t, "updated", resp["status"])
}

func TestDeleteAgent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/agents/api/acme/agents/summarizer/chat", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"deleted"}`))
	})

	resp, err := client.DeleteAgent(context.Background(), "summarizer", "chat")
	require.NoError(t, err)
	assert.Equal(t, "deleted", resp["status"])
}

func TestDeleteAgent_Validation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	_, err := client.DeleteAgent(context.Background(), "", "chat")
	require.Error(t, err)
	assert.Equal(t, types.ErrInputValidation, types.GetErrorCode(err))
}

func TestCreateAgentGroup(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/agents/api/acme/agent-groups", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"created"}`))
	})

	_, err := client.CreateAgentGroup(context.Background(), AgentGroup{
		Name:   "research-team",
		Agents: []AgentRef{{Name: "summarizer", Kind: "chat"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "research-team", gotBody["agentGroupName"])
	assert.Equal(t, float64(defaultIterations), gotBody["maximumNumberOfIteration"])
	assert.Equal(t, float64(defaultHistory), gotBody["maximumNumberOfHistoryItems"])
	assert.Equal(t, defaultDeployment, gotBody["deploymentName"])

	members, ok := gotBody["agents"].([]any)
	require.True(t, ok)
	require.Len(t, members, 1)
	member := members[0].(map[string]any)
	assert.Equal(t, "summarizer", member["agentName"])
	assert.Equal(t, "chat", member["agentKind"])
}

func TestCreateAgentGroup_Validation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	tests := []struct {
		name  string
		group AgentGroup
	}{
		{"missing name", AgentGroup{Agents: []AgentRef{{Name: "a", Kind: "chat"}}}},
		{"no members", AgentGroup{Name: "research-team"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CreateAgentGroup(context.Background(), tt.group)
			require.Error(t, err)
			assert.Equal(t, types.ErrInputValidation, types.GetErrorCode(err))
		})
	}
}

func TestUpdateAndDeleteAgentGroup(t *testing.T) {
	var gotMethod, gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	_, err := client.UpdateAgentGroup(context.Background(), AgentGroup{
		Name:   "research-team",
		Agents: []AgentRef{{Name: "summarizer", Kind: "chat"}},
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/agents/api/acme/agent-groups/research-team", gotPath)

	_, err = client.DeleteAgentGroup(context.Background(), "research-team")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/agents/api/acme/agent-groups/research-team", gotPath)
}

func TestExecute(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/agents/api/acme/realtime/execute-agents", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":"42"}`))
	})

	resp, err := client.Execute(context.Background(), "research-team", "What is the answer?", "group", ExecuteOptions{})
	require.NoError(t, err)
	assert.Equal(t, "42", resp["result"])

	assert.Equal(t, "research-team", gotBody["handlerName"])
	assert.Equal(t, "not-authorized", gotBody["userId"])
	assert.Equal(t, "group", gotBody["agentKind"])

	// The query payload travels as an encoded string.
	raw, ok := gotBody["QueryPayload"].(string)
	require.True(t, ok)
	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	assert.Equal(t, "What is the answer?", payload["userMessage"])
}

func TestExecute_CustomUserID(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})

	_, err := client.Execute(context.Background(), "summarizer", "hello", "chat", ExecuteOptions{UserID: "user-7"})
	require.NoError(t, err)
	assert.Equal(t, "user-7", gotBody["userId"])
}

func TestExecute_Validation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.Execute(context.Background(), "", "hello", "chat", ExecuteOptions{})
	require.Error(t, err)
	assert.Equal(t, types.ErrInputValidation, types.GetErrorCode(err))

	_, err = client.Execute(context.Background(), "summarizer", "", "chat", ExecuteOptions{})
	require.Error(t, err)
	assert.Equal(t, types.ErrInputValidation, types.GetErrorCode(err))
}
