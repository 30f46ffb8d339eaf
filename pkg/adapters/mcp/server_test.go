package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/verdant"
	"github.com/aretw0/verdant/pkg/adapters/memory"
	"github.com/aretw0/verdant/pkg/domain"
	"github.com/aretw0/verdant/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *verdant.Catalog) {
	t.Helper()
	enricher := ports.EnricherFunc(func(context.Context, string) (string, error) { return "11", nil })
	cat := verdant.New(memory.NewRepository(memory.WithEnricher(enricher)))
	_, err := cat.Start(context.Background())
	require.NoError(t, err)
	return NewServer(cat, nil), cat
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestListPlants(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleListPlants(context.Background(), call("list_plants", map[string]any{"query": "zz"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var plants []domain.Plant
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &plants))
	require.Len(t, plants, 1)
	assert.Equal(t, "ZZ Plant", plants[0].Type)
}

func TestAddPlant(t *testing.T) {
	s, cat := newTestServer(t)

	res, err := s.handleAddPlant(context.Background(), call("add_plant", map[string]any{"type": "Fern", "watering_period": float64(3)}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	var plant domain.Plant
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &plant))
	assert.Equal(t, "Fern", plant.Type)
	assert.Equal(t, 3, plant.WateringPeriod)
	assert.Len(t, cat.State().Items, 6)
}

func TestAddPlant_Invalid(t *testing.T) {
	s, cat := newTestServer(t)

	res, err := s.handleAddPlant(context.Background(), call("add_plant", map[string]any{"type": "Fern", "watering_period": float64(0)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "wateringPeriod")

	res, err = s.handleAddPlant(context.Background(), call("add_plant", map[string]any{"watering_period": float64(2)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Len(t, cat.State().Items, 5)
}

func TestDeleteAndEnrich(t *testing.T) {
	s, cat := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleEnrichPlant(ctx, call("enrich_plant", map[string]any{"id": "1"}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	assert.JSONEq(t, `{"id":"1","wateringDays":11}`, text(t, res))

	res, err = s.handleEnrichPlant(ctx, call("enrich_plant", map[string]any{"id": "ghost"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleDeletePlant(ctx, call("delete_plant", map[string]any{"id": "1"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	_, found := cat.State().Find("1")
	assert.False(t, found)
}

func TestGetState(t *testing.T) {
	s, _ := newTestServer(t)

	state, err := s.handleGetState(context.Background(), call("get_state", nil), nil)
	require.NoError(t, err)
	assert.Len(t, state.Items, 5)
	assert.False(t, state.Loading)
}

func TestReadPlantsResource(t *testing.T) {
	s, _ := newTestServer(t)

	req := mcp.ReadResourceRequest{}
	req.Params.URI = PlantsURI
	contents, err := s.readPlants(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	tc, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "application/json", tc.MIMEType)

	var plants []domain.Plant
	require.NoError(t, json.Unmarshal([]byte(tc.Text), &plants))
	assert.Equal(t, domain.DefaultPlants(), plants)
}

func TestToolsRegistered(t *testing.T) {
	s, _ := newTestServer(t)

	resp := s.MCPServer().HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var out struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))

	var names []string
	for _, tool := range out.Result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"list_plants", "add_plant", "delete_plant", "enrich_plant", "get_state"}, names)
}
