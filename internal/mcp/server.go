// Package mcp wraps the turn engine in a Model Context Protocol server
// so MCP clients can drive conversations, resolve budget interrupts and
// inspect session state.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/yooncheol/bapsang/internal/agent"
	"github.com/yooncheol/bapsang/internal/mcp/tools"
)

// Tool is the interface implemented by the tool handlers in
// internal/mcp/tools.
type Tool interface {
	Execute(ctx context.Context, input json.RawMessage) (interface{}, error)
}

// BapsangServer wraps the mcp-go server with the agent tool set.
type BapsangServer struct {
	mcpServer *server.MCPServer
	engine    *agent.Engine
	tools     map[string]Tool
	version   string
}

// NewBapsangServer creates the MCP server and registers all tools and
// prompts.
func NewBapsangServer(engine *agent.Engine, version string) (*BapsangServer, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine is required")
	}

	mcpServer := server.NewMCPServer(
		"Bapsang MCP Server",
		version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	s := &BapsangServer{
		mcpServer: mcpServer,
		engine:    engine,
		tools:     make(map[string]Tool),
		version:   version,
	}

	s.registerTools()
	s.registerPrompts()

	return s, nil
}

func (s *BapsangServer) registerTools() {
	s.registerTool(
		"submit_turn",
		"Run one conversational turn: ask for a recipe, a meal plan or shopping help in Korean. Suspends with an interrupt prompt when the quoted shopping cost exceeds the budget.",
		tools.NewSubmitTurnTool(s.engine),
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Conversation identifier. Reuse it across turns to keep context.",
				},
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "Optional: owner of the long-term memory (defaults to session_id)",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "The user's request in Korean, e.g. '스테이크 만들고 싶어. 장보기 도와줘'",
				},
				"budget": map[string]interface{}{
					"type":        "integer",
					"description": "Optional: shopping budget in KRW for this turn",
				},
			},
			"required": []string{"session_id", "text"},
		},
	)

	s.registerTool(
		"resolve_interrupt",
		"Answer a pending budget interrupt. Choices: 'continue' (accept the overage), 'substitute' (re-quote with cheaper items), 'cancel' (abort the remaining work).",
		tools.NewResolveInterruptTool(s.engine),
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session whose turn is suspended",
				},
				"choice": map[string]interface{}{
					"type":        "string",
					"description": "One of: continue, substitute, cancel (Korean labels also accepted)",
				},
			},
			"required": []string{"session_id", "choice"},
		},
	)

	s.registerTool(
		"get_history",
		"List a session's past exchanges, oldest first. Older turns may be compacted into a single summary entry.",
		tools.NewGetHistoryTool(s.engine),
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session to inspect",
				},
			},
			"required": []string{"session_id"},
		},
	)

	s.registerTool(
		"get_memory",
		"List the long-term facts remembered about a user: allergies, preferences and budget habits.",
		tools.NewGetMemoryTool(s.engine),
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User whose memory to read",
				},
			},
			"required": []string{"user_id"},
		},
	)
}

func (s *BapsangServer) registerTool(name, description string, tool Tool, inputSchema map[string]interface{}) {
	s.tools[name] = tool

	schemaJSON, err := json.Marshal(inputSchema)
	if err != nil {
		// Only reachable with a malformed literal schema above.
		panic(fmt.Sprintf("failed to marshal schema for tool %s: %v", name, err))
	}

	mcpTool := mcp.NewToolWithRawSchema(name, description, schemaJSON)
	s.mcpServer.AddTool(mcpTool, s.createToolHandler(tool))
}

// createToolHandler adapts a Tool to the mcp-go handler signature. Tool
// failures become MCP error results, not protocol errors.
func (s *BapsangServer) createToolHandler(tool Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(request.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		result, err := tool.Execute(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Tool execution failed: %v", err)), nil
		}

		resultJSON, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
		}

		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}

func (s *BapsangServer) registerPrompts() {
	mealPlanPrompt := mcp.Prompt{
		Name:        "weekly_meal_planning",
		Description: "Plan a week of dinners within a fixed grocery budget",
		Arguments: []mcp.PromptArgument{
			{Name: "budget", Description: "Weekly grocery budget in KRW", Required: true},
			{Name: "servings", Description: "Optional: number of people to cook for", Required: false},
			{Name: "preferences", Description: "Optional: likes, dislikes or dietary limits", Required: false},
		},
	}

	s.mcpServer.AddPrompt(mealPlanPrompt, func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		budget := request.Params.Arguments["budget"]
		servings := request.Params.Arguments["servings"]
		preferences := request.Params.Arguments["preferences"]

		text := fmt.Sprintf("submit_turn 도구로 일주일 저녁 식단을 계획해 주세요. 주간 예산은 %s원입니다. 예산 인터럽트가 발생하면 resolve_interrupt로 처리하세요.", budget)
		if servings != "" {
			text += fmt.Sprintf(" 인원: %s명.", servings)
		}
		if preferences != "" {
			text += fmt.Sprintf(" 참고할 선호사항: %s", preferences)
		}

		messages := []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: text,
				},
			},
		}

		return &mcp.GetPromptResult{
			Description: "Weekly meal planning workflow",
			Messages:    messages,
		}, nil
	})

	groceryPrompt := mcp.Prompt{
		Name:        "budget_grocery_run",
		Description: "Shop ingredients for one dish while staying inside a budget",
		Arguments: []mcp.PromptArgument{
			{Name: "dish", Description: "The dish to shop for", Required: true},
			{Name: "budget", Description: "Shopping budget in KRW", Required: true},
		},
	}

	s.mcpServer.AddPrompt(groceryPrompt, func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		dish := request.Params.Arguments["dish"]
		budget := request.Params.Arguments["budget"]

		text := fmt.Sprintf("submit_turn 도구로 '%s' 재료 장보기를 요청하세요 (budget: %s). 예산을 초과하면 resolve_interrupt에서 'substitute'를 선택해 저렴한 대안으로 다시 견적을 받으세요.", dish, budget)

		messages := []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: text,
				},
			},
		}

		return &mcp.GetPromptResult{
			Description: "Budget-bounded grocery workflow",
			Messages:    messages,
		}, nil
	})
}

// GetMCPServer returns the underlying mcp-go server for transport
// setup: ServeStdio for --stdio, StreamableHTTPServer for the /v1/mcp
// mount.
func (s *BapsangServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
