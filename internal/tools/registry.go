package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yooncheol/bapsang/internal/logging"
)

// Registry manages tool registration and discovery.
type Registry struct {
	tools  map[string]Tool
	mu     sync.RWMutex
	logger *logging.Logger
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logging.GetLogger("tools"),
	}
}

// NewMockRegistry creates a registry with the full capability set
// backed by deterministic mock data. This is the default registry for
// the server, the chat TUI and the tests; no network access required.
func NewMockRegistry() *Registry {
	r := NewRegistry()

	r.register(NewShoppingSearchTool())
	r.register(NewCheapestTool())
	r.register(NewComparePricesTool())
	r.register(NewRecipeSearchTool())
	r.register(NewCalorieLookupTool())
	r.register(NewMealCaloriesTool())
	r.register(NewWeatherLookupTool())
	r.register(NewHealthGuidelinesTool())
	r.register(NewFoodCompatibilityTool())
	r.register(NewCalculatorTool())
	r.register(NewSumPricesTool())
	r.register(NewCurrentTimeTool())
	r.register(NewCookingTimeTool())

	return r
}

// register adds a tool to the registry (internal, no locking).
func (r *Registry) register(tool Tool) {
	r.tools[tool.Name()] = tool
	r.logger.Debug("registered tool: %s", tool.Name())
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.register(tool)
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// List returns all registered tools.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	return tools
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Descriptions renders a "- name: description" list for prompts.
func (r *Registry) Descriptions() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	out := ""
	for _, name := range names {
		out += fmt.Sprintf("- %s: %s\n", name, r.tools[name].Description())
	}
	return out
}

// Execute runs a tool by name with the given input. An unknown name
// is a failure Result, not an error; tool errors are converted to
// failure Results as well.
func (r *Registry) Execute(ctx context.Context, name string, input json.RawMessage) *Result {
	tool, ok := r.Get(name)
	if !ok {
		return &Result{
			Success: false,
			Error:   fmt.Sprintf("tool %q not found", name),
		}
	}

	start := time.Now()
	result, err := tool.Execute(ctx, input)
	if err != nil {
		return &Result{
			Success:   false,
			Error:     err.Error(),
			ElapsedMs: time.Since(start).Milliseconds(),
		}
	}
	if result == nil {
		return &Result{
			Success:   false,
			Error:     fmt.Sprintf("tool %q returned no result", name),
			ElapsedMs: time.Since(start).Milliseconds(),
		}
	}

	result.ElapsedMs = time.Since(start).Milliseconds()

	// Truncate oversized results to prevent context overflow
	result = truncateResult(result, MaxToolResponseBytes)

	return result
}
