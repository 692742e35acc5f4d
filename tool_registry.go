package llmstream

import (
	"fmt"
	"sync"
)

// ToolDefinition describes how to create a tool
type ToolDefinition struct {
	Name        string                // Unique tool name
	Description string                // Human-readable description
	Factory     func() (*Tool, error) // Factory function to create tool
}

// ToolRegistry manages runtime registration of tools so agents can be
// assembled from names rather than inline definitions.
type ToolRegistry struct {
	tools map[string]ToolDefinition
	mu    sync.RWMutex
}

var (
	globalToolRegistry     *ToolRegistry
	globalToolRegistryOnce sync.Once
)

// GetToolRegistry returns the global tool registry (singleton)
func GetToolRegistry() *ToolRegistry {
	globalToolRegistryOnce.Do(func() {
		globalToolRegistry = &ToolRegistry{
			tools: make(map[string]ToolDefinition),
		}
		_ = globalToolRegistry.Register(ToolDefinition{
			Name:        "search",
			Description: "Web search tool",
			Factory:     NewSearchTool,
		})
	})
	return globalToolRegistry
}

// Register adds a tool definition to the registry
func (r *ToolRegistry) Register(def ToolDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if def.Factory == nil {
		return fmt.Errorf("factory function is required for tool %s", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("tool %s is already registered", def.Name)
	}
	r.tools[def.Name] = def
	return nil
}

// Create builds a tool instance by registered name.
func (r *ToolRegistry) Create(name string) (*Tool, error) {
	r.mu.RLock()
	def, exists := r.tools[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("tool %s is not registered", name)
	}
	return def.Factory()
}

// Names lists registered tool names.
func (r *ToolRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// BuildToolSet creates the tools an agent definition names. Unknown names
// fail rather than silently vanish from the agent's tool list.
func BuildToolSet(names []string) ([]Tool, error) {
	registry := GetToolRegistry()
	tools := make([]Tool, 0, len(names))
	for _, name := range names {
		tool, err := registry.Create(name)
		if err != nil {
			return nil, err
		}
		tools = append(tools, *tool)
	}
	return tools, nil
}
