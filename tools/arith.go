package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AddInput defines input for add tool
type AddInput struct {
	A int `json:"a" jsonschema:"First addend"`
	B int `json:"b" jsonschema:"Second addend"`
}

// AddOutput defines output for add tool
type AddOutput struct {
	Sum int `json:"sum"`
}

// RegisterUtilityTools registers add.
func RegisterUtilityTools(server *mcp.Server) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "add",
			Description: "Add two numbers",
		},
		Add,
	)
}

// Add returns a + b
func Add(ctx context.Context, req *mcp.CallToolRequest, input AddInput) (*mcp.CallToolResult, AddOutput, error) {
	return nil, AddOutput{Sum: input.A + input.B}, nil
}
