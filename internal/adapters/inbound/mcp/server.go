package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

// NewStackAuditMCPServer creates an MCP server with all stackaudit tools
// registered. The projectPath is the root directory of the project to audit.
func NewStackAuditMCPServer(projectPath string, log *logrus.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"stackaudit",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	registerTools(s, projectPath, log)

	return s
}
