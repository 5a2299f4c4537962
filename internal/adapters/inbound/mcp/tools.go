package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/stackaudit/stackaudit/internal/adapters/outbound/config"
	"github.com/stackaudit/stackaudit/internal/adapters/outbound/dockerd"
	"github.com/stackaudit/stackaudit/internal/adapters/outbound/files"
	"github.com/stackaudit/stackaudit/internal/adapters/outbound/httpprobe"
	"github.com/stackaudit/stackaudit/internal/adapters/outbound/trivyscan"
	"github.com/stackaudit/stackaudit/internal/application"
	"github.com/stackaudit/stackaudit/internal/domain"
	"github.com/stackaudit/stackaudit/internal/domain/policy"
)

// registerTools registers all stackaudit MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string, log *logrus.Logger) {
	// 1. stackaudit_audit
	s.AddTool(
		mcplib.NewTool("stackaudit_audit",
			mcplib.WithDescription("Run every audit category over the project's stack and return the aggregated suite report as JSON"),
			mcplib.WithString("base_url", mcplib.Description("Override the configured API base URL")),
		),
		handleAudit(projectPath, log),
	)

	// 2. stackaudit_category
	s.AddTool(
		mcplib.NewTool("stackaudit_category",
			mcplib.WithDescription("Run a single audit category and return its scored report as JSON"),
			mcplib.WithString("category",
				mcplib.Required(),
				mcplib.Description("Category to run: security, capabilities, multistage, environment, orchestration or api"),
			),
			mcplib.WithString("base_url", mcplib.Description("Override the configured API base URL (api category only)")),
		),
		handleCategory(projectPath, log),
	)

	// 3. stackaudit_scan
	s.AddTool(
		mcplib.NewTool("stackaudit_scan",
			mcplib.WithDescription("Scan project and base images for known vulnerabilities and return the scored report as JSON"),
			mcplib.WithString("severity", mcplib.Description("Severity filter passed to the scanner (default HIGH,CRITICAL)")),
		),
		handleScan(projectPath, log),
	)
}

// newServices creates the standard set of outbound adapters and services.
// The returned cleanup closes the runtime client when one was opened.
func newServices(log *logrus.Logger) (*application.AuditService, *application.ScanService, func()) {
	var (
		containers domain.ContainerInspector
		images     domain.ImageInspector
		cleanup    = func() {}
	)
	if inspector, err := dockerd.New(log); err == nil {
		containers = inspector
		images = inspector
		cleanup = func() { _ = inspector.Close() }
	}

	scanner := files.New(log)
	prober := httpprobe.New(log)
	loader := config.New()

	audit := application.NewAuditService(containers, images, scanner, prober, loader)
	scan := application.NewScanService(trivyscan.New(log), images, loader)
	return audit, scan, cleanup
}

func handleAudit(projectPath string, log *logrus.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		audit, _, cleanup := newServices(log)
		defer cleanup()

		baseURL, _ := request.GetArguments()["base_url"].(string)
		suiteSvc := application.NewSuiteService(audit)
		suite, reports := suiteSvc.RunSuite(ctx, application.SuiteRequest{
			ProjectPath: projectPath,
			BaseURL:     baseURL,
		})

		payload := struct {
			Suite   *domain.SuiteReport     `json:"suite"`
			Reports []domain.CategoryReport `json:"reports"`
		}{suite, reports}
		return jsonResult(payload)
	}
}

func handleCategory(projectPath string, log *logrus.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		category, err := request.RequireString("category")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		if category == "caps" {
			category = policy.CategoryCapabilities
		}

		audit, _, cleanup := newServices(log)
		defer cleanup()

		baseURL, _ := request.GetArguments()["base_url"].(string)
		report, err := audit.RunCategory(ctx, category, application.AuditRequest{
			ProjectPath: projectPath,
			BaseURL:     baseURL,
		})
		if err != nil {
			return errorResult(fmt.Sprintf("audit failed: %v", err)), nil
		}
		return jsonResult(report)
	}
}

func handleScan(projectPath string, log *logrus.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		_, scan, cleanup := newServices(log)
		defer cleanup()

		severity, _ := request.GetArguments()["severity"].(string)
		report, err := scan.Run(ctx, application.ScanRequest{
			ProjectPath: projectPath,
			Severity:    severity,
		})
		if err != nil {
			return errorResult(fmt.Sprintf("scan failed: %v", err)), nil
		}
		return jsonResult(report)
	}
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
