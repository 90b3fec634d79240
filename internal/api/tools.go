package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/pkgsmith/pkgsmith/internal/actions"
	"github.com/pkgsmith/pkgsmith/internal/lookup"
	"github.com/pkgsmith/pkgsmith/internal/output"
	"github.com/pkgsmith/pkgsmith/internal/tools"
)

const packagesSchema = `{
  "type": "object",
  "properties": {
    "packages": {
      "type": "array",
      "description": "Package version lookups to perform",
      "items": {
        "type": "object",
        "properties": {
          "ecosystem": {
            "type": "string",
            "enum": ["npm", "pypi", "maven", "helm", "terraform-provider", "github", "docker"],
            "description": "Package ecosystem"
          },
          "package_name": {
            "type": "string",
            "description": "Package identifier: name, maven coordinate, chart URL, owner/repo or image reference"
          },
          "version": {
            "type": "string",
            "description": "Optional currently used version; constrains the answer to its compatibility profile"
          }
        },
        "required": ["ecosystem", "package_name"]
      }
    }
  },
  "required": ["packages"]
}`

const actionsSchema = `{
  "type": "object",
  "properties": {
    "action_names": {
      "type": "array",
      "items": {"type": "string"},
      "description": "GitHub Actions in owner/repo format, e.g. actions/checkout"
    },
    "include_readme": {
      "type": "boolean",
      "description": "Include each action's README.md content"
    }
  },
  "required": ["action_names"]
}`

const toolsSchema = `{
  "type": "object",
  "properties": {
    "tool_names": {
      "type": "array",
      "items": {"type": "string"},
      "description": "Developer tool names, e.g. terraform, kubectl, node"
    }
  },
  "required": ["tool_names"]
}`

const emptySchema = `{"type": "object", "properties": {}}`

// registerTools wires the MCP tool surface.
func (s *Server) registerTools(m *server.MCPServer) {
	m.AddTool(mcp.NewToolWithRawSchema(
		"get_latest_package_versions",
		"Get the latest versions of packages across ecosystems (npm, PyPI, Maven, Helm, Terraform providers, GitHub releases, Docker images). Returns successful lookups and per-package errors.",
		json.RawMessage(packagesSchema),
	), s.handleGetLatestPackageVersions)

	m.AddTool(mcp.NewToolWithRawSchema(
		"get_github_action_versions_and_args",
		"Get the latest tag and action.yml interface (inputs, outputs, runs) for GitHub Actions, optionally with the README for usage instructions.",
		json.RawMessage(actionsSchema),
	), s.handleGetGitHubActionVersions)

	m.AddTool(mcp.NewToolWithRawSchema(
		"get_latest_tool_versions",
		"Get the latest versions of developer tools (terraform, kubectl, node, python, ...) as known to mise.",
		json.RawMessage(toolsSchema),
	), s.handleGetLatestToolVersions)

	m.AddTool(mcp.NewToolWithRawSchema(
		"get_supported_tools",
		"List the developer tool names supported by get_latest_tool_versions.",
		json.RawMessage(emptySchema),
	), s.handleGetSupportedTools)
}

func (s *Server) handleGetLatestPackageVersions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Packages []lookup.Request `json:"packages"`
	}
	if err := bindArguments(req, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return textResult(s.orchestrator.GetLatestVersions(ctx, args.Packages))
}

func (s *Server) handleGetGitHubActionVersions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		ActionNames   []string `json:"action_names"`
		IncludeReadme bool     `json:"include_readme"`
	}
	if err := bindArguments(req, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	type slot struct {
		result *actions.ActionResult
		err    *actions.ActionError
	}
	slots := make([]slot, len(args.ActionNames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(toolConcurrency)
	for i, name := range args.ActionNames {
		g.Go(func() error {
			result, lookupErr := s.actions.Fetch(gctx, name, args.IncludeReadme)
			if lookupErr != nil {
				slots[i] = slot{err: lookupErr}
			} else {
				slots[i] = slot{result: &result}
			}
			return nil
		})
	}
	g.Wait()

	response := actions.Response{
		Result:       []actions.ActionResult{},
		LookupErrors: []actions.ActionError{},
	}
	for _, out := range slots {
		if out.result != nil {
			response.Result = append(response.Result, *out.result)
		} else if out.err != nil {
			response.LookupErrors = append(response.LookupErrors, *out.err)
		}
	}
	return textResult(response)
}

func (s *Server) handleGetLatestToolVersions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		ToolNames []string `json:"tool_names"`
	}
	if err := bindArguments(req, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	type slot struct {
		version string
		err     error
	}
	slots := make([]slot, len(args.ToolNames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(toolConcurrency)
	for i, name := range args.ToolNames {
		g.Go(func() error {
			version, err := s.mise.LatestVersion(gctx, name)
			slots[i] = slot{version: version, err: err}
			return nil
		})
	}
	g.Wait()

	response := tools.Response{
		Result:       []tools.ToolVersion{},
		LookupErrors: []tools.ToolError{},
	}
	for i, name := range args.ToolNames {
		if slots[i].err != nil {
			response.LookupErrors = append(response.LookupErrors, tools.ToolError{
				ToolName: name,
				Error:    slots[i].err.Error(),
			})
			continue
		}
		response.Result = append(response.Result, tools.ToolVersion{
			ToolName:      name,
			LatestVersion: slots[i].version,
		})
	}
	return textResult(response)
}

func (s *Server) handleGetSupportedTools(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.mise.SupportedTools(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list supported tools: %v", err)), nil
	}

	return textResult(map[string]any{"result": names})
}

// toolConcurrency bounds parallel per-item work inside one tool call.
const toolConcurrency = 8

// bindArguments decodes a tool call's arguments into a typed struct.
func bindArguments(req mcp.CallToolRequest, v any) error {
	data, err := json.Marshal(req.GetArguments())
	if err != nil {
		return fmt.Errorf("failed to encode arguments: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// textResult marshals a tool response as JSON text content.
func textResult(v any) (*mcp.CallToolResult, error) {
	text, err := output.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	return mcp.NewToolResultText(text), nil
}
