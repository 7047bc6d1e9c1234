package main

import (
	"github.com/panbanda/deadfiles/internal/mcpserver"
	"github.com/urfave/cli/v2"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes dead file detection
as tools that LLM assistants can invoke.

Add to an MCP client config:
  {
    "mcpServers": {
      "deadfiles": {
        "command": "deadfiles",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - find_dead_files     Files no entry point reaches
  - dependency_graph    Mermaid flowchart of the reachable modules`,
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	server := mcpserver.NewServer(version)
	return server.Run(c.Context)
}
