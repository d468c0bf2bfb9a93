// Package guideserver registers the MCP tools of go_guide.
package guideserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools registers all guide tools on the given MCP server:
// video_transcript, guide_generate, guide_export.
func RegisterTools(server *mcp.Server) {
	registerVideoTranscript(server)
	registerGuideGenerate(server)
	registerGuideExport(server)
}
