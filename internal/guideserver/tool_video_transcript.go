package guideserver

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_guide/internal/engine"
	"github.com/anatolykoptev/go_guide/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerVideoTranscript(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_transcript",
		Description: "Fetch the transcript of a YouTube video together with its title, author, and thumbnail. Accepts youtu.be, watch?v=, shorts, and embed URLs. Returns timestamped lines ([12s] spoken text). Pass manualTranscript to skip remote caption fetching when a video has no usable captions.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.GuideRequest) (*mcp.CallToolResult, *engine.TranscriptResult, error) {
		if input.URL == "" {
			return nil, nil, fmt.Errorf("url is required")
		}
		input.Language = toolutil.NormLang(input.Language)

		res, err := engine.FetchTranscriptResult(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		return nil, res, nil
	})
}
