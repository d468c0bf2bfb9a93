package guideserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_guide/internal/engine"
	"github.com/anatolykoptev/go_guide/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerGuideGenerate(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "guide_generate",
		Description: "Turn a YouTube video into a structured step-by-step guide. Resolves the URL, fetches metadata and transcript, synthesizes numbered steps with an LLM, and links every step back to its moment in the video. Pass manualTranscript to use your own transcript instead of fetching captions.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.GuideRequest) (*mcp.CallToolResult, *engine.GuideData, error) {
		if input.URL == "" {
			return nil, nil, fmt.Errorf("url is required")
		}
		input.Language = toolutil.NormLang(input.Language)

		guide, err := engine.GenerateGuide(ctx, input, func(p engine.Progress) {
			slog.Debug("guide progress",
				slog.String("stage", p.Stage.String()),
				slog.Int("percent", p.Percent))
		})
		if err != nil {
			return nil, nil, err
		}
		return nil, guide, nil
	})
}
