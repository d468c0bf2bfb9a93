package guideserver

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_guide/internal/engine"
	"github.com/anatolykoptev/go_guide/internal/export"
	"github.com/anatolykoptev/go_guide/internal/render"
	"github.com/anatolykoptev/go_guide/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerGuideExport(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "guide_export",
		Description: "Generate a step-by-step guide from a YouTube video and write it to disk as a rendered PDF (default) or a Markdown document. Returns the path of the written file.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.GuideExportInput) (*mcp.CallToolResult, *engine.GuideExportOutput, error) {
		if input.URL == "" {
			return nil, nil, fmt.Errorf("url is required")
		}
		format := input.Format
		if format == "" {
			format = "pdf"
		}
		if format != "pdf" && format != "md" {
			return nil, nil, fmt.Errorf("unknown format %q (want pdf or md)", input.Format)
		}

		guide, err := engine.GenerateGuide(ctx, engine.GuideRequest{
			URL:              input.URL,
			ManualTranscript: input.ManualTranscript,
			Language:         toolutil.NormLang(input.Language),
		}, nil)
		if err != nil {
			return nil, nil, err
		}

		var art *export.Artifact
		switch format {
		case "pdf":
			art, err = export.GuidePDF(ctx, *guide, render.Options{FetchImages: true})
			if err != nil {
				return nil, nil, err
			}
		case "md":
			art = export.GuideMarkdown(*guide)
		}

		path, err := toolutil.WriteArtifact(engine.Cfg.OutputDir, art)
		if err != nil {
			return nil, nil, err
		}
		return nil, &engine.GuideExportOutput{
			Path:   path,
			Format: format,
			Title:  guide.Title,
			Steps:  len(guide.Steps),
		}, nil
	})
}
