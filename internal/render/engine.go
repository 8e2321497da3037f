package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/EmrullahAydogan/video-studio/internal/timeline"
)

// Engine is the encoding backend contract. Implementations read the project
// snapshot, write the output file and report progress in percent.
type Engine interface {
	Render(ctx context.Context, p *timeline.Project, format Format, outputPath string, progress func(percent int)) error
}

// StubEngine stands in for a real encoder. It validates the snapshot, writes
// the timeline's EDL next to the would-be output and walks progress to 100,
// which is enough to exercise the queue end to end in development and tests.
type StubEngine struct{}

func NewStubEngine() *StubEngine {
	return &StubEngine{}
}

func (e *StubEngine) Render(ctx context.Context, p *timeline.Project, format Format, outputPath string, progress func(percent int)) error {
	if err := ValidateSnapshot(p); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	steps := len(p.Scenes)
	for i := range p.Scenes {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if progress != nil {
			progress((i + 1) * 100 / steps)
		}
	}

	edl := GenerateEDL(p)
	if err := os.WriteFile(edlPath(outputPath), []byte(edl), 0o644); err != nil {
		return fmt.Errorf("write edl: %w", err)
	}

	placeholder := fmt.Sprintf("video-studio stub render: %s (%s, %dx%d @ %d fps)\n",
		p.Name, format, p.Resolution.Width, p.Resolution.Height, p.FPS)
	if err := os.WriteFile(outputPath, []byte(placeholder), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func edlPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return outputPath[:len(outputPath)-len(ext)] + ".edl"
}
