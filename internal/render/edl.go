package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/EmrullahAydogan/video-studio/internal/timeline"
)

// GenerateEDL renders the project's video track as a CMX3600 edit decision
// list. Source in/out points account for the scene trim offsets, so a split
// or trimmed scene points into the correct region of its source media.
// Record times follow the scene start times, preserving any gaps as black.
func GenerateEDL(p *timeline.Project) string {
	fps := p.FPS
	if fps <= 0 {
		fps = timeline.DefaultFPS
	}

	lines := []string{
		fmt.Sprintf("TITLE: %s", p.Name),
		"FCM: NON-DROP FRAME",
		"",
	}

	for i := range p.Scenes {
		s := &p.Scenes[i]

		srcInMs := int(math.Round(s.TrimStart * 1000))
		srcOutMs := srcInMs + int(math.Round(s.Duration*1000))
		recInMs := int(math.Round(s.StartTime * 1000))
		recOutMs := recInMs + int(math.Round(s.Duration*1000))

		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, "AX", "V",
				msToTimecode(srcInMs, fps), msToTimecode(srcOutMs, fps),
				msToTimecode(recInMs, fps), msToTimecode(recOutMs, fps)),
			fmt.Sprintf("* FROM CLIP NAME:  %s", s.Name),
		)
		if s.Src != "" {
			lines = append(lines, fmt.Sprintf("* MEDIA PATH:  %s", s.Src))
		}
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func msToTimecode(ms int, fps int) string {
	totalFrames := int(math.Round(float64(ms) * float64(fps) / 1000.0))
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, frames)
}
