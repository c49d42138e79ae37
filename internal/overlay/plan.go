package overlay

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mgpai22/tarjama/internal/filtergraph"
)

// stream labels chaining the logo stages
const (
	videoStream = "0:v"
	logoStream  = "1:v"
	logoLabel   = "logo"
	baseLabel   = "base"
	outLabel    = "out"
)

// InputRole identifies what an input asset is used for.
type InputRole string

const (
	RoleVideo InputRole = "video"
	RoleLogo  InputRole = "logo"
)

// Input is an asset passed to the renderer with -i, in order.
type Input struct {
	Path string
	Role InputRole
}

// Plan is the complete render description for one job. It is built once and
// not modified afterwards.
type Plan struct {
	Inputs    []Input
	Graph     filtergraph.Graph
	CopyAudio bool
}

// Build plans the render of video with the subtitle track burned in and, for
// a LogoOverlay, the logo composited first.
func Build(videoPath, trackPath string, style Style, ov Overlay) (*Plan, error) {
	if strings.TrimSpace(videoPath) == "" {
		return nil, fmt.Errorf("video path is required")
	}
	if strings.TrimSpace(trackPath) == "" {
		return nil, fmt.Errorf("subtitle track path is required")
	}
	if err := style.validate(); err != nil {
		return nil, err
	}

	burn := subtitlesFilter(trackPath, style)
	plan := &Plan{
		Inputs:    []Input{{Path: videoPath, Role: RoleVideo}},
		CopyAudio: true,
	}

	switch o := ov.(type) {
	case nil, NoOverlay:
		plan.Graph = filtergraph.Graph{Stages: []filtergraph.Stage{{
			Inputs:  []string{videoStream},
			Filters: []filtergraph.Filter{burn},
		}}}
	case LogoOverlay:
		if err := o.Logo.validate(); err != nil {
			return nil, err
		}
		plan.Inputs = append(plan.Inputs, Input{Path: o.Logo.Path, Role: RoleLogo})
		plan.Graph = filtergraph.Graph{Stages: []filtergraph.Stage{
			logoStage(o.Logo),
			overlayStage(o.Logo.Corner),
			{
				Inputs:  []string{baseLabel},
				Filters: []filtergraph.Filter{burn},
				Output:  outLabel,
			},
		}}
	default:
		return nil, fmt.Errorf("unsupported overlay %T", ov)
	}

	return plan, nil
}

// scales the logo relative to its own width and fades its alpha channel
func logoStage(l Logo) filtergraph.Stage {
	filters := []filtergraph.Filter{
		filtergraph.Positional("scale", "iw*"+formatFloat(float64(l.ScalePercent)/100), "-1"),
	}
	if l.Opacity < 1.0 {
		filters = append(filters,
			filtergraph.Positional("format", "rgba"),
			filtergraph.NewFilter("colorchannelmixer", "aa", formatFloat(l.Opacity)),
		)
	}
	return filtergraph.Stage{
		Inputs:  []string{logoStream},
		Filters: filters,
		Output:  logoLabel,
	}
}

func overlayStage(c Corner) filtergraph.Stage {
	x, y := c.position()
	return filtergraph.Stage{
		Inputs:  []string{videoStream, logoLabel},
		Filters: []filtergraph.Filter{filtergraph.Positional("overlay", x, y)},
		Output:  baseLabel,
	}
}

func subtitlesFilter(trackPath string, style Style) filtergraph.Filter {
	return filtergraph.Filter{
		Name: "subtitles",
		Args: []filtergraph.Arg{
			{Value: filtergraph.Quote(filtergraph.EscapePath(trackPath))},
			{Key: "force_style", Value: filtergraph.Quote(style.ForceStyle())},
		},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// HasLogo reports whether the plan composites a logo.
func (p *Plan) HasLogo() bool {
	for _, in := range p.Inputs {
		if in.Role == RoleLogo {
			return true
		}
	}
	return false
}

// FilterArgs returns the filter flag, its description and any stream maps.
func (p *Plan) FilterArgs() []string {
	if p.Graph.Simple() {
		return []string{"-vf", p.Graph.Stages[0].Chain()}
	}
	args := []string{"-filter_complex", p.Graph.String()}
	if outs := p.Graph.Outputs(); len(outs) > 0 {
		args = append(args, "-map", filtergraph.Label(outs[len(outs)-1]))
	}
	if p.CopyAudio {
		args = append(args, "-map", "0:a?")
	}
	return args
}

// Args builds the renderer argument list writing to output.
func (p *Plan) Args(output string) []string {
	args := []string{"-y"}
	for _, in := range p.Inputs {
		args = append(args, "-i", in.Path)
	}
	args = append(args, p.FilterArgs()...)
	if p.CopyAudio {
		args = append(args, "-c:a", "copy")
	}
	return append(args, output)
}
