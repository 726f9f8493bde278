package pipeline

import (
	"bytes"
	"context"
	"fmt"

	mhio "github.com/matzehuels/modhouse/pkg/io"
	"github.com/matzehuels/modhouse/pkg/layout"
	"github.com/matzehuels/modhouse/pkg/render/matrixdot"
)

// Render generates output artifacts in the requested formats. JSON is the
// snapshot; every other format draws the layout matrix.
func Render(ctx context.Context, snap *mhio.Snapshot, m *layout.Matrix, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	var dot string
	for _, format := range opts.Formats {
		if format != FormatJSON && dot == "" {
			dot = matrixdot.ToDOT(m, matrixdot.Options{Detailed: opts.Detailed})
		}

		var data []byte
		var err error

		switch format {
		case FormatJSON:
			var buf bytes.Buffer
			err = mhio.WriteSnapshot(snap, &buf)
			data = buf.Bytes()
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = matrixdot.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = matrixdot.RenderPNG(ctx, dot, DefaultPNGScale)
		case FormatPDF:
			data, err = matrixdot.RenderPDF(ctx, dot)
		default:
			err = ValidateFormat(format)
		}
		if err == nil {
			err = ctx.Err()
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
