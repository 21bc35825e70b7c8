package rootpak

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/go-containerregistry/pkg/crane"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/mutate"
	"github.com/mirkobrombin/rootpak/pkg/tools"
	"github.com/schollz/progressbar/v3"
)

// Puller populates dest with the unpacked filesystem of image:tag. dest
// does not exist yet, its parent does.
type Puller interface {
	Pull(ctx context.Context, image, tag, dest string) error
}

// CranePuller pulls images from a registry and unpacks the flattened
// filesystem with the tar binary, so device nodes and ownership are
// recreated as in the image.
type CranePuller struct {
	// Platform is the os/arch[/variant] to pull, the registry default
	// when empty.
	Platform string

	// Progress receives a byte counter while unpacking, nil disables it.
	Progress io.Writer
}

func (p *CranePuller) Pull(ctx context.Context, image, tag, dest string) (err error) {
	ref, err := tools.ImageReference(image, tag)
	if err != nil {
		return
	}

	opts := []crane.Option{crane.WithContext(ctx)}
	if p.Platform != "" {
		var platform *v1.Platform
		platform, err = v1.ParsePlatform(p.Platform)
		if err != nil {
			return fmt.Errorf("invalid platform %q: %w", p.Platform, err)
		}
		opts = append(opts, crane.WithPlatform(platform))
	}

	// getting the v1.Image of the remote image
	img, err := crane.Pull(ref, opts...)
	if err != nil {
		return
	}

	err = os.MkdirAll(dest, 0755)
	if err != nil {
		return
	}

	// mutate.Extract flattens all the layers, whiteouts applied
	rc := mutate.Extract(img)
	defer rc.Close()

	var r io.Reader = rc
	if p.Progress != nil {
		bar := progressbar.NewOptions64(-1,
			progressbar.OptionSetWriter(p.Progress),
			progressbar.OptionSetDescription(fmt.Sprintf("Unpacking %s", ref)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionOnCompletion(func() { fmt.Fprint(p.Progress, "\n") }),
		)
		defer bar.Finish()
		r = io.TeeReader(rc, bar)
	}

	return tools.TarUnpackStream(ctx, r, dest)
}
