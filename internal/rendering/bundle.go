package rendering

import (
	"context"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/teamverse/internal/types"
)

// RenderBundle renders every social post of bundle into outDir concurrently,
// one social-<audience>.png per audience at width×height (zero means the
// default). The bundle is validated first. The first failure cancels the rest.
func (r *SocialRenderer) RenderBundle(ctx context.Context, bundle *types.ContentBundle, outDir string, width, height int) (map[types.Audience]string, error) {
	if err := bundle.Validate(); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	paths := make(map[types.Audience]string, len(bundle.SocialPosts))

	g, ctx := errgroup.WithContext(ctx)
	for audience, post := range bundle.SocialPosts {
		g.Go(func() error {
			path, err := r.Render(ctx, post, filepath.Join(outDir, OutputName(audience)), width, height)
			if err != nil {
				return err
			}
			mu.Lock()
			paths[audience] = path
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
