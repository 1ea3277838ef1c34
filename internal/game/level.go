package game

import (
	"context"
	"log/slog"

	"github.com/san-kum/topple/internal/config"
	"github.com/san-kum/topple/internal/geom"
	"github.com/san-kum/topple/internal/physics"
)

// Builder constructs the toppling structure deterministically: two
// towers, a gate of pillar columns between them, a two-block bridge
// deck joined to the towers, and a crown block.
//
// A block whose construction fails is skipped and logged; any joint
// that would reference it is never attempted. Build order guarantees a
// joint's endpoints are known-successful before the joint is created.
type Builder struct {
	registry *Registry
	world    *physics.World
	log      *slog.Logger
	cfg      config.LevelConf
}

func NewBuilder(registry *Registry, world *physics.World, cfg config.LevelConf, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{registry: registry, world: world, log: log, cfg: cfg}
}

// Build creates the structure and registers every successful block.
// Only a ground-slab failure is fatal; individual block failures
// degrade the structure instead.
func (b *Builder) Build(ctx context.Context) error {
	s := b.cfg.BlockSize
	d := b.cfg.Spacing
	n := b.cfg.TowerHeight
	gate := b.cfg.GateColumns

	leftX := b.cfg.OriginX
	rightX := b.cfg.OriginX + float64(gate+1)*d
	groundY := b.cfg.OriginY

	// The ground slab everything stands on. Without it there is no
	// structure, so failure here aborts the build.
	groundW := (rightX - leftX) + 8*s
	if _, err := b.registry.Create(ctx, Ground,
		geom.V((leftX+rightX)/2, groundY-s/2), groundW, s, physics.Fixed); err != nil {
		return err
	}

	blockY := func(i int) float64 { return groundY + s/2 + float64(i)*s }

	leftTop := b.tower(ctx, leftX, groundY, n)
	rightTop := b.tower(ctx, rightX, groundY, n)

	// Gate pillars between the towers. The spacing between columns is
	// the gate's gap.
	pillarHeight := n - 2
	if pillarHeight < 1 {
		pillarHeight = 1
	}
	for i := 1; i <= gate; i++ {
		b.tower(ctx, leftX+float64(i)*d, groundY, pillarHeight)
	}

	// Bridge deck: two adjacent blocks at tower-top height, centered
	// in the span.
	cx := (leftX + rightX) / 2
	deckY := blockY(n)
	deckL := b.block(ctx, geom.V(cx-s/2, deckY))
	deckR := b.block(ctx, geom.V(cx+s/2, deckY))

	if deckL != nil && deckR != nil {
		b.joinAt(deckL, deckR, geom.V(cx, deckY))
	}
	if deckL != nil && leftTop != nil {
		b.joinMid(deckL, leftTop)
	}
	if deckR != nil && rightTop != nil {
		b.joinMid(deckR, rightTop)
	}

	// Crown atop the right tower.
	b.block(ctx, geom.V(rightX, blockY(n)))

	return nil
}

// tower stacks height blocks at column x and returns the top block, or
// nil if the top block failed to build.
func (b *Builder) tower(ctx context.Context, x, groundY float64, height int) *GameObject {
	s := b.cfg.BlockSize
	var top *GameObject
	for i := 0; i < height; i++ {
		top = b.block(ctx, geom.V(x, groundY+s/2+float64(i)*s))
	}
	return top
}

// block creates one dynamic structure block, returning nil on failure.
func (b *Builder) block(ctx context.Context, pos geom.Vec2) *GameObject {
	s := b.cfg.BlockSize
	obj, err := b.registry.Create(ctx, Block, pos, s, s, physics.Dynamic)
	if err != nil {
		b.log.Warn("block skipped", "x", pos.X, "y", pos.Y, "err", err)
		return nil
	}
	return obj
}

// joinAt creates a fixed joint between a and b anchored at the given
// world point. Local anchors are the world point relative to each
// body; bodies are unrotated during construction.
func (b *Builder) joinAt(a, o *GameObject, world geom.Vec2) {
	posA, _, errA := b.world.Pose(a.Body)
	posB, _, errB := b.world.Pose(o.Body)
	if errA != nil || errB != nil {
		return
	}
	if _, err := b.world.CreateJoint(a.Body, world.Sub(posA), o.Body, world.Sub(posB)); err != nil {
		b.log.Warn("joint skipped", "err", err)
	}
}

// joinMid joins two blocks at the midpoint between their centers.
func (b *Builder) joinMid(a, o *GameObject) {
	posA, _, errA := b.world.Pose(a.Body)
	posB, _, errB := b.world.Pose(o.Body)
	if errA != nil || errB != nil {
		return
	}
	mid := posA.Add(posB).Scale(0.5)
	b.joinAt(a, o, mid)
}
