// Package scenario builds the obstacle layouts a colony can be started on.
package scenario

import (
	"fmt"
	"sort"

	"github.com/pthm-cable/colony/components"
)

// Template names.
const (
	None   = "none"
	Rock   = "rock"
	Tunnel = "tunnel"
)

type builder func(mask []bool, w, h int, nest components.Position)

var templates = map[string]builder{
	"":     func([]bool, int, int, components.Position) {},
	None:   func([]bool, int, int, components.Position) {},
	Rock:   rock,
	Tunnel: tunnel,
}

// Names returns the known template names, sorted.
func Names() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Mask returns the row-major w*h obstacle mask for the named template.
// The nest cell is never an obstacle.
func Mask(name string, w, h int, nest components.Position) ([]bool, error) {
	build, ok := templates[name]
	if !ok {
		return nil, fmt.Errorf("unknown obstacle scenario %q (known: %v)", name, Names())
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d", w, h)
	}

	mask := make([]bool, w*h)
	build(mask, w, h, nest)
	if nest.X >= 0 && nest.X < w && nest.Y >= 0 && nest.Y < h {
		mask[nest.Y*w+nest.X] = false
	}
	return mask, nil
}

// rock places one solid disc east of the nest, clear of the nest zone.
func rock(mask []bool, w, h int, nest components.Position) {
	r := max(min(w, h)/8, 1)
	cx := nest.X + (w-nest.X)/2
	cy := nest.Y
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy > r*r || x < 0 || x >= w || y < 0 || y >= h {
				continue
			}
			mask[y*w+x] = true
		}
	}
}

// tunnel walls the nest in with two horizontal walls open at both ends.
func tunnel(mask []bool, w, h int, nest components.Position) {
	half := max(w/4, 2)
	for _, y := range []int{nest.Y - 2, nest.Y + 2} {
		if y < 0 || y >= h {
			continue
		}
		for x := nest.X - half; x <= nest.X+half; x++ {
			if x >= 0 && x < w {
				mask[y*w+x] = true
			}
		}
	}
}
