// Package lighting provides lighting utilities for 3D rendering.
package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SunDirection converts sun angles in degrees to the direction its light
// travels. Azimuth rotates around Y starting at +Z; elevation is measured up
// from the horizon and clamped to [0, 90]. The result is normalized and
// points away from the sun.
func SunDirection(azimuth, elevation float32) mgl32.Vec3 {
	az := float64(mgl32.DegToRad(azimuth))
	el := float64(mgl32.DegToRad(mgl32.Clamp(elevation, 0, 90)))

	// Spherical to Cartesian, towards the sun
	toSun := mgl32.Vec3{
		float32(math.Cos(el) * math.Sin(az)),
		float32(math.Sin(el)),
		float32(math.Cos(el) * math.Cos(az)),
	}
	return toSun.Mul(-1).Normalize()
}
