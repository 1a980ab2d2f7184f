package components

import (
	"github.com/spaghettifunk/anvil/engine/math"
)

/**
 * @brief An orbit camera circling a target. The view and projection are rebuilt lazily
 * after any setter runs.
 */
type Camera struct {
	Target   math.Vec3
	Distance float32
	/** @brief Rotation around the target on the Y axis, in radians. */
	Yaw float32
	/** @brief Field of view in radians. */
	FOV        float32
	Near, Far  float32
	aspect     float32
	isDirty    bool
	viewProj   math.Mat4
	viewMatrix math.Mat4
}

func NewCamera(aspect float32) *Camera {
	camera := &Camera{}
	camera.Reset()
	camera.aspect = aspect
	return camera
}

func (c *Camera) Reset() {
	c.Target = math.Vec3{}
	c.Distance = 3
	c.Yaw = 0
	c.FOV = math.DegToRad(60)
	c.Near = 0.1
	c.Far = 100
	c.aspect = 1
	c.isDirty = true
}

func (c *Camera) SetAspect(width, height uint32) {
	if height == 0 {
		return
	}
	c.aspect = float32(width) / float32(height)
	c.isDirty = true
}

func (c *Camera) Orbit(radians float32) {
	c.Yaw += radians
	c.isDirty = true
}

func (c *Camera) Position() math.Vec3 {
	s := math.NewMat4EulerZ(c.Yaw).TransformPoint(math.NewVec3(0, c.Distance, 0))
	// EulerZ spins in the XY plane, map it onto XZ around the target
	return c.Target.Add(math.NewVec3(s.X, 0, s.Y))
}

func (c *Camera) View() math.Mat4 {
	c.rebuild()
	return c.viewMatrix
}

// ViewProjection is the matrix the vertex shader receives.
func (c *Camera) ViewProjection() math.Mat4 {
	c.rebuild()
	return c.viewProj
}

func (c *Camera) rebuild() {
	if !c.isDirty {
		return
	}
	c.viewMatrix = math.NewMat4LookAt(c.Position(), c.Target, math.NewVec3(0, 1, 0))
	c.viewProj = c.viewMatrix.Mul(math.NewMat4Perspective(c.FOV, c.aspect, c.Near, c.Far))
	c.isDirty = false
}
