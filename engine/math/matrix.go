package math

import (
	"encoding/binary"
	m "math"
)

func NewMat4Identity() Mat4 {
	out := Mat4{}
	out.Data[0] = 1.0
	out.Data[5] = 1.0
	out.Data[10] = 1.0
	out.Data[15] = 1.0
	return out
}

func (mt Mat4) Mul(other Mat4) Mat4 {
	out := Mat4{}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			sum := float32(0)
			for i := 0; i < 4; i++ {
				sum += mt.Data[row*4+i] * other.Data[i*4+col]
			}
			out.Data[row*4+col] = sum
		}
	}
	return out
}

func NewMat4Orthographic(left, right, bottom, top, nearClip, farClip float32) Mat4 {
	out := NewMat4Identity()

	lr := 1.0 / (left - right)
	bt := 1.0 / (bottom - top)
	nf := 1.0 / (nearClip - farClip)

	out.Data[0] = -2.0 * lr
	out.Data[5] = -2.0 * bt
	out.Data[10] = 2.0 * nf

	out.Data[12] = (left + right) * lr
	out.Data[13] = (top + bottom) * bt
	out.Data[14] = (farClip + nearClip) * nf
	return out
}

// NewMat4Perspective builds a right handed projection with a [-1, 1] depth range.
func NewMat4Perspective(fovRadians, aspectRatio, nearClip, farClip float32) Mat4 {
	halfTanFov := float32(m.Tan(float64(fovRadians) * 0.5))
	out := Mat4{}
	out.Data[0] = 1.0 / (aspectRatio * halfTanFov)
	out.Data[5] = 1.0 / halfTanFov
	out.Data[10] = -((farClip + nearClip) / (farClip - nearClip))
	out.Data[11] = -1.0
	out.Data[14] = -((2.0 * farClip * nearClip) / (farClip - nearClip))
	return out
}

// NewMat4LookAt returns the view matrix of an eye at position looking at target.
func NewMat4LookAt(position, target, up Vec3) Mat4 {
	z := target.Sub(position).Normalized()
	x := z.Cross(up).Normalized()
	y := x.Cross(z)

	out := Mat4{}
	out.Data[0] = x.X
	out.Data[1] = y.X
	out.Data[2] = -z.X
	out.Data[4] = x.Y
	out.Data[5] = y.Y
	out.Data[6] = -z.Y
	out.Data[8] = x.Z
	out.Data[9] = y.Z
	out.Data[10] = -z.Z
	out.Data[12] = -x.Dot(position)
	out.Data[13] = -y.Dot(position)
	out.Data[14] = z.Dot(position)
	out.Data[15] = 1.0
	return out
}

func NewMat4Translation(position Vec3) Mat4 {
	out := NewMat4Identity()
	out.Data[12] = position.X
	out.Data[13] = position.Y
	out.Data[14] = position.Z
	return out
}

func NewMat4Scale(scale Vec3) Mat4 {
	out := NewMat4Identity()
	out.Data[0] = scale.X
	out.Data[5] = scale.Y
	out.Data[10] = scale.Z
	return out
}

func NewMat4EulerZ(angleRadians float32) Mat4 {
	out := NewMat4Identity()
	s, c := m.Sincos(float64(angleRadians))
	out.Data[0] = float32(c)
	out.Data[1] = float32(s)
	out.Data[4] = -float32(s)
	out.Data[5] = float32(c)
	return out
}

// TransformPoint applies the matrix to p with w = 1 and divides by the resulting w.
func (mt Mat4) TransformPoint(p Vec3) Vec3 {
	d := mt.Data
	x := p.X*d[0] + p.Y*d[4] + p.Z*d[8] + d[12]
	y := p.X*d[1] + p.Y*d[5] + p.Z*d[9] + d[13]
	z := p.X*d[2] + p.Y*d[6] + p.Z*d[10] + d[14]
	w := p.X*d[3] + p.Y*d[7] + p.Z*d[11] + d[15]
	if w != 0 && w != 1 {
		x, y, z = x/w, y/w, z/w
	}
	return Vec3{X: x, Y: y, Z: z}
}

// Bytes is the little endian layout a shader reads as a column major float4x4.
func (mt Mat4) Bytes() []byte {
	out := make([]byte, 0, 64)
	for _, v := range mt.Data {
		out = binary.LittleEndian.AppendUint32(out, m.Float32bits(v))
	}
	return out
}
