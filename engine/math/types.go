package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/**
 * @brief A 4x4 matrix stored row by row, with the translation in elements 12..14.
 * Vectors multiply on the left, so a.Mul(b) applies a first.
 */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

// Vertex2D is a textured vertex in the layout shaders receive it.
type Vertex2D struct {
	Position Vec2
	Texcoord Vec2
}
