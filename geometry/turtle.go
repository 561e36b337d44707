package geometry

// Turtle is the cursor: a position plus an orthonormal orientation frame.
// It starts at the origin heading along +X with +Z up.
type Turtle struct {
	Position Vec3
	Forward  Vec3
	Up       Vec3
}

// NewTurtle returns a turtle in its home pose.
func NewTurtle() Turtle {
	return Turtle{
		Forward: Vec3{1, 0, 0},
		Up:      Vec3{0, 0, 1},
	}
}

// Right completes the frame.
func (t Turtle) Right() Vec3 {
	return t.Forward.Cross(t.Up).Normalize()
}

// Advance moves the turtle distance units along its heading. Negative
// distances move backward.
func (t *Turtle) Advance(distance float64) {
	t.Position = t.Position.Add(t.Forward.Scale(distance))
}

// Relocate moves the turtle without changing its heading.
func (t *Turtle) Relocate(p Vec3) {
	t.Position = p
}

// Yaw turns about the up axis. Positive degrees turn left.
func (t *Turtle) Yaw(degrees float64) {
	r := Rotate(t.Up, degrees)
	t.Forward = r.Vector(t.Forward).Normalize()
}

// Pitch turns about the right axis. Positive degrees raise the nose.
func (t *Turtle) Pitch(degrees float64) {
	r := Rotate(t.Right(), degrees)
	t.Forward = r.Vector(t.Forward).Normalize()
	t.Up = r.Vector(t.Up).Normalize()
}

// Roll turns about the heading.
func (t *Turtle) Roll(degrees float64) {
	r := Rotate(t.Forward, degrees)
	t.Up = r.Vector(t.Up).Normalize()
}

// Matrix returns the turtle's frame as a transform whose columns are right,
// up, forward and position.
func (t Turtle) Matrix() Mat4 {
	right := t.Right()
	m := Identity()
	for r, v := range [3]float64{right.X, right.Y, right.Z} {
		m.set(r, 0, v)
	}
	for r, v := range [3]float64{t.Up.X, t.Up.Y, t.Up.Z} {
		m.set(r, 1, v)
	}
	for r, v := range [3]float64{t.Forward.X, t.Forward.Y, t.Forward.Z} {
		m.set(r, 2, v)
	}
	for r, v := range [3]float64{t.Position.X, t.Position.Y, t.Position.Z} {
		m.set(r, 3, v)
	}
	return m
}
