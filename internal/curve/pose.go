package curve

// Vec3 is a position or scale.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quat is a rotation quaternion.
type Quat struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// IdentityQuat is the zero rotation.
var IdentityQuat = Quat{W: 1}

// PoseState is the raw local transform of a node at one moment.
type PoseState struct {
	Position Vec3
	Rotation Quat
	Scale    Vec3
}

// Node is an animated scene node whose live pose can be edited directly,
// outside of any curve.
type Node struct {
	ident
	Name     string
	Position Vec3
	Rotation Quat
	Scale    Vec3
}

// NewNode creates a node at the identity pose.
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: IdentityQuat,
		Scale:    Vec3{X: 1, Y: 1, Z: 1},
	}
}

// Kind implements Entity.
func (n *Node) Kind() Kind { return KindPose }

// Snapshot captures the local pose.
func (n *Node) Snapshot() PoseState {
	if n == nil {
		return PoseState{}
	}
	return PoseState{Position: n.Position, Rotation: n.Rotation, Scale: n.Scale}
}

// Restore sets the local pose.
func (n *Node) Restore(s PoseState) {
	if n == nil {
		return
	}
	n.Position = s.Position
	n.Rotation = s.Rotation
	n.Scale = s.Scale
}
