package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/rigidsync/internal/geometry"
)

func near(a, b, tol float32) bool {
	return math.Abs(float64(a-b)) <= float64(tol)
}

func boxAt(name string, pos mgl32.Vec3) *Node {
	n := NewNode(name, geometry.NewBox(1, 1, 1), Material{Kind: NormalMaterial})
	n.Position = pos
	n.Pickable = true
	return n
}

func TestCameraRayThroughCenter(t *testing.T) {
	cam := NewCamera(75, 16.0/9.0, 0.1, 100)
	cam.Position = mgl32.Vec3{0, 2, 5}
	cam.Target = mgl32.Vec3{0, 1, 0}

	ray := cam.Ray(0, 0)
	want := cam.Target.Sub(cam.Position).Normalize()
	if ray.Direction.Dot(want) < 0.9999 {
		t.Errorf("center ray %v, want %v", ray.Direction, want)
	}
	if ray.Origin != cam.Position {
		t.Errorf("ray should start at the camera, got %v", ray.Origin)
	}
}

func TestCameraProjectRoundTrip(t *testing.T) {
	cam := NewCamera(75, 1.5, 0.1, 100)
	cam.Position = mgl32.Vec3{0, 2, 5}
	cam.Target = mgl32.Vec3{0, 1, 0}

	p := mgl32.Vec3{-2, 5, 0}
	ndc, ok := cam.Project(p)
	if !ok {
		t.Fatal("point in front of the camera reported behind")
	}
	ray := cam.Ray(ndc.X(), ndc.Y())
	toPoint := p.Sub(cam.Position).Normalize()
	if ray.Direction.Dot(toPoint) < 0.9999 {
		t.Errorf("ray through projected point misses it: %v vs %v", ray.Direction, toPoint)
	}

	if _, ok := cam.Project(mgl32.Vec3{0, 2, 10}); ok {
		t.Error("point behind the camera should not project")
	}
}

func TestSetAspect(t *testing.T) {
	cam := NewCamera(75, 1, 0.1, 100)
	cam.SetAspect(800, 400)
	if cam.Aspect != 2 {
		t.Errorf("expected aspect 2, got %f", cam.Aspect)
	}
	cam.SetAspect(0, 400)
	if cam.Aspect != 2 {
		t.Errorf("zero width should be ignored, got %f", cam.Aspect)
	}
}

func TestIntersectBox(t *testing.T) {
	tests := []struct {
		name   string
		ray    Ray
		hit    bool
		distTo float32
	}{
		{"front face", Ray{mgl32.Vec3{0.1, 0.2, 5}, mgl32.Vec3{0, 0, -1}}, true, 4.5},
		{"miss above", Ray{mgl32.Vec3{0.1, 2, 5}, mgl32.Vec3{0, 0, -1}}, false, 0},
		{"pointing away", Ray{mgl32.Vec3{0.1, 0.2, 5}, mgl32.Vec3{0, 0, 1}}, false, 0},
		{"from inside", Ray{mgl32.Vec3{0.1, 0.2, 0}, mgl32.Vec3{0, 0, -1}}, true, 0.5},
	}

	node := boxAt("cube", mgl32.Vec3{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := Intersect(tt.ray, node)
			if ok != tt.hit {
				t.Fatalf("hit=%v, want %v", ok, tt.hit)
			}
			if ok && !near(h.Distance, tt.distTo, 1e-4) {
				t.Errorf("distance %f, want %f", h.Distance, tt.distTo)
			}
		})
	}
}

func TestIntersectUsesNodeTransform(t *testing.T) {
	node := boxAt("cube", mgl32.Vec3{3, 0, 0})
	ray := Ray{mgl32.Vec3{3.1, 0.2, 5}, mgl32.Vec3{0, 0, -1}}
	if _, ok := Intersect(ray, node); !ok {
		t.Fatal("translated box not hit")
	}

	node.Position = mgl32.Vec3{}
	node.Quaternion = mgl32.QuatRotate(float32(math.Pi/4), mgl32.Vec3{0, 1, 0})
	h, ok := Intersect(Ray{mgl32.Vec3{0.1, 0.2, 5}, mgl32.Vec3{0, 0, -1}}, node)
	if !ok {
		t.Fatal("rotated box not hit")
	}
	want := float32(5 - (math.Sqrt2/2 - 0.1))
	if !near(h.Distance, want, 1e-3) {
		t.Errorf("distance %f, want %f", h.Distance, want)
	}
}

func TestRaycastNearestFirst(t *testing.T) {
	far := boxAt("far", mgl32.Vec3{0, 0, -3})
	nearer := boxAt("near", mgl32.Vec3{})
	twin := boxAt("twin", mgl32.Vec3{})
	ray := Ray{mgl32.Vec3{0.1, 0.2, 5}, mgl32.Vec3{0, 0, -1}}

	hits := Raycast(ray, []*Node{far, nearer, twin})
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	if hits[0].Node != nearer || hits[1].Node != twin || hits[2].Node != far {
		t.Errorf("unexpected order: %s %s %s", hits[0].Node.Name, hits[1].Node.Name, hits[2].Node.Name)
	}
}

func TestScenePickable(t *testing.T) {
	s := New()
	a := boxAt("a", mgl32.Vec3{})
	floor := NewNode("floor", geometry.NewBox(100, 1, 100), Material{Kind: PhongMaterial})
	b := boxAt("b", mgl32.Vec3{})
	s.Add(a)
	s.Add(floor)
	s.Add(b)

	picks := s.Pickable()
	if len(picks) != 2 || picks[0] != a || picks[1] != b {
		t.Errorf("unexpected pickable set %v", picks)
	}
	if s.Len() != 3 {
		t.Errorf("expected 3 nodes, got %d", s.Len())
	}
}

func TestOrbitKeepsDistance(t *testing.T) {
	cam := NewCamera(75, 1, 0.1, 100)
	cam.Position = mgl32.Vec3{0, 2, 5}
	cam.Target = mgl32.Vec3{0, 1, 0}
	d0 := cam.Position.Sub(cam.Target).Len()

	cam.Orbit(0.3, 0.1)
	if d := cam.Position.Sub(cam.Target).Len(); !near(d, d0, 1e-4) {
		t.Errorf("orbit changed distance %f -> %f", d0, d)
	}

	cam.Zoom(10, 1, 20)
	if d := cam.Position.Sub(cam.Target).Len(); !near(d, 20, 1e-4) {
		t.Errorf("zoom not clamped, distance %f", d)
	}
}
