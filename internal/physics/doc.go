// Package physics is a small rigid-body engine.
//
// A [World] owns bodies and their colliders and advances them with a
// semi-implicit Euler step:
//
//   - [RigidBody]: dynamic or fixed body, one collider each
//   - [Collider]: collision shape built from a [shape.Descriptor]
//   - [World.Step]: gravity, damping, integration, contacts, sleeping
//
// Contacts are resolved with a single impulse per pair per step. Colliders
// are sampled with probe points and tested against the analytic volume of
// cuboids, balls and cylinders; hulls and meshes fall back to their bounding
// sphere when they are the target of a test.
//
// # Example
//
//	w := physics.NewWorld(mgl32.Vec3{0, -9.81, 0})
//	body := w.CreateRigidBody(physics.NewDynamicBodyDesc().SetTranslation(0, 5, 0))
//	_, err := w.CreateCollider(physics.NewColliderDesc(desc), body)
//	w.Timestep = 1.0 / 60
//	w.Step()
//
// # Failure
//
// Step panics when a body leaves the finite range. Callers that must survive
// a corrupted world recover from that panic.
//
// # Thread Safety
//
// A World is not safe for concurrent use.
package physics
