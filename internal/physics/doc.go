// Package physics wraps the Chipmunk rigid-body engine
// (github.com/jakecoffman/cp) behind opaque body and joint handles.
//
// The [World] owns every engine resource. Removing a body cascades to
// its colliders and to every joint referencing it, which is what keeps
// the rest of the game free of dangling-handle checks. [World.Step]
// advances one fixed tick per call; timestep accumulation belongs to
// the caller.
package physics
