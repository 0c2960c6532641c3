// Package compute caches and dispatches templated GPU compute jobs.
//
// # Overview
//
// compute sits between an engine's compute passes and its graphics backend.
// A Job describes a logical compute operation: a shader template, a set of
// integer properties steering template expansion, and the resources to bind.
// On dispatch, the package expands the template through a five-stage
// preprocessor, content-hashes the generated source, deduplicates compiled
// programs across jobs that resolve to byte-identical code, and caches the
// fully configured pipeline state object (PSO) keyed by the job's property
// snapshot. Repeated dispatches of an unchanged job touch neither the
// preprocessor nor the compiler.
//
// # Quick Start
//
//	import "github.com/gogpu/compute"
//
//	mgr, _ := compute.NewManager(backend, os.DirFS("shaders"), nil)
//
//	job := mgr.CreateJob("blur_h", "Blur/Horizontal", "blur.wgsl", nil)
//	job.SetThreadsPerGroup(64, 1, 1)
//	job.SetNumThreadGroups(16, 1, 1)
//	job.SetUav(compute.TextureSlot{Slot: 0, Texture: target, Access: compute.AccessWrite})
//
//	_ = mgr.Dispatch(job) // compiles, caches, binds, dispatches
//	_ = mgr.Dispatch(job) // pure cache hit
//
// # Backends
//
// The graphics layer is abstracted behind the Backend interface; the
// backend/wgpu subpackage provides an implementation over wgpu's HAL that
// compiles WGSL through naga. Tests use an in-memory counting backend.
//
// # Concurrency
//
// The Manager follows a single-threaded cooperative model: all lookups,
// preprocessing, compilation and dispatch run synchronously on the thread
// that owns the compute context. Concurrent Dispatch calls require external
// serialization.
package compute
