// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// manager.go ties the pieces together: the job registry, the content-hash
// shader source cache, the property-keyed pipeline cache, and the dispatch
// path that binds resources and submits work through the Backend.

package compute

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/compute/property"
	"github.com/gogpu/compute/template"
)

// psoCacheEntry associates a job and the property snapshot it was compiled
// with to a built pipeline state. The cache is an ordered, appendable
// sequence searched by (job identity, snapshot equality); the entry index
// is stored back into the job for O(1) revalidation on later dispatches.
type psoCacheEntry struct {
	job   *Job
	props []property.Property
	pso   PipelineState
}

// jobEntry is a registry slot: the job plus the human-facing reference name
// it was registered under.
type jobEntry struct {
	job     *Job
	refName string
}

// Manager owns the compute job registry and both caches, and orchestrates
// preprocessing, compilation and dispatch against a single Backend.
//
// All methods must be called from the thread that owns the compute context;
// see the package documentation for the threading model.
type Manager struct {
	backend Backend
	fsys    fs.FS
	cfg     Config

	profile    Profile
	hlslTarget string

	// extensions are extra property names set to 1 for every compilation,
	// letting templates branch on backend-specific capabilities.
	extensions []string

	jobs        map[string]jobEntry
	shaderCache map[Hash128]Program
	psoCache    []psoCacheEntry

	compileCount uint64
}

// Stats is a snapshot of the manager's cache population.
type Stats struct {
	// Jobs is the number of registered compute jobs.
	Jobs int

	// Programs is the number of distinct compiled programs, keyed by
	// generated-source content hash.
	Programs int

	// Pipelines is the number of cached pipeline states.
	Pipelines int

	// Compiles counts backend compile invocations since creation. Cache
	// hits do not increment it.
	Compiles uint64
}

// NewManager creates a manager over the given backend and template
// filesystem. cfg may be nil for defaults; a zero Profile selects the
// backend's preferred language.
func NewManager(backend Backend, templates fs.FS, cfg *Config) (*Manager, error) {
	if backend == nil {
		return nil, errors.New("compute: backend is required")
	}
	if templates == nil {
		return nil, errors.New("compute: template filesystem is required")
	}

	var c Config
	if cfg != nil {
		c = *cfg
	}
	if c.DumpPreprocessed && c.OutputDir == "" {
		c.OutputDir = "."
	}

	profile := c.Profile
	supported := backend.SupportedProfiles()
	if profile == "" {
		if len(supported) == 0 {
			return nil, fmt.Errorf("compute: backend %q supports no shading profiles", backend.Name())
		}
		profile = supported[0]
	} else {
		if !profile.Valid() {
			return nil, fmt.Errorf("compute: unknown shading profile %q", profile)
		}
		ok := false
		for _, p := range supported {
			if p == profile {
				ok = true
				break
			}
		}
		if !ok {
			return nil, fmt.Errorf("compute: backend %q does not support profile %q",
				backend.Name(), profile)
		}
	}

	m := &Manager{
		backend:     backend,
		fsys:        templates,
		cfg:         c,
		profile:     profile,
		jobs:        make(map[string]jobEntry),
		shaderCache: make(map[Hash128]Program),
	}

	if profile == ProfileHLSL {
		m.hlslTarget = hlslComputeTargets[0]
		if tp, ok := backend.(hlslTargetProvider); ok {
			if targets := tp.SupportedHLSLTargets(); len(targets) > 0 {
				m.hlslTarget = bestHLSLTarget(targets)
			}
		}
	}

	Logger().Info("compute: manager created",
		"backend", backend.Name(),
		"profile", string(profile))

	return m, nil
}

// bestHLSLTarget returns the highest-ranked target present in supported.
func bestHLSLTarget(supported []string) string {
	for _, want := range hlslComputeTargets {
		for _, have := range supported {
			if have == want {
				return want
			}
		}
	}
	return hlslComputeTargets[len(hlslComputeTargets)-1]
}

// Profile returns the shading-language profile the manager compiles for.
func (m *Manager) Profile() Profile { return m.profile }

// AddProfileExtension registers a property name that is set to 1 for every
// compilation, so templates can branch on backend-specific capabilities.
func (m *Manager) AddProfileExtension(name string) {
	m.extensions = append(m.extensions, name)
}

// Stats returns the current cache population.
func (m *Manager) Stats() Stats {
	return Stats{
		Jobs:      len(m.jobs),
		Programs:  len(m.shaderCache),
		Pipelines: len(m.psoCache),
		Compiles:  m.compileCount,
	}
}

// CreateJob registers a compute job under name. refName is the
// human-facing reference (e.g. the material name it came from), sourceFile
// the logical template filename, and pieceFiles any fragment files whose
// pieces the template inserts. Registering an existing name replaces the
// old job.
func (m *Manager) CreateJob(name, refName, sourceFile string, pieceFiles []string) *Job {
	if _, exists := m.jobs[name]; exists {
		Logger().Warn("compute: replacing existing job", "job", name)
	}
	job := newJob(name, sourceFile, pieceFiles)
	m.jobs[name] = jobEntry{job: job, refName: refName}
	return job
}

// FindJob returns the job registered under name, or an error wrapping
// ErrJobNotFound. Use LookupJob when absence is a normal branch.
func (m *Manager) FindJob(name string) (*Job, error) {
	if e, ok := m.jobs[name]; ok {
		return e.job, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrJobNotFound, name)
}

// LookupJob returns the job registered under name and whether it exists.
func (m *Manager) LookupJob(name string) (*Job, bool) {
	e, ok := m.jobs[name]
	return e.job, ok
}

// JobRefName returns the reference name a job was registered with.
func (m *Manager) JobRefName(name string) (string, bool) {
	e, ok := m.jobs[name]
	return e.refName, ok
}

// DestroyAllJobs empties the registry. Cached pipelines referencing the
// destroyed jobs remain until ClearShaderCache.
func (m *Manager) DestroyAllJobs() {
	clear(m.jobs)
}

// ClearShaderCache releases every cached pipeline state, notifying the
// backend for each one before the cache empties. It invalidates every
// affected job's cached index, and drops all compiled programs. It must not
// run concurrently with any in-flight dispatch.
func (m *Manager) ClearShaderCache() {
	for i := range m.psoCache {
		m.backend.PipelineDestroyed(&m.psoCache[i].pso)
		m.psoCache[i].job.InvalidateCache()
	}
	released := len(m.psoCache)
	m.psoCache = nil
	clear(m.shaderCache)

	Logger().Info("compute: shader cache cleared", "pipelines_released", released)
}

// Dispatch resolves the job's pipeline state (compiling on a cache miss),
// binds the job's resources in fixed order, and submits the dispatch.
//
// A job whose thread-group configuration resolves to zero in any dimension
// fails with a *ConfigError before any binding occurs, and nothing is
// registered in either cache.
func (m *Manager) Dispatch(job *Job) error {
	if job == nil {
		return errors.New("compute: dispatch of nil job")
	}

	if job.psoIndex < 0 || job.psoIndex >= len(m.psoCache) {
		// Potentially needs to recompile.
		job.refreshAutoProperties()

		idx := m.findCachedPSO(job)
		if idx < 0 {
			pso, err := m.compileShader(job)
			if err != nil {
				return err
			}
			m.psoCache = append(m.psoCache, psoCacheEntry{
				job:   job,
				props: job.props.Snapshot(),
				pso:   pso,
			})
			idx = len(m.psoCache) - 1
			Logger().Debug("compute: pipeline cached",
				"job", job.name, "index", idx, "hash", pso.SourceHash.String())
		} else {
			Logger().Debug("compute: pipeline cache hit", "job", job.name, "index", idx)
		}
		job.psoIndex = idx
	}

	entry := &m.psoCache[job.psoIndex]

	for _, cb := range job.constBuffers {
		m.backend.BindConstBuffer(cb)
	}
	for _, ts := range job.textureSlots {
		m.backend.BindTexture(ts)
	}
	for _, us := range job.uavSlots {
		m.backend.BindUav(us)
	}

	m.backend.SetPipeline(&entry.pso)
	m.backend.DispatchGroups(
		entry.pso.NumThreadGroups[0],
		entry.pso.NumThreadGroups[1],
		entry.pso.NumThreadGroups[2])
	return nil
}

// findCachedPSO searches the pipeline cache for an entry built by this job
// with the job's current effective properties. The job's property sequence
// is compared through a read-only view; a snapshot is only materialized on
// insertion.
func (m *Manager) findCachedPSO(job *Job) int {
	current := job.props.Properties()
	for i := range m.psoCache {
		if m.psoCache[i].job == job && property.Equal(m.psoCache[i].props, current) {
			return i
		}
	}
	return -1
}

// compileShader runs the full preprocessing-and-compilation pipeline for a
// job and returns a validated pipeline state. The property table used for
// compilation is built fresh per attempt from the job's properties plus the
// ambient profile properties, so template-side mutations (including the
// disable_compilation opt-out) never leak into later attempts.
func (m *Manager) compileShader(job *Job) (PipelineState, error) {
	table := property.NewTable()
	table.SetAll(job.props.Properties())
	for _, ext := range m.extensions {
		table.Set(ext, 1)
	}
	table.Set(string(m.profile), 1)
	if m.profile == ProfileGLSL {
		table.Set(PropGlslVersion, 430)
	}
	if m.cfg.HighQuality {
		table.Set(PropHighQuality, 1)
	}

	proc := template.NewProcessor(table)
	proc.SetLogger(Logger())

	var syntaxErrs []error

	// Fragment files only contribute when named for the active profile.
	ext := m.profile.FileExtension()
	for _, pf := range job.pieceFiles {
		if !strings.Contains(pf, ext) {
			continue
		}
		data, err := fs.ReadFile(m.fsys, pf)
		if err != nil {
			return PipelineState{}, fmt.Errorf("compute: read piece file %q: %w", pf, err)
		}
		if err := proc.ProcessFragment(string(data)); err != nil {
			syntaxErrs = append(syntaxErrs, fmt.Errorf("%s: %w", pf, err))
		}
	}

	data, err := fs.ReadFile(m.fsys, job.sourceFile)
	if err != nil {
		return PipelineState{}, fmt.Errorf("compute: read template %q: %w", job.sourceFile, err)
	}

	out, perr := proc.Process(string(data))
	if perr != nil {
		syntaxErrs = append(syntaxErrs, fmt.Errorf("%s: %w", job.sourceFile, perr))
	}

	hash := HashSource(out)

	// Syntax errors are recoverable: log once per attempt and keep going
	// with the best-effort text. The downstream compiler gets to reject it.
	if len(syntaxErrs) > 0 {
		Logger().Warn("compute: template syntax errors",
			"job", job.name,
			"source", job.sourceFile,
			"hash", hash.String(),
			"err", errors.Join(syntaxErrs...))
	}

	if m.cfg.DumpPreprocessed {
		m.dumpPreprocessed(job, hash, out)
	}

	pso := PipelineState{
		SourceHash: hash,
		ThreadsPerGroup: [3]uint32{
			dimValue(table, PropThreadsPerGroupX),
			dimValue(table, PropThreadsPerGroupY),
			dimValue(table, PropThreadsPerGroupZ),
		},
		NumThreadGroups: [3]uint32{
			dimValue(table, PropNumThreadGroupsX),
			dimValue(table, PropNumThreadGroupsY),
			dimValue(table, PropNumThreadGroupsZ),
		},
	}
	// A failed configuration must leave both caches untouched, so dimensions
	// are checked before anything is compiled or stored.
	if err := pso.validateDims(); err != nil {
		return PipelineState{}, err
	}

	var prog Program
	if table.Get(PropDisableCompilation) == 0 {
		// Like a microcode cache, but we need to know when two compute
		// shaders share the same generated source: byte-identical text
		// reuses the compiled program unconditionally.
		if cached, ok := m.shaderCache[hash]; ok {
			prog = cached
			Logger().Debug("compute: program cache hit",
				"job", job.name, "hash", hash.String())
		} else {
			src := ShaderSource{
				Name:              hash.String() + "_" + filepath.Base(job.sourceFile),
				Profile:           m.profile,
				Source:            out,
				EntryPoint:        "main",
				Target:            m.hlslTarget,
				SkeletalAnimation: table.Get(PropSkeleton) != 0,
				PoseAnimation:     table.Get(PropPose) != 0,
			}
			prog, err = m.backend.Compile(src)
			if err != nil {
				return PipelineState{}, fmt.Errorf("compute: compile %q: %w", job.sourceFile, err)
			}
			m.shaderCache[hash] = prog
			m.compileCount++
		}
	}

	pso.Program = prog

	if err := m.backend.PipelineCreated(&pso); err != nil {
		return PipelineState{}, fmt.Errorf("compute: backend rejected pipeline for %q: %w",
			job.name, err)
	}
	return pso, nil
}

// dimValue reads a dispatch dimension, clamping negatives to zero so they
// fail validation instead of wrapping around.
func dimValue(t *property.Table, name string) uint32 {
	v := t.Get(name)
	if v < 0 {
		return 0
	}
	return uint32(v)
}

// dumpPreprocessed writes the final generated source next to its hash for
// offline inspection. Dump failures are logged, never fatal: the dump is
// not consumed by the system itself.
func (m *Manager) dumpPreprocessed(job *Job, hash Hash128, text string) {
	name := hash.String() + "_" + filepath.Base(job.sourceFile) + m.profile.FileExtension()
	path := filepath.Join(m.cfg.OutputDir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		Logger().Warn("compute: preprocessed dump failed", "path", path, "err", err)
		return
	}
	Logger().Debug("compute: preprocessed source dumped", "path", path)
}
