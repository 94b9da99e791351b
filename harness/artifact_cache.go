package harness

import (
	"sync"
	"sync/atomic"

	"github.com/crytic/abiharness/bindings"
	"github.com/crytic/abiharness/compilation/types"
	"github.com/crytic/abiharness/config"
	"github.com/crytic/abiharness/logging"
	"github.com/pkg/errors"
)

// CacheState describes the build state of an ArtifactCache.
type CacheState int32

const (
	// Uninitialized indicates the artifacts have not been requested yet.
	Uninitialized CacheState = iota
	// Building indicates the artifacts are being generated and compiled.
	Building
	// Ready indicates the artifacts were compiled and can be looked up.
	Ready
	// Failed indicates the build failed. The failure is returned to every caller and the build is never retried.
	Failed
)

// String returns a string representation of the state.
func (s CacheState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Building:
		return "building"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Runner describes a build which produces a compilation. A Pipeline is a Runner.
type Runner interface {
	Run() (*types.Compilation, error)
}

// ArtifactCache lazily builds compiled contract artifacts on first request and serves every later request from the
// result. The build runs at most once per cache, however many goroutines request artifacts concurrently, and its
// outcome (success or failure) is kept for the lifetime of the cache.
type ArtifactCache struct {
	// runner describes the build which produces the artifacts.
	runner Runner

	// state describes the current CacheState.
	state atomic.Int32

	// buildLock serializes the build, so concurrent callers wait for and then observe the same outcome.
	buildLock sync.Mutex

	// compilation describes the build result once the state is Ready.
	compilation *types.Compilation

	// err describes the build failure once the state is Failed.
	err error

	// logger describes the cache's log object that can be used to log important events
	logger *logging.Logger
}

// NewArtifactCache creates an ArtifactCache which builds its artifacts with the provided runner.
func NewArtifactCache(runner Runner) *ArtifactCache {
	return &ArtifactCache{
		runner: runner,
		logger: logging.GlobalLogger.NewSubLogger(logging.SERVICE_KEY, logging.HARNESS_SERVICE),
	}
}

// NewDefaultArtifactCache creates an ArtifactCache over a Pipeline configured from the environment: the output root
// is read from config.OutputDirectoryEnvironmentVariable, which must be set. Returns a *config.ConfigurationError
// otherwise.
func NewDefaultArtifactCache() (*ArtifactCache, error) {
	projectConfig, err := config.GetProjectConfigFromEnvironment()
	if err != nil {
		return nil, err
	}
	pipeline, err := NewPipelineFromConfig(projectConfig)
	if err != nil {
		return nil, err
	}
	return NewArtifactCache(pipeline), nil
}

// State returns the current build state of the cache.
func (c *ArtifactCache) State() CacheState {
	return CacheState(c.state.Load())
}

// Compilation returns the compiled artifacts, building them first if they were not requested yet.
func (c *ArtifactCache) Compilation() (*types.Compilation, error) {
	// Once ready, the result is immutable and needs no lock
	if c.State() == Ready {
		return c.compilation, nil
	}

	c.buildLock.Lock()
	defer c.buildLock.Unlock()

	switch c.State() {
	case Ready:
		return c.compilation, nil
	case Failed:
		return nil, c.err
	}

	// We are the first caller, so we build
	c.state.Store(int32(Building))
	compilation, err := c.build()
	if err != nil {
		c.err = err
		c.state.Store(int32(Failed))
		c.logger.Error("Failed to build contract artifacts", err)
		return nil, err
	}
	c.compilation = compilation
	c.state.Store(int32(Ready))
	return compilation, nil
}

// build runs the build, converting a panic into an error so the failure can be latched.
func (c *ArtifactCache) build() (compilation *types.Compilation, err error) {
	defer func() {
		if r := recover(); r != nil {
			compilation = nil
			err = errors.Errorf("artifact build panicked: %v", r)
		}
	}()

	compilation, err = c.runner.Run()
	if err == nil && compilation == nil {
		err = errors.New("artifact build produced no compilation")
	}
	return compilation, err
}

// GetContract returns the compiled type for the contract with the given logical name, building the artifacts first
// if needed. Repeated requests for the same name return the same handle. Build failures are returned to every
// caller, while a name which is not among the artifacts yields a *LookupError.
func (c *ArtifactCache) GetContract(name string) (*types.LoadedType, error) {
	compilation, err := c.Compilation()
	if err != nil {
		return nil, err
	}

	// Look the name up as is, then as the identifier its binding is generated under
	if artifact, ok := compilation.GetArtifact(name); ok {
		return artifact, nil
	}
	if artifact, ok := compilation.GetArtifact(bindings.ContractIdentifier(name)); ok {
		return artifact, nil
	}
	return nil, &LookupError{Name: name, QualifiedName: compilation.QualifiedName(name)}
}
