package bundler

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/planv/firebase-tools/internal/fsutil"
)

// ErrBundlerUnavailable marks a missing esbuild installation. The message
// tells the user how to fix it; nothing degrades silently.
var ErrBundlerUnavailable = errors.New("bundler unavailable")

// CommandRunner abstracts the external bundling tool so tests can fake it.
type CommandRunner interface {
	LookPath(name string) (string, error)
	Run(name string, args ...string) ([]byte, error)
}

// ExecRunner runs real commands.
type ExecRunner struct{}

func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (ExecRunner) Run(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// Bundler packages the server-side remainder of a build into a function
// bundle: the .next output, public assets, and a bundled config entry point
// with every declared dependency externalized.
type Bundler struct {
	Logger *zap.Logger
	Runner CommandRunner
}

func New(logger *zap.Logger) *Bundler {
	return &Bundler{Logger: logger, Runner: ExecRunner{}}
}

// Bundle produces the function bundle in functionsDir. Invoked only when
// the analysis wants a backend.
func (b *Bundler) Bundle(projectDir, distDir, functionsDir string) error {
	esbuild, err := b.Runner.LookPath("esbuild")
	if err != nil {
		return fmt.Errorf("%w: esbuild not found on PATH, install it with `npm install -g esbuild`", ErrBundlerUnavailable)
	}

	if err := os.MkdirAll(functionsDir, 0755); err != nil {
		return fmt.Errorf("failed to create functions dir: %w", err)
	}

	// Server runtime output ships wholesale; the function serves from it.
	if err := fsutil.CopyDir(distDir, filepath.Join(functionsDir, ".next")); err != nil {
		return fmt.Errorf("failed to copy server output: %w", err)
	}

	publicDir := filepath.Join(projectDir, "public")
	if fsutil.Exists(publicDir) {
		if err := fsutil.CopyDir(publicDir, filepath.Join(functionsDir, "public")); err != nil {
			return fmt.Errorf("failed to copy public dir: %w", err)
		}
	}

	pkgPath := filepath.Join(projectDir, "package.json")
	if fsutil.Exists(pkgPath) {
		if err := fsutil.CopyFile(pkgPath, filepath.Join(functionsDir, "package.json")); err != nil {
			return fmt.Errorf("failed to copy package.json: %w", err)
		}
	}

	return b.bundleConfig(projectDir, functionsDir, esbuild, pkgPath)
}

// bundleConfig bundles next.config.js with the app's own dependencies
// marked external, so the function resolves them from its node_modules
// instead of inlining them.
func (b *Bundler) bundleConfig(projectDir, functionsDir, esbuild, pkgPath string) error {
	outfile := filepath.Join(functionsDir, "next.config.js")

	configSrc := ""
	for _, name := range []string{"next.config.js", "next.config.mjs"} {
		if fsutil.Exists(filepath.Join(projectDir, name)) {
			configSrc = filepath.Join(projectDir, name)
			break
		}
	}
	if configSrc == "" {
		// No config file: the runtime still expects one to exist.
		return os.WriteFile(outfile, []byte("module.exports = {};\n"), 0644)
	}

	args := []string{
		configSrc,
		"--bundle",
		"--platform=node",
		"--outfile=" + outfile,
	}
	for _, dep := range externalDeps(pkgPath) {
		args = append(args, "--external:"+dep)
	}

	b.Logger.Debug("bundling config", zap.String("config", configSrc), zap.Strings("args", args))
	out, err := b.Runner.Run(esbuild, args...)
	if err != nil {
		// The tool's own output goes to the user verbatim; it points at the
		// application defect, not at this step.
		return fmt.Errorf("esbuild failed: %v\n%s", err, out)
	}
	return nil
}

// externalDeps lists the dependencies declared by the application's package
// manifest, sorted for stable command lines. A missing or malformed
// package.json yields none.
func externalDeps(pkgPath string) []string {
	data, err := os.ReadFile(pkgPath)
	if err != nil {
		return nil
	}
	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil
	}
	var deps []string
	for name := range pkg.Dependencies {
		deps = append(deps, name)
	}
	for name := range pkg.DevDependencies {
		deps = append(deps, name)
	}
	sort.Strings(deps)
	return deps
}
