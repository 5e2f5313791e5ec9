package download

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jmgilman/scriptdeck/internal/script"
)

// Result is one published result file, with the download token that gates
// access to it. Token is empty when the extractor has no signer.
type Result struct {
	Path  string
	Token string
}

// Extractor copies a finished execution's declared result files into a
// per-execution download folder and issues a download token for each. It
// implements the finish listener contract: register it on the execution and
// read Results after Done is closed.
type Extractor struct {
	cfg        *script.Config
	values     script.Values
	owner      string
	output     func() string
	destRoot   string
	workingDir string
	signer     *Signer
	logger     *slog.Logger

	mu      sync.Mutex
	results []Result
	done    chan struct{}
}

// NewExtractor creates an extractor for one execution. output supplies the
// finished execution's raw output for output-scanning patterns; nil means no
// output is available. destRoot is the server-wide result file area,
// typically <temp>/result_files. A nil signer skips token issuance.
func NewExtractor(cfg *script.Config, values script.Values, owner string, output func() string, destRoot string, signer *Signer, logger *slog.Logger) *Extractor {
	return &Extractor{
		cfg:        cfg,
		values:     values,
		owner:      owner,
		output:     output,
		destRoot:   destRoot,
		workingDir: cfg.WorkingDir,
		signer:     signer,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Finished runs the extraction. Extraction problems are logged, never raised:
// a missing result file must not disturb the finished execution.
func (x *Extractor) Finished() {
	defer close(x.done)

	var output string
	if x.output != nil {
		output = x.output()
	}

	files, err := Extract(x.cfg, x.values, x.owner, output, x.destRoot)
	if err != nil {
		x.logger.Error("result file extraction failed",
			"script", x.cfg.Name, "error", err)
		return
	}

	issued := time.Now()
	results := make([]Result, 0, len(files))
	for _, file := range files {
		res := Result{Path: file}
		if x.signer != nil {
			res.Token = x.signer.Sign(file, x.owner, issued)
		}
		results = append(results, res)
	}

	x.mu.Lock()
	x.results = results
	x.mu.Unlock()
}

// Results returns the copied result files and their tokens. Valid after Done
// is closed.
func (x *Extractor) Results() []Result {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]Result(nil), x.results...)
}

// Files returns just the copied result file paths. Valid after Done is closed.
func (x *Extractor) Files() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	files := make([]string, 0, len(x.results))
	for _, res := range x.results {
		files = append(files, res.Path)
	}
	return files
}

// Done is closed once extraction completed, successfully or not.
func (x *Extractor) Done() <-chan struct{} {
	return x.done
}

// Extract resolves the script's declared downloadable file patterns and
// copies every matching existing file into a fresh folder under destRoot:
// <destRoot>/<owner>/<uuid>/<basename>. Patterns may reference parameter
// values as ${name} and may contain globs. A pattern wrapped in '#' is a
// regular expression applied to the execution output; every match is taken
// as a candidate file path. Patterns that match nothing are skipped
// silently; scripts declare files they only sometimes produce.
func Extract(cfg *script.Config, values script.Values, owner, output, destRoot string) ([]string, error) {
	if len(cfg.DownloadableFiles) == 0 {
		return nil, nil
	}

	destDir := filepath.Join(destRoot, safeName(owner), uuid.NewString())
	var copied []string
	seen := make(map[string]bool)

	for _, pattern := range cfg.DownloadableFiles {
		resolved := substituteValues(pattern, values)

		candidates, err := resolveCandidates(resolved, output, cfg.WorkingDir)
		if err != nil {
			return copied, fmt.Errorf("bad downloadable file pattern %q: %w", pattern, err)
		}

		for _, match := range candidates {
			if seen[match] {
				continue
			}
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			seen[match] = true

			if err := os.MkdirAll(destDir, 0o750); err != nil {
				return copied, fmt.Errorf("create result file directory: %w", err)
			}

			dest := filepath.Join(destDir, filepath.Base(match))
			if err := copyFile(match, dest); err != nil {
				return copied, fmt.Errorf("copy result file %q: %w", match, err)
			}
			copied = append(copied, dest)
		}
	}

	return copied, nil
}

// resolveCandidates turns one resolved pattern into candidate file paths.
// '#regexp#' patterns are matched against the execution output; everything
// else goes through filesystem globbing. Relative candidates are anchored at
// the script's working directory.
func resolveCandidates(pattern, output, workingDir string) ([]string, error) {
	if inner, ok := outputPattern(pattern); ok {
		re, err := regexp.Compile(inner)
		if err != nil {
			return nil, err
		}
		var candidates []string
		for _, match := range re.FindAllString(output, -1) {
			candidates = append(candidates, anchor(match, workingDir))
		}
		return candidates, nil
	}

	return filepath.Glob(anchor(pattern, workingDir))
}

// outputPattern reports whether a pattern scans the execution output and
// returns the regular expression inside the '#' markers.
func outputPattern(pattern string) (string, bool) {
	if len(pattern) > 2 && strings.HasPrefix(pattern, "#") && strings.HasSuffix(pattern, "#") {
		return pattern[1 : len(pattern)-1], true
	}
	return "", false
}

func anchor(path, workingDir string) string {
	if !filepath.IsAbs(path) && workingDir != "" {
		return filepath.Join(workingDir, path)
	}
	return path
}

// substituteValues replaces ${name} references with the supplied parameter
// values. Unknown references are left untouched.
func substituteValues(pattern string, values script.Values) string {
	return os.Expand(pattern, func(name string) string {
		v, ok := values[name]
		if !ok {
			return "${" + name + "}"
		}
		return fmt.Sprintf("%v", v)
	})
}

// safeName makes an identity usable as a path segment.
func safeName(s string) string {
	if s == "" {
		return "anonymous"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}

func copyFile(src, dest string) error {
	//nolint:gosec // G304: src comes from script config patterns, trusted input
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o640)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
