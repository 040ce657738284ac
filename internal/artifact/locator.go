// Package artifact turns engine output paths into public URLs and owns the
// lifecycle of temporary output rasters.
package artifact

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/couchcryptid/flood-sim-gateway/internal/domain"
	"github.com/couchcryptid/flood-sim-gateway/internal/observability"
)

const (
	tempPrefix = "sim-"
	tempSuffix = ".tif"
)

// Locator builds artifact URLs and leases temporary output paths.
type Locator struct {
	workDir    string
	tempDir    string
	trustProxy bool
	metrics    *observability.Metrics
	logger     *slog.Logger

	mu     sync.Mutex
	active map[string]struct{}
}

// NewLocator creates a Locator. A relative tempDir is resolved against
// workDir, the directory the engine runs in.
func NewLocator(workDir, tempDir string, trustProxy bool, metrics *observability.Metrics, logger *slog.Logger) *Locator {
	return &Locator{
		workDir:    workDir,
		tempDir:    tempDir,
		trustProxy: trustProxy,
		metrics:    metrics,
		logger:     logger,
		active:     make(map[string]struct{}),
	}
}

// Lease is an output raster path for one run. Temporary leases are removed
// from disk on Release; persistent ones belong to the caller.
type Lease struct {
	Path      string
	temporary bool
	locator   *Locator
	once      sync.Once
}

// Temporary reports whether the path was generated for this run only.
func (l *Lease) Temporary() bool { return l.temporary }

// Release deletes a temporary raster. It is safe to call more than once and
// never fails: a missing file is fine and other errors are logged and counted.
func (l *Lease) Release() {
	if !l.temporary {
		return
	}
	l.once.Do(func() {
		l.locator.remove(l.Path)
	})
}

// Lease returns the output path for req. Requests without output_tif get a
// unique path under the temp directory so concurrent runs never share a file.
func (l *Locator) Lease(req domain.SimulationRequest) *Lease {
	if req.PersistentOutput() {
		return &Lease{Path: req.OutputTIF, locator: l}
	}

	p := path.Join(l.tempDir, tempPrefix+uuid.NewString()+tempSuffix)
	l.mu.Lock()
	l.active[p] = struct{}{}
	l.mu.Unlock()

	return &Lease{Path: p, temporary: true, locator: l}
}

func (l *Locator) remove(p string) {
	defer func() {
		l.mu.Lock()
		delete(l.active, p)
		l.mu.Unlock()
	}()

	err := os.Remove(l.abs(p))
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return
	}
	l.metrics.TempCleanupFailures.Inc()
	l.logger.Warn("remove temporary raster failed", "path", p, "error", err)
}

func (l *Locator) leased(p string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.active[p]
	return ok
}

func (l *Locator) abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(l.workDir, filepath.FromSlash(p))
}

// BaseURL derives scheme://host from the inbound request. Forwarded headers
// are honoured only when the locator trusts its proxy.
func (l *Locator) BaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host

	if l.trustProxy {
		if v := firstValue(r.Header.Get("X-Forwarded-Proto")); v != "" {
			scheme = v
		}
		if v := firstValue(r.Header.Get("X-Forwarded-Host")); v != "" {
			host = v
		}
	}
	return scheme + "://" + host
}

// Bundle builds the artifact URLs for a successful run.
func Bundle(baseURL string, req domain.SimulationRequest, outputPath string) domain.ArtifactBundle {
	tiles := join(baseURL, req.TilesDir)
	return domain.ArtifactBundle{
		Tiles:      tiles + "/{z}/{x}/{y}.png",
		Leaflet:    tiles + "/leaflet.html",
		OpenLayers: tiles + "/openlayers.html",
		OutputTIF:  join(baseURL, outputPath),
		OutputPump: join(baseURL, req.PumpLog),
	}
}

func join(baseURL, p string) string {
	p = strings.TrimPrefix(p, "./")
	p = strings.Trim(p, "/")
	return strings.TrimSuffix(baseURL, "/") + "/" + p
}

func firstValue(header string) string {
	if i := strings.IndexByte(header, ','); i >= 0 {
		header = header[:i]
	}
	return strings.TrimSpace(header)
}
