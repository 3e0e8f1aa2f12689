package modpack

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cwmc/portable-launcher/internal/model"
)

const (
	// ArchiveName is the file name of the downloaded archive inside the staging directory
	ArchiveName = "modpack.zip"
	// ExtractDir is the staging subdirectory the archive is unpacked into
	ExtractDir = "extract"
	// DataRootName is the game data directory inside launcher exports
	DataRootName = ".minecraft"
)

// Observer receives download progress. Calls are synchronous, one per written chunk.
type Observer interface {
	Progress(transferred, expected int64)
}

// UnpackObserver is implemented by observers that want to know when the verified
// archive starts being unpacked
type UnpackObserver interface {
	Unpacking()
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(transferred, expected int64)

// Progress calls f
func (f ObserverFunc) Progress(transferred, expected int64) {
	f(transferred, expected)
}

// ShouldInstall reports whether the content pack must be installed this run
func ShouldInstall(cfg model.DirectoryConfig, decision model.LifecycleDecision) bool {
	return cfg.UseModpack && decision.Fresh()
}

// Installer downloads a content pack archive and merges it into an instance directory.
// It owns the staging directory and removes it at the end of every Install call.
type Installer struct {
	stagingDir string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewInstaller creates a new Installer staging its work under stagingDir
func NewInstaller(stagingDir string, httpClient *http.Client, logger *slog.Logger) *Installer {
	if httpClient == nil {
		// No timeout: content packs can take minutes on event Wi-Fi
		httpClient = &http.Client{}
	}
	return &Installer{
		stagingDir: stagingDir,
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "modpack-installer")),
	}
}

// StagingDir returns the staging directory path
func (i *Installer) StagingDir() string {
	return i.stagingDir
}

// Install downloads the archive at url, verifies its size, unpacks it and moves every
// child of its data root into instancePath. Same-named entries in instancePath are replaced.
func (i *Installer) Install(ctx context.Context, url, instancePath string, observer Observer) error {
	if err := resetDir(i.stagingDir); err != nil {
		return fmt.Errorf("%w: prepare staging directory: %v", model.ErrFilesystemOperationFailed, err)
	}
	defer func() {
		if err := os.RemoveAll(i.stagingDir); err != nil {
			i.logger.Warn("could not remove staging directory",
				slog.String("path", i.stagingDir),
				slog.String("error", err.Error()),
			)
		}
	}()

	archive, err := i.download(ctx, url, observer)
	if err != nil {
		return err
	}
	if err := archive.Verify(); err != nil {
		return err
	}

	i.logger.Debug("content pack downloaded",
		slog.String("url", url),
		slog.Int64("bytes", archive.TransferredBytes),
	)

	if u, ok := observer.(UnpackObserver); ok {
		u.Unpacking()
	}

	extractDir := filepath.Join(i.stagingDir, ExtractDir)
	if err := extractZip(archive.StagingPath, extractDir); err != nil {
		return err
	}

	dataRoot, err := findDataRoot(extractDir)
	if err != nil {
		return err
	}

	moved, err := mergeInto(dataRoot, instancePath)
	if err != nil {
		return err
	}

	i.logger.Debug("content pack installed",
		slog.String("instance", instancePath),
		slog.Int("entries", moved),
	)
	return nil
}

// download streams url into the staging directory
func (i *Installer) download(ctx context.Context, url string, observer Observer) (model.ContentPackArchive, error) {
	archive := model.ContentPackArchive{
		URL:         url,
		StagingPath: filepath.Join(i.stagingDir, ArchiveName),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return archive, fmt.Errorf("%w: create request: %v", model.ErrContentPackTransferIncomplete, err)
	}

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return archive, fmt.Errorf("%w: %v", model.ErrContentPackTransferIncomplete, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return archive, fmt.Errorf("%w: GET %s: HTTP %d", model.ErrContentPackTransferIncomplete, url, resp.StatusCode)
	}
	if resp.ContentLength > 0 {
		archive.ExpectedBytes = resp.ContentLength
	}

	file, err := os.Create(archive.StagingPath)
	if err != nil {
		return archive, fmt.Errorf("%w: create archive file: %v", model.ErrFilesystemOperationFailed, err)
	}

	pw := &progressWriter{w: file, expected: archive.ExpectedBytes, observer: observer}
	n, copyErr := io.Copy(pw, resp.Body)
	archive.TransferredBytes = n
	closeErr := file.Close()

	if copyErr != nil {
		return archive, fmt.Errorf("%w: received %d of %d bytes: %v",
			model.ErrContentPackTransferIncomplete, n, archive.ExpectedBytes, copyErr)
	}
	if closeErr != nil {
		return archive, fmt.Errorf("%w: write archive file: %v", model.ErrFilesystemOperationFailed, closeErr)
	}
	return archive, nil
}

// progressWriter counts written bytes and reports them to an observer
type progressWriter struct {
	w        io.Writer
	written  int64
	expected int64
	observer Observer
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	if p.observer != nil {
		p.observer.Progress(p.written, p.expected)
	}
	return n, err
}

// resetDir removes dir with all contents and recreates it empty
func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}
