package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/citadel/engine/assets/loaders"
	"github.com/spaghettifunk/citadel/engine/core"
)

type AssetType uint8

const (
	AssetTypeNone AssetType = iota
	AssetTypeShader
	AssetTypeShaderSource
	AssetTypeConfig
)

func (t AssetType) String() string {
	switch t {
	case AssetTypeShader:
		return "shader"
	case AssetTypeShaderSource:
		return "shader source"
	case AssetTypeConfig:
		return "config"
	}
	return "none"
}

// DefaultDebounce coalesces the burst of events editors produce on save.
const DefaultDebounce = 250 * time.Millisecond

var ErrClosed = errors.New("asset manager closed")

type AssetInfo struct {
	Path     string
	Type     AssetType
	Modified time.Time
}

/**
 * @brief Indexes the asset directory and watches it for changes. Changed
 * paths, relative to the asset root, are delivered on Changes once they
 * have been quiet for the debounce interval.
 */
type AssetManager struct {
	root   string
	assets map[string]AssetInfo

	mutex sync.RWMutex

	debounce time.Duration
	watcher  *fsnotify.Watcher
	changes  chan string
	done     chan struct{}
	wg       sync.WaitGroup
	isClosed bool
}

func NewAssetManager(debounce time.Duration) (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		debounce: debounce,
		watcher:  fsWatch,
		changes:  make(chan string, 16),
		done:     make(chan struct{}),
	}, nil
}

func (am *AssetManager) Initialize(assetsDir string) error {
	root, err := filepath.Abs(assetsDir)
	if err != nil {
		return err
	}
	am.root = root

	if err := am.watchRecursive(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}

	am.wg.Add(1)
	go am.start()

	core.LogInfo("Asset manager watching '%s' (%d assets).", root, am.Len())
	return nil
}

// Changes delivers debounced, asset-root relative paths of created or written files.
func (am *AssetManager) Changes() <-chan string {
	return am.changes
}

func (am *AssetManager) Root() string {
	return am.root
}

// Path resolves an asset-root relative name.
func (am *AssetManager) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(am.root, name)
}

func (am *AssetManager) Len() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

func (am *AssetManager) Lookup(name string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[filepath.ToSlash(name)]
	return info, ok
}

// LoadShader reads a compiled SPIR-V module.
func (am *AssetManager) LoadShader(name string) ([]uint32, error) {
	if t := determineAssetType(name); t != AssetTypeShader {
		return nil, fmt.Errorf("'%s' is a %s asset, not a compiled shader", name, t)
	}
	return loaders.LoadSPIRV(am.Path(name))
}

func (am *AssetManager) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(am.Path(name))
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return ErrClosed
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	am.wg.Wait()
	return am.watcher.Close()
}

func (am *AssetManager) start() {
	defer am.wg.Done()
	defer close(am.changes)

	pending := make(map[string]struct{})
	timer := time.NewTimer(am.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case e, ok := <-am.watcher.Events:
			if !ok {
				return
			}
			if e.Has(fsnotify.Create) {
				if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
					if err := am.watchRecursive(e.Name); err != nil {
						core.LogWarn("failed to watch new directory '%s': %s", e.Name, err)
					}
					continue
				}
			}
			// Handle create or modify events
			if e.Has(fsnotify.Create) || e.Has(fsnotify.Write) {
				if rel, ok := am.handleFileEvent(e.Name); ok {
					pending[rel] = struct{}{}
					timer.Reset(am.debounce)
				}
			}
			// Can't stat a deleted path, so always try to drop it from the index and the watch list.
			if e.Has(fsnotify.Remove) || e.Has(fsnotify.Rename) {
				am.removeAsset(e.Name)
				_ = am.watcher.Remove(e.Name)
			}

		case err, ok := <-am.watcher.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-timer.C:
			for rel := range pending {
				select {
				case am.changes <- rel:
				default:
					core.LogWarn("asset change queue full, dropping '%s'", rel)
				}
				delete(pending, rel)
			}

		case <-am.done:
			timer.Stop()
			return
		}
	}
}

// watchRecursive adds path and every directory below it to the watch list,
// indexing the files it finds on the way.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.watcher.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file. Returns the root relative path of known asset types.
func (am *AssetManager) handleFileEvent(path string) (string, bool) {
	assetType := determineAssetType(path)
	if assetType == AssetTypeNone {
		return "", false
	}
	rel, err := filepath.Rel(am.root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[rel] = AssetInfo{
		Path:     path,
		Type:     assetType,
		Modified: time.Now(),
	}
	return rel, true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	rel, err := filepath.Rel(am.root, path)
	if err != nil {
		return
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()
	delete(am.assets, filepath.ToSlash(rel))
}

func determineAssetType(path string) AssetType {
	switch filepath.Ext(path) {
	case ".spv":
		return AssetTypeShader
	case ".vert", ".frag", ".glsl":
		return AssetTypeShaderSource
	case ".toml":
		return AssetTypeConfig
	default:
		return AssetTypeNone
	}
}
