// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package assets

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"

	"github.com/tomtom215/classfront/internal/config"
	"github.com/tomtom215/classfront/internal/logging"
)

// ErrEntryNotFound is returned when the manifest lacks the configured entry.
var ErrEntryNotFound = errors.New("vite entry not found in manifest")

// ManifestChunk is one entry of a Vite build manifest.
type ManifestChunk struct {
	File    string   `json:"file"`
	Src     string   `json:"src,omitempty"`
	IsEntry bool     `json:"isEntry,omitempty"`
	CSS     []string `json:"css,omitempty"`
	Imports []string `json:"imports,omitempty"`
}

// Manifest maps source paths to built chunks.
type Manifest map[string]ManifestChunk

// Vite resolves script and stylesheet tags for the frontend bundle, either
// from the production manifest or from a running dev server.
type Vite struct {
	publicDir   string
	buildDir    string
	entry       string
	devOverride string
	versionPin  string

	mu        sync.RWMutex
	manifest  Manifest
	version   string
	devServer string
}

// ResolvePublicDir picks <base>/public when it exists (directory or
// symlink), else <base>/public_html when it is a directory, else
// <base>/public.
func ResolvePublicDir(base string) string {
	public := filepath.Join(base, "public")
	if _, err := os.Lstat(public); err == nil {
		return public
	}
	publicHTML := filepath.Join(base, "public_html")
	if info, err := os.Stat(publicHTML); err == nil && info.IsDir() {
		return publicHTML
	}
	return public
}

// New loads the manifest under the public directory. A missing manifest is
// not an error; pages then rely on the dev server.
func New(cfg *config.AssetsConfig, versionPin string) (*Vite, error) {
	buildDir := strings.Trim(cfg.BuildDir, "/")
	if buildDir == "" {
		buildDir = "build"
	}
	v := &Vite{
		publicDir:   ResolvePublicDir(cfg.BasePath),
		buildDir:    buildDir,
		entry:       cfg.Entry,
		devOverride: strings.TrimRight(cfg.DevServerURL, "/"),
		versionPin:  versionPin,
	}
	if err := v.Reload(); err != nil {
		return nil, err
	}
	return v, nil
}

// Reload re-reads the manifest and the hot file.
func (v *Vite) Reload() error {
	manifestPath := filepath.Join(v.publicDir, v.buildDir, "manifest.json")

	var manifest Manifest
	version := v.versionPin

	data, err := os.ReadFile(manifestPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &manifest); err != nil {
			return fmt.Errorf("parse vite manifest %s: %w", manifestPath, err)
		}
		if version == "" {
			version = strconv.FormatUint(xxhash.Sum64(data), 16)
		}
	case errors.Is(err, fs.ErrNotExist):
		logging.Debug().Str("path", manifestPath).Msg("Vite manifest not found")
	default:
		return fmt.Errorf("read vite manifest: %w", err)
	}

	devServer := v.devOverride
	if devServer == "" {
		if hot, err := os.ReadFile(filepath.Join(v.publicDir, "hot")); err == nil {
			devServer = strings.TrimRight(strings.TrimSpace(string(hot)), "/")
		}
	}

	v.mu.Lock()
	v.manifest = manifest
	v.version = version
	v.devServer = devServer
	v.mu.Unlock()
	return nil
}

// PublicDir returns the resolved public directory.
func (v *Vite) PublicDir() string {
	return v.publicDir
}

// Version returns the asset version: the pinned version, else the xxhash
// of the manifest, else "".
func (v *Vite) Version() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.version
}

// DevServerURL returns the dev server origin, or "" in production mode.
func (v *Vite) DevServerURL() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.devServer
}

var tagsTemplate = template.Must(template.New("vite").Parse(
	`{{if .Dev}}<script type="module">
import RefreshRuntime from '{{.Dev}}/@react-refresh'
RefreshRuntime.injectIntoGlobalHook(window)
window.$RefreshReg$ = () => {}
window.$RefreshSig$ = () => (type) => type
window.__vite_plugin_react_preamble_installed__ = true
</script>
<script type="module" src="{{.Dev}}/@vite/client"></script>
<script type="module" src="{{.Dev}}/{{.Entry}}"></script>
{{else}}{{range .CSS}}<link rel="stylesheet" href="{{.}}">
{{end}}{{range .Preload}}<link rel="modulepreload" href="{{.}}">
{{end}}<script type="module" src="{{.Script}}"></script>
{{end}}`))

type tagsData struct {
	Dev     template.URL
	Entry   string
	CSS     []string
	Preload []string
	Script  string
}

// Tags returns the script and stylesheet tags for the entry.
func (v *Vite) Tags() (template.HTML, error) {
	v.mu.RLock()
	devServer, manifest := v.devServer, v.manifest
	v.mu.RUnlock()

	data := tagsData{Entry: v.entry}
	if devServer != "" {
		data.Dev = template.URL(devServer)
	} else {
		chunk, ok := manifest[v.entry]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrEntryNotFound, v.entry)
		}
		data.Script = v.buildURL(chunk.File)
		seen := map[string]bool{}
		v.collect(manifest, v.entry, seen, &data)
	}

	var buf bytes.Buffer
	if err := tagsTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render vite tags: %w", err)
	}
	//nolint:gosec // template output is escaped
	return template.HTML(buf.String()), nil
}

// collect gathers CSS and preloads for key and its static imports.
func (v *Vite) collect(manifest Manifest, key string, seen map[string]bool, data *tagsData) {
	if seen[key] {
		return
	}
	seen[key] = true

	chunk := manifest[key]
	for _, css := range chunk.CSS {
		data.CSS = append(data.CSS, v.buildURL(css))
	}
	for _, imported := range chunk.Imports {
		if dep, ok := manifest[imported]; ok && !seen[imported] {
			data.Preload = append(data.Preload, v.buildURL(dep.File))
		}
		v.collect(manifest, imported, seen, data)
	}
}

func (v *Vite) buildURL(file string) string {
	return "/" + v.buildDir + "/" + strings.TrimLeft(file, "/")
}
