// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package assets

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

// Static serves existing files from the public directory and hands every
// other request to next. Built assets under the build directory are
// fingerprinted and cached as immutable.
func (v *Vite) Static(next http.Handler) http.Handler {
	root := os.DirFS(v.publicDir)
	files := http.FileServerFS(root)
	buildPrefix := "/" + v.buildDir + "/"

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}

		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name == "" || name == "hot" || !fs.ValidPath(name) {
			next.ServeHTTP(w, r)
			return
		}
		info, err := fs.Stat(root, name)
		if err != nil || info.IsDir() {
			next.ServeHTTP(w, r)
			return
		}

		if strings.HasPrefix(r.URL.Path, buildPrefix) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		}
		files.ServeHTTP(w, r)
	})
}
