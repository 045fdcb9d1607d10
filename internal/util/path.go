package util

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

var (
	projectRootDir     string
	projectRootDirOnce sync.Once
)

// GetProjectRootDir returns the module root. PROJECT_ROOT_DIR overrides the
// location derived from this source file.
func GetProjectRootDir() string {
	projectRootDirOnce.Do(func() {
		if dir, ok := os.LookupEnv("PROJECT_ROOT_DIR"); ok && dir != "" {
			projectRootDir = dir
			return
		}

		_, file, _, ok := runtime.Caller(0)
		if !ok {
			projectRootDir, _ = os.Getwd()
			return
		}

		// internal/util/path.go
		projectRootDir = filepath.Join(filepath.Dir(file), "..", "..")
	})

	return projectRootDir
}
