package test

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/pmezard/go-difflib/difflib"
	"github/chapool/side-transfer/internal/util"
)

// TEST_UPDATE_GOLDEN=true rewrites every snapshot instead of comparing
const updateEnv = "TEST_UPDATE_GOLDEN"

var (
	// Snapshoter stores values under test/testdata/snapshots and compares later runs against them
	Snapshoter = snapshoter{
		update:   envBool(updateEnv),
		location: SnapshotDir(),
	}

	spewConfig = spew.ConfigState{
		Indent:                  "  ",
		SortKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}

	unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)
)

// SnapshotDir is the default snapshot location
func SnapshotDir() string {
	return filepath.Join(util.GetProjectRootDir(), "test", "testdata", "snapshots")
}

type snapshoter struct {
	update   bool
	label    string
	location string
}

// Update forces the snapshot to be rewritten
func (s snapshoter) Update(update bool) snapshoter {
	s.update = update
	return s
}

// Label distinguishes several snapshots taken in one test
func (s snapshoter) Label(label string) snapshoter {
	s.label = label
	return s
}

// Location overrides the snapshot directory
func (s snapshoter) Location(location string) snapshoter {
	s.location = location
	return s
}

// Save dumps data with spew and compares it against the stored snapshot
func (s snapshoter) Save(t testing.TB, data ...any) {
	t.Helper()

	s.SaveString(t, spewConfig.Sdump(data...))
}

// SaveString compares data against the stored snapshot. A missing snapshot
// fails the test unless snapshots are being updated.
func (s snapshoter) SaveString(t testing.TB, data string) {
	t.Helper()

	file := filepath.Join(s.location, s.fileName(t))

	if !s.update {
		existing, err := os.ReadFile(file)
		if err != nil {
			if os.IsNotExist(err) {
				t.Fatalf("snapshot %s is missing, set %s=true to create it", file, updateEnv)
				return
			}

			t.Fatalf("failed to read snapshot %s: %v", file, err)
			return
		}

		if string(existing) != data {
			diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
				A:        difflib.SplitLines(string(existing)),
				B:        difflib.SplitLines(data),
				FromFile: "Snapshot",
				ToFile:   "Current",
				Context:  3,
			})

			t.Fatalf("snapshot %s does not match, set %s=true to update\n%s", file, updateEnv, diff)
		}

		return
	}

	if err := os.MkdirAll(s.location, 0o755); err != nil {
		t.Fatalf("failed to create snapshot dir: %v", err)
		return
	}

	//nolint:gosec // snapshots are checked into the repository
	if err := os.WriteFile(file, []byte(data), 0o644); err != nil {
		t.Fatalf("failed to write snapshot %s: %v", file, err)
		return
	}

	t.Logf("snapshot written to %s", file)
}

func (s snapshoter) fileName(t testing.TB) string {
	name := t.Name()
	if s.label != "" {
		name = fmt.Sprintf("%s_%s", name, s.label)
	}

	return unsafeFileChars.ReplaceAllString(strings.ReplaceAll(name, "/", "__"), "-") + ".golden"
}

func envBool(key string) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return false
	}

	b, err := strconv.ParseBool(v)
	return err == nil && b
}
