// Package coverage combines parallel Go coverage profiles and renders
// the HTML report for the full test environment.
//
// Coverage environments run their test commands with per-run profile
// files (e.g., .cover/unit.out and .cover/system.out). Those partial
// profiles must be MERGED into a single profile before report
// generation — overwriting one with the other would silently drop the
// coverage contributed by the other suite.
//
// The cover profile format is line-oriented:
//
//	mode: set|count|atomic
//	file.go:startLine.startCol,endLine.endCol numStmt count
//
// Merging is keyed on everything up to the count: for "set" mode the
// counts are OR-ed, for "count" and "atomic" they are summed. This is
// the same semantics "go test" itself applies when a binary runs the
// same block multiple times.
package coverage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ModeSet is the coverage mode in which counts are boolean.
const ModeSet = "set"

// block is one profile line split into its merge key (file:pos numStmt)
// and its count.
type block struct {
	key   string
	count int64
}

// Combine merges all partial profile files found in dataDir (files with a
// .out extension) into a single profile written to outPath. The profile
// mode of the first file is authoritative; a mode mismatch between
// partial profiles is an error because their counts are not comparable.
//
// Returns the number of partial profiles merged. Zero partial profiles
// is an error: the coverage environment ran no instrumented commands,
// which always indicates a misconfigured pipeline.
func Combine(dataDir, outPath string) (int, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read coverage data directory %s: %w", dataDir, err)
	}

	var profiles []string
	outBase := filepath.Base(outPath)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".out") {
			continue
		}
		// Skip a stale combined profile from a previous run so it is
		// not merged into itself.
		if e.Name() == outBase {
			continue
		}
		profiles = append(profiles, filepath.Join(dataDir, e.Name()))
	}
	sort.Strings(profiles)

	if len(profiles) == 0 {
		return 0, fmt.Errorf("no coverage profiles found in %s", dataDir)
	}

	mode := ""
	merged := make(map[string]int64)
	order := make([]string, 0, 256)

	for _, path := range profiles {
		fileMode, blocks, err := parseProfile(path)
		if err != nil {
			return 0, err
		}
		if mode == "" {
			mode = fileMode
		} else if fileMode != mode {
			return 0, fmt.Errorf("coverage mode mismatch: %s has mode %q, expected %q", path, fileMode, mode)
		}

		for _, b := range blocks {
			prev, seen := merged[b.key]
			if !seen {
				order = append(order, b.key)
			}
			if mode == ModeSet {
				// Boolean coverage: covered in any run means covered.
				if b.count != 0 || prev != 0 {
					merged[b.key] = 1
				} else {
					merged[b.key] = 0
				}
			} else {
				merged[b.key] = prev + b.count
			}
		}
	}

	// Keep the first-seen block order, which groups blocks by file the
	// way go tool cover expects.
	var sb strings.Builder
	fmt.Fprintf(&sb, "mode: %s\n", mode)
	for _, key := range order {
		fmt.Fprintf(&sb, "%s %d\n", key, merged[key])
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory for %s: %w", outPath, err)
	}
	if err := os.WriteFile(outPath, []byte(sb.String()), 0o644); err != nil {
		return 0, fmt.Errorf("failed to write combined profile %s: %w", outPath, err)
	}

	return len(profiles), nil
}

// parseProfile reads one cover profile file and returns its mode and blocks.
func parseProfile(path string) (string, []block, error) {
	f, err := os.Open(path) // #nosec G304 — path enumerated from the data dir
	if err != nil {
		return "", nil, fmt.Errorf("failed to open coverage profile %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var (
		mode   string
		blocks []block
	)

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if lineNo == 1 {
			rest, ok := strings.CutPrefix(line, "mode: ")
			if !ok {
				return "", nil, fmt.Errorf("%s:1: missing mode header", path)
			}
			mode = rest
			continue
		}

		// Split off the trailing count; the rest is the merge key.
		idx := strings.LastIndexByte(line, ' ')
		if idx < 0 {
			return "", nil, fmt.Errorf("%s:%d: malformed profile line %q", path, lineNo, line)
		}
		count, err := strconv.ParseInt(line[idx+1:], 10, 64)
		if err != nil {
			return "", nil, fmt.Errorf("%s:%d: malformed count in %q", path, lineNo, line)
		}

		blocks = append(blocks, block{key: line[:idx], count: count})
	}
	if err := scanner.Err(); err != nil {
		return "", nil, fmt.Errorf("failed to read coverage profile %s: %w", path, err)
	}
	if mode == "" {
		return "", nil, fmt.Errorf("%s: empty coverage profile", path)
	}

	return mode, blocks, nil
}
