package match

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"dubber/internal/merge"
)

// OutputSuffix is appended to the video base name when deriving output files.
const OutputSuffix = "_merged"

// Extensions accepted on each side of the pairing.
const (
	AudioExt = ".mp3"
	VideoExt = ".mkv"
)

// Sentinel errors for directory access failures.
var (
	ErrDirectoryNotFound   = errors.New("directory not found")
	ErrDirectoryUnreadable = errors.New("directory unreadable")
)

// Pair is one audio file matched to one video file plus the derived output
// path. OutputPath is always computed from the video base name; it is never
// caller-supplied.
type Pair struct {
	AudioPath  string
	VideoPath  string
	OutputPath string
}

// Match pairs audio and video files from two directories.
//
// Tier one pairs files whose base names are identical on both sides. Only
// when that yields nothing and both directories contain candidates does the
// positional fallback pair files index-for-index in creation-time order.
// Tiers are never mixed. An empty result is a legitimate "nothing to do"
// outcome, not an error.
func Match(audioDir, videoDir, outDir string, cfg merge.Config) ([]Pair, error) {
	audioFiles, err := listFiles(audioDir, AudioExt)
	if err != nil {
		return nil, err
	}
	videoFiles, err := listFiles(videoDir, VideoExt)
	if err != nil {
		return nil, err
	}

	ext := cfg.OutputExtension()

	pairs := matchByName(audioDir, videoDir, outDir, audioFiles, videoFiles, ext)
	if len(pairs) > 0 {
		return pairs, nil
	}
	if len(audioFiles) == 0 || len(videoFiles) == 0 {
		return nil, nil
	}
	return matchByCreationOrder(audioDir, videoDir, outDir, audioFiles, videoFiles, ext)
}

func matchByName(audioDir, videoDir, outDir string, audioFiles, videoFiles []string, ext string) []Pair {
	audioByBase := baseNameIndex(audioFiles)
	videoByBase := baseNameIndex(videoFiles)

	common := make([]string, 0, len(audioByBase))
	for base := range audioByBase {
		if _, ok := videoByBase[base]; ok {
			common = append(common, base)
		}
	}
	// Set intersection carries no order of its own; sort so results are
	// reproducible.
	sort.Strings(common)

	pairs := make([]Pair, 0, len(common))
	for _, base := range common {
		pairs = append(pairs, Pair{
			AudioPath:  filepath.Join(audioDir, audioByBase[base]),
			VideoPath:  filepath.Join(videoDir, videoByBase[base]),
			OutputPath: outputPath(outDir, base, ext),
		})
	}
	return pairs
}

func matchByCreationOrder(audioDir, videoDir, outDir string, audioFiles, videoFiles []string, ext string) ([]Pair, error) {
	audioSorted, err := sortByCreationTime(audioDir, audioFiles)
	if err != nil {
		return nil, err
	}
	videoSorted, err := sortByCreationTime(videoDir, videoFiles)
	if err != nil {
		return nil, err
	}

	count := len(audioSorted)
	if len(videoSorted) < count {
		count = len(videoSorted)
	}

	pairs := make([]Pair, 0, count)
	for i := 0; i < count; i++ {
		base := strings.TrimSuffix(videoSorted[i], filepath.Ext(videoSorted[i]))
		pairs = append(pairs, Pair{
			AudioPath:  filepath.Join(audioDir, audioSorted[i]),
			VideoPath:  filepath.Join(videoDir, videoSorted[i]),
			OutputPath: outputPath(outDir, base, ext),
		})
	}
	return pairs, nil
}

func outputPath(outDir, base, ext string) string {
	return filepath.Join(outDir, base+OutputSuffix+"."+ext)
}

func baseNameIndex(files []string) map[string]string {
	index := make(map[string]string, len(files))
	for _, name := range files {
		base := strings.TrimSuffix(name, filepath.Ext(name))
		index[base] = name
	}
	return index
}

func listFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
		case errors.Is(err, fs.ErrPermission):
			return nil, fmt.Errorf("%w: %s", ErrDirectoryUnreadable, dir)
		default:
			return nil, fmt.Errorf("list %s: %w", dir, err)
		}
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

func sortByCreationTime(dir string, files []string) ([]string, error) {
	type timed struct {
		name string
		at   time.Time
	}
	entries := make([]timed, 0, len(files))
	for _, name := range files {
		at, err := creationTime(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", filepath.Join(dir, name), err)
		}
		entries = append(entries, timed{name: name, at: at})
	}
	// Stable with a name tie-break so equal timestamps stay deterministic.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].at.Equal(entries[j].at) {
			return entries[i].name < entries[j].name
		}
		return entries[i].at.Before(entries[j].at)
	})

	sorted := make([]string, len(entries))
	for i, entry := range entries {
		sorted[i] = entry.name
	}
	return sorted, nil
}
