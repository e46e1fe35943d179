package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes
// using a simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// MediaPair lays out an audio and a video directory holding one matching
// file per base name and returns (audioDir, videoDir, outDir).
func MediaPair(t testing.TB, names ...string) (string, string, string) {
	t.Helper()

	root := t.TempDir()
	audioDir := filepath.Join(root, "audio")
	videoDir := filepath.Join(root, "video")
	outDir := filepath.Join(root, "out")
	for _, name := range names {
		WriteFile(t, filepath.Join(audioDir, name+".mp3"), 1)
		WriteFile(t, filepath.Join(videoDir, name+".mkv"), 1)
	}
	for _, dir := range []string{audioDir, videoDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	return audioDir, videoDir, outDir
}
