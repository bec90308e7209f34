package main

import (
	"bytes"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// executeCommand is a helper to run a cobra command and capture its output
func executeCommand(args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	return out.String(), errOut.String(), err
}

func writePhotos(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("creating %s: %v", name, err)
		}
		if err := jpeg.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil); err != nil {
			t.Fatalf("encoding %s: %v", name, err)
		}
		f.Close()
	}
	return dir
}

func TestRootCmd_WalksTheFolder(t *testing.T) {
	dir := writePhotos(t, "a.jpg", "b.jpg", "c.jpg")

	out, errOut, err := executeCommand(dir)
	if err != nil {
		t.Fatalf("command execution failed: %v, output: %s", err, errOut)
	}

	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		if !strings.Contains(out, name) {
			t.Errorf("expected output to contain %s, got:\n%s", name, out)
		}
	}
	if !strings.Contains(out, "4x4") {
		t.Errorf("expected output to contain image dimensions, got:\n%s", out)
	}
}

func TestRootCmd_FailsOnMissingFolder(t *testing.T) {
	_, _, err := executeCommand(filepath.Join(t.TempDir(), "absent"))
	if err == nil {
		t.Error("expected an error for a missing folder")
	}
}

func TestRateAndListCommands(t *testing.T) {
	dir := writePhotos(t, "a.jpg", "b.jpg")

	_, errOut, err := executeCommand("rate", dir, "b.jpg", "high")
	if err != nil {
		t.Fatalf("rate failed: %v, output: %s", err, errOut)
	}

	out, errOut, err := executeCommand("list", dir)
	if err != nil {
		t.Fatalf("list failed: %v, output: %s", err, errOut)
	}
	if !strings.Contains(out, "b.jpg\thigh") {
		t.Errorf("expected list output to show the saved rating, got:\n%s", out)
	}
	if !strings.Contains(out, "a.jpg\tlow") {
		t.Errorf("expected list output to show the default rating, got:\n%s", out)
	}

	t.Run("rejects unknown files", func(t *testing.T) {
		if _, _, err := executeCommand("rate", dir, "nope.jpg", "high"); err == nil {
			t.Error("expected an error for a file outside the collection")
		}
	})

	t.Run("rejects unknown ratings", func(t *testing.T) {
		if _, _, err := executeCommand("rate", dir, "a.jpg", "great"); err == nil {
			t.Error("expected an error for an unknown rating name")
		}
	})

	t.Run("shows orphaned ratings on request", func(t *testing.T) {
		sidecar := filepath.Join(dir, "ratings.yaml")
		data, err := os.ReadFile(sidecar)
		if err != nil {
			t.Fatalf("reading sidecar: %v", err)
		}
		if err := os.WriteFile(sidecar, append(data, []byte("gone.jpg: 1\n")...), 0o644); err != nil {
			t.Fatalf("writing sidecar: %v", err)
		}

		out, _, err := executeCommand("list", dir, "--orphans")
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(out, "gone.jpg\tmedium\t(orphaned)") {
			t.Errorf("expected orphaned entry in output, got:\n%s", out)
		}
	})
}
