package geosynth

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFormatSize(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{5242880, "5.00 MB"},
		{1073741824, "1.00 GB"},
	}
	for _, c := range cases {
		if got := formatSize(c.bytes); got != c.want {
			t.Errorf("formatSize(%d) = %q, want %q", c.bytes, got, c.want)
		}
	}
}

func TestFormatSpeed(t *testing.T) {
	cases := []struct {
		speed float64
		want  string
	}{
		{100, "100 B/s"},
		{2048, "2.0 KB/s"},
		{3145728, "3.0 MB/s"},
	}
	for _, c := range cases {
		if got := formatSpeed(c.speed); got != c.want {
			t.Errorf("formatSpeed(%v) = %q, want %q", c.speed, got, c.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, "0s"},
		{5 * time.Second, "5s"},
		{90 * time.Second, "1m 30s"},
		{2 * time.Minute, "2m"},
		{65 * time.Minute, "1h 5m"},
		{2 * time.Hour, "2h"},
	}
	for _, c := range cases {
		if got := formatDuration(c.d); got != c.want {
			t.Errorf("formatDuration(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}

func TestRenderProgress(t *testing.T) {
	t.Run("halfway", func(t *testing.T) {
		var buf bytes.Buffer
		renderProgress(&buf, "depth", 50, 100, time.Now().Add(-10*time.Second))

		out := buf.String()
		if !strings.Contains(out, "depth") {
			t.Errorf("output %q does not name the archive", out)
		}
		if !strings.Contains(out, "50%") {
			t.Errorf("output %q does not show 50%%", out)
		}
		if !strings.Contains(out, "=") || !strings.Contains(out, ">") {
			t.Errorf("output %q has no progress bar", out)
		}
	})

	t.Run("unknown total", func(t *testing.T) {
		var buf bytes.Buffer
		renderProgress(&buf, "depth", 50, 0, time.Now())
		if !strings.Contains(buf.String(), "0%") {
			t.Errorf("output %q does not show 0%% for unknown total", buf.String())
		}
	})
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, &Report{Results: []ArchiveResult{
		{
			Archive:      Archive{Name: "rgb", Variant: VariantDemo},
			Outcome:      OutcomeDownloaded,
			BytesFetched: 2048,
		},
		{
			Archive: Archive{Name: "depth", Variant: VariantDemo},
			Outcome: OutcomeFailed,
			Err:     ErrUnavailable,
		},
	}})

	out := buf.String()
	for _, want := range []string{"rgb", "downloaded", "2.00 KB", "depth", "failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q:\n%s", want, out)
		}
	}

	// rows come out sorted by archive name
	if strings.Index(out, "depth") > strings.Index(out, "rgb") {
		t.Error("report rows not sorted by archive name")
	}
}

func TestDatatypesCommand(t *testing.T) {
	t.Setenv(envDataDir, "")
	cmd := NewCommand(Config{DataDir: t.TempDir()})

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"datatypes"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"depth", "hdr_rgb", "layout_lines_full", "float-tensor"} {
		if !strings.Contains(out, want) {
			t.Errorf("datatypes output missing %q", want)
		}
	}
}

func TestScenesCommand(t *testing.T) {
	t.Setenv(envDataDir, "")
	dataDir := t.TempDir()
	sceneFixture(t, filepath.Join(dataDir, "demo"), "scene_a", Rgb, Depth)

	cmd := NewCommand(Config{DataDir: dataDir, Variant: VariantDemo})

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"scenes"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "scene_a") {
		t.Errorf("scenes output missing the scene id:\n%s", out)
	}
	if !strings.Contains(out, "depth") || !strings.Contains(out, "rgb") {
		t.Errorf("scenes output missing asset names:\n%s", out)
	}
	if !strings.Contains(out, "1 scene(s)") {
		t.Errorf("scenes output missing the count:\n%s", out)
	}
}

func TestStatusCommand(t *testing.T) {
	t.Setenv(envDataDir, "")
	cmd := NewCommand(Config{DataDir: t.TempDir(), Variant: VariantDemo})

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"status", "depth", "rgb"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"depth", "rgb", "false"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	update := newProgressPrinter(&buf)

	update(DownloadProgress{Archive: "depth", Phase: PhaseFetch, BytesTotal: 100, BytesCompleted: 50})
	update(DownloadProgress{Archive: "depth", Phase: PhaseExtract, FilesTotal: 4, FilesExtracted: 2})
	update(DownloadProgress{Archive: "depth", Phase: PhaseDone})

	out := buf.String()
	if !strings.Contains(out, "depth") {
		t.Errorf("output %q does not name the archive", out)
	}
	if !strings.Contains(out, "extracting 2/4") {
		t.Errorf("output %q missing extraction progress", out)
	}
	if !strings.Contains(out, "done") {
		t.Errorf("output %q missing completion line", out)
	}
}
