package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLabelsAndHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"VOLT", "Voltage (V)"},
		{"curr", "Current (A)"},
		{" RES", "Resistance (ohms)"},
		{"TIME", "Time (s)"},
		{"FOO", "FOO"},
	}
	for _, tt := range tests {
		if got := Label(tt.in); got != tt.want {
			t.Errorf("Label(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	got := Header([]string{"VOLT", "CURR", "TIME"}, Tab)
	if got != "Voltage (V)\tCurrent (A)\tTime (s)" {
		t.Errorf("Header() = %q", got)
	}
	if Delimiter("comma") != Comma || Delimiter("tab") != Tab || Delimiter("") != Tab {
		t.Errorf("Delimiter mapping wrong")
	}
}

func TestFileSinkPlain(t *testing.T) {
	dir := t.TempDir()
	sink := &FileSink{Path: filepath.Join(dir, "run.txt"), Digest: true}
	if err := sink.Write("Voltage (V)\tCurrent (A)", "0\t1e-9\n0.1\t2e-9"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(sink.Target())
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	want := "Voltage (V)\tCurrent (A)\n0\t1e-9\n0.1\t2e-9\n"
	if string(data) != want {
		t.Errorf("file contents = %q, want %q", data, want)
	}

	sum, err := os.ReadFile(sink.Target() + ".b3")
	if err != nil {
		t.Fatalf("digest sidecar missing: %v", err)
	}
	if !strings.HasPrefix(string(sum), Digest(data)) {
		t.Errorf("digest sidecar = %q", sum)
	}
}

func TestFileSinkCompressed(t *testing.T) {
	dir := t.TempDir()
	sink := &FileSink{Path: filepath.Join(dir, "run.txt"), Compress: true}
	if got := sink.Target(); !strings.HasSuffix(got, "run.txt.zst") {
		t.Fatalf("Target() = %q", got)
	}
	if err := sink.Write("Time (s)", "1\n2"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	raw, err := os.ReadFile(sink.Target())
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	plain, err := Decompress(raw)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if string(plain) != "Time (s)\n1\n2\n" {
		t.Errorf("decompressed = %q", plain)
	}
}

func TestFileSinkNeedsPath(t *testing.T) {
	if err := (&FileSink{}).Write("h", "b"); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestMemorySink(t *testing.T) {
	var sink MemorySink
	_ = sink.Write("h", "")
	if sink.Last() != "h\n" {
		t.Errorf("Last() = %q", sink.Last())
	}
}
