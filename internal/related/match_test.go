package related

import "testing"

func TestSplitExt(t *testing.T) {
	tests := []struct {
		name string
		stem string
		ext  string
	}{
		{"Test.m", "Test", ".m"},
		{"Test-inl.h", "Test-inl", ".h"},
		{"TestInternal.h", "TestInternal", ".h"},
		{"Makefile", "Makefile", ""},
		{"archive.tar.gz", "archive.tar", ".gz"},
		{".vimrc", "", ".vimrc"},
	}

	for _, tt := range tests {
		stem, ext := splitExt(tt.name)
		if stem != tt.stem || ext != tt.ext {
			t.Errorf("splitExt(%q) = (%q, %q), want (%q, %q)", tt.name, stem, ext, tt.stem, tt.ext)
		}
	}
}

func TestMatchKey(t *testing.T) {
	tests := []struct {
		stem string
		want string
	}{
		{"Test", "Test"},
		{"TestInternal", "Test"},
		{"Test-inl", "Test"},
		// Suffix-anchored: a leading marker is not a marker
		{"InternalTest", "InternalTest"},
		{"Internal", ""},
	}

	for _, tt := range tests {
		if got := matchKey(tt.stem); got != tt.want {
			t.Errorf("matchKey(%q) = %q, want %q", tt.stem, got, tt.want)
		}
	}
}

func TestStripBackup(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Test.m", "Test.m"},
		{"Test.m~", "Test.m"},
		{"Test.m~~", "Test.m"},
		{"~notes", "~notes"},
	}

	for _, tt := range tests {
		if got := stripBackup(tt.name); got != tt.want {
			t.Errorf("stripBackup(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestNormalizeExt(t *testing.T) {
	if got := normalizeExt("h"); got != ".h" {
		t.Errorf("normalizeExt(h) = %q, want .h", got)
	}
	if got := normalizeExt(".h"); got != ".h" {
		t.Errorf("normalizeExt(.h) = %q, want .h", got)
	}
	if got := normalizeExt(""); got != "" {
		t.Errorf("normalizeExt() = %q, want empty", got)
	}
}
