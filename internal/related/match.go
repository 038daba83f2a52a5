package related

import "strings"

// backupMarker is the trailing suffix used by editor backup files (Test.m~).
const backupMarker = "~"

// stripBackup removes a trailing backup marker from a name or path.
// Backup files compare as if the marker were absent but are reported with
// their literal on-disk name.
func stripBackup(name string) string {
	return strings.TrimRight(name, backupMarker)
}

// splitExt splits a file name into stem and extension. The extension is the
// substring from the last dot onward, case-sensitive; a name without a dot
// has an empty extension.
func splitExt(name string) (stem, ext string) {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i], name[i:]
	}
	return name, ""
}

// matchKey reduces a stem to the base name shared by a related-file family.
// A trailing Internal (header/implementation split) or -inl (inline header)
// marker is removed. The markers are suffix-anchored: InternalTest does not
// reduce to Test.
func matchKey(stem string) string {
	if s, ok := strings.CutSuffix(stem, "Internal"); ok {
		return s
	}
	if s, ok := strings.CutSuffix(stem, "-inl"); ok {
		return s
	}
	return stem
}

// normalizeExt ensures an extension string carries its leading dot.
func normalizeExt(ext string) string {
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}
