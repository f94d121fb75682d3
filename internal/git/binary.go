package git

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// binarySampleSize is how many leading bytes are inspected when
// classifying content.
const binarySampleSize = 8192

// maxNulBytes is the number of NUL bytes tolerated in a sample before
// the content is treated as binary.
const maxNulBytes = 10

var binaryExtensions = map[string]struct{}{
	// images
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".bmp": {},
	".ico": {}, ".webp": {}, ".tiff": {}, ".heic": {},
	// archives
	".zip": {}, ".rar": {}, ".7z": {}, ".tar": {}, ".gz": {},
	".bz2": {}, ".xz": {}, ".zst": {},
	// executables and objects
	".exe": {}, ".dll": {}, ".so": {}, ".dylib": {}, ".bin": {},
	".o": {}, ".a": {}, ".class": {}, ".pyc": {}, ".wasm": {},
	// fonts
	".ttf": {}, ".otf": {}, ".woff": {}, ".woff2": {}, ".eot": {},
	// media
	".mp3": {}, ".mp4": {}, ".avi": {}, ".mov": {}, ".mkv": {},
	".wav": {}, ".flac": {}, ".ogg": {}, ".webm": {},
	// documents
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {},
	".ppt": {}, ".pptx": {},
	// databases
	".db": {}, ".sqlite": {}, ".sqlite3": {},
}

var magicSignatures = [][]byte{
	{0x89, 'P', 'N', 'G'},       // PNG
	[]byte("%PDF"),              // PDF
	{'P', 'K', 0x03, 0x04},      // ZIP
	[]byte("Rar!"),              // RAR
	{0x7F, 'E', 'L', 'F'},       // ELF
	{0xFE, 0xED, 0xFA, 0xCE},    // Mach-O 32-bit
	{0xFE, 0xED, 0xFA, 0xCF},    // Mach-O 64-bit
	{0xCF, 0xFA, 0xED, 0xFE},    // Mach-O 64-bit LE
	{0xCA, 0xFE, 0xBA, 0xBE},    // Mach-O fat / Java class
	{'M', 'Z'},                  // PE
}

// isBinaryPath reports whether the file extension marks the path as binary
// without looking at content.
func isBinaryPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := binaryExtensions[ext]
	return ok
}

// isBinaryContent samples the leading bytes and reports whether they look
// like binary data rather than text.
func isBinaryContent(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	sample := data
	if len(sample) > binarySampleSize {
		sample = sample[:binarySampleSize]
		// The cut may split a multibyte rune. Drop trailing
		// continuation bytes so valid UTF-8 stays valid.
		for i := 0; i < utf8.UTFMax-1 && len(sample) > 0; i++ {
			if r, _ := utf8.DecodeLastRune(sample); r != utf8.RuneError {
				break
			}
			sample = sample[:len(sample)-1]
		}
	}
	for _, sig := range magicSignatures {
		if bytes.HasPrefix(sample, sig) {
			return true
		}
	}
	if bytes.Count(sample, []byte{0}) > maxNulBytes {
		return true
	}
	return !utf8.Valid(sample)
}
