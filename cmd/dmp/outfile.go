package main

import (
	"path/filepath"
	"strings"
)

// stdinName is the stand-in input name for pipe operations, so to-file
// output derivation has something to work from.
const stdinName = "pipe"

// deriveOutName maps an input path to the file its dump is written to.
// The input's extension is replaced with ext, or kept and ext appended when
// keepExt is set. The output lands in the current directory unless inDir
// places it beside its input. A derived name equal to the input gets ext
// appended once more, so a dump never overwrites its own input.
func deriveOutName(in string, keepExt bool, ext string, inDir bool) string {
	ext = strings.TrimPrefix(ext, ".")

	name := filepath.Base(in)
	if !keepExt {
		if e := filepath.Ext(name); e != "" {
			name = strings.TrimSuffix(name, e)
		}
	}

	out := name + "." + ext
	if inDir {
		out = filepath.Join(filepath.Dir(in), out)
	}
	if out == filepath.Clean(in) {
		out += "." + ext
	}
	return out
}
