// The extract_tag tool writes the raw bytes of one discovered tag (header
// through end offset, as recorded by the discovery driver) to stdout or a
// file, useful for inspecting or fuzzing a single tag in isolation.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/squeek502/audiometa-sub000"
	"github.com/squeek502/audiometa-sub000/internal/streamio"
)

var kindFlag string
var outPath string
var indexFlag int

var usage = func() {
	fmt.Fprintf(os.Stderr, "usage: %s -kind=<id3v1|id3v2|ape|flac|vorbis|mp4> [-index=0] [-out=path] filename\n", os.Args[0])
	flag.PrintDefaults()
}

func init() {
	flag.StringVar(&kindFlag, "kind", "", "tag kind to extract")
	flag.IntVar(&indexFlag, "index", 0, "which tag of that kind to extract, if more than one is present")
	flag.StringVar(&outPath, "out", "", "output path (default: stdout)")
	flag.Usage = usage
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 || kindFlag == "" {
		usage()
		os.Exit(1)
	}

	kind, ok := parseKind(kindFlag)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown kind %q\n", kindFlag)
		os.Exit(1)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	all, err := audiometa.ReadAll(streamio.New(f))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading tags: %v\n", err)
		os.Exit(1)
	}

	matches := all.FilterByKind(kind)
	if indexFlag < 0 || indexFlag >= len(matches) {
		fmt.Fprintf(os.Stderr, "no tag of kind %q at index %d (found %d)\n", kindFlag, indexFlag, len(matches))
		os.Exit(1)
	}
	tag := matches[indexFlag]

	if _, err := f.Seek(int64(tag.StartOffset), io.SeekStart); err != nil {
		fmt.Fprintf(os.Stderr, "error seeking to tag start: %v\n", err)
		os.Exit(1)
	}

	out := io.Writer(os.Stdout)
	if outPath != "" {
		outFile, err := os.Create(outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error creating output file: %v\n", err)
			os.Exit(1)
		}
		defer outFile.Close()
		out = outFile
	}

	n := int64(tag.EndOffset - tag.StartOffset)
	if _, err := io.CopyN(out, f, n); err != nil {
		fmt.Fprintf(os.Stderr, "error copying tag bytes: %v\n", err)
		os.Exit(1)
	}
}

func parseKind(s string) (audiometa.Kind, bool) {
	switch strings.ToLower(s) {
	case "id3v1":
		return audiometa.KindID3v1, true
	case "id3v2":
		return audiometa.KindID3v2, true
	case "ape":
		return audiometa.KindAPE, true
	case "flac":
		return audiometa.KindFLAC, true
	case "vorbis":
		return audiometa.KindVorbis, true
	case "mp4":
		return audiometa.KindMP4, true
	default:
		return 0, false
	}
}
