// The audiometa tool reads every tag in an audio file and prints the
// Collator's best-effort view of its metadata.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/squeek502/audiometa-sub000"
	"github.com/squeek502/audiometa-sub000/collate"
	"github.com/squeek502/audiometa-sub000/internal/streamio"
)

var raw bool
var mb bool

var usage = func() {
	fmt.Fprintf(os.Stderr, "usage: %s [flags] filename\n", os.Args[0])
	flag.PrintDefaults()
}

func init() {
	flag.BoolVar(&raw, "raw", false, "show every tag's raw key/value pairs")
	flag.BoolVar(&mb, "mb", false, "display MusicBrainz info, if any")
	flag.Usage = usage
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
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
	if len(all.Tags) == 0 {
		color.Yellow("no tags found")
		return
	}

	c := collate.New(all, collate.DefaultConfig())
	printField("Title", c.Title)
	printField("Artist", c.Artist)
	printField("Album Artist", c.AlbumArtist)
	printField("Album", c.Album)
	printField("Genre", c.Genre)
	printField("Date", c.Date)
	printField("Composer", c.Composer)

	if n, total, ok := c.TrackNumber(); ok {
		color.Cyan("Track:\t%d/%d", n, total)
	}
	if n, total, ok := c.DiscNumber(); ok {
		color.Cyan("Disc:\t%d/%d", n, total)
	}

	if mb {
		info := c.MusicBrainz()
		fmt.Println()
		color.Green("MusicBrainz:")
		fmt.Printf("  Artist:        %s\n", info.Artist)
		fmt.Printf("  Album:         %s\n", info.Album)
		fmt.Printf("  Album Artist:  %s\n", info.AlbumArtist)
		fmt.Printf("  Release Group: %s\n", info.ReleaseGroup)
		fmt.Printf("  AcoustID:      %s\n", info.AcoustID)
	}

	if raw {
		fmt.Println()
		color.Green("Raw tags (%d found):", len(all.Tags))
		for _, t := range all.Tags {
			fmt.Printf("\n[%s] offsets %d-%d\n", t.Kind, t.StartOffset, t.EndOffset)
			for _, key := range t.Map.Keys() {
				for _, v := range t.Map.GetAll(key) {
					fmt.Printf("  %s: %s\n", key, v)
				}
			}
		}
	}
}

func printField(label string, get func() (string, bool)) {
	if v, ok := get(); ok {
		color.Cyan("%s:\t%s", label, v)
	}
}
