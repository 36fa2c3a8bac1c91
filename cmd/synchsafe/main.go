// The synchsafe tool encodes or decodes ID3v2 synchsafe integers from the
// command line, useful when hand-constructing or inspecting ID3v2 tag
// headers and frame sizes.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/squeek502/audiometa-sub000/internal/synchsafe"
)

var decode bool
var width int

var usage = func() {
	fmt.Fprintf(os.Stderr, "usage: %s [-decode] [-width=4] value\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  encode: value is a decimal integer, printed as hex-encoded synchsafe bytes\n")
	fmt.Fprintf(os.Stderr, "  decode: value is hex-encoded synchsafe bytes, printed as a decimal integer\n")
	flag.PrintDefaults()
}

func init() {
	flag.BoolVar(&decode, "decode", false, "decode synchsafe bytes to an integer instead of encoding")
	flag.IntVar(&width, "width", 4, "width in bytes of the synchsafe encoding")
	flag.Usage = usage
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}

	if decode {
		raw, err := hex.DecodeString(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid hex input: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(synchsafe.Decode[uint64](raw))
		return
	}

	value, err := strconv.ParseUint(flag.Arg(0), 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid integer input: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hex.EncodeToString(synchsafe.Encode[uint64](value, width)))
}
