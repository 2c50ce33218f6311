// Command fatmount exposes a FAT16/32 image as a read-only FUSE
// mount. Only supported on Linux; see mount_other.go for the stub used
// on every other platform.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gofatfs/fatfs"
)

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: fatmount <image> <mountpoint>")
		os.Exit(1)
	}

	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer f.Close()

	volume, err := fatfs.Load(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := mount(volume, args[1]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
