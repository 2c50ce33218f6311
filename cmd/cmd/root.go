package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gofatfs/fatfs"
)

const appName = "fatfs"

// Execute runs the fatfs CLI: ls/cat/cp against a FAT16/32 image,
// plus an interactive shell reproducing the original REPL's
// h|help, ls, cd, cat, cp, q commands.
func Execute() error {
	root := &cobra.Command{
		Use:   appName,
		Short: appName + " - read-only FAT16/32 image inspector",
	}

	root.AddCommand(
		newLsCommand(),
		newCatCommand(),
		newCpCommand(),
		newShellCommand(),
	)

	return root.Execute()
}

// openVolume opens the image at path and decodes it as a FAT volume.
// The caller is responsible for closing the returned file.
func openVolume(path string) (*fatfs.FileSystem, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	volume, err := fatfs.Load(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	return volume, f, nil
}
