package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCpCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "cp <image> <path> <destination>",
		Short:        "Copy a file out of the image onto the local filesystem",
		Args:         cobra.ExactArgs(3),
		SilenceUsage: true,
		RunE:         runCp,
	}
}

func runCp(_ *cobra.Command, args []string) error {
	volume, f, err := openVolume(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	entry, err := volume.Find(args[1], volume.Root())
	if err != nil {
		return err
	}

	out, err := os.Create(args[2])
	if err != nil {
		return err
	}
	defer out.Close()

	written, err := volume.CopyOut(entry, out)
	if err != nil {
		return err
	}

	fmt.Printf("copied %d bytes to %s\n", written, args[2])
	return nil
}
