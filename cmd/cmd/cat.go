package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

func newCatCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "cat <image> <path>",
		Short:        "Print a file's contents to stdout",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         runCat,
	}
}

func runCat(_ *cobra.Command, args []string) error {
	volume, f, err := openVolume(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	entry, err := volume.Find(args[1], volume.Root())
	if err != nil {
		return err
	}

	_, err = volume.CopyOut(entry, os.Stdout)
	return err
}
