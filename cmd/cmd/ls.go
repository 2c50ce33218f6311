package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gofatfs/fatfs"
)

func newLsCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "ls <image> [path]",
		Short:        "List a directory's contents",
		Args:         cobra.RangeArgs(1, 2),
		SilenceUsage: true,
		RunE:         runLs,
	}
}

func runLs(_ *cobra.Command, args []string) error {
	volume, f, err := openVolume(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	path := ""
	if len(args) == 2 {
		path = args[1]
	}

	dir := volume.Root()
	if path != "" {
		entry, err := volume.Find(path, volume.Root())
		if err != nil {
			return err
		}
		dir, err = volume.OpenDirectory(entry)
		if err != nil {
			return err
		}
	}

	entries, err := volume.List(dir)
	if err != nil {
		return err
	}

	for _, e := range entries {
		fmt.Println(formatEntry(e))
	}
	return nil
}

func formatEntry(e fatfs.Entry) string {
	kind := "-"
	if e.Flags.Directory {
		kind = "d"
	}
	return fmt.Sprintf("%s %10d %s %s", kind, e.Size, e.WriteTime.Format("2006-01-02 15:04:05"), e.Name)
}
