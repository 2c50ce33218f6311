package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gofatfs/fatfs"
)

const shellHelp = `h          - help
ls         - list current directory
cd <dir>   - cd to <dir>
cat <file> - dumps <file> from image to console
cp <file> <external> - copies <file> from image to an external file
q          - quit`

func newShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "shell <image>",
		Short:        "Open an interactive shell over the image",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runShell,
	}
}

func runShell(cmd *cobra.Command, args []string) error {
	volume, f, err := openVolume(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	out := cmd.OutOrStdout()
	shell := &interactiveShell{
		volume: volume,
		cwd:    volume.Root(),
		path:   "/",
		out:    out,
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	fmt.Fprint(out, "cmd (h for help)> ")
	for scanner.Scan() {
		line := strings.TrimSpace(strings.ToLower(scanner.Text()))
		fields := strings.Fields(line)
		if len(fields) == 0 {
			fmt.Fprint(out, "cmd (h for help)> ")
			continue
		}

		if fields[0] == "q" {
			return nil
		}

		if err := shell.dispatch(fields[0], fields[1:]); err != nil {
			fmt.Fprintln(out, err)
		}
		fmt.Fprint(out, "cmd (h for help)> ")
	}
	return scanner.Err()
}

type interactiveShell struct {
	volume *fatfs.FileSystem
	cwd    *fatfs.DirectoryReader
	path   string
	out    io.Writer
}

func (s *interactiveShell) dispatch(verb string, rest []string) error {
	switch verb {
	case "h", "help":
		fmt.Fprintln(s.out, shellHelp)
		return nil
	case "ls":
		return s.ls()
	case "cd":
		if len(rest) != 1 {
			return fmt.Errorf("usage: cd <dir>")
		}
		return s.cd(rest[0])
	case "cat":
		if len(rest) != 1 {
			return fmt.Errorf("usage: cat <filename>")
		}
		return s.cat(rest[0])
	case "cp":
		if len(rest) != 2 {
			return fmt.Errorf("usage: cp <filename> <external>")
		}
		return s.cp(rest[0], rest[1])
	default:
		return fmt.Errorf("unknown command %q, try h for help", verb)
	}
}

func (s *interactiveShell) ls() error {
	entries, err := s.volume.List(s.cwd)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintln(s.out, formatEntry(e))
	}
	return nil
}

func (s *interactiveShell) cd(name string) error {
	entry, err := s.volume.Find(name, s.cwd)
	if err != nil {
		return err
	}

	dir, err := s.volume.OpenDirectory(entry)
	if err != nil {
		return err
	}

	s.cwd = dir
	return nil
}

func (s *interactiveShell) cat(name string) error {
	entry, err := s.volume.Find(name, s.cwd)
	if err != nil {
		return err
	}
	_, err = s.volume.CopyOut(entry, s.out)
	return err
}

func (s *interactiveShell) cp(name, dest string) error {
	entry, err := s.volume.Find(name, s.cwd)
	if err != nil {
		return err
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	written, err := s.volume.CopyOut(entry, out)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "copied %d bytes to %s\n", written, dest)
	return nil
}
