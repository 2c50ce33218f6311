//go:build !linux

package main

import (
	"fmt"

	"github.com/gofatfs/fatfs"
)

func mount(_ *fatfs.FileSystem, _ string) error {
	return fmt.Errorf("fatmount: FUSE mount is only supported on Linux")
}
