//go:build mage

package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Convert runs a batch over every file in input/ and writes PDF/A-2b files to
// output/ with a YAML report in reports/.
func Convert() error {
	mg.Deps(Build, Init)

	entries, err := filepath.Glob(filepath.Join("input", "*"))
	if err != nil {
		return err
	}
	sort.Strings(entries)
	if len(entries) == 0 {
		fmt.Println("[convert] input/ is empty.")
		return nil
	}

	args := []string{"convert", "--out", "output", "--report", filepath.Join("reports", "last.yaml")}
	return sh.RunV(filepath.Join(binDir, binName), append(args, entries...)...)
}
