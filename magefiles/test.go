//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const coverFile = "coverage.out"

// Test groups test targets.
type Test mg.Namespace

// All runs every package's tests.
func (Test) All() error {
	return sh.RunV(binGo, "test", "./...")
}

// Race runs every package's tests with the race detector.
func (Test) Race() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Store runs the repository and store backend tests verbosely.
func (Test) Store() error {
	pkgs, err := sh.Output(binGo, "list", "./...")
	if err != nil {
		return err
	}
	var storePkgs []string
	for pkg := range strings.SplitSeq(pkgs, "\n") {
		if strings.HasSuffix(pkg, "/pkg/repo") || strings.HasSuffix(pkg, "/internal/filestore") ||
			strings.HasSuffix(pkg, "/internal/sqlite") {
			storePkgs = append(storePkgs, pkg)
		}
	}
	if len(storePkgs) == 0 {
		fmt.Println("No store packages found.")
		return nil
	}
	args := append([]string{"test", "-v"}, storePkgs...)
	return sh.RunV(binGo, args...)
}

// Cover writes a coverage profile and prints the per-function summary.
func (Test) Cover() error {
	if err := sh.RunV(binGo, "test", "-coverprofile="+coverFile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func="+coverFile)
}
