//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Compiles the shaders and runs citadel with the default configuration.
func (Run) Citadel() error {
	mg.Deps(Build.Shaders)
	fmt.Println("Run citadel...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "assets/citadel.toml"), withStream()); err != nil {
		return err
	}
	return nil
}
