//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

var shaderSources = []string{"castle.vert", "castle.frag"}

const (
	shaderDir = "assets/shaders"
	binary    = "bin/citadel"
)

// Compiles the GLSL sources in assets/shaders to SPIR-V with glslc.
func (Build) Shaders() error {
	for _, src := range shaderSources {
		if _, err := executeCmd("glslc", withArgs(src, "-o", src+".spv"), withDir(shaderDir), withStream()); err != nil {
			return err
		}
	}
	return nil
}

// Builds the citadel binary into bin/.
func (Build) Binary() error {
	if _, err := executeCmd("go", withArgs("build", "-o", filepath.FromSlash(binary), "."), withStream()); err != nil {
		return err
	}
	return nil
}
