//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Compiles the shaders and runs the testbed.
func (Run) Engine() error {
	if err := buildShaders(); err != nil {
		return err
	}
	fmt.Println("Run engine...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "config/anvil.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the unit tests. The vulkan package needs a loader and a device to pass.
func (Run) Tests() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream())
	return err
}

// Regenerates the mocks and tidies the module.
func (Run) Generate() error {
	return goGenerate()
}

// Removes the compiled shaders and the build output.
func Clean() error {
	matches, err := filepath.Glob(filepath.Join(shaderDir, "*.spv"))
	if err != nil {
		return err
	}
	for _, m := range append(matches, "bin") {
		if err := os.RemoveAll(m); err != nil {
			return err
		}
	}
	return nil
}
