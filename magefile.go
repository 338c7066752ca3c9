//go:build mage
// +build mage

package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path"
)

const (
	SERVER_BINARY_NAME = "signaling-server"
	SERVER_IMAGE_LABEL = "collab-sphere-signaling"
	BINARY_OUT_DIR     = "bin"
)

func fmtPanic(format string, val ...any) {
	panic(fmt.Sprintf(format, val...))
}

func execStreamed(name string, args ...string) error {
	cmd := exec.Command(name, args...)

	stderr, _ := cmd.StderrPipe()
	go io.Copy(os.Stdout, stderr)
	stdout, _ := cmd.StdoutPipe()
	go io.Copy(os.Stdout, stdout)

	fmt.Printf("[Mage] Exec:\n %s \n", cmd.String())
	return cmd.Run()
}

// Build compiles the signaling server into bin/.
func Build() {
	dirPath, err := os.Getwd()
	if err != nil {
		fmtPanic("Unable get pwd of project root. Err: %s", err)
	}

	out := path.Join(dirPath, BINARY_OUT_DIR, SERVER_BINARY_NAME)
	if err := execStreamed("go", "build", "-o", out, "./cmd/signaling-server"); err != nil {
		fmtPanic("Unable build %s. Err: %s", SERVER_BINARY_NAME, err)
	}
}

// Test runs the full test suite.
func Test() {
	if err := execStreamed("go", "test", "./..."); err != nil {
		fmtPanic("Tests failed. Err: %s", err)
	}
}

// Docker builds the server image.
func Docker() {
	err := execStreamed("docker", "build",
		"--label", SERVER_IMAGE_LABEL,
		"--tag", fmt.Sprintf("%s:latest", SERVER_IMAGE_LABEL),
		".",
	)
	if err != nil {
		fmtPanic("Unable build %s image. Err: %s", SERVER_IMAGE_LABEL, err)
	}
}
