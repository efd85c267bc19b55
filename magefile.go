//go:build mage

package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Build builds Salesboard for Linux with Green Tea GC
func Build() error {
	fmt.Println("Building Salesboard for Linux with Go 1.25 + Green Tea GC...")
	env := map[string]string{
		"GOOS":         "linux",
		"GOARCH":       "amd64",
		"GOEXPERIMENT": "greenteagc",
	}
	return sh.RunWith(env, "go", "build", "-o", "salesboard-linux-amd64", "./cmd/salesboard")
}

// BuildDocker builds the container flavour of the binary
func BuildDocker() error {
	fmt.Println("Building Salesboard with the docker build tag...")
	env := map[string]string{"CGO_ENABLED": "0"}
	return sh.RunWith(env, "go", "build", "-tags", "docker", "-o", "salesboard-docker", "./cmd/salesboard")
}

// BuildLocal builds Salesboard for current platform
func BuildLocal() error {
	fmt.Printf("Building Salesboard for %s/%s...\n", runtime.GOOS, runtime.GOARCH)
	return sh.Run("go", "build", "-o", "salesboard", "./cmd/salesboard")
}

// Test runs tests
func Test() error {
	fmt.Println("Running tests...")
	return sh.Run("go", "test", "-v", "./...")
}

// Integration runs the Postgres-backed tests; INTEGRATION_DATABASE_URL must be set
func Integration() error {
	if os.Getenv("INTEGRATION_DATABASE_URL") == "" {
		return fmt.Errorf("INTEGRATION_DATABASE_URL is not set")
	}
	fmt.Println("Running integration tests...")
	return sh.Run("go", "test", "-v", "-count=1", "./internal/database/...")
}

// Clean removes build artifacts
func Clean() error {
	fmt.Println("Cleaning build artifacts...")
	for _, path := range []string{"salesboard", "salesboard-linux-amd64", "salesboard-docker"} {
		_ = os.Remove(path)
	}
	return nil
}

// Update upgrades all Go dependencies
func Update() error {
	fmt.Println("Updating dependencies...")
	if err := sh.Run("go", "get", "-u", "./..."); err != nil {
		return err
	}
	return sh.Run("go", "mod", "tidy")
}

// Fmt runs gofmt on all Go files
func Fmt() error {
	fmt.Println("Formatting code...")
	return sh.Run("go", "fmt", "./...")
}

// Vet runs go vet on all Go files
func Vet() error {
	fmt.Println("Vetting code...")
	return sh.Run("go", "vet", "./...")
}

// Bench runs benchmarks
func Bench() error {
	fmt.Println("Running benchmarks...")
	return sh.Run("go", "test", "-bench=.", "./...")
}

// Deps downloads dependencies
func Deps() error {
	fmt.Println("Downloading dependencies...")
	return sh.Run("go", "mod", "download")
}

// Tidy tidies go.mod
func Tidy() error {
	fmt.Println("Tidying go.mod...")
	return sh.Run("go", "mod", "tidy")
}

// CI runs all checks for continuous integration
func CI() error {
	mg.SerialDeps(Deps, Fmt, Vet, Test)
	fmt.Println("All CI checks passed!")
	return nil
}
