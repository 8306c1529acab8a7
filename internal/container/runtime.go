// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container starts and stops a local graph store container with
// docker or podman. It backs the developer targets that provide a Neo4j
// instance for the load command.
package container

import (
	"fmt"
	"os/exec"
	"sort"
	"strings"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// Neo4j defaults for the development container.
const (
	Neo4jImage     = "neo4j:5"
	Neo4jName      = "scholar-graph-neo4j"
	Neo4jBoltPort  = 7687
	Neo4jHTTPPort  = 7474
	Neo4jAdminUser = "neo4j"
)

// Spec describes a detached container.
type Spec struct {
	Name  string
	Image string

	// Ports maps host ports to container ports.
	Ports map[int]int
	Env   map[string]string
}

// Neo4jSpec returns the development store container with the given
// admin password.
func Neo4jSpec(password string) Spec {
	return Spec{
		Name:  Neo4jName,
		Image: Neo4jImage,
		Ports: map[int]int{
			Neo4jBoltPort: Neo4jBoltPort,
			Neo4jHTTPPort: Neo4jHTTPPort,
		},
		Env: map[string]string{
			"NEO4J_AUTH": Neo4jAdminUser + "/" + password,
		},
	}
}

// Runtime provides container operations.
type Runtime interface {
	// Name returns the runtime name ("docker" or "podman").
	Name() string

	// Available reports whether the runtime binary exists on PATH and
	// responds to an info command.
	Available() bool

	// ImageExists returns nil when the named image exists locally.
	ImageExists(image string) error

	// Pull fetches an image.
	Pull(image string) error

	// Start runs spec detached. A stopped container with the same name is
	// removed first.
	Start(spec Spec) error

	// Stop stops and removes the named container.
	Stop(name string) error

	// Running reports whether the named container is running.
	Running(name string) bool
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	Output(name string, args ...string) (string, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (o *osExecutor) Output(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	return strings.TrimSpace(string(out)), err
}

// runtime implements Runtime for a specific container binary. Docker and
// Podman differ only in binary name and the image check subcommand.
type runtime struct {
	bin           string
	imageCheckCmd []string // e.g. ["image", "inspect"] for docker
	exec          executor
}

func (r *runtime) Name() string { return r.bin }

func (r *runtime) Available() bool {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return false
	}
	return r.exec.RunSilent(r.bin, "info") == nil
}

func (r *runtime) ImageExists(image string) error {
	args := make([]string, 0, len(r.imageCheckCmd)+1)
	args = append(args, r.imageCheckCmd...)
	args = append(args, image)

	if err := r.exec.RunSilent(r.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, r.bin, err)
	}
	return nil
}

func (r *runtime) Pull(image string) error {
	if err := r.exec.RunSilent(r.bin, "pull", image); err != nil {
		return fmt.Errorf("pulling %s with %s: %w", image, r.bin, err)
	}
	return nil
}

func (r *runtime) Start(spec Spec) error {
	if spec.Name == "" || spec.Image == "" {
		return fmt.Errorf("container spec needs a name and an image")
	}
	if r.Running(spec.Name) {
		return nil
	}
	// Leftover stopped container; a missing one is not an error.
	_ = r.exec.RunSilent(r.bin, "rm", "-f", spec.Name)

	if err := r.exec.RunSilent(r.bin, runArgs(spec)...); err != nil {
		return fmt.Errorf("starting %s container %s: %w", r.bin, spec.Name, err)
	}
	return nil
}

func (r *runtime) Stop(name string) error {
	if err := r.exec.RunSilent(r.bin, "rm", "-f", name); err != nil {
		return fmt.Errorf("stopping %s container %s: %w", r.bin, name, err)
	}
	return nil
}

func (r *runtime) Running(name string) bool {
	out, err := r.exec.Output(r.bin, "inspect", "-f", "{{.State.Running}}", name)
	return err == nil && out == "true"
}

// runArgs builds a detached run command with ports and environment in
// sorted order.
func runArgs(spec Spec) []string {
	args := []string{"run", "-d", "--name", spec.Name}

	hostPorts := make([]int, 0, len(spec.Ports))
	for p := range spec.Ports {
		hostPorts = append(hostPorts, p)
	}
	sort.Ints(hostPorts)
	for _, p := range hostPorts {
		args = append(args, "-p", fmt.Sprintf("%d:%d", p, spec.Ports[p]))
	}

	keys := make([]string, 0, len(spec.Env))
	for k := range spec.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-e", k+"="+spec.Env[k])
	}

	return append(args, spec.Image)
}

func newDockerRuntime(exec executor) *runtime {
	return &runtime{
		bin:           binDocker,
		imageCheckCmd: []string{"image", "inspect"},
		exec:          exec,
	}
}

func newPodmanRuntime(exec executor) *runtime {
	return &runtime{
		bin:           binPodman,
		imageCheckCmd: []string{"image", "exists"},
		exec:          exec,
	}
}

var defaultExec = &osExecutor{}

// DetectRuntime tries docker first, falls back to podman. Returns an error
// if neither runtime is available.
func DetectRuntime() (Runtime, error) {
	return detectRuntime(defaultExec)
}

func detectRuntime(exec executor) (Runtime, error) {
	docker := newDockerRuntime(exec)
	if docker.Available() {
		return docker, nil
	}

	podman := newPodmanRuntime(exec)
	if podman.Available() {
		return podman, nil
	}

	return nil, fmt.Errorf(
		"no container runtime available: neither %s nor %s found or operational",
		binDocker, binPodman,
	)
}
