// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool   // binary -> whether LookPath succeeds
	runnableCmds  map[string]bool   // "bin arg1 arg2" -> whether RunSilent succeeds
	outputs       map[string]string // "bin arg1 arg2" -> Output result
	calls         []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	m.calls = append(m.calls, key)
	if m.runnableCmds[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (m *mockExecutor) Output(name string, args ...string) (string, error) {
	key := name + " " + strings.Join(args, " ")
	m.calls = append(m.calls, key)
	out, ok := m.outputs[key]
	if !ok {
		return "", errors.New("no such container")
	}
	return out, nil
}

func TestDetectRuntime(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		wantName string
		wantErr  bool
	}{
		{
			name: "docker available",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true},
				runnableCmds:  map[string]bool{"docker info": true},
			},
			wantName: "docker",
		},
		{
			name: "podman fallback when docker missing",
			exec: &mockExecutor{
				availableBins: map[string]bool{"podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name:    "neither available",
			exec:    &mockExecutor{},
			wantErr: true,
		},
		{
			name: "docker on PATH but info fails, podman works",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := detectRuntime(tt.exec)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "no container runtime available")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, rt.Name())
		})
	}
}

func TestImageExists(t *testing.T) {
	tests := []struct {
		name    string
		mkRT    func(*mockExecutor) Runtime
		cmds    map[string]bool
		wantErr bool
	}{
		{
			name: "docker image exists",
			mkRT: func(e *mockExecutor) Runtime { return newDockerRuntime(e) },
			cmds: map[string]bool{"docker image inspect neo4j:5": true},
		},
		{
			name:    "docker image not found",
			mkRT:    func(e *mockExecutor) Runtime { return newDockerRuntime(e) },
			wantErr: true,
		},
		{
			name: "podman image exists",
			mkRT: func(e *mockExecutor) Runtime { return newPodmanRuntime(e) },
			cmds: map[string]bool{"podman image exists neo4j:5": true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := tt.mkRT(&mockExecutor{runnableCmds: tt.cmds})
			err := rt.ImageExists(Neo4jImage)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), Neo4jImage)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestStart(t *testing.T) {
	spec := Neo4jSpec("secret")
	run := "docker run -d --name scholar-graph-neo4j -p 7474:7474 -p 7687:7687 -e NEO4J_AUTH=neo4j/secret neo4j:5"

	t.Run("starts detached with sorted ports and env", func(t *testing.T) {
		exec := &mockExecutor{runnableCmds: map[string]bool{run: true}}
		require.NoError(t, newDockerRuntime(exec).Start(spec))
		assert.Equal(t, []string{
			"docker inspect -f {{.State.Running}} scholar-graph-neo4j",
			"docker rm -f scholar-graph-neo4j",
			run,
		}, exec.calls)
	})

	t.Run("already running is a no-op", func(t *testing.T) {
		exec := &mockExecutor{outputs: map[string]string{
			"docker inspect -f {{.State.Running}} scholar-graph-neo4j": "true",
		}}
		require.NoError(t, newDockerRuntime(exec).Start(spec))
		assert.Len(t, exec.calls, 1)
	})

	t.Run("run failure", func(t *testing.T) {
		err := newPodmanRuntime(&mockExecutor{}).Start(spec)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "starting podman container scholar-graph-neo4j")
	})

	t.Run("incomplete spec", func(t *testing.T) {
		assert.Error(t, newDockerRuntime(&mockExecutor{}).Start(Spec{Name: "x"}))
	})
}

func TestStopAndRunning(t *testing.T) {
	exec := &mockExecutor{
		runnableCmds: map[string]bool{"podman rm -f db": true},
		outputs:      map[string]string{"podman inspect -f {{.State.Running}} db": "false"},
	}
	rt := newPodmanRuntime(exec)

	assert.False(t, rt.Running("db"))
	assert.False(t, rt.Running("other"))
	require.NoError(t, rt.Stop("db"))
	assert.Error(t, rt.Stop("other"))
}

func TestPull(t *testing.T) {
	exec := &mockExecutor{runnableCmds: map[string]bool{"docker pull neo4j:5": true}}
	require.NoError(t, newDockerRuntime(exec).Pull(Neo4jImage))
	assert.Error(t, newDockerRuntime(&mockExecutor{}).Pull(Neo4jImage))
}
