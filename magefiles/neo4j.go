//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"

	"github.com/pdiddy/scholar-graph/internal/container"
	"github.com/pdiddy/scholar-graph/internal/secrets"
)

// Neo4j manages the local development graph store container.
type Neo4j mg.Namespace

// Up starts a Neo4j container on the default bolt and HTTP ports. The admin
// password is read from .secrets/neo4j-password.
func (Neo4j) Up() error {
	s, err := secrets.Load(".secrets/")
	if err != nil {
		return err
	}
	password := s[secrets.KeyNeo4jPassword]
	if len(password) < 8 {
		return fmt.Errorf("write a password of at least 8 characters to .secrets/%s", secrets.KeyNeo4jPassword)
	}

	rt, err := container.DetectRuntime()
	if err != nil {
		return err
	}
	if rt.ImageExists(container.Neo4jImage) != nil {
		fmt.Printf("pulling %s with %s\n", container.Neo4jImage, rt.Name())
		if err := rt.Pull(container.Neo4jImage); err != nil {
			return err
		}
	}
	if err := rt.Start(container.Neo4jSpec(password)); err != nil {
		return err
	}
	fmt.Printf("%s running: bolt://localhost:%d\n", container.Neo4jName, container.Neo4jBoltPort)
	return nil
}

// Down stops and removes the Neo4j container.
func (Neo4j) Down() error {
	rt, err := container.DetectRuntime()
	if err != nil {
		return err
	}
	if err := rt.Stop(container.Neo4jName); err != nil {
		return err
	}
	fmt.Printf("%s stopped\n", container.Neo4jName)
	return nil
}
