package internal

import (
	"testing"

	"github.com/kcmvp/archunit"
)

func TestArchitecture(t *testing.T) {
	core := archunit.Packages("core", []string{
		".../internal/home",
		".../internal/command",
		".../internal/resolver",
		".../internal/executor",
	})
	outer := archunit.Packages("outer", []string{
		".../internal/api",
		".../internal/app",
		".../internal/bridges/...",
		".../internal/groups",
		".../internal/infrastructure/...",
	})

	if err := core.ShouldNotReferLayers(outer); err != nil {
		t.Errorf("core packages depend on outer layers: %v", err)
	}
}

func TestBridgesIndependent(t *testing.T) {
	bridges := archunit.Packages("bridges", []string{".../internal/bridges/..."})
	server := archunit.Packages("server", []string{".../internal/api", ".../internal/app"})

	if len(bridges.Packages()) == 0 {
		t.Fatal("no bridge packages found")
	}
	if err := bridges.ShouldNotReferLayers(server); err != nil {
		t.Errorf("bridges depend on the server layer: %v", err)
	}
}
