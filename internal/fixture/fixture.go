// Package fixture holds sample query profiles shared by package tests.
package fixture

import (
	"embed"
	"testing"

	"github.com/jacobarthurs/profileviz/internal/profile"
)

//go:embed profiles/*.json
var profiles embed.FS

// Raw returns the bytes of the named sample profile.
func Raw(t testing.TB, name string) []byte {
	t.Helper()
	data, err := profiles.ReadFile("profiles/" + name)
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}

// Load parses the named sample profile.
func Load(t testing.TB, name string) *profile.Document {
	t.Helper()
	doc, err := profile.Parse(Raw(t, name))
	if err != nil {
		t.Fatalf("parse fixture %s: %v", name, err)
	}
	return doc
}
