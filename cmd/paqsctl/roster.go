package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/goliatone/go-paqs-store/pkg/directory"
	"github.com/goliatone/go-paqs-store/pkg/permission"
)

// demoNamespace scopes the name-based ids of the demo roster.
var demoNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://paqs.dev/demo-roster"))

// demoID returns a stable id for a demo persona.
func demoID(name string) string {
	return uuid.NewSHA1(demoNamespace, []byte(name)).String()
}

func demoRoster() []directory.Persona {
	return []directory.Persona{
		{ID: demoID("viewer"), Name: "Vera Viewer", Role: permission.RoleViewer, Permissions: []string{permission.View}},
		{ID: demoID("editor"), Name: "Eli Editor", Role: permission.RoleEditor, Permissions: []string{permission.View, permission.Update}},
		{ID: demoID("creator"), Name: "Cam Creator", Role: permission.RoleCreator, Permissions: []string{permission.View, permission.Update, permission.Create}},
		{ID: demoID("admin"), Name: "Ada Admin", Role: permission.RoleAdmin, Permissions: []string{permission.View, permission.Update, permission.Create, permission.Assign}, IsAdmin: true},
	}
}

func loadRoster(path string) ([]directory.Persona, error) {
	if path == "" {
		return demoRoster(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	var roster []directory.Persona
	if err := json.Unmarshal(raw, &roster); err != nil {
		return nil, fmt.Errorf("decode roster %s: %w", path, err)
	}
	return roster, nil
}
