package project

import (
	"fmt"
	"os"
	"path/filepath"
)

// Scaffold writes a fresh manifest and hello-world entry module into dir.
// It returns the created file names relative to dir and refuses to touch a
// directory that already carries a manifest.
func Scaffold(dir, name string) ([]string, error) {
	manifestPath := filepath.Join(dir, ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return nil, fmt.Errorf("project already initialized: %s exists", manifestPath)
	}

	if err := os.WriteFile(manifestPath, []byte(defaultManifest(name)), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}
	created := []string{ManifestName}

	mainPath := filepath.Join(dir, "main.ts")
	if _, err := os.Stat(mainPath); os.IsNotExist(err) {
		if err := os.WriteFile(mainPath, []byte(defaultMain()), 0o600); err != nil {
			return created, fmt.Errorf("failed to write main.ts: %w", err)
		}
		created = append(created, "main.ts")
	}
	return created, nil
}

func defaultManifest(name string) string {
	return fmt.Sprintf(`# strait project manifest
[package]
name = "%s"

[build]
entry = "main.ts"
runtime = "native"
`, name)
}

func defaultMain() string {
	return `export function greet(name: string): string {
    return "Hello, " + name;
}

export function main(): void {
    const message = greet("strait");
}
`
}
