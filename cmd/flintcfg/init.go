package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new flint project",
	Long: `Initialize a new flint project by creating a project manifest (flint.toml)
and a hello-world entry point (src/main.fl). If [path|name] is omitted,
initializes the current directory. If a non-existing name is provided, a
directory will be created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	// Resolve target directory
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		arg := args[0]
		if !filepath.IsAbs(arg) {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			target = filepath.Join(wd, arg)
		} else {
			target = arg
		}
	}

	// Ensure directory exists
	if st, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		} else {
			return err
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	// Determine project name from directory basename
	name := filepath.Base(target)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "flint-project"
	}

	// Create manifest file if not exists
	manifestPath := filepath.Join(target, "flint.toml")
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}

	if err := os.WriteFile(manifestPath, []byte(buildDefaultManifest(name)), os.FileMode(0o600)); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	// Create src/main.fl if not exists
	mainPath := filepath.Join(target, "src", "main.fl")
	createdMain := false
	if _, err := os.Stat(mainPath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(mainPath), 0o755); err != nil {
			return fmt.Errorf("failed to create src directory: %w", err)
		}
		if err := os.WriteFile(mainPath, []byte(defaultMainFL()), 0o600); err != nil {
			return fmt.Errorf("failed to write src/main.fl: %w", err)
		}
		createdMain = true
	}

	rel := target
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, target); err2 == nil {
			rel = r
		}
	}
	fmt.Fprintf(os.Stdout, "created %s\n", filepath.Join(rel, "flint.toml"))
	if createdMain {
		fmt.Fprintf(os.Stdout, "created %s\n", filepath.Join(rel, "src", "main.fl"))
	}
	return nil
}

func buildDefaultManifest(name string) string {
	return fmt.Sprintf(`[package]
name = %q

[lib]
src = ["src"]
dialect = "flint-2025"
exposed = [%q]

[[bin]]
name = %q
src = ["src"]
main = "main.fl"
`, name, name, name)
}

func defaultMainFL() string {
	return `fn main() {
    print("hello, flint")
}
`
}
