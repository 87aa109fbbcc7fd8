package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/archcheck/internal/config"
)

const (
	sentinelStart = "<!-- archcheck:start -->"
	sentinelEnd   = "<!-- archcheck:end -->"
)

// starterConfig is a layered bounded context the user can edit in place.
const starterConfig = `# archcheck architecture file. Run "archcheck schema" for the full schema.
languages: [typescript, tsx, javascript]
exclude:
  - "**/*.test.ts"

kinds:
  BoundedContext:
    scope: folder
    members:
      - name: domain
        pure: true
      - name: application
      - name: infrastructure
    constraints:
      noDependency:
        - [domain, infrastructure]
        - [domain, application]
      noCycles: [domain, application, infrastructure]
      filesystem:
        exists: [domain]

instances:
  - name: %s
    kind: BoundedContext
    path: %s
`

type initOptions struct {
	force  bool
	dryRun bool
	name   string
	path   string
	docs   string
}

func newInitCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := initOptions{}
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter archcheck.yaml",
		Long: `Write a starter archcheck.yaml declaring one layered bounded context.

With --docs, also write an archcheck usage section to a markdown file such as
CLAUDE.md or CONTRIBUTING.md. The section is wrapped in sentinel comments so
it can be updated in place on later runs without touching surrounding content.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(dir, opts, stdout, stderr)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.force, "force", false, "overwrite an existing architecture file")
	f.BoolVar(&opts.dryRun, "dry-run", false, "print what would be written without modifying any file")
	f.StringVar(&opts.name, "name", "app", "name of the starter instance")
	f.StringVar(&opts.path, "path", "src", "location of the starter instance, relative to dir")
	f.StringVar(&opts.docs, "docs", "", "markdown file to receive an archcheck usage section")
	return cmd
}

func runInit(dir string, opts initOptions, stdout, stderr io.Writer) error {
	content := fmt.Sprintf(starterConfig, opts.name, opts.path)
	if _, err := config.Parse([]byte(content), "yaml"); err != nil {
		return fmt.Errorf("starter config: %w", err)
	}

	if err := writeConfig(dir, content, opts.force, opts.dryRun, stdout, stderr); err != nil {
		return err
	}

	if opts.docs == "" {
		return nil
	}
	return writeDocs(opts.docs, opts.dryRun, stdout, stderr)
}

// writeConfig writes content as the architecture file in dir, or prints it
// to stdout on a dry run. An existing file is kept unless force is set.
func writeConfig(dir, content string, force, dryRun bool, stdout, stderr io.Writer) error {
	if dryRun {
		_, _ = fmt.Fprint(stdout, content)
		return nil
	}
	if existing := existingConfig(dir); existing != "" && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", existing)
	}
	target := filepath.Join(dir, config.FileNames[0])
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	_, _ = fmt.Fprintf(stderr, "wrote %s\n", target)
	return nil
}

// existingConfig returns the architecture file directly in dir, if any.
// Files in parent directories do not count.
func existingConfig(dir string) string {
	for _, name := range config.FileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func writeDocs(path string, dryRun bool, stdout, stderr io.Writer) error {
	existing, _ := os.ReadFile(path)
	updated := applySection(string(existing), generateSection())

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	_, _ = fmt.Fprintf(stderr, "wrote archcheck section to %s\n", path)
	return nil
}

// generateSection returns the full sentinel-wrapped archcheck documentation block.
func generateSection() string {
	body := `## archcheck: Architecture Contracts

The intended architecture of this project is declared in ` + "`archcheck.yaml`" + `.
Run ` + "`archcheck`" + ` after changing imports or moving files, and before
committing.

**Run it:**
` + "```" + `bash
archcheck                       # check from the current directory
archcheck ./web                 # explicit project directory
archcheck -f json               # machine-readable diagnostics
archcheck -j 8                  # evaluate contracts concurrently
archcheck --watch               # re-check on every change
archcheck codes                 # list diagnostic codes
archcheck scaffold --write      # create the declared member directories
` + "```" + `

**Exit status:** 0 when clean, 2 when violations are found, 1 on errors.

**All flags:** ` + "`archcheck --help`" + `

**How to act on diagnostics:**

1. **KS70001 (forbidden dependency):** move the code or invert the dependency
   behind an interface in the inner layer. Do not add an exception.

2. **KS70003 (impure import):** pure layers may not import host modules such as
   ` + "`fs`" + ` or ` + "`node:path`" + `. Pass the capability in from an outer layer.

3. **KS70004 (circular dependency):** break the cycle at the edge the
   diagnostic points to.

4. **KS70007 (unassigned file):** place the file in one of the declared members,
   or declare a new member in ` + "`archcheck.yaml`" + `.`

	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
