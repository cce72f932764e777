package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/eringen/atlas/scaffold"
)

var newSkipTidy bool

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a new atlas world project",
	Example: `  atlas new myworld
  atlas new github.com/user/myworld`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNew(cmd.OutOrStdout(), args[0], !newSkipTidy)
	},
}

func init() {
	newCmd.Flags().BoolVar(&newSkipTidy, "skip-tidy", false, "do not run go mod tidy in the new project")
}

// scaffoldData holds the template variables passed to every scaffold template.
type scaffoldData struct {
	ProjectName string
	ModuleName  string
	SiteName    string
}

func runNew(out io.Writer, name string, tidy bool) error {
	dirName := path.Base(name)
	if _, err := os.Stat(dirName); err == nil {
		return fmt.Errorf("directory %q already exists", dirName)
	}

	data := scaffoldData{
		ProjectName: dirName,
		ModuleName:  name,
		SiteName:    toTitle(dirName),
	}

	fmt.Fprintf(out, "Creating new atlas project: %s\n\n", dirName)

	const root = "templates"
	err := fs.WalkDir(scaffold.Templates, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		outPath := filepath.Join(dirName, filepath.FromSlash(rel))
		outPath = strings.TrimSuffix(outPath, ".tmpl")
		if filepath.Base(outPath) == "dotenv" {
			outPath = filepath.Join(filepath.Dir(outPath), ".env.example")
		}

		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}
		return writeTemplate(out, p, outPath, data)
	})
	if err != nil {
		return err
	}

	if tidy {
		fmt.Fprintln(out, "\nResolving Go dependencies...")
		cmd := exec.Command("go", "mod", "tidy")
		cmd.Dir = dirName
		cmd.Stdout = out
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "\nWarning: go mod tidy failed: %v\n", err)
			fmt.Fprintf(os.Stderr, "Run 'cd %s && go mod tidy' manually after fixing.\n", dirName)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Done! Next steps:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  cd %s\n", dirName)
	fmt.Fprintln(out, "  cp .env.example .env")
	fmt.Fprintln(out, "  go run .")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Add lore under content/<category>/ and map layers under public/maps/.")
	return nil
}

func writeTemplate(out io.Writer, src, dst string, data scaffoldData) error {
	content, err := scaffold.Templates.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	tmpl, err := template.New(path.Base(src)).Parse(string(content))
	if err != nil {
		return fmt.Errorf("parse template %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer f.Close()
	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("execute template %s: %w", src, err)
	}
	fmt.Fprintf(out, "  created %s\n", dst)
	return nil
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-world" -> "My World", "myworld" -> "Myworld"
func toTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
