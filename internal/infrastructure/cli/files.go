package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/session"
)

var filesReset bool

var addCmd = &cobra.Command{
	Use:   "add <category> <files...>",
	Short: "Add files to the upload selection",
	Long: `Add files to the upload selection.

Categories:
  scope     Scope of work (one file)
  spec      Specification (one file)
  drawing   Architectural drawings (many files)
  assembly  Assembly letters (many files)

Single-file categories keep the last file added.`,
	Example: `  drafty add drawing roof-a.pdf roof-b.pdf
  drafty add spec specification.pdf`,
	Args:      cobra.MinimumNArgs(2),
	ValidArgs: categoryNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := session.ParseCategory(args[0])
		if err != nil {
			return err
		}
		paths, err := absFiles(args[1:])
		if err != nil {
			return err
		}

		services, err := loadServicesForCurrentDir(cmd)
		if err != nil {
			return err
		}
		defer closeServices(services)

		if err := services.Controller.Select(cmd.Context(), cat, paths...); err != nil {
			return MapError(fmt.Errorf("add files: %w", err))
		}
		printSelection(cmd, services.Controller.Selection())
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:     "remove <category> <position>",
	Aliases: []string{"rm"},
	Short:   "Remove a file from the upload selection",
	Example: `  drafty remove drawing 2`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := session.ParseCategory(args[0])
		if err != nil {
			return err
		}
		pos, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid position %q: %w", args[1], err)
		}

		services, err := loadServicesForCurrentDir(cmd)
		if err != nil {
			return err
		}
		defer closeServices(services)

		if err := services.Controller.Remove(cmd.Context(), cat, pos-1); err != nil {
			return MapError(fmt.Errorf("remove file: %w", err))
		}
		printSelection(cmd, services.Controller.Selection())
		return nil
	},
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List the upload selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir(cmd)
		if err != nil {
			return err
		}
		defer closeServices(services)

		if filesReset {
			if err := services.Controller.ResetSelection(cmd.Context()); err != nil {
				return MapError(fmt.Errorf("reset selection: %w", err))
			}
		}
		printSelection(cmd, services.Controller.Selection())
		return nil
	},
}

func printSelection(cmd *cobra.Command, items []session.Item) {
	out := cmd.OutOrStdout()
	if len(items) == 0 {
		_, _ = fmt.Fprintln(out, "No files selected.")
		return
	}
	var current session.Category
	for _, it := range items {
		if it.Category != current {
			current = it.Category
			_, _ = fmt.Fprintf(out, "%s:\n", current)
		}
		_, _ = fmt.Fprintf(out, "  %d. %s  (%s)\n", it.Index+1, it.Name(), it.Path)
	}
}

func absFiles(args []string) ([]string, error) {
	paths := make([]string, 0, len(args))
	for _, a := range args {
		abs, err := filepath.Abs(a)
		if err != nil {
			return nil, fmt.Errorf("invalid path %q: %w", a, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("cannot read %q: %w", a, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%q is a directory", a)
		}
		paths = append(paths, abs)
	}
	return paths, nil
}

func categoryNames() []string {
	cats := session.AllCategories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return names
}

func init() {
	filesCmd.Flags().BoolVar(&filesReset, "reset", false, "Empty the selection first")
	RootCmd.AddCommand(addCmd)
	RootCmd.AddCommand(removeCmd)
	RootCmd.AddCommand(filesCmd)
}
