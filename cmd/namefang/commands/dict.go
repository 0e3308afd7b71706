package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/namefang/internal/config"
	"github.com/Sumatoshi-tech/namefang/pkg/term"
)

// ErrBuiltinReadOnly indicates a mutation was attempted without a
// dictionary file to persist it to.
var ErrBuiltinReadOnly = errors.New("builtin dictionary is read-only; pass --dict or set dictionary.path")

// DictCommand holds shared flags for the dict subcommands.
type DictCommand struct {
	cfgPath  string
	dictPath string

	category string
	tags     string
}

// NewDictCommand creates the dict command with its subcommands.
func NewDictCommand() *cobra.Command {
	dc := &DictCommand{}

	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Manage the terminology dictionary",
		Long: `Inspect and edit the terminology dictionary used for identifier
matching. Without --dict or a configured path, the builtin dictionary
is shown read-only.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&dc.cfgPath, "config", "c", "", "Config file path")
	cmd.PersistentFlags().StringVar(&dc.dictPath, "dict", "", "Dictionary file (.csv or .json; overrides config)")

	cmd.AddCommand(dc.newListCommand())
	cmd.AddCommand(dc.newSearchCommand())
	cmd.AddCommand(dc.newAddCommand())
	cmd.AddCommand(dc.newRemoveCommand())
	cmd.AddCommand(dc.newImportCommand())
	cmd.AddCommand(dc.newExportCommand())

	return cmd
}

func (dc *DictCommand) newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all dictionary entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := dc.openStore()
			if err != nil {
				return err
			}

			renderEntries(cmd.OutOrStdout(), store.Search(""))

			return nil
		},
	}
}

func (dc *DictCommand) newSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search entries by key, canonical form or tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := dc.openStore()
			if err != nil {
				return err
			}

			entries := store.Search(args[0])
			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No entries match %q.\n", args[0])

				return nil
			}

			renderEntries(cmd.OutOrStdout(), entries)

			return nil
		},
	}
}

func (dc *DictCommand) newAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <key> <canonical>",
		Short: "Add a dictionary entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, path, err := dc.openWritableStore()
			if err != nil {
				return err
			}

			entry := term.Entry{
				Key:       args[0],
				Canonical: args[1],
				Category:  dc.category,
			}

			if dc.tags != "" {
				entry.Tags = strings.Split(dc.tags, ",")
			}

			err = store.Add(entry)
			if err != nil {
				return err
			}

			err = dc.save(store, path)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %q -> %q.\n", entry.Key, entry.Canonical)

			return nil
		},
	}

	cmd.Flags().StringVar(&dc.category, "category", "", "Entry category (e.g. entity, action, quantity)")
	cmd.Flags().StringVar(&dc.tags, "tags", "", "Comma-separated tags")

	return cmd
}

func (dc *DictCommand) newRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <key>",
		Aliases: []string{"remove"},
		Short:   "Remove a dictionary entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, path, err := dc.openWritableStore()
			if err != nil {
				return err
			}

			err = store.Delete(args[0])
			if err != nil {
				return err
			}

			err = dc.save(store, path)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %q.\n", args[0])

			return nil
		},
	}
}

func (dc *DictCommand) newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge entries from another dictionary file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, path, err := dc.openWritableStore()
			if err != nil {
				return err
			}

			entries, err := term.LoadFile(args[0])
			if err != nil {
				return err
			}

			added := 0

			for _, e := range entries {
				// Imported entries win over existing ones.
				if updateErr := store.Update(e); updateErr != nil {
					if addErr := store.Add(e); addErr != nil {
						return addErr
					}
				}

				added++
			}

			err = dc.save(store, path)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries.\n", added)

			return nil
		},
	}
}

func (dc *DictCommand) newExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the dictionary to a .csv or .json file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := dc.openStore()
			if err != nil {
				return err
			}

			err = dc.save(store, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s.\n", store.Len(), args[0])

			return nil
		},
	}
}

// openStore loads the dictionary into a store, returning the resolved
// file path (empty for builtin).
func (dc *DictCommand) openStore() (*term.Store, string, error) {
	path := dc.dictPath

	if path == "" {
		cfg, err := config.LoadConfig(dc.cfgPath)
		if err != nil {
			return nil, "", err
		}

		path = cfg.Dictionary.Path
	}

	entries, err := term.LoadFile(path)
	if err != nil {
		return nil, "", err
	}

	return term.NewStore(entries), path, nil
}

// openWritableStore is openStore but fails when no file backs the
// dictionary.
func (dc *DictCommand) openWritableStore() (*term.Store, string, error) {
	store, path, err := dc.openStore()
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		return nil, "", ErrBuiltinReadOnly
	}

	return store, path, nil
}

// save writes the store contents back to disk in the format the path's
// extension selects, matching how the file will be loaded again.
func (dc *DictCommand) save(store *term.Store, path string) error {
	dict, err := store.Snapshot()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if strings.HasSuffix(path, ".json") {
		err = term.WriteJSON(f, dict.Entries())
	} else {
		err = term.WriteCSV(f, dict.Entries())
	}

	if err != nil {
		_ = f.Close()

		return err
	}

	return f.Close()
}

// renderEntries prints entries as a table.
func renderEntries(w io.Writer, entries []term.Entry) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Key", "Canonical", "Category", "Tags"})

	for _, e := range entries {
		tbl.AppendRow(table.Row{e.Key, e.Canonical, e.Category, strings.Join(e.Tags, ", ")})
	}

	tbl.Render()
}
