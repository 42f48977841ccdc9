package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerdesk/coa/internal/accounts"
	"github.com/ledgerdesk/coa/internal/changelog"
	"github.com/ledgerdesk/coa/internal/gitops"
	"github.com/ledgerdesk/coa/internal/id"
	"github.com/ledgerdesk/coa/internal/importer"
)

func newAccountImportCommand(repoDir *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Import accounts from another system's chart export",
		Long: "Import accounts from CSV exports. With no files, every CSV in import/ is\n" +
			"imported and moved to import/processed/.",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(*repoDir)
			if err != nil {
				return err
			}
			return runImport(cmd, p, format, args)
		},
	}

	cmd.Flags().StringVar(&format, "format", "generic", "export format: generic or odoo")
	return cmd
}

func runImport(cmd *cobra.Command, p *project, format string, files []string) error {
	registry := importer.DefaultRegistry()
	parser := registry.Get(format)
	if parser == nil {
		formats := registry.Formats()
		sort.Strings(formats)
		return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(formats, ", "))
	}

	fromInbox := len(files) == 0
	if fromInbox {
		found, err := importer.Scan(p.root)
		if err != nil {
			return err
		}
		for _, f := range found {
			files = append(files, f.Path)
		}
		if len(files) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No files to import")
			return nil
		}
	}

	total := 0
	var names []string
	var failed error
	for _, path := range files {
		n, err := importFile(cmd, p, parser, path)
		if n > 0 {
			total += n
			names = append(names, filepath.Base(path))
		}
		if err != nil {
			failed = fmt.Errorf("importing %s: %w", filepath.Base(path), err)
			break
		}
		if fromInbox {
			if err := importer.MarkProcessed(p.root, filepath.Base(path)); err != nil {
				failed = err
				break
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d account(s) from %s\n", n, filepath.Base(path))
	}

	// Accounts already written are committed even when a later file fails.
	if total > 0 && p.cfg.Git.AutoCommit && p.fileBacked() && gitops.IsRepo(p.root) {
		author := gitops.Author{Name: p.cfg.Git.AuthorName, Email: p.cfg.Git.AuthorEmail}
		msg := fmt.Sprintf("import: Add %d accounts from %s", total, strings.Join(names, ", "))
		paths := []string{accounts.ChartFile, changelog.RelPath()}
		switch {
		case fromInbox && failed == nil:
			paths = append(paths, "import")
		case fromInbox:
			// Leave the failed file unstaged in the inbox.
			paths = append(paths, filepath.Join("import", "processed"))
		}
		if _, err := gitops.Commit(p.root, msg, author, paths...); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to commit: %v\n", err)
		}
	}
	return failed
}

// importFile plans the whole file before inserting anything, so a bad row
// leaves the chart unchanged. If an insert fails partway, it returns the
// number of accounts written before the failure along with the error.
func importFile(cmd *cobra.Command, p *project, parser importer.Parser, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	rows, err := parser.Parse(f)
	f.Close()
	if err != nil {
		return 0, err
	}

	svc, err := p.snapshot(cmd.Context())
	if err != nil {
		return 0, err
	}
	planned, err := importer.Plan(svc.All(), rows, id.New)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	var entries []changelog.Entry
	var insertErr error
	for _, acct := range planned {
		if err := p.repo.Insert(cmd.Context(), acct); err != nil {
			insertErr = fmt.Errorf("inserting %s: %w", acct.Code, err)
			break
		}
		entries = append(entries, changelog.Entry{
			Timestamp: now,
			Actor:     "cli",
			Action:    changelog.ActionImport,
			AccountID: acct.ID,
			Code:      acct.Code,
			Details:   fmt.Sprintf("%s from %s", acct.DisplayName("en"), filepath.Base(path)),
		})
	}

	// Rows inserted before a failure are still logged.
	if len(entries) > 0 {
		if err := changelog.Append(p.root, entries); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to write chart log: %v\n", err)
		}
	}
	return len(entries), insertErr
}
