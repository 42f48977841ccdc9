package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerdesk/coa/internal/accounts"
	"github.com/ledgerdesk/coa/internal/changelog"
	"github.com/ledgerdesk/coa/internal/gitops"
	"github.com/ledgerdesk/coa/internal/id"
	"github.com/ledgerdesk/coa/internal/model"
)

func newAccountCommand() *cobra.Command {
	var repoDir string

	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Inspect and extend the chart of accounts",
	}
	accountCmd.PersistentFlags().StringVar(&repoDir, "repo", ".", "project directory")

	accountCmd.AddCommand(newAccountListCommand(&repoDir))
	accountCmd.AddCommand(newAccountTreeCommand(&repoDir))
	accountCmd.AddCommand(newAccountNextCodeCommand(&repoDir))
	accountCmd.AddCommand(newAccountAddCommand(&repoDir))
	accountCmd.AddCommand(newAccountCheckCommand(&repoDir))
	accountCmd.AddCommand(newAccountImportCommand(&repoDir))
	return accountCmd
}

func newAccountListCommand(repoDir *string) *cobra.Command {
	var typeFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts in stored order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(*repoDir)
			if err != nil {
				return err
			}
			svc, err := p.snapshot(cmd.Context())
			if err != nil {
				return err
			}

			list := svc.All()
			if typeFlag != "" {
				t, err := model.ParseAccountType(typeFlag)
				if err != nil {
					return err
				}
				list = svc.ByType(t)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, a := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.ID, a.Code, a.Type, a.DisplayName(p.cfg.Display.Language))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&typeFlag, "type", "", "only accounts of this type")
	return cmd
}

func newAccountTreeCommand(repoDir *string) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the chart as an indented tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(*repoDir)
			if err != nil {
				return err
			}
			if lang == "" {
				lang = p.cfg.Display.Language
			}
			if lang != "en" && lang != "ar" {
				return fmt.Errorf("--lang must be en or ar, got %q", lang)
			}

			svc, err := p.snapshot(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range svc.Tree() {
				indent := strings.Repeat(" ", e.Level*p.cfg.Display.Indent)
				line := fmt.Sprintf("%s%s  %s", indent, e.Account.Code, e.Account.DisplayName(lang))
				if !e.Account.IsActive {
					line += " (inactive)"
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "label language: en or ar (default from coa.yaml)")
	return cmd
}

func newAccountNextCodeCommand(repoDir *string) *cobra.Command {
	var typeFlag, parentID, parentCode string

	cmd := &cobra.Command{
		Use:   "next-code",
		Short: "Propose the next code for a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := model.ParseAccountType(typeFlag)
			if err != nil {
				return err
			}
			p, err := openProject(*repoDir)
			if err != nil {
				return err
			}
			svc, err := p.snapshot(cmd.Context())
			if err != nil {
				return err
			}

			parent, err := resolveParent(svc, parentID, parentCode)
			if err != nil {
				return err
			}
			if parent != "" && !svc.Exists(parent) {
				fmt.Fprintf(os.Stderr, "warning: parent %s not found, proposing a top-level code\n", parent)
			}

			code, err := svc.NextCode(t, parent)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}

	cmd.Flags().StringVar(&typeFlag, "type", "", "account type (required)")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().StringVar(&parentID, "parent", "", "parent account id")
	cmd.Flags().StringVar(&parentCode, "parent-code", "", "parent account code")
	return cmd
}

type addOptions struct {
	typeFlag   string
	code       string
	parentID   string
	parentCode string
	nameEN     string
	nameAR     string
	descEN     string
	descAR     string
	noPosting  bool
	inactive   bool
}

func newAccountAddCommand(repoDir *string) *cobra.Command {
	var opts addOptions

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account, proposing its code when none is given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(*repoDir)
			if err != nil {
				return err
			}
			return runAccountAdd(cmd, p, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.typeFlag, "type", "", "account type (required)")
	_ = cmd.MarkFlagRequired("type")
	f.StringVar(&opts.code, "code", "", "account code (proposed when empty)")
	f.StringVar(&opts.parentID, "parent", "", "parent account id")
	f.StringVar(&opts.parentCode, "parent-code", "", "parent account code")
	f.StringVar(&opts.nameEN, "name-en", "", "English name")
	f.StringVar(&opts.nameAR, "name-ar", "", "Arabic name")
	f.StringVar(&opts.descEN, "description-en", "", "English description")
	f.StringVar(&opts.descAR, "description-ar", "", "Arabic description")
	f.BoolVar(&opts.noPosting, "no-posting", false, "disallow posting to the account")
	f.BoolVar(&opts.inactive, "inactive", false, "create the account inactive")
	return cmd
}

func runAccountAdd(cmd *cobra.Command, p *project, opts addOptions) error {
	t, err := model.ParseAccountType(opts.typeFlag)
	if err != nil {
		return err
	}

	acct := model.Account{
		ID:            id.New(),
		Code:          strings.TrimSpace(opts.code),
		Type:          t,
		IsActive:      !opts.inactive,
		AllowPosting:  !opts.noPosting,
		NameEN:        strings.TrimSpace(opts.nameEN),
		NameAR:        strings.TrimSpace(opts.nameAR),
		DescriptionEN: strings.TrimSpace(opts.descEN),
		DescriptionAR: strings.TrimSpace(opts.descAR),
	}
	if acct.NameEN == "" && acct.NameAR == "" {
		return errors.New("--name-en or --name-ar is required")
	}

	svc, err := p.snapshot(cmd.Context())
	if err != nil {
		return err
	}
	if acct.ParentID, err = resolveParent(svc, opts.parentID, opts.parentCode); err != nil {
		return err
	}
	if acct.ParentID != "" && !svc.Exists(acct.ParentID) {
		return fmt.Errorf("%w: %s", accounts.ErrUnknownParent, acct.ParentID)
	}

	proposed := acct.Code == ""
	if proposed {
		if acct.Code, err = svc.NextCode(t, acct.ParentID); err != nil {
			return err
		}
	}

	if err := p.repo.Insert(cmd.Context(), acct); err != nil {
		return fmt.Errorf("adding account: %w", err)
	}

	if err := changelog.Append(p.root, changelog.ForAdd("cli", acct, proposed, time.Now())); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write chart log: %v\n", err)
	}

	if p.cfg.Git.AutoCommit && p.fileBacked() && gitops.IsRepo(p.root) {
		author := gitops.Author{Name: p.cfg.Git.AuthorName, Email: p.cfg.Git.AuthorEmail}
		msg := fmt.Sprintf("account: Add %s %s", acct.Code, acct.DisplayName("en"))
		if _, err := gitops.Commit(p.root, msg, author, accounts.ChartFile, changelog.RelPath()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to commit: %v\n", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s (%s)\n", acct.Code, acct.DisplayName(p.cfg.Display.Language), acct.ID)
	return nil
}

func newAccountCheckCommand(repoDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the chart for structural and numbering problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(*repoDir)
			if err != nil {
				return err
			}
			svc, err := p.snapshot(cmd.Context())
			if err != nil {
				return err
			}

			findings := svc.Validate()
			out := cmd.OutOrStdout()
			for _, f := range findings {
				if f.Advisory() {
					fmt.Fprintf(out, "advisory: %v\n", f)
				} else {
					fmt.Fprintf(out, "error: %v\n", f)
				}
			}
			if len(findings) > 0 {
				return fmt.Errorf("chart check found %d problem(s)", len(findings))
			}
			fmt.Fprintln(out, "Chart OK")
			return nil
		},
	}
}

// resolveParent turns --parent or --parent-code into a parent id.
func resolveParent(svc *accounts.Service, parentID, parentCode string) (string, error) {
	if parentID != "" && parentCode != "" {
		return "", errors.New("use either --parent or --parent-code, not both")
	}
	if parentCode != "" {
		parent, ok := svc.ByCode(strings.TrimSpace(parentCode))
		if !ok {
			return "", fmt.Errorf("%w: no account with code %s", accounts.ErrNotFound, parentCode)
		}
		return parent.ID, nil
	}
	return id.Normalize(parentID), nil
}
