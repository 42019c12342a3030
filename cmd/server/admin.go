package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	appsvc "gemcanvas/internal/app"
	"gemcanvas/internal/bootstrap"
)

func withStorage(ctx context.Context, fn func(a *bootstrap.App) error) error {
	cfg, log, err := loadEnv()
	if err != nil {
		return err
	}
	defer log.Sync()

	a, err := bootstrap.NewStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("close resources failed", "error", err)
		}
	}()
	return fn(a)
}

// terminalConfirmer asks on the terminal unless --yes was given. Without a
// terminal it declines.
func terminalConfirmer(assumeYes bool) appsvc.Confirmer {
	return appsvc.ConfirmFunc(func(_ context.Context, prompt string) bool {
		if assumeYes {
			return true
		}
		if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			return false
		}
		ok := false
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(prompt).
					Affirmative("Yes").
					Negative("No").
					Value(&ok),
			),
		).WithShowHelp(false)
		if err := form.Run(); err != nil {
			return false
		}
		return ok
	})
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Rewrite stored Gems and knowledge bases in the current layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd.Context(), func(a *bootstrap.App) error {
				gems, groups, err := a.Store.Migrate(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "gems: from v%d, dropped %d, defaulted styles %d, resolved pending %d, unknown styles %d\n",
					gems.FromVersion, gems.Dropped, gems.DefaultedStyles, gems.ResolvedPending, len(gems.UnknownStyles))
				fmt.Fprintf(out, "knowledge bases: from v%d, dropped %d\n", groups.FromVersion, groups.Dropped)
				return nil
			})
		},
	}
}

func newGemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gems",
		Short: "Inspect and remove Gems",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List Gems, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd.Context(), func(a *bootstrap.App) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tSTUDENT\tSIGNATURE\tMESSAGES\tCANVASES")
				for _, g := range a.Studio.Gems().List() {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n",
						g.ID, g.Name, g.StudentName, g.VisualSignature, len(g.ChatHistory), len(g.Canvases))
				}
				return w.Flush()
			})
		},
	}

	var assumeYes bool
	del := &cobra.Command{
		Use:   "delete <gem-id>",
		Short: "Delete a Gem and its canvases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd.Context(), func(a *bootstrap.App) error {
				if err := a.Studio.DeleteGem(cmd.Context(), args[0], terminalConfirmer(assumeYes)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
	del.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")

	cmd.AddCommand(list, del)
	return cmd
}

func newKnowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "kb",
		Aliases: []string{"knowledge"},
		Short:   "Inspect and remove knowledge bases",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List knowledge bases",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd.Context(), func(a *bootstrap.App) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tURLS")
				for _, g := range a.Studio.KnowledgeBases().List() {
					fmt.Fprintf(w, "%s\t%s\t%d\n", g.ID, g.Name, len(g.URLs))
				}
				return w.Flush()
			})
		},
	}

	var assumeYes bool
	del := &cobra.Command{
		Use:   "delete <group-id>",
		Short: "Delete a knowledge base; Gems using it fall back to a general search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd.Context(), func(a *bootstrap.App) error {
				if err := a.Studio.DeleteKnowledgeBase(cmd.Context(), args[0], terminalConfirmer(assumeYes)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
	del.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")

	cmd.AddCommand(list, del)
	return cmd
}
