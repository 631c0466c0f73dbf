package main

import (
	"fmt"

	"habits/internal/render"
	"habits/internal/tracker"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// withSession optionally loads the list, runs op and renders the resulting
// view. The view is rendered even when op fails so the error banner is shown.
func withSession(g *globalFlags, fetch bool, op func(cmd *cobra.Command, tr *tracker.Tracker, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := g.open()
		if err != nil {
			return err
		}
		defer func() { _ = s.log.Sync() }()

		if fetch {
			if err := s.tracker.Fetch(cmd.Context()); err != nil {
				return err
			}
		}
		opErr := op(cmd, s.tracker, args)
		if opErr != nil {
			s.log.Debug("operation failed", zap.Error(opErr))
		}
		if err := render.View(cmd.OutOrStdout(), s.tracker.View()); err != nil {
			return err
		}
		return opErr
	}
}

func listCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show every habit with its weekly progress",
		Args:  cobra.NoArgs,
		RunE: withSession(g, true, func(*cobra.Command, *tracker.Tracker, []string) error {
			return nil
		}),
	}
}

func addCmd(g *globalFlags) *cobra.Command {
	var name, description, target string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a habit",
		Args:  cobra.NoArgs,
		RunE: withSession(g, true, func(cmd *cobra.Command, tr *tracker.Tracker, args []string) error {
			tr.EditForm(func(f *tracker.Form) {
				f.SetName(name)
				f.SetDescription(description)
				f.SetTarget(target)
			})
			return tr.Create(cmd.Context())
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "Habit name")
	cmd.Flags().StringVar(&description, "description", "", "Optional description")
	cmd.Flags().StringVar(&target, "target", "7", "Target completions per week (1-7)")
	return cmd
}

func deleteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a habit",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(g, true, func(cmd *cobra.Command, tr *tracker.Tracker, args []string) error {
			return tr.Delete(cmd.Context(), args[0])
		}),
	}
}

func completeCmd(g *globalFlags) *cobra.Command {
	var (
		date  string
		undo  bool
		notes string
	)
	cmd := &cobra.Command{
		Use:   "complete ID",
		Short: "Record a habit entry for a day (today by default)",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(g, true, func(cmd *cobra.Command, tr *tracker.Tracker, args []string) error {
			day := date
			if day == "" {
				day = tr.Today()
			}
			return tr.MarkComplete(cmd.Context(), args[0], day, !undo, notes)
		}),
	}
	cmd.Flags().StringVar(&date, "date", "", "Day as YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&undo, "undo", false, "Record the day as not completed")
	cmd.Flags().StringVar(&notes, "notes", "", "Optional notes")
	return cmd
}

func toggleCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Flip today's completion for a habit",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(g, true, func(cmd *cobra.Command, tr *tracker.Tracker, args []string) error {
			return tr.ToggleToday(cmd.Context(), args[0])
		}),
	}
}

func searchCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search NAME",
		Short: "Show habits whose name contains NAME, ignoring case",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(g, false, func(cmd *cobra.Command, tr *tracker.Tracker, args []string) error {
			return tr.Search(cmd.Context(), args[0])
		}),
	}
}

func showCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a single habit",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(g, false, func(cmd *cobra.Command, tr *tracker.Tracker, args []string) error {
			return tr.Show(cmd.Context(), args[0])
		}),
	}
}

func editCmd(g *globalFlags) *cobra.Command {
	var name, description, target string
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a habit's name, description or weekly target",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(g, false, func(cmd *cobra.Command, tr *tracker.Tracker, args []string) error {
			id := args[0]
			if err := tr.Show(cmd.Context(), id); err != nil {
				return err
			}
			h, ok := tr.Lookup(id)
			if !ok {
				return fmt.Errorf("habit %s not found", id)
			}

			f := tracker.Form{Name: h.Name, Description: h.Description, TargetFrequency: h.TargetFrequency}
			flags := cmd.Flags()
			if flags.Changed("name") {
				f.SetName(name)
			}
			if flags.Changed("description") {
				f.SetDescription(description)
			}
			if flags.Changed("target") {
				f.SetTarget(target)
			}
			return tr.Update(cmd.Context(), id, f.Input())
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "New habit name")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&target, "target", "", "New target completions per week (1-7)")
	return cmd
}
