package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"expensebook/internal/cli"
	"expensebook/internal/core"
)

func (a *app) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"profiles", "user"},
		Short:   "Manage profiles",
		Long:    `Create, select and delete profiles. Each profile has its own records.`,
	}

	cmd.AddCommand(a.profileListCmd())
	cmd.AddCommand(a.profileCreateCmd())
	cmd.AddCommand(a.profileUseCmd())
	cmd.AddCommand(a.profileDeleteCmd())
	cmd.AddCommand(a.profileCurrentCmd())
	cmd.AddCommand(a.profilePruneCmd())

	return cmd
}

func (a *app) profileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles with their record counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := a.state(ctx)
			if err != nil {
				return err
			}
			summaries, err := a.profiles.Summaries(ctx, st)
			if err != nil {
				return err
			}
			renderProfiles(a.out, summaries, a.currency())
			return nil
		},
	}
}

func (a *app) profileCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a profile and select it",
		Long:  fmt.Sprintf(`Create a profile. Names are unique and at most %d characters long.`, core.MaxProfileNameLength),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.state(ctx)
			if err != nil {
				return err
			}
			st, p, err := a.profiles.Create(ctx, st, args[0])
			if err != nil {
				return err
			}
			if _, _, err := a.profiles.SetActive(ctx, st, p.ID); err != nil {
				return err
			}
			a.println(cli.Success(fmt.Sprintf("Profile %q created and selected", p.Name)))
			return nil
		},
	}
}

func (a *app) profileUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "use <name-or-id>",
		Aliases: []string{"switch"},
		Short:   "Select the active profile",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.state(ctx)
			if err != nil {
				return err
			}
			target, ok := st.ResolveProfile(args[0])
			if !ok {
				return fmt.Errorf("profile %q: %w", args[0], core.ErrNotFound)
			}
			st, p, err := a.profiles.SetActive(ctx, st, target.ID)
			if err != nil {
				return err
			}
			a.println(cli.Success(fmt.Sprintf("Switched to %q (%d %s)", p.Name, len(st.Records), pluralize(len(st.Records), "record"))))
			return nil
		},
	}
}

func (a *app) profileDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <name-or-id>",
		Short: "Delete a profile and all of its records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.state(ctx)
			if err != nil {
				return err
			}
			target, ok := st.ResolveProfile(args[0])
			if !ok {
				return fmt.Errorf("profile %q: %w", args[0], core.ErrNotFound)
			}
			impact, err := a.profiles.PrepareDelete(ctx, st, target.ID)
			if err != nil {
				return err
			}
			renderImpact(a.out, "Delete profile", impact, a.currency(), yes)
			if !yes {
				return nil
			}
			if _, err := a.profiles.Delete(ctx, st, target.ID); err != nil {
				return err
			}
			a.println(cli.Success(fmt.Sprintf("Profile %q deleted", target.Name)))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the deletion")
	return cmd
}

func (a *app) profileCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the active profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.state(cmd.Context())
			if err != nil {
				return err
			}
			p, ok := a.profiles.Active(st)
			if !ok {
				a.println(cli.Subtle("No profile selected."))
				return nil
			}
			a.printf("%s %s\n", cli.IconActive, p.Name)
			a.printf("%s\n", cli.Subtle(p.ID))
			return nil
		},
	}
}

func (a *app) profilePruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove stored records that belong to no profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := a.state(ctx)
			if err != nil {
				return err
			}
			n, err := a.profiles.Prune(ctx, st)
			if err != nil {
				return err
			}
			a.println(cli.Success(fmt.Sprintf("Removed %d orphaned %s", n, pluralize(n, "partition"))))
			return nil
		},
	}
}
