package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newExportCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the quiz progress to a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := c.app.Progress.Export(c.ctx)
			if err != nil {
				return err
			}

			target, _ := cmd.Flags().GetString("output")
			if target == "-" {
				_, err := cmd.OutOrStdout().Write(file.Data)
				return err
			}
			if target == "" {
				target = file.Name
			} else if info, err := os.Stat(target); err == nil && info.IsDir() {
				target = filepath.Join(target, file.Name)
			}

			if err := os.WriteFile(target, file.Data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Progress exported to %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "File or directory to write to, - for stdout (default: a timestamped file in the current directory)")
	return cmd
}

func newImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the quiz progress with an exported JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			if err := c.app.Progress.Import(c.ctx, in); err != nil {
				return err
			}
			counts := c.app.Progress.Counts(c.ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "Progress imported: %d mastered, %d missed\n", counts.Mastered, counts.Missed)
			return nil
		},
	}
}

func newResetCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget every recorded answer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return fmt.Errorf("reset clears all progress; pass --yes to confirm")
			}
			if err := c.app.Progress.Reset(c.ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Progress reset. Previous progress can be brought back with history and restore.")
			return nil
		},
	}
	cmd.Flags().Bool("yes", false, "Confirm the reset")
	return cmd
}

func newHistoryCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous versions of the quiz progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			versions, err := c.app.Progress.History(c.ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(versions) == 0 {
				fmt.Fprintln(out, "No previous versions.")
				return nil
			}
			for _, v := range versions {
				fmt.Fprintf(out, "%d\t%s\t%d bytes\n", v.ID, v.ReplacedAt.Local().Format(time.DateTime), v.Size)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 0, "Maximum number of versions to list (0 for all)")
	return cmd
}

func newRestoreCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <version-id>",
		Short: "Restore a previous version of the quiz progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid version id %q", args[0])
			}
			if err := c.app.Progress.Restore(c.ctx, id); err != nil {
				return err
			}
			counts := c.app.Progress.Counts(c.ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "Progress restored: %d mastered, %d missed\n", counts.Mastered, counts.Missed)
			return nil
		},
	}
}
