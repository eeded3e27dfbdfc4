package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/kroner/internal/cli"
	"github.com/Veraticus/kroner/internal/common"
	"github.com/Veraticus/kroner/internal/entry"
	"github.com/Veraticus/kroner/internal/format"
	"github.com/Veraticus/kroner/internal/model"
	"github.com/Veraticus/kroner/internal/ofx"
	"github.com/spf13/cobra"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import expenses from OFX/QFX bank statements",
		Long: `Import debits from OFX or QFX files exported from your bank. Credits are
skipped, and transactions already recorded are not imported twice.

Examples:
  # Import single file
  kroner import-ofx ~/Downloads/dnb_januar.qfx --category Mat

  # Import all QFX files in a directory
  kroner import-ofx ~/Downloads/*.qfx --category Diverse --tag bank

  # Preview without saving
  kroner import-ofx ~/Downloads/*.ofx --category Mat --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().String("category", "", "category for the imported expenses (name or id)")
	cmd.Flags().String("tag", "", "tag for the imported expenses")
	cmd.Flags().BoolP("dry-run", "d", false, "preview the import without saving")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")
	tag, _ := cmd.Flags().GetString("tag")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	slog.Info("Importing OFX files", "file_count", len(files), "dry_run", dryRun)

	parser := ofx.NewParser()
	var records []ofx.Record
	for _, path := range files {
		f, err := os.Open(path) // #nosec G304
		if err != nil {
			common.LogError(err, "Failed to open file", common.Fields{"file": path})
			continue
		}
		parsed, err := parser.ParseFile(cmd.Context(), f)
		_ = f.Close()
		if err != nil {
			common.LogError(err, "Failed to parse OFX file", common.Fields{"file": path})
			continue
		}
		slog.Info("Processed file", "file", filepath.Base(path), "transactions_found", len(parsed))
		records = append(records, parsed...)
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("No transactions found in any file"))
		return nil
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Import", "Imported expenses were kept. Run the import again to add the rest.")
	ctx, stop := handler.HandleInterrupts(cmd.Context())
	defer stop()

	return withSession(ctx, func(a *app, s *model.Session) error {
		c, err := resolveCategory(ctx, a.gateway, category)
		if err != nil {
			return err
		}

		existing, err := a.gateway.ListExpenses(ctx, s.UserID, model.Period{})
		if err != nil {
			return fmt.Errorf("failed to load existing expenses: %w", err)
		}

		plan := ofx.PlanImport(records, existing, c.ID, tag)
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%d new, %d duplicates, %d credits skipped",
			len(plan.Drafts), plan.Duplicates, plan.Credits)))

		if dryRun {
			for _, d := range plan.Drafts {
				date := d.Date
				if d.NoDate {
					date = format.NoDate
				}
				fmt.Fprintf(out, "  %s  %-40s %s kr\n", date, d.Item, d.Price)
			}
			fmt.Fprintln(out, cli.FormatInfo("Dry run complete - no data saved"))
			return nil
		}
		if len(plan.Drafts) == 0 {
			return nil
		}

		workflow := entry.NewWorkflow(a.gateway, time.Now)
		bar := cli.NewProgressBar(out, len(plan.Drafts), "Importing expenses...")
		var imported, failed int
		for _, d := range plan.Drafts {
			if ctx.Err() != nil {
				break
			}
			if _, err := workflow.Submit(ctx, s.UserID, d); err != nil {
				failed++
				slog.Warn("Failed to import expense", "item", d.Item, "date", d.Date, "error", err)
			} else {
				imported++
			}
			if err := bar.Add(1); err != nil {
				slog.Warn("Failed to update progress bar", "error", err)
			}
		}

		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d expenses into %s", imported, c.Name)))
		if failed > 0 {
			fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d expenses failed, see the log", failed)))
		}
		return ctx.Err()
	})
}

// expandFiles resolves globs, keeping plain paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}
