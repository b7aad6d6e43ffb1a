package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage document categories",
		Long: `View and manage the category reference data.

The pipeline only ever assigns existing categories by exact name match;
new categories are created here, never by the analyzer.`,
	}

	cmd.AddCommand(categoriesListCmd())
	cmd.AddCommand(categoriesAddCmd())
	return cmd
}

func categoriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					slog.Error("Failed to close database", "error", closeErr)
				}
			}()

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}

			if len(categories) == 0 {
				fmt.Println("No categories found. Run 'reportpipe migrate' to seed defaults.")
				return nil
			}

			color.Cyan("%-4s %-20s %s", "ID", "NAME", "DESCRIPTION")
			for _, cat := range categories {
				fmt.Printf("%-4d %-20s %s\n", cat.ID, cat.Name, cat.Description)
			}
			return nil
		},
	}
}

func categoriesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			description, _ := cmd.Flags().GetString("description")
			name := strings.TrimSpace(strings.Join(args, " "))

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					slog.Error("Failed to close database", "error", closeErr)
				}
			}()

			category, err := store.CreateCategory(ctx, name, description)
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			color.Green("Category %q ready (id %d)", category.Name, category.ID)
			return nil
		},
	}

	cmd.Flags().String("description", "", "Category description")
	return cmd
}
