package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/curriculum/internal/content"
	"github.com/abhisek/curriculum/internal/ui/theme"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Validate and import authored catalogs",
}

var contentValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a catalog file for authoring mistakes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := content.LoadFile(args[0])
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			printValidation(err)
			return errors.New("catalog is invalid")
		}
		fmt.Println(theme.Completed.Render("✓ catalog is valid"))
		printCatalogSummary(c)
		return nil
	},
}

var contentImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the authored content in the database with a catalog file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		c, err := content.LoadFile(args[0])
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			printValidation(err)
			if !force {
				return errors.New("catalog is invalid (use --force to import anyway)")
			}
			fmt.Println(theme.Warning.Render("importing invalid catalog: affected nodes will stay locked"))
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ImportCatalog(cmd.Context(), c); err != nil {
			return fmt.Errorf("import catalog: %w", err)
		}
		fmt.Println(theme.Completed.Render("✓ catalog imported"))
		printCatalogSummary(c)
		return nil
	},
}

func init() {
	contentImportCmd.Flags().Bool("force", false, "Import even when validation finds problems")

	contentCmd.AddCommand(contentValidateCmd)
	contentCmd.AddCommand(contentImportCmd)
}

func printValidation(err error) {
	var verr *content.ValidationError
	if !errors.As(err, &verr) {
		fmt.Println(theme.Failure.Render(err.Error()))
		return
	}
	fmt.Println(theme.Failure.Render(fmt.Sprintf("%d problem(s):", len(verr.Problems))))
	for _, p := range verr.Problems {
		fmt.Println("  " + p)
	}
}

func printCatalogSummary(c *content.Catalog) {
	fmt.Printf("  schema %s, %d lessons, %d daily challenges\n",
		c.SchemaVersion, len(c.Lessons), len(c.Challenges))
	for _, d := range c.Disciplines() {
		fmt.Printf("  %-14s %d modules, %d skill nodes, %d achievements\n", d,
			len(c.ModulesFor(d)), len(c.SkillTreeFor(d)), len(c.AchievementsFor(string(d))))
	}
	if global := c.AchievementsFor(content.CategoryGlobal); len(global) > 0 {
		fmt.Printf("  %-14s %d achievements\n", content.CategoryGlobal, len(global))
	}
}
