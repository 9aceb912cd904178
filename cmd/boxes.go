package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/umzug/filter"
	"github.com/s0up4200/umzug/session"
	"github.com/s0up4200/umzug/umzug"
)

// boxesCmd represents the boxes command
var boxesCmd = &cobra.Command{
	Use:     "boxes",
	Aliases: []string{"box"},
	Short:   "Manage boxes",
}

var boxesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List boxes",
	Long: `List all boxes with the items packed into them.

Filter expressions see Title, Amount and Packings, e.g.
  umzug boxes list --filter 'Packings == 0'`,
	Args: cobra.NoArgs,
	RunE: runBoxesList,
}

var boxesCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a box",
	Args:  cobra.ExactArgs(1),
	RunE:  runBoxesCreate,
}

var boxesRenameCmd = &cobra.Command{
	Use:   "rename <box> <title>",
	Short: "Rename a box",
	Long:  `Rename a box. The box is referenced by its ID or its current title.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runBoxesRename,
}

var boxesDeleteCmd = &cobra.Command{
	Use:   "delete <box>...",
	Short: "Delete boxes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBoxesDelete,
}

func init() {
	rootCmd.AddCommand(boxesCmd)
	boxesCmd.AddCommand(boxesListCmd, boxesCreateCmd, boxesRenameCmd, boxesDeleteCmd)

	addFilterFlags(boxesListCmd)
}

func runBoxesList(cmd *cobra.Command, args []string) error {
	return withSession(func(s *session.Session) error {
		boxes, err := loadBoxes(cmd.Context(), s.Client)
		if err != nil {
			return err
		}
		boxes, err = applyFilter(boxes, filter.BoxRecord)
		if err != nil {
			return err
		}
		return renderBoxes(boxes)
	})
}

func runBoxesCreate(cmd *cobra.Command, args []string) error {
	return withSession(func(s *session.Session) error {
		result, err := s.Client.CreateBox(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		box, err := result.Get()
		if err != nil {
			return fmt.Errorf("failed to create box %q: %w", args[0], err)
		}

		logger.Info().Str("box", box.Title).Str("id", box.ID.String()).Msg("Created box")
		return renderBoxes([]umzug.Box{box})
	})
}

func runBoxesRename(cmd *cobra.Command, args []string) error {
	return withSession(func(s *session.Session) error {
		ctx := cmd.Context()
		box, err := resolveBox(ctx, s.Client, args[0])
		if err != nil {
			return err
		}

		result, err := s.Client.UpdateBox(ctx, box.ID, args[1])
		if err != nil {
			return err
		}
		renamed, err := result.Get()
		if err != nil {
			return fmt.Errorf("failed to rename box %q: %w", box.Title, err)
		}

		logger.Info().Str("from", box.Title).Str("to", renamed.Title).Msg("Renamed box")
		return renderBoxes([]umzug.Box{renamed})
	})
}

func runBoxesDelete(cmd *cobra.Command, args []string) error {
	return withSession(func(s *session.Session) error {
		return deleteEach(cmd.Context(), args, "box", func(ctx context.Context, ref string) (string, error) {
			box, err := resolveBox(ctx, s.Client, ref)
			if err != nil {
				return ref, err
			}
			result, err := s.Client.DeleteBox(ctx, box.ID)
			if err != nil {
				return box.Title, err
			}
			_, err = result.Get()
			return box.Title, err
		})
	})
}

// deleteEach deletes every reference and reports each failure. It fails if
// any deletion failed.
func deleteEach(ctx context.Context, refs []string, kind string, del func(ctx context.Context, ref string) (string, error)) error {
	var failed int
	for _, ref := range refs {
		name, err := del(ctx, ref)
		if err != nil {
			failed++
			logger.Error().Err(err).Str(kind, name).Msgf("Failed to delete %s", kind)
			continue
		}
		logger.Info().Str(kind, name).Msgf("Deleted %s", kind)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d deletions failed", failed, len(refs))
	}
	return nil
}
