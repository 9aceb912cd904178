package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/s0up4200/umzug/filter"
	"github.com/s0up4200/umzug/session"
	"github.com/s0up4200/umzug/umzug"
)

var (
	packingItem   string
	packingBox    string
	packingAmount int
)

// packingsCmd represents the packings command
var packingsCmd = &cobra.Command{
	Use:     "packings",
	Aliases: []string{"packing", "pack"},
	Short:   "Manage which items are packed in which boxes",
}

var packingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List packings",
	Long: `List packings, optionally only those of one item and/or one box.

Filter expressions see Item, Box, Amount and Priority, e.g.
  umzug packings list --box Kitchen --filter 'Amount > 1'`,
	Args: cobra.NoArgs,
	RunE: runPackingsList,
}

var packingsCreateCmd = &cobra.Command{
	Use:   "create <item> <box>",
	Short: "Pack an item into a box",
	Args:  cobra.ExactArgs(2),
	RunE:  runPackingsCreate,
}

var packingsUpdateCmd = &cobra.Command{
	Use:   "update <packing-id>",
	Short: "Move a packing or change its amount",
	Args:  cobra.ExactArgs(1),
	RunE:  runPackingsUpdate,
}

var packingsDeleteCmd = &cobra.Command{
	Use:   "delete <packing-id>...",
	Short: "Unpack items",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPackingsDelete,
}

func init() {
	rootCmd.AddCommand(packingsCmd)
	packingsCmd.AddCommand(packingsListCmd, packingsCreateCmd, packingsUpdateCmd, packingsDeleteCmd)

	addFilterFlags(packingsListCmd)
	packingsListCmd.Flags().StringVar(&packingItem, "item", "", "only packings of this item (ID or title)")
	packingsListCmd.Flags().StringVar(&packingBox, "box", "", "only packings in this box (ID or title)")

	packingsCreateCmd.Flags().IntVarP(&packingAmount, "amount", "n", 1, "number of items packed")

	packingsUpdateCmd.Flags().StringVar(&packingItem, "item", "", "new item (ID or title)")
	packingsUpdateCmd.Flags().StringVar(&packingBox, "box", "", "new box (ID or title)")
	packingsUpdateCmd.Flags().IntVarP(&packingAmount, "amount", "n", 0, "new amount")
}

// packingRefs resolves the --item and --box flags. Unset flags resolve to nil.
func packingRefs(ctx context.Context, api umzug.API) (item, box *uuid.UUID, err error) {
	if packingItem != "" {
		i, err := resolveItem(ctx, api, packingItem)
		if err != nil {
			return nil, nil, err
		}
		item = &i.ID
	}
	if packingBox != "" {
		b, err := resolveBox(ctx, api, packingBox)
		if err != nil {
			return nil, nil, err
		}
		box = &b.ID
	}
	return item, box, nil
}

func runPackingsList(cmd *cobra.Command, args []string) error {
	return withSession(func(s *session.Session) error {
		ctx := cmd.Context()
		item, box, err := packingRefs(ctx, s.Client)
		if err != nil {
			return err
		}

		result, err := s.Client.FetchPackings(item, box).Get(ctx)
		if err != nil {
			return err
		}
		packings, err := result.Get()
		if err != nil {
			return fmt.Errorf("failed to list packings: %w", err)
		}

		packings, err = applyFilter(packings, filter.PackingRecord)
		if err != nil {
			return err
		}
		return renderPackings(packings)
	})
}

func runPackingsCreate(cmd *cobra.Command, args []string) error {
	return withSession(func(s *session.Session) error {
		ctx := cmd.Context()
		item, err := resolveItem(ctx, s.Client, args[0])
		if err != nil {
			return err
		}
		box, err := resolveBox(ctx, s.Client, args[1])
		if err != nil {
			return err
		}

		result, err := s.Client.CreatePacking(ctx, item.ID, box.ID, packingAmount)
		if err != nil {
			return err
		}
		packing, err := result.Get()
		if err != nil {
			return fmt.Errorf("failed to pack %q into %q: %w", item.Title, box.Title, err)
		}

		logger.Info().
			Str("item", item.Title).
			Str("box", box.Title).
			Int("amount", packing.Amount).
			Msg("Packed item")
		return renderPackings([]umzug.Packing{packing})
	})
}

func runPackingsUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "packing")
	if err != nil {
		return err
	}

	var amount *int
	if cmd.Flags().Changed("amount") {
		amount = &packingAmount
	}

	return withSession(func(s *session.Session) error {
		ctx := cmd.Context()
		item, box, err := packingRefs(ctx, s.Client)
		if err != nil {
			return err
		}
		if item == nil && box == nil && amount == nil {
			return fmt.Errorf("nothing to update, set --item, --box and/or --amount")
		}

		result, err := s.Client.UpdatePacking(ctx, id, item, box, amount)
		if err != nil {
			return err
		}
		packing, err := result.Get()
		if err != nil {
			return fmt.Errorf("failed to update packing: %w", err)
		}

		logger.Info().Str("packing", packing.ID.String()).Msg("Updated packing")
		return renderPackings([]umzug.Packing{packing})
	})
}

func runPackingsDelete(cmd *cobra.Command, args []string) error {
	return withSession(func(s *session.Session) error {
		return deleteEach(cmd.Context(), args, "packing", func(ctx context.Context, ref string) (string, error) {
			id, err := parseID(ref, "packing")
			if err != nil {
				return ref, err
			}
			result, err := s.Client.DeletePacking(ctx, id)
			if err != nil {
				return ref, err
			}
			_, err = result.Get()
			return ref, err
		})
	})
}
