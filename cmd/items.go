package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/umzug/filter"
	"github.com/s0up4200/umzug/session"
	"github.com/s0up4200/umzug/umzug"
)

var (
	itemPriority string
	itemTitle    string
)

// itemsCmd represents the items command
var itemsCmd = &cobra.Command{
	Use:     "items",
	Aliases: []string{"item"},
	Short:   "Manage items",
}

var itemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List items",
	Long: `List all items with their priority and the boxes they are packed in.

Filter expressions see Title, Priority, Amount and Packings, e.g.
  umzug items list --filter 'urgent("standard") and Packings == 0'`,
	Args: cobra.NoArgs,
	RunE: runItemsList,
}

var itemsCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create an item",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemsCreate,
}

var itemsUpdateCmd = &cobra.Command{
	Use:   "update <item>",
	Short: "Change the title or priority of an item",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemsUpdate,
}

var itemsDeleteCmd = &cobra.Command{
	Use:   "delete <item>...",
	Short: "Delete items",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runItemsDelete,
}

func init() {
	rootCmd.AddCommand(itemsCmd)
	itemsCmd.AddCommand(itemsListCmd, itemsCreateCmd, itemsUpdateCmd, itemsDeleteCmd)

	addFilterFlags(itemsListCmd)
	itemsCreateCmd.Flags().StringVar(&itemPriority, "priority", "", "priority (immediate, standard, convenience, long_term)")
	itemsUpdateCmd.Flags().StringVar(&itemPriority, "priority", "", "new priority")
	itemsUpdateCmd.Flags().StringVar(&itemTitle, "title", "", "new title")
}

func runItemsList(cmd *cobra.Command, args []string) error {
	return withSession(func(s *session.Session) error {
		items, err := loadItems(cmd.Context(), s.Client)
		if err != nil {
			return err
		}
		items, err = applyFilter(items, filter.ItemRecord)
		if err != nil {
			return err
		}
		return renderItems(items)
	})
}

func runItemsCreate(cmd *cobra.Command, args []string) error {
	var priority umzug.Priority
	if itemPriority != "" {
		var err error
		if priority, err = umzug.ParsePriority(itemPriority); err != nil {
			return err
		}
	}

	return withSession(func(s *session.Session) error {
		result, err := s.Client.CreateItem(cmd.Context(), args[0], priority)
		if err != nil {
			return err
		}
		item, err := result.Get()
		if err != nil {
			return fmt.Errorf("failed to create item %q: %w", args[0], err)
		}

		logger.Info().Str("item", item.Title).Str("priority", item.PriorityLabel()).Msg("Created item")
		return renderItems([]umzug.Item{item})
	})
}

func runItemsUpdate(cmd *cobra.Command, args []string) error {
	var title *string
	var priority *umzug.Priority

	if cmd.Flags().Changed("title") {
		title = &itemTitle
	}
	if cmd.Flags().Changed("priority") {
		p, err := umzug.ParsePriority(itemPriority)
		if err != nil {
			return err
		}
		priority = &p
	}
	if title == nil && priority == nil {
		return fmt.Errorf("nothing to update, set --title and/or --priority")
	}

	return withSession(func(s *session.Session) error {
		ctx := cmd.Context()
		item, err := resolveItem(ctx, s.Client, args[0])
		if err != nil {
			return err
		}

		result, err := s.Client.UpdateItem(ctx, item.ID, title, priority)
		if err != nil {
			return err
		}
		updated, err := result.Get()
		if err != nil {
			return fmt.Errorf("failed to update item %q: %w", item.Title, err)
		}

		logger.Info().Str("item", updated.Title).Msg("Updated item")
		return renderItems([]umzug.Item{updated})
	})
}

func runItemsDelete(cmd *cobra.Command, args []string) error {
	return withSession(func(s *session.Session) error {
		return deleteEach(cmd.Context(), args, "item", func(ctx context.Context, ref string) (string, error) {
			item, err := resolveItem(ctx, s.Client, ref)
			if err != nil {
				return ref, err
			}
			result, err := s.Client.DeleteItem(ctx, item.ID)
			if err != nil {
				return item.Title, err
			}
			_, err = result.Get()
			return item.Title, err
		})
	})
}
