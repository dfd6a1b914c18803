package main

import (
	"fmt"
	"io"

	"supplychain/internal/client"
	"supplychain/internal/inventory"
	"supplychain/internal/models"
	"supplychain/internal/tui"

	"github.com/charmbracelet/bubbles/table"
	"github.com/spf13/cobra"
)

func newItemsCmd(root *rootOptions) *cobra.Command {
	var (
		criteria  inventory.Criteria
		status    string
		threshold int
		low       bool
	)

	cmd := &cobra.Command{
		Use:   "items",
		Short: "List inventory items once, filtered by search term, category or stock status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			parsed, err := inventory.ParseStatus(status)
			if err != nil {
				return err
			}
			criteria.Status = parsed

			c := client.New(cfg.Client)
			var items []models.Item
			switch {
			case cmd.Flags().Changed("threshold"):
				items, err = c.LowStockBelow(cmd.Context(), threshold)
			case low:
				items, err = c.LowStock(cmd.Context())
			default:
				items, err = c.ListItems(cmd.Context(), criteria)
			}
			if err != nil {
				return err
			}
			printItems(cmd.OutOrStdout(), items)
			return nil
		},
	}

	cmd.Flags().StringVar(&criteria.SearchTerm, "search", "", "match name, SKU or supplier")
	cmd.Flags().StringVar(&criteria.Category, "category", inventory.All, "category, or all")
	cmd.Flags().StringVar(&status, "status", inventory.All, "in_stock, low_stock, out_of_stock or all")
	cmd.Flags().BoolVar(&low, "low", false, "only items that are low or out of stock")
	cmd.Flags().IntVar(&threshold, "threshold", 0, "only items with at most this quantity")
	return cmd
}

func printItems(w io.Writer, items []models.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No items match.")
		return
	}

	rows := tui.Rows(items)
	for i, item := range items {
		rows[i] = append(rows[i], item.Price.StringFixed(2))
	}
	columns := []table.Column{
		{Title: "Name", Width: 24},
		{Title: "SKU", Width: 10},
		{Title: "Qty", Width: 6},
		{Title: "Min", Width: 6},
		{Title: "Status", Width: 13},
		{Title: "Supplier", Width: 16},
		{Title: "Location", Width: 14},
		{Title: "Price", Width: 10},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+3),
	)
	fmt.Fprintln(w, t.View())
	fmt.Fprintf(w, "%d items\n", len(items))
}
