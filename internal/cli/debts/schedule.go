package debts

import (
	"context"
	"fmt"

	"github.com/julianstephens/finlit/internal/cli"
	"github.com/julianstephens/finlit/internal/models"
	"github.com/julianstephens/finlit/internal/money"
)

func printSchedule(ctx *cli.Context, entries []models.ScheduleEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(ctx.Out, "No installments scheduled.")
		return
	}
	rows := make([][]string, len(entries))
	for i, e := range entries {
		paid := ""
		if e.IsPaid {
			paid = "✓"
		}
		rows[i] = []string{
			e.ID,
			e.DueDate,
			money.Format(e.PlannedPayment),
			money.Format(e.PlannedInterest),
			money.Format(e.PlannedPrincipal),
			paid,
			cli.Optional(e.TransactionID),
		}
	}
	fmt.Fprintln(ctx.Out, cli.RenderTable(
		[]string{"ID", "Due", "Payment", "Interest", "Principal", "Paid", "Transaction"}, rows, 0, 6))
}

type ScheduleGenerateCmd struct {
	ID     string `arg:"" help:"Debt ID."`
	Months *int   `short:"n" help:"Months to project. Defaults to planning.months_ahead."`
}

func (c *ScheduleGenerateCmd) Validate() error {
	if c.Months != nil && *c.Months < 1 {
		return fmt.Errorf("--months must be at least 1, got %d", *c.Months)
	}
	return nil
}

func (c *ScheduleGenerateCmd) Run(ctx *cli.Context) error {
	if err := c.Validate(); err != nil {
		return err
	}
	months := 0
	if c.Months != nil {
		months = *c.Months
	}
	result, err := ctx.Planning.Generate(context.Background(), c.ID, months)
	if err != nil {
		return err
	}
	if len(result.Entries) == 0 {
		fmt.Fprintln(ctx.Out, "Schedule is already up to date.")
	} else {
		fmt.Fprintf(ctx.Out, "Generated %d installment(s):\n", len(result.Entries))
		printSchedule(ctx, result.Entries)
	}
	cli.PrintWarnings(ctx, result.Warnings)
	return nil
}

type ScheduleListCmd struct {
	ID string `arg:"" help:"Debt ID."`
}

func (c *ScheduleListCmd) Run(ctx *cli.Context) error {
	entries, err := ctx.Planning.ListSchedule(context.Background(), c.ID)
	if err != nil {
		return err
	}
	printSchedule(ctx, entries)
	return nil
}

type DebtPayCmd struct {
	ScheduleID string `arg:"" help:"Installment (schedule entry) ID."`
	Account    string `short:"a" help:"Ledger account to record the payment against."`
	Category   string `short:"c" help:"Ledger category for the expense."`
	Yes        bool   `short:"y" help:"Skip the confirmation prompt."`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (c *DebtPayCmd) Run(ctx *cli.Context) error {
	if c.Category != "" && c.Account == "" {
		return fmt.Errorf("--category requires --account")
	}
	if !c.Yes {
		desc := "No ledger transaction will be recorded."
		if c.Account != "" {
			desc = "An expense will be recorded against account " + c.Account + "."
		}
		ok, err := cli.Confirm("Mark installment "+c.ScheduleID+" as paid?", desc)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(ctx.Out, "Cancelled.")
			return nil
		}
	}

	result, err := ctx.Planning.Confirm(context.Background(), c.ScheduleID, optional(c.Account), optional(c.Category))
	if err != nil {
		return err
	}
	e := result.Entry
	fmt.Fprintf(ctx.Out, "Confirmed payment of %s due %s\n", money.Format(e.PlannedPayment), e.DueDate)
	if e.TransactionID != nil {
		fmt.Fprintf(ctx.Out, "  Ledger transaction: %s\n", *e.TransactionID)
	}
	cli.PrintWarnings(ctx, result.Warnings)
	return nil
}
