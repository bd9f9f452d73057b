package debts

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/julianstephens/finlit/internal/cli"
	"github.com/julianstephens/finlit/internal/models"
	"github.com/julianstephens/finlit/internal/money"
)

type DebtCmd struct {
	Add      DebtAddCmd    `cmd:"" help:"Add a debt account."`
	List     DebtListCmd   `cmd:"" help:"List debt accounts."`
	Show     DebtShowCmd   `cmd:"" help:"Show a debt account and its schedule."`
	Update   DebtUpdateCmd `cmd:"" help:"Update a debt account."`
	Delete   DebtDeleteCmd `cmd:"" help:"Delete a debt account and its schedule."`
	Schedule struct {
		Generate ScheduleGenerateCmd `cmd:"" help:"Project upcoming installments."`
		List     ScheduleListCmd     `cmd:"" help:"List installments." default:"withargs"`
	} `cmd:"" help:"Manage repayment schedules."`
	Pay DebtPayCmd `cmd:"" help:"Confirm an installment as paid."`
}

type DebtAddCmd struct {
	Name       string `arg:"" help:"Debt name."`
	Kind       string `short:"k" enum:"loan,credit_card,overdraft,other" default:"other" help:"Debt kind (${enum})."`
	Principal  string `short:"p" required:"" help:"Amount owed, e.g. 1200.00."`
	Rate       string `short:"r" default:"0" help:"Annual interest rate in percent, e.g. 19.9."`
	MinPayment string `short:"m" required:"" help:"Minimum monthly payment."`
	DueDay     int    `short:"d" required:"" help:"Day of month the payment is due (1-31)."`
	StartDate  string `short:"s" help:"Start date (YYYY-MM-DD). Defaults to today."`
}

func (c *DebtAddCmd) Run(ctx *cli.Context) error {
	principal, err := money.Parse(c.Principal)
	if err != nil {
		return err
	}
	rate, err := money.Parse(c.Rate)
	if err != nil {
		return err
	}
	payment, err := money.Parse(c.MinPayment)
	if err != nil {
		return err
	}

	debt, err := ctx.Planning.AddDebt(context.Background(), models.DebtAccountInput{
		Name:         c.Name,
		Kind:         models.DebtKind(c.Kind),
		Principal:    principal,
		InterestRate: rate,
		MinPayment:   payment,
		DueDay:       c.DueDay,
		StartDate:    c.StartDate,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "Added debt: %s (ID: %s)\n", debt.Name, debt.ID)
	return nil
}

type DebtListCmd struct{}

func (c *DebtListCmd) Run(ctx *cli.Context) error {
	list, err := ctx.Planning.ListDebts(context.Background())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(ctx.Out, "No debts found.")
		return nil
	}

	rows := make([][]string, len(list))
	for i, d := range list {
		rows[i] = []string{
			d.ID,
			cli.Truncate(d.Name, 28),
			string(d.Kind),
			money.Format(d.CurrentBalance),
			d.InterestRate.String() + "%",
			money.Format(d.MinPayment),
			strconv.Itoa(d.DueDay),
		}
	}
	fmt.Fprintln(ctx.Out, cli.RenderTable(
		[]string{"ID", "Name", "Kind", "Balance", "APR", "Min payment", "Due day"}, rows, 0))
	return nil
}

type DebtShowCmd struct {
	ID string `arg:"" help:"Debt ID."`
}

func (c *DebtShowCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	d, err := ctx.Planning.GetDebt(bg, c.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "%s (%s)\n", d.Name, d.Kind)
	fmt.Fprintf(ctx.Out, "  ID:              %s\n", d.ID)
	fmt.Fprintf(ctx.Out, "  Principal:       %s\n", money.Format(d.Principal))
	fmt.Fprintf(ctx.Out, "  Current balance: %s\n", money.Format(d.CurrentBalance))
	fmt.Fprintf(ctx.Out, "  Interest rate:   %s%%\n", d.InterestRate.String())
	fmt.Fprintf(ctx.Out, "  Min payment:     %s\n", money.Format(d.MinPayment))
	fmt.Fprintf(ctx.Out, "  Due day:         %d\n", d.DueDay)
	fmt.Fprintf(ctx.Out, "  Start date:      %s\n", d.StartDate)

	entries, err := ctx.Planning.ListSchedule(bg, d.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out)
	printSchedule(ctx, entries)
	return nil
}

type DebtUpdateCmd struct {
	ID         string `arg:"" help:"Debt ID."`
	Name       string `help:"New name."`
	Kind       string `help:"New kind (loan, credit_card, overdraft, other)."`
	Principal  string `help:"New principal."`
	Rate       string `help:"New annual interest rate in percent."`
	MinPayment string `help:"New minimum monthly payment."`
	DueDay     int    `help:"New due day (1-31)."`
	StartDate  string `help:"New start date (YYYY-MM-DD)."`
	Balance    string `help:"Override the current balance."`
}

func optionalDecimal(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := money.Parse(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DebtUpdateCmd) update() (models.DebtAccountUpdate, error) {
	var u models.DebtAccountUpdate
	var err error
	if c.Name != "" {
		u.Name = &c.Name
	}
	if c.Kind != "" {
		k := models.DebtKind(c.Kind)
		u.Kind = &k
	}
	if u.Principal, err = optionalDecimal(c.Principal); err != nil {
		return u, err
	}
	if u.InterestRate, err = optionalDecimal(c.Rate); err != nil {
		return u, err
	}
	if u.MinPayment, err = optionalDecimal(c.MinPayment); err != nil {
		return u, err
	}
	if u.CurrentBalance, err = optionalDecimal(c.Balance); err != nil {
		return u, err
	}
	if c.DueDay != 0 {
		u.DueDay = &c.DueDay
	}
	if c.StartDate != "" {
		u.StartDate = &c.StartDate
	}
	return u, nil
}

func (c *DebtUpdateCmd) Run(ctx *cli.Context) error {
	u, err := c.update()
	if err != nil {
		return err
	}
	d, err := ctx.Planning.UpdateDebt(context.Background(), c.ID, u)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Updated debt: %s\n", d.Name)
	return nil
}

type DebtDeleteCmd struct {
	ID  string `arg:"" help:"Debt ID."`
	Yes bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *DebtDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	d, err := ctx.Planning.GetDebt(bg, c.ID)
	if err != nil {
		return err
	}
	if !c.Yes {
		ok, err := cli.Confirm("Delete "+d.Name+"?", "Its schedule is deleted too. Reminders stay.")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(ctx.Out, "Cancelled.")
			return nil
		}
	}
	if err := ctx.Planning.DeleteDebt(bg, c.ID); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Deleted debt: %s\n", d.Name)
	return nil
}
