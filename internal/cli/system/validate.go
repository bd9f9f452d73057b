package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/finlit/internal/cli"
	"github.com/julianstephens/finlit/internal/models"
	"github.com/julianstephens/finlit/internal/validation"
)

type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	result, err := validate(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, result.FormatReport())
	return nil
}

func snapshot(ctx *cli.Context) (validation.Snapshot, error) {
	bg := context.Background()
	s := validation.Snapshot{Schedules: map[string][]models.ScheduleEntry{}}

	var err error
	if s.Debts, err = ctx.Planning.ListDebts(bg); err != nil {
		return s, err
	}
	for _, d := range s.Debts {
		if s.Schedules[d.ID], err = ctx.Planning.ListSchedule(bg, d.ID); err != nil {
			return s, err
		}
	}
	if s.Reminders, err = ctx.Reminders.List(bg); err != nil {
		return s, err
	}
	return s, nil
}

func validate(ctx *cli.Context) (validation.ValidationResult, error) {
	s, err := snapshot(ctx)
	if err != nil {
		return validation.ValidationResult{}, err
	}
	v := validation.New()
	v.Now = ctx.Reminders.Now
	return v.Validate(s), nil
}

// splitConflicts separates data conflicts from advisory ones.
func splitConflicts(result validation.ValidationResult) (data, advisory []validation.Conflict) {
	for _, c := range result.Conflicts {
		if c.Type.Advisory() {
			advisory = append(advisory, c)
		} else {
			data = append(data, c)
		}
	}
	return data, advisory
}
