package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/hipotures/todoit/internal/types"
)

// ItemFormInput collects the fields of the interactive add-item form
type ItemFormInput struct {
	Key     string
	Content string
	Parent  string
}

// RunItemForm shows a terminal form for adding an item. Pre-filled
// values come from flags; the user can adjust them before submitting.
func RunItemForm(input *ItemFormInput) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Item key").
				Description("Short identifier, unique among its siblings").
				Placeholder("e.g., setup-db").
				Value(&input.Key).
				Validate(func(s string) error {
					return types.ValidateItemKey(strings.TrimSpace(s))
				}),

			huh.NewText().
				Title("Content").
				Description("What needs to be done (required)").
				Placeholder("Describe the task...").
				CharLimit(types.MaxContentLength).
				Value(&input.Content).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("content is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("Parent key").
				Description("Make this a subtask of an existing item (optional)").
				Placeholder("leave empty for a root item").
				Value(&input.Parent).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					return types.ValidateItemKey(strings.TrimSpace(s))
				}),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("form cancelled: %w", err)
	}
	input.Key = strings.TrimSpace(input.Key)
	input.Content = strings.TrimSpace(input.Content)
	input.Parent = strings.TrimSpace(input.Parent)
	return nil
}
