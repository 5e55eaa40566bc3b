package sqlite

import (
	"fmt"

	"github.com/hipotures/todoit/internal/types"
)

// allowedListUpdateFields whitelists column names accepted by UpdateList.
// Field names are interpolated into SET clauses, so anything outside this
// set is rejected before query construction.
var allowedListUpdateFields = map[string]bool{
	"title":       true,
	"description": true,
	"list_type":   true,
	"status":      true,
	"metadata":    true,
}

// allowedItemUpdateFields whitelists column names accepted by UpdateItem
var allowedItemUpdateFields = map[string]bool{
	"content":           true,
	"position":          true,
	"status":            true,
	"completion_states": true,
	"parent_item_id":    true,
	"metadata":          true,
	"started_at":        true,
	"completed_at":      true,
}

// validateItemStatus validates a status value
func validateItemStatus(value interface{}) error {
	if status, ok := value.(string); ok {
		if !types.ItemStatus(status).IsValid() {
			return fmt.Errorf("invalid status: %s", status)
		}
	}
	if status, ok := value.(types.ItemStatus); ok {
		if !status.IsValid() {
			return fmt.Errorf("invalid status: %s", status)
		}
	}
	return nil
}

// validateListStatus validates a list status value
func validateListStatus(value interface{}) error {
	if status, ok := value.(string); ok {
		if !types.ListStatus(status).IsValid() {
			return fmt.Errorf("invalid list status: %s", status)
		}
	}
	if status, ok := value.(types.ListStatus); ok {
		if !status.IsValid() {
			return fmt.Errorf("invalid list status: %s", status)
		}
	}
	return nil
}

// validateContent validates an item content value
func validateContent(value interface{}) error {
	if content, ok := value.(string); ok {
		if len(content) == 0 || len(content) > 1000 {
			return fmt.Errorf("content must be 1-1000 characters")
		}
	}
	return nil
}

// validateTitle validates a list title value
func validateTitle(value interface{}) error {
	if title, ok := value.(string); ok {
		if len(title) == 0 || len(title) > 500 {
			return fmt.Errorf("title must be 1-500 characters")
		}
	}
	return nil
}

// validatePosition validates a position value
func validatePosition(value interface{}) error {
	if pos, ok := value.(int); ok {
		if pos < 1 {
			return fmt.Errorf("position must be 1-based (got %d)", pos)
		}
	}
	return nil
}

// itemFieldValidators maps item field names to their validation functions
var itemFieldValidators = map[string]func(interface{}) error{
	"status":   validateItemStatus,
	"content":  validateContent,
	"position": validatePosition,
}

// listFieldValidators maps list field names to their validation functions
var listFieldValidators = map[string]func(interface{}) error{
	"status": validateListStatus,
	"title":  validateTitle,
}

// validateItemFieldUpdate validates an item field update value
func validateItemFieldUpdate(key string, value interface{}) error {
	if validator, ok := itemFieldValidators[key]; ok {
		return validator(value)
	}
	return nil
}

// validateListFieldUpdate validates a list field update value
func validateListFieldUpdate(key string, value interface{}) error {
	if validator, ok := listFieldValidators[key]; ok {
		return validator(value)
	}
	return nil
}
