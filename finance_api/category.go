package finance_api

import (
	"context"
	"fmt"
	"net/http"
)

// CategoriesByType lists the selectable categories for one transaction type,
// grouped by their display group name.
func (c *Client) CategoriesByType(ctx context.Context, typ TransactionType) ([]CategoryGroup, error) {
	groups := []CategoryGroup{}
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/categories/type/%s", typ), true, nil, &groups)
	if err != nil {
		return nil, err
	}

	return groups, nil
}

// FlattenGroups collapses grouped categories into one list, preserving order.
func FlattenGroups(groups []CategoryGroup) []Category {
	cats := []Category{}
	for _, group := range groups {
		for _, cat := range group.Categories {
			item := cat
			if item.GroupName == "" {
				item.GroupName = group.Name
			}
			cats = append(cats, item)
		}
	}

	return cats
}
