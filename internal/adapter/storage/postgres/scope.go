package postgres

import (
	"fmt"

	"finance-tracker/internal/core/domain"
)

// scopeClause renders the ownership predicate for a query. Org scope
// matches the organization's rows; personal scope matches the user's rows
// that belong to no organization. argIdx is the next free placeholder.
func scopeClause(scope domain.Scope, argIdx int) (string, []any) {
	if scope.OrganizationID != nil {
		return fmt.Sprintf("organization_id = $%d", argIdx), []any{*scope.OrganizationID}
	}
	return fmt.Sprintf("user_id = $%d AND organization_id IS NULL", argIdx), []any{scope.UserID}
}
