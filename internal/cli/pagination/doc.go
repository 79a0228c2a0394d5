// Package pagination provides page-based pagination helpers shared by the
// browse and page commands.
//
// This package contains:
//   - Params: --page/--page-size flag values and validation
//   - Meta: metadata describing one page of a server-paginated collection
//
// Pages are 1-based. The record at local index i of page p has global
// position (p-1)*pageSize + i.
package pagination
