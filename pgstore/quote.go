// Package pgstore is the Postgres/pgx/pgvector-backed implementation of
// every store-facing interface searchcore needs: category/location
// matching, vector and lexical listing retrieval, HotCache source queries,
// the category tree, and the semantic cache. It follows the teacher's pg/ and
// search/ packages: pgx/v5 named-args, hand-quoted identifiers, and
// pgvector-go for halfvec parameter binding.
package pgstore

import (
	"fmt"
	"strings"
)

// quoteIdent validates and quotes a SQL identifier (schema/table/column
// name), rejecting anything outside [A-Za-z0-9_] the way the teacher's
// pg/models.go and search/search.go do.
func quoteIdent(ident string) (string, error) {
	ident = strings.TrimSpace(ident)
	if ident == "" {
		return "", fmt.Errorf("empty identifier")
	}
	for _, r := range ident {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			continue
		}
		return "", fmt.Errorf("invalid identifier %q", ident)
	}
	return `"` + ident + `"`, nil
}

// regconfigForLanguage maps a searchcore language tag to the Postgres
// text-search configuration name, mirroring the teacher's
// searchkit_regconfig_for_language SQL function but resolved in Go since
// this core owns no migration of its own.
func regconfigForLanguage(language string) string {
	if language == "ar" {
		return "arabic"
	}
	return "english"
}
