package storage

import (
	"strings"
)

// likeEscape is appended to every LIKE comparison built by conditions.
const likeEscape = ` ESCAPE '\'`

var likeReplacer = strings.NewReplacer(
	`\`, `\\`,
	`%`, `\%`,
	`_`, `\_`,
)

// sanitizeSearchTerm escapes SQLite LIKE wildcards so user text matches literally.
func sanitizeSearchTerm(term string) string {
	return likeReplacer.Replace(term)
}

// containsPattern wraps term for substring matching.
func containsPattern(term string) string {
	return "%" + sanitizeSearchTerm(term) + "%"
}

// conditions accumulates WHERE clauses and their positional arguments.
type conditions struct {
	clauses []string
	args    []any
}

func (c *conditions) add(clause string, args ...any) {
	c.clauses = append(c.clauses, clause)
	c.args = append(c.args, args...)
}

// like adds a substring match on column; empty terms do not filter.
func (c *conditions) like(column, term string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}
	c.add(column+" LIKE ?"+likeEscape, containsPattern(term))
}

// area filters on the p/d aliases of the province and district joins.
func (c *conditions) area(a Area) {
	c.like("p.Province_Name", a.Province)
	c.like("d.District_Name", a.District)
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}
