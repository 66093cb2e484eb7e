package directory

import (
	"strconv"
	"strings"
)

// Columns is the public-safe projection. Phone and email never leave the
// store through the directory.
var Columns = []string{
	"id", "full_name", "avatar_url", "degree", "branch", "graduation_year",
	"employment_type", "company", "designation", "city", "country",
	"linkedin", "interests",
}

// eligibility holds for every row the directory may return.
var eligibility = []string{
	"onboarded = TRUE",
	"moderation = 'approved'",
	"is_public = TRUE",
}

// searchColumns are matched by the free-text q filter, any one sufficing.
var searchColumns = []string{
	"full_name", "company", "city", "country", "branch", "designation", "degree",
}

// Query is a parameterized count and page statement pair.
type Query struct {
	CountSQL  string
	CountArgs []any
	PageSQL   string
	PageArgs  []any
}

type builder struct {
	where []string
	args  []any
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *builder) add(cond string) {
	b.where = append(b.where, cond)
}

func ilike(col, placeholder string) string {
	return col + ` ILIKE ` + placeholder + ` ESCAPE '\'`
}

// Build translates filters into SQL. Every user value is bound as a
// parameter; LIKE metacharacters in substring filters match literally.
func Build(f Filters) Query {
	b := &builder{}
	for _, c := range eligibility {
		b.add(c)
	}

	if f.Degree != "" {
		b.add("degree = " + b.arg(f.Degree))
	}
	if f.Branch != "" {
		b.add("branch = " + b.arg(f.Branch))
	}
	if f.Company != "" {
		b.add(ilike("company", b.arg(containsPattern(f.Company))))
	}
	if f.Location != "" {
		p := b.arg(containsPattern(f.Location))
		b.add("(" + ilike("city", p) + " OR " + ilike("country", p) + ")")
	}
	if f.Year > 0 {
		b.add("graduation_year = " + b.arg(f.Year))
	}
	if f.Employment != "" {
		b.add("employment_type = " + b.arg(f.Employment))
	}
	if f.Interest != "" {
		b.add(b.arg(f.Interest) + " = ANY(interests)")
	}
	if f.Q != "" {
		p := b.arg(containsPattern(f.Q))
		ors := make([]string, len(searchColumns))
		for i, col := range searchColumns {
			ors[i] = ilike(col, p)
		}
		b.add("(" + strings.Join(ors, " OR ") + ")")
	}

	where := " FROM profiles WHERE " + strings.Join(b.where, " AND ")
	countArgs := append([]any(nil), b.args...)

	limit := b.arg(PageSize)
	offset := b.arg(Offset(f.Page))

	return Query{
		CountSQL:  "SELECT count(*)" + where,
		CountArgs: countArgs,
		PageSQL: "SELECT " + strings.Join(Columns, ", ") + where +
			" ORDER BY full_name ASC NULLS LAST, id ASC LIMIT " + limit + " OFFSET " + offset,
		PageArgs: b.args,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern is a case-insensitive substring pattern for s.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
