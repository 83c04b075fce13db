package models

import "fmt"

// Category логическая категория контента сайта
type Category string

const (
	CategoryReleases Category = "releases"
	CategoryLabels   Category = "labels"
	CategoryMedia    Category = "media"
	CategoryPresskit Category = "presskit"
	CategoryClinics  Category = "clinics"
	CategoryBlocks   Category = "blocks"
	CategoryNav      Category = "nav"
	CategoryLinks    Category = "links"
	CategoryLeads    Category = "leads"
)

var categories = []Category{
	CategoryReleases,
	CategoryLabels,
	CategoryMedia,
	CategoryPresskit,
	CategoryClinics,
	CategoryBlocks,
	CategoryNav,
	CategoryLinks,
	CategoryLeads,
}

// Categories возвращает все известные категории в порядке объявления
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory проверяет строку и приводит её к Category
func ParseCategory(s string) (Category, error) {
	for _, c := range categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Filter фильтр по равенству: одно значение - eq, несколько - in
type Filter struct {
	Column string
	Values []any
}

func Eq(column string, value any) *Filter {
	return &Filter{Column: column, Values: []any{value}}
}

func In(column string, values ...any) *Filter {
	return &Filter{Column: column, Values: values}
}

// Candidate один источник (таблица или view) в списке кандидатов.
// Filter кандидата перекрывает Filter запроса.
type Candidate struct {
	Name   string
	Filter *Filter
}

// ContentQuery запрос одной категории контента
type ContentQuery struct {
	Category   Category
	Candidates []Candidate
	OrderField string
	Filter     *Filter
}

// NewQuery строит запрос с одинаковым фильтром для всех кандидатов
func NewQuery(category Category, orderField string, names ...string) ContentQuery {
	q := ContentQuery{
		Category:   category,
		OrderField: orderField,
		Candidates: make([]Candidate, 0, len(names)),
	}
	for _, n := range names {
		q.Candidates = append(q.Candidates, Candidate{Name: n})
	}
	return q
}

func (q ContentQuery) FilterFor(c Candidate) *Filter {
	if c.Filter != nil {
		return c.Filter
	}
	return q.Filter
}

func (q ContentQuery) Names() []string {
	names := make([]string, 0, len(q.Candidates))
	for _, c := range q.Candidates {
		names = append(names, c.Name)
	}
	return names
}
