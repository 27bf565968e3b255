package indices

import (
	"encoding/json"
	"strings"

	"stackrent/client/es"
	"stackrent/domain"
	"stackrent/session"
)

type StackSearchQuery struct {
	Name       string `form:"name" json:"name"`
	Type       string `form:"type" json:"type"`
	ActiveOnly bool   `form:"activeOnly" json:"activeOnly"`
}

func (ix *Indexer) SearchStacks(q *StackSearchQuery, sec *session.Session) ([]domain.Stack, error) {
	result, err := ix.es.Search(sec.Context, StackIndexName, BuildStackSearchQuery(q))
	if err != nil {
		return nil, err
	}

	stacks := make([]domain.Stack, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		stack := domain.Stack{}
		if err := json.NewDecoder(strings.NewReader(string(hit.Source))).Decode(&stack); err != nil {
			return nil, err
		}
		stacks = append(stacks, stack)
	}
	return stacks, nil
}

func BuildStackSearchQuery(q *StackSearchQuery) es.H {
	filters := make([]es.H, 0, 3)
	if q.Name != "" {
		filters = append(filters, es.H{"match": es.H{"name": es.H{"query": q.Name, "operator": "AND"}}})
	}
	if q.Type != "" {
		filters = append(filters, es.H{"term": es.H{"type": q.Type}})
	}
	if q.ActiveOnly {
		filters = append(filters, es.H{"term": es.H{"active": true}})
	}

	sorts := []es.H{{"createTime": es.H{"order": "desc"}}}
	return es.H{
		"size":  1000,
		"query": es.H{"bool": es.H{"filter": filters}},
		"sort":  sorts,
	}
}
