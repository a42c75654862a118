package graph

import "context"

// TitleUpdate carries the derived job-title properties for one person.
type TitleUpdate struct {
	ID          string
	Title       string
	Canon       string
	Short       string
	Snake       string
	JobTokens   []string
	CanonTokens []string
}

// UpdatePersonTitles batch-writes job-title properties, leaving all other
// person properties untouched. Returns the number of matched persons.
func (s *Store) UpdatePersonTitles(ctx context.Context, updates []TitleUpdate) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	payload := make([]map[string]any, 0, len(updates))
	for _, u := range updates {
		payload = append(payload, map[string]any{
			"id":          u.ID,
			"title":       u.Title,
			"canon":       u.Canon,
			"short":       u.Short,
			"snake":       u.Snake,
			"jobTokens":   u.JobTokens,
			"canonTokens": u.CanonTokens,
		})
	}
	rows, err := s.writeQuery(ctx, `
		UNWIND $rows AS row
		MATCH (p:Person {id: row.id})
		SET p.jobTitle = row.title,
		    p.jobTitleCanon = row.canon,
		    p.jobTitleCanonShort = row.short,
		    p.jobTitleSnake = row.snake,
		    p.jobTitleTokens = row.jobTokens,
		    p.jobTitleCanonTokens = row.canonTokens
		RETURN count(p) AS updated`,
		map[string]any{"rows": payload})
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return asInt(rows[0]["updated"]), nil
}
