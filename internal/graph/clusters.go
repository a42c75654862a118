package graph

import "context"

// TitleCount is one row of the /clusters listing.
type TitleCount struct {
	JobTitle   string `json:"jobTitle"`
	TotalCount int64  `json:"totalCount"`
}

// ClusterSummary describes one skills-layer community.
type ClusterSummary struct {
	Community int64    `json:"community"`
	Size      int64    `json:"size"`
	TopSkills []string `json:"topSkills"`
	TopTitles []string `json:"topTitles"`
}

// JobTitleCounts lists canonical job titles by frequency.
func (s *Store) JobTitleCounts(ctx context.Context) ([]TitleCount, error) {
	rows, err := s.Query(ctx, `
		MATCH (p:Person)
		RETURN p.jobTitleCanon AS jobTitle, count(*) AS totalCount
		ORDER BY totalCount DESC`, nil)
	if err != nil {
		return nil, err
	}
	out := make([]TitleCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, TitleCount{
			JobTitle:   asString(r["jobTitle"]),
			TotalCount: asInt(r["totalCount"]),
		})
	}
	return out, nil
}

// ClusterSummaries returns top skills and raw titles per skills-layer
// community. Frequency ordering is done in plain Cypher, no APOC.
func (s *Store) ClusterSummaries(ctx context.Context, topN int) ([]ClusterSummary, error) {
	rows, err := s.Query(ctx, `
		MATCH (p:Person)
		WHERE p.communitySkills IS NOT NULL
		WITH p.communitySkills AS comm, collect(p) AS members
		WITH comm, members, size(members) AS size
		UNWIND members AS m
		UNWIND coalesce(m.skills, []) AS sskill
		WITH comm, size, toLower(trim(sskill)) AS skill
		WHERE skill <> ''
		WITH comm, size, skill, count(*) AS sc
		ORDER BY comm, sc DESC, skill
		WITH comm, size, collect(skill)[0..$topN] AS topSkills
		MATCH (m2:Person {communitySkills: comm})
		WITH comm, size, topSkills,
		     toLower(coalesce(m2.title, m2.jobTitleCanon, '')) AS rawTitle
		WHERE trim(rawTitle) <> ''
		WITH comm, size, topSkills, rawTitle, count(*) AS tc
		ORDER BY comm, tc DESC, rawTitle
		WITH comm, size, topSkills, collect(rawTitle)[0..$topN] AS topTitles
		RETURN comm AS community, size, topSkills, topTitles
		ORDER BY size DESC`,
		map[string]any{"topN": topN})
	if err != nil {
		return nil, err
	}
	out := make([]ClusterSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, ClusterSummary{
			Community: asInt(r["community"]),
			Size:      asInt(r["size"]),
			TopSkills: asStrings(r["topSkills"]),
			TopTitles: asStrings(r["topTitles"]),
		})
	}
	return out, nil
}

// ClusterMembers lists one community's members by descending bridge
// potential on the skills layer.
func (s *Store) ClusterMembers(ctx context.Context, community int64, limit int) ([]PersonCard, error) {
	rows, err := s.Query(ctx, `
		MATCH (p:Person {communitySkills: $c})
		RETURN p.id AS id,
		       coalesce(p.name, p.full_name, p.id) AS name,
		       coalesce(p.title, p.jobTitleCanon, '') AS title,
		       coalesce(p.company, '') AS company,
		       [x IN coalesce(p.skills, []) WHERE x IS NOT NULL] AS skills,
		       coalesce(p.bridgePotentialSkills, 0.0) AS bridgePotential
		ORDER BY bridgePotential DESC
		LIMIT $limit`,
		map[string]any{"c": community, "limit": limit})
	if err != nil {
		return nil, err
	}
	out := make([]PersonCard, 0, len(rows))
	for _, r := range rows {
		out = append(out, PersonCard{
			ID:              asString(r["id"]),
			Name:            asString(r["name"]),
			Title:           asString(r["title"]),
			Company:         asString(r["company"]),
			Skills:          asStrings(r["skills"]),
			BridgePotential: asFloat(r["bridgePotential"]),
		})
	}
	return out, nil
}
