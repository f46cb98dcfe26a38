// Package types contains common types used across the application
package types

import "sort"

// Entry is one team's place in the rating table.
type Entry struct {
	Rank   int     `json:"rank"`
	Team   string  `json:"team"`
	Rating float64 `json:"rating"`
}

// Rank orders ratings from highest to lowest. Equal ratings share a rank
// (1, 1, 3) and are listed by team id.
func Rank(ratings map[string]float64) []Entry {
	entries := make([]Entry, 0, len(ratings))
	for team, r := range ratings {
		entries = append(entries, Entry{Team: team, Rating: r})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rating != entries[j].Rating {
			return entries[i].Rating > entries[j].Rating
		}
		return entries[i].Team < entries[j].Team
	})
	for i := range entries {
		if i > 0 && entries[i].Rating == entries[i-1].Rating {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
	return entries
}

// RunSummary describes one rating pipeline run.
type RunSummary struct {
	Games       int    `json:"games"`
	Stored      int    `json:"stored"`
	Imported    int    `json:"imported"`
	Fetched     int    `json:"fetched"`
	Added       int    `json:"added"`
	Rated       int    `json:"rated"`
	Transitions int    `json:"transitions"`
	Warnings    int    `json:"warnings"`
	FetchError  string `json:"fetch_error,omitempty"`
}
