// Copyright 2025 Occlab
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package export renders ranked match results for download and
// scripting: flat CSV rows for spreadsheets and lossless JSON for
// downstream tooling.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/occlab/nocmatch/core"
)

var csvHeader = []string{
	"rank", "code", "title", "combined_score", "overall_score", "duty_score", "matched_duties", "url",
}

// WriteCSV writes one row per result in rank order. Matched duties are
// collapsed to a count; use WriteJSON when the full explanation is
// needed.
func WriteCSV(w io.Writer, results []*core.MatchResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i, r := range results {
		row := []string{
			strconv.Itoa(i + 1),
			r.Entity.Code,
			r.Entity.Title,
			formatScore(r.CombinedScore),
			formatScore(r.OverallScore),
			formatScore(r.DutyScore),
			strconv.Itoa(len(r.MatchedDuties)),
			r.Entity.ReferenceURL,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatScore(score float32) string {
	return strconv.FormatFloat(float64(score), 'f', 4, 32)
}

// jsonResult is the JSON shape of one ranked match. The entity
// snapshot is embedded whole so consumers need no second lookup.
type jsonResult struct {
	Rank          int               `json:"rank"`
	Code          string            `json:"code"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	OverallScore  float32           `json:"overall_score"`
	DutyScore     float32           `json:"duty_score"`
	CombinedScore float32           `json:"combined_score"`
	MatchedDuties []jsonMatchedDuty `json:"matched_duties"`
	Keywords      []string          `json:"keywords,omitempty"`
	Duties        []string          `json:"main_duties,omitempty"`
	ExampleTitles []string          `json:"example_titles,omitempty"`
	Requirements  string            `json:"employment_requirements,omitempty"`
	Exclusions    []string          `json:"exclusions,omitempty"`
	URL           string            `json:"url,omitempty"`
}

type jsonMatchedDuty struct {
	Duty    string  `json:"duty"`
	Score   float32 `json:"score"`
	Segment string  `json:"matched_segment"`
}

// WriteJSON writes the full ranked result list, duty explanations and
// entity metadata included, as an indented JSON array.
func WriteJSON(w io.Writer, results []*core.MatchResult) error {
	out := make([]jsonResult, 0, len(results))
	for i, r := range results {
		duties := make([]jsonMatchedDuty, 0, len(r.MatchedDuties))
		for _, d := range r.MatchedDuties {
			duties = append(duties, jsonMatchedDuty{Duty: d.Duty, Score: d.Score, Segment: d.Segment})
		}
		out = append(out, jsonResult{
			Rank:          i + 1,
			Code:          r.Entity.Code,
			Title:         r.Entity.Title,
			Description:   r.Entity.Description,
			OverallScore:  r.OverallScore,
			DutyScore:     r.DutyScore,
			CombinedScore: r.CombinedScore,
			MatchedDuties: duties,
			Keywords:      r.Keywords,
			Duties:        r.Entity.Duties,
			ExampleTitles: r.Entity.ExampleTitles,
			Requirements:  r.Entity.Requirements,
			Exclusions:    r.Entity.Exclusions,
			URL:           r.Entity.ReferenceURL,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
