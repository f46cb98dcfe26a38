package scoreboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/nbaelo/internal/domain/season"
)

var lineScoreHeaders = []string{"GAME_DATE_EST", "GAME_SEQUENCE", "GAME_ID", "TEAM_ID", "TEAM_ABBREVIATION", "PTS"}

func payload(rows ...[]any) map[string]any {
	return map[string]any{
		"resultSets": []map[string]any{
			{"name": "GameHeader", "headers": []string{"GAME_ID"}, "rowSet": [][]any{}},
			{"name": "LineScore", "headers": lineScoreHeaders, "rowSet": rows},
		},
	}
}

// fakeScoreboard serves a fixed body per gameDate; unknown dates get an
// empty line score, dates in fail get a 500.
func fakeScoreboard(byDate map[string]map[string]any, fail map[string]bool, calls *[]string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := r.URL.Query().Get("gameDate")
		*calls = append(*calls, d)
		if fail[d] {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		body, ok := byDate[d]
		if !ok {
			body = payload()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClientDay(t *testing.T) {
	Convey("Given a scoreboard with two finished games and one pending", t, func() {
		var calls []string
		srv := fakeScoreboard(map[string]map[string]any{
			"10/17/2017": payload(
				[]any{"2017-10-17T00:00:00", 1, "0021700001", 1, "BOS", 99},
				[]any{"2017-10-17T00:00:00", 1, "0021700001", 2, "CLE", 102},
				[]any{"2017-10-17T00:00:00", 2, "0021700002", 3, "HOU", 122},
				[]any{"2017-10-17T00:00:00", 2, "0021700002", 4, "GSW", 121},
				[]any{"2017-10-17T00:00:00", 3, "0021700003", 5, "PHX", nil},
				[]any{"2017-10-17T00:00:00", 3, "0021700003", 6, "POR", nil},
			),
		}, nil, &calls)
		defer srv.Close()

		c := New(srv.URL, WithTimeout(2*time.Second))
		games, err := c.Day(context.Background(), day(2017, time.October, 17))
		So(err, ShouldBeNil)

		Convey("It sends the date as MM/DD/YYYY", func() {
			So(calls, ShouldResemble, []string{"10/17/2017"})
		})

		Convey("Rows pair away then home and pending games are skipped", func() {
			So(games, ShouldHaveLength, 2)
			So(games[0].TeamAway, ShouldEqual, "BOS")
			So(games[0].TeamHome, ShouldEqual, "CLE")
			So(games[0].PtsAway, ShouldEqual, 99)
			So(games[0].PtsHome, ShouldEqual, 102)
			So(games[0].GameID, ShouldEqual, "0021700001")
			So(games[0].Date.Equal(day(2017, time.October, 17)), ShouldBeTrue)
			So(games[1].TeamHome, ShouldEqual, "GSW")
			So(games[1].Rated(), ShouldBeFalse)
		})
	})

	Convey("Given a failing scoreboard", t, func() {
		var calls []string
		srv := fakeScoreboard(nil, map[string]bool{"10/17/2017": true}, &calls)
		defer srv.Close()

		_, err := New(srv.URL).Day(context.Background(), day(2017, time.October, 17))
		So(errors.Is(err, ErrUpstream), ShouldBeTrue)
	})
}

func TestParseLineScore(t *testing.T) {
	Convey("parseLineScore rejects payloads it cannot pair", t, func() {
		d := day(2017, time.October, 17)

		Convey("No line score set", func() {
			_, err := parseLineScore(response{}, d)
			So(errors.Is(err, ErrPayload), ShouldBeTrue)
		})

		Convey("Missing column", func() {
			_, err := parseLineScore(response{ResultSets: []resultSet{{Name: lineScore, Headers: []string{"GAME_ID"}}}}, d)
			So(errors.Is(err, ErrPayload), ShouldBeTrue)
		})

		Convey("Odd row count", func() {
			set := resultSet{Name: lineScore, Headers: lineScoreHeaders, RowSet: [][]any{
				{"2017-10-17T00:00:00", 1.0, "1", 1.0, "BOS", 99.0},
			}}
			_, err := parseLineScore(response{ResultSets: []resultSet{set}}, d)
			So(errors.Is(err, ErrPayload), ShouldBeTrue)
		})

		Convey("Rows from different games", func() {
			set := resultSet{Name: lineScore, Headers: lineScoreHeaders, RowSet: [][]any{
				{"2017-10-17T00:00:00", 1.0, "1", 1.0, "BOS", 99.0},
				{"2017-10-17T00:00:00", 1.0, "2", 2.0, "CLE", 102.0},
			}}
			_, err := parseLineScore(response{ResultSets: []resultSet{set}}, d)
			So(errors.Is(err, ErrPayload), ShouldBeTrue)
		})
	})
}

func TestFetchSince(t *testing.T) {
	schedule := season.Schedule{
		{Start: day(2017, time.October, 17), End: day(2017, time.October, 19)},
	}

	Convey("Given a scoreboard over a window that straddles the season start", t, func() {
		var calls []string
		srv := fakeScoreboard(map[string]map[string]any{
			"10/17/2017": payload(
				[]any{"2017-10-17T00:00:00", 1, "A", 1, "BOS", 99},
				[]any{"2017-10-17T00:00:00", 1, "A", 2, "CLE", 102},
			),
			"10/18/2017": payload(
				[]any{"2017-10-18T00:00:00", 1, "B", 1, "MIL", 100},
				[]any{"2017-10-18T00:00:00", 1, "B", 2, "BOS", 108},
			),
		}, map[string]bool{"10/19/2017": true}, &calls)
		defer srv.Close()
		c := New(srv.URL)

		Convey("Only in-season days are queried", func() {
			games, err := c.FetchSince(context.Background(), day(2017, time.October, 15), day(2017, time.October, 18), schedule)
			So(err, ShouldBeNil)
			So(calls, ShouldResemble, []string{"10/17/2017", "10/18/2017"})
			So(games, ShouldHaveLength, 2)
		})

		Convey("A failing day stops the walk and keeps earlier games", func() {
			games, err := c.FetchSince(context.Background(), day(2017, time.October, 17), day(2017, time.October, 25), schedule)
			So(errors.Is(err, ErrUpstream), ShouldBeTrue)
			So(games, ShouldHaveLength, 2)
			So(calls, ShouldResemble, []string{"10/17/2017", "10/18/2017", "10/19/2017"})
		})

		Convey("A cancelled context stops before querying", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			games, err := c.FetchSince(ctx, day(2017, time.October, 17), day(2017, time.October, 18), schedule)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(games, ShouldBeEmpty)
			So(calls, ShouldBeEmpty)
		})
	})
}
