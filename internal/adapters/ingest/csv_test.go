package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/nbaelo/internal/domain/model"
)

const historical = `gameorder,game_id,lg_id,_iscopy,year_id,date_game,team_id,pts,elo_i,elo_n
63151,201504150BRK,NBA,0,2015,4/15/2015,ORL,88,1359.4,1358.1
63151,201504150BRK,NBA,1,2015,4/15/2015,BKN,101,1518.2,1519.5
63152,201510270ATL,NBA,0,2016,2015-10-27,DET,106,1497.0,1510.1
63152,201510270ATL,NBA,1,2016,2015-10-27,ATL,94,1585.3,1572.2
63153,201510280PHO,NBA,0,2016,2015-10-28,DAL,111,,
63153,201510280PHO,NBA,1,2016,2015-10-28,PHX,95,,
`

func TestImporterRead(t *testing.T) {
	Convey("Given the historical two-row layout", t, func() {
		im := NewImporter()
		games, err := im.Read(context.Background(), strings.NewReader(historical))
		So(err, ShouldBeNil)
		So(games, ShouldHaveLength, 3)

		Convey("Rows are merged away first, home second", func() {
			g := games[1]
			So(g.GameID, ShouldEqual, "201510270ATL")
			So(g.TeamAway, ShouldEqual, "DET")
			So(g.TeamHome, ShouldEqual, "ATL")
			So(g.PtsAway, ShouldEqual, 106)
			So(g.PtsHome, ShouldEqual, 94)
			So(*g.EloIHome, ShouldEqual, 1585.3)
			So(*g.EloNAway, ShouldEqual, 1510.1)
			So(g.Rated(), ShouldBeTrue)
		})

		Convey("Both date layouts are accepted", func() {
			So(games[0].Date.Equal(time.Date(2015, time.April, 15, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
			So(games[1].Date.Format(model.DateLayout), ShouldEqual, "2015-10-27")
		})

		Convey("Aliases are normalised", func() {
			So(games[0].TeamHome, ShouldEqual, "BRK")
			So(games[2].TeamHome, ShouldEqual, "PHO")
		})

		Convey("Empty rating cells stay unrated", func() {
			So(games[2].Rated(), ShouldBeFalse)
			So(games[2].EloIHome, ShouldBeNil)
		})
	})

	Convey("Given malformed input", t, func() {
		im := NewImporter(WithNormalizer(Normalizer{}))
		ctx := context.Background()

		Convey("A missing column is reported", func() {
			_, err := im.Read(ctx, strings.NewReader("game_id,date_game,team_id,pts\n"))
			So(errors.Is(err, ErrMissingColumn), ShouldBeTrue)
		})

		Convey("A dangling away row is reported", func() {
			in := "game_id,date_game,team_id,pts,elo_i,elo_n\nX,2017-10-17,BOS,99,,\n"
			_, err := im.Read(ctx, strings.NewReader(in))
			So(errors.Is(err, ErrMalformedRow), ShouldBeTrue)
		})

		Convey("Rows from different games do not pair", func() {
			in := "game_id,date_game,team_id,pts,elo_i,elo_n\nX,2017-10-17,BOS,99,,\nY,2017-10-17,CLE,102,,\n"
			_, err := im.Read(ctx, strings.NewReader(in))
			So(errors.Is(err, ErrMalformedRow), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "line 3")
		})

		Convey("A bad score is reported", func() {
			in := "game_id,date_game,team_id,pts,elo_i,elo_n\nX,2017-10-17,BOS,lots,,\n"
			_, err := im.Read(ctx, strings.NewReader(in))
			So(errors.Is(err, ErrMalformedRow), ShouldBeTrue)
		})

		Convey("A bad date is reported", func() {
			in := "game_id,date_game,team_id,pts,elo_i,elo_n\nX,17.10.2017,BOS,99,,\n"
			_, err := im.Read(ctx, strings.NewReader(in))
			So(errors.Is(err, ErrMalformedRow), ShouldBeTrue)
		})

		Convey("An empty normaliser keeps ids as written", func() {
			in := "game_id,date_game,team_id,pts,elo_i,elo_n\nX,2017-10-17,PHX,99,,\nX,2017-10-17,BKN,100,,\n"
			games, err := im.Read(ctx, strings.NewReader(in))
			So(err, ShouldBeNil)
			So(games[0].TeamAway, ShouldEqual, "PHX")
			So(games[0].TeamHome, ShouldEqual, "BKN")
		})
	})
}

func TestImporterReadFile(t *testing.T) {
	Convey("ReadFile imports from disk", t, func() {
		path := filepath.Join(t.TempDir(), "nbaallelo.csv")
		So(os.WriteFile(path, []byte(historical), 0o600), ShouldBeNil)

		games, err := NewImporter().ReadFile(context.Background(), path)
		So(err, ShouldBeNil)
		So(games, ShouldHaveLength, 3)
	})

	Convey("ReadFile reports a missing file", t, func() {
		_, err := NewImporter().ReadFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
		So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
	})
}

func TestNormalizer(t *testing.T) {
	Convey("Normalizer maps aliases and trims input", t, func() {
		n := DefaultAliases()
		So(n.Team(" bkn "), ShouldEqual, "BRK")
		So(n.Team("BOS"), ShouldEqual, "BOS")

		games := []*model.Game{{TeamHome: "PHX", TeamAway: "BKN"}}
		n.Apply(games)
		So(games[0].TeamHome, ShouldEqual, "PHO")
		So(games[0].TeamAway, ShouldEqual, "BRK")
	})
}
