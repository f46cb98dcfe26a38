package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/nbaelo/internal/domain/dedupe"
	"github.com/okian/nbaelo/internal/domain/model"
)

func game(day int, home, away string) *model.Game {
	return &model.Game{
		Date:     time.Date(2017, time.October, day, 0, 0, 0, 0, time.UTC),
		TeamHome: home,
		TeamAway: away,
		PtsHome:  100,
		PtsAway:  90,
	}
}

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithCapacity(8))

		Convey("A new key is recorded", func() {
			So(d.SeenAndRecord(ctx, "2017-10-17|CLE|BOS"), ShouldBeFalse)

			Convey("And reported as seen the second time", func() {
				So(d.SeenAndRecord(ctx, "2017-10-17|CLE|BOS"), ShouldBeTrue)
			})

			Convey("And other keys stay fresh", func() {
				So(d.SeenAndRecord(ctx, "2017-10-18|DET|CHO"), ShouldBeFalse)
			})
		})

		Convey("Concurrent callers see each key exactly once", func() {
			var (
				wg    sync.WaitGroup
				mu    sync.Mutex
				fresh int
			)
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					if !d.SeenAndRecord(ctx, fmt.Sprintf("key-%d", i%10)) {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}(i)
			}
			wg.Wait()
			So(fresh, ShouldEqual, 10)
		})
	})
}

func TestMerge(t *testing.T) {
	Convey("Given stored and fetched games", t, func() {
		ctx := context.Background()
		stored := []*model.Game{game(17, "CLE", "BOS"), game(17, "GSW", "HOU")}
		stored[0].GameID = "stored"

		dup := game(17, "CLE", "BOS")
		dup.GameID = "fetched"
		fetched := []*model.Game{dup, game(18, "DET", "CHO"), game(18, "DET", "CHO")}

		merged, added := dedupe.Merge(ctx, stored, fetched)

		Convey("Overlapping games are dropped and stored ones win", func() {
			So(added, ShouldEqual, 1)
			So(merged, ShouldHaveLength, 3)
			So(merged[0].GameID, ShouldEqual, "stored")
			So(merged[2].TeamHome, ShouldEqual, "DET")
		})

		Convey("Merging the same fetch twice adds nothing", func() {
			again, n := dedupe.Merge(ctx, merged, fetched)
			So(n, ShouldEqual, 0)
			So(again, ShouldHaveLength, 3)
		})

		Convey("A fetched game with a time of day matches its stored day", func() {
			tipoff := game(17, "CLE", "BOS")
			tipoff.Date = time.Date(2017, time.October, 17, 19, 30, 0, 0, time.FixedZone("EDT", -4*3600))
			_, n := dedupe.Merge(ctx, stored, []*model.Game{tipoff})
			So(n, ShouldEqual, 0)
		})

		Convey("Home and away are not interchangeable", func() {
			_, n := dedupe.Merge(ctx, stored, []*model.Game{game(17, "BOS", "CLE")})
			So(n, ShouldEqual, 1)
		})
	})
}
