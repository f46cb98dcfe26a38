package export_test

import (
	"bytes"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"

	"github.com/okian/nbaelo/internal/adapters/export"
	"github.com/okian/nbaelo/internal/domain/types"
)

func TestWriteRatings(t *testing.T) {
	Convey("Given a ranked table", t, func() {
		entries := []types.Entry{
			{Rank: 1, Team: "GSW", Rating: 1700.5},
			{Rank: 2, Team: "BOS", Rating: 1600},
		}

		Convey("The workbook holds a header and one row per team", func() {
			var buf bytes.Buffer
			So(export.WriteRatings(&buf, entries), ShouldBeNil)

			f, err := excelize.OpenReader(&buf)
			So(err, ShouldBeNil)
			defer f.Close()

			rows, err := f.GetRows(export.Sheet)
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 3)
			So(rows[0], ShouldResemble, []string{"rank", "team", "rating"})
			So(rows[1][1], ShouldEqual, "GSW")
			So(rows[2][0], ShouldEqual, "2")
			So(rows[2][2], ShouldEqual, "1600")
		})

		Convey("An empty table still has the header", func() {
			var buf bytes.Buffer
			So(export.WriteRatings(&buf, nil), ShouldBeNil)

			f, err := excelize.OpenReader(&buf)
			So(err, ShouldBeNil)
			defer f.Close()

			rows, err := f.GetRows(export.Sheet)
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 1)
		})
	})
}
